// Package validator checks caller input before any record is written.
//
// A Rule pairs a check with the ValidationError reported when the check fails.
// Apply runs every rule and returns ValidationErrors listing each failure, so a
// form can show all problems at once:
//
//	err := validator.Apply(
//		validator.Required("name", in.Name),
//		validator.MaxLen("name", in.Name, 120),
//		validator.MinNum("quantity", in.Quantity, 0),
//		validator.FiniteNum("price", in.Price),
//	)
//
// Callers wrap the result with their own sentinel and recover it with
// ExtractValidationErrors.
package validator
