package subscription

import "errors"

var (
	ErrInvalidLimit             = errors.New("invalid package limit")
	ErrInvalidUsage             = errors.New("invalid weekly usage record")
	ErrPlanNotFound             = errors.New("subscription plan not found")
	ErrInvalidPlanConfiguration = errors.New("invalid subscription plan configuration")
	ErrFailedToLoadPlans        = errors.New("failed to load subscription plans")

	ErrFailedToLoadPackage = errors.New("failed to load package")
	ErrFailedToSavePackage = errors.New("failed to save package")
	ErrFailedToLoadUsage   = errors.New("failed to load weekly usage")
	ErrFailedToSaveUsage   = errors.New("failed to save weekly usage")
)
