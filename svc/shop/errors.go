package shop

import "errors"

var (
	ErrQuotaExceeded   = errors.New("shop: weekly product quota exceeded")
	ErrLoginRequired   = errors.New("shop: sign in required")
	ErrInvalidLanguage = errors.New("shop: invalid language code")
	ErrProductNotFound = errors.New("shop: product not found")
)
