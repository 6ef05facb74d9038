package catalog

import "errors"

var (
	ErrNotFound     = errors.New("catalog: product not found")
	ErrInvalidInput = errors.New("catalog: invalid product input")
	ErrFailedToLoad = errors.New("catalog: failed to load products")
	ErrFailedToSave = errors.New("catalog: failed to save products")
)
