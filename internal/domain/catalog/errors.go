package catalog

import "errors"

var (
	ErrCategoryNotFound = errors.New("category not found")
	ErrProductNotFound  = errors.New("product not found")
	ErrPlanNotFound     = errors.New("membership plan not found")
)
