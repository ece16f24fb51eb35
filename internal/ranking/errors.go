package ranking

import "errors"

var (
	ErrInvalidTierOrPosition  = errors.New("invalid tier or finishing position")
	ErrHistoricPointsRequired = errors.New("historic results need externally supplied points")
	ErrNegativePoints         = errors.New("points must not be negative")
	ErrUnknownCategory        = errors.New("unknown category")
	ErrInvalidGender          = errors.New("invalid gender")
	ErrCategoryGender         = errors.New("category does not allow player gender")
	ErrCategoryMismatch       = errors.New("ranking category does not match")
)
