package curves

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

var (
	ErrNotAscending = errors.New("curve points must be sorted by ascending temperature")

	validate = validator.New(validator.WithRequiredStructEnabled())
)

// Validate checks that every point is within the allowed temperature and speed
// range and that the points are ordered by temperature.
func Validate(curve Curve) error {
	for i, point := range curve {
		if err := validate.Struct(point); err != nil {
			return fmt.Errorf("point %d (%d°C -> %d): %w", i, point.Temperature, point.Speed, err)
		}
		if i > 0 && curve[i-1].Temperature > point.Temperature {
			return fmt.Errorf("point %d (%d°C): %w", i, point.Temperature, ErrNotAscending)
		}
	}
	return nil
}
