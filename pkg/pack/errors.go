package pack

import (
	"errors"
	"fmt"

	apperr "github.com/matzehuels/atlaspack/pkg/errors"
	"github.com/matzehuels/atlaspack/pkg/geom"
)

// SizeExceededError is returned when no atlas up to the maximum size
// holds every sprite. Needed is the first size over Max that the
// controller would have tried next. Best is the largest size actually
// tried and is zero when Attempts is 0.
type SizeExceededError struct {
	Best     geom.Size
	Needed   geom.Size
	Max      int
	Attempts int
}

func (e *SizeExceededError) Error() string {
	if e.Attempts == 0 {
		return fmt.Sprintf("atlas needs %s, exceeds maximum %d", e.Needed, e.Max)
	}
	return fmt.Sprintf("atlas needs %s after %d attempts (largest tried %s), exceeds maximum %d",
		e.Needed, e.Attempts, e.Best, e.Max)
}

// Code implements apperr.Coder.
func (e *SizeExceededError) Code() apperr.Code { return apperr.ErrCodeSizeExceeded }

// IsSizeExceeded reports whether err is or wraps a *SizeExceededError.
// Rejected inputs wrap one too.
func IsSizeExceeded(err error) bool {
	var e *SizeExceededError
	return errors.As(err, &e)
}

// IsRejected reports whether err is a pre-check rejection of a single
// sprite that can never fit.
func IsRejected(err error) bool {
	return apperr.Is(err, apperr.ErrCodeInputRejected)
}
