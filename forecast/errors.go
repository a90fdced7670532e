package forecast

import "errors"

var (
	ErrModelNotTrained    = errors.New("no trained model available")
	ErrTrainingDivergence = errors.New("training loss is no longer finite")
	ErrInvalidOptions     = errors.New("invalid forecast options")
	ErrInvalidHorizon     = errors.New("horizon must be at least 1 hour")
	ErrNumericFailure     = errors.New("forecast produced a non-finite value")
)
