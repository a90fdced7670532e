package models

import (
	"errors"
)

var (
	ErrNoOptions          = errors.New("no initialized model options")
	ErrNoTrainingData     = errors.New("no training data")
	ErrTargetLenMismatch  = errors.New("target length does not match target rows")
	ErrFeatureLenMismatch = errors.New("number of features does not match model input size")
	ErrLayerSizeMismatch  = errors.New("layer output size does not match next layer input size")
	ErrNoLayers           = errors.New("network has no layers")
	ErrReleased           = errors.New("model has been released")
	ErrUnderdetermined    = errors.New("fewer samples than coefficients")
	ErrSingular           = errors.New("design matrix is rank deficient")
)
