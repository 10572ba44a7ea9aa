package model

import "errors"

// Error kinds shared by every stage of a training run. Callers match them
// with errors.Is; producers wrap them with fmt.Errorf("%w: ...").
var (
	// ErrDataAccess reports an unreadable or malformed corpus.
	ErrDataAccess = errors.New("data access")

	// ErrConfigurationExhausted reports an empty hyperparameter space.
	ErrConfigurationExhausted = errors.New("configuration space exhausted")

	// ErrInsufficientData reports a split or fold too small to fit or score.
	ErrInsufficientData = errors.New("insufficient data")

	// ErrFit reports a failed estimator or vectorizer fit.
	ErrFit = errors.New("fit failed")

	// ErrIO reports an artifact read or write failure.
	ErrIO = errors.New("artifact i/o")
)
