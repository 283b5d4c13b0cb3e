package model

import "errors"

var (
	// ErrMissingClass is returned when a label in [0, num_classes) has no training samples.
	ErrMissingClass = errors.New("missing class")
	// ErrInvalidClassCount is returned when fewer than two classes are present.
	ErrInvalidClassCount = errors.New("invalid class count")
	// ErrUnseenValidationLabel is returned when a validation label falls outside the training label range.
	ErrUnseenValidationLabel = errors.New("unseen validation label")
	// ErrDatasetPath is returned when the dataset layout is absent or unreadable.
	ErrDatasetPath = errors.New("invalid dataset path")
	// ErrInvalidConfig is returned for configuration values out of their valid range.
	ErrInvalidConfig = errors.New("invalid config")
	// ErrEmptyVocabulary is returned when no n-gram survives the document frequency filter.
	ErrEmptyVocabulary = errors.New("empty vocabulary")
	// ErrDivergence is returned when the training loss stops being a finite number.
	ErrDivergence = errors.New("training diverged")
	// ErrDimensionMismatch is returned when matrices or labels do not line up.
	ErrDimensionMismatch = errors.New("dimension mismatch")
)
