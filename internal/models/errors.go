package models

import (
	"errors"
)

var (
	// ErrModelUnavailable means the underlying embedding model could not be
	// loaded or reached. Fatal for the calling operation; never retried here.
	ErrModelUnavailable = errors.New("embedding model unavailable")

	// ErrEncoding means a single input could not be represented for the
	// model. Fatal for that request only; the classifier stays usable.
	ErrEncoding = errors.New("text could not be encoded for embedding")

	// ErrEmptyCategorySet means a classifier was constructed with zero
	// categories, so classify would have no valid output.
	ErrEmptyCategorySet = errors.New("no categories configured")

	ErrUnknownCategory = errors.New("unknown category")
)
