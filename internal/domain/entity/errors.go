package entity

import "errors"

// Standard domain errors
var (
	ErrInvalidRequest  = errors.New("invalid request parameters")
	ErrEmptyCompletion = errors.New("language model returned an empty completion")
	ErrNoEmbedding     = errors.New("embedding response carried no vectors")
	ErrImageSearch     = errors.New("image search failed")
)
