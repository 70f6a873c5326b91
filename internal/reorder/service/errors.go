package service

import "errors"

var (
	// ErrUnsupportedDocument: the input carries neither table rows nor page
	// text, so no extraction path applies.
	ErrUnsupportedDocument = errors.New("unsupported document: no rows or page text")

	// ErrUnsupportedOperation: matching was requested without a similarity
	// scorer.
	ErrUnsupportedOperation = errors.New("unsupported operation: no similarity scorer")

	// ErrMalformedInput: a required column is missing from an input table.
	ErrMalformedInput = errors.New("malformed input")
)
