package types

import "errors"

var (
	ErrConfiguration      = errors.New("configuration error")
	ErrIncompatibleHeader = errors.New("small file header is not compatible")
	ErrNoAnnotations      = errors.New("small file has no annotations")
	ErrTermNotFound       = errors.New("term id not found in ontology")
	ErrUnknownAspect      = errors.New("could not determine aspect")
	ErrOrphanetParse      = errors.New("could not parse Orphanet XML")
)
