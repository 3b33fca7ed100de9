package main

import "errors"

var (
	ErrNodeNotFound       = errors.New("node not found")
	ErrRootDeletion       = errors.New("cannot delete the root node")
	ErrNoMap              = errors.New("no map loaded")
	ErrEmptyTitle         = errors.New("map title is required")
	ErrInvalidPayload     = errors.New("invalid file format")
	ErrUnsupportedVersion = errors.New("unsupported payload version")
	ErrMissingMap         = errors.New("payload has no map")
	ErrInvalidTree        = errors.New("map is not a valid tree")
)
