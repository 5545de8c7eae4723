package domain

import "errors"

var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
	// ErrInvalidData marks stored or submitted JSON that does not decode into the expected shape.
	ErrInvalidData = errors.New("invalid data")
	ErrAuth        = errors.New("authentication required")
	ErrPermission  = errors.New("permission denied")
	// ErrStampTaken is returned by a backend when a draft with the same version stamp exists.
	ErrStampTaken = errors.New("version stamp already taken")
)
