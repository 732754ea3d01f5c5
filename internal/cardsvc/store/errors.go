package store

import "errors"

var (
	ErrCardNotFound = errors.New("card not found")
	ErrCardExists   = errors.New("card already exists")
	ErrCardFull     = errors.New("card has no remaining account slots")
	ErrCardDisabled = errors.New("card is disabled")
)
