package pkg

import "errors"

var (
	errNotADirectory = errors.New("is not a directory")
	errIsADirectory  = errors.New("is a directory")
)
