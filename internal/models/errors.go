package models

import "errors"

var (
	ErrNotFound    = errors.New("upload not found")
	ErrIncomplete  = errors.New("upload incomplete")
	ErrEmptyUpload = errors.New("upload has no parts")
)
