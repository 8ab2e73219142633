package service

import (
	"errors"
	"fmt"
)

// Upload validation errors.
var (
	ErrNoFileProvided  = errors.New("no image file provided")
	ErrEmptyFilename   = errors.New("no file selected")
	ErrInvalidFileType = errors.New("invalid file type")
	ErrFileTooLarge    = errors.New("file too large")
)

// ProcessingError reports a failure while saving, detecting or cleaning up
// an accepted upload.
type ProcessingError struct {
	Op  string
	Err error
}

func (e *ProcessingError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *ProcessingError) Unwrap() error {
	return e.Err
}
