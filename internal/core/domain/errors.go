package domain

import (
	"errors"
	"fmt"
)

var (
	ErrMaxSelectionExceeded = errors.New("compare: max selection exceeded")
	ErrDuplicateSelection   = errors.New("compare: device already selected")
	ErrTypeMismatch         = errors.New("compare: device format does not match selection")
	ErrUnknownFormat        = errors.New("compare: unknown descriptor format")
	ErrDeviceNotFound       = errors.New("upstream: device not found")
	ErrSessionNotFound      = errors.New("compare: session not found")
)

// FetchFailure records a failed catalog or descriptor fetch.
type FetchFailure struct {
	Ref DeviceRef
	Err error
}

func (f *FetchFailure) Error() string {
	return fmt.Sprintf("fetch %s failed: %v", f.Ref, f.Err)
}

func (f *FetchFailure) Unwrap() error {
	return f.Err
}
