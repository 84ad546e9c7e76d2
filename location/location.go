package location

import (
	"context"
	"errors"
)

var (
	// ErrPermissionDenied means the platform refused location access.
	// Callers abort the flow that needed the fix, they do not retry.
	ErrPermissionDenied = errors.New("location permission denied")

	// ErrUnavailable means permission was granted but no fix could be
	// acquired.
	ErrUnavailable = errors.New("location unavailable")
)

// Fix is a single high-accuracy position reading.
type Fix struct {
	Lat      float64
	Lng      float64
	Accuracy float64
}

// Provider is the platform location boundary. RequestPermission must be
// called before Current; acquiring a fix may block for a while, so both
// take a context.
type Provider interface {
	RequestPermission(ctx context.Context) error
	Current(ctx context.Context) (Fix, error)
}

// Static serves a fixed position, standing in for the platform provider
// on the terminal client. With Granted false it denies permission, which
// is how the permission-refused paths are exercised.
type Static struct {
	Granted bool
	Fix     Fix
}

func (s Static) RequestPermission(ctx context.Context) error {
	if !s.Granted {
		return ErrPermissionDenied
	}
	return nil
}

func (s Static) Current(ctx context.Context) (Fix, error) {
	if !s.Granted {
		return Fix{}, ErrUnavailable
	}
	return s.Fix, nil
}
