package domain

import (
	"errors"
	"fmt"
)

// Domain errors.
var (
	ErrTruckFull         = errors.New("truck is at full capacity")
	ErrInfeasible        = errors.New("remaining packages cannot be delivered on time")
	ErrPackageNotFound   = errors.New("package not found")
	ErrTruckNotFound     = errors.New("truck not found")
	ErrInvalidTransition = errors.New("invalid package status transition")
	ErrInvalidTime       = errors.New("invalid time of day")
	ErrNotOnManifest     = errors.New("package is not on the truck manifest")
)

// Severity tells the caller whether a failure ends the operation or can be logged and skipped.
type Severity int

const (
	// Abort means the caller must stop the current unit of work.
	Abort Severity = iota
	// Continue means the failure is scoped to one item and the caller may proceed.
	Continue
)

func (s Severity) String() string {
	switch s {
	case Abort:
		return "abort"
	case Continue:
		return "continue"
	default:
		return fmt.Sprintf("severity(%d)", int(s))
	}
}

// Failure is a tagged error raised while planning loads or dispatching trucks.
// TruckID and PackageID are zero when not applicable.
type Failure struct {
	Op        string
	Severity  Severity
	TruckID   int
	PackageID int
	Err       error
}

func (f *Failure) Error() string {
	msg := f.Op
	if f.TruckID != 0 {
		msg += fmt.Sprintf(": truck %d", f.TruckID)
	}
	if f.PackageID != 0 {
		msg += fmt.Sprintf(": package %d", f.PackageID)
	}
	return fmt.Sprintf("%s: %v", msg, f.Err)
}

func (f *Failure) Unwrap() error { return f.Err }

// IsRecoverable reports whether err carries a Failure the caller may log and continue past.
// Untagged errors are never recoverable.
func IsRecoverable(err error) bool {
	var f *Failure
	if errors.As(err, &f) {
		return f.Severity == Continue
	}
	return false
}
