package reconcile

import (
	"errors"
	"fmt"

	"cohort-indexer/core/transport"
)

// Stage identifies where a per-address failure happened.
type Stage string

const (
	// StageAttach is the synchronous add-source call.
	StageAttach Stage = "attach"
	// StageSource is a post-attach source failure.
	StageSource Stage = "source"
	// StageIndex is a document-level failure.
	StageIndex Stage = "index"
)

// FailureKind separates slow peers from broken ones.
type FailureKind string

const (
	KindTimeout FailureKind = "timeout"
	KindOther   FailureKind = "other"
)

// ErrIntegrityMismatch marks a notification for an untracked address.
var ErrIntegrityMismatch = errors.New("notification for untracked address")

// Failure is a classified per-address failure.
type Failure struct {
	Stage Stage
	Kind  FailureKind
	Cause error
}

func (f *Failure) Error() string {
	return fmt.Sprintf("%s %s: %v", f.Stage, f.Kind, f.Cause)
}

func (f *Failure) Unwrap() error { return f.Cause }

// Timeout reports whether the failure is timeout-classified.
func (f *Failure) Timeout() bool { return f.Kind == KindTimeout }

// Classify wraps err as a Failure of the given stage.
func Classify(stage Stage, err error) *Failure {
	kind := KindOther
	if transport.IsTimeout(err) {
		kind = KindTimeout
	}
	return &Failure{Stage: stage, Kind: kind, Cause: err}
}
