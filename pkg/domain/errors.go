package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrIndexOutOfRange is returned by positional accessors.
	ErrIndexOutOfRange = errors.New("index out of range")

	// ErrDanglingReference is returned by strict loads when a reference names
	// an entity the document never defines.
	ErrDanglingReference = errors.New("dangling reference")

	// ErrNotGraphDocument is returned when a document has no Graph root.
	ErrNotGraphDocument = errors.New("not a graph document")
)

// Reason explains why a connection was rejected.
type Reason string

const (
	ReasonMissing           Reason = "missing"
	ReasonSelf              Reason = "self"
	ReasonSameDirection     Reason = "same_direction"
	ReasonSameNode          Reason = "same_node"
	ReasonAlreadyConnected  Reason = "already_connected"
	ReasonIncompatibleTypes Reason = "incompatible_types"
	ReasonCustomRule        Reason = "custom_rule"
	ReasonWouldCycle        Reason = "would_cycle"
)

// RejectionError is the normal negative outcome of CanConnect.
type RejectionError struct {
	From   *Property
	To     *Property
	Reason Reason
}

func (e *RejectionError) Error() string {
	return fmt.Sprintf("cannot connect %s to %s: %s", e.From.path(), e.To.path(), e.Reason)
}

// RejectionReason extracts the reason from a CanConnect error.
func RejectionReason(err error) (Reason, bool) {
	var rej *RejectionError
	if errors.As(err, &rej) {
		return rej.Reason, true
	}
	return "", false
}

func indexError(kind string, i, n int) error {
	return fmt.Errorf("%s %d of %d: %w", kind, i, n, ErrIndexOutOfRange)
}
