package topology

import (
	"errors"
	"fmt"
	"strings"
)

// Builder errors.
var (
	ErrInconsistent  = errors.New("inconsistent topology")
	ErrInvalidBlock  = errors.New("invalid block")
	ErrInvalidEdge   = errors.New("invalid edge")
	ErrUnknownBlock  = errors.New("unknown block")
	ErrInvalidPatch  = errors.New("invalid patch")
	ErrDuplicateName = errors.New("duplicate patch name")
)

// ConsistencyError locates a topology violation. Index fields are -1 when
// they do not apply.
type ConsistencyError struct {
	Block     int
	Neighbour int
	Face      int
	Axis      int
	Edge      int
	Got       int
	Want      int
	Reason    string
}

func newConsistencyError(block int, reason string) *ConsistencyError {
	return &ConsistencyError{Block: block, Neighbour: -1, Face: -1, Axis: -1, Edge: -1, Reason: reason}
}

func (e *ConsistencyError) Error() string {
	var b strings.Builder
	b.WriteString(ErrInconsistent.Error())
	if e.Block >= 0 {
		fmt.Fprintf(&b, ": block %d", e.Block)
	}
	if e.Neighbour >= 0 {
		fmt.Fprintf(&b, ", neighbour %d", e.Neighbour)
	}
	if e.Face >= 0 {
		fmt.Fprintf(&b, ", face %s", FaceName(e.Face))
	}
	if e.Axis >= 0 {
		fmt.Fprintf(&b, ", axis %d", e.Axis)
	}
	if e.Edge >= 0 {
		fmt.Fprintf(&b, ", edge %d", e.Edge)
	}
	fmt.Fprintf(&b, ": %s", e.Reason)
	if e.Got != e.Want {
		fmt.Fprintf(&b, " (got %d, want %d)", e.Got, e.Want)
	}
	return b.String()
}

func (e *ConsistencyError) Unwrap() error {
	return ErrInconsistent
}
