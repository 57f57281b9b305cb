package simulator

import "fmt"

// FaultTargetError reports a fault document that does not resolve against
// the built graph: an unknown inject_to node, affect_loop on a node without
// a loop, a publish/receive axis naming a topic the target doesn't own, or
// inject_at out of (0, stop_at).
type FaultTargetError struct {
	Reason string
}

func (e *FaultTargetError) Error() string {
	return fmt.Sprintf("fault target: %s", e.Reason)
}

func faultTargetError(format string, args ...interface{}) error {
	return &FaultTargetError{Reason: fmt.Sprintf(format, args...)}
}
