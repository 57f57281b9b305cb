package node

import "github.com/yundddd/graphsim/pkg/config"

// FaultState is one pending fault attached to a node: the config it was
// injected with, how many times its action has fired, and whether it is
// spent. A fault is walked in FIFO order against pending_faults and
// consumed once Done becomes true.
type FaultState struct {
	Config      config.FaultConfig
	ActionCount int
	Done        bool
}

func (f *FaultState) limit() int {
	switch {
	case f.Config.AffectPublish != nil && f.Config.AffectPublish.Type == config.AffectPublishDrop:
		return orOne(f.Config.AffectPublish.Drop)
	case f.Config.AffectPublish != nil && f.Config.AffectPublish.Type == config.AffectPublishMutate:
		return orOne(f.Config.AffectPublish.Count)
	case f.Config.AffectReceive != nil && f.Config.AffectReceive.Type == config.AffectReceiveDrop:
		return orOne(f.Config.AffectReceive.Drop)
	case f.Config.AffectReceive != nil && f.Config.AffectReceive.Type == config.AffectReceiveDelay:
		return orOne(f.Config.AffectReceive.Count)
	case f.Config.AffectLoop != nil && f.Config.AffectLoop.Type == config.AffectLoopDrop:
		return orOne(f.Config.AffectLoop.Drop)
	case f.Config.AffectLoop != nil && f.Config.AffectLoop.Type == config.AffectLoopDelay:
		return orOne(f.Config.AffectLoop.Count)
	default:
		return 1
	}
}

func orOne(n int) int {
	if n <= 0 {
		return 1
	}
	return n
}

// act increments the action count and marks the fault done once its limit
// is reached.
func (f *FaultState) act() {
	f.ActionCount++
	if f.ActionCount >= f.limit() {
		f.Done = true
	}
}

func (f *FaultState) eligible(curTime int) bool {
	return !f.Done && curTime >= f.Config.InjectAt
}

// InjectFault appends a new pending fault in FIFO order.
func (n *Node) InjectFault(fc config.FaultConfig) {
	n.pendingFaults = append(n.pendingFaults, &FaultState{Config: fc})
}

// pruneDone drops every spent fault from the queue. Faults are only
// ever marked done as a side effect of the Maybe* predicates below, which
// walk the queue front to back, so done entries accumulate at arbitrary
// positions; a full filter keeps the FIFO contract intact for what remains.
func (n *Node) pruneDone() {
	if len(n.pendingFaults) == 0 {
		return
	}
	kept := n.pendingFaults[:0]
	for _, f := range n.pendingFaults {
		if !f.Done {
			kept = append(kept, f)
		}
	}
	n.pendingFaults = kept
}

// MaybeCrash reports whether the node's crash fault (if any) has reached its
// trigger time. Once true, the caller is expected to latch IsCrashed
// permanently — see Node.Crash.
func (n *Node) MaybeCrash(curTime int) bool {
	for _, f := range n.pendingFaults {
		if f.Config.Crash && f.eligible(curTime) {
			f.Done = true
			return true
		}
	}
	return false
}

// MaybeDropLoop reports whether the node's own loop tick should be dropped.
func (n *Node) MaybeDropLoop(curTime int) bool {
	defer n.pruneDone()
	for _, f := range n.pendingFaults {
		if f.Config.AffectLoop != nil && f.Config.AffectLoop.Type == config.AffectLoopDrop && f.eligible(curTime) {
			f.act()
			return true
		}
	}
	return false
}

// MaybeDelayLoop reports whether the node's loop tick should be delayed, and
// by how much.
func (n *Node) MaybeDelayLoop(curTime int) (int, bool) {
	defer n.pruneDone()
	for _, f := range n.pendingFaults {
		if f.Config.AffectLoop != nil && f.Config.AffectLoop.Type == config.AffectLoopDelay && f.eligible(curTime) {
			f.act()
			return f.Config.AffectLoop.Delay, true
		}
	}
	return 0, false
}

// MaybeDropPublish reports whether a publish on topic should be dropped.
func (n *Node) MaybeDropPublish(curTime int, topic string) bool {
	defer n.pruneDone()
	for _, f := range n.pendingFaults {
		ap := f.Config.AffectPublish
		if ap != nil && ap.Type == config.AffectPublishDrop && ap.Topic == topic && f.eligible(curTime) {
			f.act()
			return true
		}
	}
	return false
}

// MaybeMutatePublish reports whether a publish on topic should be replaced,
// and the replacement value.
func (n *Node) MaybeMutatePublish(curTime int, topic string) (int, bool) {
	defer n.pruneDone()
	for _, f := range n.pendingFaults {
		ap := f.Config.AffectPublish
		if ap != nil && ap.Type == config.AffectPublishMutate && ap.Topic == topic && f.eligible(curTime) {
			f.act()
			return ap.Value, true
		}
	}
	return 0, false
}

// MaybeDropReceive reports whether a delivery on topic should be dropped.
func (n *Node) MaybeDropReceive(curTime int, topic string) bool {
	defer n.pruneDone()
	for _, f := range n.pendingFaults {
		ar := f.Config.AffectReceive
		if ar != nil && ar.Type == config.AffectReceiveDrop && ar.Topic == topic && f.eligible(curTime) {
			f.act()
			return true
		}
	}
	return false
}

// MaybeDelayReceive reports whether a delivery on topic should be delayed,
// and by how much.
func (n *Node) MaybeDelayReceive(curTime int, topic string) (int, bool) {
	defer n.pruneDone()
	for _, f := range n.pendingFaults {
		ar := f.Config.AffectReceive
		if ar != nil && ar.Type == config.AffectReceiveDelay && ar.Topic == topic && f.eligible(curTime) {
			f.act()
			return ar.Delay, true
		}
	}
	return 0, false
}
