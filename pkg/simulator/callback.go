package simulator

import (
	"github.com/yundddd/graphsim/pkg/config"
	"github.com/yundddd/graphsim/pkg/node"
)

// executeCallback runs one callback: fault-mediated publishes, fan-out to
// subscribers, and optional self-injection of an inline fault. role always
// stamps CALLBACK_TYPE, even for an absent or noop callback — the call site,
// not the config, determines the role.
func (s *Simulator) executeCallback(n *node.Node, cb *config.CallbackSpec, role config.CallbackRole) {
	n.UpdateCallbackFeature(role)
	if cb.IsNoop() {
		return
	}

	for _, p := range cb.Publish {
		value := s.Rng.Intn(p.ValueRange.Hi-p.ValueRange.Lo+1) + p.ValueRange.Lo

		if n.MaybeDropPublish(s.clock, p.Topic) {
			continue
		}
		if mutated, ok := n.MaybeMutatePublish(s.clock, p.Topic); ok {
			value = mutated
		}

		n.IncrPublishCount()

		for _, sub := range s.Graph.Subscribers(p.Topic) {
			delay := s.Rng.Intn(p.DelayRange.Hi-p.DelayRange.Lo+1) + p.DelayRange.Lo
			s.push(Event{Timestamp: s.clock + delay, NodeName: sub.Name, Work: workSubscription, Topic: p.Topic, Data: value})
		}
	}

	if cb.Fault != nil {
		fc := *cb.Fault
		fc.InjectTo = n.Name
		fc.InjectAt = s.clock
		n.InjectFault(fc)
	}
}
