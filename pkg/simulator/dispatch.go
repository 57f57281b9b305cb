package simulator

import (
	"github.com/yundddd/graphsim/pkg/config"
	"github.com/yundddd/graphsim/pkg/node"
)

// dispatchLoop handles one periodic tick. Delay is consulted before drop; a
// delayed tick reinserts the same event and runs nothing. A dropped tick
// still reschedules the next tick at the original phase.
func (s *Simulator) dispatchLoop(n *node.Node) bool {
	period := n.Config.Loop.Period

	if delay, ok := n.MaybeDelayLoop(s.clock); ok {
		s.push(Event{Timestamp: s.clock + delay, NodeName: n.Name, Work: workLoop})
		return false
	}

	if n.MaybeDropLoop(s.clock) {
		s.push(Event{Timestamp: s.clock + period, NodeName: n.Name, Work: workLoop})
		return false
	}

	s.push(Event{Timestamp: s.clock + period, NodeName: n.Name, Work: workLoop})
	n.UpdateEventFeature(node.EventTypeLoop, s.clock)
	n.IncrLoopCount()
	s.executeCallback(n, &n.Config.Loop.Callback, config.RoleLoop)
	return true
}

// dispatchSubscription handles one delivered message: drop/delay faults
// first, then record the receipt and classify the value against the
// subscription's valid range to pick the nominal or invalid-input callback.
func (s *Simulator) dispatchSubscription(n *node.Node, ev Event) bool {
	topic, data := ev.Topic, ev.Data

	if n.MaybeDropReceive(s.clock, topic) {
		return false
	}
	if delay, ok := n.MaybeDelayReceive(s.clock, topic); ok {
		s.push(Event{Timestamp: s.clock + delay, NodeName: n.Name, Work: workSubscription, Topic: topic, Data: data})
		return false
	}

	n.ReceiveMessage(topic, s.clock)
	n.UpdateEventFeature(node.EventTypeSubscription, s.clock)
	n.IncrSubscriptionCount()

	sub, _ := n.Subscription(topic)
	if data >= sub.ValidRange.Lo && data <= sub.ValidRange.Hi {
		s.executeCallback(n, sub.NominalCallback, config.RoleNominal)
	} else {
		s.executeCallback(n, sub.InvalidInputCallback, config.RoleInvalidInput)
	}
	return true
}

// dispatchWatchdog handles one liveness check. The event's Data carries the
// receive timestamp that was current when it was armed; if that still matches the
// node's latest received timestamp for the topic, nothing arrived in the
// window and the lost-input callback fires. Watchdogs are never terminal:
// they always re-arm.
func (s *Simulator) dispatchWatchdog(n *node.Node, ev Event) bool {
	topic := ev.Topic
	sub, _ := n.Subscription(topic)
	lastKnown := ev.Data
	current := n.MessageReceived[topic]

	if current == lastKnown {
		s.executeCallback(n, sub.LostInputCallback, config.RoleLostInput)
		s.push(Event{Timestamp: s.clock + sub.Watchdog, NodeName: n.Name, Work: workWatchdog, Topic: topic, Data: lastKnown})
		return true
	}

	s.push(Event{Timestamp: s.clock + sub.Watchdog, NodeName: n.Name, Work: workWatchdog, Topic: topic, Data: current})
	return false
}
