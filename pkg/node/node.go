// Package node holds per-node simulation state: the feature vector, the
// last-received timestamp per subscribed topic, and the FIFO of pending
// fault states that mediate every event dispatched to the node.
package node

import "github.com/yundddd/graphsim/pkg/config"

// Node is one graph node's runtime state. Config is the immutable
// declaration it was built from; Index is its deterministic position in
// declaration order.
type Node struct {
	Name   string
	Index  int
	Config *config.NodeConfig

	Feature FeatureVector

	// MessageReceived holds, per subscribed topic, the logical timestamp of
	// the most recent delivery. Topics with a watchdog are pre-seeded to -1
	// ("never received") so the first watchdog check can tell that apart
	// from a message that arrived at t=0.
	MessageReceived map[string]int

	IsCrashed     bool
	pendingFaults []*FaultState
}

// New builds a Node from its declaration, computing the static feature
// fields and pre-seeding watchdog sentinels.
func New(cfg *config.NodeConfig, index int) *Node {
	loopPeriod := 0
	numPublications := 0
	if cfg.Loop != nil {
		loopPeriod = cfg.Loop.Period
		numPublications += len(cfg.Loop.Callback.Publish)
	}

	received := make(map[string]int, len(cfg.Subscribe))
	for _, sub := range cfg.Subscribe {
		numPublications += publishCount(sub.NominalCallback)
		numPublications += publishCount(sub.InvalidInputCallback)
		numPublications += publishCount(sub.LostInputCallback)
		if sub.HasWatchdog() {
			received[sub.Topic] = -1
		}
	}

	n := &Node{
		Name:            cfg.Name,
		Index:           index,
		Config:          cfg,
		Feature:         NewFeatureVector(cfg.Name, len(cfg.Subscribe), numPublications, loopPeriod),
		MessageReceived: received,
	}
	return n
}

func publishCount(cb *config.CallbackSpec) int {
	if cb == nil {
		return 0
	}
	return len(cb.Publish)
}

// Subscription returns the declared subscription for topic, if any.
func (n *Node) Subscription(topic string) (*config.SubscriptionSpec, bool) {
	for i := range n.Config.Subscribe {
		if n.Config.Subscribe[i].Topic == topic {
			return &n.Config.Subscribe[i], true
		}
	}
	return nil, false
}

// HasLoop reports whether the node owns a periodic timer.
func (n *Node) HasLoop() bool {
	return n.Config.Loop != nil
}

// Publishes reports whether topic is published by any of this node's
// callbacks (loop or any of the three subscription roles), used to validate
// affect_publish fault targets.
func (n *Node) Publishes(topic string) bool {
	if n.Config.Loop != nil && hasPublish(n.Config.Loop.Callback.Publish, topic) {
		return true
	}
	for _, sub := range n.Config.Subscribe {
		if hasPublish(publishesOf(sub.NominalCallback), topic) ||
			hasPublish(publishesOf(sub.InvalidInputCallback), topic) ||
			hasPublish(publishesOf(sub.LostInputCallback), topic) {
			return true
		}
	}
	return false
}

func publishesOf(cb *config.CallbackSpec) []config.PublishSpec {
	if cb == nil {
		return nil
	}
	return cb.Publish
}

func hasPublish(specs []config.PublishSpec, topic string) bool {
	for _, p := range specs {
		if p.Topic == topic {
			return true
		}
	}
	return false
}

// Crash latches the node permanently crashed; from this point on the
// dispatch loop drops every event targeting it without consulting the fault
// queue again.
func (n *Node) Crash() {
	n.IsCrashed = true
}

// ReceiveMessage records that topic was delivered at ts.
func (n *Node) ReceiveMessage(topic string, ts int) {
	n.MessageReceived[topic] = ts
}

// UpdateEventFeature stamps the dynamic event-kind fields after a dispatched
// step.
func (n *Node) UpdateEventFeature(eventType, ts int) {
	n.Feature.LastEventTimestamp = ts
	n.Feature.LastEventType = eventType
}

// UpdateCallbackFeature stamps CALLBACK_TYPE from the role of the callback
// that just ran.
func (n *Node) UpdateCallbackFeature(role config.CallbackRole) {
	switch role {
	case config.RoleNominal:
		n.Feature.CallbackType = CallbackTypeNominal
	case config.RoleInvalidInput:
		n.Feature.CallbackType = CallbackTypeInvalid
	case config.RoleLostInput:
		n.Feature.CallbackType = CallbackTypeLost
	case config.RoleLoop:
		n.Feature.CallbackType = CallbackTypeLoop
	}
}

// IncrLoopCount bumps LOOP_COUNT after a loop tick executes its callback.
func (n *Node) IncrLoopCount() { n.Feature.LoopCount++ }

// IncrSubscriptionCount bumps SUBSCRIPTION_TOTAL_COUNT after a delivered
// subscription event is classified and dispatched.
func (n *Node) IncrSubscriptionCount() { n.Feature.SubscriptionTotalCount++ }

// IncrPublishCount bumps PUBLISH_COUNT for each outbound publish that is not
// dropped by a fault.
func (n *Node) IncrPublishCount() { n.Feature.PublishCount++ }
