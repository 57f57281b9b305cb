package graph

import "fmt"

// WiringError reports a structurally invalid graph: a duplicate node name,
// two nodes publishing the same topic, or one node subscribing to the same
// topic twice. Raised during Build, before any simulation runs.
type WiringError struct {
	Kind  string // "duplicate_node" | "duplicate_publisher" | "duplicate_subscriber"
	Topic string
	Node  string
}

func (e *WiringError) Error() string {
	switch e.Kind {
	case "duplicate_node":
		return fmt.Sprintf("graph wiring: duplicate node name %q", e.Node)
	case "duplicate_publisher":
		return fmt.Sprintf("graph wiring: topic %q already has a publisher (node %q)", e.Topic, e.Node)
	case "duplicate_subscriber":
		return fmt.Sprintf("graph wiring: node %q already subscribes to topic %q", e.Node, e.Topic)
	default:
		return fmt.Sprintf("graph wiring: %s (node=%q topic=%q)", e.Kind, e.Node, e.Topic)
	}
}

func duplicateNode(name string) error {
	return &WiringError{Kind: "duplicate_node", Node: name}
}

func duplicatePublisher(topic, owner string) error {
	return &WiringError{Kind: "duplicate_publisher", Topic: topic, Node: owner}
}

func duplicateSubscriber(node, topic string) error {
	return &WiringError{Kind: "duplicate_subscriber", Topic: topic, Node: node}
}
