// Package graph builds the wired computation graph from parsed config
// records: node registration, topic publisher/subscriber maps, and the
// adjacency list the simulator's fan-out logic walks.
package graph

import (
	"github.com/yundddd/graphsim/pkg/config"
	"github.com/yundddd/graphsim/pkg/node"
)

// Graph holds every node by name, the topic routing tables derived from
// their declarations, and the adjacency list. Adjacency is derived once at
// Build time and never mutated afterward.
type Graph struct {
	Nodes            []*node.Node
	byName           map[string]*node.Node
	TopicPublisher   map[string]*node.Node
	TopicSubscribers map[string][]*node.Node
	Adjacency        map[string][]*node.Node
	topicOrder       []string
}

// Build inserts nodes in declaration order (index = position), registers
// publishers and subscribers, and derives adjacency. Node index assignment
// is deterministic and used by the edge-index writer.
func Build(cfg *config.GraphConfig) (*Graph, error) {
	g := &Graph{
		byName:           make(map[string]*node.Node, len(cfg.Nodes)),
		TopicPublisher:   make(map[string]*node.Node),
		TopicSubscribers: make(map[string][]*node.Node),
		Adjacency:        make(map[string][]*node.Node),
	}

	for i := range cfg.Nodes {
		nc := &cfg.Nodes[i]
		if _, exists := g.byName[nc.Name]; exists {
			return nil, duplicateNode(nc.Name)
		}
		n := node.New(nc, i)
		g.byName[nc.Name] = n
		g.Nodes = append(g.Nodes, n)
	}

	for _, n := range g.Nodes {
		if err := g.registerPublishers(n); err != nil {
			return nil, err
		}
		if err := g.registerSubscribers(n); err != nil {
			return nil, err
		}
	}

	g.deriveAdjacency()
	return g, nil
}

func (g *Graph) registerPublishers(n *node.Node) error {
	cfg := n.Config
	if cfg.Loop != nil {
		if err := g.registerTopics(n, cfg.Loop.Callback.Publish); err != nil {
			return err
		}
	}
	for _, sub := range cfg.Subscribe {
		for _, cb := range []*config.CallbackSpec{sub.NominalCallback, sub.InvalidInputCallback, sub.LostInputCallback} {
			if cb == nil {
				continue
			}
			if err := g.registerTopics(n, cb.Publish); err != nil {
				return err
			}
		}
	}
	return nil
}

func (g *Graph) registerTopics(n *node.Node, specs []config.PublishSpec) error {
	for _, p := range specs {
		if owner, exists := g.TopicPublisher[p.Topic]; exists && owner != n {
			return duplicatePublisher(p.Topic, owner.Name)
		} else if !exists {
			g.topicOrder = append(g.topicOrder, p.Topic)
		}
		g.TopicPublisher[p.Topic] = n
	}
	return nil
}

func (g *Graph) registerSubscribers(n *node.Node) error {
	seen := make(map[string]bool, len(n.Config.Subscribe))
	for _, sub := range n.Config.Subscribe {
		if seen[sub.Topic] {
			return duplicateSubscriber(n.Name, sub.Topic)
		}
		seen[sub.Topic] = true
		g.TopicSubscribers[sub.Topic] = append(g.TopicSubscribers[sub.Topic], n)
	}
	return nil
}

// deriveAdjacency builds adjacency[p] += s for every (topic, publisher) pair
// and each of its subscribers, in subscriber registration order. A
// publisher with the same subscriber across multiple topics appears once
// per topic — adjacency mirrors per-channel connectivity, not a deduplicated
// node graph.
func (g *Graph) deriveAdjacency() {
	for _, topic := range g.topicOrder {
		publisher := g.TopicPublisher[topic]
		for _, s := range g.TopicSubscribers[topic] {
			g.Adjacency[publisher.Name] = append(g.Adjacency[publisher.Name], s)
		}
	}
}

// Node looks up a node by name.
func (g *Graph) Node(name string) (*node.Node, bool) {
	n, ok := g.byName[name]
	return n, ok
}

// NodeIndex returns the deterministic declaration-order index of name.
func (g *Graph) NodeIndex(name string) (int, bool) {
	n, ok := g.byName[name]
	if !ok {
		return 0, false
	}
	return n.Index, true
}

// Subscribers returns the insertion-ordered subscriber list for topic.
func (g *Graph) Subscribers(topic string) []*node.Node {
	return g.TopicSubscribers[topic]
}

// Edges returns (src_index, dst_index) pairs for every publisher/subscriber
// channel, in topic-registration then subscriber-registration order — the
// same deterministic order adjacency was derived in.
func (g *Graph) Edges() [][2]int {
	var edges [][2]int
	for _, topic := range g.topicOrder {
		publisher := g.TopicPublisher[topic]
		for _, s := range g.TopicSubscribers[topic] {
			edges = append(edges, [2]int{publisher.Index, s.Index})
		}
	}
	return edges
}
