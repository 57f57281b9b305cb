// Package datasetgen drives randomized batches of simulation rounds: each
// round samples a fresh fault onto a freshly built graph and runs it to
// completion, producing one set of CSV artifacts and one run manifest.
package datasetgen

import (
	"fmt"
	"math/rand"

	"github.com/yundddd/graphsim/pkg/config"
)

// Sampler draws a random, always-eligible FaultConfig against a graph
// declaration.
// inject_at is biased into the first half of stop_at — a fault injected in
// the tail has little time to manifest before the run ends.
type Sampler struct {
	rng *rand.Rand
}

// NewSampler returns a Sampler seeded with seed.
func NewSampler(seed int64) *Sampler {
	return &Sampler{rng: rand.New(rand.NewSource(seed))} //nolint:gosec
}

// eligibleAxis enumerates the fault axes available on a given node: a loop
// axis only if the node has a loop, a publish axis per topic it publishes,
// a receive axis per topic it subscribes to.
type eligibleAxis struct {
	kind  string // "loop", "publish", "receive"
	topic string // set for "publish" and "receive"
}

func eligibleAxes(n *config.NodeConfig) []eligibleAxis {
	var axes []eligibleAxis
	if n.Loop != nil {
		axes = append(axes, eligibleAxis{kind: "loop"})
	}
	for _, topic := range publishedTopics(n) {
		axes = append(axes, eligibleAxis{kind: "publish", topic: topic})
	}
	for _, sub := range n.Subscribe {
		axes = append(axes, eligibleAxis{kind: "receive", topic: sub.Topic})
	}
	return axes
}

// publishedTopics collects every topic n publishes to across its loop
// callback and its three subscription-role callbacks, deduplicated and in a
// stable order derived from declaration order.
func publishedTopics(n *config.NodeConfig) []string {
	var topics []string
	seen := map[string]struct{}{}
	addFrom := func(cb *config.CallbackSpec) {
		if cb == nil {
			return
		}
		for _, p := range cb.Publish {
			if _, ok := seen[p.Topic]; ok {
				continue
			}
			seen[p.Topic] = struct{}{}
			topics = append(topics, p.Topic)
		}
	}
	if n.Loop != nil {
		addFrom(&n.Loop.Callback)
	}
	for _, sub := range n.Subscribe {
		addFrom(sub.NominalCallback)
		addFrom(sub.InvalidInputCallback)
		addFrom(sub.LostInputCallback)
	}
	return topics
}

// Sample returns a fault targeting a uniformly-chosen node and axis from
// cfg, with inject_at biased into the first half of stopAt. It returns an
// error if no node has any eligible axis, which only an empty node list can
// produce once the config validator has run.
func (s *Sampler) Sample(cfg *config.GraphConfig, stopAt int) (*config.FaultConfig, error) {
	type candidate struct {
		node *config.NodeConfig
		axis eligibleAxis
	}

	var candidates []candidate
	for i := range cfg.Nodes {
		n := &cfg.Nodes[i]
		for _, axis := range eligibleAxes(n) {
			candidates = append(candidates, candidate{node: n, axis: axis})
		}
	}
	if len(candidates) == 0 {
		return nil, fmt.Errorf("datasetgen: no node in graph has an eligible fault axis")
	}

	c := candidates[s.rng.Intn(len(candidates))]
	injectAt := s.biasedInjectAt(stopAt)

	fc := &config.FaultConfig{InjectTo: c.node.Name, InjectAt: injectAt}

	switch c.axis.kind {
	case "loop":
		s.fillLoopFault(fc)
	case "publish":
		s.fillPublishFault(fc, c.axis.topic)
	case "receive":
		s.fillReceiveFault(fc, c.axis.topic)
	}
	return fc, nil
}

// biasedInjectAt draws uniformly from [1, max(1, stopAt/2)].
func (s *Sampler) biasedInjectAt(stopAt int) int {
	half := stopAt / 2
	if half < 1 {
		half = 1
	}
	return 1 + s.rng.Intn(half)
}

func (s *Sampler) fillLoopFault(fc *config.FaultConfig) {
	if s.rng.Intn(2) == 0 {
		fc.AffectLoop = &config.AffectLoop{Type: config.AffectLoopDrop, Drop: 1 + s.rng.Intn(3)}
	} else {
		fc.AffectLoop = &config.AffectLoop{Type: config.AffectLoopDelay, Delay: 1 + s.rng.Intn(20)}
	}
}

func (s *Sampler) fillPublishFault(fc *config.FaultConfig, topic string) {
	if s.rng.Intn(2) == 0 {
		fc.AffectPublish = &config.AffectPublish{Type: config.AffectPublishDrop, Topic: topic, Drop: 1 + s.rng.Intn(3)}
	} else {
		fc.AffectPublish = &config.AffectPublish{
			Type:  config.AffectPublishMutate,
			Topic: topic,
			Value: s.rng.Intn(1000),
			Count: 1 + s.rng.Intn(3),
		}
	}
}

func (s *Sampler) fillReceiveFault(fc *config.FaultConfig, topic string) {
	if s.rng.Intn(2) == 0 {
		fc.AffectReceive = &config.AffectReceive{Type: config.AffectReceiveDrop, Topic: topic, Drop: 1 + s.rng.Intn(3)}
	} else {
		fc.AffectReceive = &config.AffectReceive{Type: config.AffectReceiveDelay, Topic: topic, Delay: 1 + s.rng.Intn(20)}
	}
}
