package simulator

import (
	"github.com/yundddd/graphsim/pkg/config"
	"github.com/yundddd/graphsim/pkg/graph"
)

// ValidateFault checks a parsed FaultConfig against the built graph and the
// run's stop_at before any event is dispatched.
func ValidateFault(g *graph.Graph, fc *config.FaultConfig, stopAt int) error {
	n, ok := g.Node(fc.InjectTo)
	if !ok {
		return faultTargetError("inject_to %q does not exist", fc.InjectTo)
	}
	if fc.InjectAt <= 0 || fc.InjectAt >= stopAt {
		return faultTargetError("inject_at %d must be strictly between 0 and stop_at %d", fc.InjectAt, stopAt)
	}
	if fc.AffectLoop != nil && !n.HasLoop() {
		return faultTargetError("affect_loop targets %q, which has no loop", fc.InjectTo)
	}
	if fc.AffectPublish != nil && !n.Publishes(fc.AffectPublish.Topic) {
		return faultTargetError("affect_publish targets topic %q, not published by %q", fc.AffectPublish.Topic, fc.InjectTo)
	}
	if fc.AffectReceive != nil {
		if _, ok := n.Subscription(fc.AffectReceive.Topic); !ok {
			return faultTargetError("affect_receive targets topic %q, not subscribed by %q", fc.AffectReceive.Topic, fc.InjectTo)
		}
	}
	return nil
}
