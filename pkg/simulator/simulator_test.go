package simulator

import (
	"container/heap"
	"testing"

	"github.com/yundddd/graphsim/pkg/config"
	"github.com/yundddd/graphsim/pkg/graph"
	"github.com/yundddd/graphsim/pkg/node"
)

// twoNodeLoopConfig builds the smallest interesting graph: A (loop period
// 10, publishes T1 [5,5]/[0,0] to B) and B (subscribes T1, nominal noop).
func twoNodeLoopConfig() *config.GraphConfig {
	return &config.GraphConfig{Nodes: []config.NodeConfig{
		{
			Name: "A",
			Loop: &config.LoopSpec{
				Period: 10,
				Callback: config.CallbackSpec{
					Publish: []config.PublishSpec{
						{Topic: "T1", ValueRange: config.Range{Lo: 5, Hi: 5}, DelayRange: config.Range{Lo: 0, Hi: 0}},
					},
				},
			},
		},
		{
			Name: "B",
			Subscribe: []config.SubscriptionSpec{
				{
					Topic:           "T1",
					ValidRange:      config.Range{Lo: 0, Hi: 10},
					NominalCallback: &config.CallbackSpec{Noop: true},
				},
			},
		},
	}}
}

func buildGraph(t *testing.T, cfg *config.GraphConfig) *graph.Graph {
	t.Helper()
	g, err := graph.Build(cfg)
	if err != nil {
		t.Fatalf("graph.Build: %v", err)
	}
	return g
}

func TestScenarioTwoNodeLoop(t *testing.T) {
	g := buildGraph(t, twoNodeLoopConfig())
	sim := New(g, 25)
	if err := sim.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}

	a, _ := g.Node("A")
	b, _ := g.Node("B")
	if a.Feature.LoopCount != 1+3 {
		t.Errorf("A LoopCount = %d, want %d (3 dispatches at t=0,10,20)", a.Feature.LoopCount, 4)
	}
	if b.Feature.SubscriptionTotalCount != 1+3 {
		t.Errorf("B SubscriptionTotalCount = %d, want %d", b.Feature.SubscriptionTotalCount, 4)
	}
	if b.Feature.LastEventTimestamp != 20 {
		t.Errorf("B LastEventTimestamp = %d, want 20", b.Feature.LastEventTimestamp)
	}
}

func TestScenarioDropLoop(t *testing.T) {
	g := buildGraph(t, twoNodeLoopConfig())
	sim := New(g, 25)
	a, _ := g.Node("A")
	a.InjectFault(config.FaultConfig{
		InjectTo:   "A",
		InjectAt:   5,
		AffectLoop: &config.AffectLoop{Type: config.AffectLoopDrop, Drop: 2},
	})
	if err := sim.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}

	b, _ := g.Node("B")
	// Only the t=0 tick (before inject_at=5) produces a callback; the ticks
	// at 10 and 20 are dropped, so B never hears from A again.
	if b.Feature.SubscriptionTotalCount != 1+1 {
		t.Errorf("B SubscriptionTotalCount = %d, want %d (only the t=0 delivery)", b.Feature.SubscriptionTotalCount, 2)
	}
}

func TestScenarioDelayReceive(t *testing.T) {
	g := buildGraph(t, twoNodeLoopConfig())
	sim := New(g, 25)
	b, _ := g.Node("B")
	b.InjectFault(config.FaultConfig{
		InjectTo:      "B",
		InjectAt:      5,
		AffectReceive: &config.AffectReceive{Type: config.AffectReceiveDelay, Topic: "T1", Delay: 7, Count: 1},
	})
	if err := sim.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	// The t=10 delivery is requeued to t=17; the t=20 delivery is unaffected.
	if b.Feature.LastEventTimestamp != 20 {
		t.Errorf("B LastEventTimestamp = %d, want 20", b.Feature.LastEventTimestamp)
	}
	if b.Feature.SubscriptionTotalCount != 1+3 {
		t.Errorf("B SubscriptionTotalCount = %d, want %d (t=0, t=17 delayed, t=20)", b.Feature.SubscriptionTotalCount, 4)
	}
}

func TestScenarioMutatePublish(t *testing.T) {
	cfg := twoNodeLoopConfig()
	cfg.Nodes[1].Subscribe[0].ValidRange = config.Range{Lo: 0, Hi: 10}
	cfg.Nodes[1].Subscribe[0].InvalidInputCallback = &config.CallbackSpec{Noop: true}
	g := buildGraph(t, cfg)
	// stop_at=15 stops the run right after the t=10 mutated delivery, before
	// the t=20 tick would overwrite CALLBACK_TYPE back to nominal.
	sim := New(g, 15)
	a, _ := g.Node("A")
	a.InjectFault(config.FaultConfig{
		InjectTo:      "A",
		InjectAt:      5,
		AffectPublish: &config.AffectPublish{Type: config.AffectPublishMutate, Topic: "T1", Value: 99, Count: 1},
	})
	if err := sim.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}

	b, _ := g.Node("B")
	if b.Feature.CallbackType != node.CallbackTypeInvalid {
		t.Errorf("B CallbackType = %d, want %d (invalid input from mutated value 99)", b.Feature.CallbackType, node.CallbackTypeInvalid)
	}
}

func TestScenarioCrash(t *testing.T) {
	g := buildGraph(t, twoNodeLoopConfig())
	sim := New(g, 25)
	a, _ := g.Node("A")
	a.InjectFault(config.FaultConfig{InjectTo: "A", InjectAt: 15, Crash: true})
	if err := sim.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !a.IsCrashed {
		t.Fatal("A should be crashed by the end of the run")
	}
	// Only ticks at t=0 and t=10 (both < 15) produce callbacks.
	if a.Feature.LoopCount != 1+2 {
		t.Errorf("A LoopCount = %d, want %d", a.Feature.LoopCount, 3)
	}
}

func TestScenarioWatchdogLostInput(t *testing.T) {
	cfg := &config.GraphConfig{Nodes: []config.NodeConfig{
		{
			Name: "B",
			Subscribe: []config.SubscriptionSpec{
				{
					Topic:             "T1",
					ValidRange:        config.Range{Lo: 0, Hi: 10},
					Watchdog:          5,
					LostInputCallback: &config.CallbackSpec{Noop: true},
				},
			},
		},
	}}
	g := buildGraph(t, cfg)
	sim := New(g, 21)
	if err := sim.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	b, _ := g.Node("B")
	// Lost-input fires at t=5,10,15,20. The first firing flips CALLBACK_TYPE;
	// the later ones change nothing observable, so dedup leaves a single row.
	if b.Feature.CallbackType != node.CallbackTypeLost {
		t.Errorf("B CallbackType = %d, want %d", b.Feature.CallbackType, node.CallbackTypeLost)
	}
	if len(sim.Rows) != 1 {
		t.Errorf("len(Rows) = %d, want 1 (repeat watchdog ticks deduplicated)", len(sim.Rows))
	}
}

func TestNoWorkPastDeadline(t *testing.T) {
	g := buildGraph(t, twoNodeLoopConfig())
	sim := New(g, 25)
	if err := sim.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	// No event with timestamp >= stop_at may trigger a callback, so every
	// node's last observed event stays strictly below stop_at.
	for _, n := range g.Nodes {
		if n.Feature.LastEventTimestamp >= 25 {
			t.Errorf("%s LastEventTimestamp = %d, want < stop_at 25", n.Name, n.Feature.LastEventTimestamp)
		}
	}
	if len(sim.queue) != 0 {
		t.Errorf("queue not cleared at termination: %d events remain", len(sim.queue))
	}
}

func TestEventOrderingTieBreak(t *testing.T) {
	// Equal timestamps order by work priority (Loop < Subscription <
	// Watchdog), then node name, then topic.
	events := []Event{
		{Timestamp: 5, NodeName: "b", Work: workWatchdog, Topic: "t1"},
		{Timestamp: 5, NodeName: "b", Work: workSubscription, Topic: "t2"},
		{Timestamp: 5, NodeName: "a", Work: workSubscription, Topic: "t1"},
		{Timestamp: 5, NodeName: "b", Work: workSubscription, Topic: "t1"},
		{Timestamp: 5, NodeName: "b", Work: workLoop},
		{Timestamp: 3, NodeName: "z", Work: workWatchdog, Topic: "t9"},
	}

	var h eventHeap
	heap.Init(&h)
	for _, ev := range events {
		heap.Push(&h, ev)
	}

	want := []Event{
		{Timestamp: 3, NodeName: "z", Work: workWatchdog, Topic: "t9"},
		{Timestamp: 5, NodeName: "b", Work: workLoop},
		{Timestamp: 5, NodeName: "a", Work: workSubscription, Topic: "t1"},
		{Timestamp: 5, NodeName: "b", Work: workSubscription, Topic: "t1"},
		{Timestamp: 5, NodeName: "b", Work: workSubscription, Topic: "t2"},
		{Timestamp: 5, NodeName: "b", Work: workWatchdog, Topic: "t1"},
	}
	for i, w := range want {
		got := heap.Pop(&h).(Event)
		if got != w {
			t.Errorf("pop %d = %+v, want %+v", i, got, w)
		}
	}
}

func TestSnapshotDeduplication(t *testing.T) {
	g := buildGraph(t, twoNodeLoopConfig())
	sim := New(g, 25)
	if err := sim.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	for i := 1; i < len(sim.Rows); i++ {
		if rowEqual(sim.Rows[i], sim.Rows[i-1]) {
			t.Fatalf("consecutive rows %d and %d are identical", i-1, i)
		}
	}
}

func TestDeterminismAcrossRuns(t *testing.T) {
	run := func() [][]string {
		g := buildGraph(t, twoNodeLoopConfig())
		sim := New(g, 25, WithSeed(24))
		if err := sim.Run(); err != nil {
			t.Fatalf("Run: %v", err)
		}
		return sim.Rows
	}

	first := run()
	second := run()
	if len(first) != len(second) {
		t.Fatalf("row count differs across runs: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if !rowEqual(first[i], second[i]) {
			t.Fatalf("row %d differs across runs: %v vs %v", i, first[i], second[i])
		}
	}
}

func TestAttachFaultValidatesTarget(t *testing.T) {
	g := buildGraph(t, twoNodeLoopConfig())
	sim := New(g, 25)
	err := sim.AttachFault(&config.FaultConfig{InjectTo: "nonexistent", InjectAt: 5})
	if err == nil {
		t.Fatal("AttachFault: want error for unknown target, got nil")
	}
	if _, ok := err.(*FaultTargetError); !ok {
		t.Errorf("err type = %T, want *FaultTargetError", err)
	}
}
