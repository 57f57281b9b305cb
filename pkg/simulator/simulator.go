// Package simulator implements the deterministic discrete-event scheduler:
// the priority queue, the dispatch loop with its fault-mediated delivery,
// callback execution, watchdog re-arming, and snapshot emission.
package simulator

import (
	"container/heap"
	"math/rand"

	"github.com/rs/zerolog"

	"github.com/yundddd/graphsim/pkg/config"
	"github.com/yundddd/graphsim/pkg/graph"
	"github.com/yundddd/graphsim/pkg/node"
)

// DefaultSeed is the fixed PRNG seed used when no override is given, keeping
// publish values and delivery delays reproducible across runs.
const DefaultSeed = 24

// Simulator owns the event queue, the logical clock, and the shared PRNG.
// Rng is an explicit field, not hidden process-global state, so tests can
// substitute a deterministic stream.
type Simulator struct {
	Graph  *graph.Graph
	Rng    *rand.Rand
	StopAt int
	Log    zerolog.Logger

	// FaultTargetIndex and FaultInjectAt are set by AttachFault and consumed
	// by the fault-label writer; FaultTargetIndex is -1 when no fault was
	// attached.
	FaultTargetIndex int
	FaultInjectAt    int

	queue   eventHeap
	clock   int
	lastRow []string
	Rows    [][]string
}

// Option configures a Simulator at construction time.
type Option func(*Simulator)

// WithSeed overrides the PRNG seed. Tests use this to substitute a
// deterministic stream distinct from the production default.
func WithSeed(seed int64) Option {
	return func(s *Simulator) { s.Rng = rand.New(rand.NewSource(seed)) } //nolint:gosec
}

// WithLogger attaches a structured logger for phase and dispatch logging.
func WithLogger(log zerolog.Logger) Option {
	return func(s *Simulator) { s.Log = log }
}

// New builds a Simulator over g, seeds the queue with initial loop and
// watchdog events, and applies opts.
func New(g *graph.Graph, stopAt int, opts ...Option) *Simulator {
	s := &Simulator{
		Graph:            g,
		StopAt:           stopAt,
		Rng:              rand.New(rand.NewSource(DefaultSeed)), //nolint:gosec
		Log:              zerolog.Nop(),
		FaultTargetIndex: -1,
	}
	for _, o := range opts {
		o(s)
	}
	s.seedInitialEvents()
	return s
}

func (s *Simulator) seedInitialEvents() {
	heap.Init(&s.queue)
	for _, n := range s.Graph.Nodes {
		if n.HasLoop() {
			s.push(Event{Timestamp: 0, NodeName: n.Name, Work: workLoop})
		}
		for _, sub := range n.Config.Subscribe {
			if sub.HasWatchdog() {
				s.push(Event{Timestamp: sub.Watchdog, NodeName: n.Name, Work: workWatchdog, Topic: sub.Topic, Data: -1})
			}
		}
	}
}

func (s *Simulator) push(ev Event) {
	heap.Push(&s.queue, ev)
}

// AttachFault validates fc against the graph and stop_at, then appends it to
// the target node's pending faults.
func (s *Simulator) AttachFault(fc *config.FaultConfig) error {
	if err := ValidateFault(s.Graph, fc, s.StopAt); err != nil {
		return err
	}
	n, _ := s.Graph.Node(fc.InjectTo)
	n.InjectFault(*fc)
	idx, _ := s.Graph.NodeIndex(fc.InjectTo)
	s.FaultTargetIndex = idx
	s.FaultInjectAt = fc.InjectAt
	return nil
}

// Run drives the dispatch loop until the queue empties or the clock reaches
// stop_at. Emitted snapshot rows accumulate in s.Rows.
func (s *Simulator) Run() error {
	s.Log.Info().Int("stop_at", s.StopAt).Msg("simulate: dispatch loop starting")

	for len(s.queue) > 0 {
		ev := heap.Pop(&s.queue).(Event)

		if ev.Timestamp > s.clock {
			s.clock = ev.Timestamp
		}
		if s.clock >= s.StopAt {
			s.queue = s.queue[:0]
			break
		}

		s.Log.Debug().
			Int("t", s.clock).
			Str("node", ev.NodeName).
			Int("work", int(ev.Work)).
			Str("topic", ev.Topic).
			Msg("simulate: dispatch")

		n, ok := s.Graph.Node(ev.NodeName)
		if !ok {
			continue
		}

		if n.IsCrashed {
			continue
		}
		if n.MaybeCrash(s.clock) {
			n.Crash()
			continue
		}

		var changed bool
		switch ev.Work {
		case workLoop:
			changed = s.dispatchLoop(n)
		case workSubscription:
			changed = s.dispatchSubscription(n, ev)
		case workWatchdog:
			changed = s.dispatchWatchdog(n, ev)
		}

		if changed {
			s.maybeEmit()
		}
	}

	s.Log.Info().Int("clock", s.clock).Int("rows", len(s.Rows)).Msg("simulate: dispatch loop finished")
	return nil
}

// maybeEmit flattens every node's feature vector in graph declaration order
// and appends it to Rows if it differs from the last emitted row.
func (s *Simulator) maybeEmit() {
	row := s.snapshotRow()
	if rowEqual(row, s.lastRow) {
		return
	}
	s.lastRow = row
	s.Rows = append(s.Rows, row)
}

func (s *Simulator) snapshotRow() []string {
	row := make([]string, 0, len(s.Graph.Nodes)*node.FeatureWidth)
	for _, n := range s.Graph.Nodes {
		row = append(row, n.Feature.Row()...)
	}
	return row
}

func rowEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
