package simulator

// workKind tags the three kinds of work the scheduler dispatches. Values
// double as the tie-breaking priority between equally timestamped events:
// Loop=0, Subscription=1, Watchdog=2.
type workKind int

const (
	workLoop         workKind = 0
	workSubscription workKind = 1
	workWatchdog     workKind = 2
)

// Event is one scheduled unit of work. Topic is empty for Loop events and
// set for Subscription/Watchdog events, where it also participates in the
// tie-break. Data carries the delivered value for Subscription events and
// the last-known-receive-time sentinel for Watchdog events.
type Event struct {
	Timestamp int
	NodeName  string
	Work      workKind
	Topic     string
	Data      int
}

// less implements the event queue's strict total order:
// (timestamp, work_priority, node_name, topic). This order is part of the
// public contract — it is what makes simulations reproducible.
func less(a, b Event) bool {
	if a.Timestamp != b.Timestamp {
		return a.Timestamp < b.Timestamp
	}
	if a.Work != b.Work {
		return a.Work < b.Work
	}
	if a.NodeName != b.NodeName {
		return a.NodeName < b.NodeName
	}
	return a.Topic < b.Topic
}

// eventHeap is a container/heap min-heap over Event, ordered by less.
type eventHeap []Event

func (h eventHeap) Len() int            { return len(h) }
func (h eventHeap) Less(i, j int) bool  { return less(h[i], h[j]) }
func (h eventHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *eventHeap) Push(x interface{}) { *h = append(*h, x.(Event)) }
func (h *eventHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}
