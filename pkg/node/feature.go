package node

import "strconv"

// Feature indices, in the fixed order every node's vector is written in.
// The width is the same for every node in a graph; FeatureWidth is the
// single source of truth for round-trip schema checks.
const FeatureWidth = 10

// Event-type and callback-type encodings. Values start at 2; 0 and 1 are
// reserved as sentinels in the downstream feature format.
const (
	EventTypeLoop         = 2
	EventTypeSubscription = 3
)

const (
	CallbackTypeNominal = 2
	CallbackTypeInvalid = 3
	CallbackTypeLost    = 4
	CallbackTypeLoop    = 5
)

// FeatureVector is one node's fixed-width feature row. Static fields are
// written once at construction; dynamic fields mutate during simulation.
// All dynamic counters start at 1 — an intentional feature-encoding choice
// from the source format, not a count of real events.
type FeatureVector struct {
	// Static.
	NodeName         string
	NumSubscriptions int
	NumPublications  int
	LoopPeriod       int

	// Dynamic.
	LastEventTimestamp     int
	LastEventType          int
	CallbackType           int
	LoopCount              int
	SubscriptionTotalCount int
	PublishCount           int
}

// NewFeatureVector builds the static portion of a node's feature vector and
// initializes every dynamic counter to 1.
func NewFeatureVector(name string, numSubscriptions, numPublications, loopPeriod int) FeatureVector {
	return FeatureVector{
		NodeName:               name,
		NumSubscriptions:       numSubscriptions,
		NumPublications:        numPublications,
		LoopPeriod:             loopPeriod,
		LastEventTimestamp:     1,
		LastEventType:          1,
		CallbackType:           1,
		LoopCount:              1,
		SubscriptionTotalCount: 1,
		PublishCount:           1,
	}
}

// Row flattens the vector into FeatureWidth string cells, in field order.
func (f *FeatureVector) Row() []string {
	return []string{
		f.NodeName,
		strconv.Itoa(f.NumSubscriptions),
		strconv.Itoa(f.NumPublications),
		strconv.Itoa(f.LoopPeriod),
		strconv.Itoa(f.LastEventTimestamp),
		strconv.Itoa(f.LastEventType),
		strconv.Itoa(f.CallbackType),
		strconv.Itoa(f.LoopCount),
		strconv.Itoa(f.SubscriptionTotalCount),
		strconv.Itoa(f.PublishCount),
	}
}
