// Package config defines the on-disk graph and fault configuration records
// consumed by the simulator core, plus strict YAML loading for both.
package config

// Range is an inclusive integer range decoded from a two-element YAML
// sequence [lo, hi].
type Range struct {
	Lo int
	Hi int
}

// UnmarshalYAML decodes a two-element sequence into a Range.
func (r *Range) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var pair [2]int
	if err := unmarshal(&pair); err != nil {
		return err
	}
	r.Lo, r.Hi = pair[0], pair[1]
	return nil
}

// MarshalYAML encodes a Range back into a two-element sequence.
func (r Range) MarshalYAML() (interface{}, error) {
	return [2]int{r.Lo, r.Hi}, nil
}

// PublishSpec describes one outbound publish performed by a callback.
type PublishSpec struct {
	Topic      string `yaml:"topic"`
	ValueRange Range  `yaml:"value_range"`
	DelayRange Range  `yaml:"delay_range"`
}

// CallbackRole identifies which feature-encoding a callback execution is
// tagged with. The role is a property of the dispatch site, not of the
// callback declaration: the same CallbackSpec shape serves nominal, invalid,
// lost, and loop positions, and the scheduler passes the role matching the
// position it is executing.
type CallbackRole int

const (
	RoleNominal CallbackRole = iota
	RoleInvalidInput
	RoleLostInput
	RoleLoop
)

// CallbackSpec is the unit of executable behavior attached to a loop or a
// subscription. Noop callbacks carry neither publishes nor a fault.
type CallbackSpec struct {
	Publish []PublishSpec `yaml:"publish,omitempty"`
	Fault   *FaultConfig  `yaml:"fault,omitempty"`
	Noop    bool          `yaml:"noop,omitempty"`
}

// IsNoop reports whether the callback has no observable effect.
func (c *CallbackSpec) IsNoop() bool {
	return c == nil || (len(c.Publish) == 0 && c.Fault == nil)
}

// SubscriptionSpec describes a node's subscription to one topic.
type SubscriptionSpec struct {
	Topic                string        `yaml:"topic"`
	ValidRange           Range         `yaml:"valid_range"`
	Watchdog             int           `yaml:"watchdog,omitempty"` // 0 = no watchdog
	NominalCallback      *CallbackSpec `yaml:"nominal_callback,omitempty"`
	InvalidInputCallback *CallbackSpec `yaml:"invalid_input_callback,omitempty"`
	LostInputCallback    *CallbackSpec `yaml:"lost_input_callback,omitempty"`
}

// HasWatchdog reports whether the subscription arms a liveness watchdog.
func (s *SubscriptionSpec) HasWatchdog() bool {
	return s.Watchdog > 0
}

// LoopSpec describes a node's periodic timer.
type LoopSpec struct {
	Period   int          `yaml:"period"`
	Callback CallbackSpec `yaml:"callback"`
}

// NodeConfig is one node's declaration in the graph document.
type NodeConfig struct {
	Name      string             `yaml:"name"`
	Loop      *LoopSpec          `yaml:"loop,omitempty"`
	Subscribe []SubscriptionSpec `yaml:"subscribe,omitempty"`
}

// GraphConfig is the top-level graph document: a declared sequence of nodes.
type GraphConfig struct {
	Nodes []NodeConfig `yaml:"nodes"`
}

// AffectPublishKind selects between the two publish-axis fault variants.
type AffectPublishKind string

const (
	AffectPublishDrop   AffectPublishKind = "drop"
	AffectPublishMutate AffectPublishKind = "mutate"
)

// AffectPublish perturbs outbound publishes of one topic: either dropping up
// to Drop of them (DropPublish), or replacing up to Count of their values
// with Value (MutatePublish).
type AffectPublish struct {
	Type  AffectPublishKind `yaml:"type"`
	Topic string            `yaml:"topic"`
	Drop  int               `yaml:"drop,omitempty"`
	Value int               `yaml:"value,omitempty"`
	Count int               `yaml:"count,omitempty"`
}

// AffectReceiveKind selects between the two receive-axis fault variants.
type AffectReceiveKind string

const (
	AffectReceiveDrop  AffectReceiveKind = "drop"
	AffectReceiveDelay AffectReceiveKind = "delay"
)

// AffectReceive perturbs inbound subscription deliveries of one topic.
type AffectReceive struct {
	Type  AffectReceiveKind `yaml:"type"`
	Topic string            `yaml:"topic"`
	Drop  int               `yaml:"drop,omitempty"`
	Delay int               `yaml:"delay,omitempty"`
	Count int               `yaml:"count,omitempty"`
}

// AffectLoopKind selects between the two loop-axis fault variants.
type AffectLoopKind string

const (
	AffectLoopDrop  AffectLoopKind = "drop"
	AffectLoopDelay AffectLoopKind = "delay"
)

// AffectLoop perturbs a node's own periodic loop ticks.
type AffectLoop struct {
	Type  AffectLoopKind `yaml:"type"`
	Drop  int            `yaml:"drop,omitempty"`
	Delay int            `yaml:"delay,omitempty"`
	Count int            `yaml:"count,omitempty"`
}

// FaultConfig names a target node and at most one perturbation per axis.
// A fault document carries at most one of each axis; Crash, if set, fires
// unconditionally and supersedes the others for the target node.
type FaultConfig struct {
	InjectTo      string         `yaml:"inject_to"`
	InjectAt      int            `yaml:"inject_at"`
	AffectPublish *AffectPublish `yaml:"affect_publish,omitempty"`
	AffectReceive *AffectReceive `yaml:"affect_receive,omitempty"`
	AffectLoop    *AffectLoop    `yaml:"affect_loop,omitempty"`
	Crash         bool           `yaml:"crash,omitempty"`
}
