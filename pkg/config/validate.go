package config

// ValidateGraph checks the structural invariants of a graph document: a
// non-empty node name, at least one of loop or a non-empty subscribe list
// per node, and length-2 ranges (already enforced by Range's custom
// unmarshaler, so not re-checked here).
func ValidateGraph(gc *GraphConfig) error {
	if len(gc.Nodes) == 0 {
		return newValidationError("nodes", "graph must declare at least one node")
	}

	for i := range gc.Nodes {
		n := &gc.Nodes[i]
		if n.Name == "" {
			return newValidationError("nodes[].name", "node name must not be empty")
		}
		if n.Loop == nil && n.Subscribe == nil {
			return newValidationError(n.Name, "node must declare a loop, a subscribe list, or both")
		}
		if n.Subscribe != nil && len(n.Subscribe) == 0 {
			return newValidationError(n.Name, "subscribe list must not be empty when present")
		}
		if n.Loop != nil && n.Loop.Period <= 0 {
			return newValidationError(n.Name, "loop period must be greater than zero")
		}
		for _, sub := range n.Subscribe {
			if sub.Topic == "" {
				return newValidationError(n.Name, "subscription topic must not be empty")
			}
		}
	}
	return nil
}
