package config

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// strictDecode parses data into v, rejecting unknown fields. An unrecognized
// key under a subscription's callback block (anything other than
// nominal_callback/invalid_input_callback/lost_input_callback) surfaces here
// as a decode error, which is how the loader catches an unknown callback
// role.
func strictDecode(data []byte, v interface{}) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("config validation: %w", err)
	}
	return nil
}

// LoadGraph reads and strictly parses a graph document from path, then
// validates the result.
func LoadGraph(path string) (*GraphConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read graph config %s: %w", path, err)
	}

	var gc GraphConfig
	if err := strictDecode(data, &gc); err != nil {
		return nil, err
	}

	if err := ValidateGraph(&gc); err != nil {
		return nil, err
	}
	return &gc, nil
}

// LoadFault reads and strictly parses a fault document from path. FaultTarget
// validation (graph cross-references, inject_at bounds) happens later, once a
// Graph and a stop_at are available.
func LoadFault(path string) (*FaultConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fault config %s: %w", path, err)
	}

	var fc FaultConfig
	if err := strictDecode(data, &fc); err != nil {
		return nil, err
	}
	return &fc, nil
}
