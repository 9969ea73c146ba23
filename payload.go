// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package dagbench

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Call is one request against the text-generation backend.
type Call struct {
	Content       string        `json:"content" yaml:"content"`
	MaxOutputSize int           `json:"max_output_size" yaml:"max_output_size"`
	Stop          StopCondition `json:"stop_condition,omitempty" yaml:"stop_condition,omitempty"`
	IgnoreEOS     bool          `json:"ignore_eos,omitempty" yaml:"ignore_eos,omitempty"`
	Priority      *int          `json:"priority,omitempty" yaml:"priority,omitempty"`
}

// Unit is the payload of one work unit: its calls, executed in order, and an
// optional priority used by the predefined policy.
type Unit struct {
	Calls    []Call `json:"calls" yaml:"calls"`
	Priority *int   `json:"priority,omitempty" yaml:"priority,omitempty"`
}

// Payload maps each unit to its calls. It is read-only once loaded.
type Payload map[UnitID]Unit

// CallCount returns the total number of calls across all units.
func (p Payload) CallCount() int {
	n := 0
	for _, u := range p {
		n += len(u.Calls)
	}
	return n
}

// clone returns a deep copy of the unit so transforms cannot alias the input.
func (u Unit) clone() Unit {
	c := Unit{Calls: make([]Call, len(u.Calls))}
	if u.Priority != nil {
		p := *u.Priority
		c.Priority = &p
	}
	for i, call := range u.Calls {
		call.Stop = append(StopCondition(nil), call.Stop...)
		if call.Priority != nil {
			p := *call.Priority
			call.Priority = &p
		}
		c.Calls[i] = call
	}
	return c
}

// StopCondition is the set of strings that end generation. Documents may give
// it as a single string or as a list.
type StopCondition []string

func (s *StopCondition) UnmarshalJSON(data []byte) error {
	var one string
	if err := json.Unmarshal(data, &one); err == nil {
		*s = stopFromString(one)
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return fmt.Errorf("stop condition must be a string or list of strings: %w", err)
	}
	*s = many
	return nil
}

func (s *StopCondition) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		var one string
		if err := value.Decode(&one); err != nil {
			return err
		}
		*s = stopFromString(one)
		return nil
	case yaml.SequenceNode:
		var many []string
		if err := value.Decode(&many); err != nil {
			return err
		}
		*s = many
		return nil
	default:
		return fmt.Errorf("line %d: stop condition must be a string or list of strings", value.Line)
	}
}

func stopFromString(s string) StopCondition {
	if s == "" {
		return nil
	}
	return StopCondition{s}
}

// rawCall accepts both the canonical field names and the prompt/max_tokens/stop
// names used by recorded benchmark traces.
type rawCall struct {
	Content       *string       `json:"content" yaml:"content"`
	Prompt        *string       `json:"prompt" yaml:"prompt"`
	MaxOutputSize *int          `json:"max_output_size" yaml:"max_output_size"`
	MaxTokens     *int          `json:"max_tokens" yaml:"max_tokens"`
	Stop          StopCondition `json:"stop_condition" yaml:"stop_condition"`
	StopAlias     StopCondition `json:"stop" yaml:"stop"`
	IgnoreEOS     bool          `json:"ignore_eos" yaml:"ignore_eos"`
	Priority      *int          `json:"priority" yaml:"priority"`
}

func (r rawCall) call() Call {
	c := Call{
		Stop:      r.Stop,
		IgnoreEOS: r.IgnoreEOS,
		Priority:  r.Priority,
	}
	switch {
	case r.Content != nil:
		c.Content = *r.Content
	case r.Prompt != nil:
		c.Content = *r.Prompt
	}
	switch {
	case r.MaxOutputSize != nil:
		c.MaxOutputSize = *r.MaxOutputSize
	case r.MaxTokens != nil:
		c.MaxOutputSize = *r.MaxTokens
	}
	if c.Stop == nil {
		c.Stop = r.StopAlias
	}
	return c
}

func (c *Call) UnmarshalJSON(data []byte) error {
	var r rawCall
	if err := json.Unmarshal(data, &r); err != nil {
		return err
	}
	*c = r.call()
	return nil
}

func (c *Call) UnmarshalYAML(value *yaml.Node) error {
	var r rawCall
	if err := value.Decode(&r); err != nil {
		return err
	}
	*c = r.call()
	return nil
}

// rawUnit accepts "funcs" as an alias for "calls".
type rawUnit struct {
	Calls    []Call `json:"calls" yaml:"calls"`
	Funcs    []Call `json:"funcs" yaml:"funcs"`
	Priority *int   `json:"priority" yaml:"priority"`
}

func (r rawUnit) unit() Unit {
	u := Unit{Calls: r.Calls, Priority: r.Priority}
	if u.Calls == nil {
		u.Calls = r.Funcs
	}
	return u
}

func (u *Unit) UnmarshalJSON(data []byte) error {
	var r rawUnit
	if err := json.Unmarshal(data, &r); err != nil {
		return err
	}
	*u = r.unit()
	return nil
}

func (u *Unit) UnmarshalYAML(value *yaml.Node) error {
	var r rawUnit
	if err := value.Decode(&r); err != nil {
		return err
	}
	*u = r.unit()
	return nil
}

// ValidateWorkload checks the graph and confirms that every unit it names has
// a payload entry.
func ValidateWorkload(g Graph, p Payload) error {
	if err := g.Validate(); err != nil {
		return err
	}
	for _, u := range g.Units() {
		if _, ok := p[u]; !ok {
			return &MissingPayloadError{Unit: u}
		}
	}
	return nil
}

// Workload pairs a dependency graph with the payload of its units.
type Workload struct {
	Graph   Graph
	Payload Payload
}
