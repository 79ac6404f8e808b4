package types

import (
	"fmt"
	"strings"
)

// Vertex is a node of the property graph.
type Vertex struct {
	ID         string         `json:"id" yaml:"id" mapstructure:"id"`
	Labels     []string       `json:"labels,omitempty" yaml:"labels,omitempty" mapstructure:"labels"`
	Properties map[string]any `json:"properties,omitempty" yaml:"properties,omitempty" mapstructure:"properties"`
}

// Validate checks if the Vertex has all required fields set.
func (v *Vertex) Validate() error {
	if v.ID == "" {
		return ErrEmptyID
	}
	return nil
}

// HasLabel reports whether the vertex carries the given label.
func (v *Vertex) HasLabel(label string) bool {
	for _, l := range v.Labels {
		if l == label {
			return true
		}
	}
	return false
}

// Property returns a property value and whether it was present.
func (v *Vertex) Property(key string) (any, bool) {
	if v.Properties == nil {
		return nil, false
	}
	val, ok := v.Properties[key]
	return val, ok
}

func (v *Vertex) String() string {
	return v.ID
}

// Edge is a directed, typed relationship between two vertices.
type Edge struct {
	ID         string         `json:"id" yaml:"id" mapstructure:"id"`
	Type       string         `json:"type" yaml:"type" mapstructure:"type"`
	StartID    string         `json:"start_id" yaml:"from" mapstructure:"start_id"`
	EndID      string         `json:"end_id" yaml:"to" mapstructure:"end_id"`
	Properties map[string]any `json:"properties,omitempty" yaml:"properties,omitempty" mapstructure:"properties"`
}

// Validate checks if the Edge has all required fields set.
func (e *Edge) Validate() error {
	if e.ID == "" {
		return ErrEmptyID
	}
	if e.Type == "" {
		return ErrEmptyEdgeType
	}
	if e.StartID == "" || e.EndID == "" {
		return ErrDanglingEdge
	}
	return nil
}

// OtherEnd returns the id of the endpoint that is not vertexID. For a self
// loop both endpoints are vertexID.
func (e *Edge) OtherEnd(vertexID string) string {
	if e.StartID == vertexID {
		return e.EndID
	}
	return e.StartID
}

// IsType reports whether the edge has one of the given types. No types
// matches everything.
func (e *Edge) IsType(edgeTypes ...string) bool {
	if len(edgeTypes) == 0 {
		return true
	}
	for _, t := range edgeTypes {
		if e.Type == t {
			return true
		}
	}
	return false
}

func (e *Edge) String() string {
	return fmt.Sprintf("(%s)-[%s:%s]->(%s)", e.StartID, e.ID, e.Type, e.EndID)
}

// Direction selects which edges of a vertex are followed.
type Direction int

const (
	// Outgoing follows edges that start at the vertex.
	Outgoing Direction = iota
	// Incoming follows edges that end at the vertex.
	Incoming
	// Both follows edges regardless of their direction.
	Both
)

// Reverse returns the opposite direction. Both is its own reverse.
func (d Direction) Reverse() Direction {
	switch d {
	case Outgoing:
		return Incoming
	case Incoming:
		return Outgoing
	default:
		return Both
	}
}

// Matches reports whether edge e is reachable from vertexID in direction d.
func (d Direction) Matches(e *Edge, vertexID string) bool {
	switch d {
	case Outgoing:
		return e.StartID == vertexID
	case Incoming:
		return e.EndID == vertexID
	default:
		return e.StartID == vertexID || e.EndID == vertexID
	}
}

func (d Direction) String() string {
	switch d {
	case Outgoing:
		return "outgoing"
	case Incoming:
		return "incoming"
	case Both:
		return "both"
	default:
		return fmt.Sprintf("Direction(%d)", int(d))
	}
}

// ParseDirection parses the textual form used in configuration and requests.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "out", "outgoing", "":
		return Outgoing, nil
	case "in", "incoming":
		return Incoming, nil
	case "both", "any":
		return Both, nil
	default:
		return Outgoing, fmt.Errorf("%w: %q", ErrInvalidDirection, s)
	}
}
