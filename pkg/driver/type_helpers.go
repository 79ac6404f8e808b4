package driver

import (
	"encoding/json"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j/dbtype"
)

// TypeConversionError reports a database value of an unexpected Go type.
type TypeConversionError struct {
	Expected string
	Actual   string
	Field    string
}

func (e *TypeConversionError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("type conversion error for field %q: expected %s, got %s", e.Field, e.Expected, e.Actual)
	}
	return fmt.Sprintf("type conversion error: expected %s, got %s", e.Expected, e.Actual)
}

// NewTypeConversionError creates a new TypeConversionError.
func NewTypeConversionError(expected, actual, field string) *TypeConversionError {
	return &TypeConversionError{
		Expected: expected,
		Actual:   actual,
		Field:    field,
	}
}

// AsDBNode converts v to dbtype.Node.
func AsDBNode(v any) (dbtype.Node, bool) {
	node, ok := v.(dbtype.Node)
	return node, ok
}

// AsDBRelationship converts v to dbtype.Relationship.
func AsDBRelationship(v any) (dbtype.Relationship, bool) {
	rel, ok := v.(dbtype.Relationship)
	return rel, ok
}

// AsString converts v to string.
func AsString(v any) (string, bool) {
	s, ok := v.(string)
	return s, ok
}

// AsStringSlice converts v to []string, accepting both []string and []any
// holding only strings (the form most drivers decode lists into).
func AsStringSlice(v any) ([]string, bool) {
	switch s := v.(type) {
	case []string:
		return s, true
	case []any:
		out := make([]string, 0, len(s))
		for _, item := range s {
			str, ok := item.(string)
			if !ok {
				return nil, false
			}
			out = append(out, str)
		}
		return out, true
	default:
		return nil, false
	}
}

// AsProperties decodes a property map stored either natively or as a JSON
// string column.
func AsProperties(v any) (map[string]any, bool) {
	switch p := v.(type) {
	case nil:
		return nil, true
	case map[string]any:
		return p, true
	case string:
		if p == "" {
			return nil, true
		}
		var props map[string]any
		if err := json.Unmarshal([]byte(p), &props); err != nil {
			return nil, false
		}
		return props, true
	default:
		return nil, false
	}
}

// MustDBNode converts v to dbtype.Node or returns an error.
func MustDBNode(v any, field string) (dbtype.Node, error) {
	node, ok := AsDBNode(v)
	if !ok {
		return dbtype.Node{}, NewTypeConversionError("dbtype.Node", fmt.Sprintf("%T", v), field)
	}
	return node, nil
}

// MustDBRelationship converts v to dbtype.Relationship or returns an error.
func MustDBRelationship(v any, field string) (dbtype.Relationship, error) {
	rel, ok := AsDBRelationship(v)
	if !ok {
		return dbtype.Relationship{}, NewTypeConversionError("dbtype.Relationship", fmt.Sprintf("%T", v), field)
	}
	return rel, nil
}

// MustString converts v to string or returns an error.
func MustString(v any, field string) (string, error) {
	s, ok := AsString(v)
	if !ok {
		return "", NewTypeConversionError("string", fmt.Sprintf("%T", v), field)
	}
	return s, nil
}
