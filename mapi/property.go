package mapi

import "fmt"

// ErrTagTypeMismatch is returned by NewProperty when a tag's declared type
// and the value's actual type disagree.
var ErrTagTypeMismatch = fmt.Errorf("mapi: tag type does not match value type")

// Property pairs a property tag with its typed value. It is the unit the
// property-stream writer and variable-stream emitter operate on.
type Property struct {
	Tag   Tag
	Value Value
}

// NewProperty validates that value's type matches tag.Type (both must agree,
// since the tag carries the type redundantly with the value) and returns a
// Property. Callers that build tags and values together (the common case,
// via the well-known PidTag* vars) don't need this; it exists for generic
// "arbitrary additional tagged properties" callers described in the data
// model, where a caller builds a raw Tag from user input.
func NewProperty(tag Tag, value Value) (Property, error) {
	if tag.Type != value.Type() {
		return Property{}, fmt.Errorf("%w: tag %04X declares %s, value is %s", ErrTagTypeMismatch, tag.ID, tag.Type, value.Type())
	}
	return Property{Tag: tag, Value: value}, nil
}
