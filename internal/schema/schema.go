// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package schema publishes the JSON Schema of converted story output.
package schema

import (
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/invopop/jsonschema"

	"github.com/pdiddy/twison/pkg/types"
)

const (
	propertyValueDef = "PropertyValue"
	title            = "twison talk_topic export"
)

var (
	propertyValueType = reflect.TypeOf(types.PropertyValue{})
	propertiesType    = reflect.TypeOf(types.Properties{})
)

// Reflect builds the schema of a converted story: an array of passages.
func Reflect() *jsonschema.Schema {
	r := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		Mapper:                    mapPropertyTypes,
	}
	s := r.Reflect([]types.Passage{})
	s.Title = title

	if s.Definitions == nil {
		s.Definitions = jsonschema.Definitions{}
	}
	s.Definitions[propertyValueDef] = &jsonschema.Schema{
		OneOf: []*jsonschema.Schema{
			{Type: "string"},
			propertyMapping(),
		},
	}
	return s
}

// Generate returns the schema as indented JSON.
func Generate() ([]byte, error) {
	data, err := json.MarshalIndent(Reflect(), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling schema: %w", err)
	}
	return append(data, '\n'), nil
}

// mapPropertyTypes replaces the reflected shape of the property types,
// whose fields are unexported or custom-marshaled, with their JSON form.
func mapPropertyTypes(t reflect.Type) *jsonschema.Schema {
	switch t {
	case propertyValueType:
		return propertyValueRef()
	case propertiesType:
		return propertyMapping()
	}
	return nil
}

func propertyValueRef() *jsonschema.Schema {
	return &jsonschema.Schema{Ref: "#/$defs/" + propertyValueDef}
}

func propertyMapping() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type:                 "object",
		AdditionalProperties: propertyValueRef(),
	}
}
