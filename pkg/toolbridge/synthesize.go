package toolbridge

import (
	"fmt"

	"github.com/xpanvictor/newscap/pkg/mcp"
)

// SchemaError means a descriptor declares a parameter this bridge
// cannot express in the agent service's calling convention.
type SchemaError struct {
	Tool     string
	Property string
	Type     string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("toolbridge: tool %s: property %q has unsupported type %q", e.Tool, e.Property, e.Type)
}

// parameter types the agent service's function calling accepts
var supportedTypes = map[string]bool{
	"string":  true,
	"integer": true,
	"number":  true,
	"boolean": true,
	"array":   true,
	"object":  true,
}

// Synthesize maps one ToolDescriptor to one FunctionStub. Pure: no
// side effects, same input gives the same output, name preserved
// byte-for-byte.
func Synthesize(desc mcp.ToolDescriptor) (FunctionStub, error) {
	params := StubParameters{
		Type:       "object",
		Properties: map[string]StubProperty{},
	}
	if len(desc.InputSchema.Required) > 0 {
		params.Required = append([]string(nil), desc.InputSchema.Required...)
	}

	for name, prop := range desc.InputSchema.Properties {
		sp, err := synthesizeProperty(desc.Name, name, prop)
		if err != nil {
			return FunctionStub{}, err
		}
		params.Properties[name] = sp
	}

	return FunctionStub{
		Name:        desc.Name,
		Description: desc.Description,
		Parameters:  params,
	}, nil
}

func synthesizeProperty(tool, name string, schema mcp.Schema) (StubProperty, error) {
	if !supportedTypes[schema.Type] {
		return StubProperty{}, &SchemaError{Tool: tool, Property: name, Type: schema.Type}
	}

	sp := StubProperty{
		Type:        schema.Type,
		Description: schema.Description,
	}
	if len(schema.Enum) > 0 {
		sp.Enum = append([]string(nil), schema.Enum...)
	}

	switch schema.Type {
	case "array":
		if schema.Items == nil {
			return StubProperty{}, &SchemaError{Tool: tool, Property: name, Type: "array without items"}
		}
		items, err := synthesizeProperty(tool, name+"[]", *schema.Items)
		if err != nil {
			return StubProperty{}, err
		}
		sp.Items = &items
	case "object":
		if len(schema.Properties) > 0 {
			sp.Properties = make(map[string]StubProperty, len(schema.Properties))
			for child, childSchema := range schema.Properties {
				cp, err := synthesizeProperty(tool, name+"."+child, childSchema)
				if err != nil {
					return StubProperty{}, err
				}
				sp.Properties[child] = cp
			}
			if len(schema.Required) > 0 {
				sp.Required = append([]string(nil), schema.Required...)
			}
		}
	}
	return sp, nil
}

// SynthesizeAll converts a discovered catalog into its stub set:
// exactly one stub per descriptor, order preserved. Any unsupported
// descriptor fails the whole run, no partial sets.
func SynthesizeAll(descs []mcp.ToolDescriptor) ([]FunctionStub, error) {
	stubs := make([]FunctionStub, 0, len(descs))
	for _, d := range descs {
		stub, err := Synthesize(d)
		if err != nil {
			return nil, err
		}
		stubs = append(stubs, stub)
	}
	return stubs, nil
}
