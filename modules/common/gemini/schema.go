package gemini

import (
	"encoding/json"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// SchemaType mirrors the OpenAPI subset the provider understands.
type SchemaType string

const (
	TypeObject SchemaType = "OBJECT"
	TypeArray  SchemaType = "ARRAY"
	TypeString SchemaType = "STRING"
)

// Schema - 응답 형태 제약
// Provider에는 네이티브 스키마로 전달되고, 로컬에서는 Check로 다시 검증한다.
type Schema struct {
	Type        SchemaType
	Description string
	Properties  map[string]*Schema
	Ordering    []string
	Items       *Schema
	Required    []string
}

func (s *Schema) toGenai() *genai.Schema {
	if s == nil {
		return nil
	}
	out := &genai.Schema{
		Type:             genai.Type(s.Type),
		Description:      s.Description,
		Required:         s.Required,
		PropertyOrdering: s.Ordering,
		Items:            s.Items.toGenai(),
	}
	if len(s.Properties) > 0 {
		out.Properties = make(map[string]*genai.Schema, len(s.Properties))
		for name, prop := range s.Properties {
			out.Properties[name] = prop.toGenai()
		}
	}
	return out
}

// Check decodes raw as JSON and verifies it against the schema.
func (s *Schema) Check(raw []byte) error {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	return s.check(v, "$")
}

func (s *Schema) check(v any, path string) error {
	if s == nil {
		return nil
	}
	switch s.Type {
	case TypeString:
		if _, ok := v.(string); !ok {
			return fmt.Errorf("%s: expected string, got %s", path, kindOf(v))
		}
	case TypeArray:
		list, ok := v.([]any)
		if !ok {
			return fmt.Errorf("%s: expected array, got %s", path, kindOf(v))
		}
		for i, item := range list {
			if err := s.Items.check(item, fmt.Sprintf("%s[%d]", path, i)); err != nil {
				return err
			}
		}
	case TypeObject:
		obj, ok := v.(map[string]any)
		if !ok {
			return fmt.Errorf("%s: expected object, got %s", path, kindOf(v))
		}
		for _, name := range s.Required {
			if _, present := obj[name]; !present {
				return fmt.Errorf("%s: missing required field %q", path, name)
			}
		}
		for name, prop := range s.Properties {
			val, present := obj[name]
			if !present {
				continue
			}
			if err := prop.check(val, path+"."+name); err != nil {
				return err
			}
		}
	}
	return nil
}

func kindOf(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case float64:
		return "number"
	case bool:
		return "boolean"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	default:
		return strings.TrimPrefix(fmt.Sprintf("%T", v), "*")
	}
}
