package llm

import (
	"fmt"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

// Response schemas, one per JSON stage. Field names match content's JSON tags.
// Lists are wrapped in an object since JSON mode only allows object roots.
const (
	ideasSchema = `{
  "type": "object",
  "required": ["ideas"],
  "properties": {
    "ideas": {
      "type": "array",
      "minItems": 1,
      "items": {
        "type": "object",
        "required": ["title", "description", "targetAudience", "valueProposition"],
        "properties": {
          "title": {"type": "string", "minLength": 1},
          "description": {"type": "string"},
          "targetAudience": {"type": "string"},
          "valueProposition": {"type": "string"}
        }
      }
    }
  }
}`

	outlineSchema = `{
  "type": "object",
  "required": ["hook", "introduction", "mainPoints", "cta", "outro"],
  "properties": {
    "hook": {"type": "string"},
    "introduction": {"type": "string"},
    "mainPoints": {
      "type": "array",
      "minItems": 1,
      "items": {
        "type": "object",
        "required": ["title", "description"],
        "properties": {
          "title": {"type": "string"},
          "description": {"type": "string"}
        }
      }
    },
    "cta": {"type": "string"},
    "outro": {"type": "string"}
  }
}`

	keywordsSchema = `{
  "type": "object",
  "required": ["primaryKeywords", "secondaryKeywords", "searchIntent", "seoTitle"],
  "properties": {
    "primaryKeywords": {"type": "array", "items": {"type": "string"}},
    "secondaryKeywords": {"type": "array", "items": {"type": "string"}},
    "searchIntent": {"type": "string"},
    "seoTitle": {"type": "string"},
    "trendAnalysis": {"type": "string"}
  }
}`

	scenesSchema = `{
  "type": "object",
  "required": ["scenes"],
  "properties": {
    "scenes": {
      "type": "array",
      "minItems": 1,
      "items": {
        "type": "object",
        "required": ["dialogue", "visualSuggestionEN"],
        "properties": {
          "scene": {"type": "integer"},
          "dialogue": {"type": "string"},
          "visualSuggestionVI": {"type": "string"},
          "visualSuggestionEN": {"type": "string", "minLength": 1},
          "soundSuggestion": {"type": "string"}
        }
      }
    }
  }
}`

	musicSchema = `{
  "type": "object",
  "required": ["prompts"],
  "properties": {
    "prompts": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["scene", "prompt"],
        "properties": {
          "scene": {"type": "integer", "minimum": 1},
          "prompt": {"type": "string", "minLength": 1}
        }
      }
    }
  }
}`

	kitSchema = `{
  "type": "object",
  "required": ["metadata", "thumbnailConcepts"],
  "properties": {
    "metadata": {
      "type": "object",
      "required": ["titles", "description", "tags"],
      "properties": {
        "titles": {"type": "array", "minItems": 1, "items": {"type": "string"}},
        "description": {"type": "string"},
        "tags": {"type": "array", "items": {"type": "string"}}
      }
    },
    "thumbnailConcepts": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["concept", "prompt"],
        "properties": {
          "concept": {"type": "string"},
          "prompt": {"type": "string"}
        }
      }
    }
  }
}`
)

var (
	schemaMu    sync.Mutex
	schemaCache = make(map[string]*gojsonschema.Schema)
)

func compiledSchema(source string) (*gojsonschema.Schema, error) {
	schemaMu.Lock()
	defer schemaMu.Unlock()
	if schema, ok := schemaCache[source]; ok {
		return schema, nil
	}
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(source))
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	schemaCache[source] = schema
	return schema, nil
}

// validateAgainst checks payload against the schema source.
func validateAgainst(source, payload string) error {
	schema, err := compiledSchema(source)
	if err != nil {
		return err
	}
	result, err := schema.Validate(gojsonschema.NewStringLoader(payload))
	if err != nil {
		return fmt.Errorf("validate payload: %w", err)
	}
	if result.Valid() {
		return nil
	}
	problems := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		problems = append(problems, desc.String())
	}
	return fmt.Errorf("schema violations: %s", strings.Join(problems, "; "))
}
