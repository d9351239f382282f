package tools

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Input schemas double as the tool's declared UI contract: the host renders
// them, and every call is validated against them before the pipeline runs.
// Numeric fields accept numeric strings because agents routinely quote them.

var locationSchema = json.RawMessage(`{
	"type": "object",
	"properties": {
		"sessionId": {"type": "string", "description": "Opaque session identifier forwarded to Project Buddy"},
		"address": {"type": "string", "description": "Single free-text address; used when addresses is empty"},
		"addresses": {
			"type": "array",
			"description": "Location entries; a bare string is shorthand for {address}",
			"items": {
				"oneOf": [
					{"type": "string"},
					{
						"type": "object",
						"properties": {
							"address": {"type": "string"},
							"price": {"type": ["number", "string"]},
							"surface": {"type": "string"},
							"locationType": {"type": "string"}
						},
						"required": ["address"],
						"additionalProperties": false
					}
				]
			}
		},
		"price": {"type": ["number", "string"], "description": "Top-level price; flows into a single address entry"},
		"surface": {"type": "string"},
		"locationType": {"type": "string"},
		"extraFields": {"type": "object", "description": "Open map spread onto the request body last"}
	},
	"additionalProperties": false
}`)

var maturitySchema = json.RawMessage(`{
	"type": "object",
	"properties": {
		"sessionId": {"type": "string", "description": "Opaque session identifier forwarded to Project Buddy"},
		"maturityLevel": {"type": "string"},
		"maturityPercentage": {"type": ["number", "string"], "description": "0-100 inclusive"},
		"positivePoints": {"type": "array", "items": {"type": "string"}},
		"negativePoints": {"type": "array", "items": {"type": "string"}},
		"description": {"type": "string"},
		"extraFields": {"type": "object", "description": "Open map spread onto the request body last"}
	},
	"additionalProperties": false
}`)

var combinedSchema = json.RawMessage(`{
	"type": "object",
	"properties": {
		"action": {"type": "string", "enum": ["location", "project-maturity"], "description": "Target shape; inferred from populated fields when omitted"},
		"sessionId": {"type": "string"},
		"address": {"type": "string"},
		"addresses": {
			"type": "array",
			"items": {
				"oneOf": [
					{"type": "string"},
					{
						"type": "object",
						"properties": {
							"address": {"type": "string"},
							"price": {"type": ["number", "string"]},
							"surface": {"type": "string"},
							"locationType": {"type": "string"}
						},
						"required": ["address"],
						"additionalProperties": false
					}
				]
			}
		},
		"price": {"type": ["number", "string"]},
		"surface": {"type": "string"},
		"locationType": {"type": "string"},
		"maturityLevel": {"type": "string"},
		"maturityPercentage": {"type": ["number", "string"]},
		"positivePoints": {"type": "array", "items": {"type": "string"}},
		"negativePoints": {"type": "array", "items": {"type": "string"}},
		"description": {"type": "string"},
		"extraFields": {"type": "object"}
	},
	"additionalProperties": false
}`)

var searchToolsSchema = json.RawMessage(`{
	"type": "object",
	"properties": {
		"query": {"type": "string", "description": "Search query (e.g., 'location', 'maturity', 'submit')"},
		"category": {"type": "string", "description": "Filter by category", "enum": ["location", "project-maturity", "discovery"]},
		"limit": {"type": "integer", "description": "Max results (default: 10)", "default": 10}
	},
	"required": ["query"]
}`)

var describeToolSchema = json.RawMessage(`{
	"type": "object",
	"properties": {
		"name": {"type": "string", "description": "Exact tool name (from search_tools results)"}
	},
	"required": ["name"]
}`)

var schemaCache sync.Map // key -> *jsonschema.Schema

func schemaCacheKey(toolName string, schema json.RawMessage) string {
	sum := sha256.Sum256(schema)
	return toolName + ":" + hex.EncodeToString(sum[:])
}

func compileSchema(toolName string, schema json.RawMessage) (*jsonschema.Schema, error) {
	key := schemaCacheKey(toolName, schema)
	if v, ok := schemaCache.Load(key); ok {
		return v.(*jsonschema.Schema), nil
	}
	s, err := jsonschema.CompileString(toolName+".json", string(schema))
	if err != nil {
		return nil, err
	}
	schemaCache.Store(key, s)
	return s, nil
}

func firstLeafValidationError(err *jsonschema.ValidationError) *jsonschema.ValidationError {
	if err == nil {
		return nil
	}
	if len(err.Causes) == 0 {
		return err
	}
	for _, c := range err.Causes {
		if leaf := firstLeafValidationError(c); leaf != nil {
			return leaf
		}
	}
	return err
}

// validateArgs checks raw tool arguments against the tool's input schema.
func validateArgs(toolName string, schema json.RawMessage, args json.RawMessage) error {
	if len(schema) == 0 {
		return nil
	}
	s, err := compileSchema(toolName, schema)
	if err != nil {
		return fmt.Errorf("invalid inputSchema for %s: %w", toolName, err)
	}

	var decoded any
	if len(args) == 0 {
		decoded = map[string]any{}
	} else if err := json.Unmarshal(args, &decoded); err != nil {
		return fmt.Errorf("arguments are not valid JSON: %w", err)
	}

	if err := s.Validate(decoded); err != nil {
		if ve, ok := err.(*jsonschema.ValidationError); ok {
			leaf := firstLeafValidationError(ve)
			loc := leaf.InstanceLocation
			if loc == "" {
				loc = "/"
			}
			msg := leaf.Message
			if msg == "" {
				msg = leaf.Error()
			}
			return fmt.Errorf("schema validation failed at %s: %s", loc, msg)
		}
		return fmt.Errorf("schema validation failed: %v", err)
	}
	return nil
}
