// Copyright 2025 Toly Pochkin
// SPDX-License-Identifier: Apache-2.0

package store

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// snapshotSchema validates the envelope of the persisted blob. It is
// deliberately shallow about entity internals: the gate here is "is this a
// versioned snapshot at all", not full entity validation, so older minor
// payload differences load fine and malformed blobs fail loudly instead of
// hydrating a half-usable state.
const snapshotSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["state", "version"],
  "properties": {
    "version": { "type": "integer", "minimum": 1 },
    "state": {
      "type": "object",
      "required": ["templates", "sessions", "customExercises", "weightEntries"],
      "properties": {
        "templates": { "type": ["array", "null"], "items": { "$ref": "#/$defs/keyed" } },
        "sessions": { "type": ["array", "null"], "items": { "$ref": "#/$defs/keyed" } },
        "customExercises": { "type": ["array", "null"], "items": { "$ref": "#/$defs/keyed" } },
        "weightEntries": {
          "type": ["array", "null"],
          "items": {
            "type": "object",
            "required": ["date"],
            "properties": { "date": { "type": "string" } }
          }
        }
      }
    }
  },
  "$defs": {
    "keyed": {
      "type": "object",
      "required": ["id"],
      "properties": { "id": { "type": "string", "minLength": 1 } }
    }
  }
}`

func compileSnapshotSchema() (*jsonschema.Schema, error) {
	doc, err := jsonschema.UnmarshalJSON(strings.NewReader(snapshotSchema))
	if err != nil {
		return nil, fmt.Errorf("failed to parse snapshot schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("workout-snapshot.json", doc); err != nil {
		return nil, fmt.Errorf("failed to register snapshot schema: %w", err)
	}
	schema, err := compiler.Compile("workout-snapshot.json")
	if err != nil {
		return nil, fmt.Errorf("failed to compile snapshot schema: %w", err)
	}
	return schema, nil
}

// validateSnapshot checks a raw persisted payload against the snapshot schema.
func validateSnapshot(schema *jsonschema.Schema, payload []byte) error {
	value, err := jsonschema.UnmarshalJSON(bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("snapshot is not valid JSON: %w", err)
	}
	if err := schema.Validate(value); err != nil {
		return fmt.Errorf("snapshot failed schema validation: %w", err)
	}
	return nil
}
