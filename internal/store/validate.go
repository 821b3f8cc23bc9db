package store

import (
	_ "embed"
	"encoding/json"
	"fmt"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed state_schema.json
var stateSchemaJSON string

var stateSchema = jsonschema.MustCompileString("state_schema.json", stateSchemaJSON)

// validateBlob checks a decoded workspace blob against the embedded schema
// and returns human-readable problems. Problems are advisory: a blob written
// by a newer version may carry shapes this build does not know, so the
// caller logs them and loads anyway.
func validateBlob(blob map[string]any) []string {
	// Round-trip through JSON so the checked value matches what the schema
	// library expects regardless of which decoder produced the blob.
	b, err := json.Marshal(blob)
	if err != nil {
		return []string{fmt.Sprintf("state not serializable: %v", err)}
	}
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return []string{fmt.Sprintf("state not serializable: %v", err)}
	}
	err = stateSchema.Validate(v)
	if err == nil {
		return nil
	}
	ve, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return []string{err.Error()}
	}
	var problems []string
	collectSchemaProblems(ve, &problems)
	return problems
}

func collectSchemaProblems(err *jsonschema.ValidationError, out *[]string) {
	if err == nil {
		return
	}
	if len(err.Causes) == 0 {
		loc := err.InstanceLocation
		if loc == "" {
			loc = "/"
		}
		*out = append(*out, fmt.Sprintf("%s: %s", loc, err.Message))
		return
	}
	for _, cause := range err.Causes {
		collectSchemaProblems(cause, out)
	}
}
