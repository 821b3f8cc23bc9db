package config

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed config_schema.json
var configSchemaJSON string

var configSchema = jsonschema.MustCompileString("config_schema.json", configSchemaJSON)

// validate checks the assembled config against the embedded schema. Unlike
// the state-file check this one is fatal: a config the user wrote by hand
// should fail loudly, not half-work.
func validate(cfg *Config) error {
	b, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode config for validation: %w", err)
	}
	var doc any
	if err := json.Unmarshal(b, &doc); err != nil {
		return fmt.Errorf("decode config for validation: %w", err)
	}
	err = configSchema.Validate(doc)
	if err == nil {
		return nil
	}
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	problems := collectProblems(ve)
	return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
}

// collectProblems flattens the validator's cause tree into readable
// "location: message" strings.
func collectProblems(ve *jsonschema.ValidationError) []string {
	if len(ve.Causes) == 0 {
		loc := ve.InstanceLocation
		if loc == "" {
			loc = "/"
		}
		return []string{fmt.Sprintf("%s: %s", loc, ve.Message)}
	}
	var out []string
	for _, cause := range ve.Causes {
		out = append(out, collectProblems(cause)...)
	}
	return out
}
