package config

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/invopop/jsonschema"
)

// Verify checks the config against required fields of its JSON schema
func Verify(cfg *Config) error {
	schema, err := GenerateSchema()
	if err != nil {
		return fmt.Errorf("generate schema: %w", err)
	}

	// check the json form, as the schema describes it
	data, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	var doc interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("unmarshal config: %w", err)
	}

	return checkRequired(schema, doc, "")
}

// GenerateSchema generates a JSON schema for the Config struct
func GenerateSchema() (*jsonschema.Schema, error) {
	r := &jsonschema.Reflector{DoNotReference: true, RequiredFromJSONSchemaTags: true}
	schema := r.Reflect(&Config{})
	if schema == nil {
		return nil, fmt.Errorf("empty schema")
	}
	return schema, nil
}

// checkRequired walks the value along the schema and reports the first empty required field
func checkRequired(s *jsonschema.Schema, v interface{}, path string) error {
	if s == nil {
		return nil
	}

	switch val := v.(type) {
	case map[string]interface{}:
		for _, name := range s.Required {
			if isEmpty(val[name]) {
				return fmt.Errorf("%s is required", joinPath(path, name))
			}
		}
		known := map[string]bool{}
		if s.Properties != nil {
			for pair := s.Properties.Oldest(); pair != nil; pair = pair.Next() {
				known[pair.Key] = true
				if sub, ok := val[pair.Key]; ok {
					if err := checkRequired(pair.Value, sub, joinPath(path, pair.Key)); err != nil {
						return err
					}
				}
			}
		}
		if s.AdditionalProperties != nil && s.AdditionalProperties != jsonschema.FalseSchema {
			for _, key := range sortedKeys(val) {
				if known[key] {
					continue
				}
				if err := checkRequired(s.AdditionalProperties, val[key], joinPath(path, key)); err != nil {
					return err
				}
			}
		}
	case []interface{}:
		for i, sub := range val {
			if err := checkRequired(s.Items, sub, fmt.Sprintf("%s[%d]", path, i)); err != nil {
				return err
			}
		}
	}
	return nil
}

func isEmpty(v interface{}) bool {
	switch val := v.(type) {
	case nil:
		return true
	case string:
		return val == ""
	case map[string]interface{}:
		return len(val) == 0
	case []interface{}:
		return len(val) == 0
	}
	return false
}

func joinPath(path, name string) string {
	if path == "" {
		return name
	}
	return path + "." + name
}

func sortedKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
