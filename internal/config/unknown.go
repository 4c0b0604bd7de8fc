package config

import (
	"fmt"
	"reflect"
	"strings"

	"gopkg.in/yaml.v3"
)

// detectUnknownFields compares the top-level keys of doc with known struct fields.
func detectUnknownFields(doc *yaml.Node) []string {
	root := doc
	if root.Kind == yaml.DocumentNode && len(root.Content) > 0 {
		root = root.Content[0]
	}
	if root.Kind != yaml.MappingNode {
		return nil
	}

	var warnings []string
	known := getYAMLFields(reflect.TypeOf(Config{}))
	for i := 0; i < len(root.Content); i += 2 {
		key := root.Content[i].Value
		if key == "$schema" {
			continue // $schema is explicitly allowed and ignored
		}
		if !known[key] {
			warnings = append(warnings, fmt.Sprintf("unknown field %q at root level (ignored)", key))
		}
	}
	return warnings
}

// getYAMLFields returns a map of known YAML field names for a struct type.
func getYAMLFields(t reflect.Type) map[string]bool {
	fields := make(map[string]bool)
	for i := 0; i < t.NumField(); i++ {
		tag := t.Field(i).Tag.Get("yaml")
		if tag == "" || tag == "-" {
			continue
		}
		if name := strings.Split(tag, ",")[0]; name != "" {
			fields[name] = true
		}
	}
	return fields
}
