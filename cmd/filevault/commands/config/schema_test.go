package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func TestRunSchema_WritesValidJSONSchemaToFile(t *testing.T) {
	outPath := filepath.Join(t.TempDir(), "config.schema.json")
	schemaOutput = outPath
	defer func() { schemaOutput = "" }()

	if err := runSchema(schemaCmd, nil); err != nil {
		t.Fatalf("runSchema() error = %v", err)
	}

	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("expected schema file to exist: %v", err)
	}

	var doc map[string]interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("schema file is not valid JSON: %v", err)
	}

	if doc["title"] != "FileVault Configuration" {
		t.Errorf("expected title %q, got %v", "FileVault Configuration", doc["title"])
	}
}
