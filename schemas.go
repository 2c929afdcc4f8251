package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/invopop/jsonschema"

	"github.com/netauto/configlet-builder/pkg/configlets"
	"github.com/netauto/configlet-builder/pkg/devices"
)

func generateAndWriteSchemas(path string) {
	schemas := map[string]interface{}{
		"Device.json":    &devices.Device{},
		"Interface.json": &devices.Interface{},
		"Neighbor.json":  &devices.Neighbor{},
		"Configlet.json": &configlets.Configlet{},
	}

	if err := os.MkdirAll(path, 0755); err != nil {
		log.Fatalf("Failed to create schema directory: %v", err)
	}

	reflector := jsonschema.Reflector{Mapper: uuidSchemaMapper}
	for filename, model := range schemas {
		schema := reflector.Reflect(model)
		data, err := json.MarshalIndent(schema, "", "  ")
		if err != nil {
			log.Fatalf("Failed to generate JSON schema for %v: %v", filename, err)
		}
		fullpath := filepath.Join(path, filename)
		if err := os.WriteFile(fullpath, data, 0644); err != nil {
			log.Fatalf("Failed to write JSON schema to file %v: %v", fullpath, err)
		}
		fmt.Printf("Schema written to %s\n", fullpath)
	}
}
