package handler

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

const schemaBaseURL = "https://coloringbook.local/schemas/"

var errMalformedJSON = errors.New("malformed json")

//go:embed schemas/submission.schema.json schemas/batch.schema.json
var schemaFiles embed.FS

var (
	schemasOnce      sync.Once
	submissionSchema *jsonschema.Schema
	batchSchema      *jsonschema.Schema
	schemasErr       error
)

func loadSchemas() error {
	schemasOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		for _, name := range []string{"submission.schema.json", "batch.schema.json"} {
			data, err := schemaFiles.ReadFile("schemas/" + name)
			if err != nil {
				schemasErr = err
				return
			}
			if err := compiler.AddResource(schemaBaseURL+name, bytes.NewReader(data)); err != nil {
				schemasErr = fmt.Errorf("add schema %s: %w", name, err)
				return
			}
		}

		if submissionSchema, schemasErr = compiler.Compile(schemaBaseURL + "submission.schema.json"); schemasErr != nil {
			return
		}
		batchSchema, schemasErr = compiler.Compile(schemaBaseURL + "batch.schema.json")
	})
	return schemasErr
}

// validatePayload checks a raw request body against schema.
func validatePayload(schema *jsonschema.Schema, body []byte) error {
	var document interface{}
	if err := json.Unmarshal(body, &document); err != nil {
		return fmt.Errorf("%w: %v", errMalformedJSON, err)
	}
	return schema.Validate(document)
}
