package profile

import (
	_ "embed"
	"fmt"
	"sync"

	"github.com/xeipuuv/gojsonschema"

	"github.com/hsiehbocheng/hAIre-ai-recruiter-assistent/internal/document"
)

//go:embed profile.schema.json
var schemaJSON []byte

var loadSchema = sync.OnceValues(func() (*gojsonschema.Schema, error) {
	return gojsonschema.NewSchema(gojsonschema.NewBytesLoader(schemaJSON))
})

// Diagnose checks a validated profile against the wire schema and returns one
// message per violation. It is advisory: the pipeline stores profiles that
// fail it.
func Diagnose(v document.Value) []string {
	schema, err := loadSchema()
	if err != nil {
		return []string{fmt.Sprintf("schema unavailable: %v", err)}
	}
	res, err := schema.Validate(gojsonschema.NewGoLoader(document.Native(v)))
	if err != nil {
		return []string{fmt.Sprintf("schema check failed: %v", err)}
	}
	if res.Valid() {
		return nil
	}
	msgs := make([]string, 0, len(res.Errors()))
	for _, e := range res.Errors() {
		msgs = append(msgs, e.String())
	}
	return msgs
}
