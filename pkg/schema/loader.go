package schema

import (
	_ "embed"
	"fmt"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed analysis_result.schema.json
var analysisResultSchema []byte

var (
	compileOnce sync.Once
	compiled    *gojsonschema.Schema
	compileErr  error
)

// AnalysisResultSchema returns the raw JSON schema enforced on service responses.
func AnalysisResultSchema() []byte {
	return append([]byte(nil), analysisResultSchema...)
}

// ValidateAnalysisResult checks a raw response body against the
// AnalysisResult schema. A non-nil error means the schema itself or the body
// could not be loaded; schema violations are returned as strings.
func ValidateAnalysisResult(raw []byte) ([]string, error) {
	compileOnce.Do(func() {
		compiled, compileErr = gojsonschema.NewSchema(gojsonschema.NewBytesLoader(analysisResultSchema))
	})
	if compileErr != nil {
		return nil, fmt.Errorf("compile analysis result schema: %w", compileErr)
	}
	result, err := compiled.Validate(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return nil, fmt.Errorf("validate analysis result: %w", err)
	}
	return violations(result), nil
}

func violations(result *gojsonschema.Result) []string {
	if result.Valid() {
		return nil
	}
	errs := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		errs = append(errs, e.String())
	}
	return errs
}
