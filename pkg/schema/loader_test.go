package schema

import (
	"encoding/json"
	"os"
	"strings"
	"testing"
)

func loadFixture(t *testing.T) map[string]any {
	t.Helper()
	raw, err := os.ReadFile("testdata/valid_result.json")
	if err != nil {
		t.Fatal(err)
	}
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		t.Fatal(err)
	}
	return doc
}

func mustMarshal(t *testing.T, v any) []byte {
	t.Helper()
	raw, err := json.Marshal(v)
	if err != nil {
		t.Fatal(err)
	}
	return raw
}

func TestValidateAnalysisResult_Valid(t *testing.T) {
	errs, err := ValidateAnalysisResult(mustMarshal(t, loadFixture(t)))
	if err != nil {
		t.Fatal(err)
	}
	if len(errs) != 0 {
		t.Fatalf("schema should pass: %v", errs)
	}
}

func TestValidateAnalysisResult_Violations(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(doc map[string]any)
		want   string
	}{
		{"missing report", func(doc map[string]any) { delete(doc, "report") }, "report"},
		{"missing linguistic", func(doc map[string]any) { delete(doc, "linguistic_analysis") }, "linguistic_analysis"},
		{"score above one", func(doc map[string]any) { doc["fraud_score"] = 1.5 }, "fraud_score"},
		{"score as string", func(doc map[string]any) { doc["fraud_score"] = "0.8" }, "fraud_score"},
		{"negative cost", func(doc map[string]any) {
			doc["invoice_table"] = []any{map[string]any{"description": "x", "type": "Part", "cost": -1}}
		}, "cost"},
		{"fractional accidents", func(doc map[string]any) {
			vi := doc["vehicle_intel"].(map[string]any)
			vi["previous_accidents"] = 1.5
		}, "previous_accidents"},
		{"missing indicators", func(doc map[string]any) {
			doc["linguistic_analysis"] = map[string]any{"score": 0.1}
		}, "indicators"},
		{"non-string forensic verdict", func(doc map[string]any) {
			doc["image_forensics"] = map[string]any{"metadata_consistency": false}
		}, "metadata_consistency"},
		{"inconsistencies not array", func(doc map[string]any) { doc["inconsistencies"] = "A" }, "inconsistencies"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := loadFixture(t)
			tt.mutate(doc)
			errs, err := ValidateAnalysisResult(mustMarshal(t, doc))
			if err != nil {
				t.Fatalf("unexpected loader error: %v", err)
			}
			if len(errs) == 0 {
				t.Fatal("expected schema violations")
			}
			if !strings.Contains(strings.Join(errs, "; "), tt.want) {
				t.Fatalf("violations %v do not mention %q", errs, tt.want)
			}
		})
	}
}

func TestValidateAnalysisResult_NotJSON(t *testing.T) {
	_, err := ValidateAnalysisResult([]byte("<html>bad gateway</html>"))
	if err == nil {
		t.Fatal("expected loader error for non-JSON body")
	}
}

func TestAnalysisResultSchema_ReturnsCopy(t *testing.T) {
	a := AnalysisResultSchema()
	a[0] = 'X'
	if AnalysisResultSchema()[0] == 'X' {
		t.Fatal("schema bytes must not be shared")
	}
}
