package view

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/claimshield/claimshield/internal/evidence"
	"github.com/claimshield/claimshield/internal/workflow"
	"github.com/claimshield/claimshield/pkg/types"
)

func sampleResult() types.AnalysisResult {
	associates := true
	return types.AnalysisResult{
		FraudScore:      0.82,
		Inconsistencies: []string{"A"},
		DamageAnalysis:  []types.DamageFinding{{Part: "Front Bumper", Severity: 0.8}},
		InvoiceTable: []types.InvoiceItem{
			{Description: "Front Bumper Replacement", Type: "Part", Cost: 1200},
			{Description: "Engine Oil Pan", Type: "Part", Cost: 150},
		},
		LinguisticAnalysis: types.LinguisticAnalysis{
			Score:      0.6,
			Indicators: []string{"Use of suggestive word: 'guarantee'", "Use of suggestive word: 'honestly'"},
		},
		VehicleIntel: types.VehicleIntel{VIN: "1FA6P8CF5H5XXXXXX", OwnerClaimFrequency: "High (3 claims in 24 months)", PreviousAccidents: 2, Make: "Ford", Model: "F-150"},
		SimilarCases: []types.SimilarCase{{SimilarityScore: 0.914, Case: "Staged rear-end collision"}},
		RiskNetwork: types.RiskNetwork{
			HistoricalCircle:    "Associated with 2 previous 'staged accident' rings",
			GarageRiskScore:     0.82,
			KnownAssociatesFlag: &associates,
		},
		ImageForensics: map[string]string{
			"timestamp_match":      "Mismatch",
			"metadata_consistency": "FAIL",
		},
		Report: "### EXECUTIVE SUMMARY\nStatus: RED",
	}
}

func TestHeader_HighRisk(t *testing.T) {
	h := Header(sampleResult())
	if !strings.Contains(h, "[HIGH RISK]") {
		t.Errorf("header = %q", h)
	}
	if !strings.Contains(h, "82%") {
		t.Errorf("header missing percent: %q", h)
	}
	// one inconsistency plus two linguistic indicators
	if !strings.Contains(h, "3 critical anomalies detected") {
		t.Errorf("header anomaly count wrong: %q", h)
	}
}

func TestHeader_Approved(t *testing.T) {
	r := sampleResult()
	r.FraudScore = 0.10
	if h := Header(r); !strings.Contains(h, "[APPROVED]") || !strings.Contains(h, "10%") {
		t.Errorf("header = %q", h)
	}
}

func TestRender_Views(t *testing.T) {
	tests := []struct {
		view workflow.View
		want []string
	}{
		{workflow.ViewSummary, []string{"CLAIM SUMMARY", "! A", "Front Bumper", "80% Sev", "$1200.00", "$1350.00"}},
		{workflow.ViewIntelligence, []string{"Deception Probability: 60%", "'guarantee'", "VIN: 1FA6P8CF5H5XXXXXX", "Ford F-150", "Prev Accidents: 2", "[91% PATTERN MATCH]"}},
		{workflow.ViewForensics, []string{"! Metadata Consistency", "Timestamp Match"}},
		{workflow.ViewNetwork, []string{"staged accident", "Garage Risk Score: 82.0%", "HIGH RISK REPAIR FACILITY", "Known Associates: true"}},
		{workflow.ViewReport, []string{"### EXECUTIVE SUMMARY\nStatus: RED\n"}},
	}
	for _, tt := range tests {
		t.Run(string(tt.view), func(t *testing.T) {
			out := Render(tt.view, sampleResult())
			if !strings.HasPrefix(out, "FRAUD PROBABILITY INDEX") {
				t.Errorf("missing verdict header:\n%s", out)
			}
			for _, w := range tt.want {
				if !strings.Contains(out, w) {
					t.Errorf("view %s missing %q:\n%s", tt.view, w, out)
				}
			}
		})
	}
}

func TestRender_ForensicsSorted(t *testing.T) {
	out := Render(workflow.ViewForensics, sampleResult())
	if strings.Index(out, "Metadata Consistency") > strings.Index(out, "Timestamp Match") {
		t.Fatalf("forensic checks not sorted:\n%s", out)
	}
}

func TestCheckName(t *testing.T) {
	if got := CheckName("digital_alteration_detected"); got != "Digital Alteration Detected" {
		t.Errorf("CheckName = %q", got)
	}
	if got := CheckName("__odd__key"); got != "Odd Key" {
		t.Errorf("CheckName = %q", got)
	}
	got := CheckName("été_check")
	if got != "Été Check" || !utf8.ValidString(got) {
		t.Errorf("CheckName multibyte = %q", got)
	}
}

func TestStatus(t *testing.T) {
	c := workflow.New(nil)
	snap := c.AttachEvidence(evidence.SlotScene, evidence.Ref{Name: "scene.jpg", Size: 12})
	out := Status(snap)
	for _, want := range []string{"Scene    scene.jpg (12 bytes)", "Damage   (empty)", "RUN INVESTIGATION"} {
		if !strings.Contains(out, want) {
			t.Errorf("status missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "VIEWS") {
		t.Errorf("views must be hidden without a result:\n%s", out)
	}
}

func TestStatus_ResultAndNotice(t *testing.T) {
	r := sampleResult()
	snap := workflow.Snapshot{
		Phase:        workflow.PhaseSubmitting,
		SubmissionID: "sub-B",
		Outcome:      workflow.OutcomeFailed,
		Result:       &r,
		View:         workflow.ViewReport,
		Notice:       &workflow.Notice{Message: "Backend not reachable.", Detail: "connection refused"},

		ResultSubmissionID: "sub-A",
	}
	out := Status(snap)
	for _, want := range []string{"PROCESSING...", "LAST     sub-B (failed)", "RESULT   sub-A", "[report]", "NOTICE   Backend not reachable.", "connection refused"} {
		if !strings.Contains(out, want) {
			t.Errorf("status missing %q:\n%s", want, out)
		}
	}
}
