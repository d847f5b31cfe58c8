package report

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/claimshield/claimshield/internal/view"
	"github.com/claimshield/claimshield/pkg/types"
)

// Meta identifies the submission a dossier was produced from.
type Meta struct {
	SubmissionID string
	ResultDigest string
}

// BuildMarkdown renders every view of r into one markdown dossier.
func BuildMarkdown(r types.AnalysisResult, meta Meta) string {
	var b strings.Builder
	b.WriteString("# ClaimShield Investigation Dossier\n\n")
	b.WriteString(fmt.Sprintf("- Verdict: **%s**\n", r.Label()))
	b.WriteString(fmt.Sprintf("- Fraud Probability: `%d%%`\n", view.Percent(r.FraudScore)))
	b.WriteString(fmt.Sprintf("- Critical Anomalies: `%d`\n", r.AnomalyCount()))
	if meta.SubmissionID != "" {
		b.WriteString(fmt.Sprintf("- Submission: `%s`\n", meta.SubmissionID))
	}
	if meta.ResultDigest != "" {
		b.WriteString(fmt.Sprintf("- Result Digest: `%s`\n", meta.ResultDigest))
	}

	b.WriteString("\n## Critical Inconsistencies\n\n")
	writeBullets(&b, r.Inconsistencies)

	b.WriteString("\n## Visual Damage Matrix\n\n")
	b.WriteString("| Part | Severity |\n")
	b.WriteString("|---|---:|\n")
	for _, d := range r.DamageAnalysis {
		b.WriteString(fmt.Sprintf("| %s | %d%% |\n", cell(d.Part), view.Percent(d.Severity)))
	}

	b.WriteString("\n## Financial Audit Breakdown\n\n")
	b.WriteString("| Component Description | Classification | Claimed Amount |\n")
	b.WriteString("|---|---|---:|\n")
	for _, item := range r.InvoiceTable {
		b.WriteString(fmt.Sprintf("| %s | %s | $%.2f |\n", cell(item.Description), cell(item.Type), item.Cost))
	}
	b.WriteString(fmt.Sprintf("| **Total** | | **$%.2f** |\n", r.InvoiceTotal()))

	b.WriteString("\n## Linguistic Deception Analysis\n\n")
	b.WriteString(fmt.Sprintf("- Deception Probability: `%d%%`\n", view.Percent(r.LinguisticAnalysis.Score)))
	writeBullets(&b, r.LinguisticAnalysis.Indicators)

	vi := r.VehicleIntel
	b.WriteString("\n## Vehicle Intelligence\n\n")
	b.WriteString(fmt.Sprintf("- VIN: `%s`\n", vi.VIN))
	b.WriteString(fmt.Sprintf("- Historical Claim Frequency: %s\n", vi.OwnerClaimFrequency))
	b.WriteString(fmt.Sprintf("- Previous Accidents: `%d`\n", vi.PreviousAccidents))

	if len(r.SimilarCases) > 0 {
		b.WriteString("\n## Similar Suspicious Patterns\n\n")
		b.WriteString("| Match | Case |\n")
		b.WriteString("|---:|---|\n")
		for _, sc := range r.SimilarCases {
			b.WriteString(fmt.Sprintf("| %d%% | %s |\n", view.Percent(sc.SimilarityScore), cell(sc.Case)))
		}
	}

	b.WriteString("\n## Image Forensics\n\n")
	b.WriteString("| Check | Verdict |\n")
	b.WriteString("|---|---|\n")
	keys := make([]string, 0, len(r.ImageForensics))
	for k := range r.ImageForensics {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		verdict := cell(r.ImageForensics[k])
		if r.ImageForensics[k] == types.VerdictFail {
			verdict = "**" + verdict + "**"
		}
		b.WriteString(fmt.Sprintf("| %s | %s |\n", view.CheckName(k), verdict))
	}

	b.WriteString("\n## Risk Network\n\n")
	b.WriteString(fmt.Sprintf("- Risk Association: %s\n", r.RiskNetwork.HistoricalCircle))
	b.WriteString(fmt.Sprintf("- Garage Risk Score: `%.1f%%`\n", r.RiskNetwork.GarageRiskScore*100))

	b.WriteString("\n## Forensic Report\n\n")
	b.WriteString(strings.TrimRight(r.Report, "\n"))
	b.WriteString("\n")
	return b.String()
}

func WriteMarkdown(path string, r types.AnalysisResult, meta Meta) error {
	return os.WriteFile(path, []byte(BuildMarkdown(r, meta)), 0o644)
}

var cellReplacer = strings.NewReplacer("|", "\\|", "\r\n", " ", "\n", " ", "\r", " ")

// cell makes s safe inside a single markdown table row.
func cell(s string) string {
	return cellReplacer.Replace(s)
}

func writeBullets(b *strings.Builder, items []string) {
	if len(items) == 0 {
		b.WriteString("- none\n")
		return
	}
	for _, it := range items {
		b.WriteString("- " + it + "\n")
	}
}
