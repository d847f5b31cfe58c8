// Package view projects an analysis result into the operator views. Every
// function is read-only with respect to the result.
package view

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/claimshield/claimshield/internal/evidence"
	"github.com/claimshield/claimshield/internal/workflow"
	"github.com/claimshield/claimshield/pkg/types"
)

func Percent(x float64) int {
	return int(math.Round(x * 100))
}

// Header is the verdict line shown above every view.
func Header(r types.AnalysisResult) string {
	return fmt.Sprintf("FRAUD PROBABILITY INDEX %d%%  [%s]  %d critical anomalies detected\n",
		Percent(r.FraudScore), r.Label(), r.AnomalyCount())
}

// Render returns the header followed by view v of r.
func Render(v workflow.View, r types.AnalysisResult) string {
	var b strings.Builder
	b.WriteString(Header(r))
	b.WriteString("\n== " + strings.ToUpper(v.Title()) + " ==\n\n")
	switch v {
	case workflow.ViewSummary:
		writeSummary(&b, r)
	case workflow.ViewIntelligence:
		writeIntelligence(&b, r)
	case workflow.ViewForensics:
		writeForensics(&b, r)
	case workflow.ViewNetwork:
		writeNetwork(&b, r)
	case workflow.ViewReport:
		b.WriteString(r.Report)
		if !strings.HasSuffix(r.Report, "\n") {
			b.WriteString("\n")
		}
	}
	return b.String()
}

func writeSummary(b *strings.Builder, r types.AnalysisResult) {
	b.WriteString("Critical Inconsistencies\n")
	writeList(b, r.Inconsistencies, "  ! ")

	b.WriteString("\nVisual Damage Matrix\n")
	if len(r.DamageAnalysis) == 0 {
		b.WriteString("  (none)\n")
	}
	for _, d := range r.DamageAnalysis {
		fmt.Fprintf(b, "  %-28s %3d%% Sev\n", d.Part, Percent(d.Severity))
	}

	b.WriteString("\nFinancial Audit Breakdown\n")
	fmt.Fprintf(b, "  %-32s %-12s %12s\n", "Component Description", "Classification", "Claimed")
	for _, item := range r.InvoiceTable {
		fmt.Fprintf(b, "  %-32s %-12s %12s\n", item.Description, item.Type, money(item.Cost))
	}
	fmt.Fprintf(b, "  %-32s %-12s %12s\n", "Total", "", money(r.InvoiceTotal()))
}

func writeIntelligence(b *strings.Builder, r types.AnalysisResult) {
	b.WriteString("Linguistic Deception Analysis\n")
	fmt.Fprintf(b, "  Deception Probability: %d%%\n", Percent(r.LinguisticAnalysis.Score))
	writeList(b, r.LinguisticAnalysis.Indicators, "  * ")

	vi := r.VehicleIntel
	b.WriteString("\nVehicle Intelligence (VIN Data)\n")
	fmt.Fprintf(b, "  VIN: %s\n", vi.VIN)
	if vi.Make != "" || vi.Model != "" {
		fmt.Fprintf(b, "  Vehicle: %s\n", strings.TrimSpace(vi.Make+" "+vi.Model))
	}
	fmt.Fprintf(b, "  Historical Claim Frequency: %s\n", vi.OwnerClaimFrequency)
	fmt.Fprintf(b, "  Prev Accidents: %d\n", vi.PreviousAccidents)
	if vi.SalvageHistory != "" {
		fmt.Fprintf(b, "  Salvage History: %s\n", vi.SalvageHistory)
	}

	b.WriteString("\nSimilar Suspicious Patterns\n")
	if len(r.SimilarCases) == 0 {
		b.WriteString("  (none)\n")
	}
	for _, sc := range r.SimilarCases {
		fmt.Fprintf(b, "  [%d%% PATTERN MATCH] %q\n", Percent(sc.SimilarityScore), sc.Case)
	}
}

func writeForensics(b *strings.Builder, r types.AnalysisResult) {
	b.WriteString("Image EXIF Metadata Verification\n")
	keys := make([]string, 0, len(r.ImageForensics))
	for k := range r.ImageForensics {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	if len(keys) == 0 {
		b.WriteString("  (none)\n")
	}
	for _, k := range keys {
		v := r.ImageForensics[k]
		marker := " "
		if v == types.VerdictFail {
			marker = "!"
		}
		fmt.Fprintf(b, "%s %-30s %s\n", marker, CheckName(k), v)
	}
}

func writeNetwork(b *strings.Builder, r types.AnalysisResult) {
	rn := r.RiskNetwork
	b.WriteString("Global Fraud Network Analysis\n")
	fmt.Fprintf(b, "  Risk Association: %s\n", rn.HistoricalCircle)
	if rn.ClaimantID != "" {
		fmt.Fprintf(b, "  Claimant: %s\n", rn.ClaimantID)
	}
	if rn.KnownAssociatesFlag != nil {
		fmt.Fprintf(b, "  Known Associates: %t\n", *rn.KnownAssociatesFlag)
	}
	if rn.RiskNetworkGraph != "" {
		fmt.Fprintf(b, "  Cluster: %s\n", rn.RiskNetworkGraph)
	}
	fmt.Fprintf(b, "\n  Garage Risk Score: %.1f%%\n", rn.GarageRiskScore*100)
	if rn.GarageRiskScore > types.HighRiskThreshold {
		b.WriteString("  HIGH RISK REPAIR FACILITY\n")
	}
}

// CheckName turns a forensic check key into a title-cased label.
func CheckName(key string) string {
	words := strings.Fields(strings.ReplaceAll(key, "_", " "))
	for i, w := range words {
		r, size := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToUpper(r)) + w[size:]
	}
	return strings.Join(words, " ")
}

func money(v float64) string {
	return fmt.Sprintf("$%.2f", v)
}

func writeList(b *strings.Builder, items []string, prefix string) {
	if len(items) == 0 {
		b.WriteString("  (none)\n")
		return
	}
	for _, it := range items {
		b.WriteString(prefix + it + "\n")
	}
}

// Status renders the evidence slots, phase and any pending notice.
func Status(s workflow.Snapshot) string {
	var b strings.Builder
	b.WriteString("EVIDENCE\n")
	for _, slot := range evidence.Slots {
		ref, ok := s.Bundle.Get(slot)
		if !ok {
			fmt.Fprintf(&b, "  %-8s (empty)\n", slot.Label())
			continue
		}
		fmt.Fprintf(&b, "  %-8s %s (%d bytes)\n", slot.Label(), ref.Name, ref.Size)
	}
	phase := "RUN INVESTIGATION"
	if s.Phase == workflow.PhaseSubmitting {
		phase = "PROCESSING..."
	}
	fmt.Fprintf(&b, "STATE    %s\n", phase)
	if s.SubmissionID != "" {
		fmt.Fprintf(&b, "LAST     %s (%s)\n", s.SubmissionID, s.Outcome)
	}
	if s.HasResult() {
		fmt.Fprintf(&b, "RESULT   %s\n", s.ResultSubmissionID)
		views := make([]string, 0, len(workflow.Views))
		for _, v := range workflow.Views {
			name := string(v)
			if v == s.View {
				name = "[" + name + "]"
			}
			views = append(views, name)
		}
		fmt.Fprintf(&b, "VIEWS    %s\n", strings.Join(views, " "))
	}
	if s.Notice != nil {
		b.WriteString(Notice(*s.Notice))
	}
	return b.String()
}

func Notice(n workflow.Notice) string {
	out := "NOTICE   " + n.Message + "\n"
	if n.Detail != "" {
		out += "         " + n.Detail + "\n"
	}
	return out
}
