package types

// AnalysisResult is the verdict returned by the analysis service for one
// submission. Every top-level field is required on the wire.
type AnalysisResult struct {
	FraudScore         float64            `json:"fraud_score"`
	Inconsistencies    []string           `json:"inconsistencies"`
	DamageAnalysis     []DamageFinding    `json:"damage_analysis"`
	InvoiceTable       []InvoiceItem      `json:"invoice_table"`
	LinguisticAnalysis LinguisticAnalysis `json:"linguistic_analysis"`
	VehicleIntel       VehicleIntel       `json:"vehicle_intel"`
	SimilarCases       []SimilarCase      `json:"similar_cases"`
	RiskNetwork        RiskNetwork        `json:"risk_network"`
	ImageForensics     map[string]string  `json:"image_forensics"`
	Report             string             `json:"report"`
}

const (
	// HighRiskThreshold is the fraud score above which a claim is flagged.
	HighRiskThreshold = 0.6

	LabelHighRisk = "HIGH RISK"
	LabelApproved = "APPROVED"

	VerdictFail = "FAIL"
	VerdictPass = "PASS"
)

// HighRisk reports whether the fraud score exceeds HighRiskThreshold.
func (r AnalysisResult) HighRisk() bool {
	return r.FraudScore > HighRiskThreshold
}

// Label is the classification shown to the operator.
func (r AnalysisResult) Label() string {
	if r.HighRisk() {
		return LabelHighRisk
	}
	return LabelApproved
}

// AnomalyCount counts evidence inconsistencies plus linguistic indicators.
func (r AnalysisResult) AnomalyCount() int {
	return len(r.Inconsistencies) + len(r.LinguisticAnalysis.Indicators)
}

// InvoiceTotal sums the claimed cost of every invoice line.
func (r AnalysisResult) InvoiceTotal() float64 {
	total := 0.0
	for _, item := range r.InvoiceTable {
		total += item.Cost
	}
	return total
}

// Clone returns a deep copy so callers never share slices or maps with the
// held result.
func (r AnalysisResult) Clone() AnalysisResult {
	out := r
	out.Inconsistencies = cloneStrings(r.Inconsistencies)
	if r.DamageAnalysis != nil {
		out.DamageAnalysis = make([]DamageFinding, len(r.DamageAnalysis))
		for i, d := range r.DamageAnalysis {
			d.BBox = cloneInts(d.BBox)
			out.DamageAnalysis[i] = d
		}
	}
	if r.InvoiceTable != nil {
		out.InvoiceTable = append([]InvoiceItem(nil), r.InvoiceTable...)
	}
	out.LinguisticAnalysis.Indicators = cloneStrings(r.LinguisticAnalysis.Indicators)
	if r.SimilarCases != nil {
		out.SimilarCases = append([]SimilarCase(nil), r.SimilarCases...)
	}
	if r.RiskNetwork.KnownAssociatesFlag != nil {
		flag := *r.RiskNetwork.KnownAssociatesFlag
		out.RiskNetwork.KnownAssociatesFlag = &flag
	}
	if r.ImageForensics != nil {
		out.ImageForensics = make(map[string]string, len(r.ImageForensics))
		for k, v := range r.ImageForensics {
			out.ImageForensics[k] = v
		}
	}
	return out
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	return append([]string(nil), in...)
}

func cloneInts(in []int) []int {
	if in == nil {
		return nil
	}
	return append([]int(nil), in...)
}
