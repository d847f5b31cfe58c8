package types

type DamageFinding struct {
	Part     string  `json:"part"`
	Severity float64 `json:"severity"`
	BBox     []int   `json:"bbox,omitempty"`
}

type InvoiceItem struct {
	Description string  `json:"description"`
	Type        string  `json:"type"`
	Cost        float64 `json:"cost"`
}

type LinguisticAnalysis struct {
	Score      float64  `json:"score"`
	Indicators []string `json:"indicators"`
}

type VehicleIntel struct {
	VIN                 string `json:"vin"`
	OwnerClaimFrequency string `json:"owner_claim_frequency"`
	PreviousAccidents   int    `json:"previous_accidents"`
	Make                string `json:"make,omitempty"`
	Model               string `json:"model,omitempty"`
	SalvageHistory      string `json:"salvage_history,omitempty"`
}

type SimilarCase struct {
	SimilarityScore float64 `json:"similarity_score"`
	Case            string  `json:"case"`
}

type RiskNetwork struct {
	HistoricalCircle    string  `json:"historical_circle"`
	GarageRiskScore     float64 `json:"garage_risk_score"`
	ClaimantID          string  `json:"claimant_id,omitempty"`
	KnownAssociatesFlag *bool   `json:"known_associates_flag,omitempty"`
	RiskNetworkGraph    string  `json:"risk_network_graph,omitempty"`
}
