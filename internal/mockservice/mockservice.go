// Package mockservice is a local stand-in for the analysis service. It
// accepts the same multipart request and answers with a fixed demo verdict.
package mockservice

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/claimshield/claimshield/internal/client"
	"github.com/claimshield/claimshield/internal/logging"
	"github.com/claimshield/claimshield/pkg/types"
)

// Mode selects how the mock answers analysis requests.
type Mode string

const (
	ModeOK        Mode = "ok"
	ModeError     Mode = "error"
	ModeMalformed Mode = "malformed"
)

const maxUploadBytes = 32 << 20

type Options struct {
	Mode  Mode
	Delay time.Duration
}

// Handler serves POST /analyze_claim and GET /healthz.
func Handler(opts Options) http.Handler {
	log := logging.New("mockservice")
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("POST "+client.AnalyzePath, func(w http.ResponseWriter, r *http.Request) {
		log.Info("analysis request", slog.String("request_id", r.Header.Get(client.RequestIDHeader)))
		if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
			writeDetail(w, http.StatusUnprocessableEntity, fmt.Sprintf("parse multipart: %v", err))
			return
		}
		for _, field := range []string{client.FieldScene, client.FieldDamage, client.FieldInvoice} {
			if r.MultipartForm == nil || len(r.MultipartForm.File[field]) == 0 {
				writeDetail(w, http.StatusUnprocessableEntity, "field required: "+field)
				return
			}
		}
		if opts.Delay > 0 {
			select {
			case <-time.After(opts.Delay):
			case <-r.Context().Done():
				return
			}
		}
		switch opts.Mode {
		case ModeError:
			writeDetail(w, http.StatusInternalServerError, "analysis pipeline failed")
		case ModeMalformed:
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"fraud_score": "high", "report": 7}`))
		default:
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(DemoResult(r.FormValue(client.FieldDescription)))
		}
	})
	return mux
}

// Start listens on addr and serves Handler(opts) until the returned
// shutdown function is called. It also returns the base URL.
func Start(addr string, opts Options) (func(context.Context) error, string, error) {
	if strings.TrimSpace(addr) == "" {
		addr = "127.0.0.1:8000"
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, "", fmt.Errorf("listen on %s: %w", addr, err)
	}
	srv := &http.Server{Handler: Handler(opts), ReadHeaderTimeout: 10 * time.Second}
	log := logging.New("mockservice")
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("mock service stopped", slog.String("error", err.Error()))
		}
	}()
	baseURL := "http://" + ln.Addr().String()
	log.Info("mock service listening", slog.String("base_url", baseURL), slog.String("mode", string(opts.Mode)))
	return srv.Shutdown, baseURL, nil
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"detail": detail})
}

var suggestiveWords = []string{"guarantee", "honestly", "truthfully", "believe me"}

// Linguistic scores a claim description for deception cues: each
// suggestive word adds 0.2 and a description under ten words adds 0.15.
func Linguistic(description string) types.LinguisticAnalysis {
	out := types.LinguisticAnalysis{Indicators: []string{}}
	if strings.TrimSpace(description) == "" {
		return out
	}
	lower := strings.ToLower(description)
	score := 0.0
	for _, word := range suggestiveWords {
		if strings.Contains(lower, word) {
			out.Indicators = append(out.Indicators, fmt.Sprintf("Use of suggestive word: '%s'", word))
			score += 0.2
		}
	}
	if len(strings.Fields(description)) < 10 {
		out.Indicators = append(out.Indicators, "Suspiciously brief description for high-damage claim.")
		score += 0.15
	}
	out.Score = round2(score)
	return out
}

// DemoResult is the canned verdict, with linguistic analysis derived from
// description.
func DemoResult(description string) types.AnalysisResult {
	ling := Linguistic(description)
	associates := true
	inconsistencies := []string{
		"Billed internal part 'Engine Oil Pan' has no corresponding external impact indicators.",
	}
	similar := []types.SimilarCase{
		{SimilarityScore: 0.87, Case: "Front-end collision at intersection with inflated parts invoice from the same garage."},
		{SimilarityScore: 0.64, Case: "Claimant reported low-speed impact; repair invoice listed engine components."},
	}
	forensics := map[string]string{
		"metadata_consistency":        types.VerdictFail,
		"exif_location":               "3.2 miles from reported scene",
		"timestamp_match":             "Mismatch (Photo taken 4 days after reported incident)",
		"digital_alteration_detected": "Minor (Potential brightness/contrast manipulation)",
		"camera_model":                "iPhone 15 Pro",
	}

	maxSim := 0.0
	for _, sc := range similar {
		maxSim = math.Max(maxSim, sc.SimilarityScore)
	}
	score := math.Min(0.95, float64(len(inconsistencies))*0.15+maxSim*0.3+ling.Score)
	if forensics["metadata_consistency"] == types.VerdictFail {
		score = math.Min(0.99, score+0.15)
	}
	if associates {
		score = math.Min(0.99, score+0.1)
	}
	score = round2(score)

	r := types.AnalysisResult{
		FraudScore:      score,
		Inconsistencies: inconsistencies,
		DamageAnalysis: []types.DamageFinding{
			{Part: "Front Bumper", Severity: 0.8, BBox: []int{100, 200, 300, 400}},
			{Part: "Left Headlight", Severity: 0.9, BBox: []int{50, 220, 120, 280}},
			{Part: "Hood", Severity: 0.4, BBox: []int{150, 100, 400, 300}},
		},
		InvoiceTable: []types.InvoiceItem{
			{Description: "Front Bumper Replacement", Type: "Part", Cost: 1200},
			{Description: "Left Headlight Assembly", Type: "Part", Cost: 450},
			{Description: "Hood Refinishing", Type: "Labor", Cost: 300},
			{Description: "Engine Oil Pan", Type: "Part", Cost: 150},
			{Description: "Chassis Alignment", Type: "Labor", Cost: 500},
		},
		LinguisticAnalysis: ling,
		VehicleIntel: types.VehicleIntel{
			VIN:                 "1FA6P8CF5H5XXXXXX",
			Make:                "Ford",
			Model:               "F-150",
			PreviousAccidents:   2,
			SalvageHistory:      "None",
			OwnerClaimFrequency: "High (3 claims in 24 months)",
		},
		SimilarCases: similar,
		RiskNetwork: types.RiskNetwork{
			ClaimantID:          "CL-88219",
			KnownAssociatesFlag: &associates,
			GarageRiskScore:     0.82,
			HistoricalCircle:    "Associated with 2 previous 'staged accident' rings",
			RiskNetworkGraph:    "Cluster Detected: North Central Region",
		},
		ImageForensics: forensics,
	}
	r.Report = demoReport(r)
	return r
}

func demoReport(r types.AnalysisResult) string {
	status := "GREEN"
	if r.HighRisk() {
		status = "RED"
	}
	var b strings.Builder
	b.WriteString("### EXECUTIVE SUMMARY\n\n")
	b.WriteString(fmt.Sprintf("Status: **%s** (fraud probability %.2f)\n\n", status, r.FraudScore))
	b.WriteString("### FRAUD INDICATOR JUSTIFICATION\n\n")
	for _, inc := range r.Inconsistencies {
		b.WriteString("- **INCONSISTENCY DETECTED**: " + inc + "\n")
	}
	for _, ind := range r.LinguisticAnalysis.Indicators {
		b.WriteString("- " + ind + "\n")
	}
	b.WriteString("\n### LEGAL RECOMMENDATION\n\n")
	if r.HighRisk() {
		b.WriteString("Proceed to SIU investigation.\n")
	} else {
		b.WriteString("Proceed with standard claim settlement.\n")
	}
	return b.String()
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
