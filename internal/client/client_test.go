package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/claimshield/claimshield/internal/evidence"
	"github.com/claimshield/claimshield/pkg/types"
)

const fixturePath = "../../pkg/schema/testdata/valid_result.json"

func readFixture(t testing.TB) []byte {
	t.Helper()
	raw, err := os.ReadFile(fixturePath)
	if err != nil {
		t.Fatal(err)
	}
	return raw
}

func completeBundle(t testing.TB) evidence.Bundle {
	t.Helper()
	dir := t.TempDir()
	var b evidence.Bundle
	for _, s := range evidence.Slots {
		name := string(s) + ".jpg"
		if s == evidence.SlotInvoice {
			name = "invoice.pdf"
		}
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(string(s)+"-bytes"), 0o644); err != nil {
			t.Fatal(err)
		}
		b = b.Attach(s, evidence.Ref{Name: name, Path: path})
	}
	return b
}

func TestAnalyze_SendsMultipartAndDecodes(t *testing.T) {
	fixture := readFixture(t)
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		if r.Method != http.MethodPost || r.URL.Path != AnalyzePath {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get(RequestIDHeader); got != "sub-1" {
			t.Errorf("request id header = %q", got)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse multipart: %v", err)
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		for field, want := range map[string]string{
			FieldScene:   "scene-bytes",
			FieldDamage:  "damage-bytes",
			FieldInvoice: "invoice-bytes",
		} {
			f, hdr, err := r.FormFile(field)
			if err != nil {
				t.Errorf("missing field %s: %v", field, err)
				continue
			}
			raw, _ := io.ReadAll(f)
			f.Close()
			if string(raw) != want {
				t.Errorf("%s content = %q, want %q", field, raw, want)
			}
			if field == FieldInvoice && hdr.Filename != "invoice.pdf" {
				t.Errorf("invoice filename = %q", hdr.Filename)
			}
		}
		if got := r.FormValue(FieldDescription); got != "the other car came out of nowhere" {
			t.Errorf("description = %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(fixture)
	}))
	defer srv.Close()

	c := New(srv.URL+"/", 0)
	got, err := c.Analyze(context.Background(), Request{
		ID:        "sub-1",
		Bundle:    completeBundle(t),
		Narrative: "the other car came out of nowhere",
	})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if atomic.LoadInt32(&calls) != 1 {
		t.Fatalf("expected exactly one request, got %d", calls)
	}

	var want types.AnalysisResult
	if err := json.Unmarshal(fixture, &want); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("decoded result mismatch (-want +got):\n%s", diff)
	}
	if got.VehicleIntel.Make != "Ford" || got.RiskNetwork.KnownAssociatesFlag == nil {
		t.Errorf("optional fields not decoded: %+v %+v", got.VehicleIntel, got.RiskNetwork)
	}
}

func TestAnalyze_NonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "model crashed", http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := New(srv.URL, 0).Analyze(context.Background(), Request{Bundle: completeBundle(t)})
	if !errors.Is(err, ErrTransport) {
		t.Fatalf("expected ErrTransport, got %v", err)
	}
	var te *TransportError
	if !errors.As(err, &te) || te.StatusCode != http.StatusInternalServerError {
		t.Fatalf("expected 500 TransportError, got %#v", err)
	}
	if !strings.Contains(te.Body, "model crashed") {
		t.Errorf("body snippet = %q", te.Body)
	}
}

func TestAnalyze_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := New(url, 0).Analyze(context.Background(), Request{Bundle: completeBundle(t)})
	if !errors.Is(err, ErrTransport) {
		t.Fatalf("expected ErrTransport, got %v", err)
	}
	if !strings.Contains(err.Error(), "unreachable") {
		t.Errorf("error = %q", err)
	}
}

func TestAnalyze_MalformedBodies(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not json", "<html>oops</html>"},
		{"empty object", "{}"},
		{"null", "null"},
		{"wrong score type", strings.Replace(string(readFixture(t)), `"fraud_score": 0.82`, `"fraud_score": "high"`, 1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				_, _ = io.WriteString(w, tt.body)
			}))
			defer srv.Close()

			_, err := New(srv.URL, 0).Analyze(context.Background(), Request{Bundle: completeBundle(t)})
			if !errors.Is(err, ErrDecode) {
				t.Fatalf("expected ErrDecode, got %v", err)
			}
			if errors.Is(err, ErrTransport) {
				t.Fatalf("decode failure must not be classified as transport: %v", err)
			}
		})
	}
}

func TestAnalyze_MissingEvidenceFileFailsTransport(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.Copy(io.Discard, r.Body)
		_, _ = w.Write(readFixture(t))
	}))
	defer srv.Close()

	b := completeBundle(t).Attach(evidence.SlotInvoice, evidence.Ref{Name: "gone.pdf", Path: filepath.Join(t.TempDir(), "gone.pdf")})
	_, err := New(srv.URL, 0).Analyze(context.Background(), Request{Bundle: b})
	if !errors.Is(err, ErrTransport) {
		t.Fatalf("expected ErrTransport, got %v", err)
	}
}

func TestFieldForSlot(t *testing.T) {
	if FieldForSlot(evidence.SlotScene) != "scene_image" ||
		FieldForSlot(evidence.SlotDamage) != "damage_image" ||
		FieldForSlot(evidence.SlotInvoice) != "invoice_doc" {
		t.Fatal("unexpected multipart field mapping")
	}
}
