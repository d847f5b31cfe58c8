package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/claimshield/claimshield/internal/evidence"
	"github.com/claimshield/claimshield/internal/logging"
	"github.com/claimshield/claimshield/pkg/schema"
	"github.com/claimshield/claimshield/pkg/types"
)

const (
	AnalyzePath = "/analyze_claim"

	FieldScene       = "scene_image"
	FieldDamage      = "damage_image"
	FieldInvoice     = "invoice_doc"
	FieldDescription = "description"

	RequestIDHeader = "X-Request-ID"

	maxBodyBytes  = 10 * 1024 * 1024 // 10 MB
	maxErrorBytes = 512
)

// FieldForSlot maps an evidence slot to its multipart field name.
func FieldForSlot(s evidence.Slot) string {
	switch s {
	case evidence.SlotScene:
		return FieldScene
	case evidence.SlotDamage:
		return FieldDamage
	case evidence.SlotInvoice:
		return FieldInvoice
	default:
		return ""
	}
}

// Request is one outbound submission.
type Request struct {
	ID        string
	Bundle    evidence.Bundle
	Narrative string
}

// Client posts evidence bundles to the analysis service.
type Client struct {
	BaseURL string
	HTTP    *http.Client
	log     *slog.Logger
}

// New returns a client for baseURL. A zero timeout leaves requests unbounded.
func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{Timeout: timeout},
		log:     logging.New("client"),
	}
}

func (c *Client) Endpoint() string {
	return strings.TrimRight(c.BaseURL, "/") + AnalyzePath
}

// Analyze submits req and decodes the verdict. Failures are *TransportError
// or *DecodeError.
func (c *Client) Analyze(ctx context.Context, req Request) (types.AnalysisResult, error) {
	endpoint := c.Endpoint()
	body, contentType := multipartBody(req)
	defer body.Close()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, body)
	if err != nil {
		return types.AnalysisResult{}, &TransportError{URL: endpoint, Err: err}
	}
	httpReq.Header.Set("Content-Type", contentType)
	httpReq.Header.Set("Accept", "application/json")
	if req.ID != "" {
		httpReq.Header.Set(RequestIDHeader, req.ID)
	}

	hc := c.HTTP
	if hc == nil {
		hc = http.DefaultClient
	}
	started := time.Now()
	resp, err := hc.Do(httpReq)
	if err != nil {
		return types.AnalysisResult{}, &TransportError{URL: endpoint, Err: err}
	}
	defer resp.Body.Close()
	c.logger().Debug("analysis response",
		slog.String("submission_id", req.ID),
		slog.Int("status", resp.StatusCode),
		slog.Duration("duration", time.Since(started)))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBytes))
		return types.AnalysisResult{}, &TransportError{
			URL:        endpoint,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(snippet)),
		}
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes+1))
	if err != nil {
		return types.AnalysisResult{}, &TransportError{URL: endpoint, Err: fmt.Errorf("read body: %w", err)}
	}
	if len(raw) > maxBodyBytes {
		return types.AnalysisResult{}, &DecodeError{Err: fmt.Errorf("response body exceeds %d bytes", maxBodyBytes)}
	}
	return Decode(raw)
}

// Decode validates raw against the AnalysisResult schema before decoding
// it, so no partially shaped result is ever returned.
func Decode(raw []byte) (types.AnalysisResult, error) {
	violations, err := schema.ValidateAnalysisResult(raw)
	if err != nil {
		return types.AnalysisResult{}, &DecodeError{Err: err}
	}
	if len(violations) > 0 {
		return types.AnalysisResult{}, &DecodeError{Violations: violations}
	}
	var out types.AnalysisResult
	if err := json.Unmarshal(raw, &out); err != nil {
		return types.AnalysisResult{}, &DecodeError{Err: err}
	}
	return out, nil
}

func (c *Client) logger() *slog.Logger {
	if c.log == nil {
		return logging.New("client")
	}
	return c.log
}

// multipartBody streams the evidence files and narrative through a pipe so
// large files are never held in memory.
func multipartBody(req Request) (io.ReadCloser, string) {
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)
	go func() {
		pw.CloseWithError(writeParts(mw, req))
	}()
	return pr, mw.FormDataContentType()
}

func writeParts(mw *multipart.Writer, req Request) error {
	for _, slot := range evidence.Slots {
		ref, ok := req.Bundle.Get(slot)
		if !ok {
			return fmt.Errorf("%s evidence missing", slot)
		}
		if err := writeFilePart(mw, FieldForSlot(slot), ref); err != nil {
			return err
		}
	}
	if err := mw.WriteField(FieldDescription, req.Narrative); err != nil {
		return fmt.Errorf("write description: %w", err)
	}
	return mw.Close()
}

func writeFilePart(mw *multipart.Writer, field string, ref evidence.Ref) error {
	f, err := os.Open(ref.Path)
	if err != nil {
		return fmt.Errorf("open %s: %w", field, err)
	}
	defer f.Close()

	name := ref.Name
	if name == "" {
		name = filepath.Base(ref.Path)
	}
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, field, name))
	ct := mime.TypeByExtension(strings.ToLower(filepath.Ext(name)))
	if ct == "" {
		ct = "application/octet-stream"
	}
	h.Set("Content-Type", ct)

	part, err := mw.CreatePart(h)
	if err != nil {
		return fmt.Errorf("create %s part: %w", field, err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return fmt.Errorf("write %s part: %w", field, err)
	}
	return nil
}
