//go:build e2e

package e2e

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/claimshield/claimshield/internal/evidence"
	"github.com/claimshield/claimshield/internal/mockservice"
)

// startService runs the mock analysis service on a loopback port for the
// duration of the test.
func startService(t *testing.T, opts mockservice.Options) string {
	t.Helper()
	shutdown, baseURL, err := mockservice.Start("127.0.0.1:0", opts)
	if err != nil {
		t.Fatalf("start mock service: %v", err)
	}
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdown(ctx)
	})
	return baseURL
}

// writeEvidence creates one file per slot and fingerprints them.
func writeEvidence(t *testing.T) map[evidence.Slot]evidence.Ref {
	t.Helper()
	dir := t.TempDir()
	paths := map[evidence.Slot]string{}
	for _, s := range evidence.Slots {
		p := filepath.Join(dir, string(s)+".jpg")
		if err := os.WriteFile(p, []byte("evidence:"+string(s)), 0o644); err != nil {
			t.Fatal(err)
		}
		paths[s] = p
	}
	refs, err := evidence.LoadRefs(context.Background(), paths)
	if err != nil {
		t.Fatalf("load evidence: %v", err)
	}
	return refs
}
