package store

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/claimshield/claimshield/internal/evidence"
	"github.com/claimshield/claimshield/internal/report"
	"github.com/claimshield/claimshield/pkg/types"
)

// DefaultDir is where investigations are archived when no directory is given.
const DefaultDir = ".claimshield/cases"

// Case is one completed investigation ready for archiving.
type Case struct {
	SubmissionID string
	ResultDigest string
	Bundle       evidence.Bundle
	Result       types.AnalysisResult
}

// SaveCase writes result.json, dossier.md and a copy of every evidence file
// under dir/<submission id>. It returns the case directory.
func SaveCase(dir string, c Case) (string, error) {
	if c.SubmissionID == "" {
		return "", fmt.Errorf("case has no submission id")
	}
	caseDir := filepath.Join(dir, c.SubmissionID)
	if err := os.MkdirAll(filepath.Join(caseDir, "evidence"), 0o755); err != nil {
		return "", fmt.Errorf("create case dir: %w", err)
	}
	if err := report.WriteJSON(filepath.Join(caseDir, "result.json"), c.Result); err != nil {
		return "", fmt.Errorf("write result: %w", err)
	}
	meta := report.Meta{SubmissionID: c.SubmissionID, ResultDigest: c.ResultDigest}
	if err := report.WriteMarkdown(filepath.Join(caseDir, "dossier.md"), c.Result, meta); err != nil {
		return "", fmt.Errorf("write dossier: %w", err)
	}
	for _, e := range c.Bundle.Entries() {
		if _, err := SaveLocal(e.Ref.Path, filepath.Join(caseDir, "evidence"), string(e.Slot)+"-"+e.Ref.Name); err != nil {
			return "", fmt.Errorf("archive %s evidence: %w", e.Slot, err)
		}
	}
	return caseDir, nil
}

// SaveLocal copies srcPath into dir under name, or its base name when name
// is empty.
func SaveLocal(srcPath, dir, name string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	if name == "" {
		name = filepath.Base(srcPath)
	}
	dst := filepath.Join(dir, name)
	src, err := os.Open(srcPath)
	if err != nil {
		return "", err
	}
	defer src.Close()
	out, err := os.Create(dst)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(out, src); err != nil {
		out.Close()
		return "", err
	}
	return dst, out.Close()
}
