package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/claimshield/claimshield/internal/client"
	"github.com/claimshield/claimshield/internal/evidence"
	"github.com/claimshield/claimshield/internal/report"
	"github.com/claimshield/claimshield/internal/store"
	"github.com/claimshield/claimshield/internal/view"
	"github.com/claimshield/claimshield/internal/workflow"
	"github.com/claimshield/claimshield/pkg/types"
)

func newInvestigateCommand(load configLoader) *cobra.Command {
	var scenePath, damagePath, invoicePath, viewName, format, outPath, archiveDir string
	cmd := &cobra.Command{
		Use:   "investigate",
		Short: "Submit scene, damage and invoice evidence and show the verdict",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := load(cmd)
			if err != nil {
				return err
			}
			v, err := workflow.ParseView(viewName)
			if err != nil {
				return err
			}
			if err := checkFormat(format); err != nil {
				return err
			}

			refs, err := evidence.LoadRefs(cmd.Context(), map[evidence.Slot]string{
				evidence.SlotScene:   scenePath,
				evidence.SlotDamage:  damagePath,
				evidence.SlotInvoice: invoicePath,
			})
			if err != nil {
				return err
			}

			ctl := workflow.New(newAnalyzer(cfg),
				workflow.WithNarrative(cfg.Narrative),
				workflow.WithServiceURL(cfg.BaseURL))
			for _, slot := range evidence.Slots {
				if ref, ok := refs[slot]; ok {
					ctl.AttachEvidence(slot, ref)
				}
			}

			snap, err := ctl.RunInvestigation(cmd.Context())
			if err != nil {
				if snap.Notice != nil {
					fmt.Fprint(cmd.ErrOrStderr(), view.Notice(*snap.Notice))
				}
				return cliError{code: exitCode(err), err: err}
			}
			snap = ctl.SwitchView(v)
			if archiveDir != "" {
				dir, err := store.SaveCase(archiveDir, store.Case{
					SubmissionID: snap.ResultSubmissionID,
					ResultDigest: snap.ResultDigest,
					Bundle:       snap.Bundle,
					Result:       *snap.Result,
				})
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "archived %s\n", dir)
			}
			meta := report.Meta{SubmissionID: snap.ResultSubmissionID, ResultDigest: snap.ResultDigest}
			return emit(cmd.OutOrStdout(), *snap.Result, snap.View, format, outPath, meta)
		},
	}
	cmd.Flags().StringVar(&scenePath, "scene", "", "accident scene photo")
	cmd.Flags().StringVar(&damagePath, "damage", "", "vehicle damage photo")
	cmd.Flags().StringVar(&invoicePath, "invoice", "", "repair invoice document")
	cmd.Flags().StringVar(&viewName, "view", string(workflow.ViewSummary), "view to show (summary|intelligence|forensics|network|report)")
	cmd.Flags().StringVar(&format, "format", "text", "output format (text|json|md)")
	cmd.Flags().StringVar(&outPath, "out", "", "write output to file instead of stdout")
	cmd.Flags().StringVar(&archiveDir, "archive", "", "archive result, dossier and evidence under this directory (e.g. "+store.DefaultDir+")")
	return cmd
}

func newRenderCommand() *cobra.Command {
	var inPath, viewName, format, outPath string
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render a saved analysis result JSON",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if inPath == "" {
				return fmt.Errorf("--in is required")
			}
			v, err := workflow.ParseView(viewName)
			if err != nil {
				return err
			}
			if err := checkFormat(format); err != nil {
				return err
			}
			raw, err := os.ReadFile(inPath)
			if err != nil {
				return err
			}
			r, err := client.Decode(raw)
			if err != nil {
				return cliError{code: exitCode(err), err: err}
			}
			return emit(cmd.OutOrStdout(), r, v, format, outPath, report.Meta{})
		},
	}
	cmd.Flags().StringVar(&inPath, "in", "", "analysis result JSON input")
	cmd.Flags().StringVar(&viewName, "view", string(workflow.ViewSummary), "view to show")
	cmd.Flags().StringVar(&format, "format", "text", "output format (text|json|md)")
	cmd.Flags().StringVar(&outPath, "out", "", "write output to file instead of stdout")
	return cmd
}

func checkFormat(format string) error {
	switch format {
	case "text", "json", "md":
		return nil
	default:
		return fmt.Errorf("unsupported format %s", format)
	}
}

func emit(w io.Writer, r types.AnalysisResult, v workflow.View, format, outPath string, meta report.Meta) error {
	if outPath != "" {
		var err error
		switch format {
		case "json":
			err = report.WriteJSON(outPath, r)
		case "md":
			err = report.WriteMarkdown(outPath, r, meta)
		default:
			err = os.WriteFile(outPath, []byte(view.Render(v, r)), 0o644)
		}
		if err != nil {
			return err
		}
		fmt.Fprintln(w, outPath)
		return nil
	}
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	case "md":
		_, err := io.WriteString(w, report.BuildMarkdown(r, meta))
		return err
	default:
		_, err := io.WriteString(w, view.Render(v, r))
		return err
	}
}
