package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"github.com/claimshield/claimshield/internal/evidence"
	"github.com/claimshield/claimshield/internal/store"
	"github.com/claimshield/claimshield/internal/view"
	"github.com/claimshield/claimshield/internal/workflow"
)

const consoleHelp = `commands:
  attach <scene|damage|invoice> <path>   place evidence in a slot
  run                                    run the investigation
  view <name>                            switch the active view
  views                                  list views
  status                                 show evidence and state
  dismiss                                clear the current notice
  save [dir]                             archive the current verdict
  wait                                   wait for the running investigation
  quit                                   exit
`

func newConsoleCommand(load configLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "console",
		Short: "Interactive investigation session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := load(cmd)
			if err != nil {
				return err
			}
			ctl := workflow.New(newAnalyzer(cfg),
				workflow.WithNarrative(cfg.Narrative),
				workflow.WithServiceURL(cfg.BaseURL))
			s := &console{ctl: ctl, out: cmd.OutOrStdout()}
			return s.run(cmd.Context(), cmd.InOrStdin())
		},
	}
}

// console drives a Controller from line commands. Output from background
// investigations and the prompt loop share out under mu.
type console struct {
	ctl *workflow.Controller
	out io.Writer
	mu  sync.Mutex
	wg  sync.WaitGroup
}

func (s *console) printf(format string, args ...any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(s.out, format, args...)
}

func (s *console) run(ctx context.Context, in io.Reader) error {
	prev := s.ctl.Snapshot().Phase
	cancel := s.ctl.Subscribe(func(snap workflow.Snapshot) {
		switch {
		case prev == workflow.PhaseIdle && snap.Phase == workflow.PhaseSubmitting:
			s.printf("PROCESSING... (%s)\n", snap.SubmissionID)
		case prev == workflow.PhaseSubmitting && snap.Phase == workflow.PhaseIdle:
			if snap.Outcome == workflow.OutcomeSucceeded && snap.HasResult() {
				s.printf("%s", view.Render(snap.View, *snap.Result))
			} else if snap.Notice != nil {
				s.printf("%s", view.Notice(*snap.Notice))
			}
		}
		prev = snap.Phase
	})
	defer cancel()
	defer s.wg.Wait()

	sc := bufio.NewScanner(in)
	s.printf("%s", consoleHelp)
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}
		if done := s.exec(ctx, fields[0], fields[1:]); done {
			return nil
		}
	}
	return sc.Err()
}

func (s *console) exec(ctx context.Context, name string, args []string) bool {
	switch name {
	case "attach":
		if len(args) != 2 {
			s.printf("usage: attach <scene|damage|invoice> <path>\n")
			return false
		}
		slot, err := evidence.ParseSlot(args[0])
		if err != nil {
			s.printf("error: %v\n", err)
			return false
		}
		ref, err := evidence.LoadRef(args[1])
		if err != nil {
			s.printf("error: %v\n", err)
			return false
		}
		s.ctl.AttachEvidence(slot, ref)
		s.printf("%s attached: %s\n", slot.Label(), ref.Name)
	case "run":
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			snap, err := s.ctl.RunInvestigation(ctx)
			switch {
			case errors.Is(err, workflow.ErrBusy):
				s.printf("investigation already in progress\n")
			case errors.Is(err, workflow.ErrValidation) && snap.Notice != nil:
				s.printf("%s", view.Notice(*snap.Notice))
			}
		}()
	case "view":
		if len(args) != 1 {
			s.printf("usage: view <name>\n")
			return false
		}
		v, err := workflow.ParseView(args[0])
		if err != nil {
			s.printf("error: %v\n", err)
			return false
		}
		snap := s.ctl.SwitchView(v)
		if !snap.HasResult() {
			s.printf("views unlock after the first verdict\n")
			return false
		}
		s.printf("%s", view.Render(snap.View, *snap.Result))
	case "views":
		for _, v := range workflow.Views {
			s.printf("  %-13s %s\n", v, v.Title())
		}
	case "status":
		s.printf("%s", view.Status(s.ctl.Snapshot()))
	case "dismiss":
		s.ctl.DismissNotice()
	case "save":
		dir := store.DefaultDir
		if len(args) > 0 {
			dir = args[0]
		}
		snap := s.ctl.Snapshot()
		if !snap.HasResult() {
			s.printf("nothing to save yet\n")
			return false
		}
		caseDir, err := store.SaveCase(dir, store.Case{
			SubmissionID: snap.ResultSubmissionID,
			ResultDigest: snap.ResultDigest,
			Bundle:       snap.Bundle,
			Result:       *snap.Result,
		})
		if err != nil {
			s.printf("error: %v\n", err)
			return false
		}
		s.printf("archived %s\n", caseDir)
	case "wait":
		s.wg.Wait()
	case "help":
		s.printf("%s", consoleHelp)
	case "quit", "exit":
		return true
	default:
		s.printf("unknown command %q, try help\n", name)
	}
	return false
}
