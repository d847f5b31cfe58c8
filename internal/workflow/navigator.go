package workflow

import (
	"fmt"
	"strings"
)

// View is one presentation mode over a held result.
type View string

const (
	ViewSummary      View = "summary"
	ViewIntelligence View = "intelligence"
	ViewForensics    View = "forensics"
	ViewNetwork      View = "network"
	ViewReport       View = "report"
)

// Views lists every view in navigation order.
var Views = []View{ViewSummary, ViewIntelligence, ViewForensics, ViewNetwork, ViewReport}

func ParseView(raw string) (View, error) {
	v := View(strings.ToLower(strings.TrimSpace(raw)))
	if v.valid() {
		return v, nil
	}
	return "", fmt.Errorf("unknown view %q (want summary|intelligence|forensics|network|report)", raw)
}

func (v View) valid() bool {
	for _, known := range Views {
		if v == known {
			return true
		}
	}
	return false
}

func (v View) Title() string {
	switch v {
	case ViewSummary:
		return "Claim Summary"
	case ViewIntelligence:
		return "Advanced Intel"
	case ViewForensics:
		return "Image Forensics"
	case ViewNetwork:
		return "Risk Network"
	case ViewReport:
		return "Forensic Report"
	default:
		return string(v)
	}
}

// Navigator tracks the active view. Selection is refused until the result
// store has unlocked it.
type Navigator struct {
	active   View
	unlocked bool
}

func NewNavigator() *Navigator {
	return &Navigator{active: ViewSummary}
}

// Select activates v and reports whether it was accepted.
func (n *Navigator) Select(v View) bool {
	if !n.unlocked {
		return false
	}
	if !v.valid() {
		return false
	}
	n.active = v
	return true
}

func (n *Navigator) Active() View { return n.active }

func (n *Navigator) Unlocked() bool { return n.unlocked }

func (n *Navigator) unlock() {
	n.unlocked = true
	n.active = ViewSummary
}
