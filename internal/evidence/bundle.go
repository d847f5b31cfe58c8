package evidence

import (
	"fmt"
	"strings"
)

// Slot names one of the three required evidence artifacts.
type Slot string

const (
	SlotScene   Slot = "scene"
	SlotDamage  Slot = "damage"
	SlotInvoice Slot = "invoice"
)

// Slots lists every slot in display and submission order.
var Slots = []Slot{SlotScene, SlotDamage, SlotInvoice}

// ParseSlot accepts a slot name case-insensitively.
func ParseSlot(raw string) (Slot, error) {
	s := Slot(strings.ToLower(strings.TrimSpace(raw)))
	for _, known := range Slots {
		if s == known {
			return s, nil
		}
	}
	return "", fmt.Errorf("unknown evidence slot %q (want scene|damage|invoice)", raw)
}

// Label is the operator-facing name of the slot.
func (s Slot) Label() string {
	switch s {
	case SlotScene:
		return "Scene"
	case SlotDamage:
		return "Damage"
	case SlotInvoice:
		return "Invoice"
	default:
		return string(s)
	}
}

// Ref is an opaque reference to an operator-supplied file. Digest and Size
// are informational and may be empty.
type Ref struct {
	Name   string `json:"name"`
	Path   string `json:"path"`
	Digest string `json:"digest,omitempty"`
	Size   int64  `json:"size_bytes"`
}

// Bundle is an immutable set of evidence slots. The zero value is an empty
// bundle. Attach returns a new bundle and never modifies the receiver.
type Bundle struct {
	scene, damage, invoice *Ref
}

// Attach fills slot with ref, replacing any earlier value. No validation of
// file type or size is performed.
func (b Bundle) Attach(slot Slot, ref Ref) Bundle {
	r := ref
	switch slot {
	case SlotScene:
		b.scene = &r
	case SlotDamage:
		b.damage = &r
	case SlotInvoice:
		b.invoice = &r
	}
	return b
}

// Get returns the reference held in slot.
func (b Bundle) Get(slot Slot) (Ref, bool) {
	var p *Ref
	switch slot {
	case SlotScene:
		p = b.scene
	case SlotDamage:
		p = b.damage
	case SlotInvoice:
		p = b.invoice
	}
	if p == nil {
		return Ref{}, false
	}
	return *p, true
}

func (b Bundle) IsComplete() bool {
	return len(b.Missing()) == 0
}

// Missing lists unfilled slots in Slots order.
func (b Bundle) Missing() []Slot {
	var out []Slot
	for _, s := range Slots {
		if _, ok := b.Get(s); !ok {
			out = append(out, s)
		}
	}
	return out
}

// Entries returns filled slots in Slots order.
func (b Bundle) Entries() []Entry {
	out := make([]Entry, 0, len(Slots))
	for _, s := range Slots {
		if ref, ok := b.Get(s); ok {
			out = append(out, Entry{Slot: s, Ref: ref})
		}
	}
	return out
}

type Entry struct {
	Slot Slot `json:"slot"`
	Ref  Ref  `json:"ref"`
}
