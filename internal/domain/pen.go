package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnknownVariant indicates the variant is not part of the fixed catalog.
	ErrUnknownVariant = errors.New("catalog: unknown variant")
	// ErrInvalidConfiguration indicates the variant does not allow the requested activation.
	ErrInvalidConfiguration = errors.New("catalog: invalid configuration")
)

// Variant identifies a pen colour sold by the box.
type Variant string

const (
	VariantBlue Variant = "blue"
	VariantRed  Variant = "red"
	VariantGold Variant = "gold"
)

// Variants returns the fixed variant set in menu order.
func Variants() []Variant {
	return []Variant{VariantBlue, VariantRed, VariantGold}
}

// ParseVariant normalises the raw identifier and checks it belongs to the fixed set.
func ParseVariant(raw string) (Variant, error) {
	v := Variant(strings.ToLower(strings.TrimSpace(raw)))
	if !v.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownVariant, raw)
	}
	return v, nil
}

// Valid reports whether the variant belongs to the fixed set.
func (v Variant) Valid() bool {
	switch v {
	case VariantBlue, VariantRed, VariantGold:
		return true
	}
	return false
}

// RequiresButton reports whether pens of this variant must be button-activated.
func (v Variant) RequiresButton() bool {
	return v == VariantRed
}

// Label returns the customer-facing colour name.
func (v Variant) Label() string {
	switch v {
	case VariantBlue:
		return "Azul"
	case VariantRed:
		return "Vermelha"
	case VariantGold:
		return "Dourada"
	default:
		return string(v)
	}
}

// Pen is a validated variant configuration. The zero value is not usable; build pens with NewPen.
type Pen struct {
	variant         Variant
	buttonActivated bool
}

// NewPen validates the variant and its activation attribute before returning a pen.
func NewPen(variant Variant, buttonActivated bool) (Pen, error) {
	if !variant.Valid() {
		return Pen{}, fmt.Errorf("%w: %q", ErrUnknownVariant, string(variant))
	}
	if err := checkActivation(variant, buttonActivated); err != nil {
		return Pen{}, err
	}
	return Pen{variant: variant, buttonActivated: buttonActivated}, nil
}

// Variant returns the pen colour.
func (p Pen) Variant() Variant { return p.variant }

// ButtonActivated reports whether the pen is activated by a button.
func (p Pen) ButtonActivated() bool { return p.buttonActivated }

// SetButtonActivated changes the activation attribute. The pen is left untouched when the
// variant does not accept the value.
func (p *Pen) SetButtonActivated(value bool) error {
	if err := checkActivation(p.variant, value); err != nil {
		return err
	}
	p.buttonActivated = value
	return nil
}

// Describe renders the pen as shown on menus and receipts, e.g. "Azul (com botão)".
func (p Pen) Describe() string {
	activation := "sem botão"
	if p.buttonActivated {
		activation = "com botão"
	}
	return fmt.Sprintf("%s (%s)", p.variant.Label(), activation)
}

func checkActivation(variant Variant, buttonActivated bool) error {
	if variant.RequiresButton() && !buttonActivated {
		return fmt.Errorf("%w: %s pens must be button-activated", ErrInvalidConfiguration, variant)
	}
	return nil
}
