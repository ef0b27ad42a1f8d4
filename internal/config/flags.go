package config

// pflag.Value adapters so the enum types (ConversionMode, ColorMode) can be
// bound with cmd.Flags().Var and keep their validation at parse time.

import (
	"fmt"
	"strings"
)

// ModeValue binds a *ConversionMode to a command-line flag.
type ModeValue struct{ p *ConversionMode }

// NewModeValue returns a flag value writing into p.
func NewModeValue(p *ConversionMode) *ModeValue { return &ModeValue{p} }

func (m *ModeValue) String() string {
	if m.p == nil {
		return ""
	}
	return strings.ToLower(string(*m.p))
}

func (m *ModeValue) Set(s string) error {
	mode, err := ParseConversionMode(s)
	if err != nil {
		return err
	}
	*m.p = mode
	return nil
}

func (m *ModeValue) Type() string { return "mode" }

// ColorValue binds a *ColorMode to a command-line flag.
type ColorValue struct{ p *ColorMode }

// NewColorValue returns a flag value writing into p.
func NewColorValue(p *ColorMode) *ColorValue { return &ColorValue{p} }

func (c *ColorValue) String() string {
	if c.p == nil {
		return ""
	}
	return string(*c.p)
}

func (c *ColorValue) Set(s string) error {
	switch strings.ToLower(s) {
	case "auto":
		*c.p = ColorAuto
	case "always":
		*c.p = ColorAlways
	case "never":
		*c.p = ColorNever
	default:
		return fmt.Errorf("invalid color mode %q (use 'auto', 'always' or 'never')", s)
	}
	return nil
}

func (c *ColorValue) Type() string { return "when" }
