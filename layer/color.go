package layer

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Color is a premultiplication-free RGBA color with components in [0, 1].
type Color [4]float32

var namedColors = map[string]Color{
	"black":       {0, 0, 0, 1},
	"white":       {1, 1, 1, 1},
	"red":         {1, 0, 0, 1},
	"green":       {0, 0.5, 0, 1},
	"lime":        {0, 1, 0, 1},
	"blue":        {0, 0, 1, 1},
	"yellow":      {1, 1, 0, 1},
	"cyan":        {0, 1, 1, 1},
	"magenta":     {1, 0, 1, 1},
	"gray":        {0.5, 0.5, 0.5, 1},
	"grey":        {0.5, 0.5, 0.5, 1},
	"orange":      {1, 0.647, 0, 1},
	"purple":      {0.5, 0, 0.5, 1},
	"pink":        {1, 0.753, 0.796, 1},
	"brown":       {0.647, 0.165, 0.165, 1},
	"transparent": {0, 0, 0, 0},
}

// ParseColor understands CSS-style colors: #RGB, #RGBA, #RRGGBB, #RRGGBBAA,
// and a small set of named colors. Names are case-insensitive.
func ParseColor(s string) (Color, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Color{}, errors.New("layer: empty color")
	}

	if !strings.HasPrefix(s, "#") {
		if c, ok := namedColors[strings.ToLower(s)]; ok {
			return c, nil
		}
		return Color{}, errors.Errorf("layer: unknown color name %q", s)
	}

	hex := s[1:]
	var parts [4]float32
	parts[3] = 1

	switch len(hex) {
	case 3, 4:
		for i := 0; i < len(hex); i++ {
			v, err := strconv.ParseUint(hex[i:i+1], 16, 8)
			if err != nil {
				return Color{}, errors.Errorf("layer: bad hex color %q", s)
			}
			parts[i] = float32(v*16+v) / 255
		}
	case 6, 8:
		for i := 0; i*2 < len(hex); i++ {
			v, err := strconv.ParseUint(hex[i*2:i*2+2], 16, 8)
			if err != nil {
				return Color{}, errors.Errorf("layer: bad hex color %q", s)
			}
			parts[i] = float32(v) / 255
		}
	default:
		return Color{}, errors.Errorf("layer: bad hex color length %q", s)
	}

	return parts, nil
}

// ParseColorOr returns the parsed color, or fallback when s does not parse.
func ParseColorOr(s string, fallback Color) Color {
	c, err := ParseColor(s)
	if err != nil {
		return fallback
	}
	return c
}
