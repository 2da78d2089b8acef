package annotation

import (
	"fmt"
	"math"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

const opaqueSuffix = "ff"

// NormalizeColor parses a label colour ("#rgb", "#rrggbb" or "#rrggbbaa")
// and returns it as lower-case "#rrggbbff". The alpha channel of the input
// is discarded.
func NormalizeColor(color string) (string, error) {
	value := strings.TrimSpace(color)
	if len(value) == 9 && strings.HasPrefix(value, "#") {
		value = value[:7]
	}

	c, err := colorful.Hex(value)
	if err != nil {
		return "", fmt.Errorf("invalid label color %q: %w", color, err)
	}
	return c.Hex() + opaqueSuffix, nil
}

// DefaultColor returns a deterministic colour for the index-th label of a
// project that did not configure one. Consecutive indexes are spread around
// the hue circle by the golden angle so neighbouring labels stay distinct.
func DefaultColor(index int) string {
	hue := math.Mod(float64(index)*137.508, 360)
	return colorful.Hsv(hue, 0.65, 0.9).Clamped().Hex() + opaqueSuffix
}
