// Package detail maps user-facing quality tokens to render detail levels.
package detail

import (
	"fmt"
	"strings"

	"photomesh/internal/apperr"
)

// Level is a render quality tier, ordered from cheapest to most faithful.
type Level int

const (
	Preview Level = iota
	Reduced
	Medium
	Full
	Raw
)

var names = [...]string{
	Preview: "preview",
	Reduced: "reduced",
	Medium:  "medium",
	Full:    "full",
	Raw:     "raw",
}

func (l Level) String() string {
	if l < Preview || l > Raw {
		return fmt.Sprintf("Level(%d)", int(l))
	}
	return names[l]
}

// Levels lists every level in increasing fidelity.
func Levels() []Level {
	return []Level{Preview, Reduced, Medium, Full, Raw}
}

// Parse maps token, ignoring case, to its Level. There is no fallback:
// anything outside the closed set is ErrInvalidDetailLevel.
func Parse(token string) (Level, error) {
	lower := strings.ToLower(token)
	for i, name := range names {
		if name == lower {
			return Level(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q (want one of %s)", apperr.ErrInvalidDetailLevel, token, strings.Join(names[:], ", "))
}
