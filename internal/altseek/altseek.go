// Package altseek proposes substitute unit prices for pay items that have
// little or no bid history, using an LLM to suggest a comparable item.
package altseek

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/costest-cli/internal/geometry"
)

// ErrNoAlternate indicates no usable substitute price could be produced.
// Callers treat it as "leave the item as-is", never as a fatal error.
var ErrNoAlternate = eris.New("altseek: no alternate price")

// Request describes one thin pay item to seek a substitute for.
type Request struct {
	ItemCode    string
	Description string
	Geometry    *geometry.Info // nil when the description has no parseable geometry

	// MaxCandidates caps the number of comparable items the model may
	// consider. Zero means the seeker's default.
	MaxCandidates int
}

// Alternate is a substitute price with a human-readable provenance note.
type Alternate struct {
	UnitPrice  float64
	Provenance string
}

// Seeker finds substitute prices for items with thin bid history.
type Seeker interface {
	Seek(ctx context.Context, req Request) (*Alternate, error)
}

// Disabled is a Seeker that never proposes a substitute. It is the default
// when alternate seeking is turned off or no API key is configured.
type Disabled struct{}

func (Disabled) Seek(ctx context.Context, req Request) (*Alternate, error) {
	return nil, ErrNoAlternate
}
