package canvas

import (
	"math/rand/v2"

	"github.com/google/uuid"
	"github.com/pscheid92/notecanvas/internal/domain"
)

const (
	maxSpawnX = 300
	maxSpawnY = 200
)

// NewDraft returns an empty note with a random palette colour, placed at a
// random position in [0,300)x[0,200). random must return values in [0,1);
// nil uses math/rand/v2.
func NewDraft(owner uuid.UUID, random func() float64) domain.NewNote {
	if random == nil {
		random = rand.Float64
	}
	idx := int(random() * float64(len(domain.Palette)))
	if idx >= len(domain.Palette) {
		idx = len(domain.Palette) - 1
	}
	return domain.NewNote{
		OwnerID: owner,
		Content: "",
		Color:   domain.Palette[idx],
		Position: domain.Position{
			X: random() * maxSpawnX,
			Y: random() * maxSpawnY,
		},
	}
}
