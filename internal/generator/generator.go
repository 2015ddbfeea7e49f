// Package generator produces randomly-valued datasets for the table.
package generator

import (
	"math/rand"
	"sync"

	"github.com/dbsmedya/pagetable/internal/types"
)

// Value bounds for the numeric columns. Upper bounds are exclusive.
const (
	MaxAge      = 30
	MaxVisits   = 100
	MaxProgress = 100
)

var firstNames = []string{
	"anger", "apple", "badge", "basin", "birth", "blade", "brick", "cable",
	"chalk", "cloud", "coast", "crate", "dance", "depth", "drama", "eagle",
	"earth", "fiber", "field", "flame", "frost", "grain", "grape", "heart",
	"honey", "horse", "ivory", "jelly", "knife", "lemon", "linen", "maple",
	"metal", "night", "ocean", "olive", "paper", "pearl", "plant", "quilt",
	"river", "robin", "salad", "scale", "shade", "sheep", "stone", "sugar",
	"table", "tiger", "tooth", "tower", "trout", "uncle", "vapor", "water",
	"wheel", "woman", "yacht", "zebra",
}

var lastNames = []string{
	"acoustic", "airport", "argument", "baseball", "bedroom", "blanket",
	"boundary", "building", "calendar", "category", "chicken", "children",
	"computer", "creature", "daughter", "distance", "election", "elephant",
	"engineer", "exchange", "festival", "football", "fountain", "guitar",
	"hospital", "industry", "instance", "language", "lighting", "magazine",
	"marriage", "midnight", "mountain", "negative", "painting", "passenger",
	"pressure", "property", "question", "railroad", "reaction", "sandwich",
	"shoulder", "squirrel", "stomach", "strategy", "tension", "thought",
	"umbrella", "vacation", "variable", "weakness", "whistle", "yogurt",
}

// Generator builds datasets from a private random source. It is safe for
// concurrent use.
type Generator struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// New creates a Generator seeded with seed. Equal seeds produce equal datasets.
func New(seed int64) *Generator {
	return &Generator{rng: rand.New(rand.NewSource(seed))}
}

// Generate returns count flat records. A non-positive count yields an empty dataset.
func (g *Generator) Generate(count int) types.Dataset {
	return g.GenerateTree(count)
}

// GenerateTree returns lens[0] records, each owning lens[1] sub-rows, each of
// those owning lens[2] sub-rows, and so on.
func (g *Generator) GenerateTree(lens ...int) types.Dataset {
	if len(lens) == 0 || lens[0] <= 0 {
		return types.Dataset{}
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	return g.level(lens, 0)
}

// Intn returns a uniform value in [0, n) from the generator's random source.
func (g *Generator) Intn(n int) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.rng.Intn(n)
}

func (g *Generator) level(lens []int, depth int) types.Dataset {
	n := lens[depth]
	out := make(types.Dataset, n)
	for i := range out {
		out[i] = g.record()
		if depth+1 < len(lens) && lens[depth+1] > 0 {
			out[i].SubRows = g.level(lens, depth+1)
		}
	}
	return out
}

func (g *Generator) record() types.Record {
	return types.Record{
		FirstName: firstNames[g.rng.Intn(len(firstNames))],
		LastName:  lastNames[g.rng.Intn(len(lastNames))],
		Age:       g.rng.Intn(MaxAge),
		Visits:    g.rng.Intn(MaxVisits),
		Progress:  g.rng.Intn(MaxProgress),
		Status:    g.status(),
	}
}

func (g *Generator) status() types.Status {
	chance := g.rng.Float64()
	switch {
	case chance > 0.66:
		return types.StatusRelationship
	case chance > 0.33:
		return types.StatusComplicated
	default:
		return types.StatusSingle
	}
}
