package words

import (
	"math/rand"
	"time"

	"github.com/hello97-gg/hallotype/internal/model"
)

// Generator produces randomized target text.
type Generator struct {
	rnd *rand.Rand
}

// New returns a Generator seeded with the current time.
func New() *Generator {
	return &Generator{rnd: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

// NewWithSource returns a Generator using the provided source, for
// deterministic selection in tests.
func NewWithSource(src rand.Source) *Generator {
	return &Generator{rnd: rand.New(src)}
}

// Generate selects count words uniformly with replacement from the
// tier's list.
func (g *Generator) Generate(count int, tier model.Tier) []string {
	list := ListForTier(tier)
	result := make([]string, 0, count)
	for i := 0; i < count; i++ {
		result = append(result, list[g.rnd.Intn(len(list))])
	}
	return result
}

// GenerateFrom selects count words uniformly with replacement from a
// caller-supplied list, such as a custom word file.
func (g *Generator) GenerateFrom(list []string, count int) []string {
	result := make([]string, 0, count)
	for i := 0; i < count; i++ {
		result = append(result, list[g.rnd.Intn(len(list))])
	}
	return result
}
