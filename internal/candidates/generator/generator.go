package generator

import (
	"fmt"
	"sync"

	"github.com/brianvoe/gofakeit/v7"

	"ballotbox/internal/candidates/models"
)

// Faker synthesizes plausible candidate fields.
type Faker struct {
	mu    sync.Mutex
	faker *gofakeit.Faker
}

// New returns a generator seeded with seed; 0 picks a random seed.
func New(seed uint64) *Faker {
	return &Faker{faker: gofakeit.New(seed)}
}

func (g *Faker) Generate() models.Fields {
	g.mu.Lock()
	defer g.mu.Unlock()
	f := g.faker
	name := f.Name()
	party := fmt.Sprintf("%s %s Party", f.Color(), f.Animal())
	description := fmt.Sprintf("%s %s committed to %s.", f.JobDescriptor(), f.JobTitle(), f.BS())
	image := fmt.Sprintf("https://i.pravatar.cc/300?u=%s", f.UUID())
	return models.NewFields(name, party, description, image)
}
