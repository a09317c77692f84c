package plan

import (
	"math/rand/v2"

	"github.com/abhisek/examprep/internal/catalog"
	"github.com/abhisek/examprep/internal/exam"
)

const (
	// MaxPBQ caps the number of performance-based slot picks per plan.
	MaxPBQ = 12

	// MaxMulti caps the number of multi-select slot picks per plan.
	MaxMulti = 10

	// MultiRatio is the share of the plan considered for multi-select.
	MultiRatio = 0.12
)

// Options controls plan construction.
type Options struct {
	// Length is the session length. Zero means the core's default length.
	Length int

	// PBQCount is the requested number of performance-based items.
	PBQCount int
}

// Builder expands a core's blueprint into a flat plan.
type Builder struct {
	rng *rand.Rand
}

// NewBuilder creates a Builder drawing from rng. A nil rng uses a randomly
// seeded source.
func NewBuilder(rng *rand.Rand) *Builder {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Builder{rng: rng}
}

// NewSeededBuilder creates a Builder whose plans are reproducible for seed.
func NewSeededBuilder(seed uint64) *Builder {
	return NewBuilder(rand.New(rand.NewPCG(seed, seed)))
}

// Build returns exactly opts.Length plan items for core. PBQ and multi-select
// counts are best effort: slot picks may collide.
func (b *Builder) Build(core *catalog.Core, opts Options) ([]exam.PlanItem, error) {
	length := opts.Length
	if length == 0 {
		length = core.Length
	}

	weights := make([]Weight, len(core.Domains))
	for i, d := range core.Domains {
		weights[i] = Weight{Key: d.Number, Weight: d.Weight}
	}
	counts, err := Allocate(length, weights)
	if err != nil {
		return nil, err
	}

	items := make([]exam.PlanItem, 0, length)
	for i, d := range core.Domains {
		ids := core.ObjectiveIDs(d.Number)
		for range counts[i].Count {
			id := d.Major() + ".1"
			if len(ids) > 0 {
				id = ids[b.rng.IntN(len(ids))]
			}
			items = append(items, planItem(core, d, id))
		}
	}

	b.injectPBQ(items, opts.PBQCount)
	b.sprinkleMulti(items)
	return fitLength(items, length), nil
}

func planItem(core *catalog.Core, d catalog.DomainBlueprint, objectiveID string) exam.PlanItem {
	item := exam.PlanItem{
		DomainNumber:   d.Number,
		DomainLabel:    d.Label,
		ObjectiveID:    objectiveID,
		ObjectiveTitle: d.Label,
		AnswerType:     exam.AnswerSingle,
	}
	if o, ok := core.Objective(objectiveID); ok {
		item.ObjectiveTitle = o.Title
		item.ObjectiveBullets = catalog.UsableBullets(o)
	}
	return item
}

// injectPBQ turns up to MaxPBQ random slots into PBQ items. Picks are with
// replacement, so a slot chosen twice is simply reassigned.
func (b *Builder) injectPBQ(items []exam.PlanItem, requested int) {
	if len(items) == 0 {
		return
	}
	for range min(requested, MaxPBQ) {
		i := b.rng.IntN(len(items))
		if b.rng.IntN(2) == 0 {
			items[i].AnswerType = exam.AnswerPBQOrder
		} else {
			items[i].AnswerType = exam.AnswerPBQMatch
		}
	}
}

// sprinkleMulti promotes random single slots to multi. Slots already holding
// another type are left alone.
func (b *Builder) sprinkleMulti(items []exam.PlanItem) {
	if len(items) == 0 {
		return
	}
	n := min(MaxMulti, int(MultiRatio*float64(len(items))))
	for range n {
		i := b.rng.IntN(len(items))
		if items[i].AnswerType == exam.AnswerSingle {
			items[i].AnswerType = exam.AnswerMulti
		}
	}
}

// fitLength truncates items to length, or pads by repeating from the start.
func fitLength(items []exam.PlanItem, length int) []exam.PlanItem {
	if len(items) >= length {
		return items[:length]
	}
	if len(items) == 0 {
		return items
	}
	for i := 0; len(items) < length; i++ {
		items = append(items, items[i])
	}
	return items
}

// Counts tallies a plan by answer type.
func Counts(items []exam.PlanItem) map[exam.AnswerType]int {
	counts := make(map[exam.AnswerType]int)
	for _, it := range items {
		counts[it.AnswerType]++
	}
	return counts
}
