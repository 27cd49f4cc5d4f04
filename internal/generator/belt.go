package generator

import (
	"github.com/galaxydraft/draft-server/internal/dice"
	"github.com/galaxydraft/draft-server/internal/entities"
)

// CardBelt is a shuffled queue of cards for one generation slot. A full
// pass through the belt yields each card exactly once; exhaustion triggers
// a fresh permutation, so repeats can only occur across a reshuffle
// boundary.
type CardBelt interface {
	// Draw returns the next card, reshuffling on exhaustion. Returns nil
	// only for an empty belt.
	Draw() *entities.Card

	// Empty reports whether the belt has no cards at all
	Empty() bool

	// Size returns the number of cards in one pass of the belt
	Size() int
}

// Belt is a plain Fisher-Yates belt over a single pool
type Belt struct {
	name   string
	pool   []*entities.Card
	order  []int
	cursor int
	roller dice.Roller
}

// NewBelt creates a belt over the pool and performs the initial shuffle.
// Belts are owned exclusively by one generation session and are not safe
// for concurrent use.
func NewBelt(name string, pool []*entities.Card, roller dice.Roller) *Belt {
	b := &Belt{
		name:   name,
		pool:   pool,
		roller: roller,
	}
	b.reshuffle()
	return b
}

func (b *Belt) reshuffle() {
	b.order = b.roller.Perm(len(b.pool))
	b.cursor = 0
}

// Draw implements CardBelt.Draw
func (b *Belt) Draw() *entities.Card {
	if len(b.pool) == 0 {
		return nil
	}
	if b.cursor >= len(b.order) {
		b.reshuffle()
	}
	c := b.pool[b.order[b.cursor]]
	b.cursor++
	return c
}

// Empty implements CardBelt.Empty
func (b *Belt) Empty() bool {
	return len(b.pool) == 0
}

// Size implements CardBelt.Size
func (b *Belt) Size() int {
	return len(b.pool)
}

// StripedBelt shuffles each aspect's sub-pool independently and weaves the
// aspects round-robin, so any run of len(aspects) consecutive draws covers
// every aspect assigned to the belt. The common belts use this to
// guarantee full aspect coverage per pack.
type StripedBelt struct {
	name    string
	aspects []entities.Aspect
	groups  map[entities.Aspect][]*entities.Card
	order   []*entities.Card
	cursor  int
	size    int
	roller  dice.Roller
}

// NewStripedBelt creates a striped belt over per-aspect pools
func NewStripedBelt(name string, aspects []entities.Aspect, groups map[entities.Aspect][]*entities.Card, roller dice.Roller) *StripedBelt {
	size := 0
	for _, cards := range groups {
		size += len(cards)
	}
	b := &StripedBelt{
		name:    name,
		aspects: aspects,
		groups:  groups,
		size:    size,
		roller:  roller,
	}
	b.reshuffle()
	return b
}

func (b *StripedBelt) reshuffle() {
	shuffled := make(map[entities.Aspect][]*entities.Card, len(b.groups))
	for aspect, cards := range b.groups {
		perm := b.roller.Perm(len(cards))
		out := make([]*entities.Card, len(cards))
		for i, j := range perm {
			out[i] = cards[j]
		}
		shuffled[aspect] = out
	}

	// Weave aspects round-robin, skipping drained groups
	b.order = make([]*entities.Card, 0, b.size)
	cursors := make(map[entities.Aspect]int, len(b.aspects))
	for len(b.order) < b.size {
		progressed := false
		for _, aspect := range b.aspects {
			cards := shuffled[aspect]
			if cursors[aspect] < len(cards) {
				b.order = append(b.order, cards[cursors[aspect]])
				cursors[aspect]++
				progressed = true
			}
		}
		if !progressed {
			break
		}
	}
	b.cursor = 0
}

// Draw implements CardBelt.Draw
func (b *StripedBelt) Draw() *entities.Card {
	if b.size == 0 {
		return nil
	}
	if b.cursor >= len(b.order) {
		b.reshuffle()
	}
	c := b.order[b.cursor]
	b.cursor++
	return c
}

// Empty implements CardBelt.Empty
func (b *StripedBelt) Empty() bool {
	return b.size == 0
}

// Size implements CardBelt.Size
func (b *StripedBelt) Size() int {
	return b.size
}
