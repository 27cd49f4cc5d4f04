package generator

import (
	"github.com/galaxydraft/draft-server/internal/dice"
	"github.com/galaxydraft/draft-server/internal/entities"
	apperr "github.com/galaxydraft/draft-server/internal/errors"
)

// Sampler performs cumulative-weight roulette selection over a rarity table
type Sampler struct {
	roller dice.Roller
}

// NewSampler creates a Sampler
func NewSampler(roller dice.Roller) *Sampler {
	return &Sampler{roller: roller}
}

// Sample picks a rarity from the table by roulette selection
func (s *Sampler) Sample(table []entities.RarityWeight) entities.Rarity {
	total := 0
	for _, w := range table {
		total += w.Weight
	}
	if total <= 0 {
		return ""
	}

	roll := s.roller.Intn(total)
	for _, w := range table {
		roll -= w.Weight
		if roll < 0 {
			return w.Rarity
		}
	}
	return table[len(table)-1].Rarity
}

// SampleAvailable picks a rarity whose belt can actually serve a card.
// When the rolled rarity's belt is exhausted it falls back to the next
// non-empty rarity in descending weight order (tables are stored in that
// order). Errors only when every belt in the table is empty.
func (s *Sampler) SampleAvailable(table []entities.RarityWeight, belts map[entities.Rarity]CardBelt) (entities.Rarity, error) {
	rarity := s.Sample(table)
	if belt, ok := belts[rarity]; ok && !belt.Empty() {
		return rarity, nil
	}

	for _, w := range table {
		if w.Rarity == rarity {
			continue
		}
		if belt, ok := belts[w.Rarity]; ok && !belt.Empty() {
			return w.Rarity, nil
		}
	}

	return "", apperr.Internal("all rarity belts exhausted").
		WithMeta("rolled_rarity", string(rarity))
}
