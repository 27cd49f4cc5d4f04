package generator_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/galaxydraft/draft-server/internal/dice"
	"github.com/galaxydraft/draft-server/internal/entities"
	apperr "github.com/galaxydraft/draft-server/internal/errors"
	"github.com/galaxydraft/draft-server/internal/generator"
)

var foilTable = []entities.RarityWeight{
	{Rarity: entities.RarityCommon, Weight: 70},
	{Rarity: entities.RarityUncommon, Weight: 20},
	{Rarity: entities.RarityRare, Weight: 8},
	{Rarity: entities.RarityLegendary, Weight: 2},
}

func TestSamplerRouletteBoundaries(t *testing.T) {
	cases := []struct {
		roll int
		want entities.Rarity
	}{
		{0, entities.RarityCommon},
		{69, entities.RarityCommon},
		{70, entities.RarityUncommon},
		{89, entities.RarityUncommon},
		{90, entities.RarityRare},
		{97, entities.RarityRare},
		{98, entities.RarityLegendary},
		{99, entities.RarityLegendary},
	}

	for _, tc := range cases {
		roller := dice.NewMockRoller()
		roller.SetNextIntn(tc.roll)
		sampler := generator.NewSampler(roller)
		assert.Equal(t, tc.want, sampler.Sample(foilTable), "roll %d", tc.roll)
	}
}

func TestSampleAvailableFallsBackByWeight(t *testing.T) {
	roller := dice.NewMockRoller()
	roller.SetNextIntn(99) // lands on legendary
	sampler := generator.NewSampler(roller)

	belts := map[entities.Rarity]generator.CardBelt{
		entities.RarityCommon:    generator.NewBelt("c", makeCards("c", 3, entities.AspectCommand), roller),
		entities.RarityUncommon:  generator.NewBelt("u", makeCards("u", 3, entities.AspectCommand), roller),
		entities.RarityRare:      generator.NewBelt("r", nil, roller),
		entities.RarityLegendary: generator.NewBelt("l", nil, roller),
	}

	// Legendary and rare are exhausted; the fallback walks the table in
	// descending weight order and lands on common
	rarity, err := sampler.SampleAvailable(foilTable, belts)
	require.NoError(t, err)
	assert.Equal(t, entities.RarityCommon, rarity)
}

func TestSampleAvailableAllExhausted(t *testing.T) {
	roller := dice.NewMockRoller()
	sampler := generator.NewSampler(roller)

	belts := map[entities.Rarity]generator.CardBelt{
		entities.RarityCommon:   generator.NewBelt("c", nil, roller),
		entities.RarityUncommon: generator.NewBelt("u", nil, roller),
	}

	_, err := sampler.SampleAvailable(foilTable, belts)
	require.Error(t, err)
	assert.Equal(t, apperr.CodeInternal, apperr.GetCode(err))
}
