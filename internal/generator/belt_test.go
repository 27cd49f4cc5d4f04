package generator_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/galaxydraft/draft-server/internal/dice"
	"github.com/galaxydraft/draft-server/internal/entities"
	"github.com/galaxydraft/draft-server/internal/generator"
)

func makeCards(prefix string, n int, aspect entities.Aspect) []*entities.Card {
	out := make([]*entities.Card, n)
	for i := 0; i < n; i++ {
		out[i] = &entities.Card{
			ID:      fmt.Sprintf("%s-%03d", prefix, i),
			Name:    fmt.Sprintf("%s %d", prefix, i),
			Type:    entities.CardTypeUnit,
			Rarity:  entities.RarityCommon,
			Aspects: []entities.Aspect{aspect},
			Cost:    1 + i%5,
		}
	}
	return out
}

func TestBeltDrawIsPermutation(t *testing.T) {
	pool := makeCards("c", 20, entities.AspectCommand)
	belt := generator.NewBelt("test", pool, dice.NewRandomRoller(1))

	seen := make(map[string]bool)
	for i := 0; i < belt.Size(); i++ {
		card := belt.Draw()
		require.NotNil(t, card)
		assert.False(t, seen[card.ID], "card %s repeated within one pass", card.ID)
		seen[card.ID] = true
	}
	assert.Len(t, seen, 20)
}

func TestBeltReshufflesOnExhaustion(t *testing.T) {
	pool := makeCards("c", 5, entities.AspectCommand)
	belt := generator.NewBelt("test", pool, dice.NewRandomRoller(time.Now().UnixNano()))

	for i := 0; i < belt.Size(); i++ {
		require.NotNil(t, belt.Draw())
	}

	// Draw N+1 starts a fresh permutation of the same pool
	next := belt.Draw()
	require.NotNil(t, next)

	seen := map[string]bool{next.ID: true}
	for i := 1; i < belt.Size(); i++ {
		card := belt.Draw()
		require.NotNil(t, card)
		assert.False(t, seen[card.ID], "card %s repeated within the second pass", card.ID)
		seen[card.ID] = true
	}
	assert.Len(t, seen, 5)
}

func TestBeltEmptyPool(t *testing.T) {
	belt := generator.NewBelt("empty", nil, dice.NewRandomRoller(1))
	assert.True(t, belt.Empty())
	assert.Nil(t, belt.Draw())
}

func TestStripedBeltCoversAspects(t *testing.T) {
	aspects := []entities.Aspect{
		entities.AspectVigilance,
		entities.AspectCommand,
		entities.AspectVillainy,
	}
	groups := map[entities.Aspect][]*entities.Card{
		entities.AspectVigilance: makeCards("vig", 8, entities.AspectVigilance),
		entities.AspectCommand:   makeCards("cmd", 8, entities.AspectCommand),
		entities.AspectVillainy:  makeCards("vil", 8, entities.AspectVillainy),
	}
	belt := generator.NewStripedBelt("commons-a", aspects, groups, dice.NewRandomRoller(7))

	// Any 3 consecutive draws cover all 3 assigned aspects, even across
	// the reshuffle boundary
	var window []*entities.Card
	for i := 0; i < belt.Size()*2; i++ {
		card := belt.Draw()
		require.NotNil(t, card)
		window = append(window, card)
		if len(window) > 3 {
			window = window[1:]
		}
		if len(window) == 3 && (i+1)%belt.Size() >= 3 {
			covered := make(map[entities.Aspect]bool)
			for _, c := range window {
				covered[c.Aspects[0]] = true
			}
			assert.Len(t, covered, 3, "draws %d..%d missed an aspect", i-2, i)
		}
	}
}

func TestStripedBeltIsPermutation(t *testing.T) {
	aspects := []entities.Aspect{entities.AspectCunning, entities.AspectHeroism}
	groups := map[entities.Aspect][]*entities.Card{
		entities.AspectCunning: makeCards("cun", 6, entities.AspectCunning),
		entities.AspectHeroism: makeCards("her", 6, entities.AspectHeroism),
	}
	belt := generator.NewStripedBelt("commons-b", aspects, groups, dice.NewRandomRoller(3))

	seen := make(map[string]bool)
	for i := 0; i < belt.Size(); i++ {
		card := belt.Draw()
		require.NotNil(t, card)
		assert.False(t, seen[card.ID])
		seen[card.ID] = true
	}
	assert.Len(t, seen, 12)
}
