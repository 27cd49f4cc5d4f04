package draft

import (
	"github.com/galaxydraft/draft-server/internal/dice"
	"github.com/galaxydraft/draft-server/internal/entities"
)

// Behavior keys registered out of the box
const (
	BehaviorRandom        = "random"
	BehaviorPopularLeader = "popular-leader"
)

// BehaviorContext carries what a bot strategy may look at when picking
type BehaviorContext struct {
	Set    *entities.SetConfig
	Player *entities.DraftPodPlayer
	Roller dice.Roller
}

// Behavior is a pluggable bot strategy. Implementations must be stateless;
// one instance serves every bot seat using that strategy.
type Behavior interface {
	// SelectLeader picks from the seat's current leader pool; nil means
	// the pool is empty
	SelectLeader(pool []*entities.Card, bctx *BehaviorContext) *entities.Card

	// SelectCard picks from the seat's current pack; nil means the pack
	// is empty
	SelectCard(pack []*entities.PackEntry, bctx *BehaviorContext) *entities.PackEntry
}

var behaviorRegistry = map[string]func() Behavior{
	BehaviorRandom:        func() Behavior { return &randomBehavior{} },
	BehaviorPopularLeader: func() Behavior { return &popularLeaderBehavior{} },
}

// NewBehavior returns the registered strategy for the key, falling back to
// random for unknown keys
func NewBehavior(key string) Behavior {
	if factory, ok := behaviorRegistry[key]; ok {
		return factory()
	}
	return &randomBehavior{}
}

func rarityScore(r entities.Rarity) int {
	switch r {
	case entities.RarityCommon:
		return 1
	case entities.RarityUncommon:
		return 2
	case entities.RarityRare:
		return 3
	case entities.RarityLegendary, entities.RaritySpecial:
		return 4
	default:
		return 0
	}
}

// randomBehavior ranks purely by rarity, breaking ties uniformly
type randomBehavior struct{}

func (b *randomBehavior) SelectLeader(pool []*entities.Card, bctx *BehaviorContext) *entities.Card {
	if len(pool) == 0 {
		return nil
	}
	return pool[bctx.Roller.Intn(len(pool))]
}

func (b *randomBehavior) SelectCard(pack []*entities.PackEntry, bctx *BehaviorContext) *entities.PackEntry {
	if len(pack) == 0 {
		return nil
	}

	best := []*entities.PackEntry{pack[0]}
	bestScore := rarityScore(pack[0].Card.Rarity)
	for _, e := range pack[1:] {
		score := rarityScore(e.Card.Rarity)
		if score > bestScore {
			best = []*entities.PackEntry{e}
			bestScore = score
		} else if score == bestScore {
			best = append(best, e)
		}
	}
	return best[bctx.Roller.Intn(len(best))]
}

// popularLeaderBehavior drafts leaders by the set's static popularity
// table and scores cards by rarity, aspect fit against its drafted
// leaders plus one random secondary aspect, unit preference, curve fit,
// and the community high-value bonus table.
type popularLeaderBehavior struct{}

func (b *popularLeaderBehavior) SelectLeader(pool []*entities.Card, bctx *BehaviorContext) *entities.Card {
	if len(pool) == 0 {
		return nil
	}

	best := pool[0]
	bestScore := -1
	for _, l := range pool {
		score := 0
		if bctx.Set != nil {
			score = bctx.Set.LeaderPopularity[l.ID]
		}
		if score > bestScore {
			best = l
			bestScore = score
		}
	}
	return best
}

func (b *popularLeaderBehavior) SelectCard(pack []*entities.PackEntry, bctx *BehaviorContext) *entities.PackEntry {
	if len(pack) == 0 {
		return nil
	}

	inColor := b.draftColors(bctx)

	var best *entities.PackEntry
	bestScore := -1
	for _, e := range pack {
		score := b.scoreCard(e, inColor, bctx)
		if score > bestScore {
			best = e
			bestScore = score
		}
	}
	return best
}

// draftColors returns the aspects of every drafted leader plus one
// randomly chosen secondary aspect
func (b *popularLeaderBehavior) draftColors(bctx *BehaviorContext) map[entities.Aspect]bool {
	colors := make(map[entities.Aspect]bool)
	for _, l := range bctx.Player.DraftedLeaders {
		for _, a := range l.Aspects {
			colors[a] = true
		}
	}
	colors[entities.AllAspects[bctx.Roller.Intn(len(entities.AllAspects))]] = true
	return colors
}

func (b *popularLeaderBehavior) scoreCard(e *entities.PackEntry, inColor map[entities.Aspect]bool, bctx *BehaviorContext) int {
	score := rarityScore(e.Card.Rarity) * 10

	for _, a := range e.Card.Aspects {
		if inColor[a] {
			score += 8
		}
	}

	switch e.Card.Type {
	case entities.CardTypeUnit:
		score += 5
	case entities.CardTypeEvent:
		score += 3
	case entities.CardTypeUpgrade:
		score += 2
	}

	// Curve fit: favor costs the drafted pile is still short on
	if e.Card.Cost >= 1 && e.Card.Cost <= 5 {
		atCost := 0
		for _, d := range bctx.Player.DraftedCards {
			if d.Card.Cost == e.Card.Cost {
				atCost++
			}
		}
		if atCost < 4 {
			score += 4 - atCost
		}
	}

	if bctx.Set != nil {
		score += bctx.Set.HighValueCards[e.Card.Name] * 3
	}

	return score
}
