package catalog

//go:generate mockgen -destination=mock/mock_provider.go -package=mockcatalog -source=provider.go

import (
	"github.com/galaxydraft/draft-server/internal/entities"
	apperr "github.com/galaxydraft/draft-server/internal/errors"
)

// Provider supplies read-only reference data: the card catalog and the
// per-set generation configuration. It is consulted once per draft start.
type Provider interface {
	// GetSet returns the generation configuration for a set code
	GetSet(code string) (*entities.SetConfig, error)

	// Cards returns the full catalog for a set code
	Cards(code string) ([]*entities.Card, error)

	// Pools returns the catalog pre-partitioned into the pools the
	// generation belts are built from
	Pools(code string) (*Pools, error)
}

// Pools partitions a set's catalog by generation slot
type Pools struct {
	Leaders     []*entities.Card
	Bases       []*entities.Card
	CommonsA    map[entities.Aspect][]*entities.Card
	CommonsB    map[entities.Aspect][]*entities.Card
	Uncommons   []*entities.Card
	Rares       []*entities.Card
	Legendaries []*entities.Card
	Specials    []*entities.Card
}

// ByRarity returns the non-leader, non-base pool for a rarity. Commons are
// returned flattened across both belts.
func (p *Pools) ByRarity(r entities.Rarity) []*entities.Card {
	switch r {
	case entities.RarityCommon:
		var out []*entities.Card
		for _, cards := range p.CommonsA {
			out = append(out, cards...)
		}
		for _, cards := range p.CommonsB {
			out = append(out, cards...)
		}
		return out
	case entities.RarityUncommon:
		return p.Uncommons
	case entities.RarityRare:
		return p.Rares
	case entities.RarityLegendary:
		return p.Legendaries
	case entities.RaritySpecial:
		return p.Specials
	default:
		return nil
	}
}

// staticProvider serves catalogs and set configs held in memory
type staticProvider struct {
	sets  map[string]*entities.SetConfig
	cards map[string][]*entities.Card
}

// NewStaticProvider creates a Provider over in-memory reference data
func NewStaticProvider(sets map[string]*entities.SetConfig, cards map[string][]*entities.Card) Provider {
	return &staticProvider{
		sets:  sets,
		cards: cards,
	}
}

func (p *staticProvider) GetSet(code string) (*entities.SetConfig, error) {
	cfg, ok := p.sets[code]
	if !ok {
		return nil, apperr.NotFoundf("unknown set '%s'", code)
	}
	return cfg, nil
}

func (p *staticProvider) Cards(code string) ([]*entities.Card, error) {
	cards, ok := p.cards[code]
	if !ok {
		return nil, apperr.NotFoundf("no catalog for set '%s'", code)
	}
	return cards, nil
}

func (p *staticProvider) Pools(code string) (*Pools, error) {
	cfg, err := p.GetSet(code)
	if err != nil {
		return nil, err
	}
	cards, err := p.Cards(code)
	if err != nil {
		return nil, err
	}
	return partition(cfg, cards), nil
}

// partition splits a catalog into generation pools. Commons land in the
// belt whose aspect assignment matches their first aspect.
func partition(cfg *entities.SetConfig, cards []*entities.Card) *Pools {
	pools := &Pools{
		CommonsA: make(map[entities.Aspect][]*entities.Card),
		CommonsB: make(map[entities.Aspect][]*entities.Card),
	}

	beltA := make(map[entities.Aspect]bool, len(cfg.CommonBeltA))
	for _, a := range cfg.CommonBeltA {
		beltA[a] = true
	}

	for _, c := range cards {
		switch {
		case c.Type == entities.CardTypeLeader:
			pools.Leaders = append(pools.Leaders, c)
		case c.Type == entities.CardTypeBase:
			pools.Bases = append(pools.Bases, c)
		case c.Rarity == entities.RarityCommon:
			aspect := entities.AspectHeroism
			if len(c.Aspects) > 0 {
				aspect = c.Aspects[0]
			}
			if beltA[aspect] {
				pools.CommonsA[aspect] = append(pools.CommonsA[aspect], c)
			} else {
				pools.CommonsB[aspect] = append(pools.CommonsB[aspect], c)
			}
		case c.Rarity == entities.RarityUncommon:
			pools.Uncommons = append(pools.Uncommons, c)
		case c.Rarity == entities.RarityRare:
			pools.Rares = append(pools.Rares, c)
		case c.Rarity == entities.RarityLegendary:
			pools.Legendaries = append(pools.Legendaries, c)
		case c.Rarity == entities.RaritySpecial:
			pools.Specials = append(pools.Specials, c)
		}
	}

	return pools
}
