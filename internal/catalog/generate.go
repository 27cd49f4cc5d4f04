package catalog

import (
	"fmt"

	"github.com/galaxydraft/draft-server/internal/entities"
)

// CatalogSpec controls how many cards a synthetic catalog holds per pool
type CatalogSpec struct {
	Leaders          int
	Bases            int
	CommonsPerAspect int
	Uncommons        int
	Rares            int
	Legendaries      int
	Specials         int
}

// DefaultCatalogSpec mirrors a typical set's print sheet proportions
func DefaultCatalogSpec() CatalogSpec {
	return CatalogSpec{
		Leaders:          18,
		Bases:            12,
		CommonsPerAspect: 10,
		Uncommons:        42,
		Rares:            30,
		Legendaries:      12,
		Specials:         8,
	}
}

var cardTypeCycle = []entities.CardType{
	entities.CardTypeUnit,
	entities.CardTypeUnit,
	entities.CardTypeEvent,
	entities.CardTypeUnit,
	entities.CardTypeUpgrade,
}

// GenerateCatalog builds a deterministic synthetic catalog for a set. The
// simulator has no licensed card data, so names are synthesized; what
// matters for generation and drafting is the rarity, aspect, and cost
// distribution.
func GenerateCatalog(cfg *entities.SetConfig, spec CatalogSpec) []*entities.Card {
	var cards []*entities.Card
	seq := 0

	next := func(name string, typ entities.CardType, rarity entities.Rarity, aspects []entities.Aspect, cost int) *entities.Card {
		seq++
		c := &entities.Card{
			ID:      fmt.Sprintf("%s-%03d", cfg.Code, seq),
			Name:    name,
			Type:    typ,
			Rarity:  rarity,
			Aspects: aspects,
			Cost:    cost,
		}
		cards = append(cards, c)
		return c
	}

	for i := 0; i < spec.Leaders; i++ {
		primary := entities.AllAspects[i%len(entities.AllAspects)]
		secondary := entities.AllAspects[(i+2)%len(entities.AllAspects)]
		next(fmt.Sprintf("%s Leader %d", cfg.Code, i+1),
			entities.CardTypeLeader, entities.RarityRare,
			[]entities.Aspect{primary, secondary}, 6)
	}

	for i := 0; i < spec.Bases; i++ {
		aspect := entities.AllAspects[i%len(entities.AllAspects)]
		next(fmt.Sprintf("%s Base %d", cfg.Code, i+1),
			entities.CardTypeBase, entities.RarityCommon,
			[]entities.Aspect{aspect}, 0)
	}

	commonAspects := append(append([]entities.Aspect{}, cfg.CommonBeltA...), cfg.CommonBeltB...)
	for _, aspect := range commonAspects {
		for i := 0; i < spec.CommonsPerAspect; i++ {
			next(fmt.Sprintf("%s %s Common %d", cfg.Code, aspect, i+1),
				cardTypeCycle[i%len(cardTypeCycle)], entities.RarityCommon,
				[]entities.Aspect{aspect}, 1+i%5)
		}
	}

	for i := 0; i < spec.Uncommons; i++ {
		aspect := entities.AllAspects[i%len(entities.AllAspects)]
		next(fmt.Sprintf("%s Uncommon %d", cfg.Code, i+1),
			cardTypeCycle[i%len(cardTypeCycle)], entities.RarityUncommon,
			[]entities.Aspect{aspect}, 2+i%5)
	}

	for i := 0; i < spec.Rares; i++ {
		aspect := entities.AllAspects[i%len(entities.AllAspects)]
		next(fmt.Sprintf("%s Rare %d", cfg.Code, i+1),
			cardTypeCycle[i%len(cardTypeCycle)], entities.RarityRare,
			[]entities.Aspect{aspect}, 3+i%5)
	}

	for i := 0; i < spec.Legendaries; i++ {
		aspect := entities.AllAspects[i%len(entities.AllAspects)]
		next(fmt.Sprintf("%s Legendary %d", cfg.Code, i+1),
			entities.CardTypeUnit, entities.RarityLegendary,
			[]entities.Aspect{aspect}, 5+i%4)
	}

	if cfg.HasSpecialRarity() {
		for i := 0; i < spec.Specials; i++ {
			aspect := entities.AllAspects[i%len(entities.AllAspects)]
			next(fmt.Sprintf("%s Special %d", cfg.Code, i+1),
				entities.CardTypeUnit, entities.RaritySpecial,
				[]entities.Aspect{aspect}, 4+i%4)
		}
	}

	return cards
}

// SeedBotTables fills the set's leader popularity and high-value bonus
// tables from a generated catalog so that the popular-leader behavior has
// data to rank with
func SeedBotTables(cfg *entities.SetConfig, cards []*entities.Card) {
	cfg.LeaderPopularity = make(map[string]int)
	cfg.HighValueCards = make(map[string]int)

	leaderRank := 0
	for _, c := range cards {
		switch {
		case c.Type == entities.CardTypeLeader:
			leaderRank++
			// Earlier catalog entries rank as more popular
			cfg.LeaderPopularity[c.ID] = 100 - leaderRank*3
		case c.Rarity == entities.RarityLegendary:
			cfg.HighValueCards[c.Name] = 4
		case c.Rarity == entities.RarityRare && c.Cost <= 4:
			cfg.HighValueCards[c.Name] = 2
		}
	}
}

// NewDemoProvider builds a fully populated static provider over the
// built-in sets with synthetic catalogs
func NewDemoProvider() Provider {
	sets := BuiltinSets()
	cards := make(map[string][]*entities.Card, len(sets))
	for code, cfg := range sets {
		catalog := GenerateCatalog(cfg, DefaultCatalogSpec())
		SeedBotTables(cfg, catalog)
		cards[code] = catalog
	}
	return NewStaticProvider(sets, cards)
}
