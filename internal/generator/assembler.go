package generator

import (
	"fmt"

	"github.com/galaxydraft/draft-server/internal/catalog"
	"github.com/galaxydraft/draft-server/internal/dice"
	"github.com/galaxydraft/draft-server/internal/entities"
	apperr "github.com/galaxydraft/draft-server/internal/errors"
)

// Assembler composes 16-card packs from the set's belts. Slot layout:
//
//	0      leader
//	1      base
//	2-10   9 commons alternating belt A / belt B
//	11-12  2 uncommons
//	13     third uncommon (upgrade-eligible)
//	14     rare or legendary by the set's ratio
//	15     foil with its own rarity table
type Assembler struct {
	cfg     *entities.SetConfig
	roller  dice.Roller
	sampler *Sampler

	leaders  CardBelt
	bases    CardBelt
	commonsA CardBelt
	commonsB CardBelt

	// byRarity serves the foil slot and third-uncommon upgrades; the
	// common entry is a plain belt over both aspect belts' pools
	byRarity map[entities.Rarity]CardBelt
}

// NewAssembler builds an assembler and its belts from a set's card pools.
// The belts are owned by this assembler for its whole generation session.
func NewAssembler(cfg *entities.SetConfig, pools *catalog.Pools, roller dice.Roller) (*Assembler, error) {
	if cfg == nil {
		return nil, apperr.InvalidArgument("set config is required")
	}
	if len(pools.Leaders) == 0 || len(pools.Bases) == 0 {
		return nil, apperr.Validationf("set '%s' catalog has no leaders or bases", cfg.Code)
	}
	if len(pools.Uncommons) == 0 || len(pools.Rares) == 0 || len(pools.Legendaries) == 0 {
		return nil, apperr.Validationf("set '%s' catalog is missing a rarity pool", cfg.Code)
	}

	a := &Assembler{
		cfg:      cfg,
		roller:   roller,
		sampler:  NewSampler(roller),
		leaders:  NewBelt("leaders", pools.Leaders, roller),
		bases:    NewBelt("bases", pools.Bases, roller),
		commonsA: NewStripedBelt("commons-a", cfg.CommonBeltA, pools.CommonsA, roller),
		commonsB: NewStripedBelt("commons-b", cfg.CommonBeltB, pools.CommonsB, roller),
	}

	a.byRarity = map[entities.Rarity]CardBelt{
		entities.RarityCommon:    NewBelt("foil-commons", pools.ByRarity(entities.RarityCommon), roller),
		entities.RarityUncommon:  NewBelt("uncommons", pools.Uncommons, roller),
		entities.RarityRare:      NewBelt("rares", pools.Rares, roller),
		entities.RarityLegendary: NewBelt("legendaries", pools.Legendaries, roller),
	}
	if cfg.HasSpecialRarity() {
		if len(pools.Specials) == 0 {
			return nil, apperr.Validationf("set '%s' declares special rarity but has no specials", cfg.Code)
		}
		a.byRarity[entities.RaritySpecial] = NewBelt("specials", pools.Specials, roller)
	}

	return a, nil
}

// AssemblePack draws one 16-card pack. Treatments are Normal (Foil for the
// foil slot); the upgrade pass mutates them afterwards.
func (a *Assembler) AssemblePack() (*entities.GeneratedPack, error) {
	pack := &entities.GeneratedPack{
		Entries: make([]*entities.PackEntry, 0, entities.PackSize),
	}
	seen := make(map[string]bool, entities.PackSize)

	add := func(belt CardBelt, slot entities.PackSlot, treatment entities.VariantType) error {
		card := drawUnique(belt, seen, treatment)
		if card == nil {
			return apperr.Internalf("belt exhausted assembling slot %s", slot)
		}
		seen[variantKey(card.Name, treatment)] = true
		pack.Entries = append(pack.Entries, &entities.PackEntry{
			Card:      card,
			Slot:      slot,
			Treatment: treatment,
		})
		return nil
	}

	if err := add(a.leaders, entities.SlotLeader, entities.VariantNormal); err != nil {
		return nil, err
	}
	if err := add(a.bases, entities.SlotBase, entities.VariantNormal); err != nil {
		return nil, err
	}

	// Commons alternate belts by position parity: A,B,A,B,A,B,A,B,A
	for i := 0; i < entities.CommonsPerPack; i++ {
		belt := a.commonsA
		if i%2 == 1 {
			belt = a.commonsB
		}
		if err := add(belt, entities.SlotCommon, entities.VariantNormal); err != nil {
			return nil, err
		}
	}

	uncommons := a.byRarity[entities.RarityUncommon]
	if err := add(uncommons, entities.SlotUncommon, entities.VariantNormal); err != nil {
		return nil, err
	}
	if err := add(uncommons, entities.SlotUncommon, entities.VariantNormal); err != nil {
		return nil, err
	}
	if err := add(uncommons, entities.SlotThirdUncommon, entities.VariantNormal); err != nil {
		return nil, err
	}

	// Rare slot: ratio N rares to 1 legendary
	rareBelt := a.byRarity[entities.RarityRare]
	if a.roller.Intn(a.cfg.RaresPerLegendary+1) == a.cfg.RaresPerLegendary {
		rareBelt = a.byRarity[entities.RarityLegendary]
	}
	if rareBelt.Empty() {
		// Momentary exhaustion falls back to the counterpart belt
		if rareBelt == a.byRarity[entities.RarityRare] {
			rareBelt = a.byRarity[entities.RarityLegendary]
		} else {
			rareBelt = a.byRarity[entities.RarityRare]
		}
	}
	if err := add(rareBelt, entities.SlotRare, entities.VariantNormal); err != nil {
		return nil, err
	}

	// Foil slot draws its rarity independently
	foilRarity, err := a.sampler.SampleAvailable(a.cfg.FoilWeights, a.byRarity)
	if err != nil {
		return nil, apperr.Wrap(err, "foil slot")
	}
	if err := add(a.byRarity[foilRarity], entities.SlotFoil, entities.VariantFoil); err != nil {
		return nil, err
	}

	return pack, nil
}

// DrawLeaders draws n distinct leaders from the leader belt
func (a *Assembler) DrawLeaders(n int) ([]*entities.Card, error) {
	if n > a.leaders.Size() {
		return nil, apperr.Validationf("leader pool of %d requested but set has %d leaders", n, a.leaders.Size())
	}
	seen := make(map[string]bool, n)
	out := make([]*entities.Card, 0, n)
	for len(out) < n {
		card := drawUnique(a.leaders, seen, entities.VariantNormal)
		if card == nil {
			return nil, apperr.Internal("leader belt exhausted")
		}
		seen[variantKey(card.Name, entities.VariantNormal)] = true
		out = append(out, card)
	}
	return out, nil
}

// drawUnique draws from the belt until it finds a card whose (name,
// treatment) pair is not already in the pack, giving up after one full
// pass. Cross-treatment duplicates of the same card remain legal.
func drawUnique(belt CardBelt, seen map[string]bool, treatment entities.VariantType) *entities.Card {
	if belt == nil || belt.Empty() {
		return nil
	}
	for i := 0; i <= belt.Size(); i++ {
		card := belt.Draw()
		if card == nil {
			return nil
		}
		if !seen[variantKey(card.Name, treatment)] {
			return card
		}
	}
	return nil
}

func variantKey(name string, treatment entities.VariantType) string {
	return fmt.Sprintf("%s|%s", name, treatment)
}
