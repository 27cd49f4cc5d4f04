package generator

import (
	"github.com/galaxydraft/draft-server/internal/dice"
	"github.com/galaxydraft/draft-server/internal/entities"
)

// UpgradePass applies the fixed-order sequence of independent treatment
// upgrade checks to an assembled pack. Each check draws its own uniform
// value; the constants come from the set's era configuration.
//
// The rare slot itself never upgrades; the only hyperspace rare or
// legendary a pack can contain comes from the third-uncommon upgrade.
type UpgradePass struct {
	cfg     *entities.SetConfig
	roller  dice.Roller
	sampler *Sampler

	rares       CardBelt
	legendaries CardBelt
}

// NewUpgradePass creates an upgrade pass sharing the assembler's rare and
// legendary belts for third-uncommon promotions
func NewUpgradePass(cfg *entities.SetConfig, roller dice.Roller, rares, legendaries CardBelt) *UpgradePass {
	return &UpgradePass{
		cfg:         cfg,
		roller:      roller,
		sampler:     NewSampler(roller),
		rares:       rares,
		legendaries: legendaries,
	}
}

func (u *UpgradePass) check(p float64) bool {
	return u.roller.Float64() < p
}

// Apply mutates the pack's treatments in place
func (u *UpgradePass) Apply(pack *entities.GeneratedPack) {
	probs := u.cfg.Upgrades

	seen := make(map[string]bool, len(pack.Entries))
	for _, e := range pack.Entries {
		seen[variantKey(e.Card.Name, e.Treatment)] = true
	}

	// promote flips an entry's treatment unless that would duplicate a
	// (name, treatment) pair already in the pack
	promote := func(e *entities.PackEntry, to entities.VariantType) bool {
		key := variantKey(e.Card.Name, to)
		if seen[key] {
			return false
		}
		delete(seen, variantKey(e.Card.Name, e.Treatment))
		e.Treatment = to
		seen[key] = true
		return true
	}

	var commons []*entities.PackEntry
	uncommonSeen := 0

	for _, e := range pack.Entries {
		switch e.Slot {
		case entities.SlotLeader:
			// Showcase is checked first and wins over hyperspace
			if u.check(probs.LeaderShowcase) {
				promote(e, entities.VariantShowcase)
			} else if u.check(probs.LeaderHyperspace) {
				promote(e, entities.VariantHyperspace)
			}

		case entities.SlotBase:
			if u.check(probs.BaseHyperspace) {
				promote(e, entities.VariantHyperspace)
			}

		case entities.SlotThirdUncommon:
			if u.check(probs.ThirdUncommon) {
				u.promoteThirdUncommon(e, seen)
			}

		case entities.SlotUncommon:
			// Independent check per guaranteed-uncommon slot
			uncommonSeen++
			if uncommonSeen <= 2 && u.check(probs.UncommonHyperspace) {
				promote(e, entities.VariantHyperspace)
			}

		case entities.SlotCommon:
			commons = append(commons, e)

		case entities.SlotFoil:
			if u.check(probs.FoilHyperfoil) {
				promote(e, entities.VariantHyperspaceFoil)
			}
		}
	}

	// One random common gets the hyperspace check
	if len(commons) > 0 && u.check(probs.CommonHyperspace) {
		promote(commons[u.roller.Intn(len(commons))], entities.VariantHyperspace)
	}
}

// promoteThirdUncommon resolves the internal sub-weights of the third
// uncommon upgrade. Staying uncommon flips the drawn card to hyperspace;
// rare and legendary results replace the card from the matching belt.
func (u *UpgradePass) promoteThirdUncommon(e *entities.PackEntry, seen map[string]bool) {
	rarity := u.sampler.Sample(u.cfg.Upgrades.ThirdUncommonWeights)

	var belt CardBelt
	switch rarity {
	case entities.RarityRare:
		belt = u.rares
	case entities.RarityLegendary:
		belt = u.legendaries
	}

	if belt == nil || belt.Empty() {
		// Stays an uncommon hyperspace print
		key := variantKey(e.Card.Name, entities.VariantHyperspace)
		if !seen[key] {
			delete(seen, variantKey(e.Card.Name, e.Treatment))
			e.Treatment = entities.VariantHyperspace
			seen[key] = true
		}
		return
	}

	replacement := drawUnique(belt, seen, entities.VariantHyperspace)
	if replacement == nil {
		return
	}
	delete(seen, variantKey(e.Card.Name, e.Treatment))
	e.Card = replacement
	e.Treatment = entities.VariantHyperspace
	seen[variantKey(replacement.Name, entities.VariantHyperspace)] = true
}
