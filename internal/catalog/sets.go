package catalog

import (
	"github.com/galaxydraft/draft-server/internal/entities"
)

// Built-in set configurations for the two generation eras. Probability
// constants come from the published pull-rate documentation each era was
// validated against.

// EarlySetConfig returns the generation configuration used by early sets:
// 6:1 rare to legendary, four-rarity foil table, no special rarity.
func EarlySetConfig(code, name string) *entities.SetConfig {
	return &entities.SetConfig{
		Code:              code,
		Name:              name,
		Era:               entities.EraEarly,
		RaresPerLegendary: 6,
		FoilWeights: []entities.RarityWeight{
			{Rarity: entities.RarityCommon, Weight: 70},
			{Rarity: entities.RarityUncommon, Weight: 20},
			{Rarity: entities.RarityRare, Weight: 8},
			{Rarity: entities.RarityLegendary, Weight: 2},
		},
		CommonBeltA: []entities.Aspect{
			entities.AspectVigilance,
			entities.AspectCommand,
			entities.AspectVillainy,
		},
		CommonBeltB: []entities.Aspect{
			entities.AspectAggression,
			entities.AspectCunning,
			entities.AspectHeroism,
		},
		Upgrades: entities.UpgradeConfig{
			LeaderShowcase:   0.0035,
			LeaderHyperspace: 0.1,
			BaseHyperspace:   0.1,
			ThirdUncommon:    0.42,
			ThirdUncommonWeights: []entities.RarityWeight{
				{Rarity: entities.RarityUncommon, Weight: 64},
				{Rarity: entities.RarityRare, Weight: 31},
				{Rarity: entities.RarityLegendary, Weight: 5},
			},
			UncommonHyperspace: 0.1,
			CommonHyperspace:   0.15,
			FoilHyperfoil:      0.08,
		},
	}
}

// LaterSetConfig returns the generation configuration used by later sets:
// 5:1 rare to legendary and a five-rarity foil table with specials.
func LaterSetConfig(code, name string) *entities.SetConfig {
	return &entities.SetConfig{
		Code:              code,
		Name:              name,
		Era:               entities.EraLater,
		RaresPerLegendary: 5,
		FoilWeights: []entities.RarityWeight{
			{Rarity: entities.RarityCommon, Weight: 65},
			{Rarity: entities.RarityUncommon, Weight: 20},
			{Rarity: entities.RarityRare, Weight: 8},
			{Rarity: entities.RarityLegendary, Weight: 4},
			{Rarity: entities.RaritySpecial, Weight: 3},
		},
		CommonBeltA: []entities.Aspect{
			entities.AspectVigilance,
			entities.AspectCommand,
			entities.AspectVillainy,
		},
		CommonBeltB: []entities.Aspect{
			entities.AspectAggression,
			entities.AspectCunning,
			entities.AspectHeroism,
		},
		Upgrades: entities.UpgradeConfig{
			LeaderShowcase:   0.004,
			LeaderHyperspace: 0.0833,
			BaseHyperspace:   0.0833,
			ThirdUncommon:    0.375,
			ThirdUncommonWeights: []entities.RarityWeight{
				{Rarity: entities.RarityUncommon, Weight: 64},
				{Rarity: entities.RarityRare, Weight: 31},
				{Rarity: entities.RarityLegendary, Weight: 5},
			},
			UncommonHyperspace: 0.125,
			CommonHyperspace:   0.125,
			FoilHyperfoil:      0.1,
		},
	}
}

// BuiltinSets returns the set configurations the server ships with
func BuiltinSets() map[string]*entities.SetConfig {
	return map[string]*entities.SetConfig{
		"SPK": EarlySetConfig("SPK", "Spark of Conflict"),
		"SHD": EarlySetConfig("SHD", "Shadows Rising"),
		"TWL": LaterSetConfig("TWL", "Twilight Accord"),
	}
}
