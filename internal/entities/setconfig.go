package entities

// SetEra partitions sets into the two observed generation regimes, each
// with its own probability constants
type SetEra string

const (
	EraEarly SetEra = "early"
	EraLater SetEra = "later"
)

// RarityWeight is one row of a weighted rarity table. Tables are kept in
// descending weight order so that exhaustion fallback can walk them
// deterministically.
type RarityWeight struct {
	Rarity Rarity `json:"rarity"`
	Weight int    `json:"weight"`
}

// UpgradeConfig holds the per-era Bernoulli probabilities applied by the
// upgrade pass, in check order.
type UpgradeConfig struct {
	// LeaderShowcase is checked first and takes priority over LeaderHyperspace
	LeaderShowcase   float64 `json:"leader_showcase"`
	LeaderHyperspace float64 `json:"leader_hyperspace"`
	BaseHyperspace   float64 `json:"base_hyperspace"`

	// ThirdUncommon upgrades the third uncommon slot to a hyperspace print;
	// ThirdUncommonWeights then decides whether it stays uncommon or becomes
	// a rare/legendary hyperspace (the only path to a hyperspace rare)
	ThirdUncommon        float64        `json:"third_uncommon"`
	ThirdUncommonWeights []RarityWeight `json:"third_uncommon_weights"`

	// UncommonHyperspace is checked independently for each of the first two
	// uncommon slots
	UncommonHyperspace float64 `json:"uncommon_hyperspace"`

	// CommonHyperspace upgrades one randomly chosen common
	CommonHyperspace float64 `json:"common_hyperspace"`

	// FoilHyperfoil upgrades the foil slot to a hyperspace foil
	FoilHyperfoil float64 `json:"foil_hyperfoil"`
}

// SetConfig is the per-set generation configuration supplied by the
// reference data provider at session start
type SetConfig struct {
	Code string `json:"code"`
	Name string `json:"name"`
	Era  SetEra `json:"era"`

	// RaresPerLegendary is the rare:legendary ratio of the rare slot
	// (6 for early sets, 5 for later sets)
	RaresPerLegendary int `json:"rares_per_legendary"`

	// FoilWeights is the independent rarity table for the foil slot,
	// descending weight order
	FoilWeights []RarityWeight `json:"foil_weights"`

	// CommonBeltA and CommonBeltB split the six aspects across the two
	// common belts; their union must cover all six
	CommonBeltA []Aspect `json:"common_belt_a"`
	CommonBeltB []Aspect `json:"common_belt_b"`

	Upgrades UpgradeConfig `json:"upgrades"`

	// LeaderPopularity ranks leaders for the popular-leader bot behavior,
	// higher is more popular
	LeaderPopularity map[string]int `json:"leader_popularity,omitempty"`

	// HighValueCards is a community bonus table keyed by card name
	HighValueCards map[string]int `json:"high_value_cards,omitempty"`
}

// HasSpecialRarity reports whether the set's foil table includes the
// special rarity introduced by later sets
func (c *SetConfig) HasSpecialRarity() bool {
	for _, w := range c.FoilWeights {
		if w.Rarity == RaritySpecial {
			return true
		}
	}
	return false
}
