package entities

// CardType classifies a card's role in the game
type CardType string

const (
	CardTypeLeader  CardType = "leader"
	CardTypeBase    CardType = "base"
	CardTypeUnit    CardType = "unit"
	CardTypeEvent   CardType = "event"
	CardTypeUpgrade CardType = "upgrade"
)

// Rarity is a card's print rarity
type Rarity string

const (
	RarityCommon    Rarity = "common"
	RarityUncommon  Rarity = "uncommon"
	RarityRare      Rarity = "rare"
	RarityLegendary Rarity = "legendary"
	RaritySpecial   Rarity = "special"
)

// Aspect is one of the six color tags a card can carry (at most two)
type Aspect string

const (
	AspectVigilance  Aspect = "vigilance"
	AspectCommand    Aspect = "command"
	AspectAggression Aspect = "aggression"
	AspectCunning    Aspect = "cunning"
	AspectVillainy   Aspect = "villainy"
	AspectHeroism    Aspect = "heroism"
)

// AllAspects lists the six aspects in canonical order
var AllAspects = []Aspect{
	AspectVigilance,
	AspectCommand,
	AspectAggression,
	AspectCunning,
	AspectVillainy,
	AspectHeroism,
}

// VariantType is a card's print treatment
type VariantType string

const (
	VariantNormal         VariantType = "normal"
	VariantHyperspace     VariantType = "hyperspace"
	VariantFoil           VariantType = "foil"
	VariantHyperspaceFoil VariantType = "hyperspace_foil"
	VariantShowcase       VariantType = "showcase"
)

// Card is immutable reference data, loaded once per set and shared read-only
// across every generation session
type Card struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Subtitle string   `json:"subtitle,omitempty"`
	Type     CardType `json:"type"`
	Rarity   Rarity   `json:"rarity"`
	Aspects  []Aspect `json:"aspects,omitempty"`
	Cost     int      `json:"cost"`
}

// HasAspect reports whether the card carries the given aspect
func (c *Card) HasAspect(a Aspect) bool {
	for _, ca := range c.Aspects {
		if ca == a {
			return true
		}
	}
	return false
}
