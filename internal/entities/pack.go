package entities

// PackSlot tags where in the 16-card layout an entry was generated.
// The upgrade pass dispatches on these tags, so slot provenance must
// survive assembly.
type PackSlot string

const (
	SlotLeader        PackSlot = "leader"
	SlotBase          PackSlot = "base"
	SlotCommon        PackSlot = "common"
	SlotUncommon      PackSlot = "uncommon"
	SlotThirdUncommon PackSlot = "third_uncommon"
	SlotRare          PackSlot = "rare"
	SlotFoil          PackSlot = "foil"
)

// PackEntry is one generated card with its slot provenance and treatment
type PackEntry struct {
	Card      *Card       `json:"card"`
	Slot      PackSlot    `json:"slot"`
	Treatment VariantType `json:"treatment"`
}

// GeneratedPack is one simulated 16-card booster
type GeneratedPack struct {
	Entries []*PackEntry `json:"entries"`
}

// DraftableEntries returns the entries a seat picks from during pack draft:
// everything except the leader and base slots, which go straight to the
// seat's drafted pile when the pack is distributed.
func (p *GeneratedPack) DraftableEntries() []*PackEntry {
	out := make([]*PackEntry, 0, len(p.Entries))
	for _, e := range p.Entries {
		if e.Slot == SlotLeader || e.Slot == SlotBase {
			continue
		}
		out = append(out, e)
	}
	return out
}

// FixedEntries returns the leader and base entries of the pack
func (p *GeneratedPack) FixedEntries() []*PackEntry {
	out := make([]*PackEntry, 0, 2)
	for _, e := range p.Entries {
		if e.Slot == SlotLeader || e.Slot == SlotBase {
			out = append(out, e)
		}
	}
	return out
}
