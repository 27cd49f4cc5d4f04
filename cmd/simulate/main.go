// simulate opens a large sample of packs and prints observed
// rarity/treatment frequencies with their Z scores against the set's
// configured probabilities. This is the manual entry point to the same
// pull-rate validation the test suite runs.
package main

import (
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/galaxydraft/draft-server/internal/catalog"
	"github.com/galaxydraft/draft-server/internal/dice"
	"github.com/galaxydraft/draft-server/internal/entities"
	"github.com/galaxydraft/draft-server/internal/generator"
)

func main() {
	setCode := flag.String("set", "SPK", "set code to simulate")
	packs := flag.Int("packs", 100000, "number of packs to open")
	seed := flag.Int64("seed", time.Now().UnixNano(), "RNG seed")
	flag.Parse()

	provider := catalog.NewDemoProvider()
	cfg, err := provider.GetSet(*setCode)
	if err != nil {
		log.Fatalf("Unknown set %s: %v", *setCode, err)
	}
	pools, err := provider.Pools(*setCode)
	if err != nil {
		log.Fatalf("Failed to load pools: %v", err)
	}

	engine, err := generator.NewEngine(cfg, pools, dice.NewRandomRoller(*seed))
	if err != nil {
		log.Fatalf("Failed to build engine: %v", err)
	}

	counts := map[string]int{}
	for i := 0; i < *packs; i++ {
		pack, err := engine.GeneratePack()
		if err != nil {
			log.Fatalf("Pack %d failed: %v", i, err)
		}
		for _, e := range pack.Entries {
			if e.Slot == entities.SlotLeader && e.Treatment == entities.VariantShowcase {
				counts["leader_showcase"]++
			}
			if e.Slot == entities.SlotLeader && e.Treatment == entities.VariantHyperspace {
				counts["leader_hyperspace"]++
			}
			if e.Slot == entities.SlotBase && e.Treatment == entities.VariantHyperspace {
				counts["base_hyperspace"]++
			}
			if e.Slot == entities.SlotFoil && e.Treatment == entities.VariantHyperspaceFoil {
				counts["foil_hyperfoil"]++
			}
			if e.Slot == entities.SlotRare && e.Card.Rarity == entities.RarityLegendary {
				counts["rare_slot_legendary"]++
			}
		}
	}

	up := cfg.Upgrades
	legendaryP := 1.0 / float64(cfg.RaresPerLegendary+1)
	expected := map[string]float64{
		"leader_showcase":     up.LeaderShowcase,
		"leader_hyperspace":   (1 - up.LeaderShowcase) * up.LeaderHyperspace,
		"base_hyperspace":     up.BaseHyperspace,
		"foil_hyperfoil":      up.FoilHyperfoil,
		"rare_slot_legendary": legendaryP,
	}

	fmt.Printf("set=%s packs=%d seed=%d\n", *setCode, *packs, *seed)
	fmt.Printf("%-22s %10s %10s %8s\n", "check", "observed", "expected", "z")
	for name, p := range expected {
		observed := counts[name]
		z := generator.ZScore(observed, *packs, p)
		marker := ""
		if z > 1.96 || z < -1.96 {
			marker = "  <-- outside 95% band"
		}
		fmt.Printf("%-22s %10d %10.1f %8.2f%s\n", name, observed, float64(*packs)*p, z, marker)
	}
}
