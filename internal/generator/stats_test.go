package generator_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/galaxydraft/draft-server/internal/catalog"
	"github.com/galaxydraft/draft-server/internal/dice"
	"github.com/galaxydraft/draft-server/internal/entities"
	"github.com/galaxydraft/draft-server/internal/generator"
)

func TestZScore(t *testing.T) {
	assert.InDelta(t, 0.0, generator.ZScore(500, 1000, 0.5), 1e-9)
	assert.True(t, generator.ZScore(600, 1000, 0.5) > 1.96)
	assert.True(t, generator.ZScore(400, 1000, 0.5) < -1.96)
	assert.Equal(t, 0.0, generator.ZScore(10, 0, 0.5))
}

// TestPullRatesWithinBand opens a large run of packs and checks the
// observed upgrade and rare-slot frequencies against the configured
// probabilities. The seed is fixed, so the counts are reproducible; each
// frequency must land inside a wide acceptance band and most inside the
// 95% band.
func TestPullRatesWithinBand(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping statistical validation in short mode")
	}

	const trials = 100_000

	cfg := catalog.EarlySetConfig("TST", "Test Set")
	engine, err := generator.NewEngine(cfg, testPools(t, cfg), dice.NewRandomRoller(42))
	require.NoError(t, err)

	var showcase, leaderHyper, baseHyper, hyperfoil, legendarySlot int
	for i := 0; i < trials; i++ {
		pack, err := engine.GeneratePack()
		require.NoError(t, err)

		for _, e := range pack.Entries {
			switch e.Slot {
			case entities.SlotLeader:
				switch e.Treatment {
				case entities.VariantShowcase:
					showcase++
				case entities.VariantHyperspace:
					leaderHyper++
				}
			case entities.SlotBase:
				if e.Treatment == entities.VariantHyperspace {
					baseHyper++
				}
			case entities.SlotRare:
				if e.Card.Rarity == entities.RarityLegendary {
					legendarySlot++
				}
			case entities.SlotFoil:
				if e.Treatment == entities.VariantHyperspaceFoil {
					hyperfoil++
				}
			}
		}
	}

	up := cfg.Upgrades
	checks := []struct {
		name     string
		observed int
		p        float64
	}{
		{"leader showcase", showcase, up.LeaderShowcase},
		{"leader hyperspace", leaderHyper, (1 - up.LeaderShowcase) * up.LeaderHyperspace},
		{"base hyperspace", baseHyper, up.BaseHyperspace},
		{"foil hyperfoil", hyperfoil, up.FoilHyperfoil},
		{"legendary in rare slot", legendarySlot, 1.0 / float64(cfg.RaresPerLegendary+1)},
	}

	inNarrowBand := 0
	for _, c := range checks {
		z := generator.ZScore(c.observed, trials, c.p)
		assert.True(t, generator.WithinBand(c.observed, trials, c.p, 3.29),
			"%s: observed %d of %d (p=%.4f) z=%.2f", c.name, c.observed, trials, c.p, z)
		if generator.WithinBand(c.observed, trials, c.p, 1.96) {
			inNarrowBand++
		}
	}
	assert.GreaterOrEqual(t, inNarrowBand, len(checks)-1,
		"more than one frequency outside the 95%% band")
}
