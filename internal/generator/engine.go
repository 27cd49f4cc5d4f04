package generator

import (
	"github.com/galaxydraft/draft-server/internal/catalog"
	"github.com/galaxydraft/draft-server/internal/dice"
	"github.com/galaxydraft/draft-server/internal/entities"
)

// Engine is one generation session: an assembler plus its upgrade pass
// over a private family of belts. A draft start creates one engine and
// produces every pack and leader pool up front.
type Engine struct {
	cfg       *entities.SetConfig
	assembler *Assembler
	upgrades  *UpgradePass
}

// NewEngine builds a generation session for a set
func NewEngine(cfg *entities.SetConfig, pools *catalog.Pools, roller dice.Roller) (*Engine, error) {
	assembler, err := NewAssembler(cfg, pools, roller)
	if err != nil {
		return nil, err
	}

	return &Engine{
		cfg:       cfg,
		assembler: assembler,
		upgrades: NewUpgradePass(cfg, roller,
			assembler.byRarity[entities.RarityRare],
			assembler.byRarity[entities.RarityLegendary]),
	}, nil
}

// GeneratePack assembles one pack and runs the upgrade pass over it
func (e *Engine) GeneratePack() (*entities.GeneratedPack, error) {
	pack, err := e.assembler.AssemblePack()
	if err != nil {
		return nil, err
	}
	e.upgrades.Apply(pack)
	return pack, nil
}

// GeneratePacks generates n packs
func (e *Engine) GeneratePacks(n int) ([]*entities.GeneratedPack, error) {
	out := make([]*entities.GeneratedPack, 0, n)
	for i := 0; i < n; i++ {
		pack, err := e.GeneratePack()
		if err != nil {
			return nil, err
		}
		out = append(out, pack)
	}
	return out, nil
}

// GenerateLeaderPool draws a pool of distinct leaders for one seat
func (e *Engine) GenerateLeaderPool(size int) ([]*entities.Card, error) {
	return e.assembler.DrawLeaders(size)
}
