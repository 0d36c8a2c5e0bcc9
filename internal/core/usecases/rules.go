package usecases

import (
	"github.com/samirrijal/geocoin/internal/core/domain"
	"github.com/samirrijal/geocoin/internal/pkg/config"
)

// RulesFromConfig builds the board rules from the game section.
func RulesFromConfig(g config.GameConfig) domain.Rules {
	return domain.Rules{
		CellSize:         g.CellSize,
		Radius:           g.Radius,
		CacheProbability: g.CacheProbability,
		InitialCoinsMin:  g.InitialCoinsMin,
		InitialCoinsMax:  g.InitialCoinsMax,
		Start:            domain.Coordinate{Lat: g.StartLat, Lng: g.StartLng},
		TrailLimit:       g.TrailLimit,
	}
}
