package domain

// CacheView is the read model of one live cache.
type CacheView struct {
	Key    string     `json:"key"`
	Cell   GridCell   `json:"cell"`
	Center Coordinate `json:"center"`
	Bounds Bounds     `json:"bounds"`
	Coins  []Coin     `json:"coins"`
}

// SessionView is the read model handed to renderers.
type SessionView struct {
	ID            string      `json:"id"`
	Player        Coordinate  `json:"player"`
	PlayerCell    GridCell    `json:"player_cell"`
	Inventory     []Coin      `json:"inventory"`
	Caches        []CacheView `json:"caches"`
	SavedCaches   int         `json:"saved_caches"`
	TrailLength   int         `json:"trail_length"`
	TrailDistance float64     `json:"trail_distance_m"`
	CoinsMinted   int         `json:"coins_minted"`
}
