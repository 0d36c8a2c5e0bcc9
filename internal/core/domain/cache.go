package domain

import "fmt"

// Cache is a live coin container anchored to a grid cell.
type Cache struct {
	cell  GridCell
	coins []Coin
}

// NewCache mints n coins with serials 0..n-1 originating in cell.
func NewCache(cell GridCell, n int) *Cache {
	if n < 0 {
		n = 0
	}
	coins := make([]Coin, n)
	for i := range coins {
		coins[i] = Coin{Row: cell.Row, Col: cell.Col, Serial: i}
	}
	return &Cache{cell: cell, coins: coins}
}

// Cell returns the cell the cache is anchored to.
func (c *Cache) Cell() GridCell { return c.cell }

// Len returns the number of coins currently held.
func (c *Cache) Len() int { return len(c.coins) }

// Coins returns a copy of the held coins in order.
func (c *Cache) Coins() []Coin {
	out := make([]Coin, len(c.coins))
	copy(out, c.coins)
	return out
}

// TakeCoin removes and returns the coin with the given serial.
// Deposited coins from other cells may share a serial with a native coin;
// the native coin is preferred, then the earliest match.
func (c *Cache) TakeCoin(serial int) (Coin, error) {
	idx := -1
	for i, coin := range c.coins {
		if coin.Serial != serial {
			continue
		}
		if coin.Origin() == c.cell {
			idx = i
			break
		}
		if idx < 0 {
			idx = i
		}
	}
	if idx < 0 {
		return Coin{}, fmt.Errorf("cache %s serial %d: %w", c.cell, serial, ErrCoinNotFound)
	}
	return c.removeAt(idx), nil
}

// TakeOriginCoin removes the coin that matches origin and serial exactly.
func (c *Cache) TakeOriginCoin(origin GridCell, serial int) (Coin, error) {
	for i, coin := range c.coins {
		if coin.Serial == serial && coin.Origin() == origin {
			return c.removeAt(i), nil
		}
	}
	return Coin{}, fmt.Errorf("cache %s coin %s#%d: %w", c.cell, origin, serial, ErrCoinNotFound)
}

// DepositCoin appends coin to the cache.
func (c *Cache) DepositCoin(coin Coin) {
	c.coins = append(c.coins, coin)
}

func (c *Cache) removeAt(i int) Coin {
	coin := c.coins[i]
	c.coins = append(c.coins[:i], c.coins[i+1:]...)
	return coin
}
