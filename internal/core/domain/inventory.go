package domain

// Inventory is the ordered stack of coins the player holds.
type Inventory struct {
	coins []Coin
}

// Take appends coin to the inventory.
func (inv *Inventory) Take(coin Coin) {
	inv.coins = append(inv.coins, coin)
}

// DepositMostRecent pops the most recently taken coin. It reports false
// and changes nothing when the inventory is empty.
func (inv *Inventory) DepositMostRecent() (Coin, bool) {
	if len(inv.coins) == 0 {
		return Coin{}, false
	}
	last := len(inv.coins) - 1
	coin := inv.coins[last]
	inv.coins = inv.coins[:last]
	return coin, true
}

// Peek returns the coin DepositMostRecent would return.
func (inv *Inventory) Peek() (Coin, bool) {
	if len(inv.coins) == 0 {
		return Coin{}, false
	}
	return inv.coins[len(inv.coins)-1], true
}

// Len returns the number of held coins.
func (inv *Inventory) Len() int { return len(inv.coins) }

// Coins returns a copy of the held coins, oldest first.
func (inv *Inventory) Coins() []Coin {
	out := make([]Coin, len(inv.coins))
	copy(out, inv.coins)
	return out
}

// Clear drops every held coin.
func (inv *Inventory) Clear() { inv.coins = nil }
