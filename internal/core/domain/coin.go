package domain

import "fmt"

// Coin is a collectible tagged with the cell it was minted in. Serial is
// unique only among coins minted in the same origin cell.
type Coin struct {
	Row    int `json:"row"`
	Col    int `json:"col"`
	Serial int `json:"serial"`
}

// Origin returns the cell the coin was minted in.
func (c Coin) Origin() GridCell { return GridCell{Row: c.Row, Col: c.Col} }

// ID returns the display identifier "row:col#serial".
func (c Coin) ID() string { return fmt.Sprintf("%d:%d#%d", c.Row, c.Col, c.Serial) }

func (c Coin) String() string { return c.ID() }
