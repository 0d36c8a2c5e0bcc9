package domain

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/samirrijal/geocoin/internal/pkg/geospatial"
)

// GridCell is a discrete cell of the lat/lng grid. Two cells with equal
// row and col are the same cell.
type GridCell struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// Key returns the canonical "row,col" form, also used as the luck seed.
func (c GridCell) Key() string {
	return strconv.Itoa(c.Row) + "," + strconv.Itoa(c.Col)
}

func (c GridCell) String() string { return c.Key() }

// ParseCellKey is the inverse of GridCell.Key.
func ParseCellKey(key string) (GridCell, error) {
	rowStr, colStr, ok := strings.Cut(key, ",")
	if !ok {
		return GridCell{}, fmt.Errorf("%w: %q", ErrInvalidCellKey, key)
	}
	row, err := strconv.Atoi(strings.TrimSpace(rowStr))
	if err != nil {
		return GridCell{}, fmt.Errorf("%w: %q", ErrInvalidCellKey, key)
	}
	col, err := strconv.Atoi(strings.TrimSpace(colStr))
	if err != nil {
		return GridCell{}, fmt.Errorf("%w: %q", ErrInvalidCellKey, key)
	}
	return GridCell{Row: row, Col: col}, nil
}

// CellInfo is the derived geometry of a cell, computed once per cell.
type CellInfo struct {
	Cell   GridCell
	Key    string
	Bounds Bounds
	Center Coordinate
}

// Grid buckets coordinates into fixed-size cells and keeps a lookup table
// of cell geometry with insert-if-absent semantics.
type Grid struct {
	cellSize float64
	cells    map[GridCell]*CellInfo
}

// NewGrid creates a grid with square cells of cellSize degrees.
func NewGrid(cellSize float64) *Grid {
	return &Grid{
		cellSize: cellSize,
		cells:    make(map[GridCell]*CellInfo, 512),
	}
}

// CellSize returns the cell edge length in degrees.
func (g *Grid) CellSize() float64 { return g.cellSize }

// CellOf returns the cell containing c.
func (g *Grid) CellOf(c Coordinate) GridCell {
	return GridCell{
		Row: geospatial.Bucket(c.Lat, g.cellSize),
		Col: geospatial.Bucket(c.Lng, g.cellSize),
	}
}

// Info returns the geometry of cell. Repeated calls for the same cell
// return the same *CellInfo.
func (g *Grid) Info(cell GridCell) *CellInfo {
	if info, ok := g.cells[cell]; ok {
		return info
	}

	b := geospatial.CellBound(cell.Row, cell.Col, g.cellSize)
	center := b.Center()
	info := &CellInfo{
		Cell: cell,
		Key:  cell.Key(),
		Bounds: Bounds{
			MinLat: b.Min.Lat(),
			MinLng: b.Min.Lon(),
			MaxLat: b.Max.Lat(),
			MaxLng: b.Max.Lon(),
		},
		Center: Coordinate{Lat: center.Lat(), Lng: center.Lon()},
	}
	g.cells[cell] = info
	return info
}

// CenterOf returns the midpoint of the cell's bounding box.
func (g *Grid) CenterOf(cell GridCell) Coordinate {
	return g.Info(cell).Center
}

// Bounds returns the cell's bounding box.
func (g *Grid) Bounds(cell GridCell) Bounds {
	return g.Info(cell).Bounds
}

// Known returns how many cells the lookup table holds.
func (g *Grid) Known() int { return len(g.cells) }
