package domain

import "sort"

// Directory tracks live caches inside the active region and the saved
// mementos of caches that left it.
type Directory struct {
	active map[GridCell]*Cache
	saved  map[GridCell]string
}

// NewDirectory creates an empty directory.
func NewDirectory() *Directory {
	return &Directory{
		active: make(map[GridCell]*Cache),
		saved:  make(map[GridCell]string),
	}
}

// Active returns the live cache at cell, if any.
func (d *Directory) Active(cell GridCell) (*Cache, bool) {
	c, ok := d.active[cell]
	return c, ok
}

// ActiveCount returns the number of live caches.
func (d *Directory) ActiveCount() int { return len(d.active) }

// ActiveCaches returns the live caches ordered by row, then col.
func (d *Directory) ActiveCaches() []*Cache {
	out := make([]*Cache, 0, len(d.active))
	for _, c := range d.active {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i].cell, out[j].cell
		if a.Row != b.Row {
			return a.Row < b.Row
		}
		return a.Col < b.Col
	})
	return out
}

// TakeSaved removes and returns the saved record for cell. A record is
// consumed on reactivation so a coin is never both live and saved.
func (d *Directory) TakeSaved(cell GridCell) (string, bool) {
	rec, ok := d.saved[cell]
	if ok {
		delete(d.saved, cell)
	}
	return rec, ok
}

// Save stores a record for cell, overwriting any previous one.
func (d *Directory) Save(cell GridCell, record string) {
	d.saved[cell] = record
}

// SavedCount returns the number of dormant caches.
func (d *Directory) SavedCount() int { return len(d.saved) }

// SavedRecords returns a copy of the saved records.
func (d *Directory) SavedRecords() map[GridCell]string {
	out := make(map[GridCell]string, len(d.saved))
	for k, v := range d.saved {
		out[k] = v
	}
	return out
}

// Replace installs next as the active set. Every previously active cache
// missing from next is serialized into the saved records and dropped.
// It returns the cells that were dehydrated.
func (d *Directory) Replace(next map[GridCell]*Cache) []GridCell {
	var exited []GridCell
	for cell, c := range d.active {
		if _, ok := next[cell]; ok {
			continue
		}
		d.saved[cell] = c.Memento()
		exited = append(exited, cell)
	}
	d.active = next
	return exited
}

// Clear forgets every live and saved cache.
func (d *Directory) Clear() {
	d.active = make(map[GridCell]*Cache)
	d.saved = make(map[GridCell]string)
}
