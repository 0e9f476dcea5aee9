package outlet

import (
	"sort"
	"sync"

	"github.com/YelzhanWeb/dinehub/internal/domain"
)

// Directory is an in-memory outlet lookup. Replace swaps the whole data set
// atomically, so readers never see a half-loaded directory.
type Directory struct {
	mu      sync.RWMutex
	outlets map[string]domain.Outlet
	items   map[string]domain.MenuItem
}

func NewDirectory(outlets []domain.Outlet) *Directory {
	d := &Directory{}
	d.Replace(outlets)
	return d
}

func (d *Directory) Replace(outlets []domain.Outlet) {
	byID := make(map[string]domain.Outlet, len(outlets))
	items := make(map[string]domain.MenuItem)
	for _, o := range outlets {
		byID[o.ID] = o
		for _, item := range o.Menu {
			items[item.ID] = item
		}
	}

	d.mu.Lock()
	d.outlets = byID
	d.items = items
	d.mu.Unlock()
}

func (d *Directory) FindOutlet(id string) (domain.Outlet, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	o, ok := d.outlets[id]
	return o, ok
}

func (d *Directory) FindMenuItem(id string) (domain.MenuItem, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	item, ok := d.items[id]
	return item, ok
}

// List returns outlets sorted by name.
func (d *Directory) List() []domain.Outlet {
	d.mu.RLock()
	out := make([]domain.Outlet, 0, len(d.outlets))
	for _, o := range d.outlets {
		out = append(out, o)
	}
	d.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].Name == out[j].Name {
			return out[i].ID < out[j].ID
		}
		return out[i].Name < out[j].Name
	})
	return out
}
