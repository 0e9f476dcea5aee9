package outletfile

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/YelzhanWeb/dinehub/internal/domain"
)

type fileDoc struct {
	Outlets []outletDoc `yaml:"outlets"`
}

type outletDoc struct {
	ID             string    `yaml:"id"`
	Name           string    `yaml:"name"`
	Address        string    `yaml:"address"`
	Cuisine        string    `yaml:"cuisine"`
	Rating         float64   `yaml:"rating"`
	AvgPrepMinutes int       `yaml:"avg_prep_minutes"`
	Open           *bool     `yaml:"open"`
	Menu           []itemDoc `yaml:"menu"`
}

type itemDoc struct {
	ID       string `yaml:"id"`
	Name     string `yaml:"name"`
	PriceINR string `yaml:"price_inr"`
}

// Load reads an outlets file.
func Load(path string) ([]domain.Outlet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read outlets file: %w", err)
	}
	return Parse(data)
}

// Parse decodes outlets and their menus. Outlet ids and menu item ids must
// be unique across the whole file; outlets are open unless stated.
func Parse(data []byte) ([]domain.Outlet, error) {
	var doc fileDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse outlets yaml: %w", err)
	}

	seenOutlets := make(map[string]bool)
	seenItems := make(map[string]string)
	outlets := make([]domain.Outlet, 0, len(doc.Outlets))

	for i, od := range doc.Outlets {
		if od.ID == "" || od.Name == "" {
			return nil, fmt.Errorf("outlets[%d]: id and name are required", i)
		}
		if seenOutlets[od.ID] {
			return nil, fmt.Errorf("outlets[%d]: duplicate outlet id %q", i, od.ID)
		}
		seenOutlets[od.ID] = true

		o := domain.Outlet{
			ID:             od.ID,
			Name:           od.Name,
			Address:        od.Address,
			Cuisine:        od.Cuisine,
			Rating:         od.Rating,
			AvgPrepMinutes: od.AvgPrepMinutes,
			Open:           od.Open == nil || *od.Open,
		}

		for j, it := range od.Menu {
			if it.ID == "" || it.Name == "" {
				return nil, fmt.Errorf("outlets[%d].menu[%d]: id and name are required", i, j)
			}
			if owner, dup := seenItems[it.ID]; dup {
				return nil, fmt.Errorf("outlets[%d].menu[%d]: menu item %q already listed by outlet %q", i, j, it.ID, owner)
			}
			seenItems[it.ID] = od.ID

			price, err := domain.ParseMoney(it.PriceINR)
			if err != nil {
				return nil, fmt.Errorf("outlets[%d].menu[%d]: %w", i, j, err)
			}
			o.Menu = append(o.Menu, domain.MenuItem{ID: it.ID, Name: it.Name, PriceINR: price})
		}

		outlets = append(outlets, o)
	}

	return outlets, nil
}
