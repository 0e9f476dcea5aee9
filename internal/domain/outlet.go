package domain

// MenuItem is immutable reference data offered by an outlet.
type MenuItem struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	PriceINR Money  `json:"price_inr"`
}

// Outlet is a read-only directory entry.
type Outlet struct {
	ID             string     `json:"id"`
	Name           string     `json:"name"`
	Address        string     `json:"address,omitempty"`
	Cuisine        string     `json:"cuisine,omitempty"`
	Rating         float64    `json:"rating,omitempty"`
	AvgPrepMinutes int        `json:"avg_prep_minutes"`
	Open           bool       `json:"open"`
	Menu           []MenuItem `json:"menu,omitempty"`
}

// MenuItem looks up an item on this outlet's menu.
func (o Outlet) MenuItem(id string) (MenuItem, bool) {
	for _, item := range o.Menu {
		if item.ID == id {
			return item, true
		}
	}
	return MenuItem{}, false
}
