package domain

// CartLine is one selected menu item and how many of it.
type CartLine struct {
	MenuItem MenuItem `json:"menu_item"`
	Quantity int      `json:"quantity"`
}

// LineTotal returns price × quantity.
func (l CartLine) LineTotal() Money {
	return l.MenuItem.PriceINR.Times(l.Quantity)
}

// Cart keeps lines in insertion order, at most one per menu item id.
// Every line always has a quantity of at least one.
type Cart struct {
	lines []CartLine
}

func NewCart() *Cart {
	return &Cart{}
}

// AddItem increments the quantity of an existing line or appends a new one.
func (c *Cart) AddItem(item MenuItem, quantity int) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}

	if i := c.indexOf(item.ID); i >= 0 {
		c.lines[i].Quantity += quantity
		return nil
	}

	c.lines = append(c.lines, CartLine{MenuItem: item, Quantity: quantity})
	return nil
}

// RemoveItem deletes the line for menuItemID. Absent ids are ignored.
func (c *Cart) RemoveItem(menuItemID string) {
	i := c.indexOf(menuItemID)
	if i < 0 {
		return
	}
	c.lines = append(c.lines[:i], c.lines[i+1:]...)
}

// SetQuantity replaces a line's quantity; zero or less removes the line.
// Setting a positive quantity on an item that is not in the cart returns
// ErrNotFound because there is no MenuItem to build the line from.
func (c *Cart) SetQuantity(menuItemID string, quantity int) error {
	if quantity <= 0 {
		c.RemoveItem(menuItemID)
		return nil
	}

	i := c.indexOf(menuItemID)
	if i < 0 {
		return ErrNotFound
	}
	c.lines[i].Quantity = quantity
	return nil
}

// ItemCount is the sum of all line quantities.
func (c *Cart) ItemCount() int {
	count := 0
	for _, l := range c.lines {
		count += l.Quantity
	}
	return count
}

// Total is recomputed from the current lines on every call.
func (c *Cart) Total() Money {
	var total Money
	for _, l := range c.lines {
		total += l.LineTotal()
	}
	return total
}

func (c *Cart) IsEmpty() bool {
	return len(c.lines) == 0
}

// Lines returns a copy of the cart lines.
func (c *Cart) Lines() []CartLine {
	out := make([]CartLine, len(c.lines))
	copy(out, c.lines)
	return out
}

func (c *Cart) Clear() {
	c.lines = nil
}

// Snapshot freezes the cart into order items.
func (c *Cart) Snapshot() []OrderItem {
	items := make([]OrderItem, len(c.lines))
	for i, l := range c.lines {
		items[i] = OrderItem{
			MenuItemID: l.MenuItem.ID,
			Name:       l.MenuItem.Name,
			UnitPrice:  l.MenuItem.PriceINR,
			Quantity:   l.Quantity,
		}
	}
	return items
}

func (c *Cart) indexOf(menuItemID string) int {
	for i, l := range c.lines {
		if l.MenuItem.ID == menuItemID {
			return i
		}
	}
	return -1
}

// Clone returns an independent cart with the same lines.
func (c *Cart) Clone() *Cart {
	return &Cart{lines: c.Lines()}
}
