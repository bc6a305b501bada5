package domain

type Category struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	SortOrder int       `json:"sort_order"`
	Products  []Product `json:"products"`
}

type Product struct {
	ID             string          `json:"id"`
	CategoryID     string          `json:"category_id"`
	Name           string          `json:"name"`
	Description    string          `json:"description"`
	BasePrice      int64           `json:"base_price"`
	ImageURL       string          `json:"image_url,omitempty"`
	IsAvailable    bool            `json:"is_available"`
	DietaryTags    []string        `json:"dietary_tags"`
	SortOrder      int             `json:"-"`
	ModifierGroups []ModifierGroup `json:"modifier_groups,omitempty"`
}

// ModifierGroup is a named set of customization choices for a product.
// MinRequired = 0 marks the group optional; MaxAllowed = 1 marks it
// single-select.
type ModifierGroup struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	MinRequired int              `json:"min_required"`
	MaxAllowed  int              `json:"max_allowed"`
	Options     []ModifierOption `json:"options"`
}

type ModifierOption struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	PriceMod int64  `json:"price_mod"`
}
