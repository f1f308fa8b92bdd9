package models

// Category is a low-cardinality reference entity used by the listing
// filters. Soft-deleted via IsActive.
type Category struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Icon     string `json:"icon"`
	Color    string `json:"color,omitempty"`
	Order    int    `json:"order,omitempty"`
	IsActive bool   `json:"isActive"`
}

// DefaultCategories is the fallback set served when the categories
// collection cannot be read.
func DefaultCategories() []*Category {
	return []*Category{
		{ID: "hair", Name: "Coiffure", Icon: "cut", Order: 1, IsActive: true},
		{ID: "makeup", Name: "Maquillage", Icon: "color-palette", Order: 2, IsActive: true},
		{ID: "photography", Name: "Photographie", Icon: "camera", Order: 3, IsActive: true},
		{ID: "fashion", Name: "Mode", Icon: "shirt", Order: 4, IsActive: true},
		{ID: "nails", Name: "Ongles", Icon: "hand-left", Order: 5, IsActive: true},
		{ID: "aesthetic", Name: "Esthetique", Icon: "sparkles", Order: 6, IsActive: true},
		{ID: "other", Name: "Autre", Icon: "ellipsis-horizontal", Order: 7, IsActive: true},
	}
}
