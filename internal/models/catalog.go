package models

import "github.com/google/uuid"

type Category struct {
	BaseModel
	Name         string    `json:"name"`
	DisplayOrder int       `json:"display_order"`
	Products     []Product `json:"products,omitempty"`
}

type Product struct {
	BaseModel
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Price       float64    `json:"price"`
	ImageURL    string     `json:"image_url"`
	CategoryID  uuid.UUID  `gorm:"type:uuid;index" json:"category_id"`
	Category    *Category  `json:"category,omitempty"`
	IsAvailable bool       `gorm:"default:true" json:"is_available"`
	Modifiers   []Modifier `gorm:"many2many:product_modifiers;" json:"modifiers,omitempty"`
}

// ModifierType distinguishes single-select from multi-select modifiers.
type ModifierType string

const (
	ModifierRadio    ModifierType = "radio"
	ModifierCheckbox ModifierType = "checkbox"
)

// Modifier is a customization axis for a product, e.g. "Milk" or "Syrups".
// Radio modifiers allow at most one selected option, checkbox zero or more.
type Modifier struct {
	BaseModel
	Name       string           `json:"name"`
	Type       ModifierType     `json:"type"`
	IsRequired bool             `json:"is_required"`
	Options    []ModifierOption `json:"options,omitempty"`
	Products   []Product        `gorm:"many2many:product_modifiers;" json:"products,omitempty"`
}

type ModifierOption struct {
	BaseModel
	ModifierID      uuid.UUID `gorm:"type:uuid;index" json:"modifier_id"`
	Label           string    `json:"label"`
	PriceAdjustment float64   `json:"price_adjustment"`
}
