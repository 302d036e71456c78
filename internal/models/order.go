package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// OrderStatus is the lifecycle state of a persisted order.
type OrderStatus string

const (
	StatusPending    OrderStatus = "pending"
	StatusInProgress OrderStatus = "in_progress"
	StatusComplete   OrderStatus = "complete"
	StatusCancelled  OrderStatus = "cancelled"
)

// orderTransitions lists the permitted next states. Completed and cancelled
// orders are terminal; only pending orders can be cancelled.
var orderTransitions = map[OrderStatus][]OrderStatus{
	StatusPending:    {StatusInProgress, StatusCancelled},
	StatusInProgress: {StatusComplete},
}

// Valid reports whether s is a known status.
func (s OrderStatus) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusComplete, StatusCancelled:
		return true
	}
	return false
}

// IsTerminal reports whether no further transitions are permitted from s.
func (s OrderStatus) IsTerminal() bool {
	return s == StatusComplete || s == StatusCancelled
}

// CanTransitionTo reports whether the transition s -> target is permitted.
func (s OrderStatus) CanTransitionTo(target OrderStatus) bool {
	for _, next := range orderTransitions[s] {
		if next == target {
			return true
		}
	}
	return false
}

// StepIndex maps active statuses to their position in the progress display.
// Cancelled orders are rendered as a terminal banner, not a step, and
// return -1.
func (s OrderStatus) StepIndex() int {
	switch s {
	case StatusPending:
		return 0
	case StatusInProgress:
		return 1
	case StatusComplete:
		return 2
	}
	return -1
}

// SelectedModifier is the frozen copy of a chosen modifier option stored on
// an order item, decoupled from the live catalog.
type SelectedModifier struct {
	ModifierID      uuid.UUID `json:"modifier_id"`
	ModifierName    string    `json:"modifier_name"`
	OptionID        uuid.UUID `json:"option_id"`
	OptionLabel     string    `json:"option_label"`
	PriceAdjustment float64   `json:"price_adjustment"`
}

// SelectedModifiers persists as a single JSON column.
type SelectedModifiers []SelectedModifier

func (m SelectedModifiers) Value() (driver.Value, error) {
	if m == nil {
		m = SelectedModifiers{}
	}
	return json.Marshal(m)
}

func (m *SelectedModifiers) Scan(value interface{}) error {
	if value == nil {
		*m = SelectedModifiers{}
		return nil
	}

	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into SelectedModifiers", value)
	}

	return json.Unmarshal(data, m)
}

type Order struct {
	BaseModel
	CustomerID uuid.UUID   `gorm:"type:uuid;index" json:"customer_id"`
	Customer   *Profile    `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	Status     OrderStatus `gorm:"index" json:"status"`
	Total      float64     `json:"total"`
	PickupCode string      `json:"pickup_code"`
	Items      []OrderItem `json:"items,omitempty"`
}

type OrderItem struct {
	BaseModel
	OrderID           uuid.UUID         `gorm:"type:uuid;index" json:"order_id"`
	ProductID         *uuid.UUID        `gorm:"type:uuid" json:"product_id"`
	ProductName       string            `json:"product_name"`
	Quantity          int               `json:"quantity"`
	UnitPrice         float64           `json:"unit_price"`
	SelectedModifiers SelectedModifiers `gorm:"type:text" json:"selected_modifiers"`
}
