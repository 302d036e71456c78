// Package cart holds the cart engine and the pricing functions shared by
// the live cart display and order assembly.
package cart

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"sort"

	"github.com/google/uuid"
)

// ItemModifier is one selected customization on a cart line.
type ItemModifier struct {
	ModifierID      uuid.UUID `json:"modifier_id"`
	ModifierName    string    `json:"modifier_name"`
	OptionID        uuid.UUID `json:"option_id"`
	OptionLabel     string    `json:"option_label"`
	PriceAdjustment float64   `json:"price_adjustment"`
}

// Item is one cart line. Prices are frozen at add time.
type Item struct {
	ID              string         `json:"id"`
	ProductID       uuid.UUID      `json:"product_id"`
	ProductName     string         `json:"product_name"`
	ProductImageURL string         `json:"product_image_url"`
	BasePrice       float64        `json:"base_price"`
	Modifiers       []ItemModifier `json:"modifiers"`
	Quantity        int            `json:"quantity"`
}

// Store persists cart snapshots keyed by owner. Load returns nil when no
// snapshot exists.
type Store interface {
	Load(owner uuid.UUID) ([]byte, error)
	Save(owner uuid.UUID, snapshot []byte) error
}

// Service is the cart engine. It is constructed per process and passed
// explicitly; there is no package-level cart state.
type Service struct {
	store Store
}

// NewService constructs a cart engine over the given snapshot store.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// Items returns the owner's current cart. A missing, unreadable or corrupt
// snapshot is an empty cart, never an error.
func (s *Service) Items(owner uuid.UUID) []Item {
	snapshot, err := s.store.Load(owner)
	if err != nil || len(snapshot) == 0 {
		return nil
	}

	var items []Item
	if err := json.Unmarshal(snapshot, &items); err != nil {
		return nil
	}
	return items
}

// AddItem appends candidate to the cart, merging into an existing line when
// the product and the set of selected option ids match (option order is
// irrelevant). Returns the updated cart.
func (s *Service) AddItem(owner uuid.UUID, candidate Item) ([]Item, error) {
	items := s.Items(owner)

	merged := false
	for i := range items {
		if items[i].ProductID == candidate.ProductID &&
			modifiersMatch(items[i].Modifiers, candidate.Modifiers) {
			items[i].Quantity += candidate.Quantity
			merged = true
			break
		}
	}
	if !merged {
		candidate.ID = newLineID()
		items = append(items, candidate)
	}

	return items, s.save(owner, items)
}

// RemoveItem deletes the line with the given id. A missing line is a no-op.
func (s *Service) RemoveItem(owner uuid.UUID, lineID string) ([]Item, error) {
	items := s.Items(owner)

	kept := items[:0]
	for _, item := range items {
		if item.ID != lineID {
			kept = append(kept, item)
		}
	}

	return kept, s.save(owner, kept)
}

// UpdateQuantity sets the quantity of a line. A non-positive quantity
// removes the line; a missing line is a no-op.
func (s *Service) UpdateQuantity(owner uuid.UUID, lineID string, quantity int) ([]Item, error) {
	if quantity < 1 {
		return s.RemoveItem(owner, lineID)
	}

	items := s.Items(owner)
	for i := range items {
		if items[i].ID == lineID {
			items[i].Quantity = quantity
			break
		}
	}

	return items, s.save(owner, items)
}

// Clear empties the owner's cart.
func (s *Service) Clear(owner uuid.UUID) error {
	return s.save(owner, nil)
}

// ItemCount is the sum of quantities across lines.
func ItemCount(items []Item) int {
	var count int
	for _, item := range items {
		count += item.Quantity
	}
	return count
}

func (s *Service) save(owner uuid.UUID, items []Item) error {
	if items == nil {
		items = []Item{}
	}
	snapshot, err := json.Marshal(items)
	if err != nil {
		return err
	}
	return s.store.Save(owner, snapshot)
}

// modifiersMatch compares two modifier selections as sets of option ids.
func modifiersMatch(a, b []ItemModifier) bool {
	if len(a) != len(b) {
		return false
	}

	idsA := optionIDs(a)
	idsB := optionIDs(b)
	for i := range idsA {
		if idsA[i] != idsB[i] {
			return false
		}
	}
	return true
}

func optionIDs(mods []ItemModifier) []string {
	ids := make([]string, len(mods))
	for i, m := range mods {
		ids[i] = m.OptionID.String()
	}
	sort.Strings(ids)
	return ids
}

func newLineID() string {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		return uuid.NewString()
	}
	return hex.EncodeToString(buf)
}
