package cart_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/beanie/internal/cart"
)

func newTestService() (*cart.Service, *cart.MemoryStore) {
	store := cart.NewMemoryStore()
	return cart.NewService(store), store
}

func latte(optionIDs ...uuid.UUID) cart.Item {
	mods := make([]cart.ItemModifier, len(optionIDs))
	for i, id := range optionIDs {
		mods[i] = cart.ItemModifier{
			ModifierID:      uuid.New(),
			OptionID:        id,
			PriceAdjustment: 0.50,
		}
	}
	return cart.Item{
		ProductID:   uuid.MustParse("11111111-1111-1111-1111-111111111111"),
		ProductName: "Latte",
		BasePrice:   4.50,
		Modifiers:   mods,
		Quantity:    1,
	}
}

func TestAddItemMergesSameOptionSet(t *testing.T) {
	svc, _ := newTestService()
	owner := uuid.New()

	optX := uuid.New()
	optY := uuid.New()

	first := latte(optX, optY)
	items, err := svc.AddItem(owner, first)
	require.NoError(t, err)
	require.Len(t, items, 1)

	// Same product, same option set in reverse order, quantity 2.
	second := latte(optY, optX)
	second.Quantity = 2
	items, err = svc.AddItem(owner, second)
	require.NoError(t, err)

	require.Len(t, items, 1)
	assert.Equal(t, 3, items[0].Quantity)
	assert.Equal(t, 3, cart.ItemCount(items))
}

func TestAddItemDifferentOptionsAddsLine(t *testing.T) {
	svc, _ := newTestService()
	owner := uuid.New()

	_, err := svc.AddItem(owner, latte(uuid.New()))
	require.NoError(t, err)
	items, err := svc.AddItem(owner, latte(uuid.New()))
	require.NoError(t, err)

	require.Len(t, items, 2)
	assert.NotEqual(t, items[0].ID, items[1].ID)
}

func TestUpdateQuantity(t *testing.T) {
	svc, _ := newTestService()
	owner := uuid.New()

	items, err := svc.AddItem(owner, latte())
	require.NoError(t, err)
	lineID := items[0].ID

	items, err = svc.UpdateQuantity(owner, lineID, 5)
	require.NoError(t, err)
	assert.Equal(t, 5, items[0].Quantity)

	// Non-positive quantity removes the line.
	items, err = svc.UpdateQuantity(owner, lineID, 0)
	require.NoError(t, err)
	assert.Empty(t, items)

	// Missing line is a no-op, not an error.
	items, err = svc.UpdateQuantity(owner, "no-such-line", 5)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestRemoveItemMissingLineIsNoop(t *testing.T) {
	svc, _ := newTestService()
	owner := uuid.New()

	items, err := svc.AddItem(owner, latte())
	require.NoError(t, err)

	items, err = svc.RemoveItem(owner, "absent")
	require.NoError(t, err)
	assert.Len(t, items, 1)

	items, err = svc.RemoveItem(owner, items[0].ID)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestClearCart(t *testing.T) {
	svc, _ := newTestService()
	owner := uuid.New()

	_, err := svc.AddItem(owner, latte())
	require.NoError(t, err)

	require.NoError(t, svc.Clear(owner))
	assert.Empty(t, svc.Items(owner))
}

func TestCorruptSnapshotIsEmptyCart(t *testing.T) {
	svc, store := newTestService()
	owner := uuid.New()

	require.NoError(t, store.Save(owner, []byte("{not json")))
	assert.Empty(t, svc.Items(owner))

	// The cart stays usable after a corrupt snapshot.
	items, err := svc.AddItem(owner, latte())
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestMutationsPersistSnapshot(t *testing.T) {
	store := cart.NewMemoryStore()
	svc := cart.NewService(store)
	owner := uuid.New()

	_, err := svc.AddItem(owner, latte())
	require.NoError(t, err)

	// A fresh engine over the same store sees the snapshot.
	again := cart.NewService(store)
	assert.Len(t, again.Items(owner), 1)
}
