package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/example/beanie/internal/apperr"
	"github.com/example/beanie/internal/config"
	"github.com/example/beanie/internal/database"
	"github.com/example/beanie/internal/identity"
	"github.com/example/beanie/internal/models"
	"github.com/example/beanie/internal/realtime"
	"github.com/example/beanie/internal/routes"
)

type fixture struct {
	app *fiber.App
	db  *gorm.DB
	ids *identity.Service
	hub *realtime.Hub
}

func newFixture(t *testing.T) *fixture {
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	// A single connection keeps the in-memory database visible to every
	// query, including ones issued from handler goroutines.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.Migrate(db))

	cfg := &config.Config{
		JWTSecret:      "handler-test-secret",
		TokenExpires:   time.Hour,
		SessionRefresh: 10 * time.Minute,
	}

	app := fiber.New(fiber.Config{ErrorHandler: apperr.ErrorHandler})
	hub := realtime.NewHub()
	routes.Register(app, db, cfg, hub)

	ids := identity.NewService(db, cfg.JWTSecret, cfg.TokenExpires, cfg.SessionRefresh)
	return &fixture{app: app, db: db, ids: ids, hub: hub}
}

func (f *fixture) signIn(t *testing.T, role models.Role) (uuid.UUID, identity.Credential) {
	userID := uuid.New()
	require.NoError(t, f.db.Create(&models.User{
		BaseModel:    models.BaseModel{ID: userID},
		Email:        userID.String() + "@example.com",
		PasswordHash: "x",
	}).Error)
	require.NoError(t, f.db.Create(&models.Profile{
		ID: userID, FullName: "Test User", Role: role,
	}).Error)

	cred, err := f.ids.Issue(userID, userID.String()+"@example.com")
	require.NoError(t, err)
	return userID, cred
}

func (f *fixture) request(t *testing.T, method, path string, body interface{}, cred *identity.Credential) *http.Response {
	var payload *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		payload = bytes.NewReader(raw)
	} else {
		payload = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, payload)
	req.Header.Set("Content-Type", "application/json")
	if cred != nil {
		req.AddCookie(&http.Cookie{Name: identity.CookieName, Value: cred.Token})
	}

	resp, err := f.app.Test(req, 5000)
	require.NoError(t, err)
	return resp
}

func decode(t *testing.T, resp *http.Response) map[string]interface{} {
	defer resp.Body.Close()
	var payload map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	return payload
}

func (f *fixture) seedProduct(t *testing.T, name string, price float64) models.Product {
	category := models.Category{Name: "Coffee", DisplayOrder: 1}
	require.NoError(t, f.db.Create(&category).Error)

	product := models.Product{
		Name:        name,
		Price:       price,
		CategoryID:  category.ID,
		IsAvailable: true,
	}
	require.NoError(t, f.db.Create(&product).Error)
	return product
}

func (f *fixture) seedModifier(t *testing.T, product models.Product, modType models.ModifierType, adjustments ...float64) models.Modifier {
	modifier := models.Modifier{Name: "Extras", Type: modType}
	require.NoError(t, f.db.Create(&modifier).Error)

	for i, adj := range adjustments {
		option := models.ModifierOption{
			ModifierID:      modifier.ID,
			Label:           "Option " + string(rune('A'+i)),
			PriceAdjustment: adj,
		}
		require.NoError(t, f.db.Create(&option).Error)
		modifier.Options = append(modifier.Options, option)
	}

	require.NoError(t, f.db.Model(&product).Association("Modifiers").Append(&modifier))
	return modifier
}
