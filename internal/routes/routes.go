package routes

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/example/beanie/internal/cart"
	"github.com/example/beanie/internal/config"
	"github.com/example/beanie/internal/handlers"
	"github.com/example/beanie/internal/identity"
	"github.com/example/beanie/internal/middleware"
	"github.com/example/beanie/internal/models"
	"github.com/example/beanie/internal/realtime"
	"github.com/example/beanie/internal/services"
)

// Register wires up all HTTP routes.
func Register(app *fiber.App, db *gorm.DB, cfg *config.Config, hub *realtime.Hub) {
	ids := identity.NewService(db, cfg.JWTSecret, cfg.TokenExpires, cfg.SessionRefresh)
	carts := cart.NewService(cart.NewGormStore(db))
	telegram := services.NewTelegramService(cfg.TelegramBotToken, cfg.TelegramStaffChat)

	authHandler := handlers.NewAuthHandler(db, ids)
	catalogHandler := handlers.NewCatalogHandler(db)
	productHandler := handlers.NewProductHandler(db)
	cartHandler := handlers.NewCartHandler(db, carts)
	orderHandler := handlers.NewOrderHandler(db, carts, hub, telegram)

	// The live queue view consumes the order feed for the lifetime of the
	// process; the handler reads its merged state.
	view := realtime.NewQueueView()
	go view.Run(hub.Subscribe(nil))
	queueHandler := handlers.NewQueueHandler(db, hub, view)
	profileHandler := handlers.NewProfileHandler(db)

	// Every request passes the gate; it resolves the session once,
	// propagates refreshed credentials and decides page redirects.
	app.Use(middleware.Gate(ids))

	app.Get("/auth/callback", authHandler.Callback)

	api := app.Group("/api")

	auth := api.Group("/auth")
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)
	auth.Post("/logout", authHandler.Logout)

	// Public catalog
	api.Get("/categories", catalogHandler.ListCategories)
	api.Get("/modifiers", catalogHandler.ListModifiers)
	api.Get("/products", productHandler.ListProducts)
	api.Get("/products/:id", productHandler.GetProduct)

	// Customer routes
	authed := api.Group("", middleware.RequireAuth())
	authed.Get("/cart", cartHandler.GetCart)
	authed.Post("/cart/items", cartHandler.AddItem)
	authed.Patch("/cart/items/:lineId", cartHandler.UpdateQuantity)
	authed.Delete("/cart/items/:lineId", cartHandler.RemoveItem)
	authed.Delete("/cart", cartHandler.ClearCart)

	authed.Post("/orders", orderHandler.CreateOrder)
	authed.Get("/orders", orderHandler.ListOrders)
	authed.Get("/orders/:id", orderHandler.GetOrder)

	authed.Get("/profile", profileHandler.GetProfile)
	authed.Put("/profile", profileHandler.UpdateProfile)

	// Staff queue
	staffAPI := api.Group("/staff", middleware.RequireRoles(models.RoleStaff, models.RoleAdmin))
	staffAPI.Get("/orders", queueHandler.ListOrders)
	staffAPI.Get("/orders/live", queueHandler.LiveQueue)
	staffAPI.Patch("/orders/:id/status", queueHandler.UpdateStatus)

	// Admin catalog management
	adminAPI := api.Group("/admin", middleware.RequireRoles(models.RoleAdmin))
	adminAPI.Post("/categories", catalogHandler.CreateCategory)
	adminAPI.Put("/categories/:id", catalogHandler.UpdateCategory)
	adminAPI.Delete("/categories/:id", catalogHandler.DeleteCategory)
	adminAPI.Post("/products", productHandler.CreateProduct)
	adminAPI.Put("/products/:id", productHandler.UpdateProduct)
	adminAPI.Delete("/products/:id", productHandler.DeleteProduct)

	// Realtime feeds
	ws := app.Group("/ws", realtime.UpgradeRequired)
	ws.Get("/orders", middleware.RequireRoles(models.RoleStaff, models.RoleAdmin), realtime.StreamAll(hub))
	ws.Get("/orders/:id", middleware.RequireAuth(), realtime.StreamOrder(hub))

	registerPages(app, productHandler, orderHandler, queueHandler, profileHandler)
}

// registerPages maps the web paths the gate protects onto their data. The
// UI itself lives elsewhere; these handlers return the page's data so the
// routes exist and the gate's redirect targets resolve.
func registerPages(app *fiber.App, products *handlers.ProductHandler, orders *handlers.OrderHandler, queue *handlers.QueueHandler, profile *handlers.ProfileHandler) {
	app.Get("/", func(c *fiber.Ctx) error { return c.Redirect("/menu", fiber.StatusFound) })
	app.Get("/menu", products.ListProducts)
	app.Get("/checkout", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"success": true, "page": "checkout"})
	})
	app.Get("/order/:id", orders.GetOrder)
	app.Get("/orders", orders.ListOrders)
	app.Get("/account", profile.GetProfile)
	app.Get("/login", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"success": true, "page": "login", "error": c.Query("error")})
	})
	app.Get("/register", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"success": true, "page": "register"})
	})
	app.Get("/staff/dashboard", queue.ListOrders)
	app.Get("/admin", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"success": true, "page": "admin"})
	})
	app.Get("/admin/menu", products.ListProducts)
	app.Get("/admin/orders", queue.ListOrders)
	app.Get("/admin/queue", queue.LiveQueue)
}
