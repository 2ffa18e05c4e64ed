package routes

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/example/fitzone/internal/config"
	"github.com/example/fitzone/internal/handlers"
	"github.com/example/fitzone/internal/middleware"
	"github.com/example/fitzone/internal/services"
)

// Deps bundles the shared services handed to the route handlers.
type Deps struct {
	Carts    *services.CartService
	Vouchers *services.VoucherService
	Checkout *services.CheckoutService
	Orders   *services.OrderService
	Payments *services.PaymentService
}

// Register wires up all HTTP routes.
func Register(app *fiber.App, db *gorm.DB, cfg *config.Config, deps Deps) {
	authHandler := handlers.NewAuthHandler(db, cfg)
	profileHandler := handlers.NewProfileHandler(db)
	productHandler := handlers.NewProductHandler(db)
	gymHandler := handlers.NewGymHandler(db)
	cartHandler := handlers.NewCartHandler(db, deps.Carts)
	voucherHandler := handlers.NewVoucherHandler(db, deps.Vouchers)
	orderHandler := handlers.NewOrderHandler(db, deps.Checkout, deps.Orders, cfg)
	paymentHandler := handlers.NewPaymentHandler(deps.Payments, cfg)

	api := app.Group("/api")

	// Auth routes
	auth := api.Group("/auth")
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)

	// Public shop browsing
	products := api.Group("/products")
	products.Get("/", productHandler.ListProducts)
	products.Get("/:id", productHandler.GetProduct)

	trainers := api.Group("/trainers")
	trainers.Get("/", gymHandler.ListTrainers)

	classes := api.Group("/classes")
	classes.Get("/", gymHandler.ListClasses)

	// Voucher application (evaluated against a pre-discount order value)
	vouchers := api.Group("/vouchers")
	vouchers.Post("/apply", voucherHandler.Apply)
	vouchers.Post("/:id/use", voucherHandler.Use)

	// Protected member routes
	protected := api.Group("", middleware.AuthMiddleware(cfg))

	cart := protected.Group("/cart")
	cart.Get("/", cartHandler.GetCart)
	cart.Post("/items", cartHandler.AddItem)
	cart.Patch("/items/:productId", cartHandler.UpdateQuantity)
	cart.Delete("/items/:productId", cartHandler.RemoveItem)
	cart.Post("/items/:productId/toggle", cartHandler.ToggleSelect)
	cart.Post("/select-all", cartHandler.SelectAll)
	cart.Post("/deselect-all", cartHandler.DeselectAll)
	cart.Delete("/", cartHandler.ClearCart)

	orders := protected.Group("/orders")
	orders.Post("/", orderHandler.CreateOrder)
	orders.Get("/my-orders", orderHandler.ListMyOrders)
	orders.Get("/my-orders/:id", orderHandler.GetMyOrder)
	orders.Patch("/my-orders/:id/cancel", orderHandler.CancelMyOrder)

	payments := protected.Group("/payments")
	payments.Get("/:id", paymentHandler.GetPayment)
	payments.Post("/:id/confirm", paymentHandler.ConfirmPayment)

	protected.Get("/profile", profileHandler.GetProfile)
	protected.Put("/profile", profileHandler.UpdateProfile)
	protected.Get("/profile/addresses", profileHandler.ListAddresses)
	protected.Post("/profile/addresses", profileHandler.CreateAddress)
	protected.Delete("/profile/addresses/:id", profileHandler.DeleteAddress)

	protected.Post("/classes/:id/book", gymHandler.BookClass)
	protected.Get("/bookings", gymHandler.ListMyBookings)
	protected.Delete("/bookings/:id", gymHandler.CancelBooking)

	// Admin routes
	admin := api.Group("/admin", middleware.AuthMiddleware(cfg), middleware.AdminOnly())

	admin.Post("/products", productHandler.CreateProduct)
	admin.Put("/products/:id", productHandler.UpdateProduct)
	admin.Delete("/products/:id", productHandler.DeleteProduct)

	admin.Post("/trainers", gymHandler.CreateTrainer)
	admin.Put("/trainers/:id", gymHandler.UpdateTrainer)
	admin.Delete("/trainers/:id", gymHandler.DeleteTrainer)

	admin.Post("/classes", gymHandler.CreateClass)
	admin.Put("/classes/:id", gymHandler.UpdateClass)
	admin.Delete("/classes/:id", gymHandler.DeleteClass)

	admin.Get("/vouchers", voucherHandler.List)
	admin.Post("/vouchers", voucherHandler.Create)
	admin.Put("/vouchers/:id", voucherHandler.Update)
	admin.Delete("/vouchers/:id", voucherHandler.Delete)

	admin.Get("/orders", orderHandler.ListOrders)
	admin.Patch("/orders/:id/status", orderHandler.UpdateStatus)
	admin.Patch("/orders/:id/payment-status", orderHandler.UpdatePaymentStatus)
}
