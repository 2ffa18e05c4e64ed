package main

import (
	"context"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/example/fitzone/internal/config"
	"github.com/example/fitzone/internal/database"
	"github.com/example/fitzone/internal/routes"
	"github.com/example/fitzone/internal/services"
)

func main() {
	cfg := config.Load()
	db := database.Connect(cfg.DatabaseURL)

	events := services.NewEventProducer(cfg.KafkaBrokers, cfg.KafkaOrderTopic)
	defer events.Close()

	telegram := services.NewTelegramService(cfg.TelegramBotToken, cfg.TelegramAdminChat)

	carts := services.NewCartService(db)
	vouchers := services.NewVoucherService(db)
	payments := services.NewPaymentService(db, carts, events, telegram, cfg.PaymentWindow)
	checkout := services.NewCheckoutService(db, carts, vouchers, payments, events, telegram)
	orders := services.NewOrderService(db, payments, events)

	// Pick up countdowns that were pending when the process last stopped.
	if err := payments.Rearm(context.Background()); err != nil {
		log.Printf("payment rearm failed: %v", err)
	}
	defer payments.Shutdown()

	app := fiber.New(fiber.Config{
		AppName: "FitZone Backend",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"success": false,
				"message": err.Error(),
			})
		},
	})

	app.Use(recover.New())
	app.Use(logger.New())

	routes.Register(app, db, cfg, routes.Deps{
		Carts:    carts,
		Vouchers: vouchers,
		Checkout: checkout,
		Orders:   orders,
		Payments: payments,
	})

	log.Printf("Starting server on :%s", cfg.AppPort)
	if err := app.Listen(":" + cfg.AppPort); err != nil {
		log.Fatalf("fiber.Listen error: %v", err)
	}
}
