package main

import (
	"context"
	"io"
	"log"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"paperback/internal/config"
	"paperback/internal/http/handlers"
	applog "paperback/internal/log"
	"paperback/internal/realtime"
	"paperback/internal/repos"
	"paperback/internal/services"
)

func main() {
	cfg := config.Load()

	// Optional file logging
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			log.Printf("[warn] could not open log file %s: %v", cfg.LogFile, err)
		} else {
			log.SetOutput(io.MultiWriter(os.Stdout, f))
		}
	}

	db, err := repos.OpenDB(cfg.DBDSN)
	if err != nil {
		log.Fatal(err)
	}

	// Real-time fan-out. With redis configured, stock events travel through
	// pub/sub so every node's hub sees them; without it the hub is local.
	hub := realtime.NewHub()
	go hub.Run()
	defer hub.Stop()

	var stock services.StockPublisher = hub
	authSvc := &services.AuthService{
		Users:  repos.NewUserRepo(db),
		Secret: cfg.JWTSecret,
		TTL:    cfg.TokenTTL,
	}
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		bridge := realtime.NewBridge(rdb, hub)
		go bridge.Run(context.Background())
		stock = bridge
		authSvc.Revoker = services.NewRedisRevoker(rdb)
	}

	gateway := services.NewMidtransGateway(cfg.MidtransServerKey, cfg.MidtransProduction)
	deps := handlers.NewDeps(db, authSvc, hub, stock, gateway)

	oauthH := &handlers.OAuthHandler{
		Auth: authSvc,
		Google: &oauth2.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  cfg.GoogleRedirectURL,
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     google.Endpoint,
		},
		FrontendURL: cfg.FrontendURL,
	}

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			applog.Error(c, "server.error", err, nil)
			return c.Status(fiber.StatusInternalServerError).
				JSON(fiber.Map{"message": "Something went wrong. Please try again."})
		},
	})
	app.Server().MaxRequestBodySize = 1 << 20 // 1 MiB

	// ---------- Middlewares ----------
	app.Use(requestid.New())
	app.Use(logger.New())
	app.Use(helmet.New())
	app.Use(cors.New(cors.Config{AllowOrigins: cfg.FrontendURL}))

	authRequired := handlers.Authenticate(authSvc)
	adminOnly := handlers.RequireAdmin()

	loginLimiter := limiter.New(limiter.Config{
		Max:        5,
		Expiration: 10 * time.Minute,
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.login.hit", nil)
			return c.Status(fiber.StatusTooManyRequests).
				JSON(fiber.Map{"message": "Too many attempts. Please try again later."})
		},
	})

	// ---------- Auth ----------
	app.Post("/api/register", loginLimiter, deps.Auth.Register)
	app.Post("/api/login", loginLimiter, deps.Auth.Login)
	app.Get("/api/user", authRequired, deps.Auth.Me)
	app.Post("/api/logout", authRequired, deps.Auth.Logout)
	app.Get("/auth/google/redirect", oauthH.GoogleRedirect)
	app.Get("/auth/google/callback", oauthH.GoogleCallback)

	// ---------- Admin back-office ----------
	books := app.Group("/api/books", authRequired, adminOnly)
	books.Get("/", deps.Books.List)
	books.Post("/", deps.Books.Create)
	books.Get("/:id", deps.Books.Get)
	books.Put("/:id", deps.Books.Update)
	books.Delete("/:id", deps.Books.Delete)

	cats := app.Group("/api/categories", authRequired, adminOnly)
	cats.Get("/", deps.Categories.List)
	cats.Post("/", deps.Categories.Create)
	cats.Get("/:id", deps.Categories.Get)
	cats.Put("/:id", deps.Categories.Update)
	cats.Delete("/:id", deps.Categories.Delete)

	users := app.Group("/api/users", authRequired, adminOnly)
	users.Get("/", deps.Users.List)
	users.Post("/", deps.Users.Create)
	users.Get("/:id", deps.Users.Get)
	users.Put("/:id", deps.Users.Update)
	users.Delete("/:id", deps.Users.Delete)

	admin := app.Group("/api/admin", authRequired, adminOnly)
	admin.Get("/orders", deps.AdminOrders.List)
	admin.Get("/orders/:id", deps.AdminOrders.Get)
	admin.Put("/orders/:id/status", deps.AdminOrders.UpdateStatus)
	admin.Get("/transactions", deps.AdminOrders.Transactions)
	admin.Get("/dashboard", deps.AdminOrders.AdminDashboard)

	app.Get("/settings/profile", authRequired, adminOnly, deps.Profile.Get)
	app.Put("/settings/profile", authRequired, adminOnly, deps.Profile.Update)

	// ---------- Storefront ----------
	user := app.Group("/api/user", authRequired)
	user.Get("/books", deps.Books.List)
	user.Get("/books/:id", deps.Books.Get)

	user.Get("/cart", deps.Cart.View)
	user.Post("/cart", deps.Cart.Add)
	user.Put("/cart/:id", deps.Cart.UpdateQty)
	user.Delete("/cart/:id", deps.Cart.Remove)
	user.Delete("/cart", deps.Cart.Clear)

	user.Post("/checkout/create-order", deps.Checkout.CreateOrder)
	user.Post("/checkout/buy-now", deps.Checkout.BuyNow)
	user.Post("/payment/:orderId", deps.Payments.CreateSession)

	user.Get("/orders", deps.Orders.List)
	user.Get("/orders/:id", deps.Orders.Get)
	user.Put("/orders/:id/cancel", deps.Orders.Cancel)

	user.Get("/profile", deps.Profile.Get)
	user.Put("/profile", deps.Profile.Update)
	user.Post("/change-password", deps.Profile.ChangePassword)
	user.Get("/dashboard", deps.Orders.UserDashboard)

	// Provider callback; verified by the payment service, not by bearer auth.
	app.Post("/api/payment/notification", deps.Payments.Notification)

	// ---------- Real-time ----------
	app.Post("/broadcasting/auth", authRequired, deps.Realtime.BroadcastingAuth)
	app.Get("/ws", authRequired, deps.Realtime.Upgrade, deps.Realtime.Serve())

	// Health & 404
	app.Get("/healthz", func(c *fiber.Ctx) error { return c.JSON(fiber.Map{"ok": true}) })
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Not found"})
	})

	log.Fatal(app.Listen(":" + cfg.Port))
}
