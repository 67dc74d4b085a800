package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"github.com/streadway/amqp"
	"gorm.io/gorm"

	"belanja/internal/config"
	"belanja/internal/database"
	"belanja/internal/handlers"
	"belanja/internal/middleware"
	"belanja/internal/models"
	"belanja/internal/repositories"
	"belanja/internal/services"
	"belanja/pkg/rabbitmq"
)

// application owns every long-lived resource of the process.
type application struct {
	fiber *fiber.App
	db    *gorm.DB         // nil with the memory driver
	mq    *rabbitmq.Client // nil when RABBITMQ_URL is empty
}

// newApp builds the Fiber app and its dependencies from cfg.
func newApp(cfg config.Config) (*application, error) {
	a := &application{}

	// --- Initialize Repositories ---
	var (
		userRepo    repositories.UserRepository
		productRepo repositories.ProductRepository
		cartRepo    repositories.CartRepository
		ping        func() error
	)
	if cfg.DBDriver == config.DriverMemory {
		users := repositories.NewMockUserRepository()
		products := repositories.NewMockProductRepository()
		userRepo, productRepo = users, products
		cartRepo = repositories.NewMockCartRepository(users, products)
	} else {
		db, err := database.Open(cfg)
		if err != nil {
			return nil, err
		}
		a.db = db
		userRepo = repositories.NewGORMUserRepository(db)
		productRepo = repositories.NewGORMProductRepository(db)
		cartRepo = repositories.NewGORMCartRepository(db)
		ping = func() error { return database.Ping(db) }
	}

	// --- Initialize RabbitMQ Client ---
	var publisher services.EventPublisher
	if cfg.RabbitMQURL != "" {
		mqClient, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL})
		if err != nil {
			a.close()
			return nil, err
		}
		a.mq = mqClient
		publisher = mqClient
	} else {
		log.Println("RABBITMQ_URL is empty. Cart events will not be published.")
	}

	// --- Initialize Services ---
	tokenService := services.NewTokenService(cfg.JWTSecret, services.WithTTL(cfg.TokenTTL))
	authService, err := services.NewAuthService(userRepo, tokenService, services.NewBcryptHasher(cfg.BcryptCost))
	if err != nil {
		a.close()
		return nil, err
	}
	productService := services.NewProductService(productRepo)
	cartService := services.NewCartService(cartRepo, productRepo, publisher)

	if cfg.SeedProducts {
		if _, err := productService.SeedProducts(context.Background(), sampleProducts()); err != nil {
			a.close()
			return nil, err
		}
	}

	// --- Initialize Handlers ---
	validate := validator.New()
	authHandler := handlers.NewAuthHandler(authService, validate)
	productHandler := handlers.NewProductHandler(productService)
	cartHandler := handlers.NewCartHandler(cartService, validate)
	healthHandler := handlers.NewHealthHandler(ping)

	// --- Initialize Fiber App ---
	app := fiber.New(fiber.Config{
		ErrorHandler: errorHandler,
	})

	// --- Middleware ---
	app.Use(recover.New())
	app.Use(requestid.New(requestid.Config{Generator: uuid.NewString}))
	app.Use(logger.New(logger.Config{
		Format: "${time} ${locals:requestid} ${status} - ${method} ${path} ${latency}\n",
	}))

	// --- Routes ---
	healthHandler.RegisterRoutes(app)
	authHandler.RegisterRoutes(app)

	protected := app.Group("", middleware.AuthRequired(tokenService))
	authHandler.RegisterProtectedRoutes(protected)
	productHandler.RegisterRoutes(protected)
	cartHandler.RegisterRoutes(protected)

	a.fiber = app
	return a, nil
}

// errorHandler renders errors that escape handlers, recovered panics included.
func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal server error"
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
		message = fe.Message
	}
	if code >= fiber.StatusInternalServerError {
		log.Printf("Unhandled error on %s %s: %v", c.Method(), c.Path(), err)
	}
	return c.Status(code).JSON(fiber.Map{"error": message})
}

// startConsumer logs every cart event the broker delivers.
func (a *application) startConsumer() {
	if a.mq == nil {
		return
	}
	err := a.mq.ConsumeCartEvents(func(msg amqp.Delivery) error {
		log.Printf("Received cart event %s (Tag: %d): %s", msg.RoutingKey, msg.DeliveryTag, string(msg.Body))
		return nil
	})
	if err != nil {
		log.Printf("Failed to start RabbitMQ consumer: %v", err)
	}
}

func (a *application) close() {
	if a.mq != nil {
		if err := a.mq.Close(); err != nil {
			log.Printf("Error closing RabbitMQ client: %v", err)
		}
	}
	if a.db != nil {
		if err := database.Close(a.db); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}
}

func main() {
	// --- Configuration ---
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	a, err := newApp(cfg)
	if err != nil {
		log.Fatalf("Failed to create app: %v", err)
	}
	defer a.close()

	a.startConsumer()

	// --- Start HTTP Server ---
	log.Printf("Starting server on port %s", cfg.AppPort)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := a.fiber.Listen(cfg.AppPort); err != nil {
			log.Printf("Server stopped: %v", err)
			quit <- syscall.SIGTERM
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	<-quit
	log.Println("Shutting down server...")

	if err := a.fiber.Shutdown(); err != nil {
		log.Printf("Error during Fiber shutdown: %v", err)
	}
	log.Println("Server gracefully stopped")
}

// sampleProducts is the catalog inserted into an empty store on first boot.
// Prices cover every tax bracket.
func sampleProducts() []models.Product {
	return []models.Product{
		{Name: "Ceramic Mug", Price: 85.50},
		{Name: "Mechanical Keyboard", Price: 750.00},
		{Name: "Wireless Mouse", Price: 1000.00},
		{Name: "Office Chair", Price: 1899.99},
		{Name: "27-inch Monitor", Price: 4200.00},
		{Name: "Standing Desk", Price: 5000.00},
		{Name: "Laptop", Price: 12999.00},
		{Name: "Espresso Machine", Price: 6450.25},
		{Name: "Notebook Set", Price: 12.75},
		{Name: "Desk Lamp", Price: 320.00},
	}
}
