package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/spf13/viper"
	"github.com/streadway/amqp"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"cardmarket/internal/handlers"
	"cardmarket/internal/middleware"
	"cardmarket/internal/models"
	"cardmarket/internal/repositories"
	"cardmarket/internal/services"
	"cardmarket/pkg/rabbitmq"
)

// loadConfig sets configuration defaults and reads overrides from the
// environment. Safe to call more than once.
func loadConfig() {
	viper.SetDefault("APP_PORT", ":8080")
	viper.SetDefault("STORAGE_DRIVER", "memory") // memory | sqlite | postgres
	viper.SetDefault("DATABASE_DSN", "")
	viper.SetDefault("RABBITMQ_URL", "") // empty disables catalog events
	viper.SetDefault("UPLOAD_DIR", "./uploads")
	viper.SetDefault("CREATOR_ID", "demo-user") // stub identity until real auth lands
	viper.AutomaticEnv()
}

// newCardRepository builds the catalog store selected by STORAGE_DRIVER. The
// memory driver holds the catalog for the process lifetime only; each process
// instance has its own catalog, so multi-instance deployments need one of the
// database drivers to agree on state.
func newCardRepository() (repositories.CardRepository, error) {
	driver := viper.GetString("STORAGE_DRIVER")
	dsn := viper.GetString("DATABASE_DSN")

	switch driver {
	case "memory":
		return repositories.NewMemoryCardRepository(), nil
	case "sqlite":
		if dsn == "" {
			dsn = "cardmarket.db"
		}
		db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite database: %w", err)
		}
		if err := db.AutoMigrate(&models.Card{}); err != nil {
			return nil, fmt.Errorf("failed to migrate card schema: %w", err)
		}
		return repositories.NewGORMCardRepository(db), nil
	case "postgres":
		db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
		if err != nil {
			return nil, fmt.Errorf("failed to connect to postgres: %w", err)
		}
		if err := db.AutoMigrate(&models.Card{}); err != nil {
			return nil, fmt.Errorf("failed to migrate card schema: %w", err)
		}
		return repositories.NewGORMCardRepository(db), nil
	default:
		return nil, fmt.Errorf("unknown STORAGE_DRIVER %q", driver)
	}
}

// NewApp builds the Fiber application with repositories, services and routes
// wired according to the current configuration. The event publisher may be
// nil, which disables catalog events.
func NewApp(events services.EventPublisher) (*fiber.App, error) {
	loadConfig()

	cardRepo, err := newCardRepository()
	if err != nil {
		return nil, err
	}

	cardService := services.NewCardService(cardRepo, events)

	cardHandler := handlers.NewCardHandler(cardService)
	uploadDir := viper.GetString("UPLOAD_DIR")
	uploadHandler := handlers.NewUploadHandler(uploadDir)

	app := fiber.New()

	app.Use(logger.New()) // Request logger

	// Uploaded imagery is served straight from the upload directory.
	app.Static("/uploads", uploadDir)

	// All API routes run behind the identity middleware so handlers always
	// see a creator id.
	apiV1 := app.Group("/api/v1", middleware.CreatorIdentity(viper.GetString("CREATOR_ID")))

	cardHandler.RegisterRoutes(apiV1)
	uploadHandler.RegisterRoutes(apiV1)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	return app, nil
}

func main() {
	loadConfig()

	appPort := viper.GetString("APP_PORT")
	rabbitMQURL := viper.GetString("RABBITMQ_URL")

	// Catalog events are optional: without a broker URL the service runs
	// standalone and the publisher stays nil.
	var mqClient *rabbitmq.Client
	var events services.EventPublisher
	if rabbitMQURL != "" {
		var err error
		mqClient, err = rabbitmq.NewClient(rabbitmq.Config{URL: rabbitMQURL})
		if err != nil {
			log.Fatalf("Failed to initialize RabbitMQ client: %v", err)
		}
		defer mqClient.Close()
		events = mqClient
	}

	app, err := NewApp(events)
	if err != nil {
		log.Fatalf("Failed to create app: %v", err)
	}

	// Consume catalog events for visibility. Real consumers (search index,
	// cache invalidation) would replace this logging handler.
	if mqClient != nil {
		go func() {
			log.Println("Starting RabbitMQ consumer for catalog events...")
			messageHandler := func(msg amqp.Delivery) error {
				log.Printf("Received Catalog Event (Tag: %d): %s", msg.DeliveryTag, string(msg.Body))
				return nil
			}
			if consumerErr := mqClient.ConsumeCatalogEvents(messageHandler); consumerErr != nil {
				log.Printf("Failed to start RabbitMQ consumer: %v", consumerErr)
			}
		}()
	}

	log.Printf("Starting server on port %s", appPort)

	// Graceful shutdown handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := app.Listen(appPort); err != nil {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	<-quit
	log.Println("Shutting down server...")

	if err := app.Shutdown(); err != nil {
		log.Printf("Error during Fiber shutdown: %v", err)
	}

	log.Println("Server gracefully stopped")
}
