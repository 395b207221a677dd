package main

import (
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/streadway/amqp"

	"usermgmt/internal/handlers"
	"usermgmt/internal/middleware"
	"usermgmt/internal/models"
	"usermgmt/internal/repositories"
	"usermgmt/internal/services"
	"usermgmt/pkg/rabbitmq"

	"github.com/spf13/viper"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func main() {
	// --- Configuration ---
	// Set up Viper to read configuration from environment variables
	viper.SetDefault("APP_PORT", ":8080")
	viper.SetDefault("APP_VERSION", "1.0.0")
	viper.SetDefault("STORE_DRIVER", "memory")
	viper.SetDefault("DATABASE_DSN", "file::memory:?cache=shared")
	viper.SetDefault("RABBITMQ_URL", "") // empty disables event publishing
	viper.AutomaticEnv()

	appPort := viper.GetString("APP_PORT")
	appVersion := viper.GetString("APP_VERSION")

	// --- Initialize Repository ---
	userRepo, err := newUserRepository(viper.GetString("STORE_DRIVER"), viper.GetString("DATABASE_DSN"))
	if err != nil {
		log.Fatalf("Failed to initialize user repository: %v", err)
	}

	// --- Initialize RabbitMQ Client (optional) ---
	// Lifecycle events are a best-effort add-on; without a broker URL
	// the service runs purely in-process.
	var mqClient *rabbitmq.Client
	if rabbitMQURL := viper.GetString("RABBITMQ_URL"); rabbitMQURL != "" {
		mqClient, err = rabbitmq.NewClient(rabbitmq.Config{URL: rabbitMQURL})
		if err != nil {
			log.Fatalf("Failed to initialize RabbitMQ client: %v", err)
		}
		defer mqClient.Close()
	} else {
		log.Println("RABBITMQ_URL not set; user lifecycle events disabled")
	}

	// --- Initialize Services ---
	var events services.EventPublisher
	if mqClient != nil {
		events = mqClient
	}
	userService := services.NewUserService(userRepo, events)

	// --- Initialize Handlers ---
	userHandler := handlers.NewUserHandler(userService)

	// --- Initialize Fiber App ---
	app := fiber.New(fiber.Config{
		// Uncaught faults become an opaque 500; detail stays in the log.
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			var fiberErr *fiber.Error
			if errors.As(err, &fiberErr) {
				code = fiberErr.Code
			}
			if code == fiber.StatusInternalServerError {
				log.Printf("Unhandled error on %s %s: %v", c.Method(), c.Path(), err)
				return c.Status(code).JSON(fiber.Map{
					"message": "Internal server error",
				})
			}
			return c.Status(code).JSON(fiber.Map{
				"message": fiberErr.Message,
			})
		},
	})

	// --- Middleware ---
	// Panics land in the error handler above and surface as opaque 500s.
	app.Use(recover.New())
	app.Use(middleware.RequestID())
	app.Use(logger.New()) // Request logger

	// --- Root & Health Endpoints ---
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "Welcome to the User Management API!",
		})
	})

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(models.HealthCheck{
			Status:    "healthy",
			Timestamp: time.Now(),
			Version:   appVersion,
		})
	})

	// --- API Routes ---
	apiV1 := app.Group("/api/v1")
	userHandler.RegisterRoutes(apiV1)

	// --- Start RabbitMQ Consumer in a Goroutine ---
	if mqClient != nil {
		go func() {
			log.Println("Starting RabbitMQ consumer for user events...")
			messageHandler := func(msg amqp.Delivery) error {
				log.Printf("Received user event %s (Tag: %d): %s", msg.Type, msg.DeliveryTag, string(msg.Body))
				return nil
			}
			if consumerErr := mqClient.ConsumeUserEvents(messageHandler); consumerErr != nil {
				log.Printf("Failed to start RabbitMQ consumer: %v", consumerErr)
			}
		}()
	}

	// --- Start HTTP Server ---
	log.Printf("Starting server on port %s", appPort)

	// Graceful shutdown handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := app.Listen(appPort); err != nil {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	<-quit
	log.Println("Shutting down server...")

	if err := app.Shutdown(); err != nil {
		log.Printf("Error during Fiber shutdown: %v", err)
	}

	log.Println("Server gracefully stopped")
}

// newUserRepository builds the user store selected by driver: "memory"
// for the in-process map, "sqlite" or "postgres" for a GORM-backed
// store using dsn.
func newUserRepository(driver, dsn string) (repositories.UserRepository, error) {
	switch driver {
	case "memory":
		return repositories.NewMemoryUserRepository(), nil
	case "sqlite", "postgres":
		var dialector gorm.Dialector
		if driver == "sqlite" {
			dialector = sqlite.Open(dsn)
		} else {
			dialector = postgres.Open(dsn)
		}
		db, err := gorm.Open(dialector, &gorm.Config{})
		if err != nil {
			return nil, fmt.Errorf("failed to connect to %s database: %w", driver, err)
		}
		if err := db.AutoMigrate(&models.User{}); err != nil {
			return nil, fmt.Errorf("failed to migrate user schema: %w", err)
		}
		return repositories.NewGORMUserRepository(db)
	default:
		return nil, fmt.Errorf("unknown store driver %q", driver)
	}
}
