package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/spf13/viper"
	"github.com/streadway/amqp"
	"go.mongodb.org/mongo-driver/mongo"

	"shoestore/internal/handlers"
	"shoestore/internal/repositories"
	"shoestore/internal/services"
	"shoestore/pkg/rabbitmq"
)

func main() {
	// --- Configuration ---
	viper.SetDefault("APP_PORT", ":8080")
	viper.AutomaticEnv()

	appPort := viper.GetString("APP_PORT")
	databaseURL := viper.GetString("DATABASE_URL")
	databaseName := viper.GetString("DATABASE_NAME")
	rabbitMQURL := viper.GetString("RABBITMQ_URL")

	if databaseName == "" {
		databaseName = "shoestore"
	}

	// --- Initialize Store ---
	// The store is optional: with no DATABASE_URL the service still serves
	// traffic and every handler degrades per its own policy. The Mongo
	// driver dials lazily, so a bad server only fails at call time.
	var db *mongo.Database
	if databaseURL != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		client, database, err := repositories.Connect(ctx, databaseURL, databaseName)
		cancel()
		if err != nil {
			log.Printf("Warning: could not initialize MongoDB client: %v", err)
		} else {
			db = database
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := client.Disconnect(ctx); err != nil {
					log.Printf("Error disconnecting MongoDB client: %v", err)
				}
			}()
		}
	} else {
		log.Println("DATABASE_URL is not set, running without a store.")
	}

	// --- Initialize RabbitMQ Client ---
	// Also optional: catalog events are skipped when no broker is
	// configured or the broker is unreachable at startup.
	var mqClient *rabbitmq.Client
	if rabbitMQURL != "" {
		client, err := rabbitmq.NewClient(rabbitmq.Config{URL: rabbitMQURL})
		if err != nil {
			log.Printf("Warning: could not initialize RabbitMQ client: %v", err)
		} else {
			mqClient = client
			defer mqClient.Close()
		}
	} else {
		log.Println("RABBITMQ_URL is not set, catalog events disabled.")
	}

	// --- Initialize Repository ---
	shoeRepo := repositories.NewMongoShoeRepository(db)

	// --- Initialize Service ---
	var publisher services.EventPublisher
	if mqClient != nil {
		publisher = mqClient
	}
	shoeService := services.NewShoeService(shoeRepo, publisher)

	// --- Initialize Handlers ---
	shoeHandler := handlers.NewShoeHandler(shoeService)
	systemHandler := handlers.NewSystemHandler(shoeRepo)

	// --- Initialize Fiber App ---
	app := fiber.New()

	// --- Middleware ---
	app.Use(logger.New())
	// Deliberately permissive: any origin, any method and header, with
	// credentials. AllowOriginsFunc echoes the request origin back, which
	// is how Fiber permits the wildcard-plus-credentials combination.
	app.Use(cors.New(cors.Config{
		AllowOriginsFunc: func(origin string) bool { return true },
		AllowCredentials: true,
	}))

	// --- Routes ---
	systemHandler.RegisterRoutes(app)
	api := app.Group("/api")
	shoeHandler.RegisterRoutes(api)

	// --- Start RabbitMQ Consumer in a Goroutine ---
	if mqClient != nil {
		go func() {
			log.Println("Starting RabbitMQ consumer for catalog events...")
			messageHandler := func(msg amqp.Delivery) error {
				log.Printf("Received catalog event %s (tag %d): %s", msg.Type, msg.DeliveryTag, msg.Body)
				return nil
			}
			if err := mqClient.ConsumeCatalogEvents(messageHandler); err != nil {
				log.Printf("Failed to start RabbitMQ consumer: %v", err)
			}
		}()
	}

	// --- Start HTTP Server ---
	log.Printf("Starting server on port %s", appPort)

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
