package main // Entry point package

import (
	"context" // Context for startup calls
	"log"     // Logging library

	"github.com/joho/godotenv"    // Loads .env files into the environment
	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/inoryu-os/ai-reservation-system/internal/assistant"  // Conversational assistant
	"github.com/inoryu-os/ai-reservation-system/internal/booking"    // Reservation engine
	"github.com/inoryu-os/ai-reservation-system/internal/chat"       // Chat history store
	"github.com/inoryu-os/ai-reservation-system/internal/clock"      // Time normalization
	"github.com/inoryu-os/ai-reservation-system/internal/config"     // Internal config loader
	"github.com/inoryu-os/ai-reservation-system/internal/database"   // MySQL connection
	"github.com/inoryu-os/ai-reservation-system/internal/handler"    // HTTP handlers
	"github.com/inoryu-os/ai-reservation-system/internal/queue"      // Reservation event consumer
	"github.com/inoryu-os/ai-reservation-system/internal/repository" // Data access layer
	"github.com/inoryu-os/ai-reservation-system/internal/router"     // Internal router setup
)

func main() {
	_ = godotenv.Load() // Load .env when present; real env wins

	cfg := config.Load() // Load environment config

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName) // Connect to MySQL
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	if err := database.EnsureSchema(db); err != nil { // Create tables on first run
		log.Fatalf("schema: %v", err)
	}

	roomRepo := repository.NewRoomRepo(db)               // Room catalog access
	reservationRepo := repository.NewReservationRepo(db) // Reservation access

	rooms, err := roomRepo.Sync(context.Background(), config.LoadRooms()) // Reconcile catalog with config
	if err != nil {
		log.Fatalf("room sync: %v", err)
	}
	for _, rm := range rooms {
		log.Printf("room ready: id=%d name=%q capacity=%d", rm.ID, rm.Name, rm.Capacity)
	}

	clk := clock.New(cfg.TZOffsetHours)                      // Fixed-offset time anchor
	hours := booking.Hours{Open: cfg.OpenHour, Close: cfg.CloseHour} // Business window
	engine := booking.NewEngine(roomRepo, reservationRepo, clk, hours, cfg.CancelOwnerCheck)

	rdb := config.NewRedisClient() // Redis for cache, rate limit and chat history (nil = degraded)
	if rdb != nil {
		defer rdb.Close()
	}
	history := chat.NewStore(rdb, config.ChatHistoryTTL()) // Conversation memory per session

	helper := assistant.New(config.LoadAssistant(), engine, history) // nil when no API key is set
	if helper == nil {
		log.Println("assistant disabled: OPENAI_API_KEY not set")
	}

	go func() { // Consume reservation events into the activity log
		if err := queue.StartReservationConsumer(); err != nil {
			log.Printf("reservation consumer stopped: %v", err)
		}
	}()

	e := echo.New() // Create Echo instance
	router.RegisterRoutes(e, rdb,
		handler.NewReservationHandler(engine),
		handler.NewRoomHandler(engine),
		handler.NewChatHandler(helper)) // Register application routes

	addr := ":" + cfg.Port                                // Address string with port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env) // Print startup info

	if err := e.Start(addr); err != nil { // Start HTTP server
		log.Fatal(err) // Log and exit if server fails
	}
}
