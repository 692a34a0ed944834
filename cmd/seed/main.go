package main // Demo data seeder

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/joho/godotenv"

	"github.com/inoryu-os/ai-reservation-system/internal/booking"
	"github.com/inoryu-os/ai-reservation-system/internal/clock"
	"github.com/inoryu-os/ai-reservation-system/internal/config"
	"github.com/inoryu-os/ai-reservation-system/internal/database"
	"github.com/inoryu-os/ai-reservation-system/internal/repository"
)

// demoBooking is one sample reservation to create on the target date.
type demoBooking struct {
	roomName  string
	requester string
	start     string
	end       string
}

// Room A fills moderately, Room B stays mostly free, Room C is busy and
// Room D gets a few long blocks, so availability queries show a spread.
var demoBookings = []demoBooking{
	{"Room A", "userA", "09:00", "10:30"},
	{"Room A", "userB", "11:00", "12:00"},
	{"Room A", "userC", "14:00", "15:30"},
	{"Room A", "userA", "16:00", "17:00"},

	{"Room B", "userB", "10:00", "11:00"},
	{"Room B", "userD", "13:00", "14:30"},
	{"Room B", "userA", "18:00", "19:00"},

	{"Room C", "userC", "08:00", "09:00"},
	{"Room C", "userA", "09:30", "11:00"},
	{"Room C", "userB", "11:30", "13:00"},
	{"Room C", "userD", "14:00", "16:00"},
	{"Room C", "userC", "16:30", "18:00"},

	{"Room D", "userA", "10:00", "12:00"},
	{"Room D", "userB", "13:00", "15:30"},
	{"Room D", "userC", "16:00", "18:30"},
}

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	clk := clock.New(cfg.TZOffsetHours)

	date := flag.String("date", clk.FormatDate(clk.Now().Add(24*time.Hour)), "target date (YYYY-MM-DD), defaults to tomorrow")
	flag.Parse()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	if err := database.EnsureSchema(db); err != nil {
		log.Fatalf("schema: %v", err)
	}

	ctx := context.Background()

	roomRepo := repository.NewRoomRepo(db)
	reservationRepo := repository.NewReservationRepo(db)

	rooms, err := roomRepo.Sync(ctx, config.LoadRooms())
	if err != nil {
		log.Fatalf("room sync: %v", err)
	}
	byName := make(map[string]uint64, len(rooms))
	for _, rm := range rooms {
		byName[rm.Name] = rm.ID
	}

	// Clear the target day first so reseeding is repeatable.
	from, to, err := clk.DayRange(*date)
	if err != nil {
		log.Fatalf("invalid date %q: %v", *date, err)
	}
	removed, err := reservationRepo.DeleteBetween(ctx, from, to)
	if err != nil {
		log.Fatalf("clearing %s: %v", *date, err)
	}
	log.Printf("removed %d existing reservations on %s", removed, *date)

	hours := booking.Hours{Open: cfg.OpenHour, Close: cfg.CloseHour}
	engine := booking.NewEngine(roomRepo, reservationRepo, clk, hours, cfg.CancelOwnerCheck)

	created := 0
	for _, d := range demoBookings {
		roomID, ok := byName[d.roomName]
		if !ok {
			log.Printf("skipping %q: room not configured", d.roomName)
			continue
		}
		res, err := engine.Create(ctx, roomID, d.requester, *date, d.start, d.end)
		if err != nil {
			log.Printf("skipping %s %s-%s for %s: %v", d.roomName, d.start, d.end, d.requester, err)
			continue
		}
		log.Printf("created: %s %s-%s for %s (id=%d)", res.RoomName, d.start, d.end, d.requester, res.ID)
		created++
	}
	log.Printf("seeded %d reservations on %s", created, *date)
}
