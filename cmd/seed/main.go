package main

import (
	"context"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"seatly/internal/bookings"
	"seatly/internal/events"
	"seatly/internal/shared/config"
	"seatly/internal/shared/database"
	"seatly/internal/users"
	"seatly/pkg/logger"
)

// Seeds a demo admin, a couple of users, events with seat maps and a few
// bookings. Intended for local development only.
func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	log := logger.New()

	db, err := database.InitDB(cfg, log)
	if err != nil {
		log.Error("database initialization failed", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := database.Migrate(db.PostgreSQL); err != nil {
		log.Error("migration failed", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	admin := seedUser(log, db, "Ada", "Marsh", "admin@seatly.dev", "admin-password", users.RoleAdmin)
	alice := seedUser(log, db, "Alice", "Nguyen", "alice@seatly.dev", "alice-password", users.RoleUser)
	bob := seedUser(log, db, "Bob", "Okafor", "bob@seatly.dev", "bob-password", users.RoleUser)

	concert := seedEvent(log, db, admin.ID, "Riverside Jazz Night", "Riverside Hall", "music",
		time.Now().AddDate(0, 0, 14), "19:30", 120, decimal.NewFromInt(45))
	meetup := seedEvent(log, db, admin.ID, "Go Meetup", "Tech Hub", "community",
		time.Now().AddDate(0, 0, 7), "18:00", 40, decimal.NewFromInt(0))

	repo := bookings.NewRepository(db.PostgreSQL)
	if _, err := repo.BookSeats(ctx, concert.ID, alice.ID, []string{"S1", "S2"}); err != nil {
		log.Warn("seed booking skipped", "error", err)
	}
	if _, err := repo.BookSeatCount(ctx, meetup.ID, bob.ID, 3); err != nil {
		log.Warn("seed booking skipped", "error", err)
	}

	log.Info("seed complete")
}

func seedUser(log *logger.Logger, db *database.DB, first, last, email, password string, role users.Role) *users.User {
	var existing users.User
	if err := db.PostgreSQL.Where("email = ?", email).First(&existing).Error; err == nil {
		return &existing
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Error("password hash failed", "error", err)
		os.Exit(1)
	}

	user := &users.User{
		ID:        uuid.New(),
		FirstName: first,
		LastName:  last,
		Email:     email,
		Password:  string(hashed),
		Role:      role,
	}
	if err := db.PostgreSQL.Create(user).Error; err != nil {
		log.Error("seed user failed", "email", email, "error", err)
		os.Exit(1)
	}
	log.Info("seeded user", "email", email, "role", role)
	return user
}

func seedEvent(log *logger.Logger, db *database.DB, creator uuid.UUID, title, venue, category string,
	date time.Time, startTime string, seats int, price decimal.Decimal) *events.Event {

	var existing events.Event
	if err := db.PostgreSQL.Where("title = ?", title).First(&existing).Error; err == nil {
		return &existing
	}

	event := &events.Event{
		ID:             uuid.New(),
		Title:          title,
		Venue:          venue,
		Category:       category,
		Date:           date,
		StartTime:      startTime,
		TotalSeats:     seats,
		AvailableSeats: seats,
		Price:          price,
		Status:         events.StatusUpcoming,
		Seats:          events.GenerateSeats(seats),
		CreatedBy:      creator,
	}
	if err := db.PostgreSQL.Create(event).Error; err != nil {
		log.Error("seed event failed", "title", title, "error", err)
		os.Exit(1)
	}
	log.Info("seeded event", "title", title, "seats", seats)
	return event
}
