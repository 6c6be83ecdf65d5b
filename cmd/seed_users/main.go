package main

import (
	"context"
	"errors"
	"flag"

	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/config"
	"github.com/pageza/foodgram/backend/internal/database"
	"github.com/pageza/foodgram/backend/internal/logging"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/types"
	"github.com/pageza/foodgram/backend/internal/validation"
	"github.com/pageza/foodgram/backend/migrations"
)

type seedUser struct {
	types.RegisterRequest
	Staff bool
}

// Development accounts. The admin account is the only way to get a staff
// user without touching the database by hand.
var seedUsers = []seedUser{
	{RegisterRequest: types.RegisterRequest{Email: "admin@example.com", Username: "admin", FirstName: "Admin", LastName: "User"}, Staff: true},
	{RegisterRequest: types.RegisterRequest{Email: "john.doe@example.com", Username: "johndoe", FirstName: "John", LastName: "Doe"}},
	{RegisterRequest: types.RegisterRequest{Email: "jane.smith@example.com", Username: "janesmith", FirstName: "Jane", LastName: "Smith"}},
}

func main() {
	password := flag.String("password", "testpassword123", "Password for every seeded user")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to load configuration")
	}
	logging.Init(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	db, err := database.Open(cfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to connect to database")
	}
	if err := database.RunMigrations(db, migrations.FS); err != nil {
		logging.Fatal().Err(err).Msg("failed to run migrations")
	}

	auth := service.NewAuthService(db, cfg.JWTSecret, cfg.TokenTTL, nil)
	created, err := seed(context.Background(), db, auth, seedUsers, *password)
	if err != nil {
		logging.Fatal().Err(err).Msg("seeding failed")
	}
	logging.Info().Int("created", created).Int("total", len(seedUsers)).Msg("seeded users")
}

// seed registers every user that does not exist yet and returns how many
// were created. Existing users are only promoted to staff, never demoted.
func seed(ctx context.Context, db *gorm.DB, auth service.IAuthService, users []seedUser, password string) (int, error) {
	created := 0
	for _, u := range users {
		req := u.RegisterRequest
		req.Password = password
		if err := validation.ValidateStruct(&req); err != nil {
			return created, err
		}

		var user models.User
		err := db.WithContext(ctx).Where("email = ?", req.Email).Take(&user).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			registered, err := auth.Register(ctx, &req)
			if err != nil {
				return created, err
			}
			user = *registered
			created++
			logging.Info().Str("email", req.Email).Bool("staff", u.Staff).Msg("created user")
		case err != nil:
			return created, err
		default:
			logging.Info().Str("email", req.Email).Msg("user already exists, skipping")
		}

		if u.Staff && !user.IsStaff {
			if err := db.WithContext(ctx).Model(&user).Update("is_staff", true).Error; err != nil {
				return created, err
			}
		}
	}
	return created, nil
}
