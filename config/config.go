package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/farellandr/theatre/internal/models"
)

type Config struct {
	Env  string `envconfig:"APP_ENV" default:"development"`
	Port string `envconfig:"PORT" default:"8080"`

	DBHost     string `envconfig:"DB_HOST" default:"localhost" validate:"required"`
	DBPort     string `envconfig:"DB_PORT" default:"5432" validate:"required,numeric"`
	DBUser     string `envconfig:"DB_USER" validate:"required"`
	DBPassword string `envconfig:"DB_PASSWORD"`
	DBName     string `envconfig:"DB_NAME" validate:"required"`

	JWTSecret       string        `envconfig:"JWT_SECRET" validate:"required,min=16"`
	AccessTokenTTL  time.Duration `envconfig:"ACCESS_TOKEN_TTL" default:"30m" validate:"gt=0"`
	RefreshTokenTTL time.Duration `envconfig:"REFRESH_TOKEN_TTL" default:"24h" validate:"gt=0"`

	MediaRoot string `envconfig:"MEDIA_ROOT" default:"./media" validate:"required"`
	MediaURL  string `envconfig:"MEDIA_URL" default:"/media" validate:"required,startswith=/"`

	RedisAddr     string        `envconfig:"REDIS_ADDR"`
	RedisPassword string        `envconfig:"REDIS_PASSWORD"`
	RedisDB       int           `envconfig:"REDIS_DB" default:"0"`
	CacheTTL      time.Duration `envconfig:"CACHE_TTL" default:"30s"`

	AMQPURL string `envconfig:"AMQP_URL"`

	AdminEmail    string `envconfig:"ADMIN_EMAIL" validate:"omitempty,email"`
	AdminPassword string `envconfig:"ADMIN_PASSWORD"`

	LogLevel string `envconfig:"LOG_LEVEL" default:"info" validate:"oneof=debug info warn error"`
}

func LoadConfig() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func (c *Config) DSN() string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort,
	)
}

func InitDatabase(cfg *Config) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, err
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	if err := seedSuperuser(db, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		return nil, err
	}

	return db, nil
}

// Migrate creates or updates every table the API needs.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Genre{},
		&models.Actor{},
		&models.Play{},
		&models.TheatreHall{},
		&models.Performance{},
		&models.Reservation{},
		&models.Ticket{},
	)
}

func seedSuperuser(db *gorm.DB, email, password string) error {
	if email == "" || password == "" {
		return nil
	}

	var existing models.User
	if result := db.Where("email = ?", email).First(&existing); result.Error == nil {
		return nil
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	admin := models.User{
		Email:       email,
		Password:    string(hashedPassword),
		IsStaff:     true,
		IsSuperuser: true,
	}
	return db.Create(&admin).Error
}
