package config

import (
	"context"
	"fmt"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port      string `env:"PORT,      default=8080"`
	Env       string `env:"ENV,       default=development"`
	JWTSecret string `env:"JWT_SECRET"`
	LogLevel  string `env:"LOG_LEVEL, default=info"`

	Mongo     MongoConfig
	Redis     RedisConfig
	Scoring   ScoringConfig
	Extractor ExtractorConfig
	Storage   StorageConfig
	SeedAdmin SeedAdminConfig
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=kyc_system"`
}

type RedisConfig struct {
	Addr string `env:"REDIS_ADDR, default=localhost:6379"`
	DB   int    `env:"REDIS_DB,   default=0"`
}

// ScoringConfig mirrors scoring.Config; defaults are the reference policy.
// The scorer validates the values once at startup and refuses to run on a
// bad policy.
type ScoringConfig struct {
	FaceWeight       float64 `env:"SCORE_FACE_WEIGHT,     default=0.40"`
	LivenessWeight   float64 `env:"SCORE_LIVENESS_WEIGHT, default=0.25"`
	BlurWeight       float64 `env:"SCORE_BLUR_WEIGHT,     default=0.20"`
	FieldWeight      float64 `env:"SCORE_FIELD_WEIGHT,    default=0.15"`
	BlurReference    float64 `env:"SCORE_BLUR_REFERENCE,  default=1000"`
	ApproveThreshold float64 `env:"SCORE_APPROVE_THRESHOLD, default=0.80"`
	FlagThreshold    float64 `env:"SCORE_FLAG_THRESHOLD,    default=0.50"`
}

// ExtractorConfig selects and tunes the signal extraction collaborator.
// With an empty BaseURL the service falls back to the static extractor
// (development only). Degrade substitutes worst-case signals for a failed
// extraction instead of surfacing the failure to the submitter.
type ExtractorConfig struct {
	BaseURL        string `env:"EXTRACTOR_BASE_URL"`
	TimeoutSeconds int    `env:"EXTRACTOR_TIMEOUT_SECONDS, default=30"`
	Degrade        bool   `env:"EXTRACTOR_DEGRADE, default=false"`
}

type StorageConfig struct {
	Dir string `env:"STORAGE_DIR, default=uploads"`
}

// SeedAdminConfig bootstraps the first reviewer account. Seeding only
// happens when a password is provided; there is no default credential.
type SeedAdminConfig struct {
	Username string `env:"SEED_ADMIN_USERNAME, default=admin"`
	Password string `env:"SEED_ADMIN_PASSWORD"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	var cfg Config
	if err := envconfig.Process(context.Background(), &cfg); err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return &cfg
}
