package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"superlearn/learning-portal/learning-portal-backend/internal/assistant"
	"superlearn/learning-portal/learning-portal-backend/internal/journey"
	"superlearn/learning-portal/learning-portal-backend/internal/mint"
	"superlearn/learning-portal/learning-portal-backend/internal/sessions"
	"superlearn/learning-portal/learning-portal-backend/internal/wallet"
	"superlearn/learning-portal/learning-portal-backend/pkg/cloud"
)

// Config represents the application configuration
type Config struct {
	Server    ServerConfig     `json:"server"`
	Journey   JourneyConfig    `json:"journey"`
	Assistant assistant.Config `json:"assistant"`
	Security  SecurityConfig   `json:"security"`
	Sessions  SessionsConfig   `json:"sessions"`
	Database  DatabaseConfig   `json:"database"`
	Activity  ActivityConfig   `json:"activity"`
	AWS       cloud.AWSConfig  `json:"aws"`
	Storage   StorageConfig    `json:"storage"`
	Email     EmailConfig      `json:"email"`
	SNS       SNSConfig        `json:"sns"`
	Logging   LoggingConfig    `json:"logging"`
}

// ServerConfig represents server configuration
type ServerConfig struct {
	Host            string        `json:"host"`
	Port            int           `json:"port"`
	ReadTimeout     time.Duration `json:"read_timeout"`
	WriteTimeout    time.Duration `json:"write_timeout"`
	IdleTimeout     time.Duration `json:"idle_timeout"`
	ShutdownTimeout time.Duration `json:"shutdown_timeout"`
}

// JourneyConfig tunes pacing and the quiz
type JourneyConfig struct {
	WalletPacing     time.Duration `json:"wallet_pacing"`
	LinkWalletPacing time.Duration `json:"link_wallet_pacing"`
	WalletTimeout    time.Duration `json:"wallet_timeout"`
	WalletLatency    time.Duration `json:"wallet_latency"`
	MintDelay        time.Duration `json:"mint_delay"`
	PassThreshold    int           `json:"pass_threshold"`
}

// SecurityConfig
type SecurityConfig struct {
	JWTSecret string        `json:"jwt_secret"`
	TokenTTL  time.Duration `json:"token_ttl"`

	// AdminToken unlocks the session reports; empty disables them
	AdminToken string `json:"admin_token"`
}

// SessionsConfig bounds the in-memory session store
type SessionsConfig struct {
	IdleTTL       time.Duration `json:"idle_ttl"`
	MaxSessions   int           `json:"max_sessions"`
	SweepSchedule string        `json:"sweep_schedule"`
}

// DatabaseConfig represents database configuration
type DatabaseConfig struct {
	Host     string `json:"host"`
	Port     int    `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	DBName   string `json:"db_name"`
	SSLMode  string `json:"ssl_mode"`
}

// Activity log backends
const (
	ActivityLog           = "log"
	ActivityPostgres      = "postgres"
	ActivityDynamoDB      = "dynamodb"
	ActivityElasticsearch = "elasticsearch"
	ActivityMongoDB       = "mongodb"
)

// ActivityConfig selects where journey events are logged
type ActivityConfig struct {
	Backend          string   `json:"backend"`
	Buffer           int      `json:"buffer"`
	DynamoTable      string   `json:"dynamo_table"`
	ElasticAddresses []string `json:"elastic_addresses"`
	ElasticIndex     string   `json:"elastic_index"`
	MongoURI         string   `json:"mongo_uri"`
	MongoDatabase    string   `json:"mongo_database"`
	MongoCollection  string   `json:"mongo_collection"`
}

// StorageConfig points at the badge metadata bucket. An empty bucket keeps
// metadata in memory.
type StorageConfig struct {
	Bucket   string `json:"bucket"`
	ImageURL string `json:"image_url"`
}

// EmailConfig enables the badge email when From is set
type EmailConfig struct {
	From string `json:"from"`
}

// SNSConfig enables badge announcements when TopicARN is set
type SNSConfig struct {
	TopicARN string `json:"topic_arn"`
}

// LoggingConfig
type LoggingConfig struct {
	Level string `json:"level"`
}

// Default returns the configuration used when nothing is overridden
func Default() *Config {
	mintDefaults := mint.DefaultSimulatedConfig()
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 5 * time.Second,
		},
		Journey: JourneyConfig{
			WalletPacing:     time.Second,
			LinkWalletPacing: 500 * time.Millisecond,
			WalletTimeout:    2 * time.Minute,
			WalletLatency:    1500 * time.Millisecond,
			MintDelay:        mintDefaults.Delay,
			PassThreshold:    2,
		},
		Security: SecurityConfig{
			TokenTTL: 24 * time.Hour,
		},
		Sessions: SessionsConfig{
			IdleTTL:       2 * time.Hour,
			MaxSessions:   10000,
			SweepSchedule: sessions.DefaultSweepSchedule,
		},
		Database: DatabaseConfig{
			Host:    "localhost",
			Port:    5432,
			User:    os.Getenv("USER"),
			DBName:  "superlearn_portal",
			SSLMode: "disable",
		},
		Activity: ActivityConfig{
			Backend:         ActivityLog,
			Buffer:          256,
			ElasticIndex:    "journey-activity",
			MongoDatabase:   "superlearn",
			MongoCollection: "journey_activity",
		},
		AWS: cloud.AWSConfig{
			Region: "us-east-1",
		},
		Storage: StorageConfig{
			ImageURL: mintDefaults.ImageURL,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// LoadConfig loads configuration from file and environment variables. A .env
// file in the working directory is read first when present.
func LoadConfig(configPath string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	config := Default()

	// Load from file if exists
	if configPath != "" {
		data, err := os.ReadFile(configPath)
		switch {
		case err == nil:
			if err := json.Unmarshal(data, config); err != nil {
				return nil, fmt.Errorf("failed to parse config file: %w", err)
			}
		case !errors.Is(err, os.ErrNotExist):
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if err := overrideWithEnv(config); err != nil {
		return nil, err
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func overrideWithEnv(config *Config) error {
	var errs []error
	str := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	num := func(key string, dst *int) {
		if v := os.Getenv(key); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = n
		}
	}
	dur := func(key string, dst *time.Duration) {
		if v := os.Getenv(key); v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = d
		}
	}

	str("SERVER_HOST", &config.Server.Host)
	num("SERVER_PORT", &config.Server.Port)

	dur("JOURNEY_WALLET_PACING", &config.Journey.WalletPacing)
	dur("JOURNEY_LINK_WALLET_PACING", &config.Journey.LinkWalletPacing)
	dur("JOURNEY_WALLET_TIMEOUT", &config.Journey.WalletTimeout)
	dur("JOURNEY_MINT_DELAY", &config.Journey.MintDelay)
	num("JOURNEY_PASS_THRESHOLD", &config.Journey.PassThreshold)

	str("ASSISTANT_PROVIDER", &config.Assistant.Provider)
	str("ASSISTANT_MODEL", &config.Assistant.Model)
	str("ASSISTANT_BASE_URL", &config.Assistant.BaseURL)
	dur("ASSISTANT_TIMEOUT", &config.Assistant.Timeout)
	str("ASSISTANT_API_KEY", &config.Assistant.APIKey)
	if config.Assistant.APIKey == "" {
		switch config.Assistant.Provider {
		case assistant.ProviderGemini:
			str("GEMINI_API_KEY", &config.Assistant.APIKey)
		case "", assistant.ProviderAnthropic:
			str("ANTHROPIC_API_KEY", &config.Assistant.APIKey)
		}
	}

	str("JWT_SECRET", &config.Security.JWTSecret)
	dur("JWT_TOKEN_TTL", &config.Security.TokenTTL)
	str("ADMIN_TOKEN", &config.Security.AdminToken)

	dur("SESSION_IDLE_TTL", &config.Sessions.IdleTTL)
	num("SESSION_MAX", &config.Sessions.MaxSessions)
	str("SESSION_SWEEP_SCHEDULE", &config.Sessions.SweepSchedule)

	str("DATABASE_HOST", &config.Database.Host)
	num("DATABASE_PORT", &config.Database.Port)
	str("DATABASE_USER", &config.Database.User)
	str("DATABASE_PASSWORD", &config.Database.Password)
	str("DATABASE_DBNAME", &config.Database.DBName)
	str("DATABASE_SSLMODE", &config.Database.SSLMode)

	str("ACTIVITY_BACKEND", &config.Activity.Backend)
	str("ACTIVITY_DYNAMODB_TABLE", &config.Activity.DynamoTable)
	if v := os.Getenv("ACTIVITY_ELASTIC_ADDRESSES"); v != "" {
		config.Activity.ElasticAddresses = strings.Split(v, ",")
	}
	str("ACTIVITY_ELASTIC_INDEX", &config.Activity.ElasticIndex)
	str("ACTIVITY_MONGO_URI", &config.Activity.MongoURI)
	str("ACTIVITY_MONGO_DATABASE", &config.Activity.MongoDatabase)

	str("AWS_REGION", &config.AWS.Region)
	str("AWS_ACCESS_KEY_ID", &config.AWS.AccessKeyID)
	str("AWS_SECRET_ACCESS_KEY", &config.AWS.SecretAccessKey)
	str("AWS_ENDPOINT", &config.AWS.Endpoint)
	str("BADGE_BUCKET", &config.Storage.Bucket)
	str("BADGE_IMAGE_URL", &config.Storage.ImageURL)
	str("SES_FROM", &config.Email.From)
	str("SNS_TOPIC_ARN", &config.SNS.TopicARN)

	str("LOG_LEVEL", &config.Logging.Level)

	return errors.Join(errs...)
}

// Validate rejects settings the server cannot start with
func (c *Config) Validate() error {
	var errs []error
	if c.Security.JWTSecret == "" {
		errs = append(errs, errors.New("security.jwt_secret is required"))
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port %d out of range", c.Server.Port))
	}
	if c.Sessions.IdleTTL <= 0 {
		errs = append(errs, errors.New("sessions.idle_ttl must be positive"))
	}
	switch c.Activity.Backend {
	case ActivityLog, ActivityPostgres:
	case ActivityDynamoDB:
		if c.Activity.DynamoTable == "" {
			errs = append(errs, errors.New("activity.dynamo_table is required for the dynamodb backend"))
		}
	case ActivityElasticsearch:
		if len(c.Activity.ElasticAddresses) == 0 {
			errs = append(errs, errors.New("activity.elastic_addresses is required for the elasticsearch backend"))
		}
	case ActivityMongoDB:
		if c.Activity.MongoURI == "" {
			errs = append(errs, errors.New("activity.mongo_uri is required for the mongodb backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown activity backend %q", c.Activity.Backend))
	}
	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("unknown log level %q", c.Logging.Level))
	}
	return errors.Join(errs...)
}

// Flow applies the journey settings to the default six-step flow
func (c *JourneyConfig) Flow() journey.Flow {
	flow := journey.DefaultFlow()
	flow.PacingDelays = map[journey.StepID]time.Duration{
		journey.StepWallet:     c.WalletPacing,
		journey.StepLinkWallet: c.LinkWalletPacing,
	}
	if c.WalletTimeout > 0 {
		flow.WalletTimeout = c.WalletTimeout
	}
	flow.PassThreshold = c.PassThreshold
	return flow
}

// Wallet returns the simulated wallet settings
func (c *JourneyConfig) Wallet() wallet.SimulatedConfig {
	return wallet.SimulatedConfig{Latency: c.WalletLatency}
}

// Minter returns the simulated minter settings
func (c *Config) Minter() mint.SimulatedConfig {
	mc := mint.DefaultSimulatedConfig()
	mc.Delay = c.Journey.MintDelay
	if c.Storage.Bucket != "" {
		mc.MetadataBucket = c.Storage.Bucket
	}
	if c.Storage.ImageURL != "" {
		mc.ImageURL = c.Storage.ImageURL
	}
	return mc
}

// GetDatabaseURL returns the database connection string
func (c *DatabaseConfig) GetDatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode)
}

// GetServerAddr returns the server address
func (c *ServerConfig) GetServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
