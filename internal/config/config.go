package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/ArowuTest/ema-randomizer/internal/draw"
	"github.com/ArowuTest/ema-randomizer/internal/models"
)

// EnvironmentProduction selects AWS Secrets Manager as the credential source
const EnvironmentProduction = "production"

// Config holds all configuration for the application
type Config struct {
	Environment string
	LogLevel    string
	Server      ServerConfig
	JWT         JWTConfig
	MongoDB     MongoDBConfig
	AWS         AWSConfig
	MDH         MDHConfig
	Fields      FieldsConfig
	Randomizer  RandomizerConfig
}

// ServerConfig holds run trigger API configuration
type ServerConfig struct {
	Port         string
	AllowedHosts []string
	APIKeyHash   string // bcrypt hash of the X-API-Key value
}

// JWTConfig holds JWT-specific configuration
type JWTConfig struct {
	Secret string
}

// MongoDBConfig holds MongoDB-specific configuration. An empty URI keeps the audit trail in memory.
type MongoDBConfig struct {
	URI      string
	Database string
}

// AWSConfig holds the Secrets Manager settings used in production
type AWSConfig struct {
	Region     string
	SecretName string
}

// MDHConfig holds MyDataHelps API configuration
type MDHConfig struct {
	BaseURL        string
	TokenURL       string
	ProjectID      string
	ServiceAccount string
	PrivateKey     string
	PageSize       int
	TimeoutSeconds int
	MockAPI        bool
	MockSize       int
}

// FieldsConfig holds the participant custom field names
type FieldsConfig struct {
	Categories    string
	Bound         string
	HistoryPrefix string
	IssuedPrefix  string
	Status        string
}

// RandomizerConfig holds assignment run behaviour
type RandomizerConfig struct {
	MaxAttempts    int
	AbortOnInvalid bool
	BoundScope     string
	DryRun         bool
}

// envBindings maps configuration keys to the environment variables the deployment sets
var envBindings = map[string]string{
	"Environment":               "NODE_ENV",
	"LogLevel":                  "LOG_LEVEL",
	"Server.Port":               "PORT",
	"Server.APIKeyHash":         "API_KEY_HASH",
	"JWT.Secret":                "JWT_SECRET",
	"MongoDB.URI":               "MONGODB_URI",
	"MongoDB.Database":          "MONGODB_DATABASE",
	"AWS.Region":                "AWS_REGION",
	"AWS.SecretName":            "AWS_SECRET_NAME",
	"MDH.BaseURL":               "MDH_BASE_URL",
	"MDH.TokenURL":              "MDH_TOKEN_URL",
	"MDH.ProjectID":             "RKS_PROJECT_ID",
	"MDH.ServiceAccount":        "RKS_SERVICE_ACCOUNT",
	"MDH.PrivateKey":            "RKS_PRIVATE_KEY",
	"MDH.MockAPI":               "MDH_MOCK_API",
	"Randomizer.MaxAttempts":    "EMA_MAX_ATTEMPTS",
	"Randomizer.AbortOnInvalid": "EMA_ABORT_ON_INVALID",
	"Randomizer.BoundScope":     "EMA_BOUND_SCOPE",
	"Randomizer.DryRun":         "EMA_DRY_RUN",
}

// Load reads .env (if present), then config.yaml from the given paths and the environment
func Load(paths ...string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if len(paths) == 0 {
		paths = []string{".", "./config"}
	}
	for _, p := range paths {
		v.AddConfigPath(p)
	}
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, err
		}
	}

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		// It's okay if config file is not found, we'll use environment variables
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// setDefaults sets default values for configuration
func setDefaults(v *viper.Viper) {
	fields := models.DefaultFieldNames()

	v.SetDefault("Environment", "development")
	v.SetDefault("LogLevel", "info")
	v.SetDefault("Server.Port", "4000")
	v.SetDefault("Server.AllowedHosts", []string{"localhost:3000"})
	v.SetDefault("MongoDB.Database", "ema-randomizer")
	v.SetDefault("MDH.BaseURL", "https://designer.mydatahelps.org")
	v.SetDefault("MDH.PageSize", 100)
	v.SetDefault("MDH.TimeoutSeconds", 30)
	v.SetDefault("MDH.MockAPI", false)
	v.SetDefault("MDH.MockSize", 25)
	v.SetDefault("Fields.Categories", fields.Categories)
	v.SetDefault("Fields.Bound", fields.Bound)
	v.SetDefault("Fields.HistoryPrefix", fields.HistoryPrefix)
	v.SetDefault("Fields.IssuedPrefix", fields.IssuedPrefix)
	v.SetDefault("Fields.Status", fields.Status)
	v.SetDefault("Randomizer.MaxAttempts", draw.DefaultMaxAttempts)
	v.SetDefault("Randomizer.AbortOnInvalid", false)
	v.SetDefault("Randomizer.BoundScope", string(models.BoundScopeParticipant))
	v.SetDefault("Randomizer.DryRun", false)
}

// Validate checks values that have no safe fallback
func (c *Config) Validate() error {
	if !models.BoundScope(c.Randomizer.BoundScope).Valid() {
		return fmt.Errorf("invalid bound scope %q (want %q or %q)",
			c.Randomizer.BoundScope, models.BoundScopeParticipant, models.BoundScopeCategory)
	}
	if c.Randomizer.MaxAttempts < 1 {
		return fmt.Errorf("max attempts must be at least 1, got %d", c.Randomizer.MaxAttempts)
	}
	f := c.Fields
	if f.Categories == "" || f.Bound == "" || f.HistoryPrefix == "" || f.IssuedPrefix == "" || f.Status == "" {
		return errors.New("participant field names must not be empty")
	}
	return nil
}

// IsProduction reports whether credentials come from the secrets manager
func (c *Config) IsProduction() bool {
	return c.Environment == EnvironmentProduction
}

// FieldNames returns the configured participant field names
func (c *Config) FieldNames() models.FieldNames {
	return models.FieldNames{
		Categories:    c.Fields.Categories,
		Bound:         c.Fields.Bound,
		HistoryPrefix: c.Fields.HistoryPrefix,
		IssuedPrefix:  c.Fields.IssuedPrefix,
		Status:        c.Fields.Status,
	}
}
