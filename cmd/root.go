package cmd

import (
	"errors"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/spigell/linkedintel/internal/cache"
	"github.com/spigell/linkedintel/internal/lookup"
	"github.com/spigell/linkedintel/internal/server"
)

const (
	app = "linkedintel"
)

type Config struct {
	Dataset *DatasetConfig `mapstructure:"dataset"`
	Cache   *CacheConfig   `mapstructure:"cache"`
	Lookup  lookup.Config  `mapstructure:"lookup"`
	Server  server.Config  `mapstructure:"server"`
	AI      *AIConfig      `mapstructure:"ai"`
}

type DatasetConfig struct {
	File            string `mapstructure:"file"`
	PostgresDSN     string `mapstructure:"postgres-dsn"`
	PostgresDSNFile string `mapstructure:"postgres-dsn-file"`
	Table           string `mapstructure:"table"`
	Aliases         string `mapstructure:"aliases"`
}

type CacheConfig struct {
	cache.BackendConfig `mapstructure:",squash"`
	MaxEntries          int           `mapstructure:"max-entries"`
	SweepInterval       time.Duration `mapstructure:"sweep-interval"`
}

// AIConfig selects the generative backend. When Enabled is unset the backend is
// switched on as soon as an API key resolves.
type AIConfig struct {
	Enabled  *bool         `mapstructure:"enabled"`
	Provider string        `mapstructure:"provider"`
	Gemini   *GeminiConfig `mapstructure:"gemini"`
}

type GeminiConfig struct {
	APIKey            string `mapstructure:"api-key"`
	APIKeyFile        string `mapstructure:"api-key-file"`
	Model             string `mapstructure:"model"`
	MaxRetries        int    `mapstructure:"max-retries"`
	RequestsPerMinute int    `mapstructure:"requests-per-minute"`
	MaxLogLength      int    `mapstructure:"max-log-length"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "linkedintel resolves salaries for scraped job listings and drafts outreach with Gemini",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	envBindings := map[string]string{
		"ai.gemini.api-key":      "GEMINI_API_KEY",
		"ai.gemini.api-key-file": "GEMINI_API_KEY_FILE",
		"cache.redis-url":        "LINKEDINTEL_REDIS_URL",
		"dataset.postgres-dsn":   "LINKEDINTEL_POSTGRES_DSN",
	}
	for key, env := range envBindings {
		if err := viper.BindEnv(key, env); err != nil {
			log.Fatalf("binding %s environment variable: %v", env, err)
		}
	}

	setDefaults()
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is linkedintel.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func setDefaults() {
	viper.SetDefault("dataset.file", "data/salary-db.json")
	viper.SetDefault("dataset.table", "salary_entries")
	viper.SetDefault("cache.kind", "memory")
	viper.SetDefault("cache.sqlite-path", "linkedintel-cache.db")
	viper.SetDefault("cache.max-entries", cache.DefaultMaxEntries)
	viper.SetDefault("cache.sweep-interval", "15m")
	viper.SetDefault("lookup.concurrency", lookup.DefaultConcurrency)
	viper.SetDefault("lookup.budget", lookup.DefaultBudget)
	viper.SetDefault("lookup.flight-timeout", lookup.DefaultFlightTimeout)
	viper.SetDefault("server.addr", ":3000")
	viper.SetDefault("server.max-batch", 50)
	viper.SetDefault("ai.provider", "gemini")
	viper.SetDefault("ai.gemini.model", "gemini-2.5-flash")
	viper.SetDefault("ai.gemini.max-retries", 3)
	viper.SetDefault("ai.gemini.max-log-length", 200)
}

func initConfig() {
	// A missing .env is fine; the variables may come from the environment.
	_ = godotenv.Load()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
		viper.SetConfigType("yaml")
	}

	// We can't proceed if the config file parsed with error. Without a file the
	// defaults and environment are used.
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			log.Fatal(err)
		}
	}
}

func getConfig() (*Config, error) {
	var config *Config
	err := viper.Unmarshal(&config)
	if err != nil {
		return config, err
	}

	return config, nil
}
