package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/linkedintel/internal/ai/gemini"
	"github.com/spigell/linkedintel/internal/cache"
	"github.com/spigell/linkedintel/internal/location"
	"github.com/spigell/linkedintel/internal/logger"
	"github.com/spigell/linkedintel/internal/lookup"
	"github.com/spigell/linkedintel/internal/salary"
	"github.com/spigell/linkedintel/internal/salarydb"
	"github.com/spigell/linkedintel/internal/secrets"
	"github.com/spigell/linkedintel/internal/title"
)

// services holds everything a command needs to answer lookups.
type services struct {
	config      *Config
	logger      *zap.Logger
	dataset     *salarydb.Dataset
	backend     cache.Backend
	salaryCache *cache.Cache
	matchCache  *cache.Cache
	lookups     *lookup.Service
	assistant   *lookup.Assistant
}

func newLogger() (*zap.Logger, error) {
	return logger.New(viper.GetBool("json"), viper.GetBool("debug"))
}

// bootstrap loads the configuration and wires the lookup pipeline.
func bootstrap(ctx context.Context, log *zap.Logger) (*services, error) {
	config, err := getConfig()
	if err != nil {
		return nil, fmt.Errorf("getting a config: %w", err)
	}
	if config == nil {
		config = &Config{}
	}
	if config.Dataset == nil {
		config.Dataset = &DatasetConfig{}
	}
	if config.Cache == nil {
		config.Cache = &CacheConfig{}
	}

	titles, err := loadTitles(config.Dataset)
	if err != nil {
		return nil, err
	}

	dataset, err := loadDataset(ctx, config.Dataset, log)
	if err != nil {
		return nil, err
	}

	matcher := salary.NewMatcher(dataset.Entries, titles, location.NewResolver(), log.Named("matcher"))
	log.Info("salary dataset loaded",
		zap.Int("entries", matcher.Size()),
		zap.Int64("version", dataset.Version),
		zap.Int("aliases", titles.Size()),
	)

	backend, err := cache.Open(ctx, config.Cache.BackendConfig)
	if err != nil {
		return nil, fmt.Errorf("opening cache backend: %w", err)
	}

	cacheLogger := log.Named("cache")
	salaryCache := cache.New(backend.Store(cache.NamespaceSalary), cache.Options{
		TTL:        cache.SalaryTTL(),
		MaxEntries: config.Cache.MaxEntries,
	}, cacheLogger.With(zap.String("namespace", cache.NamespaceSalary)))
	matchCache := cache.New(backend.Store(cache.NamespaceMatch), cache.Options{
		TTL:        map[cache.Tier]time.Duration{cache.TierAI: cache.MatchTTL},
		MaxEntries: config.Cache.MaxEntries,
	}, cacheLogger.With(zap.String("namespace", cache.NamespaceMatch)))

	cleared, err := cache.EnsureVersion(ctx, backend, dataset.Version, salaryCache)
	if err != nil {
		log.Warn("checking cache version", zap.Error(err))
	} else if cleared {
		log.Info("salary cache cleared", zap.String("reason", "dataset version changed"))
	}

	rt := &services{
		config:      config,
		logger:      log,
		dataset:     dataset,
		backend:     backend,
		salaryCache: salaryCache,
		matchCache:  matchCache,
	}

	generator, err := newGenerator(ctx, config.AI, log)
	if err != nil {
		log.Warn("ai features disabled", zap.Error(err))
	}

	if generator != nil {
		rt.lookups = lookup.NewService(matcher, gemini.NewEstimator(generator, log.Named("estimator")), salaryCache, config.Lookup, log.Named("lookup"))
		rt.assistant = lookup.NewAssistant(
			gemini.NewResumeMatcher(generator, log.Named("resume-matcher")),
			gemini.NewConnector(generator, log.Named("connector")),
			matchCache,
			log.Named("assistant"),
		)
	} else {
		rt.lookups = lookup.NewService(matcher, nil, salaryCache, config.Lookup, log.Named("lookup"))
		rt.assistant = lookup.NewAssistant(nil, nil, matchCache, log.Named("assistant"))
	}

	return rt, nil
}

func (rt *services) Close() {
	if rt.backend == nil {
		return
	}
	if err := rt.backend.Close(); err != nil {
		rt.logger.Warn("closing cache backend", zap.Error(err))
	}
}

func loadTitles(cfg *DatasetConfig) (*title.Normalizer, error) {
	path := strings.TrimSpace(cfg.Aliases)
	if path == "" {
		table, err := title.DefaultAliases()
		if err != nil {
			return nil, fmt.Errorf("loading built-in aliases: %w", err)
		}
		return title.NewNormalizer(table), nil
	}

	table, err := title.LoadAliases(path)
	if err != nil {
		return nil, err
	}
	return title.NewNormalizer(table), nil
}

func loadDataset(ctx context.Context, cfg *DatasetConfig, log *zap.Logger) (*salarydb.Dataset, error) {
	var dataset *salarydb.Dataset

	dsn, err := secrets.Optional(secrets.Source{
		Name:  "postgres dsn",
		Value: cfg.PostgresDSN,
		Env:   "LINKEDINTEL_POSTGRES_DSN",
		File:  cfg.PostgresDSNFile,
	})
	if err != nil {
		return nil, err
	}

	if dsn != "" {
		log.Info("loading salary dataset from postgres", zap.String("table", cfg.Table))
		dataset, err = salarydb.LoadPostgres(ctx, dsn, cfg.Table)
	} else {
		dataset, err = salarydb.LoadFile(cfg.File)
	}
	if err != nil {
		return nil, fmt.Errorf("loading salary dataset: %w", err)
	}

	if err := salarydb.Validate(dataset.Entries); err != nil {
		return nil, fmt.Errorf("salary dataset is invalid: %w", err)
	}

	log.Debug("salary dataset validated", zap.Int("entries", len(dataset.Entries)))
	return dataset, nil
}

// newGenerator returns nil without an error when ai is disabled, or when it is
// left unset and no api key is configured.
func newGenerator(ctx context.Context, cfg *AIConfig, log *zap.Logger) (*gemini.Generator, error) {
	if cfg == nil || (cfg.Enabled != nil && !*cfg.Enabled) {
		return nil, nil
	}
	explicit := cfg.Enabled != nil

	provider := strings.TrimSpace(strings.ToLower(cfg.Provider))
	if provider != "" && provider != gemini.ProviderName {
		return nil, fmt.Errorf("unsupported ai provider: %s", cfg.Provider)
	}
	if cfg.Gemini == nil {
		if !explicit {
			return nil, nil
		}
		return nil, errors.New("gemini configuration is required when ai is enabled")
	}

	src := secrets.Source{
		Name:  "gemini api key",
		Value: cfg.Gemini.APIKey,
		Env:   "GEMINI_API_KEY",
		File:  cfg.Gemini.APIKeyFile,
	}

	load := secrets.Load
	if !explicit {
		load = secrets.Optional
	}
	apiKey, err := load(src)
	if err != nil {
		return nil, fmt.Errorf("%w (set GEMINI_API_KEY, GEMINI_API_KEY_FILE or ai.gemini.api-key-file)", err)
	}
	if apiKey == "" {
		log.Info("no gemini api key configured, ai features are off")
		return nil, nil
	}

	genLogger := log.Named("gemini").With(zap.Int("ai_retry_attempts", cfg.Gemini.MaxRetries))

	return gemini.NewGenerator(ctx, gemini.Config{
		APIKey:            apiKey,
		Model:             cfg.Gemini.Model,
		MaxRetries:        cfg.Gemini.MaxRetries,
		RequestsPerMinute: cfg.Gemini.RequestsPerMinute,
		MaxLogLength:      cfg.Gemini.MaxLogLength,
	}, genLogger)
}
