// Package di provides the hand-wired dependency injection container.
package di

import (
	"fmt"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"vending-backend/application/dialog"
	"vending-backend/application/ports"
	"vending-backend/application/services"
	domainservices "vending-backend/domain/services"
	"vending-backend/infrastructure/config"
	"vending-backend/infrastructure/facedetect"
	"vending-backend/infrastructure/postgres"
	"vending-backend/interfaces/alexa"
	"vending-backend/pkg/observability"
)

// Container holds every initialized dependency of the backend. Both
// entrypoints build one and serve its Router.
type Container struct {
	Config  *config.Config
	Logger  *zap.Logger
	Metrics *observability.Collector

	Store   ports.Store
	DB      *postgres.Store
	Face    ports.FaceGateway
	Engine  *services.RecommendationEngine
	Machine *dialog.StateMachine

	PolicyWatcher *config.PolicyWatcher
	Router        *chi.Mux

	shutdownFunctions []func() error
}

// NewContainer creates and initializes a new dependency injection container.
func NewContainer() (*Container, error) {
	container := &Container{
		shutdownFunctions: make([]func() error, 0),
	}

	if err := container.initialize(); err != nil {
		container.Shutdown()
		return nil, fmt.Errorf("failed to initialize container: %w", err)
	}

	return container, nil
}

// initialize sets up all dependencies in the correct order.
func (c *Container) initialize() error {
	// 1. Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	c.Config = cfg

	// 2. Logger
	if err := c.initializeLogger(); err != nil {
		return fmt.Errorf("initialize logger: %w", err)
	}

	// 3. Metrics
	if cfg.EnableMetrics {
		c.Metrics = observability.NewCollector(cfg.MetricsNamespace)
	}

	// 4. Gateways
	if err := c.initializeGateways(); err != nil {
		return fmt.Errorf("initialize gateways: %w", err)
	}

	// 5. Domain and application services
	c.initializeServices()

	// 6. Policy hot reload
	if err := c.initializePolicy(); err != nil {
		return fmt.Errorf("initialize policy: %w", err)
	}

	// 7. HTTP router
	c.Router = alexa.NewRouter(c.Machine, c.DB, c.Metrics, c.Logger).Setup()

	c.Logger.Info("container initialized",
		zap.String("environment", c.Config.Environment),
		zap.Bool("metrics", c.Config.EnableMetrics),
	)
	return nil
}

func (c *Container) initializeLogger() error {
	level, err := zapcore.ParseLevel(c.Config.LogLevel)
	if err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if c.Config.IsDevelopment() {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return err
	}

	c.Logger = logger
	c.addShutdownFunction(func() error {
		// Sync flushes buffered entries; stderr sync errors are benign.
		_ = logger.Sync()
		return nil
	})
	return nil
}

func (c *Container) initializeGateways() error {
	db, err := postgres.NewStore(c.Config.Postgres, c.Config.StoreTimeout, c.Metrics, c.Logger)
	if err != nil {
		return fmt.Errorf("connect store: %w", err)
	}
	c.DB = db
	c.addShutdownFunction(db.Close)

	c.Store = postgres.NewCachedStore(db, c.Config.CacheTTL, c.Metrics)
	c.Face = facedetect.NewClient(c.Config.FaceServerURL, c.Config.FaceTimeout, c.Metrics, c.Logger)
	return nil
}

func (c *Container) initializeServices() {
	scorer := domainservices.NewDefaultTemporalScorer(nil)
	c.Engine = services.NewRecommendationEngine(c.Store, scorer, c.Logger).WithMetrics(c.Metrics)
	c.Machine = dialog.NewStateMachine(c.Store, c.Face, c.Engine, c.Logger)
}

// initializePolicy loads the tuning policy and, when a file is configured,
// starts the watcher that pushes reloaded values into the running services.
func (c *Container) initializePolicy() error {
	apply := func(p *config.Policy) {
		c.Engine.SetWindow(p.Window())
		c.Engine.SetScorer(domainservices.NewDefaultTemporalScorer(&domainservices.TemporalSimilarityConfig{
			TimeOfDayWeight: p.TimeOfDayWeight,
			DayOfWeekWeight: p.DayOfWeekWeight,
		}))
		c.Machine.SetEmotionOffers(p.EmotionOffersEnabled)
		c.Logger.Info("policy applied",
			zap.Int("window_weeks", p.RecommendationWindowWeeks),
			zap.Float64("time_of_day_weight", p.TimeOfDayWeight),
			zap.Float64("day_of_week_weight", p.DayOfWeekWeight),
			zap.Bool("emotion_offers", p.EmotionOffersEnabled),
		)
	}

	if c.Config.PolicyPath == "" {
		apply(config.DefaultPolicy())
		return nil
	}

	watcher, err := config.NewPolicyWatcher(c.Config.PolicyPath, c.Logger)
	if err != nil {
		return fmt.Errorf("watch policy file: %w", err)
	}
	c.PolicyWatcher = watcher
	c.addShutdownFunction(func() error {
		watcher.Stop()
		return nil
	})

	apply(watcher.Current())
	watcher.OnChange(apply)
	watcher.Start()
	return nil
}

func (c *Container) addShutdownFunction(fn func() error) {
	c.shutdownFunctions = append(c.shutdownFunctions, fn)
}

// Shutdown releases all resources in reverse initialization order.
func (c *Container) Shutdown() {
	for i := len(c.shutdownFunctions) - 1; i >= 0; i-- {
		if err := c.shutdownFunctions[i](); err != nil && c.Logger != nil {
			c.Logger.Warn("shutdown step failed", zap.Error(err))
		}
	}
	c.shutdownFunctions = nil
}
