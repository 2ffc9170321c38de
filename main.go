package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"gopkg.in/yaml.v2"

	"homeval/db"
	qhttp "homeval/http"
	"homeval/logging"
	"homeval/ml"
	"homeval/monitoring"
	"homeval/predict"
)

type Config struct {
	Model struct {
		ArtifactPath string `yaml:"artifact_path"`
		Watch        bool   `yaml:"watch"`
	} `yaml:"model"`
	Database struct {
		Path string `yaml:"path"`
	} `yaml:"database"`
	Http struct {
		Port           int      `yaml:"port"`
		Timeout        string   `yaml:"timeout"`
		StaticDir      string   `yaml:"static_dir"`
		AllowedOrigins []string `yaml:"allowed_origins"`
	} `yaml:"http"`
	Log logging.Config `yaml:"log"`
}

// HTTPTimeout parses the configured timeout. yaml.v2 cannot decode into a
// time.Duration, so the config keeps it as a string like "30s".
func (c *Config) HTTPTimeout() (time.Duration, error) {
	if c.Http.Timeout == "" {
		return 0, nil
	}
	return time.ParseDuration(c.Http.Timeout)
}

func main() {
	// 1. Load config
	config, err := loadConfig("config.yaml")
	if err != nil {
		// No logger yet.
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}

	logger := logging.New(config.Log)
	defer logger.Sync()

	// 2. Load the model artifact. The service cannot run without it.
	artifact, err := ml.LoadArtifact(config.Model.ArtifactPath)
	if err != nil {
		logger.Fatal("failed to load model artifact", zap.Error(err))
	}
	logger.Info("model artifact loaded",
		zap.String("path", config.Model.ArtifactPath),
		zap.Int("trees", len(artifact.Model.Trees)),
		zap.Float64("mae_100k", artifact.Metrics.MAE),
		zap.Float64("r2", artifact.Metrics.R2))

	// 3. Initialize prediction history
	if config.Database.Path != "" {
		if err := db.InitDB(config.Database.Path); err != nil {
			logger.Fatal("failed to initialize database", zap.Error(err))
		}
		defer db.Close()
		qhttp.EnableHistory(true)
		logger.Info("database initialized", zap.String("path", config.Database.Path))
	}

	// 4. Wire handlers
	engine := predict.NewEngine(artifact)
	hub := monitoring.NewHub(logger)
	go hub.Start()

	qhttp.SetLogger(logger)
	qhttp.SetEngine(engine)
	qhttp.SetModelMetrics(artifact.Metrics)
	qhttp.SetHub(hub)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if config.Model.Watch {
		go func() {
			if err := ml.WatchArtifact(ctx, config.Model.ArtifactPath, logger); err != nil {
				logger.Error("artifact watcher failed", zap.Error(err))
			}
		}()
	}

	// 5. Start HTTP server
	serverConfig := qhttp.DefaultServerConfig()
	if config.Http.Port > 0 {
		serverConfig.Port = config.Http.Port
	}
	timeout, err := config.HTTPTimeout()
	if err != nil {
		logger.Fatal("invalid http timeout", zap.String("timeout", config.Http.Timeout), zap.Error(err))
	}
	if timeout > 0 {
		serverConfig.Timeout = timeout
	}
	if config.Http.StaticDir != "" {
		serverConfig.StaticDir = config.Http.StaticDir
	}
	if len(config.Http.AllowedOrigins) > 0 {
		serverConfig.AllowedOrigins = config.Http.AllowedOrigins
	}

	server := qhttp.NewServer(serverConfig, logger)
	go func() {
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	// 6. Handle graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down")

	cancel()
	hub.Stop()
	if err := server.Stop(); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
	}

	logger.Info("exiting")
}

func loadConfig(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var config Config
	if err := yaml.NewDecoder(file).Decode(&config); err != nil {
		return nil, err
	}
	return &config, nil
}
