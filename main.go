package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"roster-server-go/auth"
	"roster-server-go/config"
	"roster-server-go/db"
	"roster-server-go/handlers"
)

func main() {
	// .env is optional
	_ = godotenv.Load()

	cfg := config.Load()
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel})))
	gin.SetMode(cfg.GinMode)
	for _, key := range insecureDefaults(cfg) {
		slog.Warn("using built-in default; set it in the environment", "setting", key)
	}

	persister, err := newPersister(cfg)
	if err != nil {
		slog.Error("failed to set up persistence", "error", err)
		os.Exit(1)
	}

	store, err := openStore(cfg, persister)
	if err != nil {
		slog.Error("failed to load roster", "error", err)
		os.Exit(1)
	}
	slog.Info("roster loaded", "students", len(store.Students()), "classes", len(store.Classes()))

	authenticator, err := auth.NewStaticAuthenticator(cfg.AdminUsername, cfg.AdminPassword)
	if err != nil {
		slog.Error("failed to set up access gate", "error", err)
		os.Exit(1)
	}
	tokens := auth.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL)

	apiHandler := handlers.NewAPIHandler(store, authenticator, tokens)

	router := gin.Default()
	apiHandler.Register(router)

	port := ":" + cfg.Port
	slog.Info("starting server", "port", port, "backend", cfg.StoreBackend)
	if err := router.Run(port); err != nil {
		slog.Error("server exited with error", "error", err)
		os.Exit(1)
	}
}

// insecureDefaults lists the secret settings still at their published fallback.
func insecureDefaults(cfg *config.Config) []string {
	var keys []string
	if cfg.JWTSecret == config.DefaultJWTSecret {
		keys = append(keys, "JWT_SECRET")
	}
	if cfg.AdminPassword == config.DefaultAdminPassword {
		keys = append(keys, "ADMIN_PASSWORD")
	}
	return keys
}

func newPersister(cfg *config.Config) (db.Persister, error) {
	switch cfg.StoreBackend {
	case config.BackendFile:
		return db.NewFileStore(cfg.DataFile), nil
	case config.BackendRedis:
		client, err := db.InitializeRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return nil, err
		}
		return db.NewRedisStore(client, cfg.RedisKeyPrefix), nil
	default:
		return nil, fmt.Errorf("unknown STORE_BACKEND %q", cfg.StoreBackend)
	}
}

// openStore loads the saved roster. Corrupt state stops startup unless
// RECOVER_CORRUPT is set and the state lives in a file that can be moved aside.
func openStore(cfg *config.Config, persister db.Persister) (*db.Store, error) {
	store, err := db.Open(persister)
	if err == nil || !errors.Is(err, db.ErrCorruptState) || !cfg.RecoverCorrupt {
		return store, err
	}

	fileStore, ok := persister.(*db.FileStore)
	if !ok {
		return nil, fmt.Errorf("%w (automatic recovery only supports the file backend)", err)
	}
	backup, moveErr := fileStore.MoveAside(time.Now())
	if moveErr != nil {
		return nil, errors.Join(err, moveErr)
	}
	slog.Warn("saved roster was unreadable; moved aside and starting from defaults",
		"error", err, "backup", backup)
	return db.Open(persister)
}
