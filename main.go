package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"todo-manager/config"
	"todo-manager/database"
	"todo-manager/firebase"
	"todo-manager/handlers"
	"todo-manager/utilities"
)

func main() {
	configPath := flag.String("config", os.Getenv("CONFIG_PATH"), "path to a YAML or TOML config file")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	utilities.InitLogger(os.Stderr, cfg.Log.Level, cfg.Log.Format)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		utilities.Logger().Fatal("Server stopped", "err", err)
	}
	utilities.LogInfo("Shutdown complete")
}

func run(ctx context.Context, cfg *config.Config) error {
	store, err := openStore(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer store.Close()

	loc, err := cfg.Location()
	if err != nil {
		return err
	}
	opts := []handlers.Option{handlers.WithLocation(loc)}

	if cfg.Firebase.Enabled() {
		firebaseOpts, closeFirebase, err := setupFirebase(ctx, cfg.Firebase)
		if err != nil {
			return err
		}
		defer closeFirebase()
		opts = append(opts, firebaseOpts...)
	}

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: LoadRoutes(handlers.New(store, opts...), cfg.Server),
	}

	errCh := make(chan error, 1)
	go func() {
		utilities.LogInfo("Server started on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		utilities.LogInfo("Shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func openStore(ctx context.Context, cfg config.DatabaseConfig) (database.Store, error) {
	if cfg.Driver == config.DriverMemory {
		utilities.LogInfo("Using in-memory store; data is lost on exit")
		return database.NewMemoryStore(), nil
	}

	db, err := database.Connect(cfg)
	if err != nil {
		return nil, err
	}

	if cfg.AutoMigrate {
		if err := database.Migrate(ctx, db, cfg.Driver); err != nil {
			db.Close()
			return nil, err
		}
		utilities.LogInfo("Schema migrated for driver %s", cfg.Driver)
	}
	return database.NewSQLStore(db), nil
}

func setupFirebase(ctx context.Context, cfg config.FirebaseConfig) ([]handlers.Option, func(), error) {
	app, err := firebase.InitializeFirebase(ctx, cfg.CredentialsPath)
	if err != nil {
		return nil, nil, err
	}

	verifier, err := firebase.NewTokenVerifier(ctx, app)
	if err != nil {
		return nil, nil, err
	}

	activity, err := firebase.NewActivityLog(ctx, app, cfg.ActivityCollection)
	if err != nil {
		return nil, nil, err
	}

	opts := []handlers.Option{
		handlers.WithIdentity(verifier, cfg.AuthRequired),
		handlers.WithActivityLog(activity),
	}
	closeFn := func() {
		if err := activity.Close(); err != nil {
			utilities.LogError(err, "Error closing firestore client")
		}
	}
	return opts, closeFn, nil
}
