package main

import (
	"alcyxob/fitness-tracker/internal/cache"
	"alcyxob/fitness-tracker/internal/config"
	"alcyxob/fitness-tracker/internal/logging"
	"alcyxob/fitness-tracker/internal/repository/mongo"
	"alcyxob/fitness-tracker/internal/service"
	"alcyxob/fitness-tracker/internal/storage"
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	mongodriver "go.mongodb.org/mongo-driver/mongo"
)

// app holds the wired dependencies shared by every subcommand.
type app struct {
	cfg      config.Config
	client   *mongodriver.Client
	db       *mongodriver.Database
	auth     service.AuthService
	exercise service.ExerciseService
	workout  service.WorkoutService
	media    service.MediaService
}

// loadConfig reads configuration and sets up logging.
func loadConfig() (config.Config, error) {
	cfg, err := config.LoadConfig(viper.GetString("config_dir"))
	if err != nil {
		return cfg, fmt.Errorf("load config: %w", err)
	}
	logging.Setup(logging.LoggerSetupParams{
		LogFileName:   cfg.Log.File,
		LogToStdout:   cfg.Log.ToStdout,
		LogLevel:      cfg.Log.Level,
		LogFormatJSON: cfg.Log.JSON,
	})
	return cfg, nil
}

// connect opens the database only, for commands that need nothing else.
func connect(cfg config.Config) (*mongodriver.Client, *mongodriver.Database, error) {
	client, err := mongo.ConnectDB(cfg.Database.URI)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to MongoDB: %w", err)
	}
	logrus.WithField("database", cfg.Database.Name).Info("database connection established")
	return client, client.Database(cfg.Database.Name), nil
}

// newApp connects to MongoDB and S3 and wires repositories and services.
func newApp(ctx context.Context) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	client, db, err := connect(cfg)
	if err != nil {
		return nil, err
	}

	fileStorage, err := storage.NewS3Storage(ctx, cfg.S3)
	if err != nil {
		_ = mongo.DisconnectDB(client)
		return nil, fmt.Errorf("initialize S3 storage: %w", err)
	}

	// --- Repositories ---
	userRepo := mongo.NewMongoUserRepository(db)
	exerciseRepo := mongo.NewMongoExerciseRepository(db)
	workoutRepo := mongo.NewMongoWorkoutRepository(db)
	uploadRepo := mongo.NewMongoUploadRepository(db)
	txRunner := mongo.NewTxRunner(client)
	catalog := cache.NewExerciseCatalog(exerciseRepo, cfg.Cache.ExerciseSizeMB, cfg.Cache.ExerciseTTL)

	// --- Services ---
	workoutService := service.NewWorkoutService(workoutRepo, userRepo, catalog, uploadRepo, fileStorage, txRunner)
	workoutService.Subscribe(service.LoggingSubscriber)

	return &app{
		cfg:      cfg,
		client:   client,
		db:       db,
		auth:     service.NewAuthService(userRepo, cfg.JWT.Secret, cfg.JWT.Expiration),
		exercise: service.NewExerciseService(exerciseRepo, catalog, catalog),
		workout:  workoutService,
		media:    service.NewMediaService(workoutRepo, uploadRepo, fileStorage),
	}, nil
}

func (a *app) close() {
	if err := mongo.DisconnectDB(a.client); err != nil {
		logrus.WithError(err).Error("failed to disconnect MongoDB")
	}
}
