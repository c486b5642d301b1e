package main

import (
	"alcyxob/fitness-tracker/internal/api"
	"alcyxob/fitness-tracker/internal/metrics"
	"alcyxob/fitness-tracker/internal/repository/mongo"
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

const indexTimeout = time.Minute

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}
}

func runServe(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	// Index creation runs in the background so startup is not blocked.
	go func() {
		idxCtx, cancel := context.WithTimeout(context.Background(), indexTimeout)
		defer cancel()
		if err := mongo.EnsureIndexes(idxCtx, a.db); err != nil {
			logrus.WithError(err).Error("index creation failed")
			return
		}
		logrus.Info("index creation completed")
	}()

	var (
		manager  *metrics.Manager
		gatherer prometheus.Gatherer
	)
	if a.cfg.Metrics.Enabled {
		reg := metrics.SetupPrometheus()
		manager = metrics.NewManager(a.cfg.Metrics.Namespace, a.cfg.Metrics.Subsystem, reg)
		gatherer = reg
		a.workout.Subscribe(manager.ObserveWorkoutEvent)
	}

	gin.SetMode(a.cfg.Server.GinMode)
	router := gin.New()
	api.SetupRoutes(router, a.cfg.JWT.Secret, api.Services{
		Auth:     a.auth,
		Exercise: a.exercise,
		Workout:  a.workout,
		Media:    a.media,
	}, manager, gatherer)

	server := &http.Server{
		Addr:         a.cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  a.cfg.Server.ReadTimeout,
		WriteTimeout: a.cfg.Server.WriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logrus.WithField("address", server.Addr).Info("server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}

	logrus.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	logrus.Info("server exited")
	return nil
}
