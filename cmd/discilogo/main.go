package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/discilogo/discilogo/internal/checkin"
	"github.com/discilogo/discilogo/internal/config"
	"github.com/discilogo/discilogo/internal/database"
	"github.com/discilogo/discilogo/internal/habits"
	"github.com/discilogo/discilogo/internal/logging"
	"github.com/discilogo/discilogo/internal/notes"
	"github.com/discilogo/discilogo/internal/server"
)

var (
	cfgFile string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "discilogo",
		Short: "Daily habit accountability tracker",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig()
		},
	}

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the habit tracker HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context())
		},
	}

	checkinCmd := &cobra.Command{
		Use:   "checkin",
		Short: "Answer today's pending habits in the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheckin()
		},
	}

	setupFlags(rootCmd)
	rootCmd.AddCommand(serveCmd, checkinCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func setupFlags(cmd *cobra.Command) {
	config.ApplyDefaults(viper.GetViper())
	defaults := config.NewViper()
	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Path to configuration file")
	cmd.PersistentFlags().String("http-address", defaults.GetString("http.address"), "HTTP listen address")
	cmd.PersistentFlags().String("database-path", defaults.GetString("database.path"), "SQLite database path")
	cmd.PersistentFlags().String("log-level", defaults.GetString("log.level"), "Log level (debug, info, warn, error)")
	cmd.PersistentFlags().Int("recent-limit", defaults.GetInt("logs.recent_limit"), "Default number of entries in the recent-log listing")

	bindFlag(cmd, "http.address", "http-address")
	bindFlag(cmd, "database.path", "database-path")
	bindFlag(cmd, "log.level", "log-level")
	bindFlag(cmd, "logs.recent_limit", "recent-limit")
}

func bindFlag(cmd *cobra.Command, key, flag string) {
	if err := viper.BindPFlag(key, cmd.PersistentFlags().Lookup(flag)); err != nil {
		panic(err)
	}
}

func initConfig() error {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	}

	if err := viper.ReadInConfig(); err != nil {
		var configNotFound viper.ConfigFileNotFoundError
		if cfgFile != "" && errors.As(err, &configNotFound) {
			return err
		}
	}

	return nil
}

func runServer(ctx context.Context) error {
	appConfig, err := config.Load(viper.GetViper())
	if err != nil {
		return err
	}

	logger, err := logging.NewLogger(appConfig.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	db, err := database.OpenSQLite(appConfig.DatabasePath, logger)
	if err != nil {
		return err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	habitService, err := habits.NewService(habits.ServiceConfig{
		Database:   db,
		Clock:      time.Now,
		IDProvider: habits.NewUUIDProvider(),
		Logger:     logger,
	})
	if err != nil {
		return err
	}

	noteService, err := notes.NewService(notes.ServiceConfig{
		Database:   db,
		Clock:      time.Now,
		IDProvider: habits.NewUUIDProvider(),
		Logger:     logger,
	})
	if err != nil {
		return err
	}

	handler, err := server.NewHTTPHandler(server.Dependencies{
		HabitService: habitService,
		NoteService:  noteService,
		Logger:       logger,
		RecentLimit:  appConfig.RecentLimit,
	})
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:    appConfig.HTTPAddress,
		Handler: handler,
	}

	signalCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", zap.String("address", appConfig.HTTPAddress))
		err := httpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-signalCtx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

func runCheckin() error {
	appConfig, err := config.Load(viper.GetViper())
	if err != nil {
		return err
	}

	// The terminal owns the screen during a check-in session; structured
	// logs would tear the UI, so the store runs with a nop logger.
	db, err := database.OpenSQLite(appConfig.DatabasePath, zap.NewNop())
	if err != nil {
		return err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	habitService, err := habits.NewService(habits.ServiceConfig{
		Database:   db,
		Clock:      time.Now,
		IDProvider: habits.NewUUIDProvider(),
	})
	if err != nil {
		return err
	}

	program := tea.NewProgram(checkin.NewModel(habitService), tea.WithAltScreen())
	_, err = program.Run()
	return err
}
