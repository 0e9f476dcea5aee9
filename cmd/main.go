package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/YelzhanWeb/dinehub/internal/adapter/auth"
	"github.com/YelzhanWeb/dinehub/internal/adapter/logger"
	"github.com/YelzhanWeb/dinehub/internal/adapter/metrics"
	"github.com/YelzhanWeb/dinehub/internal/adapter/outletfile"
	"github.com/YelzhanWeb/dinehub/internal/adapter/postgres"
	"github.com/YelzhanWeb/dinehub/internal/adapter/rabbitmq"
	"github.com/YelzhanWeb/dinehub/internal/app/cart"
	"github.com/YelzhanWeb/dinehub/internal/app/order"
	"github.com/YelzhanWeb/dinehub/internal/app/outlet"
	"github.com/YelzhanWeb/dinehub/internal/app/tracking"
	"github.com/YelzhanWeb/dinehub/internal/config"
	"github.com/YelzhanWeb/dinehub/internal/domain"
	"github.com/YelzhanWeb/dinehub/internal/interfaces"

	amqpAdapter "github.com/YelzhanWeb/dinehub/internal/adapter/amqp"
	httpAdapter "github.com/YelzhanWeb/dinehub/internal/adapter/http"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:           "dinehub",
		Short:         "Food court ordering service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config.yaml", "Config file path (YAML)")

	cmd.AddCommand(
		serveCmd(&configPath),
		notifyCmd(&configPath),
		tokenCmd(&configPath),
		migrateCmd(&configPath),
	)
	return cmd
}

func serveCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			return runServer(cfg, logger.New("dinehub-api", cfg.Logging.Level))
		},
	}
}

func notifyCmd(configPath *string) *cobra.Command {
	var outletID string

	cmd := &cobra.Command{
		Use:   "notify",
		Short: "Print status notifications, or new orders for one outlet board",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			return runSubscriber(cfg, logger.New("dinehub-notify", cfg.Logging.Level), outletID)
		},
	}
	cmd.Flags().StringVar(&outletID, "outlet", "", "Outlet id; consume its new-order queue instead of notifications")
	return cmd
}

func tokenCmd(configPath *string) *cobra.Command {
	var clientID, name, role string

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a bearer token for a client",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			raw, err := auth.NewTokens(cfg.Auth).Issue(clientID, name, domain.ViewerRole(role))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), raw)
			return nil
		},
	}
	cmd.Flags().StringVar(&clientID, "client", "", "Client id (token subject)")
	cmd.Flags().StringVar(&name, "name", "", "Display name")
	cmd.Flags().StringVar(&role, "role", string(domain.RoleCustomer), "customer or staff")
	_ = cmd.MarkFlagRequired("client")
	return cmd
}

func migrateCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the PostgreSQL schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			lgr := logger.New("dinehub-migrate", cfg.Logging.Level)

			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()

			db, err := postgres.Connect(ctx, cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			if err := postgres.Migrate(ctx, db); err != nil {
				return err
			}
			lgr.Info("migrated", "Schema is up to date", "startup", map[string]any{
				"host": cfg.Database.Host,
				"db":   cfg.Database.Database,
			})
			return nil
		},
	}
}

func runServer(cfg *config.Config, lgr logger.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Справочник точек
	outlets, err := outletfile.Load(cfg.Outlets.File)
	if err != nil {
		return err
	}
	directory := outlet.NewDirectory(outlets)
	lgr.Info("outlets_loaded", fmt.Sprintf("Loaded %d outlets", len(outlets)), "startup", map[string]any{
		"file": cfg.Outlets.File,
	})

	if cfg.Outlets.Watch {
		watcher := outletfile.NewWatcher(cfg.Outlets.File, directory, lgr)
		go func() {
			if err := watcher.Run(ctx); err != nil {
				lgr.Error("watcher_failed", "Outlet file watcher stopped", "runtime", nil, err)
			}
		}()
	}

	// Хранилище заказов
	st, err := openStore(ctx, cfg, lgr)
	if err != nil {
		return err
	}
	defer st.close()

	// Публикация событий
	var publisher interfaces.MessagePublisher = rabbitmq.NopPublisher{}
	if cfg.RabbitMQ.Enabled {
		mqConn, err := rabbitmq.Connect(cfg)
		if err != nil {
			return err
		}
		defer mqConn.Close()
		publisher = rabbitmq.NewPublisher(mqConn)

		lgr.Info("rabbitmq_connected", "Connected to RabbitMQ", "startup", map[string]any{
			"host": cfg.RabbitMQ.Host,
		})
	}

	recorder := metrics.NewRecorder()
	estimator := outlet.NewQueueEstimator(directory, st.orders, cfg.Orders.PerOrderWaitMinutes, cfg.Orders.DefaultWaitMinutes)

	orderService := order.NewService(
		st.orders,
		st.sequence,
		estimator,
		st.sessions,
		directory,
		publisher,
		recorder,
		lgr,
		cfg.Orders.DefaultWaitMinutes,
	)

	handler := httpAdapter.NewRouter(httpAdapter.RouterDeps{
		Cart:     cart.NewService(st.sessions, directory, recorder, lgr),
		Orders:   orderService,
		Tracking: tracking.NewService(st.orders, directory, lgr, cfg.Orders.ListLimit),
		Outlets:  directory,
		Sessions: st.sessions,
		Tokens:   auth.NewTokens(cfg.Auth),
		Metrics:  recorder.Handler(),
		Health:   st.ping,
		Logger:   lgr,
	})

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	lgr.Info("service_started", fmt.Sprintf("API started on port %d", cfg.Server.Port), "startup", map[string]any{
		"port":  cfg.Server.Port,
		"store": cfg.Store.Driver,
	})

	// Graceful shutdown
	go func() {
		<-ctx.Done()
		lgr.Info("shutdown_initiated", "Shutting down API", "shutdown", nil)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			lgr.Error("shutdown_error", "Error during shutdown", "shutdown", nil, err)
		}
	}()

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

func runSubscriber(cfg *config.Config, lgr logger.Logger, outletID string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	mqConn, err := rabbitmq.Connect(cfg)
	if err != nil {
		return err
	}
	defer mqConn.Close()

	consumer := rabbitmq.NewConsumer(mqConn, cfg.RabbitMQ.Prefetch, lgr)

	if outletID != "" {
		board := amqpAdapter.NewBoardHandler(os.Stdout, lgr)
		lgr.Info("service_started", fmt.Sprintf("Order board for %s started", outletID), "startup", map[string]any{
			"outlet_id": outletID,
			"prefetch":  cfg.RabbitMQ.Prefetch,
		})
		err = consumer.ConsumeOrderPlaced(ctx, outletID, board.HandleOrderPlaced)
	} else {
		notifications := amqpAdapter.NewNotificationHandler(os.Stdout, lgr)
		lgr.Info("service_started", "Notification subscriber started", "startup", nil)
		err = consumer.ConsumeNotifications(ctx, notifications.HandleNotification)
	}

	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	lgr.Info("graceful_shutdown", "Subscriber stopped", "shutdown", nil)
	return nil
}
