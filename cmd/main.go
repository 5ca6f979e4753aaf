package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/arzan03/wastetrack/internal/auth"
	"github.com/arzan03/wastetrack/internal/chat"
	"github.com/arzan03/wastetrack/internal/config"
	"github.com/arzan03/wastetrack/internal/db"
	"github.com/arzan03/wastetrack/internal/logger"
	"github.com/arzan03/wastetrack/internal/notify"
	"github.com/arzan03/wastetrack/internal/server"
	"github.com/arzan03/wastetrack/internal/services"
	"github.com/arzan03/wastetrack/internal/storage"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

var (
	connectMongo  = db.ConnectMongoDB
	ensureIndexes = db.EnsureIndexes
)

type stores struct {
	users services.UserStore
	waste services.WasteStore
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	zl, err := logger.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer zl.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, zl); err != nil {
		zl.Fatal("server stopped", zap.Error(err))
	}
}

func run(ctx context.Context, cfg *config.Config, zl *zap.Logger) error {
	st, client, err := openStores(ctx, cfg, zl)
	if err != nil {
		return err
	}
	if client != nil {
		defer func() {
			dctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := client.Disconnect(dctx); err != nil {
				zl.Warn("mongo disconnect", zap.Error(err))
			}
		}()
	}

	var notifier notify.Notifier = notify.NewLogNotifier(zl)
	if cfg.MailEnabled() {
		notifier = notify.NewSMTPNotifier(cfg.SMTPHost, cfg.SMTPPort, cfg.AdminEmail, cfg.AdminEmailPassword, cfg.SMTPTimeout)
	} else {
		zl.Warn("ADMIN_EMAIL or ADMIN_EMAIL_PASSWORD not set, password reset requests will only be logged")
	}

	authSvc := services.NewAuthService(st.users, auth.NewIssuer(cfg.JWTSecret, cfg.TokenTTL), notifier, zl,
		services.WithPrivilegedSignup(cfg.AllowPrivilegedSignup),
		services.WithNotifyTimeout(cfg.SMTPTimeout))
	if cfg.AdminUsername != "" {
		if err := authSvc.EnsureAdmin(ctx, cfg.AdminUsername, cfg.AdminPassword); err != nil {
			return err
		}
	}

	deps := server.Deps{
		Log:         zl,
		CORSOrigins: cfg.CORSOrigins,
		AccessLog:   true,
		Auth:        authSvc,
		Waste:       services.NewWasteService(st.waste, cfg.Location, zl),
		Stats:       services.NewStatsService(st.waste, cfg.Location, zl),
		Volunteers:  services.NewVolunteerService(st.users, zl),
		Chat:        services.NewChatService(chat.NewClient(cfg.ChatURL, cfg.ChatAPIKey, cfg.ChatTimeout), zl),
	}
	if cfg.ReportsEnabled() {
		objects, err := storage.NewReportStore(ctx, cfg.MinioEndpoint, cfg.MinioAccessKey, cfg.MinioSecretKey, cfg.MinioBucket, cfg.MinioUseSSL)
		if err != nil {
			return err
		}
		deps.Reports = services.NewReportService(st.waste, objects, cfg.Location, cfg.ReportURLTTL, zl)
	}

	app := server.NewApp(deps)

	errCh := make(chan error, 1)
	go func() {
		zl.Info("listening", zap.String("port", cfg.Port), zap.String("timezone", cfg.Location.String()))
		errCh <- app.Listen(":" + cfg.Port)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	zl.Info("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := app.ShutdownWithContext(sctx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return nil
}

// openStores connects to MongoDB, or falls back to in-memory stores when
// MONGO_URI is "memory". The returned client is nil in the latter case.
func openStores(ctx context.Context, cfg *config.Config, zl *zap.Logger) (stores, *mongo.Client, error) {
	if cfg.MongoURI == db.MemoryURI {
		zl.Warn("using in-memory stores, data is lost on restart")
		return stores{users: db.NewMemoryUserRepository(), waste: db.NewMemoryWasteRepository()}, nil, nil
	}

	client, err := connectMongo(ctx, cfg.MongoURI)
	if err != nil {
		return stores{}, nil, err
	}
	database := client.Database(cfg.MongoDB)
	if err := ensureIndexes(ctx, database); err != nil {
		dctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if derr := client.Disconnect(dctx); derr != nil {
			zl.Warn("mongo disconnect", zap.Error(derr))
		}
		return stores{}, nil, err
	}
	zl.Info("connected to MongoDB", zap.String("database", cfg.MongoDB))

	return stores{
		users: db.NewUserRepository(database),
		waste: db.NewWasteRepository(database),
	}, client, nil
}
