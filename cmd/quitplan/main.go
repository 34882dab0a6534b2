package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/quitplan/quitplan/pkg/config"
	"github.com/quitplan/quitplan/pkg/email"
	"github.com/quitplan/quitplan/pkg/escrow"
	"github.com/quitplan/quitplan/pkg/logger"
	"github.com/quitplan/quitplan/pkg/mongo"
	"github.com/quitplan/quitplan/pkg/queue"
	"github.com/quitplan/quitplan/pkg/token"
	"github.com/quitplan/quitplan/svc/account"
)

// quitplan assembles the account service: it connects the document store,
// ensures indexes, seeds the configured admin account, and drains the email
// queue until it receives a termination signal. The HTTP transport binds to
// the assembled account.Service.
func main() {
	if err := run(); err != nil {
		slog.Error("fatal", logger.Error(err))
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var appCfg account.Config
	config.MustLoad(&appCfg)
	var mongoCfg mongo.Config
	config.MustLoad(&mongoCfg)
	var tokenCfg token.Config
	config.MustLoad(&tokenCfg)
	var escrowCfg escrow.Config
	config.MustLoad(&escrowCfg)

	log := newLogger(appCfg)
	logger.SetAsDefault(log)

	db, err := mongo.NewDatabase(ctx, mongoCfg)
	if err != nil {
		return err
	}
	defer db.Client().Disconnect(context.Background())

	if err := mongo.Healthcheck(db.Client())(ctx); err != nil {
		return err
	}

	storage := account.NewMongoStorage(db)
	if err := storage.EnsureIndexes(ctx); err != nil {
		return err
	}

	tokens, err := token.New(tokenCfg)
	if err != nil {
		return err
	}
	escrowSvc := escrow.New(escrowCfg)
	if !escrowSvc.Available() {
		log.Warn("escrow secret not configured, registration will be rejected")
	}

	queueStorage := queue.NewMemoryStorage()
	enqueuer, err := queue.NewEnqueuer(queueStorage)
	if err != nil {
		return err
	}
	worker, err := queue.NewWorker(queueStorage, queue.WithWorkerLogger(log))
	if err != nil {
		return err
	}
	worker.RegisterHandlers(account.NewEmailHandlers(newEmailSender(log), appCfg)...)
	if err := worker.Start(ctx); err != nil {
		return err
	}
	defer worker.Stop()

	svc := account.NewService(storage, tokens, escrowSvc, enqueuer,
		account.WithLogger(log),
		account.WithDatabaseName(mongoCfg.DatabaseName),
	)
	if appCfg.AdminEmail != "" {
		if err := svc.EnsureAdmin(ctx, appCfg.AdminEmail, appCfg.AdminPassword); err != nil {
			return err
		}
	}

	log.Info("started", logger.Component("quitplan"))
	<-ctx.Done()
	log.Info("shutting down")
	return nil
}

func newLogger(cfg account.Config) *slog.Logger {
	if cfg.IsProduction() {
		return logger.New(logger.WithProduction(cfg.AppName))
	}
	return logger.New(logger.WithDevelopment(cfg.AppName))
}

// newEmailSender picks Postmark when it is configured and falls back to the
// logging sender for local development.
func newEmailSender(log *slog.Logger) email.EmailSender {
	var cfg email.Config
	err := config.Load(&cfg)
	if err == nil {
		sender, perr := email.NewPostmarkClient(cfg)
		if perr == nil {
			return sender
		}
		err = perr
	}
	log.Warn("postmark not configured, using dev email sender", logger.Error(err))
	return email.NewDevSender(log)
}
