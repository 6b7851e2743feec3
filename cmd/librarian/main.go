package main

import (
	"context"
	"database/sql"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	librarian "github.com/goliatone/go-librarian"
	"github.com/goliatone/go-librarian/mailer"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

func main() {
	cfg, err := librarian.LoadConfig()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := librarian.NewLogger("librarian")

	sqldb, err := sql.Open(sqliteshim.ShimName, cfg.DSN)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}

	db := bun.NewDB(sqldb, sqlitedialect.New())
	defer db.Close()

	if err := createTables(db); err != nil {
		log.Fatalf("create tables: %v", err)
	}

	repo := librarian.NewRepositoryManager(db)
	repo.MustValidate()

	mail, err := mailer.New(cfg.Mailer, logger)
	if err != nil {
		log.Fatalf("mailer: %v", err)
	}

	tokens := librarian.NewTokenService(cfg, logger)

	dispatcher := librarian.NewNotificationDispatcher(repo, mail, logger)
	defer dispatcher.Close()

	users := librarian.NewUserService(repo, tokens, mail,
		librarian.WithUserServiceLogger(logger),
	)
	books := librarian.NewBookService(repo, dispatcher, logger)

	app := fiber.New(fiber.Config{
		AppName:      "go-librarian",
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	})

	librarian.RegisterRoutes(app, librarian.RouterConfig{
		Users:  users,
		Books:  books,
		Tokens: tokens,
		Config: cfg,
		Logger: logger,
		Debug:  cfg.Debug,
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddr); err != nil {
			log.Fatalf("http server: %v", err)
		}
	}()

	logger.Info("listening on %s", cfg.HTTPAddr)

	sig := waitExitSignal()
	logger.Info("received %s, shutting down", sig)

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Error("shutdown: %s", err)
	}
}

func createTables(db *bun.DB) error {
	ctx := context.Background()

	models := []any{
		(*librarian.User)(nil),
		(*librarian.Book)(nil),
	}

	for _, model := range models {
		if _, err := db.NewCreateTable().
			Model(model).
			IfNotExists().
			Exec(ctx); err != nil {
			return err
		}
	}

	return nil
}

func waitExitSignal() os.Signal {
	ch := make(chan os.Signal, 3)
	signal.Notify(ch,
		syscall.SIGINT,
		syscall.SIGQUIT,
		syscall.SIGTERM,
	)
	return <-ch
}
