package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/ShubhamRajbabu/taskvault/internal/config"
	"github.com/ShubhamRajbabu/taskvault/internal/db"
	"github.com/ShubhamRajbabu/taskvault/internal/events"
	"github.com/ShubhamRajbabu/taskvault/internal/httpserver"
	"github.com/ShubhamRajbabu/taskvault/internal/logging"
	"github.com/ShubhamRajbabu/taskvault/internal/middleware"
	"github.com/ShubhamRajbabu/taskvault/internal/repo"
	"github.com/ShubhamRajbabu/taskvault/internal/search"
	"github.com/ShubhamRajbabu/taskvault/internal/service"
	"github.com/ShubhamRajbabu/taskvault/internal/tokens"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	cfg.MustValidate()

	logger := logging.New(config.EnvDefault("LOG_LEVEL", "info"))

	initCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	gdb, err := db.Open(initCtx, cfg.DSN())
	cancel()
	if err != nil {
		log.Fatalf("db init: %v", err)
	}

	issuer, err := tokens.NewIssuer(cfg.JWTSecret, cfg.RefreshSecret, cfg.AccessTTL, cfg.RefreshTTL)
	if err != nil {
		log.Fatalf("token issuer: %v", err)
	}

	producer := events.NewProducer(cfg.KafkaBrokers)
	defer producer.Close()

	var taskIndex *search.TaskIndex
	if cfg.ESURL != "" {
		es, err := search.NewClient(cfg.ESURL, cfg.ESUser, cfg.ESPassword)
		if err != nil {
			log.Fatalf("elasticsearch: %v", err)
		}
		taskIndex = search.NewTaskIndex(es, search.DefaultTaskIndex)
	}

	store := repo.New(gdb)
	authSvc := &service.AuthService{Repo: store, Issuer: issuer, Producer: producer}
	taskSvc := &service.TaskService{Repo: store, Producer: producer, Index: taskIndex}
	userSvc := &service.UserService{Repo: store}

	e := echo.New()
	e.HideBanner = true
	e.Server.ReadTimeout = 10 * time.Second
	e.Server.WriteTimeout = 15 * time.Second
	e.Server.ReadHeaderTimeout = 3 * time.Second
	e.Use(echomw.Recover(), echomw.RequestID(), middleware.RequestLogger(logger))

	httpserver.Register(e, &httpserver.Deps{
		Auth:          &httpserver.AuthHTTP{Svc: authSvc, SecureCookies: cfg.IsProduction()},
		Tasks:         &httpserver.TaskHTTP{Svc: taskSvc},
		Users:         &httpserver.UserHTTP{Svc: userSvc},
		AuthMW:        middleware.NewAuth(issuer),
		SearchEnabled: taskIndex.Enabled(),
	})

	go func() {
		addr := fmt.Sprintf(":%d", cfg.ServerPort)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server start: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)
	<-stop

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", "error", err)
	}
}
