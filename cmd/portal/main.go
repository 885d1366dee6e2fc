package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/anatechlabs/sample-portal/internal/config"
	"github.com/anatechlabs/sample-portal/internal/httpx"
	kafkax "github.com/anatechlabs/sample-portal/internal/kafka"
	"github.com/anatechlabs/sample-portal/internal/notify"
	"github.com/anatechlabs/sample-portal/internal/orders"
	"github.com/anatechlabs/sample-portal/internal/postgres"
	"github.com/anatechlabs/sample-portal/internal/redisx"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	log, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// DB
	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatal("db connect", zap.Error(err))
	}
	defer db.Close()

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	// Kafka producers, one per lifecycle topic
	prodSubmitted := kafkax.NewProducer(cfg.KafkaBrokers, orders.TopicOrderSubmitted, 1024)
	prodSubmitted.Start(ctx)
	prodChanged := kafkax.NewProducer(cfg.KafkaBrokers, orders.TopicOrderStatusChanged, 1024)
	prodChanged.Start(ctx)

	// Mail
	mailer := &notify.Mailer{
		Host:  cfg.SMTPHost,
		Port:  cfg.SMTPPort,
		User:  cfg.SMTPUser,
		Pass:  cfg.SMTPPass,
		From:  cfg.MailFrom,
		Inbox: cfg.OrdersInbox,
	}

	// Repo & services
	repo := &orders.Repo{DB: db}
	submissions := &orders.SubmissionService{
		Store:    repo,
		Mail:     mailer,
		Producer: prodSubmitted,
		Redis:    rdb,
		Prefix:   cfg.OrderPrefix,
		Service:  cfg.ServiceName,
		Log:      log,
	}
	transitions := &orders.TransitionService{
		Store:    repo,
		Mail:     mailer,
		Producer: prodChanged,
		Redis:    rdb,
		Prefix:   cfg.OrderPrefix,
		Service:  cfg.ServiceName,
		Log:      log,
	}

	router := httpx.NewRouter()
	oh := &httpx.OrdersHandler{
		Submissions: submissions,
		Transitions: transitions,
		Reader:      repo,
		Sessions:    redisx.Sessions{R: rdb},
		Redis:       rdb,
		Prefix:      cfg.OrderPrefix,
		Log:         log,
	}
	oh.Register(router)

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	// graceful shutdown
	go func() {
		log.Info("HTTP listening", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("listen", zap.Error(err))
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Info("shutting down")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)
	prodSubmitted.Close() // signal shutdown -> flush & close writer
	prodChanged.Close()
	cancel()
	prodSubmitted.WaitClosed() // drain
	prodChanged.WaitClosed()
}
