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

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/toryoki/jobhub/internal/config"
	"github.com/toryoki/jobhub/internal/db"
	jobhubhttp "github.com/toryoki/jobhub/internal/http"
	"github.com/toryoki/jobhub/internal/jobs"
	"github.com/toryoki/jobhub/internal/mail"
	"github.com/toryoki/jobhub/internal/observability"
	"github.com/toryoki/jobhub/internal/queue/redisclient"
	"github.com/toryoki/jobhub/internal/repo/postgres"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	log := observability.NewLogger(cfg.Env)

	if cfg.JWTSecret == "" {
		log.Error("JWT_SECRET is required")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.OTLPEndpoint != "" {
		shutdown, err := observability.InitTracer(ctx, "jobhub-api", cfg.OTLPEndpoint)
		if err != nil {
			log.Error("tracer init failed", "error", err)
			os.Exit(1)
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdown(shutdownCtx); err != nil {
				log.Warn("tracer shutdown failed", "error", err)
			}
		}()
	}

	pool, err := db.NewPool(cfg.DBURL)
	if err != nil {
		log.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	prom := observability.NewProm(reg)

	if err := db.EnsureAdminUser(ctx, pool, cfg); err != nil {
		log.Error("admin seed failed", "error", err)
		os.Exit(1)
	}

	var mailer mail.Mailer
	if cfg.SMTPHost != "" {
		mailer = mail.NewSMTPMailer(mail.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			From:     cfg.MailFrom,
		})
	} else {
		log.Warn("SMTP not configured, mail goes to the log")
		mailer = mail.NewLogMailer()
	}
	mailer = mail.NewProtectedMailer(mailer, mail.ProtectedMailerConfig{})

	redisClient := redisclient.New(redisclient.Config{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	defer redisClient.Close()
	if err := redisClient.Ping(ctx); err != nil {
		log.Warn("redis unreachable, mail jobs rely on worker polling", "error", err)
	}

	mailQueue := jobs.NewQueue(postgres.NewMailJobsRepo(pool, prom), redisClient, log)

	router := jobhubhttp.NewRouter(jobhubhttp.Deps{
		Log:       log,
		Cfg:       cfg,
		Pool:      pool,
		Prom:      prom,
		Metrics:   promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		Mailer:    mailer,
		MailQueue: mailQueue,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("api listening", "addr", srv.Addr, "env", cfg.Env)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received")
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server failed", "error", err)
			os.Exit(1)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}
	log.Info("api stopped")
}
