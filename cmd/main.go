package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/vnkhanh/survey-platform/config"
	"github.com/vnkhanh/survey-platform/controllers"
	"github.com/vnkhanh/survey-platform/metrics"
	"github.com/vnkhanh/survey-platform/middleware"
	"github.com/vnkhanh/survey-platform/routes"
	"github.com/vnkhanh/survey-platform/utils"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()})))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := config.ConnectDB(cfg)
	if err != nil {
		return err
	}

	var blacklist utils.TokenBlacklist = utils.NewMemoryBlacklist()
	rdb, err := config.ConnectRedis(ctx, cfg.RedisURL)
	if err != nil {
		return err
	}
	if rdb != nil {
		defer rdb.Close()
		blacklist = utils.NewRedisBlacklist(rdb)
	} else {
		slog.Warn("REDIS_URL not set, revoked tokens are kept in memory")
	}

	var captcha utils.CaptchaVerifier = utils.PresenceCaptcha{}
	if !cfg.RecaptchaDisabled {
		captcha, err = utils.NewRecaptchaVerifier(ctx, cfg.RecaptchaProject, cfg.RecaptchaSiteKey, cfg.RecaptchaAPIKey, cfg.RecaptchaMinScore)
		if err != nil {
			return err
		}
	} else {
		slog.Warn("reCAPTCHA disabled, only token presence is checked")
	}

	h := &controllers.Handler{
		DB:        db,
		JWTSecret: cfg.JWTSecret,
		TokenTTL:  cfg.TokenTTL,
		Captcha:   captcha,
		Blacklist: blacklist,
		Metrics:   metrics.New(),
	}
	if cfg.SupabaseURL != "" && cfg.SupabaseKey != "" {
		h.Uploader = utils.NewSupabaseUploader(cfg.SupabaseURL, cfg.SupabaseKey, cfg.SupabaseBucket)
	}

	lim := routes.Limiters{
		Create: middleware.NewIPRateLimiter(cfg.CreateRatePerMin, cfg.CreateRatePerMin, 10*time.Minute),
		Vote:   middleware.NewIPRateLimiter(cfg.VoteRatePerMin, cfg.VoteRatePerMin, 10*time.Minute),
	}
	go lim.Create.Run(ctx.Done())
	go lim.Vote.Run(ctx.Done())

	if cfg.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	if err := r.SetTrustedProxies(nil); err != nil {
		return err
	}

	routes.SetupRoutes(r, h, lim)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		slog.Info("server listening", "port", cfg.Port, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
