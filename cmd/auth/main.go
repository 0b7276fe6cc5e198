package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/pflag"

	authcleanup "github.com/AlibekovAA/fadechat/internal/auth/cleanup"
	authhttp "github.com/AlibekovAA/fadechat/internal/auth/http"
	"github.com/AlibekovAA/fadechat/internal/auth/service"
	"github.com/AlibekovAA/fadechat/internal/common/bootstrap"
	commoncrypto "github.com/AlibekovAA/fadechat/internal/common/crypto"
	commonhttp "github.com/AlibekovAA/fadechat/internal/common/http"
	"github.com/AlibekovAA/fadechat/internal/common/httpmetrics"
	srv "github.com/AlibekovAA/fadechat/internal/common/server"
	"github.com/AlibekovAA/fadechat/internal/common/session"
)

func main() {
	configPath := pflag.StringP("config", "c", "", "path to a YAML config file (overridden by environment)")
	pflag.Parse()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	app, err := bootstrap.NewAuthApp(ctx, *configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "auth service: %v\n", err)
		os.Exit(1)
	}
	log := app.Log
	cfg := app.Config
	stores := app.Stores

	idGenerator := commoncrypto.NewUUIDGenerator()
	guard := service.NewLoginGuard(
		stores.Attempts,
		idGenerator,
		app.Clock,
		cfg.LoginHourLimit,
		cfg.LoginTenMinLimit,
		log,
	)
	tokens := service.NewTokenManager(
		stores.Tokens,
		commoncrypto.NewRandomTokenGenerator(),
		app.Clock,
		cfg.TokenTTL,
		log,
	)
	authService := service.NewAuthService(
		stores.Users,
		guard,
		tokens,
		commoncrypto.NewBcryptHasher(),
		idGenerator,
		app.Clock,
		log,
	)

	go authcleanup.StartTokenCleanup(ctx, stores.Tokens, app.Clock, log)

	cookies := session.NewCookies(cfg.Session)
	handler := authhttp.NewHandler(authService, cookies, app.Clock, cfg.RequestTimeout, log)

	mux := http.NewServeMux()
	mux.Handle("/", handler)
	mux.Handle("/metrics", promhttp.Handler())
	httpmetrics.RegisterRoute("/metrics")

	rateLimiter := commonhttp.NewStrictRateLimiter()
	baseHandler := commonhttp.BuildBaseHandler("auth", log, mux)

	rateLimitMiddleware := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			path := r.URL.Path
			if path == "/health" || path == "/metrics" {
				next.ServeHTTP(w, r)
				return
			}
			rateLimiter.MiddlewareForPath(path)(next).ServeHTTP(w, r)
		})
	}

	server := srv.NewServer(
		srv.DefaultServerConfig(cfg.HTTPPort),
		commonhttp.RealIPMiddleware(cfg.TrustedProxies)(rateLimitMiddleware(baseHandler)),
	)

	shutdownHooks := []srv.ShutdownHook{
		func(ctx context.Context) error {
			log.Infof("auth service: stopping cleanup goroutine")
			cancel()
			rateLimiter.Stop()
			return nil
		},
		stores.Close,
	}

	srv.StartWithGracefulShutdownAndHooks(server, log, "auth", shutdownHooks)
}
