package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/pflag"

	authservice "github.com/AlibekovAA/fadechat/internal/auth/service"
	chathttp "github.com/AlibekovAA/fadechat/internal/chat/http"
	chatservice "github.com/AlibekovAA/fadechat/internal/chat/service"
	"github.com/AlibekovAA/fadechat/internal/common/bootstrap"
	commoncrypto "github.com/AlibekovAA/fadechat/internal/common/crypto"
	commonhttp "github.com/AlibekovAA/fadechat/internal/common/http"
	"github.com/AlibekovAA/fadechat/internal/common/httpmetrics"
	srv "github.com/AlibekovAA/fadechat/internal/common/server"
	"github.com/AlibekovAA/fadechat/internal/common/session"
	messageservice "github.com/AlibekovAA/fadechat/internal/message/service"
	"github.com/AlibekovAA/fadechat/internal/notify"
)

func main() {
	configPath := pflag.StringP("config", "c", "", "path to a YAML config file (overridden by environment)")
	pflag.Parse()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	app, err := bootstrap.NewChatApp(ctx, *configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "chat service: %v\n", err)
		os.Exit(1)
	}
	log := app.Log
	cfg := app.Config
	stores := app.Stores

	notifier, err := notify.New(cfg.Notify, log)
	if err != nil {
		log.Fatalf("failed to configure notifications: %v", err)
	}

	tokens := authservice.NewTokenManager(
		stores.Tokens,
		commoncrypto.NewRandomTokenGenerator(),
		app.Clock,
		cfg.TokenTTL,
		log,
	)
	messages := messageservice.NewService(
		stores.Messages,
		commoncrypto.NewUUIDGenerator(),
		app.Clock,
		cfg.MessageMaxLength,
		log,
	)
	coordinator := chatservice.NewCoordinator(stores.Users, tokens, messages, notifier, cfg.ViewFade, log)

	cookies := session.NewCookies(cfg.Session)
	handler := chathttp.NewHandler(coordinator, cookies, cfg.RequestTimeout, log)

	mux := http.NewServeMux()
	mux.Handle("/", handler)
	mux.Handle("/metrics", promhttp.Handler())
	httpmetrics.RegisterRoute("/metrics")

	rateLimiter := commonhttp.NewStrictRateLimiter()
	baseHandler := commonhttp.BuildBaseHandler("chat", log, mux)

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
			cancel()
			rateLimiter.Stop()
			return nil
		},
		stores.Close,
	}

	srv.StartWithGracefulShutdownAndHooks(server, log, "chat", shutdownHooks)
}
