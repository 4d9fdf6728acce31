package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"ziwei/internal/account"
	"ziwei/internal/chart"
	"ziwei/internal/kb"
	"ziwei/internal/live"
	"ziwei/internal/prefs"
	"ziwei/internal/reading"
	"ziwei/internal/render"
	"ziwei/internal/session"
	"ziwei/internal/web"
	"ziwei/pkg/database"
	"ziwei/pkg/logger"
	"ziwei/pkg/utils"
)

const (
	sessionIdle  = 24 * time.Hour
	pruneEvery   = 10 * time.Minute
	visitorIdle  = time.Hour
	shutdownWait = 10 * time.Second
)

func main() {
	logger.Bootstrap(os.Stderr)
	cfg, err := utils.Load(os.Getenv("ZIWEI_CONFIG"))
	if err != nil {
		logger.Logger.Fatalw("load config failed", "path", os.Getenv("ZIWEI_CONFIG"), "err", err)
	}
	if err := logger.Initialize(cfg.Log.JSON, cfg.Log.Level); err != nil {
		logger.Logger.Fatalw("init logger failed", "err", err)
	}
	defer logger.Sync()
	log := logger.Named("api")

	db := database.MustOpen(database.Config{Path: cfg.DB.Path})
	defer db.Close()
	if err := database.Migrate(db); err != nil {
		log.Fatalw("db migrate failed", "err", err)
	}

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	kbStore, err := kb.Open(cfg.KBPath)
	if err != nil {
		log.Fatalw("load knowledge base failed", "path", cfg.KBPath, "err", err)
	}
	if cfg.KBPath != "" {
		if err := kbStore.Watch(ctx, cfg.KBPath); err != nil {
			log.Warnw("knowledge base hot reload disabled", "path", cfg.KBPath, "err", err)
		}
	}

	provider, err := chart.FromConfig(cfg.Provider)
	if err != nil {
		log.Fatalw("chart provider", "err", err)
	}

	rnd, err := render.New()
	if err != nil {
		log.Fatalw("parse templates failed", "err", session.Message(err), "detail", err)
	}

	prefsRepo := prefs.NewRepo(db)
	readingRepo := reading.NewRepo(db)

	sessions := session.NewStore()
	ctl := session.NewController(provider, sessions, session.Options{
		Locale:  cfg.Provider.Locale,
		FixLeap: cfg.Provider.FixLeap,
		MinYear: cfg.Form.MinYear,
		MaxYear: cfg.Form.MaxYear,
	})
	ctl.Prefs = prefsRepo
	ctl.Readings = readingRepo

	if cfg.Log.JSON {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	_ = router.SetTrustedProxies(cfg.HTTP.TrustedProxies)
	router.SetHTMLTemplate(rnd.Template())

	tokenSvc := account.TokenService{
		Secret:   []byte(cfg.Auth.JWTSecret),
		Issuer:   cfg.Auth.JWTIssuer,
		Duration: cfg.Auth.JWTDuration,
	}
	accountRepo := account.NewRepo(db)

	router.Use(web.SessionMiddleware(cfg.HTTP.CookieSecure))
	router.Use(account.OptionalAuth(tokenSvc, accountRepo))

	hub := live.NewHub()
	liveHandler := live.NewHandler(hub, ctl, kbStore)
	router.GET("/ws", liveHandler.Serve)

	probes := &web.Probes{DB: db, Hub: hub, Sessions: sessions}
	probes.RegisterRoutes(&router.RouterGroup)

	limiter := web.NewLimiter(cfg.HTTP.RatePerMinute)
	webHandler := web.NewHandler(ctl, kbStore)
	webHandler.Prefs = prefsRepo
	webHandler.Limiter = limiter
	webHandler.MinYear, webHandler.MaxYear = cfg.Form.MinYear, cfg.Form.MaxYear
	webHandler.RegisterRoutes(&router.RouterGroup)

	authHandler := account.NewHandler(accountRepo, tokenSvc)
	authHandler.CookieSecure = cfg.HTTP.CookieSecure
	authHandler.OnSignIn = web.AdoptOnSignIn(prefsRepo, readingRepo)
	authHandler.RegisterRoutes(router.Group("/auth"))

	protected := router.Group("/users")
	protected.Use(account.AuthMiddleware(tokenSvc, accountRepo))
	reading.NewHandler(readingRepo).RegisterRoutes(protected)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		ticker := time.NewTicker(pruneEvery)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := sessions.Prune(sessionIdle); n > 0 {
					log.Debugw("pruned sessions", "count", n)
				}
				limiter.Prune(visitorIdle)
			}
		}
	}()

	httpSrv := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	wg.Add(1)
	go func() {
		defer wg.Done()
		log.Infow("HTTP server listening", "addr", cfg.HTTP.Addr, "provider", cfg.Provider.Kind, "db", cfg.DB.Path)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Infow("shutdown signal received", "signal", sig.String())
	case err := <-errCh:
		log.Errorw("server error", "err", err)
	}

	log.Info("shutting down")
	stop()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownWait)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Errorw("http shutdown error", "err", err)
	}

	wg.Wait()
	log.Info("server stopped")
}
