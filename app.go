package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/lexora/lexora_backend/config"
	"github.com/lexora/lexora_backend/controllers"
	"github.com/lexora/lexora_backend/logger"
	"github.com/lexora/lexora_backend/middleware"
	"github.com/lexora/lexora_backend/repositories"
	"github.com/lexora/lexora_backend/routes"
	"github.com/lexora/lexora_backend/services"
	"github.com/lexora/lexora_backend/utils"
	"github.com/lexora/lexora_backend/websocket"
)

const devJWTSecret = "lexora-development-secret"

// CustomValidator is a custom validator for Echo
type CustomValidator struct {
	validator *validator.Validate
}

// Validate validates the request body
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

func loadSettings(storeOverride string) (*config.Settings, *zap.Logger, error) {
	settings, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load settings: %w", err)
	}
	if storeOverride != "" {
		settings.StoreBackend = storeOverride
	}
	log := logger.New(settings.LogMode, logger.Options{Dir: settings.LogDir})

	if settings.JWTSecret == "" {
		if !settings.IsDevelopment() {
			return nil, nil, errors.New("JWT_SECRET is required outside development")
		}
		log.Warn("JWT_SECRET not set, using the development secret")
		settings.JWTSecret = devJWTSecret
	}
	return settings, log, nil
}

// openStore connects the configured backend. The returned func releases it.
func openStore(ctx context.Context, s *config.Settings, log *zap.Logger) (repositories.Store, func(), error) {
	switch s.StoreBackend {
	case "", "memory":
		log.Warn("using the in-memory store, data is lost on restart")
		return repositories.NewMemoryStore(), func() {}, nil
	case "mongo":
		client, err := config.ConnectDB(ctx, s, log)
		if err != nil {
			return nil, nil, err
		}
		disconnect := func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = client.Disconnect(ctx)
		}
		store := repositories.NewMongoStore(client, s.DBName)
		if err := store.EnsureIndexes(ctx); err != nil {
			disconnect()
			return nil, nil, err
		}
		return store, disconnect, nil
	case "firestore":
		app, err := config.InitFirebase(ctx, s, log)
		if err != nil {
			return nil, nil, err
		}
		client, err := app.Firestore(ctx)
		if err != nil {
			return nil, nil, fmt.Errorf("firestore client: %w", err)
		}
		log.Info("connected to Firestore", zap.String("project", s.FirebaseProjectID))
		return repositories.NewFirestoreStore(client), func() { _ = client.Close() }, nil
	}
	return nil, nil, fmt.Errorf("unknown STORE_BACKEND %q", s.StoreBackend)
}

func runServe(parent context.Context, storeOverride string) error {
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	settings, log, err := loadSettings(storeOverride)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	store, closeStore, err := openStore(ctx, settings, log)
	if err != nil {
		log.Error("store unavailable", zap.String("backend", settings.StoreBackend), zap.Error(err))
		return err
	}
	defer closeStore()

	hub := websocket.NewHub(log.Named("ws"))
	go hub.Run(ctx)

	redisClient := config.ConnectRedis(ctx, settings, log)
	if redisClient != nil {
		defer redisClient.Close()
	}
	reportCache := services.NewRedisReportCache(redisClient, settings.ReportCacheTTL)
	invalidator := services.NewReportInvalidator(reportCache)

	var verifier services.IDTokenVerifier
	if settings.FirebaseProjectID != "" {
		app, err := config.InitFirebase(ctx, settings, log)
		if err == nil {
			verifier, err = services.NewFirebaseVerifier(ctx, app)
		}
		if err != nil {
			log.Warn("firebase login disabled", zap.Error(err))
			verifier = nil
		}
	}

	signupListeners := []services.SignupListener{hub, invalidator}
	if mail := services.NewMailService(settings, log.Named("mail")); mail != nil {
		signupListeners = append(signupListeners, mail)
	}
	registrationListeners := []services.RegistrationListener{hub, invalidator}
	if sms := services.NewSMSService(settings, log.Named("sms")); sms.Enabled() {
		registrationListeners = append(registrationListeners, sms)
	} else {
		log.Info("SMS credentials not set, customer SMS disabled")
	}

	var generator services.InsightGenerator
	if gen, err := services.NewGenAIGenerator(ctx, settings.GenAIAPIKey, settings.GenAIModel); err == nil {
		generator = gen
	} else {
		log.Info("insights disabled", zap.Error(err))
	}

	auth := services.NewAuthService(store, log.Named("auth"), settings.JWTSecret, settings.JWTLifetime, verifier, signupListeners...).
		WithLoginAttempts(utils.NewLoginAttempts(redisClient, 5, 15*time.Minute))
	commission := services.NewCommissionService(store, log.Named("commission"),
		services.CascadeOptions{Strict: settings.CascadeStrict}, registrationListeners...)
	reports := services.NewReportService(store, reportCache, log.Named("reports"))
	insights := services.NewInsightService(reports, generator, log.Named("insights"))

	e := echo.New()
	e.HideBanner = true
	e.Validator = &CustomValidator{validator: utils.NewValidator()}

	rateLimiter := middleware.NewRateLimiter()
	go rateLimiter.RunCleanup(ctx, time.Minute)

	e.Use(middleware.RequestLogger(log.Named("http")))
	e.Use(echoMiddleware.Recover())
	e.Use(middleware.GlobalCORS(settings.CORSAllowedOrigins))
	e.Use(rateLimiter.RateLimit())
	e.Use(middleware.SecurityHeadersWithConfig(middleware.SecurityConfig{
		AllowedDomains: []string{"*"},
		AllowInlineJS:  settings.IsDevelopment(),
	}))

	routes.SetupRoutes(e, store, hub, routes.Controllers{
		Auth:      controllers.NewAuthController(auth, log),
		Users:     controllers.NewUserController(store, log),
		Customers: controllers.NewCustomerController(commission, store, log),
		Reports:   controllers.NewReportController(reports, insights, store, log),
		Admin:     controllers.NewAdminController(auth, log),
		Hierarchy: controllers.NewHierarchyController(),
	}, settings.JWTSecret, log)

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting server", zap.String("port", settings.Port), zap.String("store", store.Name()))
		errCh <- e.Start(":" + settings.Port)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}
