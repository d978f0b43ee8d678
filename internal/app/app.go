package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ftcscout/scout-backend/internal/config"
	"github.com/ftcscout/scout-backend/internal/handler"
	"github.com/ftcscout/scout-backend/internal/middleware"
	"github.com/ftcscout/scout-backend/internal/service"
	"github.com/ftcscout/scout-backend/internal/storage"
	filestore "github.com/ftcscout/scout-backend/internal/storage/file"
	memorystore "github.com/ftcscout/scout-backend/internal/storage/memory"
	postgresstore "github.com/ftcscout/scout-backend/internal/storage/postgres"
)

// App представляет приложение со всеми зависимостями
type App struct {
	config *config.Config
	db     *pgxpool.Pool
	store  storage.Store
	server *http.Server
	logger *slog.Logger
}

// New создает новый экземпляр приложения
func New(cfg *config.Config) (*App, error) {
	// Инициализируем структурированный логгер (JSON формат)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	app := &App{
		config: cfg,
		logger: logger,
	}

	return app, nil
}

// Initialize инициализирует все компоненты приложения
func (a *App) Initialize(ctx context.Context) error {
	// Выбираем бэкенд хранилища снимков
	if err := a.setupStore(ctx); err != nil {
		return fmt.Errorf("failed to set up storage: %w", err)
	}

	// Настраиваем HTTP сервер и роутинг
	a.setupServer()

	a.logger.Info("Application initialized successfully", "storage", a.config.Storage.Driver)
	return nil
}

// setupStore создает хранилище снимков согласно конфигурации
func (a *App) setupStore(ctx context.Context) error {
	switch a.config.Storage.Driver {
	case "file":
		store, err := filestore.New(a.config.Storage.FilePath, a.logger)
		if err != nil {
			return err
		}
		a.store = store
		a.logger.Info("Using file snapshot store", "path", a.config.Storage.FilePath)
		return nil

	case "postgres":
		if err := a.connectDB(ctx); err != nil {
			return err
		}
		store, err := postgresstore.New(ctx, a.db)
		if err != nil {
			return err
		}
		a.store = store
		a.logger.Info("Using postgres snapshot store")
		return nil

	case "memory":
		a.store = memorystore.New()
		a.logger.Warn("Using in-memory snapshot store, data will not survive a restart")
		return nil

	default:
		return fmt.Errorf("unknown storage driver %q", a.config.Storage.Driver)
	}
}

// connectDB устанавливает подключение к PostgreSQL с connection pool
func (a *App) connectDB(ctx context.Context) error {
	poolConfig, err := pgxpool.ParseConfig(a.config.Storage.Database.DSN())
	if err != nil {
		return fmt.Errorf("failed to parse database config: %w", err)
	}

	// Настраиваем размеры connection pool
	poolConfig.MaxConns = a.config.Storage.Database.MaxConns
	poolConfig.MinConns = a.config.Storage.Database.MinConns

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return fmt.Errorf("failed to create connection pool: %w", err)
	}

	// Проверяем подключение к БД
	if err := pool.Ping(ctx); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	a.db = pool
	a.logger.Info("Connected to database")
	return nil
}

// setupServer инициализирует HTTP роутер и обработчики
func (a *App) setupServer() {
	// Один мьютекс сериализует все циклы load-modify-save поверх хранилища
	var storeMu sync.Mutex

	// Инициализируем слой сервисов (движки бизнес-логики)
	credentials := service.NewCredentialService()
	inviteCodes := service.NewInviteCodeGenerator()
	membership := service.NewTeamMembershipEngine(a.store, inviteCodes, &storeMu)
	accounts := service.NewAccountLifecycleEngine(
		a.store,
		credentials,
		membership,
		service.AccountPolicy{
			RequireTeam:     a.config.Auth.RequireTeam,
			AcceptPrehashed: a.config.Auth.AcceptPrehashed,
		},
		&storeMu,
	)
	scouting := service.NewScoutingService(a.store, &storeMu)

	// Инициализируем HTTP обработчики
	authHandler := handler.NewAuthHandler(accounts)
	teamHandler := handler.NewTeamHandler(membership)
	scoutingHandler := handler.NewScoutingHandler(scouting)
	adminHandler := handler.NewAdminHandler(accounts, scouting)

	// Middleware административного доступа (статический разделяемый секрет)
	adminAuth := middleware.AdminAuth(a.config.Admin.Secret)

	// Настраиваем роутер
	r := chi.NewRouter()

	// Глобальные middleware (применяются ко всем запросам)
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(60 * time.Second))

	// Health check для мониторинга
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte(`{"status":"ok"}`)); err != nil {
			a.logger.Error("Failed to write health check response", "error", err)
		}
	})

	// Эндпоинты жизненного цикла аккаунта
	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)
		r.Post("/changePassword", authHandler.ChangePassword)
		r.Post("/deleteAccount", authHandler.DeleteAccount)
	})

	// Эндпоинты членства в командах
	r.Route("/team", func(r chi.Router) {
		r.Post("/join", teamHandler.Join)
		r.Post("/leave", teamHandler.Leave)
		r.Post("/removeMember", teamHandler.RemoveMember)
		r.Post("/dissolve", teamHandler.Dissolve)
		r.Post("/refreshInviteCode", teamHandler.RefreshInviteCode)
		r.Post("/transferCaptaincy", teamHandler.TransferCaptaincy)
		r.Get("/get", teamHandler.GetTeam)
	})

	// Эндпоинты записей скаутинга
	r.Route("/scouting", func(r chi.Router) {
		r.Post("/save", scoutingHandler.SaveRecord)
		r.Get("/list", scoutingHandler.ListRecords)
		r.Post("/delete", scoutingHandler.DeleteRecord)
	})

	// Административные эндпоинты (защищены разделяемым секретом)
	r.Group(func(r chi.Router) {
		r.Use(adminAuth)

		r.Get("/admin/allData", adminHandler.AllData)
		r.Post("/admin/deleteUser", adminHandler.DeleteUser)
	})

	// Создаем HTTP сервер с настройками таймаутов
	addr := fmt.Sprintf("%s:%s", a.config.Server.Host, a.config.Server.Port)
	a.server = &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	a.logger.Info("HTTP server configured", "addr", addr)
}

// Run запускает HTTP сервер
func (a *App) Run() error {
	a.logger.Info("Starting HTTP server", "addr", a.server.Addr)
	return a.server.ListenAndServe()
}

// Shutdown корректно останавливает приложение
func (a *App) Shutdown(ctx context.Context) error {
	a.logger.Info("Shutting down application")

	// Останавливаем HTTP сервер (ждем завершения текущих запросов)
	if err := a.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}

	// Закрываем подключения к базе данных
	if a.db != nil {
		a.db.Close()
	}

	a.logger.Info("Application stopped gracefully")
	return nil
}
