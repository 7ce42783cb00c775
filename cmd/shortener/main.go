package main

import (
	"context"
	"net/http"
	"time"

	"github.com/takore/linkcut/internal/auth"
	"github.com/takore/linkcut/internal/cache"
	"github.com/takore/linkcut/internal/config"
	"github.com/takore/linkcut/internal/database"
	"github.com/takore/linkcut/internal/handlers"
	"github.com/takore/linkcut/internal/repositories"
	"github.com/takore/linkcut/internal/router"
	"github.com/takore/linkcut/internal/service"
	"github.com/takore/linkcut/internal/util"
	"go.uber.org/zap"
)

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	// Инициализация конфигурации
	cfg := config.NewConfig()

	db, err := database.NewDB(context.Background(), cfg.DatabaseDSN, logger)
	if err != nil {
		logger.Fatal("Не удалось подключиться к БД", zap.Error(err))
	}
	defer db.Close()

	if err := database.RunMigrations(cfg.DatabaseDSN, cfg.PgMigrationsPath); err != nil {
		logger.Fatal("Не удалось применить миграции", zap.Error(err))
	}

	repo := repositories.NewLinkRepository(db)
	generator := util.NewGenerator(repo, cfg.GenMaxAttempts)

	// Кэш редиректов опционален: без REDIS_ADDR сервис ходит только в БД.
	var redirectCache service.RedirectCache
	if cfg.RedisAddr != "" {
		c, err := cache.ConnectRedis(cfg.RedisAddr, cfg.RedisPassword, time.Duration(cfg.CacheTTLSeconds)*time.Second)
		if err != nil {
			logger.Fatal("Не удалось подключиться к Redis", zap.Error(err))
		}
		defer c.Close()
		redirectCache = c
	}

	svc := service.NewLinkService(repo, redirectCache, generator, logger, cfg.BaseURL, cfg.CodeLength)
	authService := auth.New(cfg.AuthSecret)
	handler := handlers.NewHandler(svc, authService, logger)

	r := router.NewRouter(handler, logger)

	logger.Info("Сервер запущен", zap.String("address", cfg.ServerAddress))
	if cfg.EnableHTTPS {
		err = http.ListenAndServeTLS(cfg.ServerAddress, cfg.TLSCertPath, cfg.TLSKeyPath, r)
	} else {
		err = http.ListenAndServe(cfg.ServerAddress, r)
	}
	if err != nil {
		logger.Fatal("Ошибка при запуске сервера", zap.Error(err))
	}
}
