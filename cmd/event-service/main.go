// cmd/event-service/main.go
package main

import (
	"context"

	"evently/internal/pkg/bootstrap"
	"evently/internal/pkg/logger"
	redisclient "evently/internal/pkg/redis"
	"evently/internal/service/event/application"
	"evently/internal/service/event/domain"
	"evently/internal/service/event/infrastructure"
	"evently/internal/service/event/interfaces"

	"go.opentelemetry.io/otel"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

const serviceName = "event-service"

// main 是 event 服务的组装根: 创建并组装所有依赖，然后交给 bootstrap 启动。
func main() {
	bootstrap.Init()
	cfg := bootstrap.GetCurrentConfig()

	db, err := gorm.Open(mysql.Open(cfg.Infra.Mysql.DSN), &gorm.Config{})
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("failed to connect to mysql")
	}
	if err := db.AutoMigrate(&infrastructure.EventModel{}); err != nil {
		logger.Logger.Fatal().Err(err).Msg("failed to migrate events schema")
	}

	repo := infrastructure.NewGormEventRepository(db)

	// 座位账本默认跟主存储同库，启用 redis 后走 Lua 脚本的热路径
	var ledger domain.SeatLedger = repo
	var onShutdown func(ctx context.Context)
	if cfg.Services.Event.SeatLedger == "redis" {
		redisClient := redisclient.NewClient(cfg.Infra.Redis.Addr, cfg.Infra.Redis.Password, cfg.Infra.Redis.DB)
		redisLedger, err := infrastructure.NewRedisSeatLedger(redisClient, repo)
		if err != nil {
			logger.Logger.Fatal().Err(err).Msg("failed to initialize redis seat ledger")
		}
		ledger = redisLedger
		onShutdown = func(ctx context.Context) {
			if err := redisClient.Close(); err != nil {
				logger.Logger.Error().Err(err).Msg("error closing redis client")
			}
		}
	}

	service := application.NewEventApplicationService(repo, ledger, otel.Tracer(serviceName))
	handler := interfaces.NewEventHandler(service)

	bootstrap.StartService(bootstrap.AppInfo{
		ServiceName: serviceName,
		Port:        cfg.Services.Event.Port,
		RegisterHandlers: func(appCtx bootstrap.AppCtx) {
			handler.RegisterRoutes(appCtx.Mux)
		},
		OnShutdown: onShutdown,
	})
}
