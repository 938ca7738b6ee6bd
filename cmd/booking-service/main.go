// cmd/booking-service/main.go
package main

import (
	"context"

	"evently/internal/pkg/bootstrap"
	"evently/internal/pkg/logger"
	"evently/internal/pkg/mq"
	"evently/internal/service/booking/application"
	"evently/internal/service/booking/infrastructure"
	"evently/internal/service/booking/infrastructure/adapter"
	"evently/internal/service/booking/interfaces"

	"go.opentelemetry.io/otel"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

const serviceName = "booking-service"

// main 是 booking 服务的组装根。
func main() {
	bootstrap.Init()
	cfg := bootstrap.GetCurrentConfig()
	tracer := otel.Tracer(serviceName)

	db, err := gorm.Open(mysql.Open(cfg.Infra.Mysql.DSN), &gorm.Config{})
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("failed to connect to mysql")
	}
	if err := db.AutoMigrate(&infrastructure.BookingModel{}); err != nil {
		logger.Logger.Fatal().Err(err).Msg("failed to migrate bookings schema")
	}
	repo := infrastructure.NewGormBookingRepository(db)

	// 库存客户端: HTTP 传输层外面包一层断路器，账本不可达时走安全默认值
	transport := adapter.NewInventoryHTTPAdapter(cfg.Services.Booking.EventServiceURL, cfg.Services.Booking.RequestTimeout, tracer)
	inventory := adapter.NewInventoryBreaker(transport, adapter.BreakerConfig{
		FailureThreshold:  cfg.Services.Booking.Breaker.FailureThreshold,
		OpenInterval:      cfg.Services.Booking.Breaker.OpenInterval,
		HalfOpenMaxProbes: cfg.Services.Booking.Breaker.HalfOpenMaxProbes,
	})

	kafkaWriter := mq.NewKafkaWriter(cfg.Infra.Kafka.Brokers, cfg.Infra.Kafka.BookingEventsTopic)
	producer := adapter.NewNotificationKafkaAdapter(kafkaWriter)

	service := application.NewBookingApplicationService(repo, inventory, producer, tracer)
	handler := interfaces.NewBookingHandler(service)

	bootstrap.StartService(bootstrap.AppInfo{
		ServiceName: serviceName,
		Port:        cfg.Services.Booking.Port,
		RegisterHandlers: func(appCtx bootstrap.AppCtx) {
			handler.RegisterRoutes(appCtx.Mux)
		},
		OnShutdown: func(ctx context.Context) {
			if err := kafkaWriter.Close(); err != nil {
				logger.Logger.Error().Err(err).Msg("error closing kafka writer")
			}
		},
	})
}
