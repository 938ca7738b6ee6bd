// cmd/notification-service/main.go
package main

import (
	"context"
	"net/http"

	"evently/internal/pkg/bootstrap"
	"evently/internal/pkg/logger"
	"evently/internal/pkg/mq"
	"evently/internal/service/notification"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
)

const serviceName = "notification-service"

// main 组装通知服务: kafka 消费者把预订事件翻译成通知，
// WebSocket Hub 负责把通知推送给在线用户。
func main() {
	bootstrap.Init()
	cfg := bootstrap.GetCurrentConfig()

	hub := notification.NewHub()
	go hub.Run()

	reader := mq.NewKafkaReader(cfg.Infra.Kafka.Brokers, cfg.Infra.Kafka.BookingEventsTopic, cfg.Services.Notification.ConsumerGroup)
	consumer := notification.NewConsumer(reader, hub, otel.Tracer(serviceName))

	consumerCtx, stopConsumer := context.WithCancel(context.Background())
	go consumer.Run(consumerCtx)

	bootstrap.StartService(bootstrap.AppInfo{
		ServiceName: serviceName,
		Port:        cfg.Services.Notification.Port,
		RegisterHandlers: func(appCtx bootstrap.AppCtx) {
			appCtx.Mux.Handle("/metrics", promhttp.Handler())
			appCtx.Mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
			appCtx.Mux.HandleFunc("/ws", hub.ServeWS)
		},
		OnShutdown: func(ctx context.Context) {
			stopConsumer()
			if err := reader.Close(); err != nil {
				logger.Logger.Error().Err(err).Msg("error closing kafka reader")
			}
		},
	})
}
