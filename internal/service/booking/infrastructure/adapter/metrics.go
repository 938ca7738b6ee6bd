// internal/service/booking/infrastructure/adapter/metrics.go
package adapter

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// inventoryCallFailures 统计账本调用的传输层失败次数，按操作维度区分。
	inventoryCallFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "booking_inventory_client_failures_total",
		Help: "Total number of failed calls to the event inventory service.",
	}, []string{"operation"})

	// breakerTransitions 统计断路器状态迁移次数。
	breakerTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "booking_inventory_breaker_transitions_total",
		Help: "Total number of inventory circuit breaker state transitions.",
	}, []string{"from", "to"})
)
