// internal/service/booking/infrastructure/adapter/notification_kafka_adapter.go
package adapter

import (
	"context"
	"encoding/json"
	"strconv"

	"evently/internal/pkg/mq"
	"evently/internal/service/booking/domain/port"

	"github.com/pkg/errors"
	"github.com/segmentio/kafka-go"
)

// NotificationKafkaAdapter 把预订生命周期事件发布到 booking-events topic。
// 以 userId 作为分区键，保证同一用户的通知按序消费。
type NotificationKafkaAdapter struct {
	writer *kafka.Writer
}

func NewNotificationKafkaAdapter(writer *kafka.Writer) *NotificationKafkaAdapter {
	return &NotificationKafkaAdapter{writer: writer}
}

func (a *NotificationKafkaAdapter) Publish(ctx context.Context, event *port.BookingEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return errors.Wrap(err, "marshal booking event")
	}
	key := []byte(strconv.FormatUint(event.UserID, 10))
	return errors.Wrap(mq.ProduceMessage(ctx, a.writer, key, payload), "produce booking event")
}

var _ port.BookingEventProducer = (*NotificationKafkaAdapter)(nil)
