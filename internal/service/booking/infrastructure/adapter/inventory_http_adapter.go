// internal/service/booking/infrastructure/adapter/inventory_http_adapter.go
package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"evently/internal/pkg/httpclient"
	"evently/internal/service/booking/domain/port"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel/trace"
)

// InventoryTransport 是座位账本的原始传输层视图。
// 与 port.EventInventoryService 不同，这里的错误会原样上抛，
// 由外层的断路器负责计数和吞掉。
type InventoryTransport interface {
	GetEvent(ctx context.Context, eventID uint64) (*port.EventSummary, error)
	ReserveSeats(ctx context.Context, eventID uint64, numberOfSeats int) (bool, error)
	ReleaseSeats(ctx context.Context, eventID uint64, numberOfSeats int) error
}

// InventoryHTTPAdapter 通过 HTTP 访问 Event Service 的座位账本。
// 每次调用都带独立的超时预算，避免下游抖动拖垮预订主流程。
type InventoryHTTPAdapter struct {
	client  *httpclient.Client
	baseURL string
	timeout time.Duration
}

func NewInventoryHTTPAdapter(baseURL string, timeout time.Duration, tracer trace.Tracer) *InventoryHTTPAdapter {
	return &InventoryHTTPAdapter{
		client:  httpclient.NewClient(tracer),
		baseURL: baseURL,
		timeout: timeout,
	}
}

func (a *InventoryHTTPAdapter) GetEvent(ctx context.Context, eventID uint64) (*port.EventSummary, error) {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	body, status, err := a.client.Get(ctx, fmt.Sprintf("%s/events/%d", a.baseURL, eventID))
	if err != nil {
		return nil, errors.Wrap(err, "get event")
	}
	// 事件不存在不是传输层失败
	if status == http.StatusNotFound {
		return nil, nil
	}
	if status != http.StatusOK {
		return nil, errors.Errorf("get event: unexpected status %d", status)
	}

	var summary port.EventSummary
	if err := json.Unmarshal(body, &summary); err != nil {
		return nil, errors.Wrap(err, "decode event summary")
	}
	return &summary, nil
}

func (a *InventoryHTTPAdapter) ReserveSeats(ctx context.Context, eventID uint64, numberOfSeats int) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	body, status, err := a.client.Post(ctx,
		fmt.Sprintf("%s/events/%d/reserve", a.baseURL, eventID),
		url.Values{"numberOfSeats": {strconv.Itoa(numberOfSeats)}})
	if err != nil {
		return false, errors.Wrap(err, "reserve seats")
	}
	if status != http.StatusOK {
		return false, errors.Errorf("reserve seats: unexpected status %d", status)
	}

	// 账本端对 reserve 的应答是一个裸布尔值
	var reserved bool
	if err := json.Unmarshal(body, &reserved); err != nil {
		return false, errors.Wrap(err, "decode reserve response")
	}
	return reserved, nil
}

func (a *InventoryHTTPAdapter) ReleaseSeats(ctx context.Context, eventID uint64, numberOfSeats int) error {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	_, status, err := a.client.Post(ctx,
		fmt.Sprintf("%s/events/%d/release", a.baseURL, eventID),
		url.Values{"numberOfSeats": {strconv.Itoa(numberOfSeats)}})
	if err != nil {
		return errors.Wrap(err, "release seats")
	}
	// 事件已不存在时释放没有意义，但也不是账本故障
	if status != http.StatusOK && status != http.StatusNotFound {
		return errors.Errorf("release seats: unexpected status %d", status)
	}
	return nil
}
