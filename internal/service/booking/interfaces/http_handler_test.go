package interfaces

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"evently/internal/service/booking/application"
	"evently/internal/service/booking/infrastructure"
	"evently/internal/service/booking/infrastructure/adapter"

	eventapplication "evently/internal/service/event/application"
	eventinfrastructure "evently/internal/service/event/infrastructure"
	eventinterfaces "evently/internal/service/event/interfaces"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
)

// newBookingServer 搭起完整的进程内链路:
// booking handler -> 断路器 -> HTTP 库存客户端 -> 真实的 event handler。
// 返回 booking 测试服务器和 event 测试服务器。
func newBookingServer(t *testing.T) (*httptest.Server, *httptest.Server) {
	t.Helper()

	eventRepo := eventinfrastructure.NewMemoryEventRepository()
	eventSvc := eventapplication.NewEventApplicationService(eventRepo, eventRepo, otel.Tracer("test"))
	eventMux := http.NewServeMux()
	eventinterfaces.NewEventHandler(eventSvc).RegisterRoutes(eventMux)
	eventServer := httptest.NewServer(eventMux)
	t.Cleanup(eventServer.Close)

	transport := adapter.NewInventoryHTTPAdapter(eventServer.URL, time.Second, otel.Tracer("test"))
	inventory := adapter.NewInventoryBreaker(transport, adapter.BreakerConfig{})

	repo := infrastructure.NewMemoryBookingRepository()
	svc := application.NewBookingApplicationService(repo, inventory, nil, otel.Tracer("test"))
	mux := http.NewServeMux()
	NewBookingHandler(svc).RegisterRoutes(mux)
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server, eventServer
}

func createEventViaAPI(t *testing.T, eventServer *httptest.Server, capacity int) *eventapplication.EventDTO {
	t.Helper()
	body, _ := json.Marshal(&eventapplication.EventDTO{
		Name:      "Summer Festival",
		Location:  "Lyon",
		Category:  "FESTIVAL",
		Capacity:  capacity,
		BasePrice: 25,
		StartDate: time.Now().Add(72 * time.Hour),
		EndDate:   time.Now().Add(96 * time.Hour),
	})
	resp, err := http.Post(eventServer.URL+"/events", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var dto eventapplication.EventDTO
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&dto))
	return &dto
}

func availableSeats(t *testing.T, eventServer *httptest.Server, eventID uint64) int {
	t.Helper()
	resp, err := http.Get(fmt.Sprintf("%s/events/%d", eventServer.URL, eventID))
	require.NoError(t, err)
	defer resp.Body.Close()

	var dto eventapplication.EventDTO
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&dto))
	return dto.AvailableSeats
}

func postBooking(t *testing.T, server *httptest.Server, req *application.CreateBookingRequest) *http.Response {
	t.Helper()
	body, _ := json.Marshal(req)
	resp, err := http.Post(server.URL+"/bookings", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	return resp
}

func bookingRequest(eventID uint64, tickets int) *application.CreateBookingRequest {
	return &application.CreateBookingRequest{
		EventID:         eventID,
		UserID:          7,
		NumberOfTickets: tickets,
		TotalPrice:      float64(tickets) * 25,
		UserEmail:       "alice@example.com",
		EventName:       "Summer Festival",
		EventDate:       time.Now().Add(72 * time.Hour),
	}
}

func TestBookingHandler_CreateThenCancelRoundTrip(t *testing.T) {
	server, eventServer := newBookingServer(t)
	event := createEventViaAPI(t, eventServer, 5)

	// 创建预订，账本侧的座位被预占
	resp := postBooking(t, server, bookingRequest(event.ID, 2))
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created application.BookingResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	assert.Equal(t, "PENDING", string(created.Status))
	assert.Equal(t, 3, availableSeats(t, eventServer, event.ID))

	// 取消预订，座位被归还
	resp2, err := http.Post(fmt.Sprintf("%s/bookings/%d/cancel", server.URL, created.ID), "", nil)
	require.NoError(t, err)
	defer resp2.Body.Close()
	require.Equal(t, http.StatusOK, resp2.StatusCode)

	var cancelled application.BookingResponse
	require.NoError(t, json.NewDecoder(resp2.Body).Decode(&cancelled))
	assert.Equal(t, "CANCELLED", string(cancelled.Status))
	assert.Equal(t, 5, availableSeats(t, eventServer, event.ID))
}

func TestBookingHandler_InsufficientSeatsIsConflict(t *testing.T) {
	server, eventServer := newBookingServer(t)
	event := createEventViaAPI(t, eventServer, 1)

	resp := postBooking(t, server, bookingRequest(event.ID, 2))
	defer resp.Body.Close()
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	// 失败的预订不占座
	assert.Equal(t, 1, availableSeats(t, eventServer, event.ID))

	// 也没有留下预订记录
	listResp, err := http.Get(server.URL + "/bookings")
	require.NoError(t, err)
	defer listResp.Body.Close()
	var bookings []*application.BookingResponse
	require.NoError(t, json.NewDecoder(listResp.Body).Decode(&bookings))
	assert.Empty(t, bookings)
}

func TestBookingHandler_EventServiceDownIsConflict(t *testing.T) {
	server, eventServer := newBookingServer(t)
	event := createEventViaAPI(t, eventServer, 5)

	// 账本不可达与余票不足对外表现一致
	eventServer.Close()

	resp := postBooking(t, server, bookingRequest(event.ID, 2))
	defer resp.Body.Close()
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestBookingHandler_CancelSurvivesEventServiceOutage(t *testing.T) {
	server, eventServer := newBookingServer(t)
	event := createEventViaAPI(t, eventServer, 5)

	resp := postBooking(t, server, bookingRequest(event.ID, 2))
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created application.BookingResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))

	// 账本宕机后取消依然成功，这是补偿协议的非对称性
	eventServer.Close()

	resp2, err := http.Post(fmt.Sprintf("%s/bookings/%d/cancel", server.URL, created.ID), "", nil)
	require.NoError(t, err)
	defer resp2.Body.Close()
	require.Equal(t, http.StatusOK, resp2.StatusCode)

	var cancelled application.BookingResponse
	require.NoError(t, json.NewDecoder(resp2.Body).Decode(&cancelled))
	assert.Equal(t, "CANCELLED", string(cancelled.Status))
}

func TestBookingHandler_ValidationErrorsReturnFieldMap(t *testing.T) {
	server, _ := newBookingServer(t)

	resp := postBooking(t, server, &application.CreateBookingRequest{
		EventID:         0,
		NumberOfTickets: 0,
		UserEmail:       "nope",
	})
	defer resp.Body.Close()
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var payload struct {
		Errors map[string]string `json:"errors"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	assert.Contains(t, payload.Errors, "eventId")
	assert.Contains(t, payload.Errors, "numberOfTickets")
	assert.Contains(t, payload.Errors, "userEmail")
}

func TestBookingHandler_GetUnknownBookingIs404(t *testing.T) {
	server, _ := newBookingServer(t)

	resp, err := http.Get(server.URL + "/bookings/999")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp2, err := http.Get(server.URL + "/bookings/not-a-number")
	require.NoError(t, err)
	defer resp2.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp2.StatusCode)
}

func TestBookingHandler_DoubleCancelIsConflict(t *testing.T) {
	server, eventServer := newBookingServer(t)
	event := createEventViaAPI(t, eventServer, 5)

	resp := postBooking(t, server, bookingRequest(event.ID, 2))
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created application.BookingResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))

	resp2, err := http.Post(fmt.Sprintf("%s/bookings/%d/cancel", server.URL, created.ID), "", nil)
	require.NoError(t, err)
	resp2.Body.Close()
	require.Equal(t, http.StatusOK, resp2.StatusCode)

	resp3, err := http.Post(fmt.Sprintf("%s/bookings/%d/cancel", server.URL, created.ID), "", nil)
	require.NoError(t, err)
	defer resp3.Body.Close()
	assert.Equal(t, http.StatusConflict, resp3.StatusCode)

	// 重复取消不会二次归还座位
	assert.Equal(t, 5, availableSeats(t, eventServer, event.ID))
}

func TestBookingHandler_ConfirmFlow(t *testing.T) {
	server, eventServer := newBookingServer(t)
	event := createEventViaAPI(t, eventServer, 5)

	resp := postBooking(t, server, bookingRequest(event.ID, 2))
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created application.BookingResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))

	resp2, err := http.Post(fmt.Sprintf("%s/bookings/%d/confirm", server.URL, created.ID), "", nil)
	require.NoError(t, err)
	defer resp2.Body.Close()
	require.Equal(t, http.StatusOK, resp2.StatusCode)

	var confirmed application.BookingResponse
	require.NoError(t, json.NewDecoder(resp2.Body).Decode(&confirmed))
	assert.Equal(t, "CONFIRMED", string(confirmed.Status))
	require.NotNil(t, confirmed.ConfirmedAt)

	// 确认不影响座位计数，预占在创建时已经完成
	assert.Equal(t, 3, availableSeats(t, eventServer, event.ID))

	resp3, err := http.Post(fmt.Sprintf("%s/bookings/%d/confirm", server.URL, created.ID), "", nil)
	require.NoError(t, err)
	defer resp3.Body.Close()
	assert.Equal(t, http.StatusConflict, resp3.StatusCode)
}

func TestBookingHandler_Health(t *testing.T) {
	server, _ := newBookingServer(t)

	for _, path := range []string{"/healthz", "/bookings/health"} {
		resp, err := http.Get(server.URL + path)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	}
}
