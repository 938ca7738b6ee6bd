// cmd/api-gateway/main.go
package main

import (
	"context"
	"net/http"
	"net/http/httputil"
	"net/url"
	"time"

	"evently/internal/pkg/bootstrap"
	"evently/internal/pkg/logger"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

const serviceName = "api-gateway"

var proxiedRequests = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "gateway_proxied_requests_total",
	Help: "Total number of requests proxied to each backend service.",
}, []string{"backend"})

// main 是平台统一入口的组装根。网关只做三件事:
// 路由转发、追踪上下文注入和就绪检查，业务语义全部在下游。
func main() {
	bootstrap.Init()
	cfg := bootstrap.GetCurrentConfig()

	eventProxy := newServiceProxy("event-service", cfg.Services.Gateway.EventServiceURL)
	bookingProxy := newServiceProxy("booking-service", cfg.Services.Gateway.BookingServiceURL)

	bootstrap.StartService(bootstrap.AppInfo{
		ServiceName: serviceName,
		Port:        cfg.Services.Gateway.Port,
		RegisterHandlers: func(appCtx bootstrap.AppCtx) {
			mux := appCtx.Mux
			mux.Handle("/metrics", promhttp.Handler())
			mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusOK)
				w.Write([]byte("OK"))
			})
			mux.HandleFunc("/readyz", readyz(cfg.Services.Gateway.EventServiceURL, cfg.Services.Gateway.BookingServiceURL))

			mux.Handle("/events", eventProxy)
			mux.Handle("/events/", eventProxy)
			mux.Handle("/bookings", bookingProxy)
			mux.Handle("/bookings/", bookingProxy)
		},
	})
}

// newServiceProxy 创建一个指向单个下游服务的反向代理。
// 每次转发都会带上 X-Request-ID 和注入的追踪上下文。
func newServiceProxy(backend, rawURL string) http.Handler {
	target, err := url.Parse(rawURL)
	if err != nil {
		logger.Logger.Fatal().Err(err).Str("backend", backend).Str("url", rawURL).Msg("invalid backend url")
	}
	proxy := httputil.NewSingleHostReverseProxy(target)
	proxy.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
		logger.Ctx(r.Context()).Error().Err(err).Str("backend", backend).Str("path", r.URL.Path).Msg("proxy error")
		http.Error(w, "bad gateway", http.StatusBadGateway)
	}

	tracer := otel.Tracer(serviceName)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "api-gateway.Proxy", trace.WithSpanKind(trace.SpanKindClient))
		defer span.End()

		// 请求没带 X-Request-ID 就在入口生成一个，贯穿整条调用链
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}
		r.Header.Set("X-Request-ID", requestID)

		span.SetAttributes(
			attribute.String("request.id", requestID),
			attribute.String("proxy.backend", backend),
			attribute.String("http.target", r.URL.Path),
		)
		otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(r.Header))

		proxiedRequests.WithLabelValues(backend).Inc()
		proxy.ServeHTTP(w, r.WithContext(ctx))
	})
}

// readyz 并发探测所有下游的 /healthz，任何一个不可达网关就不算就绪。
func readyz(backends ...string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		g, ctx := errgroup.WithContext(ctx)
		for _, base := range backends {
			base := base
			g.Go(func() error {
				req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+"/healthz", nil)
				if err != nil {
					return err
				}
				resp, err := http.DefaultClient.Do(req)
				if err != nil {
					return errors.Wrapf(err, "backend %s not ready", base)
				}
				defer resp.Body.Close()
				if resp.StatusCode != http.StatusOK {
					return errors.Errorf("backend %s returned %d", base, resp.StatusCode)
				}
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			http.Error(w, err.Error(), http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	}
}
