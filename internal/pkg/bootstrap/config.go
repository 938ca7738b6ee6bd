// internal/pkg/bootstrap/config.go
package bootstrap

import (
	"os"
	"strings"
	"sync"
	"time"

	"evently/internal/pkg/logger"

	"gopkg.in/yaml.v3"
)

// Config 聚合了平台所有服务的配置。
// 配置来源的优先级: 环境变量 > 配置文件 > 内置默认值。
type Config struct {
	Infra struct {
		Jaeger struct {
			Endpoint string `yaml:"endpoint"`
		} `yaml:"jaeger"`
		Mysql struct {
			DSN string `yaml:"dsn"`
		} `yaml:"mysql"`
		Redis struct {
			Addr     string `yaml:"addr"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
		} `yaml:"redis"`
		Kafka struct {
			Brokers            []string `yaml:"brokers"`
			BookingEventsTopic string   `yaml:"booking_events_topic"`
		} `yaml:"kafka"`
		Nacos struct {
			ServerAddrs string `yaml:"server_addrs"`
			Namespace   string `yaml:"namespace"`
			Group       string `yaml:"group"`
		} `yaml:"nacos"`
	} `yaml:"infra"`

	Services struct {
		Gateway struct {
			Port              int    `yaml:"port"`
			EventServiceURL   string `yaml:"event_service_url"`
			BookingServiceURL string `yaml:"booking_service_url"`
		} `yaml:"gateway"`
		Event struct {
			Port       int    `yaml:"port"`
			SeatLedger string `yaml:"seat_ledger"` // mysql | redis
		} `yaml:"event"`
		Booking struct {
			Port            int           `yaml:"port"`
			EventServiceURL string        `yaml:"event_service_url"`
			RequestTimeout  time.Duration `yaml:"request_timeout"`
			Breaker         struct {
				FailureThreshold  int           `yaml:"failure_threshold"`
				OpenInterval      time.Duration `yaml:"open_interval"`
				HalfOpenMaxProbes int           `yaml:"half_open_max_probes"`
			} `yaml:"breaker"`
		} `yaml:"booking"`
		Notification struct {
			Port          int    `yaml:"port"`
			ConsumerGroup string `yaml:"consumer_group"`
		} `yaml:"notification"`
	} `yaml:"services"`
}

var (
	currentConfig *Config
	configOnce    sync.Once
)

// Init 加载配置文件并应用环境变量覆盖。所有 main 函数在启动时调用。
func Init() {
	configOnce.Do(func() {
		cfg := defaultConfig()

		path := getEnv("CONFIG_PATH", "configs/config.yaml")
		data, err := os.ReadFile(path)
		if err != nil {
			logger.Logger.Warn().Str("path", path).Err(err).Msg("config file not readable, using defaults")
		} else if err := yaml.Unmarshal(data, cfg); err != nil {
			logger.Logger.Fatal().Str("path", path).Err(err).Msg("invalid config file")
		}

		applyEnvOverrides(cfg)
		currentConfig = cfg
	})
}

// GetCurrentConfig 返回进程级配置。必须先调用 Init。
func GetCurrentConfig() *Config {
	if currentConfig == nil {
		Init()
	}
	return currentConfig
}

func defaultConfig() *Config {
	cfg := &Config{}
	cfg.Infra.Jaeger.Endpoint = "http://localhost:14268/api/traces"
	cfg.Infra.Mysql.DSN = "root:root@tcp(localhost:3306)/evently?charset=utf8mb4&parseTime=True&loc=Local"
	cfg.Infra.Redis.Addr = "localhost:6379"
	cfg.Infra.Kafka.Brokers = []string{"localhost:9092"}
	cfg.Infra.Kafka.BookingEventsTopic = "booking-events"
	cfg.Infra.Nacos.ServerAddrs = "localhost:8848"
	cfg.Infra.Nacos.Group = "DEFAULT_GROUP"

	cfg.Services.Gateway.Port = 8080
	cfg.Services.Gateway.EventServiceURL = "http://localhost:8081"
	cfg.Services.Gateway.BookingServiceURL = "http://localhost:8082"
	cfg.Services.Event.Port = 8081
	cfg.Services.Event.SeatLedger = "mysql"
	cfg.Services.Booking.Port = 8082
	cfg.Services.Booking.EventServiceURL = "http://localhost:8081"
	cfg.Services.Booking.RequestTimeout = 3 * time.Second
	cfg.Services.Booking.Breaker.FailureThreshold = 5
	cfg.Services.Booking.Breaker.OpenInterval = 30 * time.Second
	cfg.Services.Booking.Breaker.HalfOpenMaxProbes = 1
	cfg.Services.Notification.Port = 8083
	cfg.Services.Notification.ConsumerGroup = "notification-group"
	return cfg
}

// applyEnvOverrides 让部署环境可以只覆盖单个字段而不用改文件。
func applyEnvOverrides(cfg *Config) {
	if v, ok := os.LookupEnv("JAEGER_ENDPOINT"); ok {
		cfg.Infra.Jaeger.Endpoint = v
	}
	if v, ok := os.LookupEnv("MYSQL_DSN"); ok {
		cfg.Infra.Mysql.DSN = v
	}
	if v, ok := os.LookupEnv("REDIS_ADDR"); ok {
		cfg.Infra.Redis.Addr = v
	}
	if v, ok := os.LookupEnv("KAFKA_BROKERS"); ok {
		cfg.Infra.Kafka.Brokers = strings.Split(v, ",")
	}
	if v, ok := os.LookupEnv("NACOS_SERVER_ADDRS"); ok {
		cfg.Infra.Nacos.ServerAddrs = v
	}
	if v, ok := os.LookupEnv("NACOS_NAMESPACE"); ok {
		cfg.Infra.Nacos.Namespace = v
	}
	if v, ok := os.LookupEnv("NACOS_GROUP"); ok {
		cfg.Infra.Nacos.Group = v
	}
	// Booking Service 访问 Event Service 的基地址是最常被覆盖的一项，
	// 与原平台的 EVENT_SERVICE_URL 约定保持一致。
	if v, ok := os.LookupEnv("EVENT_SERVICE_URL"); ok {
		cfg.Services.Booking.EventServiceURL = v
		cfg.Services.Gateway.EventServiceURL = v
	}
	if v, ok := os.LookupEnv("BOOKING_SERVICE_URL"); ok {
		cfg.Services.Gateway.BookingServiceURL = v
	}
	if v, ok := os.LookupEnv("SEAT_LEDGER"); ok {
		cfg.Services.Event.SeatLedger = v
	}
}

// getEnv 是一个内部辅助函数，从环境变量中读取配置。
func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}
