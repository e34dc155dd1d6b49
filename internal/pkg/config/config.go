package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// -----------------------------------------------------------------------------
// Environment variable configuration guidelines:
// - required: Values that differ between environments (port, DB connection, etc.), security settings
// - default: Values common across all environments (timezone, timeout, etc.), standard settings
// -----------------------------------------------------------------------------

type Config struct {
	Server    ServerConfig
	DB        DBConfig
	Redis     RedisConfig
	Bus       BusConfig
	AWS       AWSConfig
	Payment   PaymentConfig
	Notify    NotifyConfig
	Worker    WorkerConfig
	Garage    GarageConfig
	CORS      CORSConfig
	Log       LogConfig
	JWT       JWTConfig
	Telemetry TelemetryConfig
}

type ServerConfig struct {
	Port string `envconfig:"PORT" required:"true"`
}

type DBConfig struct {
	Host     string `envconfig:"DB_HOST" default:"localhost"`
	Port     string `envconfig:"DB_PORT" default:"5432"`
	User     string `envconfig:"DB_USER" required:"true"`
	Password string `envconfig:"DB_PASSWORD" required:"true"`
	DBName   string `envconfig:"DB_NAME" required:"true"`
	SSLMode  string `envconfig:"DB_SSL_MODE" default:"disable"`
	TimeZone string `envconfig:"DB_TIMEZONE" default:"Africa/Cairo"`
}

type RedisConfig struct {
	Address      string        `envconfig:"REDIS_ADDRESS" default:"localhost:6379"`
	Password     string        `envconfig:"REDIS_PASSWORD"`
	Database     int           `envconfig:"REDIS_DB" default:"0"`
	Prefix       string        `envconfig:"REDIS_PREFIX" default:"garage:"`
	Timeout      time.Duration `envconfig:"REDIS_TIMEOUT" default:"5s"`
	PoolSize     int           `envconfig:"REDIS_POOL_SIZE" default:"20"`
	MinIdleConns int           `envconfig:"REDIS_MIN_IDLE_CONNS" default:"2"`
}

// BusConfig selects the device message bus. Driver "mqtt" talks to a broker
// directly; driver "awsiot" consumes an SQS queue fed by an IoT rule and
// publishes through the IoT data plane.
type BusConfig struct {
	Driver         string        `envconfig:"BUS_DRIVER" default:"mqtt"`
	BrokerURL      string        `envconfig:"MQTT_BROKER_URL" default:"tcp://localhost:1883"`
	ClientID       string        `envconfig:"MQTT_CLIENT_ID" default:"garage-orchestrator"`
	Username       string        `envconfig:"MQTT_USERNAME"`
	Password       string        `envconfig:"MQTT_PASSWORD"`
	TopicPrefix    string        `envconfig:"BUS_TOPIC_PREFIX" default:"garage/"`
	QoS            byte          `envconfig:"BUS_QOS" default:"1"`
	PublishTimeout time.Duration `envconfig:"BUS_PUBLISH_TIMEOUT" default:"5s"`
	ConnectTimeout time.Duration `envconfig:"BUS_CONNECT_TIMEOUT" default:"10s"`
}

type AWSConfig struct {
	Region            string `envconfig:"AWS_REGION" default:"eu-central-1"`
	SQSEventQueueURL  string `envconfig:"AWS_SQS_EVENT_QUEUE_URL"`
	IoTDataEndpoint   string `envconfig:"AWS_IOT_DATA_ENDPOINT"`
	SQSVisibilitySecs int32  `envconfig:"AWS_SQS_VISIBILITY_SECONDS" default:"60"`
	SQSWaitSecs       int32  `envconfig:"AWS_SQS_WAIT_SECONDS" default:"20"`
}

type PaymentConfig struct {
	SecretKey      string        `envconfig:"STRIPE_SECRET_KEY"`
	WebhookSecret  string        `envconfig:"STRIPE_WEBHOOK_SECRET"`
	Currency       string        `envconfig:"PAYMENT_CURRENCY" default:"egp"`
	HoldAmount     int64         `envconfig:"PAYMENT_HOLD_AMOUNT" default:"2000"`
	CaptureTimeout time.Duration `envconfig:"PAYMENT_CAPTURE_TIMEOUT" default:"15s"`
	SuccessURL     string        `envconfig:"PAYMENT_SUCCESS_URL" default:"https://example.com/payment/thanks"`
	CancelURL      string        `envconfig:"PAYMENT_CANCEL_URL" default:"https://example.com/payment/retry"`
}

type NotifyConfig struct {
	ExpoPushURL     string        `envconfig:"EXPO_PUSH_URL" default:"https://exp.host/--/api/v2/push/send"`
	PushTimeout     time.Duration `envconfig:"PUSH_TIMEOUT" default:"5s"`
	TwilioSID       string        `envconfig:"TWILIO_SID"`
	TwilioToken     string        `envconfig:"TWILIO_TOKEN"`
	TwilioFromPhone string        `envconfig:"TWILIO_PHONE_NUMBER"`
}

type WorkerConfig struct {
	GateConcurrency      int           `envconfig:"WORKER_GATE_CONCURRENCY" default:"5"`
	SlotConcurrency      int           `envconfig:"WORKER_SLOT_CONCURRENCY" default:"5"`
	LifecycleConcurrency int           `envconfig:"WORKER_LIFECYCLE_CONCURRENCY" default:"5"`
	PaymentConcurrency   int           `envconfig:"WORKER_PAYMENT_CONCURRENCY" default:"2"`
	SystemConcurrency    int           `envconfig:"WORKER_SYSTEM_CONCURRENCY" default:"1"`
	PollInterval         time.Duration `envconfig:"WORKER_POLL_INTERVAL" default:"500ms"`
	MaxBackoff           time.Duration `envconfig:"WORKER_MAX_BACKOFF" default:"5s"`
	VisibilityTimeout    time.Duration `envconfig:"WORKER_VISIBILITY_TIMEOUT" default:"5m"`
	MaxAttempts          int           `envconfig:"WORKER_MAX_ATTEMPTS" default:"5"`
}

// GarageConfig carries the business constants of the garage.
type GarageConfig struct {
	TimeZone              string        `envconfig:"GARAGE_TIMEZONE" default:"Africa/Cairo"`
	EarlyEntryGrace       time.Duration `envconfig:"GARAGE_EARLY_ENTRY_GRACE" default:"15m"`
	ExitGrace             time.Duration `envconfig:"GARAGE_EXIT_GRACE" default:"10m"`
	OccupancyCheckDelay   time.Duration `envconfig:"GARAGE_OCCUPANCY_CHECK_DELAY" default:"10m"`
	MaxExtension          time.Duration `envconfig:"GARAGE_MAX_EXTENSION" default:"8h"`
	EntryPermitTTL        time.Duration `envconfig:"GARAGE_ENTRY_PERMIT_TTL" default:"15m"`
	RegularRatePerMinute  float64       `envconfig:"GARAGE_REGULAR_RATE_PER_MINUTE" default:"0.5"`
	PenaltyRatePerMinute  float64       `envconfig:"GARAGE_PENALTY_RATE_PER_MINUTE" default:"1.0"`
	ConflictFee           float64       `envconfig:"GARAGE_CONFLICT_FEE" default:"20"`
	MinimumCharge         float64       `envconfig:"GARAGE_MINIMUM_CHARGE" default:"5"`
	DeviceHeartbeatWindow time.Duration `envconfig:"GARAGE_DEVICE_HEARTBEAT_WINDOW" default:"2m"`
}

type CORSConfig struct {
	AllowOrigins     []string      `envconfig:"CORS_ALLOW_ORIGINS" default:"http://localhost:3000,http://localhost:8080"`
	AllowMethods     []string      `envconfig:"CORS_ALLOW_METHODS" default:"GET,POST,PUT,PATCH,DELETE,OPTIONS"`
	AllowHeaders     []string      `envconfig:"CORS_ALLOW_HEADERS" default:"Origin,Content-Type,Accept,Authorization"`
	ExposeHeaders    []string      `envconfig:"CORS_EXPOSE_HEADERS" default:"Content-Length"`
	AllowCredentials bool          `envconfig:"CORS_ALLOW_CREDENTIALS" default:"true"`
	MaxAge           time.Duration `envconfig:"CORS_MAX_AGE" default:"12h"`
}

type LogConfig struct {
	Level          string `envconfig:"LOG_LEVEL" default:"info"`
	TimeZone       string `envconfig:"LOG_TIMEZONE" default:"Africa/Cairo"`
	TimeFormat     string `envconfig:"LOG_TIME_FORMAT" default:"2006-01-02 15:04:05.000"`
	TimeZoneOffset int    `envconfig:"LOG_TIMEZONE_OFFSET" default:"7200"` // 2*60*60
}

type JWTConfig struct {
	Secret   string `envconfig:"JWT_SECRET" required:"true"`
	Duration string `envconfig:"JWT_DURATION" default:"24h"`
}

type TelemetryConfig struct {
	ServiceName    string  `envconfig:"OTEL_SERVICE_NAME" default:"garage-orchestrator"`
	ExporterTarget string  `envconfig:"OTEL_EXPORTER_ENDPOINT"`
	SamplingRatio  float64 `envconfig:"OTEL_SAMPLING_RATIO" default:"1.0"`
}

func (c *DBConfig) BuildDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s&timezone=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode, c.TimeZone,
	)
}

// Location resolves the garage time zone, falling back to UTC.
func (c GarageConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func LoadConfig() (Config, error) {
	// .env is optional; real deployments inject the environment directly
	_ = godotenv.Load()

	var cfg Config
	err := envconfig.Process("", &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("failed to process env config: %w", err)
	}
	return cfg, nil
}

func NewTestConfig() Config {
	return Config{
		Server: ServerConfig{
			Port: "8889", // Test port
		},
		DB: DBConfig{
			Host:     "localhost",
			Port:     "15433", // Test DB port
			User:     "test",
			Password: "test",
			DBName:   "test_db",
			SSLMode:  "disable",
			TimeZone: "UTC",
		},
		Redis: RedisConfig{
			Address:  "localhost:16379",
			Prefix:   "garage-test:",
			Timeout:  2 * time.Second,
			PoolSize: 5,
		},
		Bus: BusConfig{
			Driver:         "mqtt",
			TopicPrefix:    "garage/",
			QoS:            1,
			PublishTimeout: time.Second,
			ConnectTimeout: time.Second,
		},
		Payment: PaymentConfig{
			Currency:       "egp",
			HoldAmount:     2000,
			CaptureTimeout: time.Second,
		},
		Worker: WorkerConfig{
			GateConcurrency:      5,
			SlotConcurrency:      5,
			LifecycleConcurrency: 5,
			PaymentConcurrency:   2,
			SystemConcurrency:    1,
			PollInterval:         50 * time.Millisecond,
			MaxBackoff:           200 * time.Millisecond,
			VisibilityTimeout:    time.Minute,
			MaxAttempts:          3,
		},
		Garage: NewDefaultGarageConfig(),
		Log: LogConfig{
			Level:          "error", // Error level only for tests
			TimeZone:       "UTC",
			TimeFormat:     "2006-01-02 15:04:05.000",
			TimeZoneOffset: 0,
		},
		JWT: JWTConfig{
			Secret:   "test-secret",
			Duration: "1h",
		},
		Telemetry: TelemetryConfig{
			ServiceName:   "garage-orchestrator-test",
			SamplingRatio: 1.0,
		},
	}
}

// NewDefaultGarageConfig mirrors the envconfig defaults for code paths that
// build a config without the environment (tests, CLI).
func NewDefaultGarageConfig() GarageConfig {
	return GarageConfig{
		TimeZone:              "UTC",
		EarlyEntryGrace:       15 * time.Minute,
		ExitGrace:             10 * time.Minute,
		OccupancyCheckDelay:   10 * time.Minute,
		MaxExtension:          8 * time.Hour,
		EntryPermitTTL:        15 * time.Minute,
		RegularRatePerMinute:  0.5,
		PenaltyRatePerMinute:  1.0,
		ConflictFee:           20,
		MinimumCharge:         5,
		DeviceHeartbeatWindow: 2 * time.Minute,
	}
}
