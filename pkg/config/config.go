package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	Service      ServiceConfig
	DB           DBConfig
	Redis        RedisConfig
	MQTT         MQTTConfig
	Printer      PrinterConfig
	Pipeline     PipelineConfig
	NetSuite     NetSuiteConfig
	OrderSync    OrderSyncConfig
	FeatureFlags FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"COILPRINT_APP_ENV" default:"dev"`
	Port         string `envconfig:"COILPRINT_APP_PORT" default:"8000"`
	LogLevel     string `envconfig:"COILPRINT_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"COILPRINT_LOG_WARN_STACK" default:"false"`
	PlantCode    string `envconfig:"COILPRINT_PLANT_CODE" default:"MCPL-1"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"COILPRINT_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"COILPRINT_DB_DSN"`
	Driver string `envconfig:"COILPRINT_DB_DRIVER" default:"sqlite"`

	MaxOpenConns    int           `envconfig:"COILPRINT_DB_MAX_OPEN_CONNS" default:"10"`
	MaxIdleConns    int           `envconfig:"COILPRINT_DB_MAX_IDLE_CONNS" default:"5"`
	ConnMaxLifetime time.Duration `envconfig:"COILPRINT_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"COILPRINT_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"COILPRINT_REDIS_URL"`
	Address      string        `envconfig:"COILPRINT_REDIS_ADDR" default:"127.0.0.1:6379"`
	Password     string        `envconfig:"COILPRINT_REDIS_PASSWORD"`
	DB           int           `envconfig:"COILPRINT_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"COILPRINT_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"COILPRINT_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"COILPRINT_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"COILPRINT_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"COILPRINT_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type MQTTConfig struct {
	BrokerHost        string        `envconfig:"COILPRINT_MQTT_BROKER_HOST" required:"true"`
	BrokerPort        int           `envconfig:"COILPRINT_MQTT_BROKER_PORT" default:"1883"`
	Username          string        `envconfig:"COILPRINT_MQTT_USERNAME"`
	Password          string        `envconfig:"COILPRINT_MQTT_PASSWORD"`
	ClientIDPrefix    string        `envconfig:"COILPRINT_MQTT_CLIENT_ID_PREFIX" default:"coilprint-listener"`
	Topics            []string      `envconfig:"COILPRINT_MQTT_TOPICS" default:"malhotra/Print_AutoCoiler1,malhotra/Print_AutoCoiler2,malhotra/Print_AutoCoiler3,malhotra/Print_AutoCoiler4,malhotra/Print_AutoCoiler5"`
	QoS               byte          `envconfig:"COILPRINT_MQTT_QOS" default:"1"`
	ConnectTimeout    time.Duration `envconfig:"COILPRINT_MQTT_CONNECT_TIMEOUT" default:"10s"`
	KeepAlive         time.Duration `envconfig:"COILPRINT_MQTT_KEEP_ALIVE" default:"30s"`
	MaxReconnectDelay time.Duration `envconfig:"COILPRINT_MQTT_MAX_RECONNECT_DELAY" default:"1m"`
}

type PrinterConfig struct {
	Host          string        `envconfig:"COILPRINT_PRINTER_HOST" required:"true"`
	Port          int           `envconfig:"COILPRINT_PRINTER_PORT" default:"9100"`
	DialTimeout   time.Duration `envconfig:"COILPRINT_PRINTER_DIAL_TIMEOUT" default:"5s"`
	WriteTimeout  time.Duration `envconfig:"COILPRINT_PRINTER_WRITE_TIMEOUT" default:"10s"`
	MaxConcurrent int64         `envconfig:"COILPRINT_PRINTER_MAX_CONCURRENT" default:"2"`
}

type PipelineConfig struct {
	ShutdownGrace time.Duration `envconfig:"COILPRINT_PIPELINE_SHUTDOWN_GRACE" default:"30s"`
}

type NetSuiteConfig struct {
	AccountID      string `envconfig:"COILPRINT_NS_ACCOUNT_ID"`
	ConsumerKey    string `envconfig:"COILPRINT_NS_CONSUMER_KEY"`
	CertificateID  string `envconfig:"COILPRINT_NS_CERTIFICATE_ID"`
	ScriptID       int    `envconfig:"COILPRINT_NS_SCRIPT_ID"`
	DeployID       int    `envconfig:"COILPRINT_NS_DEPLOY_ID"`
	PrivateKeyPath string `envconfig:"COILPRINT_NS_PRIVATE_KEY_PATH"`
	CreatedAtMin   string `envconfig:"COILPRINT_NS_CREATED_AT_MIN"`
}

// Configured reports whether the NetSuite integration has enough settings to run.
func (n NetSuiteConfig) Configured() bool {
	return n.AccountID != "" && n.ConsumerKey != "" && n.CertificateID != "" && n.PrivateKeyPath != ""
}

type OrderSyncConfig struct {
	Interval time.Duration `envconfig:"COILPRINT_ORDER_SYNC_INTERVAL" default:"15m"`
	LockTTL  time.Duration `envconfig:"COILPRINT_ORDER_SYNC_LOCK_TTL" default:"10m"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"COILPRINT_AUTO_MIGRATE" default:"false"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}
	if strings.EqualFold(db.Driver, DBDriverSQLite) {
		db.DSN = DefaultSQLiteDSN
		return nil
	}
	return fmt.Errorf("%s is required when driver is %q", EnvDBDSN, db.Driver)
}
