package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/tasifacuj/mission-control/internal/msp"
)

// AppConfig 应用基础信息
type AppConfig struct {
	Name string `mapstructure:"name" yaml:"name"`
	Env  string `mapstructure:"env" yaml:"env"`
}

// HTTPConfig HTTP 服务配置
type HTTPConfig struct {
	Addr         string        `mapstructure:"addr" yaml:"addr"`
	ReadTimeout  time.Duration `mapstructure:"readTimeout" yaml:"readTimeout"`
	WriteTimeout time.Duration `mapstructure:"writeTimeout" yaml:"writeTimeout"`
}

// LumberjackConfig 日志滚动（lumberjack）配置；Filename 为空时只写标准输出
type LumberjackConfig struct {
	Filename   string `mapstructure:"filename" yaml:"filename"`
	MaxSizeMB  int    `mapstructure:"maxSize" yaml:"maxSize"`
	MaxBackups int    `mapstructure:"maxBackups" yaml:"maxBackups"`
	MaxAgeDays int    `mapstructure:"maxAge" yaml:"maxAge"`
	Compress   bool   `mapstructure:"compress" yaml:"compress"`
}

// LoggingConfig 日志级别与输出配置
type LoggingConfig struct {
	Level  string           `mapstructure:"level" yaml:"level"`
	Format string           `mapstructure:"format" yaml:"format"`
	File   LumberjackConfig `mapstructure:"file" yaml:"file"`
}

// MetricsConfig Prometheus 指标暴露配置
type MetricsConfig struct {
	Enable bool   `mapstructure:"enable" yaml:"enable"`
	Path   string `mapstructure:"path" yaml:"path"`
}

// RedisConfig Redis 连接配置；未启用时快照与请求队列使用进程内实现
type RedisConfig struct {
	Enabled      bool          `mapstructure:"enabled" yaml:"enabled"`
	Addr         string        `mapstructure:"addr" yaml:"addr"`
	Password     string        `mapstructure:"password" yaml:"password"`
	DB           int           `mapstructure:"db" yaml:"db"`
	PoolSize     int           `mapstructure:"poolSize" yaml:"poolSize"`
	MinIdleConns int           `mapstructure:"minIdleConns" yaml:"minIdleConns"`
	DialTimeout  time.Duration `mapstructure:"dialTimeout" yaml:"dialTimeout"`
	ReadTimeout  time.Duration `mapstructure:"readTimeout" yaml:"readTimeout"`
	WriteTimeout time.Duration `mapstructure:"writeTimeout" yaml:"writeTimeout"`
	// SnapshotTTL 快照 Hash 的过期时间，0 表示不过期
	SnapshotTTL time.Duration `mapstructure:"snapshotTTL" yaml:"snapshotTTL"`
}

// DatabaseConfig PostgreSQL 连接配置；DSN 为空时不记录遥测历史
type DatabaseConfig struct {
	DSN             string        `mapstructure:"dsn" yaml:"dsn"`
	MaxOpenConns    int           `mapstructure:"maxOpenConns" yaml:"maxOpenConns"`
	MaxIdleConns    int           `mapstructure:"maxIdleConns" yaml:"maxIdleConns"`
	ConnMaxLifetime time.Duration `mapstructure:"connMaxLifetime" yaml:"connMaxLifetime"`
	AutoMigrate     bool          `mapstructure:"autoMigrate" yaml:"autoMigrate"`
	// Retention 遥测样本保留时长，0 表示不清理
	Retention time.Duration `mapstructure:"retention" yaml:"retention"`
}

// SubscriptionConfig 一条订阅：消息名称（或数字标识）与请求频率
type SubscriptionConfig struct {
	Message string  `mapstructure:"message" yaml:"message"`
	RateHz  float64 `mapstructure:"rateHz" yaml:"rateHz"`
}

// MSPConfig 飞控与订阅配置
type MSPConfig struct {
	Firmware      string               `mapstructure:"firmware" yaml:"firmware"`
	Calibration   msp.Calibration      `mapstructure:"calibration" yaml:"calibration"`
	Subscriptions []SubscriptionConfig `mapstructure:"subscriptions" yaml:"subscriptions"`
	// RecordSamples 解码结果是否写入数据库
	RecordSamples bool `mapstructure:"recordSamples" yaml:"recordSamples"`
}

// OutboundConfig 出站请求队列配置
type OutboundConfig struct {
	QueueSize  int           `mapstructure:"queueSize" yaml:"queueSize"`
	RateLimit  int           `mapstructure:"rateLimit" yaml:"rateLimit"`
	Burst      int           `mapstructure:"burst" yaml:"burst"`
	MaxRetries int           `mapstructure:"maxRetries" yaml:"maxRetries"`
	Interval   time.Duration `mapstructure:"interval" yaml:"interval"`
	Batch      int           `mapstructure:"batch" yaml:"batch"`
}

// APIAuthConfig API Key 认证；InternalKeys 用于载荷注入接口
type APIAuthConfig struct {
	Enabled      bool     `mapstructure:"enabled" yaml:"enabled"`
	APIKeys      []string `mapstructure:"apiKeys" yaml:"apiKeys"`
	InternalKeys []string `mapstructure:"internalKeys" yaml:"internalKeys"`
}

// APIConfig 遥测 REST 接口配置
type APIConfig struct {
	Auth APIAuthConfig `mapstructure:"auth" yaml:"auth"`
	// IngestRate 载荷注入接口每秒请求数，0 不限
	IngestRate float64 `mapstructure:"ingestRate" yaml:"ingestRate"`
}

// Config 顶层配置结构
type Config struct {
	App      AppConfig      `mapstructure:"app" yaml:"app"`
	HTTP     HTTPConfig     `mapstructure:"http" yaml:"http"`
	API      APIConfig      `mapstructure:"api" yaml:"api"`
	Logging  LoggingConfig  `mapstructure:"logging" yaml:"logging"`
	Metrics  MetricsConfig  `mapstructure:"metrics" yaml:"metrics"`
	Redis    RedisConfig    `mapstructure:"redis" yaml:"redis"`
	Database DatabaseConfig `mapstructure:"database" yaml:"database"`
	MSP      MSPConfig      `mapstructure:"msp" yaml:"msp"`
	Outbound OutboundConfig `mapstructure:"outbound" yaml:"outbound"`
}

// Load 从 YAML/TOML/JSON 文件与环境变量加载配置。
// 若 path 为空，则尝试从环境变量 MSPT_CONFIG 读取；否则回退到 configs/example.yaml。
func Load(path string) (*Config, error) {
	v := viper.New()

	if path == "" {
		path = os.Getenv("MSPT_CONFIG")
	}

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.SetConfigName("example")
		v.SetConfigType("yaml")
	}

	// 默认值
	setDefaults(v)

	// 环境变量覆盖：前缀 MSPT_，并将点号替换为下划线
	v.SetEnvPrefix("MSPT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// 首次运行允许缺少配置文件，依赖默认值与环境变量
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "mission-control")
	v.SetDefault("app.env", "dev")

	v.SetDefault("http.addr", ":8080")
	v.SetDefault("http.readTimeout", "5s")
	v.SetDefault("http.writeTimeout", "10s")

	v.SetDefault("api.auth.enabled", false)
	v.SetDefault("api.ingestRate", 500)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.file.filename", "")
	v.SetDefault("logging.file.maxSize", 100)
	v.SetDefault("logging.file.maxBackups", 7)
	v.SetDefault("logging.file.maxAge", 30)
	v.SetDefault("logging.file.compress", true)

	v.SetDefault("metrics.enable", true)
	v.SetDefault("metrics.path", "/metrics")

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.poolSize", 10)
	v.SetDefault("redis.minIdleConns", 2)
	v.SetDefault("redis.dialTimeout", "5s")
	v.SetDefault("redis.readTimeout", "3s")
	v.SetDefault("redis.writeTimeout", "3s")
	v.SetDefault("redis.snapshotTTL", "0s")

	v.SetDefault("database.dsn", "")
	v.SetDefault("database.maxOpenConns", 10)
	v.SetDefault("database.maxIdleConns", 5)
	v.SetDefault("database.connMaxLifetime", "1h")
	v.SetDefault("database.autoMigrate", true)
	v.SetDefault("database.retention", "168h")

	cal := msp.DefaultCalibration()
	v.SetDefault("msp.firmware", "INAV")
	v.SetDefault("msp.calibration.acc_one_g", cal.AccOneG)
	v.SetDefault("msp.calibration.gyro_unit", cal.GyroUnit)
	v.SetDefault("msp.calibration.mag_gain", cal.MagGain)
	v.SetDefault("msp.calibration.standard_gravity", cal.StandardGravity)
	v.SetDefault("msp.recordSamples", false)

	v.SetDefault("outbound.queueSize", 1024)
	v.SetDefault("outbound.rateLimit", 200)
	v.SetDefault("outbound.burst", 400)
	v.SetDefault("outbound.maxRetries", 2)
	v.SetDefault("outbound.interval", "10ms")
	v.SetDefault("outbound.batch", 16)
}

// Validate 校验固件类型与订阅列表
func (c *Config) Validate() error {
	if _, err := c.FirmwareVariant(); err != nil {
		return fmt.Errorf("msp.firmware: %w", err)
	}
	seen := make(map[msp.ID]bool, len(c.MSP.Subscriptions))
	for i, sub := range c.MSP.Subscriptions {
		id, err := msp.ParseID(sub.Message)
		if err != nil {
			return fmt.Errorf("msp.subscriptions[%d]: %w", i, err)
		}
		if !msp.IsSupported(id) {
			return fmt.Errorf("msp.subscriptions[%d]: %s: %w", i, id, msp.ErrUnsupported)
		}
		if seen[id] {
			return fmt.Errorf("msp.subscriptions[%d]: duplicate %s", i, id)
		}
		seen[id] = true
		if sub.RateHz < 0 {
			return fmt.Errorf("msp.subscriptions[%d]: negative rateHz", i)
		}
	}
	cal := c.MSP.Calibration
	if cal.AccOneG == 0 {
		return errors.New("msp.calibration.acc_one_g must not be zero")
	}
	return nil
}

// FirmwareVariant 解析 msp.firmware
func (c *Config) FirmwareVariant() (msp.FirmwareVariant, error) {
	return msp.ParseFirmwareVariant(c.MSP.Firmware)
}

// Dump 以 YAML 输出生效配置，密码类字段打码
func Dump(cfg *Config) ([]byte, error) {
	cp := *cfg
	if cp.Redis.Password != "" {
		cp.Redis.Password = "***"
	}
	cp.Database.DSN = MaskDSN(cp.Database.DSN)
	cp.API.Auth.APIKeys = maskKeys(cp.API.Auth.APIKeys)
	cp.API.Auth.InternalKeys = maskKeys(cp.API.Auth.InternalKeys)
	return yaml.Marshal(&cp)
}

func maskKeys(keys []string) []string {
	if len(keys) == 0 {
		return nil
	}
	out := make([]string, len(keys))
	for i := range keys {
		out[i] = "***"
	}
	return out
}

// MaskDSN 隐藏 DSN 中的密码
func MaskDSN(dsn string) string {
	scheme, rest, ok := strings.Cut(dsn, "://")
	if !ok {
		return dsn
	}
	creds, host, ok := strings.Cut(rest, "@")
	if !ok {
		return dsn
	}
	user, _, hasPass := strings.Cut(creds, ":")
	if !hasPass {
		return dsn
	}
	return scheme + "://" + user + ":***@" + host
}
