package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	GRPC     GRPCConfig     `mapstructure:"grpc"`
	Etcd     EtcdConfig     `mapstructure:"etcd"`
	Redis    RedisConfig    `mapstructure:"redis"`
	MongoDB  MongoDBConfig  `mapstructure:"mongodb"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Mail     MailConfig     `mapstructure:"mail"`
	Checkout CheckoutConfig `mapstructure:"checkout"`
	Upload   UploadConfig   `mapstructure:"upload"`
	Log      LogConfig      `mapstructure:"log"`
}

type ServerConfig struct {
	Name         string        `mapstructure:"name"`
	Port         int           `mapstructure:"port"`
	Host         string        `mapstructure:"host"`
	Mode         string        `mapstructure:"mode"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	AllowOrigins []string      `mapstructure:"allow_origins"`
}

type GRPCConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Host    string `mapstructure:"host"`
	Port    int    `mapstructure:"port"`
}

type EtcdConfig struct {
	Enabled     bool          `mapstructure:"enabled"`
	Endpoints   []string      `mapstructure:"endpoints"`
	DialTimeout time.Duration `mapstructure:"dial_timeout"`
	Prefix      string        `mapstructure:"prefix"`
	LeaseTTL    int64         `mapstructure:"lease_ttl"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	PoolSize int    `mapstructure:"pool_size"`
}

type MongoDBConfig struct {
	URI            string        `mapstructure:"uri"`
	Database       string        `mapstructure:"database"`
	AuditLog       string        `mapstructure:"audit_collection"`
	MediaBucket    string        `mapstructure:"media_bucket"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
}

type AuthConfig struct {
	JWTSecret string        `mapstructure:"jwt_secret"`
	TokenTTL  time.Duration `mapstructure:"token_ttl"`
	OTPTTL    time.Duration `mapstructure:"otp_ttl"`
	Cookie    string        `mapstructure:"cookie"`
}

// MailProviderConfig describes one SMTP relay. Providers are tried in the
// order they are listed.
type MailProviderConfig struct {
	Name     string `mapstructure:"name"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	SSL      bool   `mapstructure:"ssl"`
}

type MailConfig struct {
	From      string               `mapstructure:"from"`
	Providers []MailProviderConfig `mapstructure:"providers"`
	Timeout   time.Duration        `mapstructure:"timeout"`
	Attempts  int                  `mapstructure:"attempts"`
	Backoff   time.Duration        `mapstructure:"backoff"`
}

type CheckoutConfig struct {
	// ReleaseCouponOnCancel gives a coupon slot back when an order is cancelled.
	ReleaseCouponOnCancel bool          `mapstructure:"release_coupon_on_cancel"`
	NotifyTimeout         time.Duration `mapstructure:"notify_timeout"`
}

type UploadConfig struct {
	MaxImageBytes int64 `mapstructure:"max_image_bytes"`
	MaxVideoBytes int64 `mapstructure:"max_video_bytes"`
	MaxImages     int   `mapstructure:"max_images"`
}

type LogConfig struct {
	Level       string   `mapstructure:"level"`
	Encoding    string   `mapstructure:"encoding"`
	OutputPaths []string `mapstructure:"output_paths"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.name", "storefront")
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 5000)
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.allow_origins", []string{"*"})

	v.SetDefault("grpc.enabled", true)
	v.SetDefault("grpc.host", "0.0.0.0")
	v.SetDefault("grpc.port", 50061)

	v.SetDefault("etcd.enabled", false)
	v.SetDefault("etcd.endpoints", []string{"localhost:2379"})
	v.SetDefault("etcd.dial_timeout", 5*time.Second)
	v.SetDefault("etcd.prefix", "/services/")
	v.SetDefault("etcd.lease_ttl", 30)

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.pool_size", 10)

	v.SetDefault("mongodb.uri", "mongodb://localhost:27017")
	v.SetDefault("mongodb.database", "pujnam_store")
	v.SetDefault("mongodb.audit_collection", "audit_logs")
	v.SetDefault("mongodb.media_bucket", "media")
	v.SetDefault("mongodb.connect_timeout", 10*time.Second)

	// registered so STOREFRONT_AUTH_JWT_SECRET is seen by Unmarshal
	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.token_ttl", 7*24*time.Hour)
	v.SetDefault("auth.otp_ttl", 10*time.Minute)
	v.SetDefault("auth.cookie", "auth_token")

	v.SetDefault("mail.from", "Pujnam Store <info@pujnamstore.com>")
	v.SetDefault("mail.timeout", 25*time.Second)
	v.SetDefault("mail.attempts", 3)
	v.SetDefault("mail.backoff", time.Second)

	v.SetDefault("checkout.release_coupon_on_cancel", false)
	v.SetDefault("checkout.notify_timeout", time.Minute)

	v.SetDefault("upload.max_image_bytes", 5<<20)
	v.SetDefault("upload.max_video_bytes", 100<<20)
	v.SetDefault("upload.max_images", 10)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.encoding", "json")
	v.SetDefault("log.output_paths", []string{"stdout"})
}

// Load reads the YAML file at configPath, then applies STOREFRONT_* environment
// overrides. A missing file is not an error; defaults and env still apply.
func Load(configPath string) (*Config, error) {
	// .env is optional
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("STOREFRONT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		v.SetConfigType("yaml")

		if err := v.ReadInConfig(); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func (c *Config) Validate() error {
	if c.Auth.JWTSecret == "" {
		return errors.New("auth.jwt_secret is required (STOREFRONT_AUTH_JWT_SECRET)")
	}
	if c.MongoDB.URI == "" || c.MongoDB.Database == "" {
		return errors.New("mongodb.uri and mongodb.database are required")
	}
	if c.Mail.Attempts < 1 {
		c.Mail.Attempts = 1
	}
	return nil
}

func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func (c *GRPCConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
