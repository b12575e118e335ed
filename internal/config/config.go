package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/jpay/wallet/internal/credentials"
	"github.com/jpay/wallet/internal/pricing"
	"github.com/spf13/viper"
)

type ServerConfig struct {
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

type Argon2Config struct {
	Time       int
	Memory     int
	Threads    int
	KeyLength  int
	SaltLength int
}

type OTPConfig struct {
	Length  int
	TTL     time.Duration
	Backend string // memory or redis
}

type JWTConfig struct {
	SecretKey   string
	ExpiryHours int
}

type PricingConfig struct {
	CommissionRate string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type DatabaseConfig struct {
	Host            string
	Port            string
	User            string
	Password        string
	Name            string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type Config struct {
	Server              ServerConfig
	Argon2              Argon2Config
	OTP                 OTPConfig
	JWT                 JWTConfig
	Pricing             PricingConfig
	Redis               RedisConfig
	Database            DatabaseConfig
	VerificationTimeout time.Duration
	OpeningBalance      string
	SeedDemoUsers       bool
	DueSweepSchedule    string
	JournalEnabled      bool
	AMQPURL             string
	AMQPExchange        string
}

var envBindings = map[string]string{
	"server.port":             "PORT",
	"server.read_timeout":     "SERVER_READ_TIMEOUT",
	"server.write_timeout":    "SERVER_WRITE_TIMEOUT",
	"server.shutdown_timeout": "SERVER_SHUTDOWN_TIMEOUT",

	"argon2.time":        "ARGON2_TIME",
	"argon2.memory":      "ARGON2_MEMORY",
	"argon2.threads":     "ARGON2_THREADS",
	"argon2.key_length":  "ARGON2_KEY_LENGTH",
	"argon2.salt_length": "ARGON2_SALT_LENGTH",

	"otp.length":  "OTP_LENGTH",
	"otp.ttl":     "OTP_TTL",
	"otp.backend": "OTP_BACKEND",

	"jwt.secret_key":   "JWT_SECRET_KEY",
	"jwt.expiry_hours": "JWT_EXPIRY_HOURS",

	"pricing.commission_rate": "COMMISSION_RATE",

	"redis.host":     "REDIS_HOST",
	"redis.port":     "REDIS_PORT",
	"redis.password": "REDIS_PASSWORD",
	"redis.db":       "REDIS_DB",

	"database.host":     "DATABASE_HOST",
	"database.port":     "DATABASE_PORT",
	"database.user":     "DATABASE_USER",
	"database.password": "DATABASE_PASSWORD",
	"database.name":     "DATABASE_NAME",
	"database.ssl_mode": "DATABASE_SSL_MODE",

	"verification.timeout":   "VERIFICATION_TIMEOUT",
	"signup.opening_balance": "SIGNUP_OPENING_BALANCE",
	"seed.demo_users":        "SEED_DEMO_USERS",
	"scheduler.due_sweep":    "DUE_SWEEP_SCHEDULE",
	"journal.enabled":        "JOURNAL_ENABLED",
	"amqp.url":               "AMQP_URL",
	"amqp.exchange":          "AMQP_EXCHANGE",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 15*time.Second)
	v.SetDefault("server.shutdown_timeout", 30*time.Second)

	v.SetDefault("argon2.time", 1)
	v.SetDefault("argon2.memory", 64*1024)
	v.SetDefault("argon2.threads", 4)
	v.SetDefault("argon2.key_length", 32)
	v.SetDefault("argon2.salt_length", 16)

	v.SetDefault("otp.length", 6)
	v.SetDefault("otp.ttl", 5*time.Minute)
	v.SetDefault("otp.backend", "memory")

	v.SetDefault("jwt.secret_key", "change-me")
	v.SetDefault("jwt.expiry_hours", 24)

	v.SetDefault("pricing.commission_rate", "0.02")

	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", "6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "password")
	v.SetDefault("database.name", "jpay_wallet")
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", 5*time.Minute)

	v.SetDefault("verification.timeout", 3*time.Second)
	v.SetDefault("signup.opening_balance", "12540.75")
	v.SetDefault("seed.demo_users", true)
	v.SetDefault("scheduler.due_sweep", "@every 1m")
	v.SetDefault("journal.enabled", false)
	v.SetDefault("amqp.url", "")
	v.SetDefault("amqp.exchange", "wallet.events")
}

// Load reads configuration from an optional .env file and the environment.
func Load(envFile string) *Config {
	v := viper.New()
	setDefaults(v)

	v.AutomaticEnv()
	for key, env := range envBindings {
		v.BindEnv(key, env)
	}

	if envFile != "" {
		v.SetConfigFile(envFile)
		v.SetConfigType("env")
		if err := v.ReadInConfig(); err != nil {
			log.Printf("Config file not found, using defaults: %v", err)
		} else {
			// .env keys are read flat (AMQP_URL -> amqp_url); lift them onto the
			// dotted keys so the environment still wins over the file
			for key, env := range envBindings {
				if v.InConfig(strings.ToLower(env)) {
					v.SetDefault(key, v.Get(strings.ToLower(env)))
				}
			}
		}
	}

	return FromViper(v)
}

// FromViper builds a Config from an already populated viper instance.
func FromViper(v *viper.Viper) *Config {
	return &Config{
		Server: ServerConfig{
			Port:            v.GetString("server.port"),
			ReadTimeout:     v.GetDuration("server.read_timeout"),
			WriteTimeout:    v.GetDuration("server.write_timeout"),
			ShutdownTimeout: v.GetDuration("server.shutdown_timeout"),
		},
		Argon2: Argon2Config{
			Time:       v.GetInt("argon2.time"),
			Memory:     v.GetInt("argon2.memory"),
			Threads:    v.GetInt("argon2.threads"),
			KeyLength:  v.GetInt("argon2.key_length"),
			SaltLength: v.GetInt("argon2.salt_length"),
		},
		OTP: OTPConfig{
			Length:  v.GetInt("otp.length"),
			TTL:     v.GetDuration("otp.ttl"),
			Backend: v.GetString("otp.backend"),
		},
		JWT: JWTConfig{
			SecretKey:   v.GetString("jwt.secret_key"),
			ExpiryHours: v.GetInt("jwt.expiry_hours"),
		},
		Pricing: PricingConfig{
			CommissionRate: v.GetString("pricing.commission_rate"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("redis.host"),
			Port:     v.GetString("redis.port"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		Database: DatabaseConfig{
			Host:            v.GetString("database.host"),
			Port:            v.GetString("database.port"),
			User:            v.GetString("database.user"),
			Password:        v.GetString("database.password"),
			Name:            v.GetString("database.name"),
			SSLMode:         v.GetString("database.ssl_mode"),
			MaxOpenConns:    v.GetInt("database.max_open_conns"),
			MaxIdleConns:    v.GetInt("database.max_idle_conns"),
			ConnMaxLifetime: v.GetDuration("database.conn_max_lifetime"),
		},
		VerificationTimeout: v.GetDuration("verification.timeout"),
		OpeningBalance:      v.GetString("signup.opening_balance"),
		SeedDemoUsers:       v.GetBool("seed.demo_users"),
		DueSweepSchedule:    v.GetString("scheduler.due_sweep"),
		JournalEnabled:      v.GetBool("journal.enabled"),
		AMQPURL:             v.GetString("amqp.url"),
		AMQPExchange:        v.GetString("amqp.exchange"),
	}
}

// HashParams converts the argon2 section into hasher parameters.
func (c *Config) HashParams() credentials.Params {
	return credentials.Params{
		Time:       uint32(c.Argon2.Time),
		Memory:     uint32(c.Argon2.Memory),
		Threads:    uint8(c.Argon2.Threads),
		KeyLength:  uint32(c.Argon2.KeyLength),
		SaltLength: uint32(c.Argon2.SaltLength),
	}
}

// CommissionBps returns the gift-card sell commission in basis points.
func (c *Config) CommissionBps() (int64, error) {
	bps, err := pricing.RateToBps(c.Pricing.CommissionRate)
	if err != nil {
		return 0, fmt.Errorf("invalid COMMISSION_RATE %q: %w", c.Pricing.CommissionRate, err)
	}
	return bps, nil
}

func (c *Config) ListenAddr() string {
	return ":" + c.Server.Port
}
