// Package config loads service settings from a YAML file and the environment.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type GRPCConfig struct {
	Host              string        `mapstructure:"host"`
	Port              string        `mapstructure:"port"`
	ReflectionEnabled bool          `mapstructure:"reflection_enabled"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout"`
}

type HTTPConfig struct {
	Address string `mapstructure:"address"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

// DSN renders the lib/pq connection URL.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode)
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Prefix   string `mapstructure:"prefix"`
}

// SettingsConfig picks the key-value backend for notification settings:
// memory, file, postgres or redis.
type SettingsConfig struct {
	Backend string `mapstructure:"backend"`
	Dir     string `mapstructure:"dir"`
}

type KafkaConfig struct {
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
	GroupID string   `mapstructure:"group_id"`
}

type AMQPConfig struct {
	URI          string `mapstructure:"uri"`
	ExchangeName string `mapstructure:"exchange_name"`
	ExchangeType string `mapstructure:"exchange_type"`
	QueueName    string `mapstructure:"queue_name"`
	RoutingKey   string `mapstructure:"routing_key"`
}

type SimulatorConfig struct {
	UserID   string        `mapstructure:"user_id"`
	Interval time.Duration `mapstructure:"interval"`
	Seed     int64         `mapstructure:"seed"`
}

// EventsConfig picks the notification producer: none, kafka, amqp or
// simulator.
type EventsConfig struct {
	Source    string          `mapstructure:"source"`
	Kafka     KafkaConfig     `mapstructure:"kafka"`
	AMQP      AMQPConfig      `mapstructure:"amqp"`
	Simulator SimulatorConfig `mapstructure:"simulator"`
}

// PushConfig picks the delivery surface: disabled or kafka. Permission is
// the platform permission the kafka gateway reports for every user.
type PushConfig struct {
	Backend    string      `mapstructure:"backend"`
	Permission string      `mapstructure:"permission"`
	Icon       string      `mapstructure:"icon"`
	Kafka      KafkaConfig `mapstructure:"kafka"`
}

type DirectoryConfig struct {
	SeedFile string `mapstructure:"seed_file"`
}

type DisplayConfig struct {
	Timezone string `mapstructure:"timezone"`
	Locale   string `mapstructure:"locale"`
}

type Config struct {
	Logging   LoggingConfig   `mapstructure:"logging"`
	Server    GRPCConfig      `mapstructure:"server"`
	HTTP      HTTPConfig      `mapstructure:"http"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Settings  SettingsConfig  `mapstructure:"settings"`
	Events    EventsConfig    `mapstructure:"events"`
	Push      PushConfig      `mapstructure:"push"`
	Directory DirectoryConfig `mapstructure:"directory"`
	Display   DisplayConfig   `mapstructure:"display"`
}

// Location resolves the display timezone, falling back to the local zone.
func (c *Config) Location() (*time.Location, error) {
	if c.Display.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Display.Timezone)
	if err != nil {
		return nil, errors.Wrapf(err, "unknown timezone %s", c.Display.Timezone)
	}
	return loc, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", "50055")
	v.SetDefault("server.reflection_enabled", false)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	v.SetDefault("http.address", ":8080")

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "postgres")
	v.SetDefault("database.dbname", "cargahub")
	v.SetDefault("database.sslmode", "disable")

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.prefix", "cargahub")

	v.SetDefault("settings.backend", "memory")
	v.SetDefault("settings.dir", "./data/settings")

	v.SetDefault("events.source", "none")
	v.SetDefault("events.kafka.topic", "notification-events")
	v.SetDefault("events.kafka.group_id", "messaging-service")
	v.SetDefault("events.amqp.exchange_name", "cargahub")
	v.SetDefault("events.amqp.exchange_type", "topic")
	v.SetDefault("events.amqp.queue_name", "messaging-notifications")
	v.SetDefault("events.amqp.routing_key", "notifications.#")
	v.SetDefault("events.simulator.interval", 30*time.Second)
	v.SetDefault("events.simulator.seed", 1)

	v.SetDefault("push.backend", "disabled")
	v.SetDefault("push.permission", "granted")
	v.SetDefault("push.icon", "/icons/notification.png")
	v.SetDefault("push.kafka.topic", "system-notifications")

	v.SetDefault("display.locale", "en")
}

// Load reads path (if non-empty) and then the environment, where a key such
// as server.port is read from SERVER_PORT.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "failed to read config file %s", path)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to decode config")
	}
	return &cfg, nil
}
