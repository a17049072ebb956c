// Package config resolves kiosk settings from defaults, an optional .env file,
// KIOSK_* environment variables and command-line flags, in that order of
// increasing precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"github.com/mateusmacedo/ticket-kiosk/internal/kiosk/domain"
)

const envPrefix = "KIOSK_"

// EventTransport selects the watermill Pub/Sub behind the event bus.
type EventTransport string

const (
	TransportChannel EventTransport = "channel"
	TransportRedis   EventTransport = "redis"
	TransportKafka   EventTransport = "kafka"
)

func (t EventTransport) Valid() bool {
	switch t {
	case TransportChannel, TransportRedis, TransportKafka:
		return true
	}
	return false
}

type Config struct {
	AppName  string
	Addr     string
	LogLevel string

	Events        EventTransport
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	KafkaBrokers  []string
	ConsumerGroup string

	ExportDir    string
	TicketPrefix string
}

func Default() Config {
	return Config{
		AppName:       "ticket-kiosk",
		Addr:          ":8080",
		LogLevel:      "info",
		Events:        TransportChannel,
		RedisAddr:     "localhost:6379",
		KafkaBrokers:  []string{"localhost:9092"},
		ConsumerGroup: "ticket-kiosk",
		ExportDir:     ".",
		TicketPrefix:  domain.DefaultTicketPrefix,
	}
}

// Load reads the given dotenv files (".env" when none are named) and the
// process environment. Missing dotenv files are not an error. Variables already
// set in the environment win over file values.
func Load(files ...string) (Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}

	fileValues := make(map[string]string)
	for _, file := range files {
		values, err := godotenv.Read(file)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return Config{}, fmt.Errorf("read %s: %w", file, err)
		}
		for k, v := range values {
			fileValues[k] = v
		}
	}

	return FromEnv(func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok {
			return v, true
		}
		v, ok := fileValues[key]
		return v, ok
	})
}

// FromEnv builds a Config from KIOSK_* variables found through lookup.
func FromEnv(lookup func(string) (string, bool)) (Config, error) {
	cfg := Default()
	get := func(name string, dst *string) {
		if v, ok := lookup(envPrefix + name); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}

	get("APP_NAME", &cfg.AppName)
	get("ADDR", &cfg.Addr)
	get("LOG_LEVEL", &cfg.LogLevel)
	get("REDIS_ADDR", &cfg.RedisAddr)
	get("REDIS_PASSWORD", &cfg.RedisPassword)
	get("CONSUMER_GROUP", &cfg.ConsumerGroup)
	get("EXPORT_DIR", &cfg.ExportDir)
	get("TICKET_PREFIX", &cfg.TicketPrefix)

	var events, redisDB, brokers string
	get("EVENTS", &events)
	get("REDIS_DB", &redisDB)
	get("KAFKA_BROKERS", &brokers)

	if events != "" {
		cfg.Events = EventTransport(strings.ToLower(events))
	}
	if redisDB != "" {
		db, err := strconv.Atoi(redisDB)
		if err != nil {
			return Config{}, fmt.Errorf("%sREDIS_DB: %w", envPrefix, err)
		}
		cfg.RedisDB = db
	}
	if brokers != "" {
		cfg.KafkaBrokers = splitList(brokers)
	}

	return cfg, cfg.Validate()
}

// BindFlags registers flags whose defaults are the current values of c.
func (c *Config) BindFlags(fs *pflag.FlagSet) {
	fs.StringVar(&c.Addr, "addr", c.Addr, "HTTP listen address")
	fs.StringVar(&c.LogLevel, "log-level", c.LogLevel, "log level (debug, info, warn, error)")
	fs.StringVar((*string)(&c.Events), "events", string(c.Events), "event transport (channel, redis, kafka)")
	fs.StringVar(&c.RedisAddr, "redis-addr", c.RedisAddr, "Redis address for the redis transport")
	fs.StringSliceVar(&c.KafkaBrokers, "kafka-brokers", c.KafkaBrokers, "Kafka brokers for the kafka transport")
	fs.StringVar(&c.ExportDir, "export-dir", c.ExportDir, "directory boarding passes are exported to")
	fs.StringVar(&c.TicketPrefix, "ticket-prefix", c.TicketPrefix, "two upper-case letters prefixed to ticket ids")
}

func (c Config) Validate() error {
	var errs []error
	if !c.Events.Valid() {
		errs = append(errs, fmt.Errorf("unknown event transport %q", c.Events))
	}
	if !domain.ValidTicketPrefix(c.TicketPrefix) {
		errs = append(errs, fmt.Errorf("ticket prefix %q must be two upper-case letters", c.TicketPrefix))
	}
	if c.Events == TransportKafka && len(c.KafkaBrokers) == 0 {
		errs = append(errs, errors.New("kafka transport needs at least one broker"))
	}
	if c.Events == TransportRedis && c.RedisAddr == "" {
		errs = append(errs, errors.New("redis transport needs an address"))
	}
	if c.Addr == "" {
		errs = append(errs, errors.New("listen address is empty"))
	}
	return errors.Join(errs...)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
