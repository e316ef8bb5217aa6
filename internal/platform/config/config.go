package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/gookit/validate"
	"github.com/spf13/viper"
)

// DefaultPollTTL bounds how long a poll, its vote locks and its index entry live.
const DefaultPollTTL = 7 * 24 * time.Hour

// Config is the full process configuration, loaded from the environment.
type Config struct {
	Server   Server
	Redis    RedisConfig
	Poll     PollConfig
	Identity IdentityConfig
	Kafka    KafkaConfig
	LogLevel string
}

// Server captures HTTP server level configuration.
type Server struct {
	Addr string
}

// RedisConfig configures the shared store. An empty URL selects the
// in-process substrate, which is only suitable for a single instance.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// PollConfig carries poll lifetime and the two rate-limit policies.
type PollConfig struct {
	TTL               time.Duration
	CreateRateMax     int
	CreateRateWindow  time.Duration
	VoteRateMax       int
	VoteRateWindow    time.Duration
	PublicListDefault int
	PublicListMax     int
}

// IdentityConfig configures anonymous identity derivation.
// TrustedProxyCIDRs lists the peers allowed to set forwarding headers.
type IdentityConfig struct {
	Salt              string
	CookieSecure      bool
	TrustedProxyCIDRs []string
}

// KafkaConfig enables the optional activity stream when Brokers is non-empty.
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// settings is the flat, validated view of the environment.
type settings struct {
	HTTPAddr          string `validate:"required"`
	RedisURL          string
	RedisPoolSize     int    `validate:"min:1"`
	RedisMinIdleConns int    `validate:"min:0"`
	PollTTLSeconds    int    `validate:"min:60"`
	VoteHashSalt      string `validate:"required|minLen:8"`
	CreateRateMax     int    `validate:"min:1"`
	CreateRateWindow  int    `validate:"min:1"`
	VoteRateMax       int    `validate:"min:1"`
	VoteRateWindow    int    `validate:"min:1"`
	LogLevel          string `validate:"in:debug,info,warn,error"`
}

func newViper() *viper.Viper {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("http_addr", ":8080")
	v.SetDefault("redis_url", "")
	v.SetDefault("redis_pool_size", 20)
	v.SetDefault("redis_min_idle_conns", 2)
	v.SetDefault("redis_dial_timeout", 5*time.Second)
	v.SetDefault("redis_read_timeout", 3*time.Second)
	v.SetDefault("redis_write_timeout", 3*time.Second)
	v.SetDefault("poll_ttl_seconds", int(DefaultPollTTL.Seconds()))
	// Use a default for development - should be overridden in production
	v.SetDefault("vote_hash_salt", "dev-salt-change-in-production")
	v.SetDefault("cookie_secure", false)
	v.SetDefault("trusted_proxy_cidrs", "")
	v.SetDefault("create_rate_max", 8)
	v.SetDefault("create_rate_window_seconds", 60)
	v.SetDefault("vote_rate_max", 20)
	v.SetDefault("vote_rate_window_seconds", 60)
	v.SetDefault("public_list_default", 20)
	v.SetDefault("public_list_max", 50)
	v.SetDefault("kafka_brokers", "")
	v.SetDefault("kafka_activity_topic", "poll-activity")
	v.SetDefault("log_level", "info")
	return v
}

// Load builds a Config from environment variables so main stays lean.
func Load() (Config, error) {
	return load(newViper())
}

func load(v *viper.Viper) (Config, error) {
	s := settings{
		HTTPAddr:          v.GetString("http_addr"),
		RedisURL:          v.GetString("redis_url"),
		RedisPoolSize:     v.GetInt("redis_pool_size"),
		RedisMinIdleConns: v.GetInt("redis_min_idle_conns"),
		PollTTLSeconds:    v.GetInt("poll_ttl_seconds"),
		VoteHashSalt:      v.GetString("vote_hash_salt"),
		CreateRateMax:     v.GetInt("create_rate_max"),
		CreateRateWindow:  v.GetInt("create_rate_window_seconds"),
		VoteRateMax:       v.GetInt("vote_rate_max"),
		VoteRateWindow:    v.GetInt("vote_rate_window_seconds"),
		LogLevel:          strings.ToLower(v.GetString("log_level")),
	}
	if val := validate.Struct(&s); !val.Validate() {
		return Config{}, fmt.Errorf("invalid configuration: %s", val.Errors.One())
	}

	listDefault := v.GetInt("public_list_default")
	listMax := v.GetInt("public_list_max")
	if listMax < 1 {
		listMax = 50
	}
	if listDefault < 1 || listDefault > listMax {
		listDefault = listMax
	}

	return Config{
		Server: Server{Addr: s.HTTPAddr},
		Redis: RedisConfig{
			URL:          s.RedisURL,
			PoolSize:     s.RedisPoolSize,
			MinIdleConns: s.RedisMinIdleConns,
			DialTimeout:  v.GetDuration("redis_dial_timeout"),
			ReadTimeout:  v.GetDuration("redis_read_timeout"),
			WriteTimeout: v.GetDuration("redis_write_timeout"),
		},
		Poll: PollConfig{
			TTL:               time.Duration(s.PollTTLSeconds) * time.Second,
			CreateRateMax:     s.CreateRateMax,
			CreateRateWindow:  time.Duration(s.CreateRateWindow) * time.Second,
			VoteRateMax:       s.VoteRateMax,
			VoteRateWindow:    time.Duration(s.VoteRateWindow) * time.Second,
			PublicListDefault: listDefault,
			PublicListMax:     listMax,
		},
		Identity: IdentityConfig{
			Salt:              s.VoteHashSalt,
			CookieSecure:      v.GetBool("cookie_secure"),
			TrustedProxyCIDRs: splitList(v.GetString("trusted_proxy_cidrs")),
		},
		Kafka: KafkaConfig{
			Brokers: splitList(v.GetString("kafka_brokers")),
			Topic:   v.GetString("kafka_activity_topic"),
		},
		LogLevel: s.LogLevel,
	}, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
