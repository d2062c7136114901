package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	JWT      JWTConfig
	Redis    RedisConfig
	Game     GameConfig
}

type ServerConfig struct {
	Port         string
	Env          string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type DatabaseConfig struct {
	DSN             string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
}

type JWTConfig struct {
	AccessSecret  string
	RefreshSecret string
	AccessExpiry  time.Duration
	RefreshExpiry time.Duration
	Issuer        string
}

// RedisConfig enables the cross-instance gateway relay when Addr is set.
// A single process works without Redis.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Channel  string
}

type GameConfig struct {
	ProposalStake      int64         // yarn debited to open a proposal
	VoteStake          int64         // default yarn debited per vote
	VotingWindow       time.Duration // default proposal window length
	NearbyRadiusMeters float64       // default collectible search radius
	MaxRadiusMeters    float64
	SpawnSweepSpec     string // cron spec for the expired-spawn sweep
}

// Load reads config.yaml (optional) plus WOOFPACK_* env overrides.
func Load() *Config {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.SetEnvPrefix("WOOFPACK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("server.port", "8099")
	v.SetDefault("server.env", "development")
	v.SetDefault("server.read_timeout", 10*time.Second)
	v.SetDefault("server.write_timeout", 10*time.Second)

	v.SetDefault("database.dsn", "woofpack:woofpack@tcp(localhost:3306)/woofpack?charset=utf8mb4&parseTime=True&loc=Local")
	v.SetDefault("database.max_idle_conns", 10)
	v.SetDefault("database.max_open_conns", 100)
	v.SetDefault("database.conn_max_lifetime", time.Hour)

	v.SetDefault("jwt.access_secret", "change-me-in-production")
	v.SetDefault("jwt.refresh_secret", "change-me-refresh")
	v.SetDefault("jwt.access_expiry", 15*time.Minute)
	v.SetDefault("jwt.refresh_expiry", 168*time.Hour)
	v.SetDefault("jwt.issuer", "woofpack")

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.channel", "woofpack:gateway")

	v.SetDefault("game.proposal_stake", 100)
	v.SetDefault("game.vote_stake", 10)
	v.SetDefault("game.voting_window", 7*24*time.Hour)
	v.SetDefault("game.nearby_radius_meters", 1000.0)
	v.SetDefault("game.max_radius_meters", 25000.0)
	v.SetDefault("game.spawn_sweep_spec", "@every 1m")

	_ = v.ReadInConfig() // missing file is fine, defaults + env apply

	return &Config{
		Server: ServerConfig{
			Port:         v.GetString("server.port"),
			Env:          v.GetString("server.env"),
			ReadTimeout:  v.GetDuration("server.read_timeout"),
			WriteTimeout: v.GetDuration("server.write_timeout"),
		},
		Database: DatabaseConfig{
			DSN:             v.GetString("database.dsn"),
			MaxIdleConns:    v.GetInt("database.max_idle_conns"),
			MaxOpenConns:    v.GetInt("database.max_open_conns"),
			ConnMaxLifetime: v.GetDuration("database.conn_max_lifetime"),
		},
		JWT: JWTConfig{
			AccessSecret:  v.GetString("jwt.access_secret"),
			RefreshSecret: v.GetString("jwt.refresh_secret"),
			AccessExpiry:  v.GetDuration("jwt.access_expiry"),
			RefreshExpiry: v.GetDuration("jwt.refresh_expiry"),
			Issuer:        v.GetString("jwt.issuer"),
		},
		Redis: RedisConfig{
			Addr:     v.GetString("redis.addr"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
			Channel:  v.GetString("redis.channel"),
		},
		Game: GameConfig{
			ProposalStake:      v.GetInt64("game.proposal_stake"),
			VoteStake:          v.GetInt64("game.vote_stake"),
			VotingWindow:       v.GetDuration("game.voting_window"),
			NearbyRadiusMeters: v.GetFloat64("game.nearby_radius_meters"),
			MaxRadiusMeters:    v.GetFloat64("game.max_radius_meters"),
			SpawnSweepSpec:     v.GetString("game.spawn_sweep_spec"),
		},
	}
}
