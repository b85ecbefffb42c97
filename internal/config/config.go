package config

import (
	"fmt"
	"log"
	"sync"

	"github.com/ilyakaznacheev/cleanenv"
)

type Listen struct {
	BindIp string `yaml:"bind_ip" env:"LISTEN_BIND_IP" env-default:"0.0.0.0"`
	Port   string `yaml:"port" env:"LISTEN_PORT" env-default:"3001"`
}

type MongoConfig struct {
	Enabled  bool   `yaml:"enabled" env:"MONGO_ENABLED" env-default:"true"`
	Host     string `yaml:"host" env:"MONGO_HOST" env-default:"localhost"`
	Port     string `yaml:"port" env:"MONGO_PORT" env-default:"27017"`
	User     string `yaml:"user" env:"MONGO_USER" env-default:""`
	Password string `yaml:"password" env:"MONGO_PASSWORD" env-default:""`
	Database string `yaml:"database" env:"MONGO_DATABASE" env-default:"invite_tracker"`
	// Startup readiness check: attempts * delay, fixed backoff.
	ConnectAttempts int `yaml:"connect_attempts" env:"MONGO_CONNECT_ATTEMPTS" env-default:"3"`
	ConnectDelaySec int `yaml:"connect_delay_sec" env:"MONGO_CONNECT_DELAY_SEC" env-default:"5"`
}

type DiscordConfig struct {
	Token string `yaml:"token" env:"DISCORD_TOKEN" env-default:""`
	// Channel hosting the control buttons and status log embeds.
	InviteUIChannelID string `yaml:"invite_ui_channel_id" env:"INVITE_UI_CHANNEL_ID" env-default:""`
	// Channel hosting the all-time and monthly ranking embeds.
	LeaderboardChannelID string `yaml:"leaderboard_channel_id" env:"INVITE_LEADERBOARD_CHANNEL_ID" env-default:""`
	// Preferred channel for creating personal invites; falls back to the
	// guild system channel, then the first text channel.
	InviteChannelID string `yaml:"invite_channel_id" env:"INVITE_CHANNEL_ID" env-default:""`
}

type ApiConfig struct {
	SecretKey      string   `yaml:"secret_key" env:"API_SECRET_KEY" env-default:""`
	AllowedOrigins []string `yaml:"allowed_origins" env:"ALLOWED_ORIGINS" env-default:"http://localhost:3000"`
	RateLimit      int      `yaml:"rate_limit" env:"API_RATE_LIMIT" env-default:"100"`
	RateWindowMin  int      `yaml:"rate_window_min" env:"API_RATE_WINDOW_MIN" env-default:"15"`
	// Optional downstream stats API; recorded joins are forwarded there
	// best-effort when set.
	ForwardUrl string `yaml:"forward_url" env:"API_FORWARD_URL" env-default:""`
}

type Config struct {
	Mongo   MongoConfig   `yaml:"mongo"`
	Discord DiscordConfig `yaml:"discord"`
	Api     ApiConfig     `yaml:"api"`
	Listen  Listen        `yaml:"listen"`
	Env     string        `yaml:"env" env:"ENV" env-default:"local"`
}

var instance *Config
var once sync.Once

func MustLoad(path string) *Config {
	var err error
	once.Do(func() {
		instance = &Config{}
		if err = cleanenv.ReadConfig(path, instance); err != nil {
			desc, _ := cleanenv.GetDescription(instance, nil)
			err = fmt.Errorf("config: %s; %s", err, desc)
			instance = nil
			log.Fatal(err)
		}
	})
	return instance
}
