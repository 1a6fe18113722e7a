package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"spyfall/internal/domain"
)

// Config holds all application configuration
type Config struct {
	Server  ServerConfig
	Game    GameConfig
	Logging LoggingConfig
	Redis   RedisConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `env:"PORT" envDefault:"8080"`
	Host           string   `env:"HOST" envDefault:"0.0.0.0"`
	Env            string   `env:"ENV" envDefault:"development"` // "development" or "production"
	PublicURL      string   `env:"PUBLIC_URL"`                   // base for invite links; taken from the request when empty
	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envSeparator:","`
}

// GameConfig holds game rules and timings
type GameConfig struct {
	MinPlayers        int           `env:"MIN_PLAYERS" envDefault:"3"`
	RoundDuration     time.Duration `env:"ROUND_DURATION" envDefault:"480s"`
	VoteCooldown      time.Duration `env:"VOTE_COOLDOWN" envDefault:"120s"`
	HintAfter         time.Duration `env:"HINT_AFTER" envDefault:"240s"`
	MaxMessageLength  int           `env:"MAX_MESSAGE_LENGTH" envDefault:"200"`
	StaleAfter        time.Duration `env:"STALE_AFTER" envDefault:"120s"`
	SweepInterval     time.Duration `env:"SWEEP_INTERVAL" envDefault:"60s"`
	HeartbeatInterval time.Duration `env:"HEARTBEAT_INTERVAL" envDefault:"30s"`
	NoticeTTL         time.Duration `env:"DISCONNECT_NOTICE_TTL" envDefault:"5s"`
	AutoStartDelay    time.Duration `env:"AUTO_START_DELAY" envDefault:"2s"`
	TickInterval      time.Duration `env:"TICK_INTERVAL" envDefault:"1s"`
	RoomTTL           time.Duration `env:"ROOM_TTL" envDefault:"2h"`
	CleanupInterval   time.Duration `env:"CLEANUP_INTERVAL" envDefault:"10m"`
}

// LoggingConfig holds logging-related configuration
type LoggingConfig struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"text"` // "json" or "text"
}

// RedisConfig configures the optional snapshot mirror. An empty URL disables it.
type RedisConfig struct {
	URL       string `env:"REDIS_URL"`
	KeyPrefix string `env:"REDIS_KEY_PREFIX" envDefault:"spyroom"`
	QueueSize int    `env:"REDIS_QUEUE_SIZE" envDefault:"256"`
}

// Load reads the given .env files, if present, then parses the environment.
// Variables already set in the environment win over the files.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, file := range envFiles {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("loading %s: %w", file, err)
		}
	}

	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	g := c.Game
	switch {
	case g.MinPlayers < 3:
		return fmt.Errorf("MIN_PLAYERS must be at least 3, got %d", g.MinPlayers)
	case g.RoundDuration < time.Second:
		return fmt.Errorf("ROUND_DURATION must be at least 1s, got %s", g.RoundDuration)
	case g.HintAfter > g.RoundDuration:
		return fmt.Errorf("HINT_AFTER (%s) cannot exceed ROUND_DURATION (%s)", g.HintAfter, g.RoundDuration)
	case g.TickInterval <= 0:
		return fmt.Errorf("TICK_INTERVAL must be positive, got %s", g.TickInterval)
	}
	return nil
}

// Settings returns the room rules derived from the game configuration
func (c *Config) Settings() domain.Settings {
	return domain.Settings{
		MinPlayers:       c.Game.MinPlayers,
		RoundDuration:    int(c.Game.RoundDuration / time.Second),
		VoteCooldown:     c.Game.VoteCooldown,
		StaleAfter:       c.Game.StaleAfter,
		HintAfter:        int(c.Game.HintAfter / time.Second),
		MaxMessageLength: c.Game.MaxMessageLength,
	}
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Server.Env == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Server.Env == "production"
}

// GetAddr returns the server address in host:port format
func (c *Config) GetAddr() string {
	return c.Server.Host + ":" + c.Server.Port
}
