package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"gopkg.in/yaml.v3"
)

// Config is the application's configuration model.
// It captures the player profile, storage, the text oracle and the engagement simulation.
type Config struct {
	Profile    ProfileConfig    `yaml:"profile"`
	Storage    StorageConfig    `yaml:"storage"`
	Oracle     OracleConfig     `yaml:"oracle"`
	Engagement EngagementConfig `yaml:"engagement"`
	Stories    StoriesConfig    `yaml:"stories"`
	Server     ServerConfig     `yaml:"server"`
	Metrics    MetricsConfig    `yaml:"metrics"`
	Log        LogConfig        `yaml:"log"`
	Random     RandomConfig     `yaml:"random"`
}

// ProfileConfig seeds the current user when no snapshot exists yet.
type ProfileConfig struct {
	Username  string `yaml:"username"  env:"SOLOFEED_USERNAME"`
	AvatarRef string `yaml:"avatar"    env:"SOLOFEED_AVATAR"`
}

type StorageConfig struct {
	DBPath string `yaml:"dbPath" env:"SOLOFEED_DB_PATH"`
}

type OracleConfig struct {
	// Endpoint of the text-generation service. Empty disables network calls.
	Endpoint string        `yaml:"endpoint" env:"SOLOFEED_ORACLE_ENDPOINT"`
	APIKey   string        `yaml:"apiKey"   env:"SOLOFEED_ORACLE_API_KEY"`
	Timeout  time.Duration `yaml:"timeout"  env:"SOLOFEED_ORACLE_TIMEOUT"`
	RPS      float64       `yaml:"rps"      env:"SOLOFEED_ORACLE_RPS"`
	Burst    int           `yaml:"burst"    env:"SOLOFEED_ORACLE_BURST"`
	// MaxAttempts counts HTTP attempts on 429/5xx; 1 means no retry.
	MaxAttempts int           `yaml:"maxAttempts" env:"SOLOFEED_ORACLE_MAX_ATTEMPTS"`
	BaseBackoff time.Duration `yaml:"baseBackoff"`
	// Consecutive failures before the breaker opens, and how long it stays open.
	BreakerFailures int           `yaml:"breakerFailures"`
	BreakerCooldown time.Duration `yaml:"breakerCooldown"`
}

type EngagementConfig struct {
	CommentBatchDelay time.Duration `yaml:"commentBatchDelay"`
	CommentStagger    time.Duration `yaml:"commentStagger"`
	CommentsMin       int           `yaml:"commentsMin"`
	CommentsMax       int           `yaml:"commentsMax"`
	LikeBatchDelay    time.Duration `yaml:"likeBatchDelay"`
	LikeStagger       time.Duration `yaml:"likeStagger"`
	LikesMin          int           `yaml:"likesMin"`
	LikesMax          int           `yaml:"likesMax"`
	// Only the first LikeNotifyCap likes of a batch produce a notification.
	LikeNotifyCap int `yaml:"likeNotifyCap"`

	CommentLikeDelay  time.Duration `yaml:"commentLikeDelay"`
	CommentLikeChance float64       `yaml:"commentLikeChance"`

	ActivityCommentDelay  time.Duration `yaml:"activityCommentDelay"`
	ActivityCommentChance float64       `yaml:"activityCommentChance"`

	ReplyDelay        time.Duration `yaml:"replyDelay"`
	SecondReplyDelay  time.Duration `yaml:"secondReplyDelay"`
	SecondReplyChance float64       `yaml:"secondReplyChance"`

	CommentPreview     int `yaml:"commentPreview"`
	CommentLikePreview int `yaml:"commentLikePreview"`

	FeedTickInterval     time.Duration `yaml:"feedTickInterval"`
	ActivityTickInterval time.Duration `yaml:"activityTickInterval"`

	// Quiet hours (UTC) during which periodic ticks stay idle.
	QuietHours []int `yaml:"quietHours"`
	// Budget for periodic-tick activity; 0 means unlimited.
	MaxPerHour int `yaml:"maxPerHour" env:"SOLOFEED_MAX_PER_HOUR"`
	MaxPerDay  int `yaml:"maxPerDay"  env:"SOLOFEED_MAX_PER_DAY"`
}

type StoriesConfig struct {
	ImagePool []string `yaml:"imagePool"`
	MinItems  int      `yaml:"minItems"`
	MaxItems  int      `yaml:"maxItems"`
}

type ServerConfig struct {
	Addr           string   `yaml:"addr"           env:"SOLOFEED_ADDR"`
	AllowedOrigins []string `yaml:"allowedOrigins"`
}

type MetricsConfig struct {
	Addr string `yaml:"addr" env:"METRICS_ADDR"`
}

type LogConfig struct {
	Level  string `yaml:"level"  env:"LOG_LEVEL"`
	Format string `yaml:"format" env:"LOG_FORMAT"`
}

type RandomConfig struct {
	// Seed for every random draw; 0 seeds from the clock.
	Seed uint64 `yaml:"seed" env:"SOLOFEED_SEED"`
}

// Default returns a sensible default configuration.
func Default() Config {
	return Config{
		Profile: ProfileConfig{Username: "you"},
		Storage: StorageConfig{DBPath: "./solofeed.db"},
		Oracle: OracleConfig{
			Endpoint:        "https://toolkit.rork.com/text/llm/",
			Timeout:         10 * time.Second,
			RPS:             2,
			Burst:           5,
			MaxAttempts:     1,
			BaseBackoff:     500 * time.Millisecond,
			BreakerFailures: 3,
			BreakerCooldown: 30 * time.Second,
		},
		Engagement: DefaultEngagement(),
		Stories:    StoriesConfig{MinItems: 1, MaxItems: 3},
		Server:     ServerConfig{Addr: ":8080", AllowedOrigins: []string{"*"}},
		Log:        LogConfig{Level: "info", Format: "json"},
	}
}

// DefaultEngagement returns the timing and probabilities of the simulated community.
func DefaultEngagement() EngagementConfig {
	return EngagementConfig{
		CommentBatchDelay:     2 * time.Second,
		CommentStagger:        3 * time.Second,
		CommentsMin:           2,
		CommentsMax:           5,
		LikeBatchDelay:        5 * time.Second,
		LikeStagger:           2 * time.Second,
		LikesMin:              3,
		LikesMax:              7,
		LikeNotifyCap:         3,
		CommentLikeDelay:      3 * time.Second,
		CommentLikeChance:     0.5,
		ActivityCommentDelay:  time.Second,
		ActivityCommentChance: 0.6,
		ReplyDelay:            1500 * time.Millisecond,
		SecondReplyDelay:      3 * time.Second,
		SecondReplyChance:     0.3,
		CommentPreview:        30,
		CommentLikePreview:    20,
		FeedTickInterval:      45 * time.Second,
		ActivityTickInterval:  30 * time.Second,
	}
}

// ResolveEnv applies environment overrides on top of the YAML values.
// Fields without an env tag, or whose variable is unset, keep their value.
func (c *Config) ResolveEnv() error {
	return cleanenv.ReadEnv(c)
}

// Validate rejects configurations the simulation cannot run with.
func (c Config) Validate() error {
	e := c.Engagement
	if e.CommentsMin < 0 || e.CommentsMax < e.CommentsMin {
		return fmt.Errorf("engagement: invalid comment range [%d,%d]", e.CommentsMin, e.CommentsMax)
	}
	if e.LikesMin < 0 || e.LikesMax < e.LikesMin {
		return fmt.Errorf("engagement: invalid like range [%d,%d]", e.LikesMin, e.LikesMax)
	}
	for name, p := range map[string]float64{
		"commentLikeChance":     e.CommentLikeChance,
		"activityCommentChance": e.ActivityCommentChance,
		"secondReplyChance":     e.SecondReplyChance,
	} {
		if p < 0 || p > 1 {
			return fmt.Errorf("engagement: %s must be within [0,1], got %v", name, p)
		}
	}
	for _, h := range e.QuietHours {
		if h < 0 || h > 23 {
			return fmt.Errorf("engagement: quiet hour %d out of range", h)
		}
	}
	if c.Stories.MinItems < 1 || c.Stories.MaxItems < c.Stories.MinItems {
		return fmt.Errorf("stories: invalid item range [%d,%d]", c.Stories.MinItems, c.Stories.MaxItems)
	}
	if c.Oracle.MaxAttempts < 1 {
		return errors.New("oracle: maxAttempts must be at least 1")
	}
	return nil
}

// Load reads YAML config from path, applies env overrides and validates it.
func Load(path string) (Config, error) {
	cfg := Default()
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, err
	}
	if err := cfg.ResolveEnv(); err != nil {
		return cfg, fmt.Errorf("config: env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config: validate: %w", err)
	}
	return cfg, nil
}

// LoadOrDefault behaves like Load but falls back to defaults when the file is missing.
func LoadOrDefault(path string) (Config, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		cfg := Default()
		if err := cfg.ResolveEnv(); err != nil {
			return cfg, fmt.Errorf("config: env: %w", err)
		}
		return cfg, cfg.Validate()
	}
	return Load(path)
}

// Save writes YAML config to path, creating directories as needed.
func Save(path string, cfg Config) error {
	if path == "" {
		return errors.New("empty path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	b, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}
