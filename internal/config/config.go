// File: internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

type ServerConfig struct {
	Port          int    `yaml:"port"`
	UploadsDir    string `yaml:"uploads_dir"`
	MaxUploadMB   int    `yaml:"max_upload_mb"`
	RateLimit     int    `yaml:"rate_limit"`      // submissions per window per client
	RateWindowSec int    `yaml:"rate_window_sec"` // window length in seconds
}

type AdminConfig struct {
	APIKey        string        `yaml:"api_key"`
	SessionSecret string        `yaml:"session_secret"`
	SessionTTL    time.Duration `yaml:"session_ttl"`
	SecureCookie  bool          `yaml:"secure_cookie"`
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type DatabaseConfig struct {
	URL      string `yaml:"url"`
	MaxConns int32  `yaml:"max_conns"`
}

type RedisConfig struct {
	URL      string        `yaml:"url"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"`
}

type TranscriptionConfig struct {
	DeepgramKey string `yaml:"deepgram_key"`
	BaseURL     string `yaml:"base_url"`
	Model       string `yaml:"model"`
	Language    string `yaml:"language"` // "auto" or an ISO code
	Diarize     bool   `yaml:"diarize"`
	FFmpegPath  string `yaml:"ffmpeg_path"`
}

type AIConfig struct {
	OpenAIKey    string `yaml:"openai_key"`
	GeminiKey    string `yaml:"gemini_key"`
	GeminiURL    string `yaml:"gemini_url"`
	MaxOutTokens int    `yaml:"max_out_tokens"`
}

// StageModelConfig picks the model and provider for one pipeline stage.
type StageModelConfig struct {
	Model    string `yaml:"model"`
	Provider string `yaml:"provider"` // openai | gemini | noop
}

type PipelineConfig struct {
	StudentLevel string        `yaml:"student_level"`
	StudentGoal  string        `yaml:"student_goal"`
	JobTimeout   time.Duration `yaml:"job_timeout"`

	Notes          StageModelConfig `yaml:"notes"`
	Misconceptions StageModelConfig `yaml:"misconceptions"`
	Practice       StageModelConfig `yaml:"practice"`
	Resources      StageModelConfig `yaml:"resources"`
	Actions        StageModelConfig `yaml:"actions"`
}

type WorkerConfig struct {
	Workers   int `yaml:"workers"`
	QueueSize int `yaml:"queue_size"`
}

type NotifyConfig struct {
	TelegramToken  string `yaml:"telegram_token"`
	TelegramChatID int64  `yaml:"telegram_chat_id"`
}

type Config struct {
	Server        ServerConfig        `yaml:"server"`
	Admin         AdminConfig         `yaml:"admin"`
	Log           LogConfig           `yaml:"log"`
	Database      DatabaseConfig      `yaml:"database"`
	Redis         RedisConfig         `yaml:"redis"`
	Transcription TranscriptionConfig `yaml:"transcription"`
	AI            AIConfig            `yaml:"ai"`
	Pipeline      PipelineConfig      `yaml:"pipeline"`
	Worker        WorkerConfig        `yaml:"worker"`
	Notify        NotifyConfig        `yaml:"notify"`

	Runtime RuntimeConfig `yaml:"-"`
}

func LoadConfig(path string, dev bool) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.applyDefaults()

	// Minimal validation
	if cfg.Database.URL == "" {
		return nil, errors.New("database.url is required")
	}
	if cfg.Transcription.DeepgramKey == "" {
		return nil, errors.New("transcription.deepgram_key is required")
	}
	if cfg.AI.OpenAIKey == "" && cfg.AI.GeminiKey == "" && !dev {
		return nil, errors.New("set ai.openai_key or ai.gemini_key")
	}

	cfg.Runtime.Dev = dev
	return &cfg, nil
}

func (cfg *Config) applyDefaults() {
	if cfg.Server.Port <= 0 {
		cfg.Server.Port = 8000
	}
	if cfg.Server.UploadsDir == "" {
		cfg.Server.UploadsDir = "uploads"
	}
	if cfg.Server.MaxUploadMB <= 0 {
		cfg.Server.MaxUploadMB = 256
	}
	if cfg.Server.RateLimit <= 0 {
		cfg.Server.RateLimit = 10
	}
	if cfg.Server.RateWindowSec <= 0 {
		cfg.Server.RateWindowSec = 60
	}
	if cfg.Admin.SessionTTL <= 0 {
		cfg.Admin.SessionTTL = 30 * time.Minute
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.Database.MaxConns <= 0 {
		cfg.Database.MaxConns = 10
	}
	if cfg.Redis.TTL <= 0 {
		cfg.Redis.TTL = time.Hour
	}
	if cfg.Transcription.BaseURL == "" {
		cfg.Transcription.BaseURL = "https://api.deepgram.com/v1"
	}
	if cfg.Transcription.Model == "" {
		cfg.Transcription.Model = "whisper-large"
	}
	if cfg.Transcription.Language == "" {
		cfg.Transcription.Language = "auto"
	}
	if cfg.Transcription.FFmpegPath == "" {
		cfg.Transcription.FFmpegPath = "ffmpeg"
	}
	if cfg.AI.MaxOutTokens <= 0 {
		cfg.AI.MaxOutTokens = 4096
	}
	if cfg.Pipeline.StudentLevel == "" {
		cfg.Pipeline.StudentLevel = "college"
	}
	if cfg.Pipeline.StudentGoal == "" {
		cfg.Pipeline.StudentGoal = "score well in the final exam and actually understand the concepts"
	}
	if cfg.Pipeline.JobTimeout <= 0 {
		cfg.Pipeline.JobTimeout = 30 * time.Minute
	}
	defStage := func(s *StageModelConfig, model, provider string) {
		if s.Model == "" {
			s.Model = model
		}
		if s.Provider == "" {
			s.Provider = provider
		}
	}
	defStage(&cfg.Pipeline.Notes, "gpt-4o", "openai")
	defStage(&cfg.Pipeline.Misconceptions, "gpt-4o-mini", "openai")
	defStage(&cfg.Pipeline.Practice, "gpt-4o-mini", "openai")
	defStage(&cfg.Pipeline.Resources, "gpt-5", "openai")
	defStage(&cfg.Pipeline.Actions, "gemini-2.5-flash", "gemini")
	if cfg.Worker.Workers <= 0 {
		cfg.Worker.Workers = 4
	}
	if cfg.Worker.QueueSize <= 0 {
		cfg.Worker.QueueSize = cfg.Worker.Workers * 4
	}
}
