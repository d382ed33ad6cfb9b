package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v9"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// ErrMissingCredential - Gemini API 키가 없을 때
var ErrMissingCredential = errors.New("GEMINI_API_KEY (or API_KEY) is required")

// Config - 모든 환경변수를 담음
type Config struct {
	// Server
	Port string `env:"PORT" envDefault:"8080"`

	// Gemini API
	GeminiAPIKey string `env:"GEMINI_API_KEY"`
	TextModel    string `env:"GEMINI_TEXT_MODEL" envDefault:"gemini-2.5-flash"`
	VisionModel  string `env:"GEMINI_VISION_MODEL" envDefault:"gemini-2.5-pro"`
	ImageModel   string `env:"GEMINI_IMAGE_MODEL" envDefault:"imagen-4.0-generate-001"`
	EditModel    string `env:"GEMINI_EDIT_MODEL" envDefault:"gemini-2.5-flash-image"`

	// Redis (optional, request fencing falls back to memory)
	RedisHost     string `env:"REDIS_HOST"`
	RedisPort     string `env:"REDIS_PORT" envDefault:"6379"`
	RedisUsername string `env:"REDIS_USERNAME"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisUseTLS   bool   `env:"REDIS_USE_TLS" envDefault:"false"`

	FenceTTL       time.Duration `env:"FENCE_TTL" envDefault:"30m"`
	MaxUploadBytes int           `env:"MAX_UPLOAD_BYTES" envDefault:"10485760"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"console"`

	// .env 파일을 읽었는지 (로거 설정 후 출력용)
	DotEnvLoaded bool
}

// Load - .env(있으면) 로드 후 환경변수 파싱.
// 로거는 이 값으로 설정되므로 여기서는 로그를 남기지 않는다.
func Load() (*Config, error) {
	dotEnv := godotenv.Load() == nil

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	cfg.DotEnvLoaded = dotEnv

	// 프론트엔드 빌드와 같은 이름도 허용
	if cfg.GeminiAPIKey == "" {
		cfg.GeminiAPIKey = os.Getenv("API_KEY")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LogSummary - 로거 설정 이후 호출
func (c *Config) LogSummary() {
	if !c.DotEnvLoaded {
		log.Debug().Msg("⚠️  .env file not found, using environment variables")
	}
	log.Info().
		Str("text_model", c.TextModel).
		Str("vision_model", c.VisionModel).
		Str("image_model", c.ImageModel).
		Str("edit_model", c.EditModel).
		Bool("redis", c.HasRedis()).
		Str("log_level", c.LogLevel).
		Msg("✅ Configuration loaded")
}

// Validate - 필수 값 검증
func (c *Config) Validate() error {
	if c.GeminiAPIKey == "" {
		return ErrMissingCredential
	}
	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("MAX_UPLOAD_BYTES must be positive, got %d", c.MaxUploadBytes)
	}
	if c.FenceTTL <= 0 {
		return fmt.Errorf("FENCE_TTL must be positive, got %s", c.FenceTTL)
	}
	return nil
}

// HasRedis - Redis 사용 여부
func (c *Config) HasRedis() bool {
	return c.RedisHost != ""
}

// GetRedisAddr - Redis 연결 문자열 생성
func (c *Config) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", c.RedisHost, c.RedisPort)
}
