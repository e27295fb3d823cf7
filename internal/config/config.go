package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server      ServerConfig      `mapstructure:"server" validate:"required"`
	Database    DatabaseConfig    `mapstructure:"database" validate:"required"`
	Auth        AuthConfig        `mapstructure:"auth" validate:"required"`
	LLM         LLMConfig         `mapstructure:"llm" validate:"required"`
	Task        TaskConfig        `mapstructure:"task" validate:"required"`
	Progression ProgressionConfig `mapstructure:"progression" validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required,url"`
}

// AuthConfig contains all authentication and authorization settings.
type AuthConfig struct {
	JWTSecret          string `mapstructure:"jwt_secret" validate:"required,min=32"`
	TokenLifetimeHours int    `mapstructure:"token_lifetime_hours" validate:"required,gt=0"`
	BcryptCost         int    `mapstructure:"bcrypt_cost" validate:"gte=4,lte=31"`
}

// LLMConfig contains all LLM integration related settings.
type LLMConfig struct {
	GeminiAPIKey string `mapstructure:"gemini_api_key" validate:"required"`
	ModelName    string `mapstructure:"model_name"`

	// PromptTemplatePath optionally overrides the built-in content
	// generation prompt template.
	PromptTemplatePath string `mapstructure:"prompt_template_path"`

	// MaxRetries is the number of retries for transient API failures.
	MaxRetries int `mapstructure:"max_retries" validate:"gte=0"`

	// RetryDelaySeconds is the base delay for exponential backoff.
	RetryDelaySeconds int `mapstructure:"retry_delay_seconds" validate:"gte=0"`
}

// TaskConfig contains background task processing settings.
type TaskConfig struct {
	// WorkerCount is the number of concurrent task workers.
	WorkerCount int `mapstructure:"worker_count" validate:"required,gt=0"`

	// QueueSize is the buffer size of the in-memory task queue.
	QueueSize int `mapstructure:"queue_size" validate:"required,gt=0"`

	// StuckTaskAgeMinutes is how long a task may stay in processing
	// before it is considered stuck and requeued.
	StuckTaskAgeMinutes int `mapstructure:"stuck_task_age_minutes" validate:"required,gt=0"`
}

// ProgressionConfig contains the tunable knobs of the learning progression
// engine. Zero values fall back to the engine defaults; only deployments that
// need different pacing set these.
type ProgressionConfig struct {
	// ExpertConsecutiveReviews is the number of consecutive successful
	// on-time reviews required to promote a mastered subtopic to expert.
	ExpertConsecutiveReviews int `mapstructure:"expert_consecutive_reviews" validate:"gte=0"`

	// MaxIntervalDays caps the spacing between reviews.
	MaxIntervalDays int `mapstructure:"max_interval_days" validate:"gte=0"`

	// FeedGenerationHourUTC is the UTC hour at which the daily feed batch
	// job runs.
	FeedGenerationHourUTC int `mapstructure:"feed_generation_hour_utc" validate:"gte=0,lt=24"`
}
