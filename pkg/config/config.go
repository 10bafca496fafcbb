package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	SQLite    SQLiteConfig
	Redis     RedisConfig
	Milvus    MilvusConfig
	LLM       LLMConfig
	Interview InterviewConfig
	Logging   LoggingConfig
}

type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  int
	WriteTimeout int
	BodyLimit    int
}

type SQLiteConfig struct {
	Path string
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

type MilvusConfig struct {
	Endpoint       string
	CollectionName string
	VectorDim      int
}

type LLMConfig struct {
	APIKey         string
	Model          string
	EmbeddingModel string
	Temperature    float32
	MaxTokens      int
	TimeoutSec     int
}

// InterviewConfig is the explicit orchestration configuration: the ordered
// phase list, per-phase question maximums, and the dimension weights used
// for composite scoring. Weights must sum to 1.0.
type InterviewConfig struct {
	Phases      []string
	MaxPerPhase map[string]int
	Weights     map[string]float64
	EarlyExit   bool
	TopK        int
}

type LoggingConfig struct {
	Level      string
	Format     string
	OutputPath string
}

func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AddConfigPath("/etc/interview-agent")

	viper.SetEnvPrefix("INTERVIEW_AGENT")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateInterview(config.Interview); err != nil {
		return nil, err
	}

	return &config, nil
}

func validateInterview(cfg InterviewConfig) error {
	if len(cfg.Phases) == 0 {
		return fmt.Errorf("interview.phases must not be empty")
	}

	var sum float64
	for _, w := range cfg.Weights {
		sum += w
	}
	if sum < 0.999 || sum > 1.001 {
		return fmt.Errorf("interview.weights must sum to 1.0, got %.3f", sum)
	}

	return nil
}

func setDefaults() {
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.readTimeout", 30)
	viper.SetDefault("server.writeTimeout", 30)
	viper.SetDefault("server.bodyLimit", 1048576)

	viper.SetDefault("sqlite.path", "./data/interviews.db")

	viper.SetDefault("redis.enabled", true)
	viper.SetDefault("redis.host", "localhost")
	viper.SetDefault("redis.port", 6379)
	viper.SetDefault("redis.db", 0)

	viper.SetDefault("milvus.endpoint", "localhost:19530")
	viper.SetDefault("milvus.collectionName", "interview_questions")
	viper.SetDefault("milvus.vectorDim", 1536)

	viper.SetDefault("llm.model", "gpt-4")
	viper.SetDefault("llm.embeddingModel", "text-embedding-3-small")
	viper.SetDefault("llm.temperature", 0.7)
	viper.SetDefault("llm.maxTokens", 1024)
	viper.SetDefault("llm.timeoutSec", 30)

	viper.SetDefault("interview.phases", []string{
		"introduction", "technical", "behavioral", "problem_solving", "closing",
	})
	viper.SetDefault("interview.maxPerPhase", map[string]int{
		"introduction":    3,
		"technical":       3,
		"behavioral":      3,
		"problem_solving": 3,
		"closing":         3,
	})
	viper.SetDefault("interview.weights", map[string]float64{
		"technical_accuracy":    0.30,
		"communication_quality": 0.25,
		"problem_solving":       0.25,
		"cultural_fit":          0.20,
	})
	viper.SetDefault("interview.earlyExit", false)
	viper.SetDefault("interview.topK", 5)

	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "json")
	viper.SetDefault("logging.outputPath", "stdout")
}
