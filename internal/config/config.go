// Package config loads the service configuration from the environment.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port       string
	AppVersion string
	Env        string
	Debug      bool

	// Gemini. Vertex AI is used when a project is set, the Gemini API otherwise.
	GoogleAPIKey    string
	GoogleProject   string
	GoogleLocation  string
	ChatModel       string
	ExtractionModel string
	EmbeddingModel  string

	// Retrieval
	VectorBackend     string
	QdrantHost        string
	QdrantPort        int
	QdrantAPIKey      string
	QdrantUseTLS      bool
	QdrantCollection  string
	ChromemPath       string
	ChromemCollection string
	RetrievalTopK     int

	// Sessions
	SessionBackend string
	RedisAddr      string
	RedisPassword  string
	RedisDB        int
	SessionTTL     time.Duration
	SQLitePath     string

	// Images
	SerperAPIKey     string
	SerperURL        string
	ImageCacheTTL    time.Duration
	ImagesPerDish    int
	ImageConcurrency int

	// Prompt
	MenuPath        string
	HistoryMaxTurns int
	HistoryMaxChars int

	// Per-call timeouts
	EmbedTimeout  time.Duration
	SearchTimeout time.Duration
	ModelTimeout  time.Duration
	ImageTimeout  time.Duration
	StoreTimeout  time.Duration
}

// Load reads the configuration from environment variables.
func Load() *Config {
	return &Config{
		Port:       getEnv("PORT", "8000"),
		AppVersion: getEnv("APP_VERSION", "dev"),
		Env:        getEnv("ENV", "development"),
		Debug:      getEnvBool("DEBUG", false),

		GoogleAPIKey:    os.Getenv("GOOGLE_API_KEY"),
		GoogleProject:   os.Getenv("GOOGLE_CLOUD_PROJECT"),
		GoogleLocation:  getEnv("GOOGLE_CLOUD_LOCATION", "us-central1"),
		ChatModel:       getEnv("CHAT_MODEL", "gemini-2.5-flash"),
		ExtractionModel: getEnv("EXTRACTION_MODEL", "gemini-2.5-flash"),
		EmbeddingModel:  getEnv("EMBEDDING_MODEL", "text-embedding-004"),

		VectorBackend:     strings.ToLower(getEnv("VECTOR_BACKEND", "qdrant")),
		QdrantHost:        getEnv("QDRANT_HOST", "localhost"),
		QdrantPort:        getEnvInt("QDRANT_PORT", 6334),
		QdrantAPIKey:      os.Getenv("QDRANT_API_KEY"),
		QdrantUseTLS:      getEnvBool("QDRANT_USE_TLS", false),
		QdrantCollection:  getEnv("QDRANT_COLLECTION", "warda"),
		ChromemPath:       getEnv("CHROMEM_PATH", "data/vectorstore"),
		ChromemCollection: getEnv("CHROMEM_COLLECTION", "warda"),
		RetrievalTopK:     getEnvInt("RETRIEVAL_TOP_K", 3),

		SessionBackend: strings.ToLower(getEnv("SESSION_BACKEND", "redis")),
		RedisAddr:      getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:  os.Getenv("REDIS_PASSWORD"),
		RedisDB:        getEnvInt("REDIS_DB", 0),
		SessionTTL:     getEnvDuration("SESSION_TTL", 0),
		SQLitePath:     getEnv("SQLITE_PATH", "file:sessions.db?_pragma=busy_timeout(5000)"),

		SerperAPIKey:     os.Getenv("SERPER_API_KEY"),
		SerperURL:        getEnv("SERPER_URL", "https://google.serper.dev"),
		ImageCacheTTL:    getEnvDuration("IMAGE_CACHE_TTL", 24*time.Hour),
		ImagesPerDish:    getEnvInt("IMAGES_PER_DISH", 3),
		ImageConcurrency: getEnvInt("IMAGE_CONCURRENCY", 4),

		MenuPath:        os.Getenv("MENU_PATH"),
		HistoryMaxTurns: getEnvInt("HISTORY_MAX_TURNS", 40),
		HistoryMaxChars: getEnvInt("HISTORY_MAX_CHARS", 24000),

		EmbedTimeout:  getEnvDuration("EMBED_TIMEOUT", 5*time.Second),
		SearchTimeout: getEnvDuration("SEARCH_TIMEOUT", 5*time.Second),
		ModelTimeout:  getEnvDuration("MODEL_TIMEOUT", 9*time.Second),
		ImageTimeout:  getEnvDuration("IMAGE_TIMEOUT", 5*time.Second),
		StoreTimeout:  getEnvDuration("STORE_TIMEOUT", 3*time.Second),
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if intVal, err := strconv.Atoi(val); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return defaultVal
}

// getEnvDuration accepts Go duration strings ("5s") or bare milliseconds.
func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	if d, err := time.ParseDuration(val); err == nil {
		return d
	}
	if ms, err := strconv.Atoi(val); err == nil {
		return time.Duration(ms) * time.Millisecond
	}
	return defaultVal
}
