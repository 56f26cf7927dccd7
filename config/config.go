package config

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"qfmwidget/model"

	"github.com/joho/godotenv"
)

// Config stores the application configuration.
type Config struct {
	ServerAddr  string
	HTTPTimeout time.Duration // Meting 接口请求超时

	// 日志
	LogLevel      string
	LogPath       string
	LogMaxSize    int
	LogMaxBackups int
	LogMaxAge     int
	LogCompress   bool

	// 偏好与歌单缓存的存储：memory, sqlite, mysql, redis
	StoreDriver string
	SQLitePath  string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	// Redis配置
	RedisHost      string
	RedisPort      string
	RedisPassword  string
	RedisDB        int
	RedisKeyPrefix string

	// 歌单配置，MusicConfigFile 非空时以文件内容为准并监听变更
	Music           model.MusicConfig
	MusicConfigFile string
}

// getEnv gets an environment variable or returns a default value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// getEnvInt gets an environment variable as int or returns a default value.
func getEnvInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return fallback
}

// getEnvBool gets an environment variable as bool or returns a default value.
func getEnvBool(key string, fallback bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

// Load loads configuration from environment variables (via .env file) or defaults.
func Load() *Config {
	// godotenv.Load() will not override existing env vars.
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found or error loading .env, relying on existing environment variables and defaults.")
	}
	return FromEnv()
}

// FromEnv builds the configuration from the current environment only.
func FromEnv() *Config {
	def := model.DefaultMusicConfig()

	cfg := &Config{
		ServerAddr:    getEnv("SERVER_ADDR", ":8080"),
		HTTPTimeout:   time.Duration(getEnvInt("HTTP_TIMEOUT_SECONDS", 10)) * time.Second,
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		LogPath:       getEnv("LOG_PATH", ""),
		LogMaxSize:    getEnvInt("LOG_MAX_SIZE", 50),
		LogMaxBackups: getEnvInt("LOG_MAX_BACKUPS", 3),
		LogMaxAge:     getEnvInt("LOG_MAX_AGE", 28),
		LogCompress:   getEnvBool("LOG_COMPRESS", true),
		StoreDriver:   getEnv("STORE_DRIVER", "sqlite"),
		SQLitePath:    getEnv("SQLITE_PATH", filepath.Join("data", "player.db")),
		DBHost:        getEnv("DB_HOST", "127.0.0.1"),
		DBPort:        getEnv("DB_PORT", "3306"),
		DBUser:        getEnv("DB_USER", "root"),
		DBPassword:    os.Getenv("DB_PASSWORD"),
		DBName:        getEnv("DB_NAME", "fm"),
		RedisHost:     getEnv("REDIS_HOST", "127.0.0.1"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		RedisKeyPrefix: getEnv("REDIS_KEY_PREFIX", "qfm:"),
		Music: model.MusicConfig{
			Enable: getEnvBool("MUSIC_ENABLE", def.Enable),
			ID:     getEnv("MUSIC_ID", def.ID),
			Server: getEnv("MUSIC_SERVER", def.Server),
			Type:   getEnv("MUSIC_TYPE", def.Type),
			API:    getEnv("MUSIC_API", ""),
		},
		MusicConfigFile: getEnv("MUSIC_CONFIG_FILE", ""),
	}

	if cfg.MusicConfigFile != "" {
		music, err := LoadMusicConfigFile(cfg.MusicConfigFile, cfg.Music)
		if err != nil {
			log.Printf("Failed to load music config file %s: %v", cfg.MusicConfigFile, err)
		} else {
			cfg.Music = music
		}
	}

	return cfg
}

// LoadMusicConfigFile 读取 JSON 格式的歌单配置，文件中缺省的字段沿用 base
func LoadMusicConfigFile(path string, base model.MusicConfig) (model.MusicConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return base, fmt.Errorf("读取歌单配置失败: %w", err)
	}

	music := base
	if err := json.Unmarshal(data, &music); err != nil {
		return base, fmt.Errorf("解析歌单配置失败: %w", err)
	}
	return music, nil
}
