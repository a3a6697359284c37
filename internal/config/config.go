// internal/config/config.go
package config

import (
	"log"
	"os"
	"sync"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Cache    CacheConfig
	Storage  StorageConfig
	Fleet    FleetConfig
	Forecast ForecastConfig
	Engine   EngineConfig
	App      AppConfig
}

type ServerConfig struct {
	Port           string
	Mode           string
	AllowedOrigins []string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type CacheConfig struct {
	Enabled           bool
	RedisURL          string
	RedisHost         string
	RedisPort         string
	RedisPassword     string
	RedisDB           int
	CoverageTTLSecond int
}

// StorageConfig points at the S3-compatible document store that receives the
// flat coverage export.
type StorageConfig struct {
	Enabled   bool
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	UseSSL    bool
	Prefix    string
}

type FleetConfig struct {
	BaseURL        string
	User           string
	TimeoutSeconds int
}

type ForecastConfig struct {
	BaseURL        string
	HorizonDays    int
	TimeoutSeconds int
}

// EngineConfig carries the designated ERP codes and the report timezone.
type EngineConfig struct {
	HubCenter      string
	HubCode        string
	ProductionCode string
	HubStorageCode string
	Timezone       string
}

type AppConfig struct {
	UploadDir           string
	OutputDir           string
	DefaultTolerancePct float64
}

var (
	once     sync.Once
	instance *Config
)

func Load() *Config {
	once.Do(func() {
		// Load .env file if it exists
		_ = godotenv.Load()

		viper.SetDefault("SERVER_PORT", "8080")
		viper.SetDefault("SERVER_MODE", "debug")
		viper.SetDefault("SERVER_ALLOWED_ORIGINS", []string{"*"})
		viper.SetDefault("DB_HOST", "localhost")
		viper.SetDefault("DB_PORT", "5432")
		viper.SetDefault("DB_USER", "postgres")
		viper.SetDefault("DB_PASSWORD", "postgres")
		viper.SetDefault("DB_NAME", "supply_coverage")
		viper.SetDefault("DB_SSLMODE", "disable")
		viper.SetDefault("CACHE_ENABLED", false)
		viper.SetDefault("REDIS_URL", "")
		viper.SetDefault("REDIS_HOST", "127.0.0.1")
		viper.SetDefault("REDIS_PORT", "6379")
		viper.SetDefault("REDIS_PASSWORD", "")
		viper.SetDefault("REDIS_DB", 0)
		viper.SetDefault("CACHE_COVERAGE_TTL_SECONDS", 60)
		viper.SetDefault("DOCSTORE_ENABLED", false)
		viper.SetDefault("DOCSTORE_REGION", "us-east-1")
		viper.SetDefault("DOCSTORE_USE_SSL", true)
		viper.SetDefault("DOCSTORE_PREFIX", "coverage_exports")
		viper.SetDefault("FLEET_API_URL", "")
		viper.SetDefault("FLEET_API_USER", "")
		viper.SetDefault("FLEET_TIMEOUT_SECONDS", 30)
		viper.SetDefault("FORECAST_API_URL", "")
		viper.SetDefault("FORECAST_HORIZON_DAYS", 15)
		viper.SetDefault("FORECAST_TIMEOUT_SECONDS", 60)
		viper.SetDefault("ENGINE_HUB_CENTER", "TCNO")
		viper.SetDefault("ENGINE_HUB_CODE", "HUB")
		viper.SetDefault("ENGINE_PRODUCTION_CODE", "PI01")
		viper.SetDefault("ENGINE_HUB_STORAGE_CODE", "L003")
		viper.SetDefault("ENGINE_TIMEZONE", "America/Lima")
		viper.SetDefault("APP_UPLOAD_DIR", "./data/uploads")
		viper.SetDefault("APP_OUTPUT_DIR", "./data/output")
		viper.SetDefault("APP_DEFAULT_TOLERANCE_PCT", 10.0)

		viper.AutomaticEnv()

		ensureDir(viper.GetString("APP_UPLOAD_DIR"))
		ensureDir(viper.GetString("APP_OUTPUT_DIR"))

		instance = &Config{
			Server: ServerConfig{
				Port:           viper.GetString("SERVER_PORT"),
				Mode:           viper.GetString("SERVER_MODE"),
				AllowedOrigins: viper.GetStringSlice("SERVER_ALLOWED_ORIGINS"),
			},
			Database: DatabaseConfig{
				Host:     viper.GetString("DB_HOST"),
				Port:     viper.GetString("DB_PORT"),
				User:     viper.GetString("DB_USER"),
				Password: viper.GetString("DB_PASSWORD"),
				DBName:   viper.GetString("DB_NAME"),
				SSLMode:  viper.GetString("DB_SSLMODE"),
			},
			Cache: CacheConfig{
				Enabled:           viper.GetBool("CACHE_ENABLED"),
				RedisURL:          viper.GetString("REDIS_URL"),
				RedisHost:         viper.GetString("REDIS_HOST"),
				RedisPort:         viper.GetString("REDIS_PORT"),
				RedisPassword:     viper.GetString("REDIS_PASSWORD"),
				RedisDB:           viper.GetInt("REDIS_DB"),
				CoverageTTLSecond: viper.GetInt("CACHE_COVERAGE_TTL_SECONDS"),
			},
			Storage: StorageConfig{
				Enabled:   viper.GetBool("DOCSTORE_ENABLED"),
				Endpoint:  viper.GetString("DOCSTORE_ENDPOINT"),
				AccessKey: viper.GetString("DOCSTORE_ACCESS_KEY"),
				SecretKey: viper.GetString("DOCSTORE_SECRET_KEY"),
				Bucket:    viper.GetString("DOCSTORE_BUCKET"),
				Region:    viper.GetString("DOCSTORE_REGION"),
				UseSSL:    viper.GetBool("DOCSTORE_USE_SSL"),
				Prefix:    viper.GetString("DOCSTORE_PREFIX"),
			},
			Fleet: FleetConfig{
				BaseURL:        viper.GetString("FLEET_API_URL"),
				User:           viper.GetString("FLEET_API_USER"),
				TimeoutSeconds: viper.GetInt("FLEET_TIMEOUT_SECONDS"),
			},
			Forecast: ForecastConfig{
				BaseURL:        viper.GetString("FORECAST_API_URL"),
				HorizonDays:    viper.GetInt("FORECAST_HORIZON_DAYS"),
				TimeoutSeconds: viper.GetInt("FORECAST_TIMEOUT_SECONDS"),
			},
			Engine: EngineConfig{
				HubCenter:      viper.GetString("ENGINE_HUB_CENTER"),
				HubCode:        viper.GetString("ENGINE_HUB_CODE"),
				ProductionCode: viper.GetString("ENGINE_PRODUCTION_CODE"),
				HubStorageCode: viper.GetString("ENGINE_HUB_STORAGE_CODE"),
				Timezone:       viper.GetString("ENGINE_TIMEZONE"),
			},
			App: AppConfig{
				UploadDir:           viper.GetString("APP_UPLOAD_DIR"),
				OutputDir:           viper.GetString("APP_OUTPUT_DIR"),
				DefaultTolerancePct: viper.GetFloat64("APP_DEFAULT_TOLERANCE_PCT"),
			},
		}
	})

	return instance
}

func ensureDir(dir string) {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if err := os.MkdirAll(dir, 0755); err != nil {
			log.Fatalf("Failed to create directory %s: %v", dir, err)
		}
	}
}
