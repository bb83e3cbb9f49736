package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	StorageMongo  = "mongo"
	StorageMemory = "memory"

	devJWTSecret = "dev-only-secret"
)

// Config 应用配置
type Config struct {
	Port          int           `yaml:"port"`
	GinMode       string        `yaml:"ginMode"`
	LogLevel      string        `yaml:"logLevel"`
	StorageDriver string        `yaml:"storageDriver"`
	MongoURI      string        `yaml:"mongoUri"`
	MongoDB       string        `yaml:"mongoDb"`
	JWTSecret     string        `yaml:"jwtSecret"`
	JWTTTL        time.Duration `yaml:"jwtTtl"`
	CORSOrigins   []string      `yaml:"corsOrigins"`
	RedisURI      string        `yaml:"redisUri"`
	StatsCacheTTL time.Duration `yaml:"statsCacheTtl"`
	AMQPURL       string        `yaml:"amqpUrl"`
	AMQPExchange  string        `yaml:"amqpExchange"`
	AdminName     string        `yaml:"adminName"`
	AdminEmail    string        `yaml:"adminEmail"`
	AdminPassword string        `yaml:"adminPassword"`
	FollowUpHour  int           `yaml:"followUpHour"` // -1 关闭回访提醒
	OperationLog  bool          `yaml:"operationLog"`
}

// Debug 是否为调试模式
func (c *Config) Debug() bool {
	return c.GinMode != "release"
}

// Default 默认配置
func Default() *Config {
	return &Config{
		Port:          5000,
		GinMode:       "debug",
		LogLevel:      "info",
		StorageDriver: StorageMongo,
		MongoURI:      "mongodb://127.0.0.1:27017",
		MongoDB:       "telecaller_crm",
		JWTTTL:        24 * time.Hour,
		CORSOrigins:   []string{"http://localhost:3000", "http://localhost:5173"},
		StatsCacheTTL: 30 * time.Second,
		AMQPExchange:  "crm.leads",
		AdminName:     "Admin",
		FollowUpHour:  8,
		OperationLog:  true,
	}
}

// LoadConfig 加载配置：默认值、CONFIG_FILE 指定的YAML、.env 与环境变量，环境变量优先
func LoadConfig() (*Config, error) {
	// .env 不存在时忽略
	_ = godotenv.Load()
	return Load(os.Getenv("CONFIG_FILE"), os.LookupEnv)
}

// Load 从YAML文件和环境变量构建配置，path 为空时跳过文件
func Load(path string, lookup func(string) (string, bool)) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("读取配置文件失败: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("解析配置文件失败: %w", err)
		}
	}

	if err := applyEnv(cfg, lookup); err != nil {
		return nil, err
	}

	if cfg.JWTSecret == "" && cfg.Debug() {
		cfg.JWTSecret = devJWTSecret
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate 校验配置
func (c *Config) Validate() error {
	var errs []error
	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("PORT 超出范围: %d", c.Port))
	}
	if c.StorageDriver != StorageMongo && c.StorageDriver != StorageMemory {
		errs = append(errs, fmt.Errorf("不支持的 STORAGE_DRIVER: %q", c.StorageDriver))
	}
	if c.StorageDriver == StorageMongo && (c.MongoURI == "" || c.MongoDB == "") {
		errs = append(errs, errors.New("MONGODB_URI 和 MONGO_DB 不能为空"))
	}
	if !c.Debug() && (c.JWTSecret == "" || c.JWTSecret == devJWTSecret) {
		errs = append(errs, errors.New("release 模式必须设置 JWT_SECRET"))
	}
	if c.JWTTTL <= 0 {
		errs = append(errs, errors.New("JWT_TTL 必须大于0"))
	}
	if c.FollowUpHour < -1 || c.FollowUpHour > 23 {
		errs = append(errs, fmt.Errorf("FOLLOW_UP_HOUR 超出范围: %d", c.FollowUpHour))
	}
	return errors.Join(errs...)
}

// applyEnv 环境变量覆盖配置
func applyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	get := func(key string) (string, bool) {
		v, ok := lookup(key)
		if !ok || strings.TrimSpace(v) == "" {
			return "", false
		}
		return strings.TrimSpace(v), true
	}

	strs := map[string]*string{
		"GIN_MODE":       &cfg.GinMode,
		"LOG_LEVEL":      &cfg.LogLevel,
		"STORAGE_DRIVER": &cfg.StorageDriver,
		"MONGODB_URI":    &cfg.MongoURI,
		"MONGO_DB":       &cfg.MongoDB,
		"JWT_SECRET":     &cfg.JWTSecret,
		"REDIS_URI":      &cfg.RedisURI,
		"AMQP_URL":       &cfg.AMQPURL,
		"AMQP_EXCHANGE":  &cfg.AMQPExchange,
		"ADMIN_NAME":     &cfg.AdminName,
		"ADMIN_EMAIL":    &cfg.AdminEmail,
		"ADMIN_PASSWORD": &cfg.AdminPassword,
	}
	for key, target := range strs {
		if v, ok := get(key); ok {
			*target = v
		}
	}

	ints := map[string]*int{
		"PORT":           &cfg.Port,
		"FOLLOW_UP_HOUR": &cfg.FollowUpHour,
	}
	for key, target := range ints {
		if v, ok := get(key); ok {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("%s 不是整数: %q", key, v)
			}
			*target = n
		}
	}

	durations := map[string]*time.Duration{
		"JWT_TTL":         &cfg.JWTTTL,
		"STATS_CACHE_TTL": &cfg.StatsCacheTTL,
	}
	for key, target := range durations {
		if v, ok := get(key); ok {
			d, err := time.ParseDuration(v)
			if err != nil {
				return fmt.Errorf("%s 不是有效时长: %q", key, v)
			}
			*target = d
		}
	}

	if v, ok := get("OPERATION_LOG"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("OPERATION_LOG 不是布尔值: %q", v)
		}
		cfg.OperationLog = b
	}

	if v, ok := get("CORS_ORIGINS"); ok {
		var origins []string
		for _, origin := range strings.Split(v, ",") {
			if origin = strings.TrimSpace(origin); origin != "" {
				origins = append(origins, origin)
			}
		}
		cfg.CORSOrigins = origins
	}

	return nil
}
