package config

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config 服务全部配置
type Config struct {
	Server    ServerConfig
	Logger    LoggerConfig
	MySQL     MySQLConfig
	Redis     RedisConfig
	MinIO     MinIOConfig
	Kafka     KafkaConfig
	Async     AsyncConfig
	JWT       JWTConfig
	Mail      MailConfig
	RateLimit RateLimitConfig
}

// Default 返回所有模块的默认配置
func Default() Config {
	return Config{
		Server:    DefaultServerConfig(),
		Logger:    DefaultLoggerConfig(),
		MySQL:     DefaultMySQLConfig(),
		Redis:     DefaultRedisConfig(),
		MinIO:     DefaultMinIOConfig(),
		Kafka:     DefaultKafkaConfig(),
		Async:     DefaultAsyncConfig(),
		JWT:       DefaultJWTConfig(),
		Mail:      DefaultMailConfig(),
		RateLimit: DefaultRateLimitConfig(),
	}
}

// Load 在默认配置之上叠加 .env 文件与环境变量
// envFile 为空时只读取环境变量；文件不存在不算错误
func Load(envFile string) (Config, error) {
	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if envFile != "" {
		v.SetConfigFile(envFile)
		v.SetConfigType("env")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !isNotExist(err) {
				return Config{}, err
			}
		}
	}

	cfg := Default()
	apply(v, &cfg)
	return cfg, nil
}

// apply 逐项覆盖，只有显式设置过的 key 才生效
func apply(v *viper.Viper, cfg *Config) {
	setString(v, "SERVER_ADDR", &cfg.Server.Addr)
	setString(v, "SERVER_MODE", &cfg.Server.Mode)
	setDuration(v, "SERVER_REQUEST_TIMEOUT", &cfg.Server.RequestTimeout)
	setInt64(v, "SERVER_NODE_ID", &cfg.Server.NodeID)
	setDuration(v, "SERVER_SHUTDOWN_TIMEOUT", &cfg.Server.ShutdownTimeout)
	setStrings(v, "SERVER_ALLOWED_ORIGINS", &cfg.Server.AllowedOrigins)

	setString(v, "LOG_LEVEL", &cfg.Logger.Level)
	setString(v, "LOG_ENCODING", &cfg.Logger.Encoding)
	setBool(v, "LOG_DEVELOPMENT", &cfg.Logger.Development)

	setString(v, "MYSQL_HOST", &cfg.MySQL.Host)
	setInt(v, "MYSQL_PORT", &cfg.MySQL.Port)
	setString(v, "MYSQL_USER", &cfg.MySQL.User)
	setString(v, "MYSQL_PASSWORD", &cfg.MySQL.Password)
	setString(v, "MYSQL_DATABASE", &cfg.MySQL.Database)
	setStrings(v, "MYSQL_REPLICAS", &cfg.MySQL.Replicas)
	setBool(v, "MYSQL_AUTO_MIGRATE", &cfg.MySQL.AutoMigrate)

	setString(v, "REDIS_ADDR", &cfg.Redis.Addr)
	setString(v, "REDIS_PASSWORD", &cfg.Redis.Password)
	setInt(v, "REDIS_DB", &cfg.Redis.DB)

	setString(v, "MINIO_ENDPOINT", &cfg.MinIO.Endpoint)
	setString(v, "MINIO_ACCESS_KEY", &cfg.MinIO.AccessKeyID)
	setString(v, "MINIO_SECRET_KEY", &cfg.MinIO.SecretAccessKey)
	setBool(v, "MINIO_USE_SSL", &cfg.MinIO.UseSSL)
	setString(v, "MINIO_BUCKET", &cfg.MinIO.BucketName)
	setString(v, "MINIO_BASE_URL", &cfg.MinIO.BaseURL)

	setStrings(v, "KAFKA_BROKERS", &cfg.Kafka.Brokers)
	setString(v, "KAFKA_REDIS_RETRY_TOPIC", &cfg.Kafka.RedisRetryTopic)

	setString(v, "JWT_SECRET", &cfg.JWT.Secret)
	setDuration(v, "JWT_ACCESS_TTL", &cfg.JWT.AccessTTL)

	setString(v, "MAIL_HOST", &cfg.Mail.Host)
	setInt(v, "MAIL_PORT", &cfg.Mail.Port)
	setString(v, "MAIL_USERNAME", &cfg.Mail.Username)
	setString(v, "MAIL_PASSWORD", &cfg.Mail.Password)
	setString(v, "MAIL_FROM", &cfg.Mail.From)
	setString(v, "MAIL_RESET_URL", &cfg.Mail.ResetURL)

	setFloat(v, "RATE_LIMIT_IP_RATE", &cfg.RateLimit.IPRate)
	setInt(v, "RATE_LIMIT_IP_BURST", &cfg.RateLimit.IPBurst)
	setFloat(v, "RATE_LIMIT_USER_RATE", &cfg.RateLimit.UserRate)
	setInt(v, "RATE_LIMIT_USER_BURST", &cfg.RateLimit.UserBurst)
}

func isNotExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}

func setString(v *viper.Viper, key string, dst *string) {
	if v.IsSet(key) {
		*dst = v.GetString(key)
	}
}

func setStrings(v *viper.Viper, key string, dst *[]string) {
	if !v.IsSet(key) {
		return
	}
	var out []string
	for _, s := range strings.Split(v.GetString(key), ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	*dst = out
}

func setInt(v *viper.Viper, key string, dst *int) {
	if v.IsSet(key) {
		*dst = v.GetInt(key)
	}
}

func setInt64(v *viper.Viper, key string, dst *int64) {
	if v.IsSet(key) {
		*dst = v.GetInt64(key)
	}
}

func setFloat(v *viper.Viper, key string, dst *float64) {
	if v.IsSet(key) {
		*dst = v.GetFloat64(key)
	}
}

func setBool(v *viper.Viper, key string, dst *bool) {
	if v.IsSet(key) {
		*dst = v.GetBool(key)
	}
}

func setDuration(v *viper.Viper, key string, dst *time.Duration) {
	if v.IsSet(key) {
		*dst = v.GetDuration(key)
	}
}
