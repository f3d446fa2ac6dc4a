package config

import (
	"strings"

	"github.com/spf13/viper"
)

// Cfg 是一个全局变量，用于存储所有应用程序的配置
var Cfg *Config

// Config 结构体定义了应用程序的所有配置项
// 它与 config.yaml 文件的结构完全对应
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Analysis AnalysisConfig `mapstructure:"analysis"`
}

// ServerConfig 定义了服务器相关的配置
type ServerConfig struct {
	Address string     `mapstructure:"address"`
	Cors    CorsConfig `mapstructure:"cors"`
}

// CorsConfig 定义了CORS相关的配置
type CorsConfig struct {
	AllowedOrigins []string `mapstructure:"allowedOrigins"`
}

// DatabaseConfig 定义了本地库、远程镜像和缓存相关的配置
type DatabaseConfig struct {
	Sqlite SqliteConfig `mapstructure:"sqlite"`
	Mirror MirrorConfig `mapstructure:"mirror"`
	Redis  RedisConfig  `mapstructure:"redis"`
}

// SqliteConfig 定义了本地嵌入式数据库的配置
type SqliteConfig struct {
	Path string `mapstructure:"path"`
}

// MirrorConfig 定义了远程镜像(Postgres)的配置。
// Enabled为false时应用以纯本地模式运行，所有镜像写入被跳过。
type MirrorConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	DSN     string `mapstructure:"dsn"`
}

// RedisConfig 定义了Redis的配置。
// Redis承载目标缓存和餐食订阅通道，同样是可选的。
type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// AnalysisConfig 定义了餐食图像分析任务轮询循环的参数
type AnalysisConfig struct {
	PollIntervalMS int `mapstructure:"pollIntervalMS"`
	MaxAttempts    int `mapstructure:"maxAttempts"`
}

// LoadConfig 函数负责查找、加载和解析配置文件
// 它会在指定的路径中查找名为 config.yaml 的文件
func LoadConfig() (*Config, error) {
	v := viper.New()

	// 1. 设置配置文件名和类型
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	// 2. 添加配置文件搜索路径
	v.AddConfigPath("./config")
	v.AddConfigPath(".")

	// 3. 设置缺省值，保证缺失配置文件时也能以本地模式启动
	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.cors.allowedOrigins", []string{"http://localhost:3000"})
	v.SetDefault("database.sqlite.path", "ledger.db")
	v.SetDefault("database.mirror.enabled", false)
	v.SetDefault("database.redis.enabled", false)
	v.SetDefault("database.redis.address", "localhost:6379")
	v.SetDefault("analysis.pollIntervalMS", 2000)
	v.SetDefault("analysis.maxAttempts", 15)

	// 4. 允许通过环境变量覆盖配置，例如 DATABASE_MIRROR_DSN
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// 5. 读取配置文件；文件缺失不是致命错误，缺省值已经足够启动
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	// 6. 将配置反序列化到结构体中
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	Cfg = &cfg
	return Cfg, nil
}
