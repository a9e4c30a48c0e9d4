package config

import (
	"github.com/blues/cfl/internal/logger"
	"github.com/blues/cfl/internal/origin"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Registry RegistryConfig `mapstructure:"registry"`
	Resolver ResolverConfig `mapstructure:"resolver"`
	Payout   PayoutConfig   `mapstructure:"payout"`
	Task     TaskConfig     `mapstructure:"task"`
	Log      LogConfig      `mapstructure:"log"`
}

type ServerConfig struct {
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

// RegistryConfig 注册表初始参数
type RegistryConfig struct {
	FeePercent   int64  `mapstructure:"fee_percent"`   // 平台手续费率（基点，500 = 5%）
	FeeRecipient string `mapstructure:"fee_recipient"` // 手续费接收地址，持有改费率权限
}

// ResolverConfig 跨链来源解析器配置
type ResolverConfig struct {
	Mode            string                        `mapstructure:"mode"`             // static 或 chain
	RpcUrl          string                        `mapstructure:"rpc_url"`          // 链上模式的RPC节点URL
	ContractAddress string                        `mapstructure:"contract_address"` // 桥接注册合约地址
	Static          map[string]origin.StaticEntry `mapstructure:"static"`           // 静态模式的来源表
}

// PayoutConfig 付款银行配置
type PayoutConfig struct {
	Mode       string `mapstructure:"mode"`        // memory 或 chain
	RpcUrl     string `mapstructure:"rpc_url"`     // 链上模式的RPC节点URL
	PrivateKey string `mapstructure:"private_key"` // 托管账户私钥
	ChainId    int64  `mapstructure:"chain_id"`    // 链ID
}

type TaskConfig struct {
	Interval int `mapstructure:"interval"` // 秒
}

type LogConfig struct {
	Level  string `mapstructure:"level"`  // 日志级别: debug, info, warn, error, fatal
	Output string `mapstructure:"output"` // 输出目标: stdout, file
	File   string `mapstructure:"file"`   // 日志文件路径（当output为file时使用）
}

func Load() *Config {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AddConfigPath("/etc/cfl")

	// 设置默认值
	viper.SetDefault("server.port", "8080")
	viper.SetDefault("server.mode", "debug")
	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.user", "postgres")
	viper.SetDefault("database.password", "")
	viper.SetDefault("database.dbname", "crowdfunding")
	viper.SetDefault("database.sslmode", "disable")
	viper.SetDefault("registry.fee_percent", 250)
	viper.SetDefault("resolver.mode", "static")
	viper.SetDefault("payout.mode", "memory")
	viper.SetDefault("payout.chain_id", 1)
	viper.SetDefault("task.interval", 60)
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.output", "stdout")
	viper.SetDefault("log.file", "logs/app.log")

	// 自动读取环境变量
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		logger.Warn("Warning: Could not read config file: %v", err)
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		logger.Fatal("Unable to decode config into struct: %v", err)
	}

	return &config
}
