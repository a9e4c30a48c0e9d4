package main

import (
	"github.com/blues/cfl/internal/audit"
	"github.com/blues/cfl/internal/config"
	"github.com/blues/cfl/internal/database"
	"github.com/blues/cfl/internal/ledger"
	"github.com/blues/cfl/internal/logger"
	"github.com/blues/cfl/internal/origin"
	"github.com/blues/cfl/internal/payout"
	"github.com/blues/cfl/internal/router"
	"github.com/blues/cfl/internal/scheduler"
	"github.com/gin-gonic/gin"
)

func main() {
	// 加载配置
	cfg := config.Load()

	// 初始化日志
	initLogger(cfg.Log)
	defer logger.Sync()

	// 初始化数据库
	db, err := database.Init(cfg.Database)
	if err != nil {
		logger.Fatal("Failed to initialize database: %v", err)
	}

	// 初始化跨链来源解析器
	resolver, err := buildResolver(cfg.Resolver)
	if err != nil {
		logger.Fatal("Failed to initialize origin resolver: %v", err)
	}

	// 初始化付款银行
	bank, err := buildBank(cfg.Payout)
	if err != nil {
		logger.Fatal("Failed to initialize payout bank: %v", err)
	}

	// 初始化审计记录器
	recorder, err := audit.NewRecorder(db, 4)
	if err != nil {
		logger.Fatal("Failed to initialize audit recorder: %v", err)
	}
	defer recorder.Close()

	// 初始化活动注册表
	registry, err := ledger.NewRegistry(ledger.RegistryConfig{
		FeePercent:   cfg.Registry.FeePercent,
		FeeRecipient: ledger.Address(cfg.Registry.FeeRecipient),
		Resolver:     resolver,
		Bank:         bank,
		Notifier:     recorder,
	})
	if err != nil {
		logger.Fatal("Failed to initialize campaign registry: %v", err)
	}

	// 设置Gin模式
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	// 初始化路由
	r := router.Setup(registry, db)

	// 启动定时任务
	manager := scheduler.Start(registry, db, cfg)
	defer manager.Stop()

	// 启动服务器
	logger.Info("Server starting on port %s", cfg.Server.Port)
	if err := r.Run(":" + cfg.Server.Port); err != nil {
		logger.Fatal("Failed to start server: %v", err)
	}
}

// initLogger 根据配置初始化默认日志器
func initLogger(cfg config.LogConfig) {
	level := logger.ParseLogLevel(cfg.Level)

	if cfg.Output == "file" {
		l, err := logger.NewWithFileRotation(level, cfg.File)
		if err != nil {
			logger.Fatal("Failed to initialize file logger: %v", err)
		}
		logger.SetDefaultLogger(l)
		return
	}

	l, err := logger.New(level)
	if err != nil {
		logger.Fatal("Failed to initialize logger: %v", err)
	}
	logger.SetDefaultLogger(l)
}

// buildResolver 按配置创建来源解析器
func buildResolver(cfg config.ResolverConfig) (ledger.OriginResolver, error) {
	if cfg.Mode == "chain" {
		logger.Info("Using on-chain origin resolver (contract: %s)", cfg.ContractAddress)
		return origin.NewChainResolver(cfg.RpcUrl, cfg.ContractAddress)
	}
	logger.Info("Using static origin resolver (%d entries)", len(cfg.Static))
	return origin.NewStaticResolver(cfg.Static), nil
}

// buildBank 按配置创建付款银行
func buildBank(cfg config.PayoutConfig) (ledger.Bank, error) {
	if cfg.Mode == "chain" {
		logger.Info("Using on-chain payout bank (chain id: %d)", cfg.ChainId)
		return payout.NewEthBank(cfg.RpcUrl, cfg.PrivateKey, cfg.ChainId)
	}
	logger.Info("Using in-memory payout bank")
	return payout.NewMemoryBank(), nil
}
