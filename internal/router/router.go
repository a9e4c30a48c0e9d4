package router

import (
	"github.com/blues/cfl/internal/handler"
	"github.com/blues/cfl/internal/ledger"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func Setup(registry *ledger.Registry, db *gorm.DB) *gin.Engine {
	r := gin.Default()

	// 中间件
	r.Use(gin.Logger())
	r.Use(gin.Recovery())
	r.Use(corsMiddleware())

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"service": "crowdfunding-ledger",
		})
	})

	// API版本组
	v1 := r.Group("/api/v1")
	{
		registryHandler := handler.NewRegistryHandler(registry)
		campaignHandler := handler.NewCampaignHandler(registry)
		recordHandler := handler.NewRecordHandler(db)

		// 活动相关路由
		campaigns := v1.Group("/campaigns")
		{
			campaigns.POST("", registryHandler.CreateCampaign)
			campaigns.GET("", registryHandler.GetCampaigns)
			campaigns.GET("/:id", campaignHandler.GetCampaign)
			campaigns.POST("/:id/contributions", campaignHandler.Contribute)
			campaigns.POST("/:id/withdraw", campaignHandler.Withdraw)
			campaigns.POST("/:id/refund", campaignHandler.ClaimRefund)
			campaigns.GET("/:id/contributors", campaignHandler.GetContributors)
			campaigns.GET("/:id/chains", campaignHandler.GetChainTotals)

			// 审计记录
			campaigns.GET("/:id/contribute-records", recordHandler.GetContributeRecords)
			campaigns.GET("/:id/refund-records", recordHandler.GetRefundRecords)
			campaigns.GET("/:id/settlement", recordHandler.GetSettlement)
			campaigns.GET("/:id/contribute-stats", recordHandler.GetContributeStats)
		}

		// 创建者节流资格
		creators := v1.Group("/creators")
		{
			creators.GET("/:address/eligibility", registryHandler.GetCreatorEligibility)
		}

		// 平台相关路由
		platform := v1.Group("/platform")
		{
			platform.GET("/fee", registryHandler.GetPlatformFee)
			platform.PUT("/fee", registryHandler.UpdatePlatformFee)
			platform.GET("/stats", recordHandler.GetPlatformStats)
			platform.GET("/fee-history", recordHandler.GetFeeChangeHistory)
		}
	}

	return r
}

// CORS中间件
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
