package handler

import (
	"net/http"
	"strconv"

	"github.com/blues/cfl/internal/logic"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// RecordHandler 审计记录查询接口
type RecordHandler struct {
	recordLogic   *logic.RecordLogic
	platformLogic *logic.PlatformLogic
}

func NewRecordHandler(db *gorm.DB) *RecordHandler {
	return &RecordHandler{
		recordLogic:   logic.NewRecordLogic(db),
		platformLogic: logic.NewPlatformLogic(db),
	}
}

// GetContributeRecords 获取活动出资审计记录
func (h *RecordHandler) GetContributeRecords(c *gin.Context) {
	campaignId, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "无效的活动ID")
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	records, total, err := h.recordLogic.GetCampaignContributeRecords(campaignId, page, pageSize)
	if err != nil {
		ErrorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}

	SuccessResponse(c, http.StatusOK, "", gin.H{
		"records":   records,
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	})
}

// GetRefundRecords 获取活动退款审计记录
func (h *RecordHandler) GetRefundRecords(c *gin.Context) {
	campaignId, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "无效的活动ID")
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	records, total, err := h.recordLogic.GetCampaignRefundRecords(campaignId, page, pageSize)
	if err != nil {
		ErrorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}

	SuccessResponse(c, http.StatusOK, "", gin.H{
		"records":   records,
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	})
}

// GetSettlement 获取活动结算审计记录
func (h *RecordHandler) GetSettlement(c *gin.Context) {
	campaignId, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "无效的活动ID")
		return
	}

	record, err := h.recordLogic.GetCampaignSettlement(campaignId)
	if err != nil {
		ErrorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}
	if record == nil {
		ErrorResponse(c, http.StatusNotFound, "结算记录不存在")
		return
	}

	SuccessResponse(c, http.StatusOK, "", record)
}

// GetContributeStats 获取活动出资统计信息
func (h *RecordHandler) GetContributeStats(c *gin.Context) {
	campaignId, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "无效的活动ID")
		return
	}

	stats, err := h.recordLogic.GetContributeStats(campaignId)
	if err != nil {
		ErrorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}
	SuccessResponse(c, http.StatusOK, "", stats)
}

// GetPlatformStats 获取平台统计信息
func (h *RecordHandler) GetPlatformStats(c *gin.Context) {
	stats, err := h.platformLogic.GetPlatformStats()
	if err != nil {
		ErrorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}
	SuccessResponse(c, http.StatusOK, "", stats)
}

// GetFeeChangeHistory 获取手续费变更历史
func (h *RecordHandler) GetFeeChangeHistory(c *gin.Context) {
	records, err := h.platformLogic.GetFeeChangeHistory()
	if err != nil {
		ErrorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}
	SuccessResponse(c, http.StatusOK, "", gin.H{"records": records})
}
