package handler

import (
	"net/http"
	"strconv"

	"github.com/blues/cfl/internal/ledger"
	"github.com/gin-gonic/gin"
)

// CampaignHandler 单个活动的操作与读取接口
type CampaignHandler struct {
	registry *ledger.Registry
}

func NewCampaignHandler(registry *ledger.Registry) *CampaignHandler {
	return &CampaignHandler{registry: registry}
}

// findCampaign 解析路径参数并查找活动
func (h *CampaignHandler) findCampaign(c *gin.Context) (*ledger.Campaign, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "无效的活动ID")
		return nil, false
	}
	campaign, ok := h.registry.Campaign(id)
	if !ok {
		ErrorResponse(c, http.StatusNotFound, "活动不存在")
		return nil, false
	}
	return campaign, true
}

// GetCampaign 获取活动详情快照
func (h *CampaignHandler) GetCampaign(c *gin.Context) {
	campaign, ok := h.findCampaign(c)
	if !ok {
		return
	}
	SuccessResponse(c, http.StatusOK, "", campaign.Detail())
}

// Contribute 向活动出资
func (h *CampaignHandler) Contribute(c *gin.Context) {
	campaign, ok := h.findCampaign(c)
	if !ok {
		return
	}

	var req ContributeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	if err := campaign.Contribute(c.Request.Context(), ledger.Address(req.Contributor), *req.Amount); err != nil {
		LedgerErrorResponse(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "出资成功", gin.H{
		"totalRaised": campaign.TotalRaised(),
	})
}

// Withdraw 创建者提取募集资金
func (h *CampaignHandler) Withdraw(c *gin.Context) {
	campaign, ok := h.findCampaign(c)
	if !ok {
		return
	}

	var req WithdrawRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	if err := campaign.Withdraw(ledger.Address(req.Caller)); err != nil {
		LedgerErrorResponse(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "提取成功", nil)
}

// ClaimRefund 出资人申请退款
func (h *CampaignHandler) ClaimRefund(c *gin.Context) {
	campaign, ok := h.findCampaign(c)
	if !ok {
		return
	}

	var req RefundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	if err := campaign.ClaimRefund(ledger.Address(req.Caller)); err != nil {
		LedgerErrorResponse(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "退款成功", nil)
}

// GetContributors 获取出资人列表（首次出资顺序）
func (h *CampaignHandler) GetContributors(c *gin.Context) {
	campaign, ok := h.findCampaign(c)
	if !ok {
		return
	}

	contributors := campaign.Contributors()
	out := make([]gin.H, 0, len(contributors))
	for _, contributor := range contributors {
		label, _ := campaign.OriginOf(contributor)
		out = append(out, gin.H{
			"address":    contributor,
			"amount":     campaign.ContributionOf(contributor),
			"chainLabel": label,
		})
	}

	SuccessResponse(c, http.StatusOK, "", gin.H{
		"contributors": out,
		"total":        len(out),
	})
}

// GetChainTotals 获取按链归属的累计出资
func (h *CampaignHandler) GetChainTotals(c *gin.Context) {
	campaign, ok := h.findCampaign(c)
	if !ok {
		return
	}
	SuccessResponse(c, http.StatusOK, "", campaign.ChainTotals())
}
