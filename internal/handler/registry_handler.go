package handler

import (
	"net/http"

	"github.com/blues/cfl/internal/ledger"
	"github.com/gin-gonic/gin"
)

// RegistryHandler 注册表接口
type RegistryHandler struct {
	registry *ledger.Registry
}

func NewRegistryHandler(registry *ledger.Registry) *RegistryHandler {
	return &RegistryHandler{registry: registry}
}

// CreateCampaign 创建活动
func (h *RegistryHandler) CreateCampaign(c *gin.Context) {
	var req CreateCampaignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	campaign, err := h.registry.CreateCampaign(ledger.CreateCampaignInput{
		Creator:      ledger.Address(req.Creator),
		Title:        req.Title,
		Description:  req.Description,
		ImageURL:     req.ImageURL,
		GoalAmount:   req.GoalAmount,
		DurationDays: req.DurationDays,
	})
	if err != nil {
		LedgerErrorResponse(c, err)
		return
	}

	SuccessResponse(c, http.StatusCreated, "活动创建成功", campaign.Detail())
}

// GetCampaigns 获取活动列表
// 查询参数 status=active 只返回进行中的活动，creator=<地址> 按创建者过滤
func (h *RegistryHandler) GetCampaigns(c *gin.Context) {
	var campaigns []*ledger.Campaign

	switch {
	case c.Query("creator") != "":
		campaigns = h.registry.CampaignsByCreator(ledger.Address(c.Query("creator")))
	case c.Query("status") == "active":
		campaigns = h.registry.ActiveCampaigns()
	default:
		campaigns = h.registry.AllCampaigns()
	}

	details := make([]ledger.CampaignDetail, 0, len(campaigns))
	for _, campaign := range campaigns {
		details = append(details, campaign.Detail())
	}

	SuccessResponse(c, http.StatusOK, "", gin.H{
		"campaigns": details,
		"total":     len(details),
	})
}

// GetCreatorEligibility 获取创建者的节流资格信息
func (h *RegistryHandler) GetCreatorEligibility(c *gin.Context) {
	creator := ledger.Address(c.Param("address"))

	eligible, reason := h.registry.CanCreateCampaign(creator)
	resp := EligibilityResponse{
		Eligible:      eligible,
		Reason:        reason,
		CampaignCount: h.registry.CreatorCampaignCount(creator),
	}
	if since, ok := h.registry.TimeSinceLastCreation(creator); ok {
		seconds := int64(since.Seconds())
		resp.TimeSinceLastSeconds = &seconds
	}

	SuccessResponse(c, http.StatusOK, "", resp)
}

// UpdatePlatformFee 更新平台手续费率
func (h *RegistryHandler) UpdatePlatformFee(c *gin.Context) {
	var req UpdateFeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.registry.UpdatePlatformFee(*req.FeePercent, ledger.Address(req.Caller)); err != nil {
		LedgerErrorResponse(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "手续费率更新成功", gin.H{
		"feePercent": h.registry.FeePercent(),
	})
}

// GetPlatformFee 查询当前平台手续费率
func (h *RegistryHandler) GetPlatformFee(c *gin.Context) {
	SuccessResponse(c, http.StatusOK, "", gin.H{
		"feePercent":   h.registry.FeePercent(),
		"feeRecipient": h.registry.FeeRecipient(),
	})
}
