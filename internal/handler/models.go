package handler

// 请求模型

// CreateCampaignRequest 创建活动请求
type CreateCampaignRequest struct {
	Creator      string `json:"creator" binding:"required"`
	Title        string `json:"title" binding:"required"`
	Description  string `json:"description"`
	ImageURL     string `json:"imageUrl"`
	GoalAmount   int64  `json:"goalAmount" binding:"required"`
	DurationDays int    `json:"durationDays" binding:"required"`
}

// ContributeRequest 出资请求
// 金额用指针区分"缺失"和"零"：零值金额要走账本的原因码，不能被绑定校验拦下
type ContributeRequest struct {
	Contributor string `json:"contributor" binding:"required"`
	Amount      *int64 `json:"amount" binding:"required"`
}

// WithdrawRequest 提取请求
type WithdrawRequest struct {
	Caller string `json:"caller" binding:"required"`
}

// RefundRequest 退款请求
type RefundRequest struct {
	Caller string `json:"caller" binding:"required"`
}

// UpdateFeeRequest 更新平台手续费请求
type UpdateFeeRequest struct {
	FeePercent *int64 `json:"feePercent" binding:"required"`
	Caller     string `json:"caller" binding:"required"`
}

// 响应模型

// EligibilityResponse 创建资格响应
type EligibilityResponse struct {
	Eligible      bool   `json:"eligible"`
	Reason        string `json:"reason,omitempty"`
	CampaignCount int    `json:"campaignCount"`
	// 距上次创建的秒数，从未创建过时为null
	TimeSinceLastSeconds *int64 `json:"timeSinceLastSeconds"`
}
