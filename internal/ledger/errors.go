package ledger

// Error 账本错误，携带稳定的原因码
// 原因码是对外接口的一部分，调用方依赖它做错误映射
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *Error) Error() string {
	return e.Message
}

// 准入错误（创建活动前由注册表抛出）
var (
	ErrInvalidGoal         = &Error{Code: "InvalidGoal", Message: "目标金额必须大于0"}
	ErrInvalidTitle        = &Error{Code: "InvalidTitle", Message: "标题长度必须在1-100之间"}
	ErrInvalidDuration     = &Error{Code: "InvalidDuration", Message: "众筹时长必须在7-90天之间"}
	ErrCreatorLimitReached = &Error{Code: "CreatorLimitReached", Message: "创建者活动数量已达上限"}
	ErrCooldownActive      = &Error{Code: "CooldownActive", Message: "创建冷却期未结束"}
)

// 生命周期错误（活动状态转换守卫）
var (
	ErrNotActive               = &Error{Code: "NotActive", Message: "活动不在进行中"}
	ErrStillActive             = &Error{Code: "StillActive", Message: "活动尚未结束"}
	ErrCreatorSelfContribution = &Error{Code: "CreatorSelfContribution", Message: "创建者不能为自己的活动出资"}
	ErrZeroAmount              = &Error{Code: "ZeroAmount", Message: "出资金额必须大于0"}
)

// 结算错误（一次性支付守卫）
var (
	ErrGoalNotReached   = &Error{Code: "GoalNotReached", Message: "未达到目标金额"}
	ErrAlreadyWithdrawn = &Error{Code: "AlreadyWithdrawn", Message: "资金已提取"}
	ErrGoalWasReached   = &Error{Code: "GoalWasReached", Message: "活动已成功，不可退款"}
	ErrNoContribution   = &Error{Code: "NoContribution", Message: "没有可退款的出资"}
)

// 授权错误
var (
	ErrUnauthorized = &Error{Code: "Unauthorized", Message: "无权执行此操作"}
	ErrFeeTooHigh   = &Error{Code: "FeeTooHigh", Message: "手续费率不能超过500个基点"}
)

// ErrOverflow 金额累加溢出，操作必须中止，绝不静默回绕
var ErrOverflow = &Error{Code: "Overflow", Message: "金额运算溢出"}
