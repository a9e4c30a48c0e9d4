package ledger

import (
	"context"
	"time"
)

// Address 参与者身份（十六进制地址字符串）
type Address string

// NativeChainLabel 非跨链身份的固定归属标签
const NativeChainLabel = "native"

// Clock 时钟接口，核心状态全部由当前时间推导，测试时可注入假时钟
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now()
}

// SystemClock 系统时钟
func SystemClock() Clock {
	return systemClock{}
}

// Origin 跨链来源信息
type Origin struct {
	Namespace string `json:"namespace"`
	ChainID   string `json:"chain_id"`
}

// OriginResolver 跨链来源解析器
// 每个出资人首次出资时查询一次，查询必须无副作用；
// resolved为false表示身份未跨链（归属native），err非空表示解析器故障，整个出资操作失败
type OriginResolver interface {
	Resolve(ctx context.Context, identity Address) (origin Origin, resolved bool, err error)
}

// Bank 价值转移接口，提取和退款通过它向外付款
type Bank interface {
	Transfer(to Address, amount int64) error
}
