// Package origin 提供跨链来源解析器实现
// 给定出资人身份，回答其从哪条外部链桥接而来（若有）
package origin

import (
	"context"
	"strings"
	"sync"

	"github.com/blues/cfl/internal/ledger"
)

// StaticEntry 静态来源配置项
type StaticEntry struct {
	Namespace string `mapstructure:"namespace" json:"namespace"`
	ChainID   string `mapstructure:"chain_id" json:"chain_id"`
}

// StaticResolver 基于配置表的来源解析器，开发模式和测试使用
type StaticResolver struct {
	mu      sync.RWMutex
	origins map[ledger.Address]ledger.Origin
}

// NewStaticResolver 创建静态解析器
func NewStaticResolver(entries map[string]StaticEntry) *StaticResolver {
	origins := make(map[ledger.Address]ledger.Origin, len(entries))
	for identity, entry := range entries {
		origins[ledger.Address(strings.ToLower(identity))] = ledger.Origin{
			Namespace: entry.Namespace,
			ChainID:   entry.ChainID,
		}
	}
	return &StaticResolver{origins: origins}
}

// Set 登记一个身份的来源
func (r *StaticResolver) Set(identity ledger.Address, o ledger.Origin) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.origins[ledger.Address(strings.ToLower(string(identity)))] = o
}

// Resolve 查询身份来源，未登记视为未跨链
func (r *StaticResolver) Resolve(_ context.Context, identity ledger.Address) (ledger.Origin, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	o, ok := r.origins[ledger.Address(strings.ToLower(string(identity)))]
	return o, ok, nil
}
