// Package payout 提供价值转移实现，提取和退款通过它向外付款
package payout

import (
	"fmt"
	"math"
	"sync"

	"github.com/blues/cfl/internal/ledger"
)

// MemoryBank 进程内记账银行，开发模式和测试使用
type MemoryBank struct {
	mu       sync.Mutex
	balances map[ledger.Address]int64
}

// NewMemoryBank 创建内存银行
func NewMemoryBank() *MemoryBank {
	return &MemoryBank{
		balances: make(map[ledger.Address]int64),
	}
}

// Transfer 向地址转账
func (b *MemoryBank) Transfer(to ledger.Address, amount int64) error {
	if amount < 0 {
		return fmt.Errorf("invalid transfer amount: %d", amount)
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.balances[to] > math.MaxInt64-amount {
		return ledger.ErrOverflow
	}
	b.balances[to] += amount
	return nil
}

// Balance 查询地址余额
func (b *MemoryBank) Balance(addr ledger.Address) int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.balances[addr]
}
