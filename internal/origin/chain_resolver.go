package origin

import (
	"context"
	"fmt"
	"strings"

	"github.com/blues/cfl/internal/ledger"
	ethereum "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
)

// 桥接注册合约ABI定义（简化版）
const bridgeRegistryABI = `[
	{
		"inputs": [
			{"name": "account", "type": "address"}
		],
		"name": "originOf",
		"outputs": [
			{"name": "namespace", "type": "string"},
			{"name": "chainId", "type": "string"},
			{"name": "bridged", "type": "bool"}
		],
		"stateMutability": "view",
		"type": "function"
	}
]`

// ChainResolver 链上来源解析器
// 通过只读合约调用查询桥接注册表，调用无副作用
type ChainResolver struct {
	client       *ethclient.Client
	contractAddr common.Address
	contractABI  abi.ABI
}

// NewChainResolver 创建链上解析器
func NewChainResolver(rpcURL, contractAddr string) (*ChainResolver, error) {
	if rpcURL == "" {
		return nil, fmt.Errorf("no RPC URL configured")
	}

	client, err := ethclient.Dial(rpcURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to chain client: %w", err)
	}

	parsedABI, err := abi.JSON(strings.NewReader(bridgeRegistryABI))
	if err != nil {
		return nil, fmt.Errorf("failed to parse bridge registry ABI: %w", err)
	}

	return &ChainResolver{
		client:       client,
		contractAddr: common.HexToAddress(contractAddr),
		contractABI:  parsedABI,
	}, nil
}

// Resolve 查询身份的桥接来源
func (r *ChainResolver) Resolve(ctx context.Context, identity ledger.Address) (ledger.Origin, bool, error) {
	data, err := r.contractABI.Pack("originOf", common.HexToAddress(string(identity)))
	if err != nil {
		return ledger.Origin{}, false, fmt.Errorf("failed to pack originOf call: %w", err)
	}

	out, err := r.client.CallContract(ctx, ethereum.CallMsg{
		To:   &r.contractAddr,
		Data: data,
	}, nil)
	if err != nil {
		return ledger.Origin{}, false, fmt.Errorf("failed to call bridge registry: %w", err)
	}

	values, err := r.contractABI.Unpack("originOf", out)
	if err != nil {
		return ledger.Origin{}, false, fmt.Errorf("failed to unpack originOf result: %w", err)
	}
	if len(values) != 3 {
		return ledger.Origin{}, false, fmt.Errorf("unexpected originOf result length: %d", len(values))
	}

	namespace, _ := values[0].(string)
	chainID, _ := values[1].(string)
	bridged, _ := values[2].(bool)

	if !bridged {
		return ledger.Origin{}, false, nil
	}
	return ledger.Origin{Namespace: namespace, ChainID: chainID}, true, nil
}

// Close 关闭链客户端连接
func (r *ChainResolver) Close() {
	r.client.Close()
}
