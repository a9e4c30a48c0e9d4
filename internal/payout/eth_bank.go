package payout

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"strings"

	"github.com/blues/cfl/internal/ledger"
	"github.com/blues/cfl/internal/logger"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
)

// EthBank 链上付款银行，用托管账户私钥签名原生代币转账
type EthBank struct {
	client     *ethclient.Client
	privateKey *ecdsa.PrivateKey
	fromAddr   common.Address
	chainID    *big.Int
}

// NewEthBank 创建链上银行
func NewEthBank(rpcURL, privateKeyHex string, chainID int64) (*EthBank, error) {
	client, err := ethclient.Dial(rpcURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to chain client: %w", err)
	}

	privateKey, err := crypto.HexToECDSA(strings.TrimPrefix(privateKeyHex, "0x"))
	if err != nil {
		return nil, fmt.Errorf("failed to parse private key: %w", err)
	}

	publicKey, ok := privateKey.Public().(*ecdsa.PublicKey)
	if !ok {
		return nil, fmt.Errorf("failed to derive public key")
	}

	return &EthBank{
		client:     client,
		privateKey: privateKey,
		fromAddr:   crypto.PubkeyToAddress(*publicKey),
		chainID:    big.NewInt(chainID),
	}, nil
}

// Transfer 向地址发起原生代币转账
func (b *EthBank) Transfer(to ledger.Address, amount int64) error {
	if amount < 0 {
		return fmt.Errorf("invalid transfer amount: %d", amount)
	}
	if amount == 0 {
		return nil
	}

	ctx := context.Background()

	nonce, err := b.client.PendingNonceAt(ctx, b.fromAddr)
	if err != nil {
		return fmt.Errorf("failed to get nonce: %w", err)
	}

	gasPrice, err := b.client.SuggestGasPrice(ctx)
	if err != nil {
		return fmt.Errorf("failed to get gas price: %w", err)
	}

	toAddr := common.HexToAddress(string(to))
	tx := types.NewTransaction(nonce, toAddr, big.NewInt(amount), 21000, gasPrice, nil)

	signedTx, err := types.SignTx(tx, types.NewEIP155Signer(b.chainID), b.privateKey)
	if err != nil {
		return fmt.Errorf("failed to sign transaction: %w", err)
	}

	if err := b.client.SendTransaction(ctx, signedTx); err != nil {
		return fmt.Errorf("failed to send transaction: %w", err)
	}

	logger.Info("Sent payout transaction %s: %d to %s", signedTx.Hash().Hex(), amount, to)
	return nil
}

// Close 关闭链客户端连接
func (b *EthBank) Close() {
	b.client.Close()
}
