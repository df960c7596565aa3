package chain

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/payrollz/payrollz-backend/pkg/config"
)

// Receipt is the mined-transaction outcome the confirmation flow cares about.
// StatusSuccess means the transfer executed; StatusReverted means it was
// mined but failed.
type Receipt struct {
	TxHash string
	Status uint64
}

const (
	StatusReverted uint64 = 0
	StatusSuccess  uint64 = 1
)

// Gateway is the token-chain surface the payment flows depend on. A nil
// receipt with a nil error means the transaction is not mined yet.
type Gateway interface {
	Sender() string
	Decimals(ctx context.Context) (uint8, error)
	BalanceOf(ctx context.Context, owner string) (*big.Int, error)
	Transfer(ctx context.Context, to string, amount *big.Int) (string, error)
	TransactionReceipt(ctx context.Context, txHash string) (*Receipt, error)
}

// EthGateway talks to an ERC-20 token over JSON-RPC and signs transfers with
// a single configured sender key.
type EthGateway struct {
	client  *ethclient.Client
	token   common.Address
	chainID *big.Int
	key     *ecdsa.PrivateKey
	sender  common.Address
}

// NewEthGateway dials the configured RPC endpoint and prepares the signer.
func NewEthGateway(ctx context.Context, cfg config.ChainConfig) (*EthGateway, error) {
	if cfg.RPCURL == "" {
		return nil, fmt.Errorf("chain rpc url is required")
	}
	if !common.IsHexAddress(cfg.TokenAddress) {
		return nil, fmt.Errorf("invalid token address %q", cfg.TokenAddress)
	}

	key, err := crypto.HexToECDSA(trimHexPrefix(cfg.SenderPrivateKey))
	if err != nil {
		return nil, fmt.Errorf("parsing sender private key: %w", err)
	}

	client, err := ethclient.DialContext(ctx, cfg.RPCURL)
	if err != nil {
		return nil, fmt.Errorf("dialing rpc endpoint: %w", err)
	}

	return &EthGateway{
		client:  client,
		token:   common.HexToAddress(cfg.TokenAddress),
		chainID: big.NewInt(cfg.ChainID),
		key:     key,
		sender:  crypto.PubkeyToAddress(key.PublicKey),
	}, nil
}

// Sender returns the configured payer address.
func (g *EthGateway) Sender() string {
	return g.sender.Hex()
}

// Close releases the underlying RPC connection.
func (g *EthGateway) Close() {
	g.client.Close()
}

// Decimals reads the token's decimal scale.
func (g *EthGateway) Decimals(ctx context.Context) (uint8, error) {
	parsed, err := loadERC20ABI()
	if err != nil {
		return 0, err
	}
	data, err := parsed.Pack("decimals")
	if err != nil {
		return 0, fmt.Errorf("packing decimals call: %w", err)
	}
	out, err := g.client.CallContract(ctx, ethereum.CallMsg{To: &g.token, Data: data}, nil)
	if err != nil {
		return 0, fmt.Errorf("calling decimals: %w", err)
	}
	values, err := parsed.Unpack("decimals", out)
	if err != nil {
		return 0, fmt.Errorf("unpacking decimals: %w", err)
	}
	if len(values) != 1 {
		return 0, fmt.Errorf("unexpected decimals output arity %d", len(values))
	}
	dec, ok := values[0].(uint8)
	if !ok {
		return 0, fmt.Errorf("unexpected decimals output type %T", values[0])
	}
	return dec, nil
}

// BalanceOf reads the token balance held by owner.
func (g *EthGateway) BalanceOf(ctx context.Context, owner string) (*big.Int, error) {
	if !common.IsHexAddress(owner) {
		return nil, fmt.Errorf("invalid owner address %q", owner)
	}
	parsed, err := loadERC20ABI()
	if err != nil {
		return nil, err
	}
	data, err := parsed.Pack("balanceOf", common.HexToAddress(owner))
	if err != nil {
		return nil, fmt.Errorf("packing balanceOf call: %w", err)
	}
	out, err := g.client.CallContract(ctx, ethereum.CallMsg{To: &g.token, Data: data}, nil)
	if err != nil {
		return nil, fmt.Errorf("calling balanceOf: %w", err)
	}
	values, err := parsed.Unpack("balanceOf", out)
	if err != nil {
		return nil, fmt.Errorf("unpacking balanceOf: %w", err)
	}
	if len(values) != 1 {
		return nil, fmt.Errorf("unexpected balanceOf output arity %d", len(values))
	}
	balance, ok := values[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("unexpected balanceOf output type %T", values[0])
	}
	return balance, nil
}

// Transfer signs and submits an ERC-20 transfer, returning the transaction
// hash. It does not wait for the transaction to mine.
func (g *EthGateway) Transfer(ctx context.Context, to string, amount *big.Int) (string, error) {
	if !common.IsHexAddress(to) {
		return "", fmt.Errorf("invalid recipient address %q", to)
	}
	if amount == nil || amount.Sign() <= 0 {
		return "", fmt.Errorf("transfer amount must be positive")
	}

	parsed, err := loadERC20ABI()
	if err != nil {
		return "", err
	}
	data, err := parsed.Pack("transfer", common.HexToAddress(to), amount)
	if err != nil {
		return "", fmt.Errorf("packing transfer call: %w", err)
	}

	nonce, err := g.client.PendingNonceAt(ctx, g.sender)
	if err != nil {
		return "", fmt.Errorf("fetching nonce: %w", err)
	}
	gasPrice, err := g.client.SuggestGasPrice(ctx)
	if err != nil {
		return "", fmt.Errorf("suggesting gas price: %w", err)
	}
	gasLimit, err := g.client.EstimateGas(ctx, ethereum.CallMsg{
		From: g.sender,
		To:   &g.token,
		Data: data,
	})
	if err != nil {
		return "", fmt.Errorf("estimating gas: %w", err)
	}

	tx := types.NewTransaction(nonce, g.token, big.NewInt(0), gasLimit, gasPrice, data)
	signed, err := types.SignTx(tx, types.LatestSignerForChainID(g.chainID), g.key)
	if err != nil {
		return "", fmt.Errorf("signing transfer: %w", err)
	}
	if err := g.client.SendTransaction(ctx, signed); err != nil {
		return "", fmt.Errorf("sending transfer: %w", err)
	}
	return signed.Hash().Hex(), nil
}

// TransactionReceipt fetches the receipt for txHash. Returns (nil, nil) when
// the transaction has not mined yet.
func (g *EthGateway) TransactionReceipt(ctx context.Context, txHash string) (*Receipt, error) {
	receipt, err := g.client.TransactionReceipt(ctx, common.HexToHash(txHash))
	if err != nil {
		if errors.Is(err, ethereum.NotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("fetching receipt: %w", err)
	}
	return &Receipt{
		TxHash: receipt.TxHash.Hex(),
		Status: receipt.Status,
	}, nil
}

// IsValidAddress reports whether the string is a well-formed hex address.
func IsValidAddress(addr string) bool {
	return common.IsHexAddress(addr)
}

func trimHexPrefix(key string) string {
	if len(key) >= 2 && (key[:2] == "0x" || key[:2] == "0X") {
		return key[2:]
	}
	return key
}
