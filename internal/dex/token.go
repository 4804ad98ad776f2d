package dex

import (
	"bytes"
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"dexRelay/internal/model"
)

// Caller is the read-only chain access needed for token lookups.
type Caller interface {
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
	CodeAt(ctx context.Context, account common.Address, blockNumber *big.Int) ([]byte, error)
}

// FetchTokenMeta loads token metadata via ERC20 calls. decimals is required;
// symbol and name fall back to bytes32 encodings and are left empty when
// neither form answers.
func FetchTokenMeta(ctx context.Context, caller Caller, chainID uint64, token common.Address, logger *zap.Logger) (model.TokenDescriptor, error) {
	meta := model.TokenDescriptor{ChainID: chainID, Address: token.Hex()}
	if caller == nil {
		return meta, fmt.Errorf("chain caller is nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	stringABI, err := erc20ABIStringInstance()
	if err != nil {
		return meta, fmt.Errorf("parse erc20 string abi: %w", err)
	}
	bytes32ABI, err := erc20ABIBytes32Instance()
	if err != nil {
		return meta, fmt.Errorf("parse erc20 bytes32 abi: %w", err)
	}

	values, err := callMethod(ctx, caller, token, stringABI, "decimals")
	if err != nil {
		return meta, err
	}
	decimals, err := asUint8(values[0])
	if err != nil {
		return meta, err
	}
	meta.Decimals = decimals

	meta.Symbol = readText(ctx, caller, token, stringABI, bytes32ABI, "symbol", logger)
	meta.Name = readText(ctx, caller, token, stringABI, bytes32ABI, "name", logger)

	return meta, nil
}

// FetchTotalSupply reads ERC20 totalSupply.
func FetchTotalSupply(ctx context.Context, caller Caller, token common.Address) (*big.Int, error) {
	stringABI, err := erc20ABIStringInstance()
	if err != nil {
		return nil, fmt.Errorf("parse erc20 string abi: %w", err)
	}
	values, err := callMethod(ctx, caller, token, stringABI, "totalSupply")
	if err != nil {
		return nil, err
	}
	return asBigInt(values[0])
}

// FetchAllowance reads ERC20 allowance(owner, spender).
func FetchAllowance(ctx context.Context, caller Caller, token, owner, spender common.Address) (*big.Int, error) {
	stringABI, err := erc20ABIStringInstance()
	if err != nil {
		return nil, fmt.Errorf("parse erc20 string abi: %w", err)
	}
	values, err := callMethod(ctx, caller, token, stringABI, "allowance", owner, spender)
	if err != nil {
		return nil, err
	}
	return asBigInt(values[0])
}

func readText(ctx context.Context, caller Caller, token common.Address, stringABI, bytes32ABI abi.ABI, method string, logger *zap.Logger) string {
	if values, err := callMethod(ctx, caller, token, stringABI, method); err == nil {
		if text, ok := values[0].(string); ok {
			return text
		}
	}
	values, err := callMethod(ctx, caller, token, bytes32ABI, method)
	if err == nil {
		if text, ok := bytes32ToString(values[0]); ok {
			return text
		}
	}
	logger.Debug(method+" call failed", zap.String("token", token.Hex()), zap.Error(err))
	return ""
}

func callMethod(ctx context.Context, caller Caller, to common.Address, parsed abi.ABI, method string, args ...interface{}) ([]interface{}, error) {
	data, err := parsed.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("pack %s: %w", method, err)
	}
	msg := ethereum.CallMsg{To: &to, Data: data}
	resp, err := caller.CallContract(ctx, msg, nil)
	if err != nil {
		return nil, fmt.Errorf("call %s: %w", method, err)
	}
	values, err := parsed.Unpack(method, resp)
	if err != nil {
		return nil, fmt.Errorf("unpack %s: %w", method, err)
	}
	if len(values) == 0 {
		return nil, fmt.Errorf("%s returned no values", method)
	}
	return values, nil
}

func bytes32ToString(value interface{}) (string, bool) {
	switch v := value.(type) {
	case [32]byte:
		return string(bytes.TrimRight(v[:], "\x00")), true
	case []byte:
		return string(bytes.TrimRight(v, "\x00")), true
	default:
		return "", false
	}
}

func asBigInt(value interface{}) (*big.Int, error) {
	switch v := value.(type) {
	case *big.Int:
		return new(big.Int).Set(v), nil
	case big.Int:
		return new(big.Int).Set(&v), nil
	case uint8:
		return new(big.Int).SetUint64(uint64(v)), nil
	case uint16:
		return new(big.Int).SetUint64(uint64(v)), nil
	case uint32:
		return new(big.Int).SetUint64(uint64(v)), nil
	case uint64:
		return new(big.Int).SetUint64(v), nil
	default:
		return nil, fmt.Errorf("unsupported int type %T", value)
	}
}

func asUint8(value interface{}) (uint8, error) {
	switch v := value.(type) {
	case uint8:
		return v, nil
	case uint16:
		return uint8(v), nil
	case uint32:
		return uint8(v), nil
	case uint64:
		return uint8(v), nil
	case *big.Int:
		return uint8(v.Uint64()), nil
	default:
		return 0, fmt.Errorf("unsupported uint8 type %T", value)
	}
}
