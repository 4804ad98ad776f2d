package dex

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

type fakeERC20 struct {
	decimals    uint8
	symbol      string
	name        string
	bytes32Text bool
	noText      bool
	noDecimals  bool
	supply      *big.Int
	allowance   *big.Int
}

// fakeBackend answers eth_call by decoding calldata against the real ABIs.
type fakeBackend struct {
	mu         sync.Mutex
	tokens     map[common.Address]*fakeERC20
	router     common.Address
	amountsOut func(amountIn *big.Int, path []common.Address) []*big.Int
	transient  int
	callCount  int
	nonce      uint64
	gasPrice   *big.Int
	estimates  []ethereum.CallMsg
	sent       []*types.Transaction
	sendErr    error
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		tokens:   make(map[common.Address]*fakeERC20),
		router:   common.HexToAddress("0x7a250d5630B4cF539739dF2C5dAcb4c659F2488D"),
		gasPrice: big.NewInt(5_000_000_000),
		nonce:    7,
		amountsOut: func(amountIn *big.Int, path []common.Address) []*big.Int {
			return []*big.Int{amountIn, new(big.Int).Mul(amountIn, big.NewInt(2))}
		},
	}
}

func (b *fakeBackend) CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.callCount++
	if b.transient > 0 {
		b.transient--
		return nil, errors.New("connection reset by peer")
	}
	if msg.To == nil || len(msg.Data) < 4 {
		return nil, errors.New("bad call")
	}
	if *msg.To == b.router {
		return b.callRouter(msg.Data)
	}
	token, ok := b.tokens[*msg.To]
	if !ok {
		return nil, nil
	}
	return b.callToken(token, msg.Data)
}

func (b *fakeBackend) callRouter(data []byte) ([]byte, error) {
	routerABI, err := V2RouterABI()
	if err != nil {
		return nil, err
	}
	method, err := routerABI.MethodById(data[:4])
	if err != nil {
		return nil, err
	}
	args, err := method.Inputs.Unpack(data[4:])
	if err != nil {
		return nil, err
	}
	switch method.Name {
	case "getAmountsOut":
		return method.Outputs.Pack(b.amountsOut(args[0].(*big.Int), args[1].([]common.Address)))
	default:
		return nil, fmt.Errorf("unexpected router call %s", method.Name)
	}
}

func (b *fakeBackend) callToken(token *fakeERC20, data []byte) ([]byte, error) {
	stringABI, err := erc20ABIStringInstance()
	if err != nil {
		return nil, err
	}
	bytes32ABI, err := erc20ABIBytes32Instance()
	if err != nil {
		return nil, err
	}
	method, err := stringABI.MethodById(data[:4])
	if err != nil {
		return nil, errors.New("execution reverted")
	}

	switch method.Name {
	case "decimals":
		if token.noDecimals {
			return nil, errors.New("execution reverted")
		}
		return method.Outputs.Pack(token.decimals)
	case "symbol", "name":
		if token.noText {
			return nil, errors.New("execution reverted")
		}
		text := token.symbol
		if method.Name == "name" {
			text = token.name
		}
		if token.bytes32Text {
			return packBytes32(bytes32ABI, method.Name, text)
		}
		return method.Outputs.Pack(text)
	case "totalSupply":
		return method.Outputs.Pack(token.supply)
	case "allowance":
		allowance := token.allowance
		if allowance == nil {
			allowance = big.NewInt(0)
		}
		return method.Outputs.Pack(allowance)
	default:
		return nil, errors.New("execution reverted")
	}
}

func packBytes32(parsed abi.ABI, method, text string) ([]byte, error) {
	var word [32]byte
	copy(word[:], text)
	return parsed.Methods[method].Outputs.Pack(word)
}

func (b *fakeBackend) CodeAt(ctx context.Context, account common.Address, blockNumber *big.Int) ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.tokens[account]; ok || account == b.router {
		return []byte{0x60, 0x80}, nil
	}
	return nil, nil
}

func (b *fakeBackend) PendingNonceAt(ctx context.Context, account common.Address) (uint64, error) {
	return b.nonce, nil
}

func (b *fakeBackend) SuggestGasPrice(ctx context.Context) (*big.Int, error) {
	return new(big.Int).Set(b.gasPrice), nil
}

func (b *fakeBackend) EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.estimates = append(b.estimates, msg)
	return 120000, nil
}

func (b *fakeBackend) SendTransaction(ctx context.Context, tx *types.Transaction) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.sendErr != nil {
		return b.sendErr
	}
	b.sent = append(b.sent, tx)
	return nil
}
