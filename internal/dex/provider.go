package dex

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"go.uber.org/zap"

	"dexRelay/internal/model"
)

const (
	defaultTTL = 30 * time.Minute
	maxTTL     = 7 * 24 * time.Hour

	// Used when the swap cannot be estimated because its approval is still pending.
	fallbackSwapGasLimit = 300000
)

// Backend is the chain access needed to resolve tokens and submit swaps.
type Backend interface {
	Caller
	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)
	SuggestGasPrice(ctx context.Context) (*big.Int, error)
	EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error)
	SendTransaction(ctx context.Context, tx *types.Transaction) error
}

// Network binds a chain id to its backend and router.
type Network struct {
	ChainID     uint64
	Backend     Backend
	Router      common.Address
	AutoApprove bool
}

// ProviderConfig holds provider settings.
type ProviderConfig struct {
	Networks     []Network
	SignerKey    *ecdsa.PrivateKey
	MaxRetries   int
	RetryBackoff time.Duration
}

// Provider implements token lookup, supply queries and exact-input swaps on
// Uniswap V2 style routers.
type Provider struct {
	cfg      ProviderConfig
	networks map[uint64]Network
	logger   *zap.Logger
	now      func() time.Time
}

// NewProvider builds a Provider over the given networks.
func NewProvider(cfg ProviderConfig, logger *zap.Logger) (*Provider, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	networks := make(map[uint64]Network, len(cfg.Networks))
	for _, network := range cfg.Networks {
		if network.Backend == nil {
			return nil, fmt.Errorf("chain %d: backend is nil", network.ChainID)
		}
		if _, ok := networks[network.ChainID]; ok {
			return nil, fmt.Errorf("chain %d configured twice", network.ChainID)
		}
		networks[network.ChainID] = network
	}
	return &Provider{
		cfg:      cfg,
		networks: networks,
		logger:   logger,
		now:      time.Now,
	}, nil
}

// SignerAddress returns the account used to sign swaps, if any.
func (p *Provider) SignerAddress() (common.Address, bool) {
	if p.cfg.SignerKey == nil {
		return common.Address{}, false
	}
	return crypto.PubkeyToAddress(p.cfg.SignerKey.PublicKey), true
}

// FetchTokenData resolves a token. Hints are used only when the contract
// does not answer symbol or name.
func (p *Provider) FetchTokenData(ctx context.Context, query model.TokenQuery) (model.TokenDescriptor, error) {
	network, err := p.network(query.ChainID)
	if err != nil {
		return model.TokenDescriptor{}, err
	}
	token, err := parseAddress(query.Address)
	if err != nil {
		return model.TokenDescriptor{}, err
	}

	reader := p.reader(network.Backend)
	code, err := reader.CodeAt(ctx, token, nil)
	if err != nil {
		return model.TokenDescriptor{}, fmt.Errorf("code at %s: %w", token.Hex(), err)
	}
	if len(code) == 0 {
		return model.TokenDescriptor{}, fmt.Errorf("no contract code at %s", token.Hex())
	}

	meta, err := FetchTokenMeta(ctx, reader, query.ChainID, token, p.logger)
	if err != nil {
		return model.TokenDescriptor{}, fmt.Errorf("token %s: %w", token.Hex(), err)
	}
	if meta.Symbol == "" {
		meta.Symbol = query.Symbol
	}
	if meta.Name == "" {
		meta.Name = query.Name
	}
	return meta, nil
}

// FetchTotalSupply reads the token's total supply.
func (p *Provider) FetchTotalSupply(ctx context.Context, token model.TokenDescriptor) (model.TokenAmount, error) {
	network, err := p.network(token.ChainID)
	if err != nil {
		return model.TokenAmount{}, err
	}
	address, err := parseAddress(token.Address)
	if err != nil {
		return model.TokenAmount{}, err
	}

	supply, err := FetchTotalSupply(ctx, p.reader(network.Backend), address)
	if err != nil {
		return model.TokenAmount{}, fmt.Errorf("total supply of %s: %w", address.Hex(), err)
	}
	return model.TokenAmount{Token: token, Amount: supply}, nil
}

// Swap submits a single-hop exact-input swap and returns its hash. Sends are
// never retried.
func (p *Provider) Swap(ctx context.Context, req model.SwapRequest) (model.SwapResponse, error) {
	if req.TradeType != model.ExactInput {
		return model.SwapResponse{}, fmt.Errorf("unsupported trade type %s", req.TradeType)
	}
	if req.TokenIn.ChainID != req.TokenOut.ChainID {
		return model.SwapResponse{}, fmt.Errorf("cross-chain swap %d -> %d not supported", req.TokenIn.ChainID, req.TokenOut.ChainID)
	}
	if req.Amount == nil || req.Amount.Sign() <= 0 {
		return model.SwapResponse{}, errors.New("swap amount must be positive")
	}
	if p.cfg.SignerKey == nil {
		return model.SwapResponse{}, errors.New("no signer configured")
	}

	network, err := p.network(req.TokenIn.ChainID)
	if err != nil {
		return model.SwapResponse{}, err
	}
	if network.Router == (common.Address{}) {
		return model.SwapResponse{}, fmt.Errorf("chain %d has no router configured", network.ChainID)
	}
	tokenIn, err := parseAddress(req.TokenIn.Address)
	if err != nil {
		return model.SwapResponse{}, err
	}
	tokenOut, err := parseAddress(req.TokenOut.Address)
	if err != nil {
		return model.SwapResponse{}, err
	}

	from, _ := p.SignerAddress()
	recipient := from
	if r := strings.TrimSpace(req.TradeOptions.Recipient); r != "" {
		if recipient, err = parseAddress(r); err != nil {
			return model.SwapResponse{}, fmt.Errorf("recipient: %w", err)
		}
	}
	slippageBips, err := ParseSlippageBips(req.TradeOptions.AllowedSlippage)
	if err != nil {
		return model.SwapResponse{}, err
	}
	deadline := p.deadline(req.TradeOptions)

	reader := p.reader(network.Backend)
	path := []common.Address{tokenIn, tokenOut}
	amounts, err := QuoteAmountsOut(ctx, reader, network.Router, req.Amount, path)
	if err != nil {
		return model.SwapResponse{}, fmt.Errorf("quote: %w", err)
	}
	expectedOut := amounts[len(amounts)-1]
	amountOutMin := deductSlippage(expectedOut, slippageBips)

	nonce, err := p.nextNonce(ctx, network.Backend, from, req.TxOverrides)
	if err != nil {
		return model.SwapResponse{}, err
	}
	gasPrice, err := p.gasPrice(ctx, network.Backend, req.TxOverrides)
	if err != nil {
		return model.SwapResponse{}, err
	}

	approved, err := p.ensureAllowance(ctx, network, tokenIn, from, req.Amount, nonce, gasPrice)
	if err != nil {
		return model.SwapResponse{}, err
	}
	if approved {
		nonce++
	}

	data, err := PackSwapExactTokensForTokens(req.Amount, amountOutMin, path, recipient, deadline)
	if err != nil {
		return model.SwapResponse{}, err
	}

	var gasLimit uint64
	switch {
	case req.TxOverrides != nil && req.TxOverrides.GasLimit > 0:
		gasLimit = req.TxOverrides.GasLimit
	case approved:
		gasLimit = fallbackSwapGasLimit
	default:
		router := network.Router
		gasLimit, err = network.Backend.EstimateGas(ctx, ethereum.CallMsg{From: from, To: &router, GasPrice: gasPrice, Data: data})
		if err != nil {
			return model.SwapResponse{}, fmt.Errorf("estimate swap gas: %w", err)
		}
	}

	tx, err := p.signAndSend(ctx, network, &types.LegacyTx{
		Nonce:    nonce,
		GasPrice: gasPrice,
		Gas:      gasLimit,
		To:       &network.Router,
		Value:    big.NewInt(0),
		Data:     data,
	})
	if err != nil {
		return model.SwapResponse{}, fmt.Errorf("swap: %w", err)
	}

	p.logger.Info("swap submitted",
		zap.Uint64("chain_id", network.ChainID),
		zap.String("tx_hash", tx.Hash().Hex()),
		zap.String("token_in", tokenIn.Hex()),
		zap.String("token_out", tokenOut.Hex()),
		zap.String("amount_in", req.Amount.String()),
		zap.String("expected_out", expectedOut.String()),
		zap.String("amount_out_min", amountOutMin.String()),
		zap.Uint64("nonce", nonce),
	)

	return model.SwapResponse{Hash: tx.Hash().Hex()}, nil
}

// ensureAllowance sends an approve transaction with the given nonce when the
// router allowance is short and the network allows it. It reports whether a
// transaction was sent.
func (p *Provider) ensureAllowance(ctx context.Context, network Network, token, owner common.Address, amount *big.Int, nonce uint64, gasPrice *big.Int) (bool, error) {
	allowance, err := FetchAllowance(ctx, p.reader(network.Backend), token, owner, network.Router)
	if err != nil {
		return false, fmt.Errorf("allowance: %w", err)
	}
	if allowance.Cmp(amount) >= 0 {
		return false, nil
	}
	if !network.AutoApprove {
		return false, fmt.Errorf("insufficient allowance for router %s: have %s, need %s", network.Router.Hex(), allowance, amount)
	}

	erc20ABI, err := erc20ABIStringInstance()
	if err != nil {
		return false, fmt.Errorf("parse erc20 string abi: %w", err)
	}
	data, err := erc20ABI.Pack("approve", network.Router, amount)
	if err != nil {
		return false, fmt.Errorf("pack approve: %w", err)
	}
	gasLimit, err := network.Backend.EstimateGas(ctx, ethereum.CallMsg{From: owner, To: &token, GasPrice: gasPrice, Data: data})
	if err != nil {
		return false, fmt.Errorf("estimate approve gas: %w", err)
	}

	tx, err := p.signAndSend(ctx, network, &types.LegacyTx{
		Nonce:    nonce,
		GasPrice: gasPrice,
		Gas:      gasLimit,
		To:       &token,
		Value:    big.NewInt(0),
		Data:     data,
	})
	if err != nil {
		return false, fmt.Errorf("approve: %w", err)
	}

	p.logger.Info("approve submitted",
		zap.Uint64("chain_id", network.ChainID),
		zap.String("tx_hash", tx.Hash().Hex()),
		zap.String("token", token.Hex()),
		zap.String("spender", network.Router.Hex()),
		zap.String("amount", amount.String()),
	)
	return true, nil
}

func (p *Provider) signAndSend(ctx context.Context, network Network, txData *types.LegacyTx) (*types.Transaction, error) {
	signer := types.LatestSignerForChainID(new(big.Int).SetUint64(network.ChainID))
	tx, err := types.SignTx(types.NewTx(txData), signer, p.cfg.SignerKey)
	if err != nil {
		return nil, fmt.Errorf("sign transaction: %w", err)
	}
	if err := network.Backend.SendTransaction(ctx, tx); err != nil {
		return nil, fmt.Errorf("send transaction: %w", err)
	}
	return tx, nil
}

func (p *Provider) nextNonce(ctx context.Context, backend Backend, from common.Address, overrides *model.TxOverrides) (uint64, error) {
	if overrides != nil && overrides.Nonce != nil {
		return *overrides.Nonce, nil
	}
	var nonce uint64
	err := withRetry(ctx, p.cfg.MaxRetries, p.cfg.RetryBackoff, func(ctx context.Context) error {
		var err error
		nonce, err = backend.PendingNonceAt(ctx, from)
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("pending nonce: %w", err)
	}
	return nonce, nil
}

func (p *Provider) gasPrice(ctx context.Context, backend Backend, overrides *model.TxOverrides) (*big.Int, error) {
	if overrides != nil && overrides.GasPrice != nil {
		return new(big.Int).Set(overrides.GasPrice), nil
	}
	var price *big.Int
	err := withRetry(ctx, p.cfg.MaxRetries, p.cfg.RetryBackoff, func(ctx context.Context) error {
		var err error
		price, err = backend.SuggestGasPrice(ctx)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("suggest gas price: %w", err)
	}
	return price, nil
}

func (p *Provider) deadline(opts model.TradeOptions) *big.Int {
	if opts.Deadline > 0 {
		return new(big.Int).SetUint64(opts.Deadline)
	}
	ttl := defaultTTL
	if opts.TTL > 0 {
		ttl = maxTTL
		if opts.TTL < uint64(maxTTL/time.Second) {
			ttl = time.Duration(opts.TTL) * time.Second
		}
	}
	return big.NewInt(p.now().Add(ttl).Unix())
}

func (p *Provider) network(chainID uint64) (Network, error) {
	network, ok := p.networks[chainID]
	if !ok {
		return Network{}, fmt.Errorf("unsupported chain id %d", chainID)
	}
	return network, nil
}

func (p *Provider) reader(backend Backend) Caller {
	return &retryCaller{
		caller:     backend,
		maxRetries: p.cfg.MaxRetries,
		backoff:    p.cfg.RetryBackoff,
		logger:     p.logger,
	}
}

func parseAddress(input string) (common.Address, error) {
	input = strings.TrimSpace(input)
	if !common.IsHexAddress(input) {
		return common.Address{}, fmt.Errorf("invalid address: %s", input)
	}
	return common.HexToAddress(input), nil
}

// retryCaller retries transient read failures.
type retryCaller struct {
	caller     Caller
	maxRetries int
	backoff    time.Duration
	logger     *zap.Logger
}

func (r *retryCaller) CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error) {
	var out []byte
	err := withRetry(ctx, r.maxRetries, r.backoff, func(ctx context.Context) error {
		var err error
		out, err = r.caller.CallContract(ctx, msg, blockNumber)
		if err != nil && retryable(err) {
			r.logger.Warn("eth_call failed", zap.Stringer("to", msg.To), zap.Error(err))
		}
		return err
	})
	return out, err
}

func (r *retryCaller) CodeAt(ctx context.Context, account common.Address, blockNumber *big.Int) ([]byte, error) {
	var out []byte
	err := withRetry(ctx, r.maxRetries, r.backoff, func(ctx context.Context) error {
		var err error
		out, err = r.caller.CodeAt(ctx, account, blockNumber)
		if err != nil {
			r.logger.Warn("eth_getCode failed", zap.String("account", account.Hex()), zap.Error(err))
		}
		return err
	})
	return out, err
}
