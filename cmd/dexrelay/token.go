package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"dexRelay/internal/config"
	"dexRelay/internal/model"
	"dexRelay/internal/trade"
)

type supplyOutput struct {
	Token     model.TokenDescriptor `json:"token"`
	Amount    string                `json:"amount"`
	Formatted string                `json:"formatted"`
}

func runToken(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadToken(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if cfg.Address == "" {
		return fmt.Errorf("address is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	provider, registry, err := openProvider(ctx, cfg.Common, cfg.ChainID, "", logger)
	if err != nil {
		return err
	}
	defer registry.Close()

	resolver := trade.NewResolver(provider, logger)
	token, err := resolver.Resolve(ctx, tokenQuery(cfg))
	if err != nil {
		return err
	}

	logger.Info("token resolved",
		zap.Uint64("chain_id", token.ChainID),
		zap.String("address", token.Address),
		zap.String("symbol", token.Symbol),
	)
	return printJSON(cmd.OutOrStdout(), token)
}

func runSupply(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadToken(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if cfg.Address == "" {
		return fmt.Errorf("address is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	provider, registry, err := openProvider(ctx, cfg.Common, cfg.ChainID, "", logger)
	if err != nil {
		return err
	}
	defer registry.Close()

	query := trade.NewSupplyQuery(trade.NewResolver(provider, logger), provider)
	supply, err := query.FetchTokenTotalSupply(ctx, tokenQuery(cfg))
	if err != nil {
		return err
	}

	return printJSON(cmd.OutOrStdout(), supplyOutput{
		Token:     supply.Token,
		Amount:    supply.Amount.String(),
		Formatted: formatTokenAmount(supply.Amount, supply.Token.Decimals),
	})
}

func tokenQuery(cfg config.TokenConfig) model.TokenQuery {
	return model.TokenQuery{
		ChainID: cfg.ChainID,
		Address: cfg.Address,
		Symbol:  cfg.Symbol,
		Name:    cfg.Name,
	}
}
