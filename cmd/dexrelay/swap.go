package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"dexRelay/internal/config"
	"dexRelay/internal/model"
	"dexRelay/internal/storage"
	"dexRelay/internal/storage/postgres"
	"dexRelay/internal/trade"
)

func runSwap(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadSwap(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if cfg.TokenIn == "" || cfg.TokenOut == "" {
		return fmt.Errorf("token-in and token-out are required")
	}
	if cfg.Amount == "" {
		return fmt.Errorf("amount is required")
	}
	if cfg.PrivateKey == "" {
		return fmt.Errorf("private key is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	journals, closeJournals, err := openJournals(ctx, cfg.Journal, cfg.PGDSN)
	if err != nil {
		return err
	}
	defer closeJournals()

	provider, registry, err := openProvider(ctx, cfg.Common, cfg.ChainID, cfg.PrivateKey, logger)
	if err != nil {
		return err
	}
	defer registry.Close()

	signer, _ := provider.SignerAddress()
	logger.Info("swap start",
		zap.Uint64("chain_id", cfg.ChainID),
		zap.String("signer", signer.Hex()),
		zap.String("token_in", cfg.TokenIn),
		zap.String("token_out", cfg.TokenOut),
		zap.String("amount", cfg.Amount),
		zap.String("slippage", cfg.Slippage),
		zap.String("journal", cfg.Journal),
		zap.String("pg_dsn", redactDSN(cfg.PGDSN)),
	)

	opts := model.TradeOptions{
		AllowedSlippage: cfg.Slippage,
		Recipient:       cfg.Recipient,
		Deadline:        cfg.Deadline,
		TTL:             uint64(cfg.TTL / time.Second),
	}
	swapper := trade.NewSwapper(trade.NewResolver(provider, logger), provider, logger)
	out, err := swapper.SimpleSwap(ctx, trade.SimpleSwapInput{
		ChainID:         cfg.ChainID,
		TokenInAddress:  cfg.TokenIn,
		TokenOutAddress: cfg.TokenOut,
		TokenInAmount:   cfg.Amount,
		TradeOptions:    opts,
	})
	if err != nil {
		return err
	}

	record := model.SwapRecord{
		ID:              uuid.NewString(),
		ChainID:         cfg.ChainID,
		TokenIn:         cfg.TokenIn,
		TokenOut:        cfg.TokenOut,
		AmountIn:        cfg.Amount,
		AllowedSlippage: opts.AllowedSlippage,
		Recipient:       opts.Recipient,
		TxHash:          out.TxHash,
		SubmittedAt:     time.Now().UTC().Format(time.RFC3339Nano),
	}
	// The transaction is already broadcast; a journal failure must not hide its hash.
	for _, journal := range journals {
		if err := journal.PutSwap(ctx, record); err != nil {
			logger.Error("journal swap failed", zap.String("tx_hash", out.TxHash), zap.Error(err))
		}
	}

	return printJSON(cmd.OutOrStdout(), out)
}

func runHistory(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadHistory(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if cfg.Journal == "" && cfg.PGDSN == "" {
		return fmt.Errorf("journal or pg dsn is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var records []model.SwapRecord
	if cfg.PGDSN != "" {
		store, err := postgres.NewStore(ctx, cfg.PGDSN)
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		defer store.Close()

		records, err = store.ListSwaps(ctx, cfg.ChainID, cfg.Limit)
		if err != nil {
			return fmt.Errorf("list swaps: %w", err)
		}
	} else {
		all, err := storage.ReadJsonlJournal(cfg.Journal)
		if err != nil {
			return err
		}
		records = latestSwaps(all, cfg.ChainID, cfg.Limit)
	}

	logger.Debug("history loaded", zap.Int("records", len(records)), zap.String("pg_dsn", redactDSN(cfg.PGDSN)))
	if records == nil {
		records = []model.SwapRecord{}
	}
	return printJSON(cmd.OutOrStdout(), records)
}

// openJournals opens every configured journal. The returned func closes them.
func openJournals(ctx context.Context, path, dsn string) ([]storage.Journal, func(), error) {
	var journals []storage.Journal
	closeFn := func() {}
	if path != "" {
		journals = append(journals, storage.NewJsonlJournal(path))
	}
	if dsn != "" {
		store, err := postgres.NewStore(ctx, dsn)
		if err != nil {
			return nil, nil, fmt.Errorf("connect postgres: %w", err)
		}
		if err := store.EnsureSchema(ctx); err != nil {
			store.Close()
			return nil, nil, err
		}
		journals = append(journals, store)
		closeFn = store.Close
	}
	return journals, closeFn, nil
}

// latestSwaps filters records by chain (0 means all) and returns up to limit
// of them, newest first.
func latestSwaps(records []model.SwapRecord, chainID uint64, limit int) []model.SwapRecord {
	var out []model.SwapRecord
	for i := len(records) - 1; i >= 0; i-- {
		if chainID != 0 && records[i].ChainID != chainID {
			continue
		}
		out = append(out, records[i])
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}
