package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	// .env is optional; it usually carries DEXRELAY_PRIVATE_KEY.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "load .env: %v\n", err)
		os.Exit(1)
	}

	root := &cobra.Command{
		Use:          "dexrelay",
		Short:        "Token lookup and exact-input swaps on Uniswap V2 style routers",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")

	tokenCmd := &cobra.Command{
		Use:   "token",
		Short: "Resolve token metadata",
		RunE:  runToken,
	}
	addTokenFlags(tokenCmd)
	root.AddCommand(tokenCmd)

	supplyCmd := &cobra.Command{
		Use:   "supply",
		Short: "Resolve a token and read its total supply",
		RunE:  runSupply,
	}
	addTokenFlags(supplyCmd)
	root.AddCommand(supplyCmd)

	swapCmd := &cobra.Command{
		Use:   "swap",
		Short: "Submit a single-hop exact-input swap",
		RunE:  runSwap,
	}
	addCommonFlags(swapCmd)
	swapCmd.Flags().Uint64("chain-id", 0, "chain id")
	swapCmd.Flags().String("token-in", "", "input token address")
	swapCmd.Flags().String("token-out", "", "output token address")
	swapCmd.Flags().String("amount", "", "input amount in base units")
	swapCmd.Flags().String("private-key", "", "hex private key of the signer (prefer DEXRELAY_PRIVATE_KEY)")
	swapCmd.Flags().String("slippage", "0.5", "allowed slippage in percent")
	swapCmd.Flags().String("recipient", "", "recipient address (default: signer)")
	swapCmd.Flags().String("deadline", "", "swap deadline (unix seconds or RFC3339)")
	swapCmd.Flags().Duration("ttl", 30*time.Minute, "deadline offset when --deadline is not set")
	swapCmd.Flags().String("journal", "", "optional JSONL journal path")
	swapCmd.Flags().String("pg-dsn", "", "optional Postgres DSN for the swap journal")
	root.AddCommand(swapCmd)

	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "List journaled swaps",
		RunE:  runHistory,
	}
	historyCmd.Flags().Uint64("chain-id", 0, "chain id (0 lists all chains)")
	historyCmd.Flags().Int("limit", 20, "maximum number of swaps")
	historyCmd.Flags().String("journal", "", "JSONL journal path")
	historyCmd.Flags().String("pg-dsn", "", "Postgres DSN")
	historyCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")
	root.AddCommand(historyCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func addCommonFlags(cmd *cobra.Command) {
	cmd.Flags().String("networks", "./networks.yaml", "networks definition file")
	cmd.Flags().Int("max-retries", 3, "maximum retry attempts for read calls")
	cmd.Flags().Duration("retry-backoff", 500*time.Millisecond, "initial retry backoff")
	cmd.Flags().Duration("timeout", 60*time.Second, "overall command timeout")
	cmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")
}

func addTokenFlags(cmd *cobra.Command) {
	addCommonFlags(cmd)
	cmd.Flags().Uint64("chain-id", 0, "chain id")
	cmd.Flags().String("address", "", "token contract address")
	cmd.Flags().String("symbol", "", "symbol hint used when the contract has none")
	cmd.Flags().String("name", "", "name hint used when the contract has none")
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}
