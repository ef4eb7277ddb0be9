package main

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"

	"github.com/kelsos/fundme/internal/actions"
	"github.com/kelsos/fundme/internal/chain"
	"github.com/kelsos/fundme/internal/config"
	"github.com/kelsos/fundme/internal/contract"
	"github.com/kelsos/fundme/internal/logger"
	"github.com/kelsos/fundme/internal/stats"
	"github.com/kelsos/fundme/internal/tui"
	"github.com/kelsos/fundme/internal/units"
	"github.com/kelsos/fundme/internal/utils"
	"github.com/kelsos/fundme/internal/wallet"
)

type environment struct {
	cfg      *config.Config
	provider *wallet.Provider
	resolver *chain.Resolver
	gateway  *contract.Gateway
}

func (e *environment) handlers() *actions.Handlers {
	return actions.New(e.provider, e.resolver, e.gateway, actions.WithCurrencySymbol(e.resolver.Currency().Symbol))
}

func setup(cfg *config.Config) (*environment, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	parsed, err := contract.LoadABI(cfg.ABIPath)
	if err != nil {
		return nil, err
	}

	provider, err := wallet.NewProvider(cfg)
	if err != nil {
		return nil, err
	}

	resolver := chain.NewResolver(cfg)
	gateway := contract.NewGateway(common.HexToAddress(cfg.ContractAddress), parsed,
		contract.WithDecimals(resolver.Currency().Decimals))

	return &environment{
		cfg:      cfg,
		provider: provider,
		resolver: resolver,
		gateway:  gateway,
	}, nil
}

// ping fails fast when a configured provider does not answer
func (e *environment) ping(ctx context.Context) {
	if !e.provider.Available() {
		return
	}
	if err := e.provider.Ping(ctx); err != nil {
		logger.Fatal("Wallet provider is not reachable: %v", err)
	}
}

// report logs a headless outcome and exits non-zero on failure
func report(outcome actions.Outcome) {
	if !outcome.Success {
		logger.Fatal("%s (%v)", outcome.Text, outcome.Err)
	}

	logger.Info("%s", outcome.Text)
	if outcome.TxHash != (common.Hash{}) {
		logger.Info("Transaction hash: %s", outcome.TxHash.Hex())
	}
}

func main() {
	loaded := utils.LoadEnvironment()
	logger.Init()
	for _, path := range loaded {
		logger.Debug("Loaded environment from %s", path)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.NewConfig()
	cfg.LoadFromEnvironment()

	var env *environment
	var promptKey bool

	rootCmd := &cobra.Command{
		Use:   "fundme",
		Short: "A terminal front-end for a FundMe contract",
		Long:  `fundme connects to a wallet provider, funds a FundMe contract, reads its balance and lets the owner withdraw.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if promptKey {
				key, err := utils.PromptSecret("Private key: ")
				if err != nil {
					logger.Fatal("Failed to read private key: %v", err)
				}
				cfg.PrivateKey = key
			}

			var err error
			if env, err = setup(cfg); err != nil {
				logger.Fatal("Failed to initialize: %v", err)
			}
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			env.provider.Close()
		},
		Run: func(cmd *cobra.Command, args []string) {
			if !utils.IsInteractive() {
				logger.Fatal("The interactive client needs a terminal, use one of the subcommands instead")
			}

			logPath, err := logger.InitFileOnly(cfg.LogDir)
			if err != nil {
				logger.Fatal("Failed to initialize file logger: %v", err)
			}
			defer logger.Close()

			counters := stats.New()
			if cfg.DemoStats {
				counters = stats.NewDemo(rand.New(rand.NewSource(time.Now().UnixNano())))
			}

			if !env.provider.Available() {
				logger.Warn("No wallet provider configured, set FUNDME_WALLET_URL")
			}

			app := tui.NewApp(ctx, cfg, env.provider, env.resolver, env.gateway, counters)
			if err := app.Run(); err != nil {
				logger.Error("TUI exited with error: %v", err)
			}

			fmt.Printf("Logs written to %s\n", logPath)
		},
	}

	connectCmd := &cobra.Command{
		Use:   "connect",
		Short: "Request account access from the wallet provider",
		Run: func(cmd *cobra.Command, args []string) {
			env.ping(ctx)
			h := env.handlers()
			logger.Info("%s", h.PendingText(actions.ActionConnect, ""))
			outcome := h.Connect(ctx)
			report(outcome)
			logger.Info("Account: %s", outcome.Account.Hex())
		},
	}

	fundCmd := &cobra.Command{
		Use:   "fund <amount>",
		Short: "Fund the contract with an amount of native currency",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			h := env.handlers()
			if _, err := actions.ValidateAmount(args[0]); err == nil {
				logger.Info("%s", h.PendingText(actions.ActionFund, args[0]))
			}
			report(h.Fund(ctx, args[0]))
		},
	}

	balanceCmd := &cobra.Command{
		Use:   "balance",
		Short: "Show the contract balance",
		Run: func(cmd *cobra.Command, args []string) {
			h := env.handlers()
			logger.Info("%s", h.PendingText(actions.ActionBalance, ""))
			report(h.GetBalance(ctx))
		},
	}

	withdrawCmd := &cobra.Command{
		Use:   "withdraw",
		Short: "Withdraw the contract balance (owner only)",
		Run: func(cmd *cobra.Command, args []string) {
			h := env.handlers()
			logger.Info("%s", h.PendingText(actions.ActionWithdraw, ""))
			report(h.Withdraw(ctx))
		},
	}

	infoCmd := &cobra.Command{
		Use:   "info",
		Short: "Show the contract owner, balance and what the connected account funded",
		Run: func(cmd *cobra.Command, args []string) {
			env.ping(ctx)
			conn, err := env.provider.Detect(ctx)
			if err != nil {
				logger.Fatal("Failed to detect wallet provider: %v", err)
			}
			currency := env.resolver.Currency()

			logger.Info("Contract: %s", env.gateway.Address().Hex())

			if owner, err := env.gateway.ReadOwner(ctx, conn.Reader); err != nil {
				logger.Error("Failed to read owner: %v", err)
			} else {
				logger.Info("Owner: %s", owner.Hex())
			}

			if balance, err := env.gateway.ReadBalance(ctx, conn.Reader); err != nil {
				logger.Error("Failed to fetch balance: %v", err)
			} else {
				logger.Info("Balance: %s %s", balance, currency.Symbol)
			}

			account, err := wallet.PrimaryAccount(ctx, conn.Session)
			if err != nil {
				logger.Fatal("Failed to get account: %v", err)
			}
			funded, err := env.gateway.AmountFunded(ctx, conn.Reader, account)
			if err != nil {
				logger.Fatal("Failed to read funded amount: %v", err)
			}
			logger.Info("%s funded %s %s", account.Hex(), units.FormatUnits(funded, currency.Decimals), currency.Symbol)
		},
	}

	// Flags override values loaded from the environment
	rootCmd.PersistentFlags().StringVarP(&cfg.WalletURL, "wallet-url", "w", cfg.WalletURL, "Wallet provider JSON-RPC endpoint")
	rootCmd.PersistentFlags().StringVarP(&cfg.ContractAddress, "contract", "c", cfg.ContractAddress, "FundMe contract address")
	rootCmd.PersistentFlags().StringVarP(&cfg.ABIPath, "abi", "", cfg.ABIPath, "Path to a contract ABI JSON file (default: bundled FundMe ABI)")
	rootCmd.PersistentFlags().BoolVarP(&promptKey, "prompt-key", "k", false, "Read a signing private key from the terminal instead of FUNDME_PRIVATE_KEY")
	rootCmd.PersistentFlags().StringSliceVarP(&cfg.ChainRPCURLs, "chain-rpc", "", cfg.ChainRPCURLs, "RPC endpoints advertised in the network descriptor")
	rootCmd.Flags().DurationVarP(&cfg.StatusDelay, "status-delay", "d", cfg.StatusDelay, "How long status messages stay visible")
	rootCmd.Flags().BoolVarP(&cfg.DemoStats, "demo-stats", "", cfg.DemoStats, "Seed the stats panel with demo numbers")
	rootCmd.Flags().StringVarP(&cfg.LogDir, "log-dir", "", cfg.LogDir, "Directory for TUI log files")

	rootCmd.AddCommand(connectCmd)
	rootCmd.AddCommand(fundCmd)
	rootCmd.AddCommand(balanceCmd)
	rootCmd.AddCommand(withdrawCmd)
	rootCmd.AddCommand(infoCmd)

	if err := rootCmd.Execute(); err != nil {
		logger.Fatal("Failed to execute command: %v", err)
	}
}
