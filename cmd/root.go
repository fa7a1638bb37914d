package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Mohsinsiddi/w3reg/internal/config"
	"github.com/Mohsinsiddi/w3reg/internal/logging"
	"github.com/Mohsinsiddi/w3reg/internal/ui"
)

// Version is the current release. Overridable via build ldflags:
//
//	go build -ldflags "-X github.com/Mohsinsiddi/w3reg/cmd.Version=1.2.3" .
var Version = "0.1.0"

var (
	cfgDir     string
	envFile    string
	cfg        *config.Config
	log        *zap.SugaredLogger
	verbose    bool
	dryRun     bool
	assumeYes  bool
	walletFlag string
)

// errReported means the failure was already printed.
var errReported = errors.New("reported")

// rootCmd is the top-level command.
var rootCmd = &cobra.Command{
	Use:   "w3reg",
	Short: "Wallet session client for the registration token",
	Long: `w3reg connects a wallet and drives the registration token contract:
register, approve, transfer, burn, balanceOf and isRegistered.

Signing wallets live in ~/.w3reg (keys in the OS keychain). Use --dry-run
to exercise every command against an in-process wallet without a node.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "help" || cmd.Name() == "completion" {
			return nil
		}
		if err := config.LoadDotEnv(envFile); err != nil {
			return err
		}
		var err error
		cfg, err = config.Load(cfgDir)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		if verbose {
			cfg.LogLevel = "debug"
		}
		if err := cfg.Validate(); err != nil {
			return err
		}
		log, err = logging.New(cfg.LogLevel, cfg.LogJSON)
		if err != nil {
			return fmt.Errorf("building logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if log != nil {
			_ = log.Sync()
		}
	},
}

// Execute runs the root command.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintln(os.Stderr, ui.Err(err.Error()))
		}
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgDir, "config", "", "config directory (default: $W3REG_CONFIG_DIR or ~/.w3reg)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before the config")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	rootCmd.PersistentFlags().BoolVar(&dryRun, "dry-run", false, "use an in-process wallet instead of a node")
	rootCmd.PersistentFlags().BoolVarP(&assumeYes, "yes", "y", false, "approve wallet prompts without asking")
	rootCmd.PersistentFlags().StringVarP(&walletFlag, "wallet", "w", "", "wallet to act as (default: config default_wallet)")

	rootCmd.AddCommand(
		connectCmd,
		studioCmd,
		walletCmd,
		networkCmd,
		contractCmd,
		configCmd,
	)
	rootCmd.AddCommand(opCommands()...)
}
