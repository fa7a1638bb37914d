package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/99designs/keyring"
	"github.com/spf13/cobra"

	"github.com/Mohsinsiddi/w3reg/internal/token"
	"github.com/Mohsinsiddi/w3reg/internal/ui"
	"github.com/Mohsinsiddi/w3reg/internal/wallet"
)

// keyringPasswordEnv unlocks the encrypted-file keyring without a prompt.
const keyringPasswordEnv = "W3REG_KEYRING_PASSWORD"

var walletKeyFlag string

var walletCmd = &cobra.Command{
	Use:   "wallet",
	Short: "Manage the accounts the local wallet offers",
}

var walletAddCmd = &cobra.Command{
	Use:   "add <name> [address]",
	Short: "Add a signing wallet (--key) or a watch-only address",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		mgr, err := newWalletManager()
		if err != nil {
			return err
		}

		if walletKeyFlag != "" {
			w, err := mgr.AddWithKey(name, walletKeyFlag)
			if err != nil {
				return err
			}
			fmt.Println(ui.Success(fmt.Sprintf("Signing wallet %q added: %s", name, ui.Addr(w.Address))))
			if w.IsDefault {
				fmt.Println(ui.Hint("It is your only wallet, so it is the default."))
			}
			return nil
		}

		if len(args) < 2 {
			return errors.New("address required for a watch-only wallet\n  Usage: w3reg wallet add <name> <address>\n  Or for signing: w3reg wallet add <name> --key <private-key>")
		}
		addr, err := token.ParseAddress(args[1])
		if err != nil {
			return err
		}
		if err := mgr.Add(name, &wallet.Wallet{Address: addr.Checksum(), Type: wallet.TypeWatchOnly}); err != nil {
			return err
		}
		fmt.Println(ui.Success(fmt.Sprintf("Watch-only wallet %q added: %s", name, ui.Addr(addr.Checksum()))))
		fmt.Println(ui.Hint("Watch-only wallets can read balances but cannot sign transactions."))
		return nil
	},
}

var walletListCmd = &cobra.Command{
	Use:   "list",
	Short: "List wallets",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr, err := newWalletManager()
		if err != nil {
			return err
		}
		wallets, err := mgr.List()
		if err != nil {
			return err
		}
		if len(wallets) == 0 {
			fmt.Println(ui.Info("No wallets yet."))
			fmt.Println(ui.Hint("Add one with: w3reg wallet add alice --key <private-key>"))
			return nil
		}

		t := ui.NewTable([]ui.Column{
			{Title: "Name", Width: 16},
			{Title: "Address", Width: 44},
			{Title: "Type", Width: 12},
			{Title: "Default", Width: 8},
		})
		for _, w := range wallets {
			def := ""
			if w.IsDefault {
				def = ui.StyleSuccess.Render("✓")
			}
			t.AddRow(ui.Row{ui.Val(w.Name), ui.Addr(w.Address), ui.Meta(w.Type), def})
		}
		t.Caption = fmt.Sprintf("%d wallet(s) in %s", len(wallets), cfg.WalletsPath())
		fmt.Println(t.Render())
		return nil
	},
}

var walletUseCmd = &cobra.Command{
	Use:   "use [name]",
	Short: "Choose the default wallet (interactive without a name)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr, err := newWalletManager()
		if err != nil {
			return err
		}

		var name string
		if len(args) == 1 {
			name = args[0]
		} else {
			wallets, err := mgr.List()
			if err != nil {
				return err
			}
			if len(wallets) == 0 {
				return errors.New("no wallets to choose from")
			}
			items := make([]ui.PickerItem, 0, len(wallets))
			for _, w := range wallets {
				items = append(items, ui.PickerItem{Label: w.Name, SubLabel: w.Address, Value: w.Name, Current: w.IsDefault})
			}
			name, err = ui.PickItem("Default wallet", items)
			if err != nil {
				return err
			}
			if name == "" {
				fmt.Println(ui.Meta("Cancelled."))
				return nil
			}
		}

		if err := mgr.SetDefault(name); err != nil {
			return fmt.Errorf("wallet %q: %w", name, err)
		}
		cfg.DefaultWallet = name
		if err := cfg.Save(); err != nil {
			return err
		}
		fmt.Println(ui.Success(fmt.Sprintf("Default wallet set to %q.", name)))
		return nil
	},
}

var walletRemoveCmd = &cobra.Command{
	Use:   "remove <name>",
	Short: "Remove a wallet and its stored key",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		if !assumeYes && !ui.NewPrompter(os.Stdin, os.Stdout).ConfirmDanger(fmt.Sprintf("Remove wallet %q?", name)) {
			fmt.Println(ui.Meta("Cancelled."))
			return nil
		}
		mgr, err := newWalletManager()
		if err != nil {
			return err
		}
		if err := mgr.Remove(name); err != nil {
			return fmt.Errorf("wallet %q: %w", name, err)
		}
		if cfg.DefaultWallet == name {
			cfg.DefaultWallet = ""
			if err := cfg.Save(); err != nil {
				return err
			}
		}
		fmt.Println(ui.Success(fmt.Sprintf("Wallet %q removed.", name)))
		return nil
	},
}

func init() {
	walletAddCmd.Flags().StringVar(&walletKeyFlag, "key", "", "hex private key for a signing wallet")
	walletCmd.AddCommand(walletAddCmd, walletListCmd, walletUseCmd, walletRemoveCmd)
}

// newWalletManager opens the wallets file in the config dir with keys in the
// OS keychain.
func newWalletManager() (*wallet.Manager, error) {
	if err := os.MkdirAll(cfg.Dir(), 0o700); err != nil {
		return nil, fmt.Errorf("config dir: %w", err)
	}
	prompt := keyring.TerminalPrompt
	if pw := os.Getenv(keyringPasswordEnv); pw != "" {
		prompt = keyring.FixedStringPrompt(pw)
	}
	return wallet.NewManager(
		wallet.WithStore(wallet.NewJSONStore(cfg.WalletsPath())),
		wallet.WithKeyStore(wallet.DefaultKeystore(cfg.KeyringDir(), prompt)),
	), nil
}
