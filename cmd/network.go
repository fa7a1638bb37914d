package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/Mohsinsiddi/w3reg/internal/chain"
	"github.com/Mohsinsiddi/w3reg/internal/ui"
)

var networkCmd = &cobra.Command{
	Use:   "network",
	Short: "List or select the network",
}

var networkListCmd = &cobra.Command{
	Use:   "list",
	Short: "List known networks",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		t := ui.NewTable([]ui.Column{
			{Title: "Name", Width: 12},
			{Title: "Chain ID", Width: 10},
			{Title: "Currency", Width: 8},
			{Title: "Contract", Width: 14},
			{Title: "", Width: 8},
		})
		for _, ch := range chain.NewRegistry().All() {
			contract := ui.Meta("-")
			if addr, ok := cfg.Deployment(ch.ChainID); ok {
				contract = ui.Addr(ui.TruncateAddr(addr))
			}
			mark := ""
			if ch.Name == cfg.Network {
				mark = ui.StyleSuccess.Render("active")
			} else if ch.Testnet {
				mark = ui.Meta("testnet")
			}
			t.AddRow(ui.Row{
				ui.ChainName(ch.Name),
				strconv.FormatInt(ch.ChainID, 10),
				ch.NativeCurrency,
				contract,
				mark,
			})
		}
		t.Caption = "Select one with: w3reg network use <name>"
		fmt.Println(t.Render())
		return nil
	},
}

var networkUseCmd = &cobra.Command{
	Use:   "use <name>",
	Short: "Select the network the client dials and binds to",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ch, err := chain.NewRegistry().GetByName(args[0])
		if err != nil {
			return err
		}
		// Keep the primary contract reachable from its old chain.
		if cfg.ContractAddress != "" && cfg.ChainID != ch.ChainID {
			if _, ok := cfg.Deployments[strconv.FormatInt(cfg.ChainID, 10)]; !ok {
				cfg.SetDeployment(cfg.ChainID, cfg.ContractAddress)
			}
			cfg.ContractAddress = cfg.Deployments[strconv.FormatInt(ch.ChainID, 10)]
		}
		cfg.Network = ch.Name
		cfg.ChainID = ch.ChainID
		cfg.RPCURL = ""
		if err := cfg.Save(); err != nil {
			return err
		}
		fmt.Println(ui.Success(fmt.Sprintf("Network set to %s (chain %d).", ui.ChainName(ch.DisplayName), ch.ChainID)))
		if _, ok := cfg.Deployment(ch.ChainID); !ok {
			fmt.Println(ui.Hint(fmt.Sprintf("No contract recorded here yet: w3reg config set-deployment %d <address>", ch.ChainID)))
		}
		return nil
	},
}

func init() {
	networkCmd.AddCommand(networkListCmd, networkUseCmd)
}
