package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/Mohsinsiddi/w3reg/internal/client"
	"github.com/Mohsinsiddi/w3reg/internal/contract"
	"github.com/Mohsinsiddi/w3reg/internal/ui"
)

var contractOnchainFlag bool

var contractCmd = &cobra.Command{
	Use:   "contract",
	Short: "Inspect the token contract binding",
}

var contractInfoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show the contract the client binds to",
	Long: `Show the binding for the configured chain: address, interface, decimals and
symbol. With --onchain the node is dialed, the binding follows the chain the
node reports, and decimals and symbol are read from the contract.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		var (
			b       *contract.Binding
			chainID = cfg.ChainID
		)
		if contractOnchainFlag {
			s, err := openSession(cmd.Context(), nil)
			if err != nil {
				return err
			}
			defer s.Close()
			b, chainID = s.Binding(), s.BoundChain()
		} else {
			c, err := client.New(cfg, nil, client.WithLogger(log))
			if err != nil {
				return err
			}
			defer c.Close()
			b = c.Binding()
		}

		if b == nil {
			fmt.Println(ui.Warn(fmt.Sprintf("No contract recorded for chain %d.", chainID)))
			fmt.Println(ui.Hint(fmt.Sprintf("Record one with: w3reg config set-deployment %d <address>", chainID)))
			return errReported
		}

		symbol := b.Symbol
		if symbol == "" {
			symbol = ui.Meta("(none)")
		}
		explorer := b.Explorer
		if explorer == "" {
			explorer = ui.Meta("(none)")
		}
		fmt.Println(ui.KeyValueBlock("Contract", [][2]string{
			{"Address", ui.Addr(b.Address.Checksum())},
			{"Chain ID", ui.ChainName(strconv.FormatInt(chainID, 10))},
			{"Interface", cfg.ABI},
			{"Methods", strconv.Itoa(len(b.ABI.Methods))},
			{"Decimals", strconv.Itoa(int(b.Decimals))},
			{"Symbol", symbol},
			{"Explorer", explorer},
		}))
		return nil
	},
}

var contractBuiltinsCmd = &cobra.Command{
	Use:   "builtins",
	Short: "List the contract interfaces embedded in the binary",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		t := ui.NewTable([]ui.Column{
			{Title: "ID", Width: 12},
			{Title: "Name", Width: 22},
			{Title: "Methods", Width: 8},
			{Title: "Description", Width: 48},
		})
		for _, b := range contract.AllBuiltins() {
			t.AddRow(ui.Row{ui.Val(b.ID), b.Name, strconv.Itoa(len(b.ABI.Methods)), ui.Meta(b.Description)})
		}
		fmt.Println(t.Render())
		fmt.Println(ui.Hint("Use a file instead with: w3reg config set abi ./out/RegToken.json"))
		return nil
	},
}

func init() {
	contractInfoCmd.Flags().BoolVar(&contractOnchainFlag, "onchain", false, "dial the node and read decimals and symbol from the contract")
	contractCmd.AddCommand(contractInfoCmd, contractBuiltinsCmd)
}
