package cmd

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/Mohsinsiddi/w3reg/internal/config"
	"github.com/Mohsinsiddi/w3reg/internal/token"
	"github.com/Mohsinsiddi/w3reg/internal/ui"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or change settings",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print every setting and the recorded deployments",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		pairs := make([][2]string, 0, len(config.Keys))
		for _, key := range config.Keys {
			v, err := cfg.Get(key)
			if err != nil {
				return err
			}
			if v == "" {
				v = ui.Meta("(unset)")
			}
			pairs = append(pairs, [2]string{key, v})
		}
		fmt.Println(ui.KeyValueBlock("Config "+ui.Meta(cfg.Dir()), pairs))

		if len(cfg.Deployments) == 0 {
			return nil
		}
		ids := make([]string, 0, len(cfg.Deployments))
		for id := range cfg.Deployments {
			ids = append(ids, id)
		}
		sort.Slice(ids, func(i, j int) bool {
			a, _ := strconv.ParseInt(ids[i], 10, 64)
			b, _ := strconv.ParseInt(ids[j], 10, 64)
			return a < b
		})
		t := ui.NewTable([]ui.Column{
			{Title: "Chain ID", Width: 12},
			{Title: "Contract", Width: 44},
		})
		for _, id := range ids {
			t.AddRow(ui.Row{ui.ChainName(id), ui.Addr(cfg.Deployments[id])})
		}
		fmt.Println(t.Render())
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Change one setting",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, value := args[0], args[1]
		if err := cfg.Set(key, value); err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return err
		}
		if err := cfg.Save(); err != nil {
			return err
		}
		fmt.Println(ui.Success(fmt.Sprintf("%s = %s", key, ui.Val(value))))
		return nil
	},
}

var configSetDeploymentCmd = &cobra.Command{
	Use:   "set-deployment <chain-id> <address>",
	Short: "Record the contract address deployed on a chain",
	Long: `Record where the token contract lives on a chain. When the wallet switches
to that chain the client rebinds to this address; chains without a
deployment disable every operation.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil || id <= 0 {
			return fmt.Errorf("chain id must be a positive integer, got %q", args[0])
		}
		addr, err := token.ParseAddress(args[1])
		if err != nil {
			return err
		}
		cfg.SetDeployment(id, addr.Checksum())
		if err := cfg.Validate(); err != nil {
			return err
		}
		if err := cfg.Save(); err != nil {
			return err
		}
		fmt.Println(ui.Success(fmt.Sprintf("Chain %d → %s", id, ui.Addr(addr.Checksum()))))
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd, configSetCmd, configSetDeploymentCmd)
}
