package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Mohsinsiddi/w3reg/internal/chain"
	"github.com/Mohsinsiddi/w3reg/internal/present"
	"github.com/Mohsinsiddi/w3reg/internal/session"
	"github.com/Mohsinsiddi/w3reg/internal/ui"
)

var connectCmd = &cobra.Command{
	Use:   "connect",
	Short: "Connect the wallet and show the session",
	Long: `Request account access from the wallet and print the resulting session:
the connected account, the chain the wallet is on and the contract bound
for that chain.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		s, err := openSession(ctx, nil)
		if err != nil {
			return err
		}
		defer s.Close()

		st := s.Connect(ctx)
		fmt.Println(ui.ConnectionStatus(present.Status(st)))
		if st.Status != session.Connected {
			return errReported
		}

		pairs := [][2]string{{"Account", ui.Addr(st.Account.Checksum())}}
		chainID := s.BoundChain()
		label := fmt.Sprintf("%d", chainID)
		if ch, err := chain.NewRegistry().GetByChainID(chainID); err == nil {
			label = fmt.Sprintf("%s (%d)", ch.DisplayName, chainID)
		}
		pairs = append(pairs, [2]string{"Chain", ui.ChainName(label)})

		if b := s.Binding(); b != nil {
			pairs = append(pairs, [2]string{"Contract", ui.Addr(b.Address.Checksum())})
			if b.Symbol != "" {
				pairs = append(pairs, [2]string{"Token", ui.Val(b.Symbol)})
			}
		} else {
			pairs = append(pairs, [2]string{"Contract", ui.Meta("none on this chain")})
		}
		fmt.Println(ui.KeyValueBlock("Session", pairs))

		if s.Binding() == nil {
			fmt.Println(ui.Hint(fmt.Sprintf("Record one with: w3reg config set-deployment %d <address>", chainID)))
		}
		return nil
	},
}
