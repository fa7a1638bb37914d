package ui

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/Mohsinsiddi/w3reg/internal/provider"
)

// Prompter asks yes/no questions on a terminal.
type Prompter struct {
	in  *bufio.Reader
	out io.Writer
}

// NewPrompter reads answers from in and writes prompts to out.
func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{in: bufio.NewReader(in), out: out}
}

// Confirm prompts the user with a yes/no question. Returns true for yes.
func (p *Prompter) Confirm(prompt string) bool {
	fmt.Fprintf(p.out, "%s [y/N]: ", StyleWarning.Render(prompt))
	return p.readYes()
}

// ConfirmDanger is Confirm styled for destructive actions.
func (p *Prompter) ConfirmDanger(prompt string) bool {
	fmt.Fprintf(p.out, "%s [y/N]: ", StyleError.Render("⚠ "+prompt))
	return p.readYes()
}

// Approver returns a provider.ApproveFunc that shows each request and asks
// for confirmation. A closed input declines.
func (p *Prompter) Approver() provider.ApproveFunc {
	return func(_ context.Context, a provider.Approval) (bool, error) {
		switch a.Kind {
		case provider.ApproveConnect:
			return p.Confirm("Expose your w3reg wallets to this session?"), nil
		default:
			fmt.Fprintln(p.out, KeyValueBlock("Signature request", approvalPairs(a)))
			return p.Confirm("Sign and broadcast?"), nil
		}
	}
}

func (p *Prompter) readYes() bool {
	line, _ := p.in.ReadString('\n')
	line = strings.TrimSpace(strings.ToLower(line))
	return line == "y" || line == "yes"
}

func approvalPairs(a provider.Approval) [][2]string {
	pairs := [][2]string{{"From", a.From.Hex()}}
	if a.To != nil {
		pairs = append(pairs, [2]string{"To", a.To.Hex()})
	}
	if len(a.Data) >= 4 {
		pairs = append(pairs, [2]string{"Selector", hexutil.Encode(a.Data[:4])})
	}
	if a.Value != nil && a.Value.Sign() > 0 {
		pairs = append(pairs, [2]string{"Value (wei)", a.Value.String()})
	}
	pairs = append(pairs, [2]string{"Gas limit", fmt.Sprint(a.Gas)})
	if a.FeeCap != nil {
		pairs = append(pairs, [2]string{"Max fee", gwei(a.FeeCap) + " gwei"})
	}
	if a.ChainID != nil {
		pairs = append(pairs, [2]string{"Chain ID", a.ChainID.String()})
	}
	return pairs
}

func gwei(wei *big.Int) string {
	f := new(big.Float).Quo(new(big.Float).SetInt(wei), big.NewFloat(1e9))
	return f.Text('f', 2)
}
