package client

import (
	"context"
	"fmt"
	"strings"

	"github.com/Mohsinsiddi/w3reg/internal/callerr"
	"github.com/Mohsinsiddi/w3reg/internal/contract"
	"github.com/Mohsinsiddi/w3reg/internal/present"
)

// Arg describes one positional argument of a Command.
type Arg struct {
	Name string
	Help string
	// Optional account arguments default to the connected account.
	Optional bool
}

// Command is one row of the command table the CLI and the studio console
// are generated from.
type Command struct {
	Name    string
	Usage   string
	Args    []Arg
	Mutates bool
	Run     func(ctx context.Context, inv *contract.Invoker, args []string) contract.Result
}

// Line returns the console usage line, e.g. "transfer <to> <amount>".
func (c Command) Line() string {
	parts := []string{c.Name}
	for _, a := range c.Args {
		if a.Optional {
			parts = append(parts, "["+a.Name+"]")
		} else {
			parts = append(parts, "<"+a.Name+">")
		}
	}
	return strings.Join(parts, " ")
}

// Commands returns the six contract operations in display order. The table
// is static so the CLI can build its command tree before any client exists.
func Commands() []Command {
	return []Command{
		{
			Name:    string(contract.OpRegister),
			Usage:   "Register the connected account",
			Mutates: true,
			Run: func(ctx context.Context, inv *contract.Invoker, _ []string) contract.Result {
				return inv.Register(ctx)
			},
		},
		{
			Name:  string(contract.OpApprove),
			Usage: "Allow a spender to move your tokens",
			Args: []Arg{
				{Name: "spender", Help: "0x address allowed to spend"},
				{Name: "amount", Help: "decimal token amount, e.g. 1.5"},
			},
			Mutates: true,
			Run: func(ctx context.Context, inv *contract.Invoker, args []string) contract.Result {
				return inv.Approve(ctx, args[0], args[1])
			},
		},
		{
			Name:  string(contract.OpTransfer),
			Usage: "Send tokens to an address",
			Args: []Arg{
				{Name: "to", Help: "recipient 0x address"},
				{Name: "amount", Help: "decimal token amount, e.g. 1.5"},
			},
			Mutates: true,
			Run: func(ctx context.Context, inv *contract.Invoker, args []string) contract.Result {
				return inv.Transfer(ctx, args[0], args[1])
			},
		},
		{
			Name:    string(contract.OpBurn),
			Usage:   "Destroy some of your tokens",
			Args:    []Arg{{Name: "amount", Help: "decimal token amount, e.g. 1.5"}},
			Mutates: true,
			Run: func(ctx context.Context, inv *contract.Invoker, args []string) contract.Result {
				return inv.Burn(ctx, args[0])
			},
		},
		{
			Name:  string(contract.OpBalanceOf),
			Usage: "Show the token balance of an account",
			Args:  []Arg{{Name: "account", Help: "0x address, defaults to the connected account", Optional: true}},
			Run: func(ctx context.Context, inv *contract.Invoker, args []string) contract.Result {
				return inv.BalanceOf(ctx, args[0])
			},
		},
		{
			Name:  string(contract.OpIsRegistered),
			Usage: "Check whether an account is registered",
			Args:  []Arg{{Name: "account", Help: "0x address, defaults to the connected account", Optional: true}},
			Run: func(ctx context.Context, inv *contract.Invoker, args []string) contract.Result {
				return inv.IsRegistered(ctx, args[0])
			},
		},
	}
}

// Lookup finds a command by name, case-insensitively.
func Lookup(name string) (Command, bool) {
	for _, cmd := range Commands() {
		if strings.EqualFold(cmd.Name, name) {
			return cmd, true
		}
	}
	return Command{}, false
}

// Invoke runs the named command. Argument count problems and unknown names
// come back as InvalidInput failures, so the result is always presentable.
func (c *Client) Invoke(ctx context.Context, name string, args []string) contract.Result {
	cmd, ok := Lookup(name)
	if !ok {
		return contract.Failure{Op: contract.Op(name), Kind: callerr.InvalidInput, Message: "unknown command " + name}
	}
	filled, err := c.fillArgs(cmd, args)
	if err != nil {
		return contract.Failure{Op: contract.Op(cmd.Name), Kind: callerr.InvalidInput, Message: err.Error()}
	}
	return cmd.Run(ctx, c.invoker, filled)
}

// Execute is Invoke followed by Present.
func (c *Client) Execute(ctx context.Context, name string, args []string) string {
	return present.Present(c.Invoke(ctx, name, args))
}

func (c *Client) fillArgs(cmd Command, args []string) ([]string, error) {
	if len(args) > len(cmd.Args) {
		return nil, fmt.Errorf("%s takes at most %d argument(s), got %d", cmd.Name, len(cmd.Args), len(args))
	}
	out := make([]string, len(cmd.Args))
	copy(out, args)
	for i := len(args); i < len(cmd.Args); i++ {
		a := cmd.Args[i]
		if !a.Optional {
			return nil, fmt.Errorf("missing <%s>: usage %s", a.Name, cmd.Line())
		}
		acct, ok := c.session.CurrentAccount()
		if !ok {
			return nil, fmt.Errorf("missing <%s>: connect a wallet or pass an address", a.Name)
		}
		out[i] = acct.String()
	}
	return out, nil
}
