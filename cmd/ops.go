package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Mohsinsiddi/w3reg/internal/client"
	"github.com/Mohsinsiddi/w3reg/internal/contract"
	"github.com/Mohsinsiddi/w3reg/internal/present"
	"github.com/Mohsinsiddi/w3reg/internal/provider"
	"github.com/Mohsinsiddi/w3reg/internal/session"
	"github.com/Mohsinsiddi/w3reg/internal/ui"
)

// opCommands builds one subcommand per contract operation from the client's
// command table, so the CLI and the studio list the same operations.
func opCommands() []*cobra.Command {
	var out []*cobra.Command
	for _, c := range client.Commands() {
		out = append(out, opCommand(c))
	}
	return out
}

func opCommand(c client.Command) *cobra.Command {
	required := 0
	for _, a := range c.Args {
		if !a.Optional {
			required++
		}
	}

	long := c.Usage + "."
	if len(c.Args) > 0 {
		long += "\n\nArguments:"
		for _, a := range c.Args {
			long += fmt.Sprintf("\n  %-8s %s", a.Name, a.Help)
		}
	}

	return &cobra.Command{
		Use:   c.Line(),
		Short: c.Usage,
		Long:  long,
		Args:  cobra.RangeArgs(required, len(c.Args)),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOp(cmd.Context(), c, args)
		},
	}
}

func runOp(ctx context.Context, c client.Command, args []string) error {
	// The spinner starts once the signature is approved, so it never draws
	// over the approval prompt.
	sp := ui.NewSpinner(os.Stderr, fmt.Sprintf("Waiting for %s to confirm…", c.Name))
	spinning := false
	approve := provider.AutoApprove
	if !assumeYes {
		approve = ui.NewPrompter(os.Stdin, os.Stderr).Approver()
	}
	approveThenSpin := func(ctx context.Context, a provider.Approval) (bool, error) {
		ok, err := approve(ctx, a)
		if ok && err == nil && a.Kind == provider.ApproveSign && !spinning {
			sp.Start()
			spinning = true
		}
		return ok, err
	}

	s, err := openSession(ctx, approveThenSpin)
	if err != nil {
		return err
	}
	defer s.Close()

	// Reads with an explicit account need no wallet at all.
	if c.Mutates || len(args) < len(c.Args) {
		if st := s.Connect(ctx); st.Status != session.Connected {
			fmt.Fprintln(os.Stderr, ui.ConnectionStatus(present.Status(st)))
		}
	}

	r := s.Invoke(ctx, c.Name, args)
	if spinning {
		log.Debugw("invocation finished", "op", c.Name, "elapsed", sp.Stop())
	}

	fmt.Println(ui.Outcome(present.Present(r)))
	switch r.(type) {
	case contract.Failure, *contract.Failure:
		return errReported
	}
	return nil
}
