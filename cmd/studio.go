package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/Mohsinsiddi/w3reg/internal/client"
	"github.com/Mohsinsiddi/w3reg/internal/present"
	"github.com/Mohsinsiddi/w3reg/internal/provider"
	"github.com/Mohsinsiddi/w3reg/internal/session"
	"github.com/Mohsinsiddi/w3reg/internal/ui"
)

var studioCmd = &cobra.Command{
	Use:   "studio",
	Short: "Interactive console for the token contract",
	Long: `Open a full-screen console with the connection status, the six contract
operations and their results. Type "connect" first, then e.g.
"transfer 0x70997970C51812dc3A010C7d01b50e0d17dc79C8 1.5".

The console cannot stop for terminal prompts, so wallet requests are
approved automatically. Use the one-shot commands to review each
signature.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		s, err := openSession(ctx, provider.AutoApprove)
		if err != nil {
			return err
		}
		defer s.Close()

		if s.local != nil && cfg.ChainPollInterval > 0 {
			go func() {
				if err := s.local.WatchChain(ctx, cfg.ChainPollInterval.Std()); err != nil && ctx.Err() == nil {
					log.Warnw("chain watcher stopped", "err", err)
				}
			}()
		}

		var commands []ui.StudioCommand
		for _, c := range client.Commands() {
			commands = append(commands, ui.StudioCommand{
				Name:    c.Name,
				Line:    c.Line(),
				Usage:   c.Usage,
				Mutates: c.Mutates,
			})
		}
		return ui.RunStudio(ui.NewStudio(ctx, studioBackend{s.Client}, ui.Banner(Version), commands))
	},
}

// studioBackend adapts a client to the console.
type studioBackend struct {
	c *client.Client
}

func (b studioBackend) Status() string { return b.c.Status() }

func (b studioBackend) Connect(ctx context.Context) string {
	return present.Status(b.c.Connect(ctx))
}

func (b studioBackend) Disconnect() string {
	return present.Status(b.c.Disconnect())
}

func (b studioBackend) Execute(ctx context.Context, name string, args []string) string {
	return b.c.Execute(ctx, name, args)
}

func (b studioBackend) OnStatus(fn func(label string)) (remove func()) {
	return b.c.Session().OnChange(func(s session.State) { fn(present.Status(s)) })
}
