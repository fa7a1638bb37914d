package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/Mohsinsiddi/w3reg/internal/chain"
	"github.com/Mohsinsiddi/w3reg/internal/client"
	"github.com/Mohsinsiddi/w3reg/internal/provider"
	"github.com/Mohsinsiddi/w3reg/internal/ui"
)

// anvilDeployer is the first pre-funded anvil account, used by --dry-run
// when no wallet is configured.
const anvilDeployer = "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"

// walletSession bundles a client with whatever it dialed.
type walletSession struct {
	*client.Client
	local *provider.Local
	node  *ethclient.Client
}

func (s *walletSession) Close() {
	s.Client.Close()
	if s.node != nil {
		s.node.Close()
	}
}

// openSession builds the provider selected by the flags and a client on top
// of it. approve gates wallet prompts; nil means prompt on the terminal.
func openSession(ctx context.Context, approve provider.ApproveFunc) (*walletSession, error) {
	if dryRun {
		p, err := newDryRunProvider()
		if err != nil {
			return nil, err
		}
		c, err := client.New(cfg, p, client.WithLogger(log))
		if err != nil {
			return nil, err
		}
		return &walletSession{Client: c}, nil
	}

	mgr, err := newWalletManager()
	if err != nil {
		return nil, err
	}
	if approve == nil {
		approve = provider.AutoApprove
		if !assumeYes {
			approve = ui.NewPrompter(os.Stdin, os.Stderr).Approver()
		}
	}

	rpcURL, err := resolveRPC()
	if err != nil {
		return nil, err
	}
	local, node, err := provider.DialLocal(ctx, rpcURL, mgr,
		provider.WithApprover(approve),
		provider.WithLogger(log),
	)
	if err != nil {
		return nil, err
	}
	if name := activeWallet(); name != "" {
		if err := local.SelectAccount(name); err != nil {
			node.Close()
			return nil, fmt.Errorf("wallet %q: %w", name, err)
		}
	}
	c, err := client.New(cfg, local, client.WithLogger(log), client.WithContractMetadata())
	if err != nil {
		node.Close()
		return nil, err
	}
	if err := c.Reinitialize(ctx); err != nil {
		log.Warnw("binding to the node's chain failed", "err", err)
	}
	return &walletSession{Client: c, local: local, node: node}, nil
}

// resolveRPC returns the configured rpc_url or the registry default for the
// configured network.
func resolveRPC() (string, error) {
	if cfg.RPCURL != "" {
		return cfg.RPCURL, nil
	}
	ch, err := chain.NewRegistry().GetByName(cfg.Network)
	if err != nil {
		return "", fmt.Errorf("network %q: %w (set rpc_url)", cfg.Network, err)
	}
	return ch.RPC, nil
}

func activeWallet() string {
	if walletFlag != "" {
		return walletFlag
	}
	return cfg.DefaultWallet
}

// dryRunAccount is the default wallet's address, or the anvil deployer.
func dryRunAccount() common.Address {
	mgr, err := newWalletManager()
	if err != nil {
		return common.HexToAddress(anvilDeployer)
	}
	name := activeWallet()
	if name != "" {
		if w, err := mgr.Get(name); err == nil {
			return common.HexToAddress(w.Address)
		}
	}
	if ws, err := mgr.List(); err == nil && len(ws) > 0 {
		return common.HexToAddress(ws[0].Address)
	}
	return common.HexToAddress(anvilDeployer)
}
