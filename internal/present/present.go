// Package present turns invocation results and connection states into the
// strings the CLI and studio console show. Every function here is pure.
package present

import (
	"fmt"
	"strings"

	"github.com/Mohsinsiddi/w3reg/internal/callerr"
	"github.com/Mohsinsiddi/w3reg/internal/contract"
	"github.com/Mohsinsiddi/w3reg/internal/session"
	"github.com/Mohsinsiddi/w3reg/internal/token"
)

// Present renders r. It is total: nil and unknown variants render as
// "no result".
func Present(r contract.Result) string {
	switch v := r.(type) {
	case contract.Success:
		return success(v)
	case *contract.Success:
		if v != nil {
			return success(*v)
		}
	case contract.Failure:
		return failure(v)
	case *contract.Failure:
		if v != nil {
			return failure(*v)
		}
	}
	return "no result"
}

// Status renders the connect button label for s.
func Status(s session.State) string {
	switch s.Status {
	case session.Connecting:
		return "Connecting…"
	case session.Connected:
		return "Connected: " + abbreviate(s.Account.String())
	case session.Failed:
		if s.Kind == callerr.ProviderUnavailable {
			return "Please install a wallet"
		}
		return fmt.Sprintf("Connection Failed (%s): %s", s.Kind, s.Reason)
	}
	return "Connect"
}

func success(s contract.Success) string {
	switch v := s.Value.(type) {
	case contract.Balance:
		out := "Balance: " + token.FormatUnits(v.Amount, v.Decimals)
		if v.Symbol != "" {
			out += " " + v.Symbol
		}
		return out
	case contract.Registered:
		return fmt.Sprintf("Is Registered: %t", bool(v))
	case contract.Receipt:
		out := fmt.Sprintf("%s confirmed in block %d (tx %s)", s.Op, v.BlockNumber, v.TxHash.Hex())
		if v.Explorer != "" {
			out += "\n" + v.Explorer
		}
		return out
	}
	return "no result"
}

func failure(f contract.Failure) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s failed [%s]", f.Op, f.Kind)
	if f.Message != "" {
		b.WriteString(": " + f.Message)
	}
	if f.TxHash != nil && f.Kind == callerr.Unknown {
		fmt.Fprintf(&b, " (tx %s, check it before retrying)", f.TxHash.Hex())
	}
	return b.String()
}

// abbreviate keeps the 0x prefix and four characters.
func abbreviate(addr string) string {
	if len(addr) <= 6 {
		return addr
	}
	return addr[:6] + "…"
}
