package token

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"golang.org/x/crypto/sha3"
)

// Address errors.
var (
	ErrAddressFormat   = errors.New("address must be 0x followed by 40 hex digits")
	ErrAddressChecksum = errors.New("address fails EIP-55 checksum")
)

// Address is a validated account or contract address. The string given to
// ParseAddress is kept verbatim.
type Address struct {
	raw string
}

// ParseAddress validates s. Mixed-case input must match its EIP-55 checksum;
// all-lowercase and all-uppercase input is accepted as-is.
func ParseAddress(s string) (Address, error) {
	if len(s) != 42 || !(strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X")) {
		return Address{}, fmt.Errorf("%w: %q", ErrAddressFormat, s)
	}
	body := s[2:]
	if _, err := hex.DecodeString(body); err != nil {
		return Address{}, fmt.Errorf("%w: %q", ErrAddressFormat, s)
	}
	if body != strings.ToLower(body) && body != strings.ToUpper(body) {
		if checksumBody(body) != body {
			return Address{}, fmt.Errorf("%w: %q", ErrAddressChecksum, s)
		}
	}
	return Address{raw: s}, nil
}

// MustParseAddress is ParseAddress for constants and tests.
func MustParseAddress(s string) Address {
	a, err := ParseAddress(s)
	if err != nil {
		panic(err)
	}
	return a
}

// FromCommon wraps a go-ethereum address in its checksummed form.
func FromCommon(a common.Address) Address {
	return Address{raw: a.Hex()}
}

// String returns the address exactly as it was validated.
func (a Address) String() string { return a.raw }

// IsZero reports whether a was never set.
func (a Address) IsZero() bool { return a.raw == "" }

// Common converts to the go-ethereum representation.
func (a Address) Common() common.Address { return common.HexToAddress(a.raw) }

// Checksum returns the EIP-55 mixed-case form.
func (a Address) Checksum() string {
	if a.raw == "" {
		return ""
	}
	return "0x" + checksumBody(a.raw[2:])
}

// Equal compares addresses case-insensitively.
func (a Address) Equal(b Address) bool { return strings.EqualFold(a.raw, b.raw) }

// Short renders 0x1234…abcd for status lines.
func (a Address) Short() string {
	if len(a.raw) <= 10 {
		return a.raw
	}
	return a.raw[:6] + "…" + a.raw[len(a.raw)-4:]
}

// checksumBody applies EIP-55 casing to 40 hex digits (no prefix).
func checksumBody(body string) string {
	lower := strings.ToLower(body)

	h := sha3.NewLegacyKeccak256()
	h.Write([]byte(lower))
	hash := hex.EncodeToString(h.Sum(nil))

	var sb strings.Builder
	sb.Grow(len(lower))
	for i, c := range lower {
		if c >= 'a' && c <= 'f' && hash[i] >= '8' {
			sb.WriteByte(byte(c - 32))
		} else {
			sb.WriteByte(byte(c))
		}
	}
	return sb.String()
}
