package contract

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// BuiltinKind describes a built-in contract interface whose ABI is embedded
// in the binary. New built-ins register themselves via init() in their own
// file: create internal/contract/<name>_abi.go and call RegisterBuiltin().
type BuiltinKind struct {
	ID          string  // machine key, e.g. "regtoken"
	Name        string  // human label
	Description string  // one-line summary shown in `contract builtins`
	JSON        string  // ABI JSON
	ABI         abi.ABI // parsed from JSON by RegisterBuiltin
}

var builtinRegistry = map[string]BuiltinKind{}

// RegisterBuiltin parses b.JSON and adds b to the global registry. It panics
// on invalid JSON; call it from init().
func RegisterBuiltin(b BuiltinKind) {
	parsed, err := abi.JSON(strings.NewReader(b.JSON))
	if err != nil {
		panic(fmt.Sprintf("builtin ABI %q: %v", b.ID, err))
	}
	b.ABI = parsed
	builtinRegistry[b.ID] = b
}

// GetBuiltin returns a built-in by ID. ok is false if not found.
func GetBuiltin(id string) (BuiltinKind, bool) {
	b, ok := builtinRegistry[id]
	return b, ok
}

// AllBuiltins returns all registered built-ins sorted by ID.
func AllBuiltins() []BuiltinKind {
	out := make([]BuiltinKind, 0, len(builtinRegistry))
	for _, b := range builtinRegistry {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// LoadABI resolves source as a built-in ID, else as a path to either a bare
// ABI array or a Hardhat/Foundry artifact with an "abi" field.
func LoadABI(source string) (abi.ABI, error) {
	if b, ok := GetBuiltin(source); ok {
		return b.ABI, nil
	}

	data, err := os.ReadFile(source)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return abi.ABI{}, fmt.Errorf("%w: %q is neither a builtin nor a file", ErrABINotFound, source)
		}
		return abi.ABI{}, fmt.Errorf("reading ABI: %w", err)
	}

	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, "{") {
		var artifact struct {
			ABI json.RawMessage `json:"abi"`
		}
		if err := json.Unmarshal(data, &artifact); err != nil {
			return abi.ABI{}, fmt.Errorf("parsing artifact: %w", err)
		}
		if len(artifact.ABI) == 0 {
			return abi.ABI{}, fmt.Errorf("%w: artifact has no \"abi\" field", ErrABINotFound)
		}
		trimmed = string(artifact.ABI)
	}

	parsed, err := abi.JSON(strings.NewReader(trimmed))
	if err != nil {
		return abi.ABI{}, fmt.Errorf("parsing ABI: %w", err)
	}
	return parsed, nil
}
