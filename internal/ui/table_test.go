package ui

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---------------------------------------------------------------------------
// KeyValueBlock
// ---------------------------------------------------------------------------

func TestKeyValueBlockPreservesOrder(t *testing.T) {
	result := KeyValueBlock("Contract", [][2]string{
		{"Address", "0x5FbDB2315678afecb367f032d93F642f64180aa3"},
		{"Chain", "anvil"},
		{"Decimals", "18"},
	})
	require.Contains(t, result, "Contract")
	idxAddr := strings.Index(result, "Address")
	idxChain := strings.Index(result, "Chain")
	idxDec := strings.Index(result, "Decimals")
	assert.Less(t, idxAddr, idxChain)
	assert.Less(t, idxChain, idxDec)
}

func TestKeyValueBlockHasBorder(t *testing.T) {
	result := KeyValueBlock("", [][2]string{{"Key", "Val"}})
	assert.Contains(t, result, "╭")
	assert.Contains(t, result, "╰")
	assert.Contains(t, result, "Val")
}

// ---------------------------------------------------------------------------
// Table
// ---------------------------------------------------------------------------

func TestNewTableCreatesEmptyTable(t *testing.T) {
	tbl := NewTable([]Column{{Title: "Name", Width: 10}, {Title: "Address", Width: 20}})
	assert.Len(t, tbl.Columns, 2)
	assert.Empty(t, tbl.Rows)
	assert.NotContains(t, tbl.Render(), "wallet(s)")
}

func TestTableRender(t *testing.T) {
	tbl := NewTable([]Column{
		{Title: "Name", Width: 10},
		{Title: "Type", Width: 10},
	})
	tbl.AddRow(Row{"deployer", "signing"})
	tbl.AddRow(Row{"treasury"})
	tbl.Caption = "2 wallet(s)"

	result := tbl.Render()
	assert.Contains(t, result, "Name")
	assert.Contains(t, result, "----------")
	assert.Contains(t, result, "deployer")
	assert.Contains(t, result, "signing")
	assert.Less(t, strings.Index(result, "deployer"), strings.Index(result, "treasury"))
	assert.Less(t, strings.Index(result, "treasury"), strings.Index(result, "2 wallet(s)"))
}

func TestKeyValueBlockAlignsKeys(t *testing.T) {
	result := KeyValueBlock("", [][2]string{{"To", "a"}, {"Gas limit", "b"}})
	lines := strings.Split(result, "\n")
	var cols []int
	for _, l := range lines {
		for _, v := range []string{" a", " b"} {
			if i := strings.Index(l, v); i >= 0 && strings.Contains(l, ":") {
				cols = append(cols, lipgloss.Width(l[:i]))
			}
		}
	}
	require.Len(t, cols, 2)
	assert.Equal(t, cols[0], cols[1])
}

func TestPad(t *testing.T) {
	assert.Equal(t, "ab   ", pad("ab", 5))
	assert.Equal(t, "abcde", pad("abcde", 5))
	assert.Equal(t, "abcd…", pad("abcdefgh", 5))
	assert.Equal(t, "", pad("abc", 0))
}

func TestPadMeasuresDisplayWidth(t *testing.T) {
	short := TruncateAddr("0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266")
	padded := pad(short, 14)
	assert.Equal(t, 14, lipgloss.Width(padded))
	assert.True(t, strings.HasPrefix(padded, short))
}
