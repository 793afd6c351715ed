package main

import (
	"bytes"
	"encoding/json"
	"math/big"
	"testing"

	"github.com/stake-plus/contest-radar/src/contest"
	"github.com/stake-plus/contest-radar/src/normalize"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrintApps(t *testing.T) {
	var buf bytes.Buffer
	printApps(&buf, []normalize.CryptoApp{
		{ID: "4", Name: "Radar", Author: "0xabc", Likes: "1.23", Dislikes: "0.00", Preview: "line one\nline two",
			Comments: []normalize.CommentView{{ID: "1"}}},
	})
	out := buf.String()
	assert.Contains(t, out, "Total proposals: 1")
	assert.Contains(t, out, "#4 Radar")
	assert.Contains(t, out, "likes:    1.23")
	assert.Contains(t, out, "comments: 1")
	assert.Contains(t, out, "line one line two")
}

func TestPrintMetadata(t *testing.T) {
	var buf bytes.Buffer
	printMetadata(&buf, "0x7f4e", contest.Metadata{
		Name:            "Radar",
		Prompt:          "<p>Build <strong>apps</strong></p>",
		CostToVote:      new(big.Int).Mul(big.NewInt(2), big.NewInt(1e18)),
		VotingPeriod:    big.NewInt(600),
		ContestDeadline: big.NewInt(1700000000),
		State:           contest.StateCompleted,
	})
	out := buf.String()
	assert.Contains(t, out, "Prompt:            Build apps.")
	assert.Contains(t, out, "Cost to vote:      2.00")
	assert.Contains(t, out, "Cost to propose:   0.00")
	assert.Contains(t, out, "Voting period:     600s")
	assert.Contains(t, out, "Contest start:     Unknown")
	assert.Contains(t, out, "Contest deadline:  2023-11-14 22:13:20 UTC")
	assert.Contains(t, out, "State:             Completed")
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeJSON(&buf, []normalize.CryptoApp{{ID: "1", Likes: "0.00"}}))
	var got []map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "1", got[0]["id"])
	assert.Equal(t, false, got[0]["liked"])
}

func TestCommandTree(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	assert.True(t, names["serve"])
	assert.True(t, names["fetch"])
	assert.True(t, names["contest"])
	assert.NotNil(t, fetchCmd.Flags().Lookup("json"))
	assert.NotNil(t, rootCmd.PersistentFlags().Lookup("contract"))
}
