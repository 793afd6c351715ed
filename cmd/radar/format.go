package main

import (
	"math/big"

	"github.com/stake-plus/contest-radar/src/normalize"
)

func number(v *big.Int) string {
	if v == nil {
		return "0"
	}
	return v.String()
}

func unix(v *big.Int) string {
	if v == nil || !v.IsInt64() {
		return normalize.UnknownTime
	}
	return normalize.FormatTimestamp(v.Int64())
}
