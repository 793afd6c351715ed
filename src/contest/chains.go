package contest

import (
	"fmt"
	"sort"
	"strings"
)

// Chain describes a network the contest contract can live on.
type Chain struct {
	Name       string
	ID         int64
	DefaultRPC string
	// Slug is the chain segment used by the external voting site.
	Slug string
}

var chains = map[string]Chain{
	"base":    {Name: "base", ID: 8453, DefaultRPC: "https://mainnet.base.org", Slug: "base"},
	"mainnet": {Name: "mainnet", ID: 1, DefaultRPC: "https://ethereum-rpc.publicnode.com", Slug: "mainnet"},
	"sepolia": {Name: "sepolia", ID: 11155111, DefaultRPC: "https://ethereum-sepolia-rpc.publicnode.com", Slug: "sepolia"},
}

// LookupChain resolves a chain by name.
func LookupChain(name string) (Chain, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		key = "base"
	}
	c, ok := chains[key]
	if !ok {
		return Chain{}, fmt.Errorf("unknown chain %q (known: %s)", name, strings.Join(ChainNames(), ", "))
	}
	return c, nil
}

// ChainNames lists the known chain names in order.
func ChainNames() []string {
	names := make([]string, 0, len(chains))
	for n := range chains {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
