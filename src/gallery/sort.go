package gallery

import (
	"fmt"
	"sort"
	"strings"

	"github.com/stake-plus/contest-radar/src/normalize"
)

// SortOrder orders apps by likes.
type SortOrder string

const (
	Desc SortOrder = "desc"
	Asc  SortOrder = "asc"
)

// Toggle flips the order.
func (o SortOrder) Toggle() SortOrder {
	if o == Asc {
		return Desc
	}
	return Asc
}

// Label is the human text for the sort button.
func (o SortOrder) Label() string {
	if o == Asc {
		return "Lowest First"
	}
	return "Highest First"
}

// ParseSortOrder accepts "asc" or "desc"; empty means desc.
func ParseSortOrder(s string) (SortOrder, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", string(Desc):
		return Desc, nil
	case string(Asc):
		return Asc, nil
	}
	return Desc, fmt.Errorf("unknown sort order %q", s)
}

// Sort returns a copy of apps ordered by numeric likes. Equal likes keep
// their input order. apps itself is never modified.
func Sort(apps []normalize.CryptoApp, order SortOrder) []normalize.CryptoApp {
	out := make([]normalize.CryptoApp, len(apps))
	copy(out, apps)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := normalize.ParseVotes(out[i].Likes), normalize.ParseVotes(out[j].Likes)
		if order == Asc {
			return a.LessThan(b)
		}
		return a.GreaterThan(b)
	})
	return out
}
