package normalize

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stake-plus/contest-radar/src/contest"
	"github.com/stake-plus/contest-radar/src/fetcher"
)

// PlaceholderScreenshot is shown when a proposal embeds no image.
const PlaceholderScreenshot = "/placeholder-screenshot.png"

// CryptoApp is the display model of one proposal.
type CryptoApp struct {
	ID              string        `json:"id"`
	Name            string        `json:"name"`
	Description     string        `json:"description"`
	Preview         string        `json:"preview"`
	DescriptionHTML string        `json:"descriptionHTML"`
	Logo            string        `json:"logo"`
	Screenshot      []string      `json:"screenshot"`
	Likes           string        `json:"likes"`
	Dislikes        string        `json:"dislikes"`
	Liked           bool          `json:"liked"`
	Comments        []CommentView `json:"comments"`
	Author          string        `json:"author"`
	Exists          bool          `json:"exists"`
	TargetAddress   string        `json:"targetAddress"`
	SafeSigners     []string      `json:"safeSigners"`
	SafeThreshold   string        `json:"safeThreshold"`
	FieldsMetadata  FieldsView    `json:"fieldsMetadata"`
}

type CommentView struct {
	ID         string `json:"id"`
	ProposalID string `json:"proposalId"`
	Author     string `json:"author"`
	Content    string `json:"content"`
	Timestamp  string `json:"timestamp"`
}

type FieldsView struct {
	AddressArray []string `json:"addressArray"`
	StringArray  []string `json:"stringArray"`
	UintArray    []string `json:"uintArray"`
}

// App builds the display model for one fetched proposal.
func App(b fetcher.Bundle) CryptoApp {
	p := b.Proposal
	id := numberString(p.ID)
	doc := Parse(p.Description)
	text := ExtractText(Body(doc))
	safe := Sanitize(p.Description)

	app := CryptoApp{
		ID:              id,
		Name:            ExtractTitle(doc),
		Description:     text,
		Preview:         Truncate(text, PreviewRunes),
		DescriptionHTML: safe,
		Likes:           FormatVotes(b.Votes.For),
		Dislikes:        FormatVotes(b.Votes.Against),
		Comments:        make([]CommentView, 0, len(b.Comments)),
		Author:          p.Author.Hex(),
		Exists:          p.Exists,
		SafeSigners:     addresses(p.SafeSigners),
		SafeThreshold:   numberString(p.SafeThreshold),
		FieldsMetadata: FieldsView{
			AddressArray: addresses(p.Fields.Addresses),
			StringArray:  append([]string{}, p.Fields.Strings...),
			UintArray:    numbers(p.Fields.Uints),
		},
	}
	if p.TargetAddress != (common.Address{}) {
		app.TargetAddress = p.TargetAddress.Hex()
	}
	if img := FirstImage(Parse(safe)); img != "" {
		app.Logo = img
		app.Screenshot = []string{img}
	} else {
		app.Logo = PlaceholderLogo(id + "logo")
		app.Screenshot = []string{PlaceholderScreenshot}
	}
	for _, c := range b.Comments {
		app.Comments = append(app.Comments, Comment(c))
	}
	return app
}

// Apps normalizes a batch, keeping its order.
func Apps(bundles []fetcher.Bundle) []CryptoApp {
	out := make([]CryptoApp, 0, len(bundles))
	for _, b := range bundles {
		out = append(out, App(b))
	}
	return out
}

// Comment builds the display model of a comment. Content goes through the
// same sanitizer as proposal bodies.
func Comment(c contest.RawComment) CommentView {
	return CommentView{
		ID:         numberString(c.ID),
		ProposalID: numberString(c.ProposalID),
		Author:     c.Author.Hex(),
		Content:    Sanitize(c.Content),
		Timestamp:  FormatTimestamp(c.Timestamp),
	}
}

func numberString(v *big.Int) string {
	if v == nil {
		return "0"
	}
	return v.String()
}

func numbers(vs []*big.Int) []string {
	out := make([]string, 0, len(vs))
	for _, v := range vs {
		out = append(out, numberString(v))
	}
	return out
}

func addresses(as []common.Address) []string {
	out := make([]string, 0, len(as))
	for _, a := range as {
		out = append(out, a.Hex())
	}
	return out
}
