package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/stake-plus/contest-radar/src/contest"
	"github.com/stake-plus/contest-radar/src/gallery"
	"github.com/stake-plus/contest-radar/src/normalize"
)

var (
	asJSON   bool
	sortFlag string
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Run one fetch cycle and print the gallery",
	RunE: func(cmd *cobra.Command, args []string) error {
		order, err := gallery.ParseSortOrder(sortFlag)
		if err != nil {
			return err
		}
		e, err := bootstrap(cmd.Context())
		if err != nil {
			return err
		}
		defer e.Close()

		apps, err := e.pipeline.Load(cmd.Context(), e.cfg.Contract)
		if err != nil {
			return err
		}
		apps = gallery.Sort(apps, order)
		if asJSON {
			return writeJSON(cmd.OutOrStdout(), apps)
		}
		printApps(cmd.OutOrStdout(), apps)
		return nil
	},
}

var contestCmd = &cobra.Command{
	Use:   "contest",
	Short: "Print the contest's scalar fields",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := bootstrap(cmd.Context())
		if err != nil {
			return err
		}
		defer e.Close()

		md, err := e.pipeline.Metadata(cmd.Context(), e.cfg.Contract)
		if err != nil {
			return err
		}
		printMetadata(cmd.OutOrStdout(), e.cfg.Contract, md)
		return nil
	},
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printApps(w io.Writer, apps []normalize.CryptoApp) {
	fmt.Fprintf(w, "Total proposals: %d\n", len(apps))
	for _, a := range apps {
		fmt.Fprintf(w, "\n#%s %s\n", a.ID, a.Name)
		fmt.Fprintf(w, "  author:   %s\n", a.Author)
		fmt.Fprintf(w, "  likes:    %s\n", a.Likes)
		fmt.Fprintf(w, "  dislikes: %s\n", a.Dislikes)
		fmt.Fprintf(w, "  comments: %d\n", len(a.Comments))
		if a.Preview != "" {
			fmt.Fprintf(w, "  %s\n", strings.ReplaceAll(a.Preview, "\n", " "))
		}
	}
}

func printMetadata(w io.Writer, contract string, md contest.Metadata) {
	fmt.Fprintf(w, "Contract:          %s\n", contract)
	fmt.Fprintf(w, "Name:              %s\n", md.Name)
	fmt.Fprintf(w, "Prompt:            %s\n", normalize.Truncate(normalize.ExtractText(normalize.Body(normalize.Parse(md.Prompt))), normalize.PreviewRunes))
	fmt.Fprintf(w, "Cost to propose:   %s\n", normalize.FormatVotes(md.CostToPropose))
	fmt.Fprintf(w, "Cost to vote:      %s\n", normalize.FormatVotes(md.CostToVote))
	fmt.Fprintf(w, "Voting period:     %ss\n", number(md.VotingPeriod))
	fmt.Fprintf(w, "Contest start:     %s\n", unix(md.ContestStart))
	fmt.Fprintf(w, "Contest deadline:  %s\n", unix(md.ContestDeadline))
	fmt.Fprintf(w, "Total votes cast:  %s\n", normalize.FormatVotes(md.TotalVotesCast))
	fmt.Fprintf(w, "State:             %s\n", md.State)
}
