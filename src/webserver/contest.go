package webserver

import (
	"math/big"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stake-plus/contest-radar/src/normalize"
)

type Contest struct {
	gallery  Gallery
	metadata MetadataSource
	now      func() time.Time
}

func NewContest(g Gallery, md MetadataSource, now func() time.Time) Contest {
	return Contest{gallery: g, metadata: md, now: now}
}

// Get reports the scalar fields of the current contract.
func (h Contest) Get(c *gin.Context) {
	if h.metadata == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"err": "metadata unavailable"})
		return
	}
	contract := h.gallery.Contract()
	md, err := h.metadata.Metadata(c.Request.Context(), contract)
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusBadGateway, gin.H{"err": "error loading data"})
		return
	}

	deadline := unixTime(md.ContestDeadline)
	resp := gin.H{
		"contract":        contract,
		"name":            md.Name,
		"prompt":          md.Prompt,
		"costToPropose":   normalize.FormatVotes(md.CostToPropose),
		"costToVote":      normalize.FormatVotes(md.CostToVote),
		"votingPeriod":    seconds(md.VotingPeriod),
		"contestStart":    rfc3339(unixTime(md.ContestStart)),
		"contestDeadline": rfc3339(deadline),
		"totalVotesCast":  normalize.FormatVotes(md.TotalVotesCast),
		"state":           md.State.String(),
	}
	if !deadline.IsZero() {
		left := deadline.Sub(h.now())
		if left < 0 {
			left = 0
		}
		resp["secondsLeft"] = int64(left / time.Second)
	}
	c.JSON(http.StatusOK, resp)
}

func unixTime(v *big.Int) time.Time {
	if v == nil || v.Sign() <= 0 || !v.IsInt64() {
		return time.Time{}
	}
	return time.Unix(v.Int64(), 0).UTC()
}

func rfc3339(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}

func seconds(v *big.Int) int64 {
	if v == nil || !v.IsInt64() {
		return 0
	}
	return v.Int64()
}
