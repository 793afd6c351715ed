package webserver

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stake-plus/contest-radar/src/contest"
	"github.com/stake-plus/contest-radar/src/gallery"
)

type Apps struct {
	gallery   Gallery
	chain     contest.Chain
	votingURL string
}

func NewApps(g Gallery, chain contest.Chain, votingURL string) Apps {
	return Apps{gallery: g, chain: chain, votingURL: votingURL}
}

// List returns the latest snapshot sorted by likes.
func (a Apps) List(c *gin.Context) {
	order, err := gallery.ParseSortOrder(c.Query("sort"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
		return
	}
	snap := a.gallery.Snapshot()
	resp := gin.H{
		"contract":   snap.Contract,
		"chain":      snap.Chain,
		"sort":       order,
		"sortLabel":  order.Label(),
		"toggle":     order.Toggle(),
		"loadedAt":   snap.LoadedAt,
		"generation": snap.Generation,
		"apps":       gallery.Sort(snap.Apps, order),
	}
	if snap.Err != "" {
		resp["err"] = snap.Err
	}
	c.JSON(http.StatusOK, resp)
}

func (a Apps) Get(c *gin.Context) {
	app, ok := a.gallery.Find(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"err": "app not found"})
		return
	}
	c.JSON(http.StatusOK, app)
}

// Like sends the client to the external voting page; nothing is recorded here.
func (a Apps) Like(c *gin.Context) {
	snap := a.gallery.Snapshot()
	if _, ok := snap.Find(c.Param("id")); !ok {
		c.JSON(http.StatusNotFound, gin.H{"err": "app not found"})
		return
	}
	c.Redirect(http.StatusFound, fmt.Sprintf("%s/%s/%s", a.votingURL, a.chain.Slug, snap.Contract))
}
