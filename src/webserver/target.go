package webserver

import (
	"context"
	"net/http"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Target struct {
	gallery Gallery
	base    context.Context
	logger  *zap.Logger
}

func NewTarget(g Gallery, base context.Context, logger *zap.Logger) Target {
	return Target{gallery: g, base: base, logger: logger}
}

// Set retargets the gallery to another contract and reloads asynchronously.
func (t Target) Set(c *gin.Context) {
	var req struct {
		Address string `json:"address" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
		return
	}
	if !common.IsHexAddress(req.Address) {
		c.JSON(http.StatusBadRequest, gin.H{"err": "invalid contract address"})
		return
	}
	addr := common.HexToAddress(req.Address).Hex()
	gen := t.gallery.Switch(t.base, addr)
	t.logger.Info("contract switched",
		zap.String("contract", addr),
		zap.Uint64("generation", gen),
		zap.String("request_id", c.GetString("request_id")))
	c.JSON(http.StatusAccepted, gin.H{"contract": addr, "generation": gen})
}
