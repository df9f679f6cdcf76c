package apiserver

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/netrixframework/dtnroute/log"
	"github.com/netrixframework/dtnroute/types"
)

// maxSteps bounds the ticks a single `/step` request may advance
const maxSteps = 10000

func (srv *APIServer) handleNodes(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"nodes": srv.world.Nodes(),
	})
}

func (srv *APIServer) handleNodeGet(c *gin.Context) {
	nodeID, ok := c.Params.Get("node")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing node param"})
		return
	}
	node, ok := srv.world.Node(types.Address(nodeID))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "node does not exist"})
		return
	}
	c.JSON(http.StatusOK, node)
}

func (srv *APIServer) handleNodeValues(c *gin.Context) {
	nodeID, ok := c.Params.Get("node")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing node param"})
		return
	}
	values, ok := srv.world.Values(types.Address(nodeID))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "node does not exist"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"node":   nodeID,
		"values": values,
	})
}

func (srv *APIServer) handleDeliveries(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"deliveries": srv.world.Deliveries(),
	})
}

func (srv *APIServer) handleReport(c *gin.Context) {
	c.JSON(http.StatusOK, srv.world.Report())
}

// handleStep advances the world by `ticks` steps, one when the query is absent
func (srv *APIServer) handleStep(c *gin.Context) {
	ticks := 1
	if raw := c.Query("ticks"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxSteps {
			srv.Logger.With(log.LogParams{"ticks": raw}).Debug("Bad step request")
			c.JSON(http.StatusBadRequest, gin.H{"error": "ticks should be a positive integer"})
			return
		}
		ticks = n
	}
	for i := 0; i < ticks; i++ {
		srv.world.Step()
	}
	c.JSON(http.StatusOK, srv.world.Report())
}
