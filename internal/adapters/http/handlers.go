package http

import (
	"net/http"

	"github.com/dkeye/Callboard/internal/adapters/rtc"
	"github.com/dkeye/Callboard/internal/app"
	"github.com/dkeye/Callboard/internal/app/orch"
	"github.com/gin-gonic/gin"
)

func handleHealth(o *orch.Orchestrator) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":       "ok",
			"participants": o.Registry.Len(),
		})
	}
}

// handleUsers serves the same presence snapshot users-update carries.
func handleUsers(o *orch.Orchestrator) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, app.Snapshot(o.Registry.All()))
	}
}

func handleRooms(o *orch.Orchestrator) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"rooms": o.Registry.Rooms()})
	}
}

func handleICEServers(ice *rtc.ICEProvider) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"iceServers": rtc.ToJSON(ice.Servers())})
	}
}
