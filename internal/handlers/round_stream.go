package handlers

import (
	"net/http"
	"strconv"
	"time"

	"launchcontrol/internal/models"
	dbconfig "launchcontrol/pkg/config"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"
)

var streamUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Browser clients connect from the app origin; the gateway enforces it.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// RoundStatsFrame is one pushed update of a round's cached totals.
type RoundStatsFrame struct {
	RoundID           uint   `json:"round_id"`
	Status            string `json:"status"`
	Result            string `json:"result"`
	TotalRaised       string `json:"total_raised"`
	TotalParticipants int64  `json:"total_participants"`
	Timestamp         int64  `json:"timestamp"`
}

// StreamRoundStats upgrades to a websocket and pushes the round's totals
// every few seconds until the client disconnects or the round finalizes.
func StreamRoundStats(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID format"})
		return
	}

	var round models.Round
	if err := dbconfig.DB.First(&round, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Record not found"})
		return
	}

	conn, err := streamUpgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Errorf("Failed to upgrade round stream: %v", err)
		return
	}
	defer conn.Close()

	ticker := time.NewTicker(3 * time.Second)
	defer ticker.Stop()

	// Drain client frames so pings and close messages are processed.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		if err := dbconfig.DB.First(&round, id).Error; err != nil {
			log.Errorf("round stream %d: reload failed: %v", id, err)
			return
		}
		frame := RoundStatsFrame{
			RoundID:           round.ID,
			Status:            round.Status,
			Result:            round.Result,
			TotalRaised:       round.TotalRaised,
			TotalParticipants: round.TotalParticipants,
			Timestamp:         time.Now().Unix(),
		}
		if err := conn.WriteJSON(frame); err != nil {
			return
		}
		if round.Status == models.RoundStatusFinalized {
			return
		}

		select {
		case <-done:
			return
		case <-ticker.C:
		}
	}
}
