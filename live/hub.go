// Package live pushes competition events (leaderboard rebuilds, new
// assignment runs, fresh scores) to websocket subscribers. Clients join a
// room per competition; the hub fans events out to the room.
package live

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
)

const (
	EventLeaderboardUpdated = "LEADERBOARD_UPDATED"
	EventAssignmentsUpdated = "ASSIGNMENTS_UPDATED"
	EventScoresUpdated      = "SCORES_UPDATED"
)

type Event struct {
	Type          string      `json:"type"`
	CompetitionID int         `json:"competition_id"`
	Payload       interface{} `json:"payload,omitempty"`
}

type Hub struct {
	Register   chan *Client
	Unregister chan *Client

	rooms  map[string]map[*Client]bool
	mu     sync.RWMutex
	logger *slog.Logger
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		rooms:      make(map[string]map[*Client]bool),
		logger:     logger,
	}
}

func RoomForCompetition(competitionID int) string {
	return fmt.Sprintf("competition_%d", competitionID)
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			h.mu.Lock()
			if _, ok := h.rooms[client.Room]; !ok {
				h.rooms[client.Room] = make(map[*Client]bool)
			}
			h.rooms[client.Room][client] = true
			h.logger.Debug("websocket client joined", slog.String("room", client.Room), slog.Int("clients", len(h.rooms[client.Room])))
			h.mu.Unlock()

		case client := <-h.Unregister:
			h.mu.Lock()
			if room, ok := h.rooms[client.Room]; ok {
				if _, okClient := room[client]; okClient {
					client.closeSend()
					delete(room, client)
					if len(room) == 0 {
						delete(h.rooms, client.Room)
					}
				}
			}
			h.mu.Unlock()
		}
	}
}

// BroadcastEvent marshals the event and sends it to every client in the
// competition's room. Slow clients are skipped, not waited on.
func (h *Hub) BroadcastEvent(event Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	room, ok := h.rooms[RoomForCompetition(event.CompetitionID)]
	if !ok {
		return
	}

	message, err := json.Marshal(event)
	if err != nil {
		h.logger.Error("failed to marshal live event", slog.Any("error", err))
		return
	}

	for client := range room {
		client.trySend(message)
	}
}
