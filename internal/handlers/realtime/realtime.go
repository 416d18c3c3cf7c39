package realtime

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/santiagotarnoski/qrsplit/internal/dto"
	realtimeservice "github.com/santiagotarnoski/qrsplit/internal/service/realtimeservice"
	"github.com/santiagotarnoski/qrsplit/pkg/utils"
	"go.uber.org/zap"
)

const (
	writeWait      = 10 * time.Second
	maxMessageSize = 4096
)

type Service interface {
	SyncPayload(ctx context.Context, sessionID string) (*realtimeservice.UpdatePayload, error)
}

type RealtimeHandler struct {
	hub      *realtimeservice.Hub
	service  Service
	upgrader websocket.Upgrader
}

func New(hub *realtimeservice.Hub, service Service) *RealtimeHandler {
	return &RealtimeHandler{
		hub:     hub,
		service: service,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Cross-origin policy is enforced at the HTTP layer.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

type clientMessage struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

type joinPayload struct {
	SessionID string `json:"sessionId"`
	UserID    string `json:"userId"`
	UserName  string `json:"userName"`
}

// ServeWS upgrades the connection and speaks the session event protocol:
// join-session subscribes the connection to a session's broadcasts,
// leave-session (or closing) unsubscribes it, ping answers pong.
func (h *RealtimeHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		zap.L().Error("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()
	conn.SetReadLimit(maxMessageSize)

	observerID := uuid.NewString()
	joined := false
	var pumpDone chan struct{}

	defer func() {
		if joined {
			h.dropObserver(observerID)
			<-pumpDone
		}
	}()

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				zap.L().Debug("websocket read failed", zap.String("observerID", observerID), zap.Error(err))
			}
			return
		}

		var msg clientMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			zap.L().Debug("unparseable websocket message", zap.String("observerID", observerID), zap.Error(err))
			continue
		}

		switch msg.Event {
		case "join-session":
			var join joinPayload
			if err := json.Unmarshal(msg.Data, &join); err != nil || join.SessionID == "" {
				continue
			}
			if joined {
				// The connection allows a single writer; the old pump must
				// exit before the new subscription starts its own.
				h.dropObserver(observerID)
				<-pumpDone
			}
			pumpDone = h.joinSession(r.Context(), conn, observerID, join)
			joined = true

		case "leave-session":
			if joined {
				h.dropObserver(observerID)
				<-pumpDone
				joined = false
			}

		case "ping":
			pong := realtimeservice.Event{Name: "pong", Data: map[string]any{
				"timestamp": time.Now().UTC().Format(time.RFC3339),
			}}
			if joined {
				h.hub.Send(observerID, pong)
			} else {
				// No writer pump yet, direct write is safe.
				conn.SetWriteDeadline(time.Now().Add(writeWait))
				if err := conn.WriteJSON(pong); err != nil {
					return
				}
			}

		default:
			zap.L().Debug("unknown websocket event", zap.String("event", msg.Event))
		}
	}
}

// joinSession subscribes the observer and starts the connection's writer
// pump. The returned channel closes when the pump exits; callers wait on it
// before starting another pump for the same connection.
func (h *RealtimeHandler) joinSession(ctx context.Context, conn *websocket.Conn, observerID string, join joinPayload) chan struct{} {
	events := h.hub.Subscribe(join.SessionID, realtimeservice.ObserverInfo{
		ObserverID:  observerID,
		UserID:      join.UserID,
		UserName:    join.UserName,
		ConnectedAt: time.Now(),
	})
	done := make(chan struct{})
	go func() {
		defer close(done)
		writePump(conn, events)
	}()

	h.hub.PublishExcept(join.SessionID, observerID, realtimeservice.Event{
		Name: "user-connected",
		Data: map[string]any{
			"userId":         join.UserID,
			"userName":       join.UserName,
			"connectedUsers": h.hub.ObserverCount(join.SessionID),
			"timestamp":      time.Now().UTC().Format(time.RFC3339),
		},
	})

	sync, err := h.service.SyncPayload(ctx, join.SessionID)
	if err != nil {
		zap.L().Error("can't build session sync", zap.String("sessionID", join.SessionID), zap.Error(err))
		return done
	}
	if sync != nil {
		h.hub.Send(observerID, realtimeservice.Event{Name: "session-sync", Data: sync})
	}

	zap.L().Info("observer joined session",
		zap.String("sessionID", join.SessionID),
		zap.String("observerID", observerID),
		zap.String("userId", join.UserID),
	)
	return done
}

func (h *RealtimeHandler) dropObserver(observerID string) {
	sessionID, ok := h.hub.Unsubscribe(observerID)
	if !ok {
		return
	}
	h.hub.Publish(sessionID, realtimeservice.Event{
		Name: "user-disconnected",
		Data: map[string]any{
			"connectedUsers": h.hub.ObserverCount(sessionID),
			"timestamp":      time.Now().UTC().Format(time.RFC3339),
		},
	})
	zap.L().Info("observer left session", zap.String("sessionID", sessionID), zap.String("observerID", observerID))
}

// writePump forwards hub events to the connection. It exits when the hub
// closes the observer channel; the read loop owns closing the socket.
func writePump(conn *websocket.Conn, events <-chan realtimeservice.Event) {
	for event := range events {
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteJSON(event); err != nil {
			zap.L().Debug("websocket write failed", zap.Error(err))
			return
		}
	}
}

// GetConnectedUsers godoc
//
//	@Summary		List a session's connected observers
//	@Tags			Realtime
//	@Produce		json
//	@Param			sessionID	path		string	true	"Session id"
//	@Success		200			{object}	dto.ConnectedUsersResponseDTO
//	@Router			/api/sessions/{sessionID}/connected-users [get]
func (h *RealtimeHandler) GetConnectedUsers(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	members := h.hub.Members(sessionID)
	response := dto.ConnectedUsersResponseDTO{
		ConnectedUsers: len(members),
		Users:          make([]dto.ConnectedUserDTO, 0, len(members)),
	}
	for _, member := range members {
		response.Users = append(response.Users, dto.ConnectedUserDTO{
			ObserverID:  member.ObserverID,
			UserID:      member.UserID,
			UserName:    member.UserName,
			ConnectedAt: member.ConnectedAt,
		})
	}
	if lastActivity, tracked := h.hub.LastActivity(sessionID); tracked {
		response.IsActive = true
		response.LastActivity = &lastActivity
	}
	utils.RespondWithJSON(w, http.StatusOK, response)
}
