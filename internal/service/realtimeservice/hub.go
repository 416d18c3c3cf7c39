package realtimeservice

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

const observerBuffer = 32

// Event is a single realtime message as seen by an observer connection.
type Event struct {
	Name string `json:"event"`
	Data any    `json:"data"`
}

type ObserverInfo struct {
	ObserverID  string
	UserID      string
	UserName    string
	ConnectedAt time.Time
}

type observer struct {
	info      ObserverInfo
	sessionID string
	ch        chan Event
}

type room struct {
	observers    map[string]*observer
	lastActivity time.Time
	createdAt    time.Time
}

// Hub tracks which observers watch which session and fans events out to
// them. Delivery is per-observer best effort: a full buffer drops the
// event for that observer only.
type Hub struct {
	mu        sync.RWMutex
	rooms     map[string]*room
	observers map[string]*observer
}

func NewHub() *Hub {
	return &Hub{
		rooms:     make(map[string]*room),
		observers: make(map[string]*observer),
	}
}

// Subscribe registers an observer on a session and returns its event
// channel. Re-subscribing an existing observer id moves it to the new
// session.
func (h *Hub) Subscribe(sessionID string, info ObserverInfo) <-chan Event {
	h.mu.Lock()
	defer h.mu.Unlock()

	if existing, ok := h.observers[info.ObserverID]; ok {
		h.removeLocked(existing)
	}

	r, ok := h.rooms[sessionID]
	if !ok {
		now := time.Now()
		r = &room{observers: make(map[string]*observer), lastActivity: now, createdAt: now}
		h.rooms[sessionID] = r
	}

	obs := &observer{
		info:      info,
		sessionID: sessionID,
		ch:        make(chan Event, observerBuffer),
	}
	r.observers[info.ObserverID] = obs
	r.lastActivity = time.Now()
	h.observers[info.ObserverID] = obs

	return obs.ch
}

// Track creates an empty presence entry for a freshly created session so
// it shows up in stats before anyone connects. The sweeper reclaims it if
// nobody ever does.
func (h *Hub) Track(sessionID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.rooms[sessionID]; !ok {
		now := time.Now()
		h.rooms[sessionID] = &room{observers: make(map[string]*observer), lastActivity: now, createdAt: now}
	}
}

// Unsubscribe drops the observer and reports which session it was
// watching. The presence entry is evicted once the room empties.
func (h *Hub) Unsubscribe(observerID string) (string, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	obs, ok := h.observers[observerID]
	if !ok {
		return "", false
	}
	h.removeLocked(obs)
	return obs.sessionID, true
}

func (h *Hub) removeLocked(obs *observer) {
	delete(h.observers, obs.info.ObserverID)
	if r, ok := h.rooms[obs.sessionID]; ok {
		delete(r.observers, obs.info.ObserverID)
		r.lastActivity = time.Now()
		if len(r.observers) == 0 {
			delete(h.rooms, obs.sessionID)
			zap.L().Debug("presence entry evicted", zap.String("sessionID", obs.sessionID))
		}
	}
	close(obs.ch)
}

// Publish delivers the event to every observer of the session.
func (h *Hub) Publish(sessionID string, event Event) {
	h.PublishExcept(sessionID, "", event)
}

// PublishExcept delivers to every observer of the session except the
// named one, mirroring a sender broadcasting to the rest of its room.
func (h *Hub) PublishExcept(sessionID string, exceptObserverID string, event Event) {
	h.mu.Lock()
	r, ok := h.rooms[sessionID]
	if !ok {
		h.mu.Unlock()
		return
	}
	r.lastActivity = time.Now()
	targets := make([]*observer, 0, len(r.observers))
	for id, obs := range r.observers {
		if id == exceptObserverID {
			continue
		}
		targets = append(targets, obs)
	}
	h.mu.Unlock()

	for _, obs := range targets {
		select {
		case obs.ch <- event:
		default:
			zap.L().Warn("observer buffer full, dropping event",
				zap.String("sessionID", sessionID),
				zap.String("observerID", obs.info.ObserverID),
				zap.String("event", event.Name),
			)
		}
	}
}

// Send delivers an event to a single observer.
func (h *Hub) Send(observerID string, event Event) {
	h.mu.RLock()
	obs, ok := h.observers[observerID]
	h.mu.RUnlock()
	if !ok {
		return
	}
	select {
	case obs.ch <- event:
	default:
		zap.L().Warn("observer buffer full, dropping event", zap.String("observerID", observerID), zap.String("event", event.Name))
	}
}

func (h *Hub) ObserverCount(sessionID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if r, ok := h.rooms[sessionID]; ok {
		return len(r.observers)
	}
	return 0
}

func (h *Hub) Members(sessionID string) []ObserverInfo {
	h.mu.RLock()
	defer h.mu.RUnlock()
	r, ok := h.rooms[sessionID]
	if !ok {
		return nil
	}
	members := make([]ObserverInfo, 0, len(r.observers))
	for _, obs := range r.observers {
		members = append(members, obs.info)
	}
	return members
}

func (h *Hub) LastActivity(sessionID string) (time.Time, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if r, ok := h.rooms[sessionID]; ok {
		return r.lastActivity, true
	}
	return time.Time{}, false
}

// Stats reports tracked sessions and connected observers.
func (h *Hub) Stats() (sessions int, observers int) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms), len(h.observers)
}

// Sweep evicts presence entries that have no observers and have been
// idle past the threshold. Persisted sessions are untouched.
func (h *Hub) Sweep(idleThreshold time.Duration) int {
	h.mu.Lock()
	defer h.mu.Unlock()

	evicted := 0
	cutoff := time.Now().Add(-idleThreshold)
	for sessionID, r := range h.rooms {
		if len(r.observers) == 0 && r.lastActivity.Before(cutoff) {
			delete(h.rooms, sessionID)
			evicted++
			zap.L().Info("idle presence entry swept", zap.String("sessionID", sessionID))
		}
	}
	return evicted
}

// StartSweeper runs Sweep on an interval until the context is canceled.
func (h *Hub) StartSweeper(ctx context.Context, interval time.Duration, idleThreshold time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				h.Sweep(idleThreshold)
			}
		}
	}()
}

// Shutdown tells every observer the server is going away and drops them.
func (h *Hub) Shutdown() {
	h.mu.Lock()
	defer h.mu.Unlock()

	event := Event{Name: "server-shutdown", Data: map[string]any{
		"message":   "server shutting down, reconnect shortly",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}}
	for _, obs := range h.observers {
		select {
		case obs.ch <- event:
		default:
		}
		close(obs.ch)
	}
	h.observers = make(map[string]*observer)
	h.rooms = make(map[string]*room)
}
