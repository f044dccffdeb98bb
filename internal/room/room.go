// Package room implements the race room registry and its lifecycle rules.
package room

import (
	"errors"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/hello97-gg/hallotype/internal/model"
)

// Named failures surfaced to callers joining or creating rooms.
var (
	ErrRoomNotFound       = errors.New("room not found")
	ErrRoomAlreadyStarted = errors.New("room already started")
	ErrRoomCreationFailed = errors.New("room creation failed")
	ErrNotHost            = errors.New("only the host may do that")
	ErrPlayerNotFound     = errors.New("player not in room")
)

// Room codes are short and human-shareable. The alphabet drops O and 0
// to avoid lookalike confusion.
const (
	codeAlphabet  = "ABCDEFGHIJKLMNPQRSTUVWXYZ123456789"
	codeLength    = 5
	createRetries = 10
)

// Manager is the authoritative registry of live rooms.
type Manager struct {
	mu    sync.Mutex
	rooms map[string]*model.RoomState
	rnd   *rand.Rand
	now   func() time.Time
}

// NewManager returns a registry seeded from the wall clock.
func NewManager() *Manager {
	return NewManagerWith(rand.NewSource(time.Now().UnixNano()), time.Now)
}

// NewManagerWith allows deterministic codes and timestamps in tests.
func NewManagerWith(src rand.Source, now func() time.Time) *Manager {
	return &Manager{
		rooms: map[string]*model.RoomState{},
		rnd:   rand.New(src),
		now:   now,
	}
}

func (m *Manager) code() string {
	var b strings.Builder
	for i := 0; i < codeLength; i++ {
		b.WriteByte(codeAlphabet[m.rnd.Intn(len(codeAlphabet))])
	}
	return b.String()
}

// Create allocates a room with a fresh collision-checked code and the host
// as its first player. Exhausting the retry budget fails with
// ErrRoomCreationFailed.
func (m *Manager) Create(hostID, displayName string, timeLimit int, tier model.Tier, words []string) (model.RoomState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var id string
	for i := 0; i < createRetries; i++ {
		candidate := m.code()
		if _, taken := m.rooms[candidate]; !taken {
			id = candidate
			break
		}
	}
	if id == "" {
		return model.RoomState{}, ErrRoomCreationFailed
	}

	r := &model.RoomState{
		RoomID:    id,
		HostID:    hostID,
		Status:    model.RoomWaiting,
		CreatedAt: m.now(),
		TimeLimit: timeLimit,
		Tier:      tier,
		Words:     words,
		Players: map[string]model.PlayerProgress{
			hostID: {ID: hostID, DisplayName: displayName, Status: model.PlayerJoined},
		},
	}
	m.rooms[id] = r
	return snapshot(r), nil
}

// Join adds a player to a waiting room.
func (m *Manager) Join(roomID, playerID, displayName string) (model.RoomState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.rooms[roomID]
	if !ok {
		return model.RoomState{}, ErrRoomNotFound
	}
	if r.Status != model.RoomWaiting {
		return model.RoomState{}, ErrRoomAlreadyStarted
	}
	r.Players[playerID] = model.PlayerProgress{
		ID:          playerID,
		DisplayName: displayName,
		Status:      model.PlayerJoined,
	}
	return snapshot(r), nil
}

// Start moves a waiting room to running. Host only, and the room must hold
// at least one player. The recorded start instant anchors every client's
// clock.
func (m *Manager) Start(roomID, callerID string) (model.RoomState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.rooms[roomID]
	if !ok {
		return model.RoomState{}, ErrRoomNotFound
	}
	if callerID != r.HostID {
		return model.RoomState{}, ErrNotHost
	}
	if r.Status != model.RoomWaiting {
		return model.RoomState{}, ErrRoomAlreadyStarted
	}
	if len(r.Players) == 0 {
		return model.RoomState{}, ErrPlayerNotFound
	}
	start := m.now()
	r.Status = model.RoomRunning
	r.StartTime = &start
	for id, p := range r.Players {
		p.Status = model.PlayerTyping
		r.Players[id] = p
	}
	return snapshot(r), nil
}

// UpdateProgress writes one player's replicated race fields. Only that
// player's entry changes, never the rest of the room.
func (m *Manager) UpdateProgress(roomID, playerID string, status model.PlayerStatus, wpm, accuracy, progress int) (model.RoomState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.rooms[roomID]
	if !ok {
		return model.RoomState{}, ErrRoomNotFound
	}
	p, ok := r.Players[playerID]
	if !ok {
		return model.RoomState{}, ErrPlayerNotFound
	}
	p.Status = status
	p.WPM = wpm
	p.Accuracy = accuracy
	p.Progress = progress
	r.Players[playerID] = p
	return snapshot(r), nil
}

// CheckFinished promotes a running room to finished when every player has
// reported completion. Host only; other callers are a no-op because the
// aggregate transition is host-authoritative.
func (m *Manager) CheckFinished(roomID, callerID string) (model.RoomState, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.rooms[roomID]
	if !ok {
		return model.RoomState{}, false, ErrRoomNotFound
	}
	if callerID != r.HostID || r.Status != model.RoomRunning {
		return snapshot(r), false, nil
	}
	for _, p := range r.Players {
		if p.Status != model.PlayerFinished {
			return snapshot(r), false, nil
		}
	}
	r.Status = model.RoomFinished
	return snapshot(r), true, nil
}

// FinishByHost ends a running room when the host's own timer expires,
// regardless of peer progress.
func (m *Manager) FinishByHost(roomID, callerID string) (model.RoomState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.rooms[roomID]
	if !ok {
		return model.RoomState{}, ErrRoomNotFound
	}
	if callerID != r.HostID {
		return model.RoomState{}, ErrNotHost
	}
	if r.Status == model.RoomRunning {
		r.Status = model.RoomFinished
	}
	return snapshot(r), nil
}

// Leave removes a player. The room is deleted when the host leaves or when
// the leaving player was the last occupant; otherwise the room persists
// without them. Returns whether the room was deleted.
func (m *Manager) Leave(roomID, playerID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.rooms[roomID]
	if !ok {
		return false, ErrRoomNotFound
	}
	if _, ok := r.Players[playerID]; !ok {
		return false, ErrPlayerNotFound
	}
	if playerID == r.HostID || len(r.Players) == 1 {
		delete(m.rooms, roomID)
		return true, nil
	}
	delete(r.Players, playerID)
	return false, nil
}

// Get returns a copy of a room's state.
func (m *Manager) Get(roomID string) (model.RoomState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.rooms[roomID]
	if !ok {
		return model.RoomState{}, ErrRoomNotFound
	}
	return snapshot(r), nil
}

// Len reports how many rooms are live.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rooms)
}

// snapshot copies the room so callers never hold a reference into the
// registry's mutable state.
func snapshot(r *model.RoomState) model.RoomState {
	out := *r
	out.Players = make(map[string]model.PlayerProgress, len(r.Players))
	for id, p := range r.Players {
		out.Players[id] = p
	}
	out.Words = append([]string(nil), r.Words...)
	if r.StartTime != nil {
		t := *r.StartTime
		out.StartTime = &t
	}
	return out
}
