// Package server hosts race rooms over websockets.
package server

import (
	"errors"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/hello97-gg/hallotype/internal/model"
	"github.com/hello97-gg/hallotype/internal/race"
	"github.com/hello97-gg/hallotype/internal/room"
	"github.com/hello97-gg/hallotype/internal/words"
)

// raceWordCount is how many words a room's shared text holds. Races are
// time-boxed, so the text only needs to outlast the fastest typist.
const raceWordCount = 200

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// client is one connected race participant.
type client struct {
	conn    *websocket.Conn
	id      string
	name    string
	roomID  string
	writeMu sync.Mutex
}

func (c *client) send(env race.Envelope) {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if err := c.conn.WriteJSON(env); err != nil {
		log.Printf("write to %s failed: %v", c.name, err)
	}
}

// Server owns the room registry and the connected clients.
type Server struct {
	rooms *room.Manager
	gen   *words.Generator

	mu      sync.Mutex
	clients map[string]map[string]*client // roomID -> playerID -> client
}

// New returns a server with an empty registry.
func New() *Server {
	return &Server{
		rooms:   room.NewManager(),
		gen:     words.New(),
		clients: map[string]map[string]*client{},
	}
}

// Handler returns the HTTP mux serving the race endpoint.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWS)
	return mux
}

// handleWS upgrades a connection and runs its read loop.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("username")
	if name == "" {
		http.Error(w, "missing username", http.StatusBadRequest)
		return
	}
	id := r.URL.Query().Get("uid")
	if id == "" {
		id = uuid.NewString()
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade error: %v", err)
		return
	}

	c := &client{conn: conn, id: id, name: name}
	go s.readLoop(c)
}

func (s *Server) readLoop(c *client) {
	defer s.disconnect(c)

	for {
		var env race.Envelope
		if err := c.conn.ReadJSON(&env); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("websocket error for %s: %v", c.name, err)
			}
			return
		}

		switch env.Type {
		case race.MsgCreateRoom:
			s.handleCreate(c, env)
		case race.MsgJoinRoom:
			s.handleJoin(c, env)
		case race.MsgStartRoom:
			s.handleStart(c, env)
		case race.MsgProgress:
			s.handleProgress(c, env)
		case race.MsgTimeout:
			s.handleTimeout(c)
		case race.MsgLeaveRoom:
			s.leaveRoom(c)
		default:
			c.send(race.Envelope{Type: race.MsgError, Error: "unknown message type " + env.Type})
		}
	}
}

func (s *Server) handleCreate(c *client, env race.Envelope) {
	if c.roomID != "" {
		c.send(race.Envelope{Type: race.MsgError, Error: "already in a room"})
		return
	}
	timeLimit := env.TimeLimit
	if !model.ValidTimeLimit(timeLimit) {
		timeLimit = model.DefaultTimeLimit
	}
	tier := env.Tier
	if !model.ValidTier(tier) {
		tier = model.DefaultTier
	}
	state, err := s.rooms.Create(c.id, c.name, timeLimit, tier, s.gen.Generate(raceWordCount, tier))
	if err != nil {
		c.send(race.Envelope{Type: race.MsgError, Error: err.Error()})
		return
	}
	s.seat(c, state.RoomID)
	log.Printf("room %s created by %s", state.RoomID, c.name)
	s.broadcastState(state)
}

func (s *Server) handleJoin(c *client, env race.Envelope) {
	if c.roomID != "" {
		c.send(race.Envelope{Type: race.MsgError, Error: "already in a room"})
		return
	}
	state, err := s.rooms.Join(env.RoomID, c.id, c.name)
	if err != nil {
		c.send(race.Envelope{Type: race.MsgError, Error: err.Error()})
		return
	}
	s.seat(c, state.RoomID)
	log.Printf("%s joined room %s", c.name, state.RoomID)
	s.broadcastState(state)
}

func (s *Server) handleStart(c *client, env race.Envelope) {
	state, err := s.rooms.Start(c.roomID, c.id)
	if err != nil {
		c.send(race.Envelope{Type: race.MsgError, Error: err.Error()})
		return
	}
	log.Printf("room %s started", state.RoomID)
	s.broadcastState(state)
}

func (s *Server) handleProgress(c *client, env race.Envelope) {
	if env.Update == nil {
		return
	}
	u := *env.Update
	state, err := s.rooms.UpdateProgress(c.roomID, c.id, u.Status, u.WPM, u.Accuracy, u.Progress)
	if err != nil {
		c.send(race.Envelope{Type: race.MsgError, Error: err.Error()})
		return
	}
	// The aggregate finished transition belongs to the host. Evaluate it
	// on their behalf whenever any player's progress lands.
	if done, fin := s.checkFinished(state); done {
		state = fin
	}
	s.broadcastState(state)
}

func (s *Server) checkFinished(state model.RoomState) (bool, model.RoomState) {
	fin, done, err := s.rooms.CheckFinished(state.RoomID, state.HostID)
	if err != nil {
		return false, state
	}
	if done {
		log.Printf("room %s finished", state.RoomID)
	}
	return done, fin
}

// handleTimeout ends the room when the host's own timer expires.
func (s *Server) handleTimeout(c *client) {
	state, err := s.rooms.FinishByHost(c.roomID, c.id)
	if err != nil {
		// Guests report their own expiry only through progress updates.
		return
	}
	log.Printf("room %s timed out", state.RoomID)
	s.broadcastState(state)
}

func (s *Server) seat(c *client, roomID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.roomID = roomID
	seats := s.clients[roomID]
	if seats == nil {
		seats = map[string]*client{}
		s.clients[roomID] = seats
	}
	seats[c.id] = c
}

func (s *Server) leaveRoom(c *client) {
	if c.roomID == "" {
		return
	}
	roomID := c.roomID

	deleted, err := s.rooms.Leave(roomID, c.id)
	if err != nil && !errors.Is(err, room.ErrRoomNotFound) {
		log.Printf("leave %s: %v", roomID, err)
	}

	s.mu.Lock()
	if seats := s.clients[roomID]; seats != nil {
		delete(seats, c.id)
		if len(seats) == 0 {
			delete(s.clients, roomID)
		}
	}
	c.roomID = ""
	s.mu.Unlock()

	if deleted {
		log.Printf("room %s deleted", roomID)
		s.broadcast(roomID, race.Envelope{Type: race.MsgRoomDeleted, RoomID: roomID, Time: time.Now()})
		s.closeRoomClients(roomID)
		return
	}
	if state, err := s.rooms.Get(roomID); err == nil {
		s.broadcastState(state)
	}
}

// closeRoomClients drops every remaining connection of a deleted room.
func (s *Server) closeRoomClients(roomID string) {
	s.mu.Lock()
	seats := s.clients[roomID]
	delete(s.clients, roomID)
	s.mu.Unlock()
	// Closing the connection unblocks each victim's read loop, which
	// then runs its own teardown.
	for _, c := range seats {
		if err := c.conn.Close(); err != nil {
			// Best-effort close.
			_ = err
		}
	}
}

func (s *Server) disconnect(c *client) {
	s.leaveRoom(c)
	if err := c.conn.Close(); err != nil {
		// Best-effort close.
		_ = err
	}
}

func (s *Server) broadcastState(state model.RoomState) {
	s.broadcast(state.RoomID, race.Envelope{
		Type:   race.MsgRoomState,
		RoomID: state.RoomID,
		Room:   &state,
		Time:   time.Now(),
	})
}

func (s *Server) broadcast(roomID string, env race.Envelope) {
	s.mu.Lock()
	seats := make([]*client, 0, len(s.clients[roomID]))
	for _, c := range s.clients[roomID] {
		seats = append(seats, c)
	}
	s.mu.Unlock()
	for _, c := range seats {
		c.send(env)
	}
}

// ListenAndServe runs the race server on addr until the listener fails.
func (s *Server) ListenAndServe(addr string) error {
	log.Printf("race server listening on %s", addr)
	return http.ListenAndServe(addr, s.Handler())
}
