package race

import (
	"time"

	"github.com/hello97-gg/hallotype/internal/model"
)

// Message types exchanged between race clients and the server.
const (
	MsgCreateRoom  = "create_room"
	MsgJoinRoom    = "join_room"
	MsgLeaveRoom   = "leave_room"
	MsgStartRoom   = "start_room"
	MsgProgress    = "progress"
	MsgTimeout     = "timeout"
	MsgRoomState   = "room_state"
	MsgRoomDeleted = "room_deleted"
	MsgError       = "error"
)

// Envelope is the JSON frame on the race websocket. Fields are populated
// per message type; unused ones are omitted.
type Envelope struct {
	Type      string           `json:"type"`
	RoomID    string           `json:"roomId,omitempty"`
	PlayerID  string           `json:"uid,omitempty"`
	TimeLimit int              `json:"timeLimit,omitempty"`
	Tier      model.Tier       `json:"difficulty,omitempty"`
	Update    *Update          `json:"update,omitempty"`
	Room      *model.RoomState `json:"room,omitempty"`
	Error     string           `json:"error,omitempty"`
	Time      time.Time        `json:"timestamp,omitempty"`
}
