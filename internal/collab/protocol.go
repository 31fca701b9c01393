package collab

import (
	"encoding/json"

	"github.com/inamate/shapekit/internal/canvas"
	"github.com/inamate/shapekit/internal/document"
)

type Message struct {
	Type     string          `json:"type"`
	ClientID string          `json:"clientId,omitempty"`
	Seq      int64           `json:"seq,omitempty"`
	Payload  json.RawMessage `json:"payload,omitempty"`
}

const (
	// Connection
	TypeWelcome = "welcome"
	TypeError   = "error"

	// Frames streamed on every tick
	TypeFrame = "frame"

	TypePresenceUpdate = "presence.update"
	TypePresenceState  = "presence.state"
	TypePresenceJoin   = "presence.join"
	TypePresenceLeave  = "presence.leave"

	// Viewer operations
	TypeOpSubmit    = "op.submit"
	TypeOpAck       = "op.ack"
	TypeOpNack      = "op.nack"
	TypeOpBroadcast = "op.broadcast"
)

type WelcomePayload struct {
	ClientID  string          `json:"clientId"`
	Scene     *document.Scene `json:"scene,omitempty"`
	Timelines []string        `json:"timelines"`
}

type FramePayload struct {
	Frame    int64            `json:"frame"`
	Commands []canvas.Command `json:"commands"`
}

type PresencePayload struct {
	Cursor      *CursorPos `json:"cursor,omitempty"`
	Selection   []string   `json:"selection,omitempty"`
	DisplayName string     `json:"displayName,omitempty"`
}

type CursorPos struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type PresenceStatePayload struct {
	Presences map[string]*PresencePayload `json:"presences"`
}

type PresenceJoinPayload struct {
	ClientID    string `json:"clientId"`
	DisplayName string `json:"displayName"`
}

type PresenceLeavePayload struct {
	ClientID string `json:"clientId"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}

// --- Operation Types ---

const (
	OpTimelinePlay = "timeline.play"
	OpTimelineStop = "timeline.stop"
	OpHitTest      = "hit.test"
	OpBounds       = "bounds"
)

// Operation is a request a viewer makes against the shared scene.
type Operation struct {
	ID   string `json:"id"`
	Type string `json:"type"`

	// timeline.play / timeline.stop
	TimelineID string  `json:"timelineId,omitempty"`
	ShapeID    string  `json:"shapeId,omitempty"`
	RunCount   float64 `json:"runCount,omitempty"`

	// hit.test
	X float64 `json:"x,omitempty"`
	Y float64 `json:"y,omitempty"`

	// bounds
	ShapeIDs []string `json:"shapeIds,omitempty"`
}

type OperationSubmitPayload struct {
	Operation Operation `json:"operation"`
}

type OperationAckPayload struct {
	OperationID string          `json:"operationId"`
	ServerSeq   int64           `json:"serverSeq"`
	Result      json.RawMessage `json:"result,omitempty"`
}

type OperationNackPayload struct {
	OperationID string `json:"operationId"`
	Reason      string `json:"reason"`
}

type OperationBroadcastPayload struct {
	Operation Operation `json:"operation"`
	ClientID  string    `json:"clientId"`
	ServerSeq int64     `json:"serverSeq"`
}

func newMessage(typ string, payload any) (*Message, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &Message{Type: typ, Payload: data}, nil
}
