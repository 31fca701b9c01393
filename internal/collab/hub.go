package collab

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/inamate/shapekit/internal/canvas"
)

// Hub fans frames out to every connected viewer and relays their presence
// and operations against the shared scene.
type Hub struct {
	mu       sync.RWMutex
	clients  map[string]*Client // clientID -> client
	presence *PresenceManager
	state    *SceneState

	register   chan *Client
	unregister chan *Client
	done       chan struct{}
}

func NewHub(scene Scene) *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		presence:   NewPresenceManager(),
		state:      NewSceneState(scene),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

// Run processes registrations until ctx is done, then disconnects every
// client.
func (h *Hub) Run(ctx context.Context) {
	defer func() {
		close(h.done)
		h.mu.Lock()
		for id, c := range h.clients {
			c.closeSend()
			delete(h.clients, id)
		}
		h.mu.Unlock()
	}()
	for {
		select {
		case client := <-h.register:
			h.addClient(client)
		case client := <-h.unregister:
			h.removeClient(client)
		case <-ctx.Done():
			return
		}
	}
}

// Register adds a client. It reports false once the hub has stopped.
func (h *Hub) Register(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// ClientCount returns the number of connected viewers.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) addClient(client *Client) {
	h.mu.Lock()
	h.clients[client.ClientID] = client
	h.mu.Unlock()

	welcome := WelcomePayload{ClientID: client.ClientID, Timelines: h.state.scene.Timelines()}
	if scene, err := h.state.scene.Scene(); err == nil {
		welcome.Scene = &scene
	}
	if msg, err := newMessage(TypeWelcome, welcome); err == nil {
		client.Send(msg)
	}
	if stateMsg := h.presence.StateMessage(); stateMsg != nil {
		client.Send(stateMsg)
	}

	if joinMsg, err := newMessage(TypePresenceJoin, PresenceJoinPayload{
		ClientID:    client.ClientID,
		DisplayName: client.DisplayName,
	}); err == nil {
		h.broadcast(joinMsg, client.ClientID)
	}

	slog.Info("viewer joined", "client", client.ClientID, "name", client.DisplayName)
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	if _, ok := h.clients[client.ClientID]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.clients, client.ClientID)
	client.closeSend()
	h.mu.Unlock()
	h.presence.Remove(client.ClientID)

	if leaveMsg, err := newMessage(TypePresenceLeave, PresenceLeavePayload{ClientID: client.ClientID}); err == nil {
		h.broadcast(leaveMsg, "")
	}

	slog.Info("viewer left", "client", client.ClientID)
}

// BroadcastFrame sends a recorded frame to every viewer. Viewers that fall
// behind drop frames.
func (h *Hub) BroadcastFrame(frame int64, cmds []canvas.Command) {
	if h.ClientCount() == 0 {
		return
	}
	msg, err := newMessage(TypeFrame, FramePayload{Frame: frame, Commands: cmds})
	if err != nil {
		slog.Error("marshal frame", "error", err, "frame", frame)
		return
	}
	msg.Seq = frame
	h.broadcast(msg, "")
}

func (h *Hub) handleMessage(sender *Client, msg *Message) {
	switch msg.Type {
	case TypePresenceUpdate:
		h.handlePresenceUpdate(sender, msg)
	case TypeOpSubmit:
		h.handleOpSubmit(sender, msg)
	default:
		slog.Warn("unknown message type", "type", msg.Type, "client", sender.ClientID)
		sender.sendError("unknown message type " + msg.Type)
	}
}

func (h *Hub) handlePresenceUpdate(sender *Client, msg *Message) {
	var presence PresencePayload
	if err := json.Unmarshal(msg.Payload, &presence); err != nil {
		slog.Warn("invalid presence payload", "error", err)
		return
	}
	presence.DisplayName = sender.DisplayName
	h.presence.Update(sender.ClientID, &presence)

	outMsg, err := newMessage(TypePresenceUpdate, presence)
	if err != nil {
		return
	}
	outMsg.ClientID = sender.ClientID
	h.broadcast(outMsg, sender.ClientID)
}

func (h *Hub) handleOpSubmit(sender *Client, msg *Message) {
	var submit OperationSubmitPayload
	if err := json.Unmarshal(msg.Payload, &submit); err != nil {
		slog.Warn("invalid operation payload", "error", err, "client", sender.ClientID)
		sender.sendError("invalid operation payload")
		return
	}
	op := submit.Operation

	result, seq, mutated, err := h.state.ApplyOperation(op)
	if err != nil {
		slog.Debug("operation rejected", "op", op.Type, "client", sender.ClientID, "error", err)
		if nack, merr := newMessage(TypeOpNack, OperationNackPayload{OperationID: op.ID, Reason: err.Error()}); merr == nil {
			sender.Send(nack)
		}
		return
	}

	if ack, err := newMessage(TypeOpAck, OperationAckPayload{OperationID: op.ID, ServerSeq: seq, Result: result}); err == nil {
		ack.Seq = seq
		sender.Send(ack)
	}
	if !mutated {
		return
	}
	if out, err := newMessage(TypeOpBroadcast, OperationBroadcastPayload{
		Operation: op,
		ClientID:  sender.ClientID,
		ServerSeq: seq,
	}); err == nil {
		out.Seq = seq
		h.broadcast(out, sender.ClientID)
	}
}

func (h *Hub) broadcast(msg *Message, excludeClientID string) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, c := range h.clients {
		if c.ClientID != excludeClientID {
			c.Send(msg)
		}
	}
}
