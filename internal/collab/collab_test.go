package collab

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"

	"github.com/inamate/shapekit/internal/canvas"
	"github.com/inamate/shapekit/internal/document"
	"github.com/inamate/shapekit/internal/geometry"
)

var errNoTimeline = errors.New("no such timeline")

type fakeScene struct {
	played []string
}

func (f *fakeScene) Scene() (document.Scene, error) {
	return document.Scene{Name: "test", Width: 320, Height: 240}, nil
}

func (f *fakeScene) Timelines() []string { return []string{"pulse"} }

func (f *fakeScene) Play(timelineID, shapeID string, runCount float64) error {
	if timelineID != "pulse" {
		return errNoTimeline
	}
	f.played = append(f.played, shapeID)
	return nil
}

func (f *fakeScene) Stop(timelineID, shapeID string) error {
	if timelineID != "pulse" {
		return errNoTimeline
	}
	return nil
}

func (f *fakeScene) HitTest(x, y float64) string {
	if x < 10 && y < 10 {
		return "corner"
	}
	return ""
}

func (f *fakeScene) Bounds(ids []string) geometry.BoundingBox {
	return geometry.BoundingBox{Width: float64(len(ids)), Height: 1}
}

func TestApplyOperation(t *testing.T) {
	scene := &fakeScene{}
	state := NewSceneState(scene)

	tests := []struct {
		name        string
		op          Operation
		wantSeq     int64
		wantMutated bool
		wantResult  string
		wantErr     error
	}{
		{
			name:        "play",
			op:          Operation{ID: "1", Type: OpTimelinePlay, TimelineID: "pulse", ShapeID: "c"},
			wantSeq:     1,
			wantMutated: true,
		},
		{
			name:    "play unknown timeline",
			op:      Operation{ID: "2", Type: OpTimelinePlay, TimelineID: "nope"},
			wantErr: errNoTimeline,
		},
		{
			name:        "stop",
			op:          Operation{ID: "3", Type: OpTimelineStop, TimelineID: "pulse", ShapeID: "c"},
			wantSeq:     2,
			wantMutated: true,
		},
		{
			name:       "hit test",
			op:         Operation{ID: "4", Type: OpHitTest, X: 5, Y: 5},
			wantResult: `{"shapeId":"corner","x":5,"y":5}`,
		},
		{
			name:    "unknown",
			op:      Operation{ID: "5", Type: "shape.delete"},
			wantErr: ErrUnknownOperation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, seq, mutated, err := state.ApplyOperation(tt.op)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if seq != tt.wantSeq || mutated != tt.wantMutated {
				t.Errorf("seq, mutated = %d, %v; want %d, %v", seq, mutated, tt.wantSeq, tt.wantMutated)
			}
			if tt.wantResult != "" && string(result) != tt.wantResult {
				t.Errorf("result = %s, want %s", result, tt.wantResult)
			}
		})
	}

	if state.Seq() != 2 {
		t.Errorf("Seq() = %d, want 2", state.Seq())
	}
	if len(scene.played) != 1 || scene.played[0] != "c" {
		t.Errorf("played = %v", scene.played)
	}
}

func startHub(t *testing.T) (*Hub, *httptest.Server) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	hub := NewHub(&fakeScene{})
	go hub.Run(ctx)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			return
		}
		NewClient(hub, conn, r.URL.Query().Get("name")).Serve(r.Context())
	}))
	t.Cleanup(func() {
		srv.Close()
		cancel()
	})
	return hub, srv
}

func dial(t *testing.T, srv *httptest.Server, name string) *websocket.Conn {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "?name=" + name
	conn, _, err := websocket.Dial(ctx, url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.CloseNow() })
	return conn
}

// readUntil reads messages until one of type typ arrives.
func readUntil(t *testing.T, conn *websocket.Conn, typ string) Message {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			t.Fatalf("waiting for %s: %v", typ, err)
		}
		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if msg.Type == typ {
			return msg
		}
	}
}

func write(t *testing.T, conn *websocket.Conn, msg *Message) {
	t.Helper()
	data, err := json.Marshal(msg)
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := conn.Write(ctx, websocket.MessageText, data); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func waitForClients(t *testing.T, hub *Hub, n int) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for hub.ClientCount() != n {
		if time.Now().After(deadline) {
			t.Fatalf("ClientCount() = %d, want %d", hub.ClientCount(), n)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestHubWelcome(t *testing.T) {
	_, srv := startHub(t)
	conn := dial(t, srv, "alice")

	msg := readUntil(t, conn, TypeWelcome)
	var welcome WelcomePayload
	if err := json.Unmarshal(msg.Payload, &welcome); err != nil {
		t.Fatal(err)
	}
	if welcome.ClientID == "" {
		t.Error("welcome has no client id")
	}
	if welcome.Scene == nil || welcome.Scene.Width != 320 {
		t.Errorf("welcome scene = %+v", welcome.Scene)
	}
	if len(welcome.Timelines) != 1 || welcome.Timelines[0] != "pulse" {
		t.Errorf("welcome timelines = %v", welcome.Timelines)
	}
}

func TestHubBroadcastFrame(t *testing.T) {
	hub, srv := startHub(t)
	a := dial(t, srv, "a")
	b := dial(t, srv, "b")
	readUntil(t, a, TypeWelcome)
	readUntil(t, b, TypeWelcome)
	waitForClients(t, hub, 2)

	hub.BroadcastFrame(7, []canvas.Command{{Op: "fillRect", Args: []float64{0, 0, 1, 1}}})

	for _, conn := range []*websocket.Conn{a, b} {
		msg := readUntil(t, conn, TypeFrame)
		var frame FramePayload
		if err := json.Unmarshal(msg.Payload, &frame); err != nil {
			t.Fatal(err)
		}
		if frame.Frame != 7 || msg.Seq != 7 {
			t.Errorf("frame = %d, seq = %d; want 7", frame.Frame, msg.Seq)
		}
		if len(frame.Commands) != 1 || frame.Commands[0].Op != "fillRect" {
			t.Errorf("commands = %+v", frame.Commands)
		}
	}
}

func TestHubOperations(t *testing.T) {
	hub, srv := startHub(t)
	a := dial(t, srv, "a")
	b := dial(t, srv, "b")
	readUntil(t, a, TypeWelcome)
	readUntil(t, b, TypeWelcome)
	waitForClients(t, hub, 2)

	submit, err := newMessage(TypeOpSubmit, OperationSubmitPayload{
		Operation: Operation{ID: "op1", Type: OpTimelinePlay, TimelineID: "pulse", ShapeID: "c"},
	})
	if err != nil {
		t.Fatal(err)
	}
	write(t, a, submit)

	ack := readUntil(t, a, TypeOpAck)
	var ackPayload OperationAckPayload
	if err := json.Unmarshal(ack.Payload, &ackPayload); err != nil {
		t.Fatal(err)
	}
	if ackPayload.OperationID != "op1" || ackPayload.ServerSeq != 1 {
		t.Errorf("ack = %+v", ackPayload)
	}

	bc := readUntil(t, b, TypeOpBroadcast)
	var bcPayload OperationBroadcastPayload
	if err := json.Unmarshal(bc.Payload, &bcPayload); err != nil {
		t.Fatal(err)
	}
	if bcPayload.Operation.ID != "op1" || bcPayload.ServerSeq != 1 {
		t.Errorf("broadcast = %+v", bcPayload)
	}

	bad, err := newMessage(TypeOpSubmit, OperationSubmitPayload{
		Operation: Operation{ID: "op2", Type: OpTimelinePlay, TimelineID: "missing"},
	})
	if err != nil {
		t.Fatal(err)
	}
	write(t, a, bad)
	nack := readUntil(t, a, TypeOpNack)
	var nackPayload OperationNackPayload
	if err := json.Unmarshal(nack.Payload, &nackPayload); err != nil {
		t.Fatal(err)
	}
	if nackPayload.OperationID != "op2" || nackPayload.Reason == "" {
		t.Errorf("nack = %+v", nackPayload)
	}
}

func TestHubPresence(t *testing.T) {
	hub, srv := startHub(t)
	a := dial(t, srv, "alice")
	readUntil(t, a, TypeWelcome)
	waitForClients(t, hub, 1)

	b := dial(t, srv, "bob")
	readUntil(t, b, TypeWelcome)

	join := readUntil(t, a, TypePresenceJoin)
	var joinPayload PresenceJoinPayload
	if err := json.Unmarshal(join.Payload, &joinPayload); err != nil {
		t.Fatal(err)
	}
	if joinPayload.DisplayName != "bob" {
		t.Errorf("join = %+v", joinPayload)
	}

	update, err := newMessage(TypePresenceUpdate, PresencePayload{Cursor: &CursorPos{X: 3, Y: 4}})
	if err != nil {
		t.Fatal(err)
	}
	write(t, b, update)

	got := readUntil(t, a, TypePresenceUpdate)
	var presence PresencePayload
	if err := json.Unmarshal(got.Payload, &presence); err != nil {
		t.Fatal(err)
	}
	if got.ClientID != joinPayload.ClientID || presence.DisplayName != "bob" || presence.Cursor == nil || presence.Cursor.X != 3 {
		t.Errorf("presence update = %+v from %s", presence, got.ClientID)
	}

	b.Close(websocket.StatusNormalClosure, "")
	leave := readUntil(t, a, TypePresenceLeave)
	var leavePayload PresenceLeavePayload
	if err := json.Unmarshal(leave.Payload, &leavePayload); err != nil {
		t.Fatal(err)
	}
	if leavePayload.ClientID != joinPayload.ClientID {
		t.Errorf("leave = %+v, want %s", leavePayload, joinPayload.ClientID)
	}
}

func TestHubRejectsAfterStop(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	hub := NewHub(&fakeScene{})
	stopped := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(stopped)
	}()
	cancel()
	<-stopped

	if hub.Register(&Client{ClientID: "late", send: make(chan []byte, 1)}) {
		t.Error("Register succeeded after the hub stopped")
	}
}
