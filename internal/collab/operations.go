package collab

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/inamate/shapekit/internal/document"
	"github.com/inamate/shapekit/internal/geometry"
)

var ErrUnknownOperation = errors.New("unknown operation type")

// Scene is what viewers operate on. *engine.Engine implements it.
type Scene interface {
	Scene() (document.Scene, error)
	Timelines() []string
	Play(timelineID, shapeID string, runCount float64) error
	Stop(timelineID, shapeID string) error
	HitTest(x, y float64) string
	Bounds(ids []string) geometry.BoundingBox
}

type HitTestResult struct {
	ShapeID string  `json:"shapeId"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
}

// SceneState serializes operations against a scene and numbers the ones
// that change it.
type SceneState struct {
	mu        sync.Mutex
	scene     Scene
	serverSeq int64
}

func NewSceneState(scene Scene) *SceneState {
	return &SceneState{scene: scene}
}

// ApplyOperation runs op. mutated reports whether other viewers should hear
// about it; seq is the server sequence of a mutating operation.
func (ss *SceneState) ApplyOperation(op Operation) (result json.RawMessage, seq int64, mutated bool, err error) {
	ss.mu.Lock()
	defer ss.mu.Unlock()

	var out any
	switch op.Type {
	case OpTimelinePlay:
		err = ss.scene.Play(op.TimelineID, op.ShapeID, op.RunCount)
		mutated = true
	case OpTimelineStop:
		err = ss.scene.Stop(op.TimelineID, op.ShapeID)
		mutated = true
	case OpHitTest:
		out = HitTestResult{ShapeID: ss.scene.HitTest(op.X, op.Y), X: op.X, Y: op.Y}
	case OpBounds:
		out = ss.scene.Bounds(op.ShapeIDs)
	default:
		return nil, 0, false, fmt.Errorf("%w: %s", ErrUnknownOperation, op.Type)
	}
	if err != nil {
		return nil, 0, false, err
	}

	if out != nil {
		if result, err = json.Marshal(out); err != nil {
			return nil, 0, false, err
		}
	}
	if mutated {
		ss.serverSeq++
		seq = ss.serverSeq
	}
	return result, seq, mutated, nil
}

// Seq returns the sequence number of the last mutating operation.
func (ss *SceneState) Seq() int64 {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	return ss.serverSeq
}
