package engine

import "github.com/inamate/shapekit/internal/shape"

// SceneGraph is the built, render-ready state of a document: one shape per
// node in painter's order. Nodes are retained between frames; the shapes
// they hold answer with their live animated state.
type SceneGraph struct {
	Nodes     []*SceneNode
	NodesByID map[string]*SceneNode
}

// SceneNode is a built shape of the scene.
type SceneNode struct {
	ID      string
	Kind    shape.Kind
	Visible bool
	Shape   shape.Shape
}

// NewSceneGraph creates an empty scene graph.
func NewSceneGraph() *SceneGraph {
	return &SceneGraph{NodesByID: make(map[string]*SceneNode)}
}

// Len returns the number of nodes.
func (sg *SceneGraph) Len() int { return len(sg.Nodes) }
