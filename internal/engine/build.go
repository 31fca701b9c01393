package engine

import (
	"fmt"

	"github.com/inamate/shapekit/internal/document"
	"github.com/inamate/shapekit/internal/shape"
)

// ShapeBuilder builds the shape for one document node.
type ShapeBuilder func(id string, s shape.Schema) (shape.Shape, error)

// BuildSceneGraph builds every shape of doc. The first invalid schema
// aborts the build.
func BuildSceneGraph(doc *document.Document, build ShapeBuilder) (*SceneGraph, error) {
	sg := NewSceneGraph()
	if doc == nil {
		return sg, nil
	}
	for _, n := range doc.Shapes {
		sh, err := build(n.ID, n.Schema)
		if err != nil {
			return nil, fmt.Errorf("build shape %q: %w", n.ID, err)
		}
		node := &SceneNode{ID: n.ID, Kind: n.Kind, Visible: !n.Hidden, Shape: sh}
		sg.Nodes = append(sg.Nodes, node)
		sg.NodesByID[n.ID] = node
	}
	return sg, nil
}
