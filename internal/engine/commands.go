package engine

import (
	"context"

	"github.com/inamate/shapekit/internal/canvas"
	"github.com/inamate/shapekit/internal/document"
	"github.com/inamate/shapekit/internal/geometry"
	"github.com/inamate/shapekit/internal/shape"
)

// cullSize is the side of the box used to cull shapes before exact hit
// testing.
const cullSize = 1.0

// DrawScene paints the scene background and every visible node onto c in
// painter's order (back to front).
func DrawScene(sg *SceneGraph, scene document.Scene, c canvas.Canvas) {
	drawBackground(scene, c)
	if sg == nil {
		return
	}
	for _, node := range sg.Nodes {
		if node.Visible {
			node.Shape.Draw(c)
		}
	}
}

// DrawSceneWhenReady is DrawScene for sinks that must not miss bitmaps: it
// waits for each pending shape's resources before drawing it.
func DrawSceneWhenReady(ctx context.Context, sg *SceneGraph, scene document.Scene, c canvas.Canvas) error {
	drawBackground(scene, c)
	if sg == nil {
		return nil
	}
	for _, node := range sg.Nodes {
		if !node.Visible {
			continue
		}
		if p, ok := node.Shape.(shape.Pending); ok {
			if err := p.DrawWhenReady(ctx, c); err != nil {
				return err
			}
			continue
		}
		node.Shape.Draw(c)
	}
	return nil
}

func drawBackground(scene document.Scene, c canvas.Canvas) {
	if scene.Background == "" {
		return
	}
	c.Save()
	c.SetFillStyle(canvas.Solid(scene.Background))
	c.FillRect(0, 0, float64(scene.Width), float64(scene.Height))
	c.Restore()
}

// HitTest returns the ID of the topmost visible node containing p, or the
// empty string.
func HitTest(sg *SceneGraph, p geometry.Coordinate) string {
	if sg == nil {
		return ""
	}
	cull := geometry.BoundingBox{
		At:     geometry.Coordinate{X: p.X - cullSize/2, Y: p.Y - cullSize/2},
		Width:  cullSize,
		Height: cullSize,
	}
	// front to back
	for i := len(sg.Nodes) - 1; i >= 0; i-- {
		node := sg.Nodes[i]
		if !node.Visible {
			continue
		}
		// text mattes can sit outside the shape's own box
		if node.Shape.HasTextArea() && node.Shape.TextHitbox(p) {
			return node.ID
		}
		if !node.Shape.EfficientHitbox(cull) {
			continue
		}
		if node.Shape.Hitbox(p) {
			return node.ID
		}
	}
	return ""
}

// SelectionBounds returns the combined bounding box of the given nodes.
// Unknown IDs are skipped.
func SelectionBounds(sg *SceneGraph, ids []string) geometry.BoundingBox {
	var result geometry.BoundingBox
	if sg == nil {
		return result
	}
	for _, id := range ids {
		node, ok := sg.NodesByID[id]
		if !ok {
			continue
		}
		result = result.Union(node.Shape.BoundingBox())
	}
	return result
}
