package api

import (
	"image/color"
	"net/http"

	"github.com/fogleman/gg"

	"collide2d/internal/geom"
	"collide2d/internal/sim"
)

const (
	sceneWidth  = 800
	sceneHeight = 600
	scenePad    = 40.0
)

// handleScenePNG renders the latest snapshot as a PNG: AABBs, shape
// outlines and contact normals. Meant for eyeballing broad-phase tuning,
// not for production traffic.
func (h *routerHandlers) handleScenePNG(w http.ResponseWriter, r *http.Request) {
	snap := h.engine.Snapshot()
	if snap == nil {
		writeError(w, "no snapshot yet", http.StatusServiceUnavailable)
		RecordRequest(r.Method, "/debug/scene.png", http.StatusServiceUnavailable)
		return
	}

	dc := gg.NewContext(sceneWidth, sceneHeight)
	renderScene(dc, snap)

	w.Header().Set("Content-Type", "image/png")
	if err := dc.EncodePNG(w); err != nil {
		// Headers are already out; nothing useful to report to the client.
		return
	}
	RecordRequest(r.Method, "/debug/scene.png", http.StatusOK)
}

// sceneTransform maps world coordinates into image pixels, preserving
// aspect ratio.
type sceneTransform struct {
	scale      float64
	offX, offY float64
}

func (t sceneTransform) point(p geom.Vec2) (float64, float64) {
	return t.offX + p.X*t.scale, t.offY + p.Y*t.scale
}

func fitScene(snap *sim.Snapshot) sceneTransform {
	if len(snap.Shapes) == 0 {
		return sceneTransform{scale: 1}
	}

	bounds := snap.Shapes[0].Bounds
	for _, s := range snap.Shapes[1:] {
		bounds.Min.X = min(bounds.Min.X, s.Bounds.Min.X)
		bounds.Min.Y = min(bounds.Min.Y, s.Bounds.Min.Y)
		bounds.Max.X = max(bounds.Max.X, s.Bounds.Max.X)
		bounds.Max.Y = max(bounds.Max.Y, s.Bounds.Max.Y)
	}

	w := max(bounds.Width(), 1e-6)
	h := max(bounds.Height(), 1e-6)
	scale := min((sceneWidth-2*scenePad)/w, (sceneHeight-2*scenePad)/h)

	return sceneTransform{
		scale: scale,
		offX:  scenePad - bounds.Min.X*scale,
		offY:  scenePad - bounds.Min.Y*scale,
	}
}

func renderScene(dc *gg.Context, snap *sim.Snapshot) {
	dc.SetColor(color.RGBA{12, 12, 28, 255})
	dc.DrawRectangle(0, 0, sceneWidth, sceneHeight)
	dc.Fill()

	t := fitScene(snap)

	for _, s := range snap.Shapes {
		drawShapeBounds(dc, t, s)
	}
	for _, s := range snap.Shapes {
		drawShape(dc, t, s)
	}
	for _, c := range snap.Contacts {
		drawContact(dc, t, snap, c)
	}
}

func drawShapeBounds(dc *gg.Context, t sceneTransform, s sim.ShapeSnapshot) {
	x0, y0 := t.point(s.Bounds.Min)
	x1, y1 := t.point(s.Bounds.Max)

	dc.SetColor(color.RGBA{60, 60, 90, 255})
	dc.SetLineWidth(1)
	dc.DrawRectangle(x0, y0, x1-x0, y1-y0)
	dc.Stroke()
}

func drawShape(dc *gg.Context, t sceneTransform, s sim.ShapeSnapshot) {
	fill := color.RGBA{80, 170, 255, 200}
	switch {
	case s.Static:
		fill = color.RGBA{120, 120, 120, 200}
	case s.Trigger:
		fill = color.RGBA{255, 200, 80, 200}
	}

	dc.SetColor(fill)

	switch {
	case len(s.Vertices) > 0:
		x, y := t.point(s.Vertices[0])
		dc.MoveTo(x, y)
		for _, v := range s.Vertices[1:] {
			x, y = t.point(v)
			dc.LineTo(x, y)
		}
		dc.ClosePath()
		dc.Fill()
	case s.Radius > 0:
		x, y := t.point(s.Position)
		dc.DrawCircle(x, y, s.Radius*t.scale)
		dc.Fill()
	}

	dc.SetColor(color.White)
	dc.SetLineWidth(1.5)
	x, y := t.point(s.Position)
	dc.DrawCircle(x, y, 2)
	dc.Stroke()
}

func drawContact(dc *gg.Context, t sceneTransform, snap *sim.Snapshot, c sim.ContactSnapshot) {
	var from geom.Vec2
	found := false
	for _, s := range snap.Shapes {
		if s.ID == c.A {
			from = s.Position
			found = true
			break
		}
	}
	if !found {
		return
	}

	x0, y0 := t.point(from)
	tip := from.Add(c.Normal.Scale(c.Depth))
	x1, y1 := t.point(tip)

	dc.SetColor(color.RGBA{255, 60, 60, 255})
	dc.SetLineWidth(2)
	dc.DrawLine(x0, y0, x1, y1)
	dc.Stroke()
	dc.DrawCircle(x1, y1, 3)
	dc.Fill()
}
