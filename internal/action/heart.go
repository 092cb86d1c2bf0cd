package action

import (
	"math"

	"inkboard/internal/board"
)

const heartStep = 0.05

// heartUnit samples 16sin³t, 13cos t − 5cos2t − 2cos3t − cos4t with y
// flipped for screen space.
func heartUnit() []board.Point {
	var pts []board.Point
	for t := 0.0; t < 2*math.Pi; t += heartStep {
		s := math.Sin(t)
		pts = append(pts, board.Point{
			X: 16 * s * s * s,
			Y: -(13*math.Cos(t) - 5*math.Cos(2*t) - 2*math.Cos(3*t) - math.Cos(4*t)),
		})
	}
	return append(pts, pts[0])
}

func bounds(pts []board.Point) (minX, minY, maxX, maxY float64) {
	minX, minY = math.Inf(1), math.Inf(1)
	maxX, maxY = math.Inf(-1), math.Inf(-1)
	for _, p := range pts {
		minX = math.Min(minX, p.X)
		maxX = math.Max(maxX, p.X)
		minY = math.Min(minY, p.Y)
		maxY = math.Max(maxY, p.Y)
	}
	return
}

// heartInBox fits the parametric heart into a w×h box centred on (cx, cy).
func heartInBox(cx, cy, w, h float64) []board.Point {
	unit := heartUnit()
	minX, minY, maxX, maxY := bounds(unit)
	uw, uh := maxX-minX, maxY-minY
	out := make([]board.Point, len(unit))
	for i, p := range unit {
		out[i] = board.Point{
			X: cx + ((p.X-minX)/uw-0.5)*w,
			Y: cy + ((p.Y-minY)/uh-0.5)*h,
		}
	}
	return out
}

// heartOfSize keeps the curve's own aspect ratio with the given width.
func heartOfSize(cx, cy, size float64) []board.Point {
	minX, minY, maxX, maxY := bounds(heartUnit())
	return heartInBox(cx, cy, size, size*(maxY-minY)/(maxX-minX))
}

// LooksLikeHeartPolygon is a rough classifier for the crude heart polygons
// models tend to emit. It wants 6-12 vertices, a centred bottom tip, a
// centred notch below two off-centre lobes, and left/right extremes that
// mirror each other away from the top and bottom.
func LooksLikeHeartPolygon(pts []board.Point) bool {
	if len(pts) > 1 && pts[0].Dist(pts[len(pts)-1]) < 1 {
		pts = pts[:len(pts)-1]
	}
	if len(pts) < 6 || len(pts) > 12 {
		return false
	}
	minX, minY, maxX, maxY := bounds(pts)
	w, h := maxX-minX, maxY-minY
	if w <= 0 || h <= 0 {
		return false
	}
	cx := (minX + maxX) / 2
	tol := math.Min(8, math.Max(2.5, w*0.08))

	var top, bottom, left, right board.Point
	top.Y, bottom.Y = math.Inf(1), math.Inf(-1)
	left.X, right.X = math.Inf(1), math.Inf(-1)
	for _, p := range pts {
		if p.Y < top.Y {
			top = p
		}
		if p.Y > bottom.Y {
			bottom = p
		}
		if p.X < left.X {
			left = p
		}
		if p.X > right.X {
			right = p
		}
	}

	if math.Abs(bottom.X-cx) > tol {
		return false
	}
	// The highest points are the lobes, so they sit off-centre.
	if math.Abs(top.X-cx) <= tol {
		return false
	}
	notch := false
	for _, p := range pts {
		if math.Abs(p.X-cx) <= tol && p.Y < minY+h/2 && p.Y-minY >= math.Max(tol/2, h*0.05) {
			notch = true
			break
		}
	}
	if !notch {
		return false
	}

	if math.Abs(left.Y-right.Y) > math.Max(tol, h*0.1) {
		return false
	}
	for _, p := range []board.Point{left, right} {
		if p.Y <= minY+tol || p.Y >= maxY-tol {
			return false
		}
	}
	return true
}
