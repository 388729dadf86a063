package grid

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"polydict/internal/geo"
)

func pt(x, y float64) geo.Point { return geo.Point{X: x, Y: y} }

func square(x0, y0, x1, y1 float64) geo.Polygon {
	return geo.MustPolygon(pt(x0, y0), pt(x1, y0), pt(x1, y1), pt(x0, y1))
}

func find(g *Grid, polys []geo.Polygon, p geo.Point) (int, bool) {
	for _, c := range g.Cell(p) {
		if c.FullyCovers || geo.CoveredBy(p, polys[c.ID]) {
			return int(c.ID), true
		}
	}
	return 0, false
}

func TestSingleCellNoSplit(t *testing.T) {
	polys := []geo.Polygon{square(0, 0, 10, 10)}
	g := New(polys)
	assert.Equal(t, 1, g.Cells())
	assert.Equal(t, 0, g.Depth())
	cands := g.Cell(pt(5, 5))
	require.Len(t, cands, 1)
	assert.False(t, cands[0].FullyCovers)
	assert.Nil(t, g.Cell(pt(11, 5)))
}

func TestSplitAndFullyCovers(t *testing.T) {
	// 外框与内框边界都穿过根单元，触发细分；远离内框的子单元被外框整体覆盖
	polys := []geo.Polygon{square(0, 0, 32, 32), square(20, 20, 28, 28)}
	g := New(polys)
	assert.Greater(t, g.Cells(), 1)
	assert.GreaterOrEqual(t, g.Depth(), 1)

	cands := g.Cell(pt(12, 12))
	require.Len(t, cands, 1)
	assert.Equal(t, Candidate{ID: 0, FullyCovers: true}, cands[0])

	cands = g.Cell(pt(2, 13))
	require.Len(t, cands, 1)
	assert.False(t, cands[0].FullyCovers)

	cands = g.Cell(pt(24, 24))
	require.NotEmpty(t, cands)
	for i := 1; i < len(cands); i++ {
		assert.Less(t, cands[i-1].ID, cands[i].ID)
	}
}

func TestMaxDepthBound(t *testing.T) {
	var polys []geo.Polygon
	for i := 0; i < 10; i++ {
		f := float64(i)
		polys = append(polys, square(f, f, f+20, f+20))
	}
	g := NewWithOptions(polys, Options{MaxDepth: 2})
	assert.LessOrEqual(t, g.Depth(), 2)
}

func TestIndexConsistentWithBounds(t *testing.T) {
	lo, hi := 0.1, 0.7
	for i := 0; i <= Split; i++ {
		v := bound(lo, hi, i)
		ix := index(lo, hi, v)
		assert.LessOrEqual(t, bound(lo, hi, ix), v)
		if ix < Split-1 {
			assert.Less(t, v, bound(lo, hi, ix+1))
		} else {
			assert.LessOrEqual(t, v, hi)
		}
	}
	assert.Equal(t, 0, index(3, 3, 3))
}

func TestAgreesWithLinearScan(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	for round := 0; round < 15; round++ {
		var polys []geo.Polygon
		n := 2 + rng.Intn(6)
		for len(polys) < n {
			k := 3 + rng.Intn(7)
			ox, oy := rng.Intn(30), rng.Intn(30)
			pts := make([]geo.Point, k)
			for i := range pts {
				pts[i] = pt(float64(ox+rng.Intn(16)), float64(oy+rng.Intn(16)))
			}
			if p, err := geo.NewPolygon(pts); err == nil {
				polys = append(polys, p)
			}
		}
		g := New(polys)
		box := geo.BoundingBox(polys)
		for x := box.MinX - 1; x <= box.MaxX+1; x += 0.5 {
			for y := box.MinY - 1; y <= box.MaxY+1; y += 0.5 {
				p := pt(x, y)
				wantID, wantOK := -1, false
				for i := range polys {
					if geo.CoveredBy(p, polys[i]) {
						wantID, wantOK = i, true
						break
					}
				}
				gotID, gotOK := find(g, polys, p)
				require.Equal(t, wantOK, gotOK, "round %d point %v", round, p)
				if wantOK {
					require.Equal(t, wantID, gotID, "round %d point %v", round, p)
				}
			}
		}
	}
}
