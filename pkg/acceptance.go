package density

import "math"

// Sensor corner coordinates (x, y) in cm used to find where a strip is cut
// by the edge of the sensor.
var (
	innerCorner1 = [2]float64{4.9895, 15.3560}
	innerCorner2 = [2]float64{1.8007, 17.2000}
	outerCorner1 = [2]float64{4.2231, 26.6638}
	outerCorner2 = [2]float64{1.8357, 27.9500}
)

// AcceptanceTable holds, per strip, the fraction of the strip arc that lies
// on the active sensor area.
type AcceptanceTable struct {
	Ring   RingType
	Values []float64
}

// BuildAcceptanceTable computes the azimuthal acceptance of every strip of
// a ring type.
//
// Strips inside the circle through the first corner span the full sector.
// For the others the end point is the intersection of the strip circle with
// the line through the two corners
// (see http://mathworld.wolfram.com/Circle-LineIntersection.html) and the
// acceptance is the opening angle to that point over the sector angle.
func BuildAcceptanceTable(r RingType) AcceptanceTable {
	c1, c2 := innerCorner1, innerCorner2
	if r == Outer {
		c1, c2 = outerCorner1, outerCorner2
	}
	nStrips := r.NStrips()
	basearc := 2 * math.Pi / float64(r.NSectors())
	cr := math.Hypot(c1[0], c1[1])

	D := c1[0]*c2[1] - c1[1]*c2[0]
	dx := c2[0] - c1[0]
	dy := c2[1] - c1[1]
	dr := math.Hypot(dx, dy)

	table := AcceptanceTable{Ring: r, Values: make([]float64, nStrips)}
	for t := 0; t < nStrips; t++ {
		radius := StripRadius(r, t)
		if radius <= cr {
			table.Values[t] = 1
			continue
		}

		// <0 means no intersection, =0 means tangent
		det := radius*radius*dr*dr - D*D
		if det <= 0 {
			table.Values[t] = 1
			continue
		}

		x := (+D*dy + dx*math.Sqrt(det)) / dr / dr
		y := (-D*dx + dy*math.Sqrt(det)) / dr / dr
		th := math.Atan2(x, y)

		acc := th / basearc
		if acc > 1 {
			acc = 1
		}
		table.Values[t] = acc
	}
	return table
}

// At returns the acceptance of a strip. Strips outside the table have full
// acceptance.
func (a AcceptanceTable) At(strip int) float64 {
	if strip < 0 || strip >= len(a.Values) {
		return 1
	}
	return a.Values[strip]
}

// AcceptanceGeometry keeps the tables of both ring types.
type AcceptanceGeometry struct {
	inner AcceptanceTable
	outer AcceptanceTable
}

func NewAcceptanceGeometry() *AcceptanceGeometry {
	return &AcceptanceGeometry{
		inner: BuildAcceptanceTable(Inner),
		outer: BuildAcceptanceTable(Outer),
	}
}

func (g *AcceptanceGeometry) Table(r RingType) AcceptanceTable {
	if r == Inner {
		return g.inner
	}
	return g.outer
}

// AcceptanceAt returns the acceptance of strip t in a ring of type r.
func (g *AcceptanceGeometry) AcceptanceAt(r RingType, t int) float64 {
	return g.Table(r).At(t)
}
