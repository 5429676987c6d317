package density

import "math"

// Radial extent of the sensors in cm.
func ringRadii(r RingType) (minR, maxR float64) {
	if r == Inner {
		return 4.5213, 17.2
	}
	return 15.4, 28.0
}

// ringZ is the position of the sensor plane along the beam in cm. Sensors
// on alternating hybrids are mounted on either side of the support plate.
func ringZ(ring RingID, sector int) float64 {
	front := (sector/2)%2 == 0
	switch {
	case ring.Detector == 1:
		if front {
			return 320.266
		}
		return 319.766
	case ring.Detector == 2 && ring.Ring == Inner:
		if front {
			return 83.666
		}
		return 83.166
	case ring.Detector == 2 && ring.Ring == Outer:
		if front {
			return 74.966
		}
		return 75.466
	case ring.Detector == 3 && ring.Ring == Inner:
		if front {
			return -63.066
		}
		return -62.566
	case ring.Detector == 3 && ring.Ring == Outer:
		if front {
			return -74.966
		}
		return -75.466
	}
	return 0
}

// StripRadius is the radius in cm of the inner edge of a strip.
func StripRadius(r RingType, strip int) float64 {
	minR, maxR := ringRadii(r)
	segment := (maxR - minR) / float64(r.NStrips())
	return minR + float64(strip)*segment
}

// EtaFromStrip computes the pseudorapidity of a strip for an interaction
// at zvtx (cm).
func EtaFromStrip(ring RingID, sector, strip int, zvtx float64) float64 {
	r := StripRadius(ring.Ring, strip)
	z := ringZ(ring, sector)
	theta := math.Atan2(r, z-zvtx)
	return -math.Log(math.Tan(0.5 * theta))
}

// PhiFromSector is the azimuth in degrees of the centre of a sector.
func PhiFromSector(ring RingID, sector int) float64 {
	return (float64(sector) + 0.5) * 360 / float64(ring.NSectors())
}
