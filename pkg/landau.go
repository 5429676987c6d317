package density

import (
	"math"

	"gonum.org/v1/gonum/integrate/quad"
	"gonum.org/v1/gonum/stat/distuv"
)

// Shift between the location parameter of the Landau density and its most
// probable value.
const landauMPVShift = -0.22278298

// Number of sigmas and quadrature points used in the Landau-Gauss
// convolution.
const (
	convolutionSigma  = 5
	convolutionPoints = 100
)

var (
	landauP1 = [5]float64{0.4259894875, -0.1249762550, 0.03984243700, -0.006298287635, 0.001511162253}
	landauQ1 = [5]float64{1.0, -0.3388260629, 0.09594393323, -0.01608042283, 0.003778942063}
	landauP2 = [5]float64{0.1788541609, 0.1173957403, 0.01488850518, -0.001394989411, 0.0001283617211}
	landauQ2 = [5]float64{1.0, 0.7428795082, 0.3153932961, 0.06694219548, 0.008790609714}
	landauP3 = [5]float64{0.1788544503, 0.09359161662, 0.006325387654, 0.00006611667319, -0.000002031049101}
	landauQ3 = [5]float64{1.0, 0.6097809921, 0.2560616665, 0.04746722384, 0.006957301675}
	landauP4 = [5]float64{0.9874054407, 118.6723273, 849.2794360, -743.7792444, 427.0262186}
	landauQ4 = [5]float64{1.0, 106.8615961, 337.6496214, 2016.712389, 1597.063511}
	landauP5 = [5]float64{1.003675074, 167.5702434, 4789.711289, 21217.86767, -22324.94910}
	landauQ5 = [5]float64{1.0, 156.9424537, 3745.310488, 9834.698876, 66924.28357}
	landauP6 = [5]float64{1.000827619, 664.9143136, 62972.92665, 475554.6998, -5743609.109}
	landauQ6 = [5]float64{1.0, 651.4101098, 56974.73333, 165917.4725, -2815759.939}
	landauA1 = [3]float64{0.04166666667, -0.01996527778, 0.02709538966}
	landauA2 = [2]float64{-1.845568670, -4.284640743}
)

func poly4(c [5]float64, x float64) float64 {
	return c[0] + (c[1]+(c[2]+(c[3]+c[4]*x)*x)*x)*x
}

// landauDensity is the normalised Landau density with location x0 and
// width xi (CERNLIB G110 rational approximation).
func landauDensity(x, x0, xi float64) float64 {
	if xi <= 0 {
		return 0
	}
	v := (x - x0) / xi
	var d float64
	switch {
	case v < -5.5:
		u := math.Exp(v + 1.0)
		if u < 1e-10 {
			return 0
		}
		ue := math.Exp(-1 / u)
		us := math.Sqrt(u)
		d = 0.3989422803 * (ue / us) * (1 + (landauA1[0]+(landauA1[1]+landauA1[2]*u)*u)*u)
	case v < -1:
		u := math.Exp(-v - 1)
		d = math.Exp(-u) * math.Sqrt(u) * poly4(landauP1, v) / poly4(landauQ1, v)
	case v < 1:
		d = poly4(landauP2, v) / poly4(landauQ2, v)
	case v < 5:
		d = poly4(landauP3, v) / poly4(landauQ3, v)
	case v < 12:
		u := 1 / v
		d = u * u * poly4(landauP4, u) / poly4(landauQ4, u)
	case v < 50:
		u := 1 / v
		d = u * u * poly4(landauP5, u) / poly4(landauQ5, u)
	case v < 300:
		u := 1 / v
		d = u * u * poly4(landauP6, u) / poly4(landauQ6, u)
	default:
		u := 1 / (v - v*math.Log(v)/(v+1))
		d = u * u * (1 + (landauA2[0]+landauA2[1]*u)*u)
	}
	return d / xi
}

// LandauGaus is the energy loss response of a single particle: a Landau
// with most probable value delta and width xi convolved with a Gaussian of
// width sqrt(sigma^2 + sigmaN^2).
func LandauGaus(x, delta, xi, sigma, sigmaN float64) float64 {
	sigma1 := math.Sqrt(sigma*sigma + sigmaN*sigmaN)
	x0 := delta - xi*landauMPVShift
	if sigma1 <= 0 {
		return landauDensity(x, x0, xi)
	}
	gauss := distuv.Normal{Mu: x, Sigma: sigma1}
	f := func(xx float64) float64 {
		return landauDensity(xx, x0, xi) * gauss.Prob(xx)
	}
	lo := x - convolutionSigma*sigma1
	hi := x + convolutionSigma*sigma1
	return quad.Fixed(f, lo, hi, convolutionPoints, nil, 0)
}

// NLandauGaus is the response of i particles traversing the strip at the
// same time.
func NLandauGaus(x, delta, xi, sigma, sigmaN float64, i int) float64 {
	fi := float64(i)
	deltaI := delta
	if i > 1 {
		deltaI = fi * (delta + xi*math.Log(fi))
	}
	xiI := fi * xi
	sigmaI := math.Sqrt(fi) * sigma
	return LandauGaus(x, deltaI, xiI, sigmaI, sigmaN)
}
