package density

import (
	"encoding/json"
	"fmt"
)

// PhiAcceptance selects where the azimuthal acceptance of the sensor
// corners is corrected for.
type PhiAcceptance int

const (
	// PhiAcceptanceDisabled applies no acceptance correction.
	PhiAcceptanceDisabled PhiAcceptance = iota
	// PhiAcceptanceNch divides the estimated number of particles by the
	// acceptance as part of the inverse correction factor.
	PhiAcceptanceNch
	// PhiAcceptanceELoss scales the signal by the acceptance before the
	// multiplicity cut is applied.
	PhiAcceptanceELoss
)

var phiAcceptanceStrings = []string{
	"disabled",
	"particles",
	"energy-loss",
}

func (p PhiAcceptance) String() string {
	if p < PhiAcceptanceDisabled || p > PhiAcceptanceELoss {
		return "UNKNOWN"
	}
	return phiAcceptanceStrings[p]
}

func (p PhiAcceptance) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.String())
}

func (p *PhiAcceptance) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	for i, v := range phiAcceptanceStrings {
		if v == s {
			*p = PhiAcceptance(i)
			return nil
		}
	}
	return fmt.Errorf("invalid PhiAcceptance: %s", s)
}

// Method selects which estimate ends up in the density map.
type Method int

const (
	MethodEnergyLoss Method = iota
	MethodPoisson
)

var methodStrings = []string{
	"energy-loss",
	"poisson",
}

func (m Method) String() string {
	if m < MethodEnergyLoss || m > MethodPoisson {
		return "UNKNOWN"
	}
	return methodStrings[m]
}

func (m Method) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.String())
}

func (m *Method) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	for i, v := range methodStrings {
		if v == s {
			*m = Method(i)
			return nil
		}
	}
	return fmt.Errorf("invalid Method: %s", s)
}

// CutMode selects how the lower multiplicity cut is derived.
type CutMode int

const (
	// CutFixed uses a configured value per ring.
	CutFixed CutMode = iota
	// CutFitRange uses the lower bound of the energy loss fit range.
	CutFitRange
	// CutMPVFraction uses a fraction of the most probable energy loss.
	CutMPVFraction
	// CutNXi uses the most probable energy loss minus n Landau widths.
	CutNXi
)

var cutModeStrings = []string{
	"fixed",
	"fit-range",
	"mpv-fraction",
	"nxi",
}

func (c CutMode) String() string {
	if c < CutFixed || c > CutNXi {
		return "UNKNOWN"
	}
	return cutModeStrings[c]
}

func (c CutMode) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

func (c *CutMode) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	for i, v := range cutModeStrings {
		if v == s {
			*c = CutMode(i)
			return nil
		}
	}
	return fmt.Errorf("invalid CutMode: %s", s)
}
