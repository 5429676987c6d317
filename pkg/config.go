package density

type MultCutsConfig struct {
	Mode        CutMode            `json:"mode"`
	Fixed       map[string]float64 `json:"fixed"`
	MPVFraction float64            `json:"mpv_fraction"`
	NXi         float64            `json:"nxi"`
}

type Configuration struct {
	MaxEvents        int            `json:"max_events"`
	Skip             int            `json:"skip"`
	Verbosity        int            `json:"verbosity"`
	FileIn           string         `json:"file_in"`
	FileOut          string         `json:"file_out"`
	YodaOut          string         `json:"yoda_out"`
	PlotDir          string         `json:"plot_dir"`
	NoDB             bool           `json:"no_db"`
	CalibrationFile  string         `json:"calibration_file"`
	Host             string         `json:"host"`
	User             string         `json:"user"`
	Passwd           string         `json:"pass"`
	DBName           string         `json:"dbname"`
	RunNumber        int            `json:"run_number"`
	NumWorkers       int            `json:"num_workers"`
	Parallel         bool           `json:"parallel"`
	CompressionLevel int            `json:"compression_level"`
	Discard          bool           `json:"discard"`
	WriteData        bool           `json:"write_data"`
	MaxParticles     int            `json:"max_particles"`
	Method           Method         `json:"method"`
	PhiAcceptance    PhiAcceptance  `json:"phi_acceptance"`
	EtaLumping       int            `json:"eta_lumping"`
	PhiLumping       int            `json:"phi_lumping"`
	RecalculateEta   bool           `json:"recalculate_eta"`
	SanityBound      float64        `json:"signal_sanity_bound"`
	HitThreshold     float64        `json:"hit_threshold"`
	DensityAxis      EtaAxis        `json:"density_axis"`
	DefaultEtaAxis   EtaAxis        `json:"default_eta_axis"`
	MultCuts         MultCutsConfig `json:"mult_cuts"`
	MaxRelError      float64        `json:"max_rel_error"`
	LeastWeight      float64        `json:"least_weight"`
}

// DefaultConfiguration returns the configuration used when a field is not
// given in the configuration file.
func DefaultConfiguration() Configuration {
	var config Configuration
	config.MaxEvents = 1000000000
	config.Skip = 0
	config.Verbosity = 0
	config.NoDB = false
	config.Host = "localhost"
	config.User = "fmdreader"
	config.Passwd = "readonly"
	config.DBName = "FMDCALIB"
	config.NumWorkers = 1
	config.Parallel = false
	config.CompressionLevel = 4
	config.Discard = true
	config.WriteData = true
	config.MaxParticles = 5
	config.Method = MethodEnergyLoss
	config.PhiAcceptance = PhiAcceptanceNch
	config.EtaLumping = 32
	config.PhiLumping = 4
	config.RecalculateEta = false
	config.SanityBound = 20
	config.HitThreshold = 0.9
	config.DensityAxis = EtaAxis{NBins: 200, Min: -4, Max: 6}
	config.DefaultEtaAxis = EtaAxis{NBins: 200, Min: -4, Max: 6}
	config.MultCuts = MultCutsConfig{
		Mode:        CutFitRange,
		Fixed:       map[string]float64{},
		MPVFraction: 0.5,
		NXi:         1,
	}
	config.MaxRelError = 0.2
	config.LeastWeight = 1e-7
	return config
}
