package density

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	_ "github.com/go-sql-driver/mysql"
	sqlx "github.com/jmoiron/sqlx" //make alias name the package to sqlx
	_ "modernc.org/sqlite"
)

const sqlitePrefix = "sqlite://"

// ConnectToDatabase opens the calibration database. A host of the form
// sqlite://path opens a local SQLite file instead of the MySQL server.
func ConnectToDatabase(user string, pass string, host string, dbname string) (*sqlx.DB, error) {
	if path, ok := strings.CutPrefix(host, sqlitePrefix); ok {
		return sqlx.Connect("sqlite", path)
	}
	port := "3306"
	dbURI := fmt.Sprintf("%s:%s@(%s:%s)/%s?parseTime=true&multiStatements=true", user, pass, host, port, dbname)
	return sqlx.Connect("mysql", dbURI)
}

type axisRow struct {
	MinRun int     `db:"MinRun"`
	MaxRun int     `db:"MaxRun"`
	NBins  int     `db:"NBins"`
	EtaMin float64 `db:"EtaMin"`
	EtaMax float64 `db:"EtaMax"`
	LowCut float64 `db:"LowCut"`
}

type fitRow struct {
	MinRun   int     `db:"MinRun"`
	MaxRun   int     `db:"MaxRun"`
	Detector int     `db:"Detector"`
	Ring     string  `db:"Ring"`
	EtaBin   int     `db:"EtaBin"`
	Quality  int     `db:"Quality"`
	Chi2     float64 `db:"Chi2"`
	NDF      int     `db:"NDF"`
	C        float64 `db:"C"`
	Delta    float64 `db:"Delta"`
	Xi       float64 `db:"Xi"`
	Sigma    float64 `db:"Sigma"`
	SigmaN   float64 `db:"SigmaN"`
	LowCut   float64 `db:"LowCut"`
}

type weightRow struct {
	MinRun   int     `db:"MinRun"`
	MaxRun   int     `db:"MaxRun"`
	Detector int     `db:"Detector"`
	Ring     string  `db:"Ring"`
	EtaBin   int     `db:"EtaBin"`
	Particle int     `db:"Particle"`
	A        float64 `db:"A"`
	EA       float64 `db:"EA"`
}

type doubleHitRow struct {
	MinRun   int    `db:"MinRun"`
	MaxRun   int    `db:"MaxRun"`
	Detector int    `db:"Detector"`
	Ring     string `db:"Ring"`
	DoubleHitBin
}

type fitKey struct {
	detector int
	ring     string
	etaBin   int
}

func logQuery(query string) {
	if verbosity > 2 {
		logger.Info(fmt.Sprintf("Query: %s", query), "database")
	}
}

// LoadCalibration reads the calibration valid for a run. When several
// calibrations cover the run the one with the latest MinRun wins.
func LoadCalibration(db *sqlx.DB, runNumber int) (*Calibration, error) {
	if verbosity > 0 {
		logger.Info(fmt.Sprintf("Reading calibration for run %d from database", runNumber), "database")
	}
	query := "SELECT MinRun, MaxRun, NBins, EtaMin, EtaMax, LowCut FROM ELossAxis " +
		"WHERE MinRun <= ? AND MaxRun >= ? ORDER BY MinRun DESC LIMIT 1"
	logQuery(query)
	var axis axisRow
	if err := db.Get(&axis, query, runNumber, runNumber); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("no calibration for run %d", runNumber)
		}
		return nil, fmt.Errorf("error querying database: %w", err)
	}

	file := CalibrationFile{
		MinRun:  axis.MinRun,
		MaxRun:  axis.MaxRun,
		EtaAxis: EtaAxis{NBins: axis.NBins, Min: axis.EtaMin, Max: axis.EtaMax},
		LowCut:  axis.LowCut,
	}

	fits, err := getFitsFromDB(db, axis.MinRun, axis.MaxRun)
	if err != nil {
		return nil, err
	}
	file.Fits = fits

	file.DoubleHit, err = getDoubleHitFromDB(db, axis.MinRun, axis.MaxRun)
	if err != nil {
		return nil, err
	}
	return NewCalibration(file)
}

func getFitsFromDB(db *sqlx.DB, minRun, maxRun int) ([]*ELossFitParams, error) {
	query := "SELECT MinRun, MaxRun, Detector, Ring, EtaBin, Quality, Chi2, NDF, C, Delta, Xi, Sigma, SigmaN, LowCut " +
		"FROM ELossFits WHERE MinRun = ? AND MaxRun = ? ORDER BY Detector, Ring, EtaBin"
	logQuery(query)
	rows, err := db.Queryx(query, minRun, maxRun)
	if err != nil {
		return nil, fmt.Errorf("error querying database: %w", err)
	}
	defer rows.Close()

	fits := make([]*ELossFitParams, 0)
	byKey := make(map[fitKey]*ELossFitParams)
	for rows.Next() {
		result := fitRow{}
		if err := rows.StructScan(&result); err != nil {
			return nil, fmt.Errorf("error scanning DB row: %w", err)
		}
		fit := &ELossFitParams{
			Detector: result.Detector,
			Ring:     result.Ring,
			EtaBin:   result.EtaBin,
			Quality:  result.Quality,
			Chi2:     result.Chi2,
			NDF:      result.NDF,
			C:        result.C,
			Delta:    result.Delta,
			Xi:       result.Xi,
			Sigma:    result.Sigma,
			SigmaN:   result.SigmaN,
			LowCut:   result.LowCut,
		}
		fits = append(fits, fit)
		byKey[fitKey{result.Detector, result.Ring, result.EtaBin}] = fit
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error reading DB rows: %w", err)
	}

	query = "SELECT MinRun, MaxRun, Detector, Ring, EtaBin, Particle, A, EA " +
		"FROM ELossWeights WHERE MinRun = ? AND MaxRun = ? ORDER BY Detector, Ring, EtaBin, Particle"
	logQuery(query)
	var weights []weightRow
	if err := db.Select(&weights, query, minRun, maxRun); err != nil {
		return nil, fmt.Errorf("error querying database: %w", err)
	}
	for _, w := range weights {
		fit, ok := byKey[fitKey{w.Detector, w.Ring, w.EtaBin}]
		if !ok {
			logger.Warning(fmt.Sprintf("Weight a_%d for FMD%d%s bin %d without fit", w.Particle, w.Detector, w.Ring, w.EtaBin), "database")
			continue
		}
		if w.Particle < 2 {
			return nil, fmt.Errorf("invalid particle number %d for FMD%d%s bin %d", w.Particle, w.Detector, w.Ring, w.EtaBin)
		}
		i := w.Particle - 2
		for len(fit.A) <= i {
			fit.A = append(fit.A, 0)
			fit.EA = append(fit.EA, 0)
		}
		fit.A[i] = w.A
		fit.EA[i] = w.EA
	}
	return fits, nil
}

func getDoubleHitFromDB(db *sqlx.DB, minRun, maxRun int) ([]DoubleHitRing, error) {
	query := "SELECT MinRun, MaxRun, Detector, Ring, EtaLow, EtaHigh, Value " +
		"FROM DoubleHit WHERE MinRun = ? AND MaxRun = ? ORDER BY Detector, Ring, EtaLow"
	logQuery(query)
	var rows []doubleHitRow
	if err := db.Select(&rows, query, minRun, maxRun); err != nil {
		return nil, fmt.Errorf("error querying database: %w", err)
	}

	var rings []DoubleHitRing
	for _, row := range rows {
		n := len(rings)
		if n == 0 || rings[n-1].Detector != row.Detector || rings[n-1].Ring != row.Ring {
			rings = append(rings, DoubleHitRing{Detector: row.Detector, Ring: row.Ring})
			n++
		}
		rings[n-1].Bins = append(rings[n-1].Bins, row.DoubleHitBin)
	}
	return rings, nil
}

// StoreCalibration inserts a calibration in a single transaction.
func StoreCalibration(db *sqlx.DB, calib *Calibration) (err error) {
	tx, err := db.Beginx()
	if err != nil {
		return fmt.Errorf("error starting transaction: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	axis := axisRow{
		MinRun: calib.MinRun,
		MaxRun: calib.MaxRun,
		NBins:  calib.ELoss.Axis.NBins,
		EtaMin: calib.ELoss.Axis.Min,
		EtaMax: calib.ELoss.Axis.Max,
		LowCut: calib.ELoss.LowCut,
	}
	if _, err = tx.NamedExec("INSERT INTO ELossAxis (MinRun, MaxRun, NBins, EtaMin, EtaMax, LowCut) "+
		"VALUES (:MinRun, :MaxRun, :NBins, :EtaMin, :EtaMax, :LowCut)", axis); err != nil {
		return fmt.Errorf("error inserting eta axis: %w", err)
	}

	for _, fit := range calib.ELoss.Fits() {
		row := fitRow{
			MinRun:   calib.MinRun,
			MaxRun:   calib.MaxRun,
			Detector: fit.Detector,
			Ring:     fit.Ring,
			EtaBin:   fit.EtaBin,
			Quality:  fit.Quality,
			Chi2:     fit.Chi2,
			NDF:      fit.NDF,
			C:        fit.C,
			Delta:    fit.Delta,
			Xi:       fit.Xi,
			Sigma:    fit.Sigma,
			SigmaN:   fit.SigmaN,
			LowCut:   fit.LowCut,
		}
		if _, err = tx.NamedExec("INSERT INTO ELossFits "+
			"(MinRun, MaxRun, Detector, Ring, EtaBin, Quality, Chi2, NDF, C, Delta, Xi, Sigma, SigmaN, LowCut) VALUES "+
			"(:MinRun, :MaxRun, :Detector, :Ring, :EtaBin, :Quality, :Chi2, :NDF, :C, :Delta, :Xi, :Sigma, :SigmaN, :LowCut)", row); err != nil {
			return fmt.Errorf("error inserting fit %v: %w", fit, err)
		}
		for i, a := range fit.A {
			w := weightRow{
				MinRun:   calib.MinRun,
				MaxRun:   calib.MaxRun,
				Detector: fit.Detector,
				Ring:     fit.Ring,
				EtaBin:   fit.EtaBin,
				Particle: i + 2,
				A:        a,
			}
			if i < len(fit.EA) {
				w.EA = fit.EA[i]
			}
			if _, err = tx.NamedExec("INSERT INTO ELossWeights "+
				"(MinRun, MaxRun, Detector, Ring, EtaBin, Particle, A, EA) VALUES "+
				"(:MinRun, :MaxRun, :Detector, :Ring, :EtaBin, :Particle, :A, :EA)", w); err != nil {
				return fmt.Errorf("error inserting weight of fit %v: %w", fit, err)
			}
		}
	}

	for _, dh := range calib.File().DoubleHit {
		for _, bin := range dh.Bins {
			row := doubleHitRow{
				MinRun:       calib.MinRun,
				MaxRun:       calib.MaxRun,
				Detector:     dh.Detector,
				Ring:         dh.Ring,
				DoubleHitBin: bin,
			}
			if _, err = tx.NamedExec("INSERT INTO DoubleHit "+
				"(MinRun, MaxRun, Detector, Ring, EtaLow, EtaHigh, Value) VALUES "+
				"(:MinRun, :MaxRun, :Detector, :Ring, :EtaLow, :EtaHigh, :Value)", row); err != nil {
				return fmt.Errorf("error inserting double hit correction: %w", err)
			}
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("error committing calibration: %w", err)
	}
	return nil
}
