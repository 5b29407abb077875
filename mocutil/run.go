package mocutil

import (
	"fmt"
	"io"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/cpmech-moc/moctran/fsr"
	"github.com/cpmech-moc/moctran/geomx"
	"github.com/cpmech-moc/moctran/solver"
	"github.com/cpmech-moc/moctran/surface"
	"github.com/cpmech-moc/moctran/track"
	"github.com/cpmech-moc/moctran/trackgen"
	"github.com/cpmech-moc/moctran/xsdata"
	"github.com/cpmech-moc/moctran/xsexp"
)

// materialFile is the TOML shape of one entry in a geometry file's
// [[materials]] array.
type materialFile struct {
	Handle   int         `toml:"handle"`
	Name     string      `toml:"name"`
	SigmaT   []float64   `toml:"sigma_t"`
	SigmaA   []float64   `toml:"sigma_a"`
	NuSigF   []float64   `toml:"nu_sig_f"`
	Chi      []float64   `toml:"chi"`
	SigmaS   [][]float64 `toml:"sigma_s"`
}

// cellFile describes one axis-aligned rectangular material region, the one
// shape the geometry file format expresses. The minimal track generator's
// self-coupled reflective tracks target axis-aligned geometries (see
// trackgen's package doc).
type cellFile struct {
	UserID   int     `toml:"user_id"`
	Material int     `toml:"material"`
	XMin     float64 `toml:"x_min"`
	XMax     float64 `toml:"x_max"`
	YMin     float64 `toml:"y_min"`
	YMax     float64 `toml:"y_max"`
}

// quadratureFile is the polar/azimuthal quadrature plus ray-fan spacing.
type quadratureFile struct {
	NumAzimuthal int       `toml:"num_azimuthal"`
	RaySpacing   float64   `toml:"ray_spacing"`
	SinTheta     []float64 `toml:"sin_theta"`
	Weight       []float64 `toml:"weight"`
}

// geometryFile is the top-level TOML document `mocrun run` decodes.
type geometryFile struct {
	Boundary   string          `toml:"boundary"` // "reflective" or "vacuum"
	Materials  []materialFile  `toml:"materials"`
	Cells      []cellFile      `toml:"cells"`
	Quadrature quadratureFile  `toml:"quadrature"`
}

// RunFile loads path as a geometryFile, builds the world/materials/tracks
// it describes, runs the power iteration, and writes one summary line
// (k_eff, residual, iterations, leakage, convergence, wall time) to out
// once the iteration has finished; individual outer iterations are not
// logged.
func RunFile(cfg *Config, path string, out io.Writer) error {
	var gf geometryFile
	if _, err := toml.DecodeFile(path, &gf); err != nil {
		return fmt.Errorf("mocrun: decoding %s: %w", path, err)
	}

	materials, groups, err := buildMaterials(gf.Materials, cfg.GetInt("vector_length"))
	if err != nil {
		return err
	}

	world, err := buildWorld(gf.Cells)
	if err != nil {
		return err
	}

	bc := track.Reflective
	if gf.Boundary == "vacuum" {
		bc = track.Vacuum
	}

	fsrs := fsr.NewRegistry(groups)
	tracks, err := trackgen.Generate(world, fsrs, trackgen.Config{
		NumAzimuthal: gf.Quadrature.NumAzimuthal,
		RaySpacing:   gf.Quadrature.RaySpacing,
		Boundary:     bc,
	})
	if err != nil {
		return fmt.Errorf("mocrun: generating tracks: %w", err)
	}

	mode := xsexp.Interpolated
	if cfg.GetString("exponential_mode") == "direct" {
		mode = xsexp.Direct
	}
	scfg := solver.Config{
		MaxIterations:   cfg.GetInt("max_iterations"),
		SourceTolerance: cfg.GetFloat64("source_tolerance"),
		ThreadCount:     cfg.GetInt("thread_count"),
		ExponentialMode: mode,
	}
	quad := solver.Quadrature{SinTheta: gf.Quadrature.SinTheta, Weight: gf.Quadrature.Weight}

	s, err := solver.New(fsrs, tracks, materials, quad, groups, scfg)
	if err != nil {
		return fmt.Errorf("mocrun: building solver: %w", err)
	}

	start := time.Now()
	res, err := s.Solve()
	if err != nil {
		return fmt.Errorf("mocrun: %w", err)
	}
	fmt.Fprintf(out, "k_eff=%.6f residual=%.3e iterations=%d leakage=%.6e converged=%v wall=%s\n",
		res.KEff, res.Residual, res.Iterations, res.Leakage, res.Converged, time.Since(start))
	return nil
}

func buildMaterials(specs []materialFile, vectorWidth int) (map[int]*xsdata.Material, int, error) {
	if len(specs) == 0 {
		return nil, 0, fmt.Errorf("mocrun: geometry file defines no materials")
	}
	materials := make(map[int]*xsdata.Material, len(specs))
	groups := len(specs[0].SigmaT)
	for _, spec := range specs {
		m, err := xsdata.NewMaterial(spec.Handle, spec.Name, spec.SigmaT, spec.SigmaA, spec.NuSigF, spec.Chi, spec.SigmaS, vectorWidth)
		if err != nil {
			return nil, 0, fmt.Errorf("mocrun: material %q: %w", spec.Name, err)
		}
		materials[spec.Handle] = m
	}
	return materials, groups, nil
}

func buildWorld(specs []cellFile) (*geomx.World, error) {
	if len(specs) == 0 {
		return nil, fmt.Errorf("mocrun: geometry file defines no cells")
	}
	surfs := surface.NewRegistry()
	cells := geomx.NewRegistry()
	root := geomx.NewUniverse(1)

	for _, spec := range specs {
		left, err := surfs.NewXPlane(0, spec.XMin, surface.BoundaryNone)
		if err != nil {
			return nil, err
		}
		right, err := surfs.NewXPlane(0, spec.XMax, surface.BoundaryNone)
		if err != nil {
			return nil, err
		}
		bottom, err := surfs.NewYPlane(0, spec.YMin, surface.BoundaryNone)
		if err != nil {
			return nil, err
		}
		top, err := surfs.NewYPlane(0, spec.YMax, surface.BoundaryNone)
		if err != nil {
			return nil, err
		}
		cell, err := cells.NewMaterialCell(spec.UserID, root.ID, spec.Material, 0, 0)
		if err != nil {
			return nil, fmt.Errorf("mocrun: cell %d: %w", spec.UserID, err)
		}
		for _, b := range []struct {
			s  *surface.Surface
			hs int
		}{{left, 1}, {right, -1}, {bottom, 1}, {top, -1}} {
			if err := cell.AddSurface(b.hs, b.s); err != nil {
				return nil, err
			}
		}
		root.AddCell(cell)
	}

	w := geomx.NewWorld(root.ID)
	w.AddUniverse(root)
	w.Cells = cells
	w.Surfaces = surfs
	return w, nil
}
