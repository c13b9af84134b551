// pkg/render/diagnostics.go
package render

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/David-Botos/sales-clean/pkg/model"
)

// Snapshot titles keyed by snapshot name
var snapshotTitles = map[string]string{
	"isnull":       "Nulls in dataframe",
	"isnull_fixed": "Fixed nulls in dataframe",
}

// HeatmapSink writes null snapshots as PNG heatmaps, one file per snapshot name
type HeatmapSink struct {
	dir    string
	logger *zap.Logger
	width  vg.Length
	height vg.Length
}

// NewHeatmapSink creates a sink writing into dir
func NewHeatmapSink(dir string, logger *zap.Logger) *HeatmapSink {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HeatmapSink{
		dir:    dir,
		logger: logger,
		width:  10 * vg.Inch,
		height: 6 * vg.Inch,
	}
}

// Path returns the file a snapshot with the given name is written to
func (s *HeatmapSink) Path(name string) string {
	return filepath.Join(s.dir, name+".png")
}

// ExportSnapshot renders snap as <dir>/<name>.png. Absent cells are drawn hot.
func (s *HeatmapSink) ExportSnapshot(name string, snap model.NullSnapshot) error {
	if snap.Rows() == 0 || len(snap.Columns) == 0 {
		return fmt.Errorf("snapshot %q is empty", name)
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create images directory: %w", err)
	}

	p := plot.New()
	p.Title.Text = snapshotTitles[name]
	if p.Title.Text == "" {
		p.Title.Text = name
	}

	hm := plotter.NewHeatMap(nullGrid{snap: snap}, palette.Heat(2, 1))
	hm.Min, hm.Max = 0, 1
	p.Add(hm)
	p.NominalX(snap.Columns...)
	p.X.Tick.Label.Rotation = 1.2
	p.Y.Label.Text = "row"

	path := s.Path(name)
	if err := p.Save(s.width, s.height, path); err != nil {
		return fmt.Errorf("failed to save %s: %w", path, err)
	}

	s.logger.Info("Null snapshot exported",
		zap.String("snapshot", name),
		zap.String("path", path),
		zap.Int("absentCount", snap.AbsentCount()))
	return nil
}

// nullGrid adapts a snapshot to plotter.GridXYZ with columns on X and rows on Y
type nullGrid struct {
	snap model.NullSnapshot
}

func (g nullGrid) Dims() (c, r int) {
	return len(g.snap.Columns), g.snap.Rows()
}

func (g nullGrid) Z(c, r int) float64 {
	if g.snap.Absent[r][c] {
		return 1
	}
	return 0
}

func (g nullGrid) X(c int) float64 { return float64(c) }

func (g nullGrid) Y(r int) float64 { return float64(r) }
