// pkg/render/render.go
package render

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"

	"github.com/David-Botos/sales-clean/pkg/model"
)

// Chart file names
const (
	SalesHistogramFile     = "sales_count_histplot.png"
	QuantityScatterFile    = "quanttityordered_scatterplot.png"
	DealSizeBoxPlotFile    = "dealsize_sale_boxplot.png"
	CorrelationHeatmapFile = "corr_heatmap.png"
	MonthSalesFile         = "month_sales_bar.png"
	ProductLineSalesFile   = "productline_sales_bar.png"
	CountrySalesFile       = "country_sales_bar.png"
	CustomerSalesFile      = "customer_sales_quantity_bar.png"
	MonthlyPerYearFile     = "sales_by_month_per_year_plot.png"
)

// RequiredColumns must all be present before any chart is rendered
var RequiredColumns = []string{
	model.ColYear,
	model.ColMonth,
	model.ColSales,
	model.ColQuantityOrdered,
	model.ColCompanyName,
	model.ColProductLine,
	model.ColCountry,
	model.ColDealSize,
	model.ColOrderDate,
}

const (
	histogramBins    = 50
	topCustomers     = 15
	excludedSaleYear = 2005
)

// errNoData marks a chart skipped because its columns hold no numeric values
var errNoData = errors.New("no numeric data")

// chart builds one plot from a cleaned table
type chart struct {
	file  string
	build func(t *model.Table) (*plot.Plot, error)
}

// Visualizer renders the descriptive chart battery for a cleaned sales table
type Visualizer struct {
	dir    string
	logger *zap.Logger
	width  vg.Length
	height vg.Length
}

// NewVisualizer creates a visualizer writing PNG files into dir
func NewVisualizer(dir string, logger *zap.Logger) *Visualizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Visualizer{
		dir:    dir,
		logger: logger,
		width:  10 * vg.Inch,
		height: 6 * vg.Inch,
	}
}

// Dir returns the output directory
func (v *Visualizer) Dir() string {
	return v.dir
}

// RenderAll writes every chart. Missing required columns fail with a
// SchemaError before any file is written. Charts whose columns hold no
// numeric values are skipped with a warning.
func (v *Visualizer) RenderAll(t *model.Table) error {
	for _, name := range RequiredColumns {
		if !t.HasColumn(name) {
			return model.MissingColumn("render", name)
		}
	}
	if err := os.MkdirAll(v.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create images directory: %w", err)
	}

	start := time.Now()
	rendered := 0
	for _, c := range v.charts() {
		p, err := c.build(t)
		if errors.Is(err, errNoData) {
			v.logger.Warn("Chart skipped", zap.String("chart", c.file), zap.Error(err))
			continue
		}
		if err != nil {
			return fmt.Errorf("failed to build %s: %w", c.file, err)
		}
		path := filepath.Join(v.dir, c.file)
		if err := p.Save(v.width, v.height, path); err != nil {
			return fmt.Errorf("failed to save %s: %w", path, err)
		}
		rendered++
		v.logger.Debug("Chart rendered", zap.String("path", path))
	}

	v.logger.Info("Charts rendered",
		zap.Int("chartCount", rendered),
		zap.String("dir", v.dir),
		zap.Duration("duration", time.Since(start)))
	return nil
}

func (v *Visualizer) charts() []chart {
	return []chart{
		{SalesHistogramFile, salesHistogram},
		{QuantityScatterFile, quantityScatter},
		{DealSizeBoxPlotFile, dealSizeBoxPlot},
		{CorrelationHeatmapFile, correlationHeatmap},
		{MonthSalesFile, monthSales},
		{ProductLineSalesFile, productLineSales},
		{CountrySalesFile, countrySales},
		{CustomerSalesFile, customerSales},
		{MonthlyPerYearFile, monthlyPerYear},
	}
}
