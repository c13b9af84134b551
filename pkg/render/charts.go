// pkg/render/charts.go
package render

import (
	"fmt"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/David-Botos/sales-clean/pkg/converter"
	"github.com/David-Botos/sales-clean/pkg/model"
)

const tickRotation = math.Pi / 4

func salesHistogram(t *model.Table) (*plot.Plot, error) {
	values := numericValues(t, model.ColSales)
	if len(values) == 0 {
		return nil, errNoData
	}
	h, err := plotter.NewHist(plotter.Values(values), histogramBins)
	if err != nil {
		return nil, err
	}
	h.FillColor = plotutil.Color(0)

	p := plot.New()
	p.Title.Text = "Sales distribution"
	p.X.Label.Text = model.ColSales
	p.Y.Label.Text = "Count"
	p.Add(h)
	return p, nil
}

func quantityScatter(t *model.Table) (*plot.Plot, error) {
	xs, ys := pairedValues(t, model.ColQuantityOrdered, model.ColSales)
	if len(xs) == 0 {
		return nil, errNoData
	}
	pts := make(plotter.XYs, len(xs))
	for i := range xs {
		pts[i].X, pts[i].Y = xs[i], ys[i]
	}
	s, err := plotter.NewScatter(pts)
	if err != nil {
		return nil, err
	}
	s.GlyphStyle.Color = plotutil.Color(0)
	s.GlyphStyle.Radius = vg.Points(2)

	p := plot.New()
	p.Title.Text = "Quantity ordered vs sales"
	p.X.Label.Text = model.ColQuantityOrdered
	p.Y.Label.Text = model.ColSales
	p.Add(s)
	return p, nil
}

func dealSizeBoxPlot(t *model.Table) (*plot.Plot, error) {
	deals, _ := t.Column(model.ColDealSize)
	sales, _ := t.Column(model.ColSales)

	var names []string
	byDeal := make(map[string][]float64)
	for r := 0; r < t.Len(); r++ {
		f, ok := converter.ToFloat(sales.Values[r])
		if !ok || deals.Values[r] == nil {
			continue
		}
		name := fmt.Sprint(deals.Values[r])
		if _, seen := byDeal[name]; !seen {
			names = append(names, name)
		}
		byDeal[name] = append(byDeal[name], f)
	}
	if len(names) == 0 {
		return nil, errNoData
	}

	p := plot.New()
	p.Title.Text = "Sales by deal size"
	p.X.Label.Text = model.ColDealSize
	p.Y.Label.Text = model.ColSales
	for i, name := range names {
		b, err := plotter.NewBoxPlot(vg.Points(40), float64(i), plotter.Values(byDeal[name]))
		if err != nil {
			return nil, fmt.Errorf("box for %s: %w", name, err)
		}
		b.FillColor = plotutil.Color(i)
		p.Add(b)
	}
	p.NominalX(names...)
	return p, nil
}

func correlationHeatmap(t *model.Table) (*plot.Plot, error) {
	columns := numericColumns(t)
	if len(columns) == 0 {
		return nil, errNoData
	}
	grid := matrixGrid(correlationMatrix(t, columns))

	hm := plotter.NewHeatMap(grid, palette.Heat(12, 1))
	hm.Min, hm.Max = -1, 1

	p := plot.New()
	p.Title.Text = "Correlation of numeric columns"
	p.Add(hm)
	p.NominalX(columns...)
	p.NominalY(columns...)
	p.X.Tick.Label.Rotation = tickRotation
	return p, nil
}

func monthSales(t *model.Table) (*plot.Plot, error) {
	years, _ := t.Column(model.ColYear)
	keep := func(r int) bool {
		y, ok := converter.ToFloat(years.Values[r])
		return !ok || y != excludedSaleYear
	}
	groups := groupSum(t, model.ColMonth, model.ColSales, keep)
	return barChart(groups, "Sales by month", model.ColMonth, 0)
}

func productLineSales(t *model.Table) (*plot.Plot, error) {
	groups := groupSum(t, model.ColProductLine, model.ColSales, nil)
	return barChart(groups, "Sales by product line", model.ColProductLine, 1)
}

func countrySales(t *model.Table) (*plot.Plot, error) {
	groups := groupSum(t, model.ColCountry, model.ColSales, nil)
	sortByTotalDesc(groups)
	return barChart(groups, "Sales by country", model.ColCountry, 2)
}

// customerSales draws the top customers by sales with their ordered
// quantity as a line scaled onto the sales axis
func customerSales(t *model.Table) (*plot.Plot, error) {
	sales := groupSum(t, model.ColCompanyName, model.ColSales, nil)
	if len(sales) == 0 {
		return nil, errNoData
	}
	sortByTotalDesc(sales)
	if len(sales) > topCustomers {
		sales = sales[:topCustomers]
	}

	quantities := make(map[string]float64)
	for _, g := range groupSum(t, model.ColCompanyName, model.ColQuantityOrdered, nil) {
		quantities[g.Key] = g.Total
	}

	names := make([]string, len(sales))
	totals := make(plotter.Values, len(sales))
	maxSales, maxQty := 0.0, 0.0
	for i, g := range sales {
		names[i] = g.Key
		totals[i] = g.Total
		maxSales = math.Max(maxSales, g.Total)
		maxQty = math.Max(maxQty, quantities[g.Key])
	}
	scale := 1.0
	if maxQty > 0 {
		scale = maxSales / maxQty
	}
	pts := make(plotter.XYs, len(sales))
	for i, g := range sales {
		pts[i].X = float64(i)
		pts[i].Y = quantities[g.Key] * scale
	}

	bars, err := plotter.NewBarChart(totals, vg.Points(20))
	if err != nil {
		return nil, err
	}
	bars.Color = plotutil.Color(0)
	line, err := plotter.NewLine(pts)
	if err != nil {
		return nil, err
	}
	line.LineStyle.Color = plotutil.Color(1)
	line.LineStyle.Width = vg.Points(2)

	p := plot.New()
	p.Title.Text = fmt.Sprintf("Top %d customers by sales", len(sales))
	p.Y.Label.Text = model.ColSales
	p.Add(bars, line)
	p.Legend.Add(model.ColSales, bars)
	p.Legend.Add(model.ColQuantityOrdered+" (scaled)", line)
	p.Legend.Top = true
	p.NominalX(names...)
	p.X.Tick.Label.Rotation = tickRotation
	return p, nil
}

func monthlyPerYear(t *model.Table) (*plot.Plot, error) {
	yearCol, _ := t.Column(model.ColYear)
	years := groupSum(t, model.ColYear, model.ColSales, nil)
	if len(years) == 0 {
		return nil, errNoData
	}

	p := plot.New()
	p.Title.Text = "Sales by month per year"
	p.X.Label.Text = model.ColMonth
	p.Y.Label.Text = model.ColSales
	for i, year := range years {
		yr := year.Raw
		keep := func(r int) bool { return compareKeys(yearCol.Values[r], yr) == 0 }
		months := groupSum(t, model.ColMonth, model.ColSales, keep)

		pts := make(plotter.XYs, 0, len(months))
		for _, m := range months {
			x, ok := converter.ToFloat(m.Raw)
			if !ok {
				continue
			}
			pts = append(pts, plotter.XY{X: x, Y: m.Total})
		}
		if len(pts) == 0 {
			continue
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return nil, fmt.Errorf("line for %s: %w", year.Key, err)
		}
		line.LineStyle.Color = plotutil.Color(i)
		line.LineStyle.Width = vg.Points(2)
		p.Add(line)
		p.Legend.Add(year.Key, line)
	}
	p.Legend.Top = true
	return p, nil
}

func barChart(groups []group, title, axis string, colorIndex int) (*plot.Plot, error) {
	if len(groups) == 0 {
		return nil, errNoData
	}
	names := make([]string, len(groups))
	totals := make(plotter.Values, len(groups))
	for i, g := range groups {
		names[i] = g.Key
		totals[i] = g.Total
	}

	bars, err := plotter.NewBarChart(totals, vg.Points(20))
	if err != nil {
		return nil, err
	}
	bars.Color = plotutil.Color(colorIndex)

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = axis
	p.Y.Label.Text = model.ColSales
	p.Add(bars)
	p.NominalX(names...)
	if len(names) > 6 {
		p.X.Tick.Label.Rotation = tickRotation
	}
	return p, nil
}

// matrixGrid adapts a square matrix to plotter.GridXYZ, row 0 at the bottom
type matrixGrid [][]float64

func (m matrixGrid) Dims() (c, r int) { return len(m), len(m) }

func (m matrixGrid) Z(c, r int) float64 { return m[r][c] }

func (m matrixGrid) X(c int) float64 { return float64(c) }

func (m matrixGrid) Y(r int) float64 { return float64(r) }
