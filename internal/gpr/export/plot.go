package export

import (
	"errors"
	"fmt"
	"image/color"
	"slices"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/banshee-data/gpr.report/internal/fsutil"
	"github.com/banshee-data/gpr.report/internal/gpr/footprint"
)

// ErrNothingToPlot is returned when no feature has a footprint.
var ErrNothingToPlot = errors.New("no footprints to plot")

// Plot dimensions.
const (
	plotWidth  = 10 * vg.Inch
	plotHeight = 10 * vg.Inch
	fillAlpha  = 96
)

// PlotFootprints renders every feature's footprint to a PNG at path, one
// colour per depth band.
func PlotFootprints(fsys fsutil.FileSystem, path, title string, features []footprint.Feature) error {
	var bands []string
	for _, f := range features {
		if len(f.Footprint) > 0 && !slices.Contains(bands, f.DepthBand) {
			bands = append(bands, f.DepthBand)
		}
	}
	if len(bands) == 0 {
		return ErrNothingToPlot
	}
	slices.Sort(bands)

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Easting"
	p.Y.Label.Text = "Northing"
	p.Legend.Top = true
	p.Legend.Left = false

	for i, band := range bands {
		line := plotutil.Color(i)
		fill := translucent(line)
		var legend *plotter.Polygon
		for _, f := range features {
			if f.DepthBand != band {
				continue
			}
			for _, poly := range f.Footprint {
				rings := make([]plotter.XYer, 0, len(poly))
				for _, ring := range poly {
					xys := make(plotter.XYs, len(ring))
					for k, pt := range ring {
						xys[k] = plotter.XY{X: pt.X(), Y: pt.Y()}
					}
					rings = append(rings, xys)
				}
				pg, err := plotter.NewPolygon(rings...)
				if err != nil {
					return fmt.Errorf("band %s: %w", band, err)
				}
				pg.Color = fill
				pg.LineStyle.Color = line
				pg.LineStyle.Width = vg.Points(1)
				p.Add(pg)
				if legend == nil {
					legend = pg
				}
			}
		}
		if legend != nil {
			p.Legend.Add(band, legend)
		}
	}

	wt, err := p.WriterTo(plotWidth, plotHeight, "png")
	if err != nil {
		return fmt.Errorf("render plot: %w", err)
	}
	f, err := fsys.Create(path)
	if err != nil {
		return fmt.Errorf("create plot file: %w", err)
	}
	if _, err := wt.WriteTo(f); err != nil {
		f.Close()
		return fmt.Errorf("write plot: %w", err)
	}
	return f.Close()
}

func translucent(c color.Color) color.Color {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	n.A = fillAlpha
	return n
}
