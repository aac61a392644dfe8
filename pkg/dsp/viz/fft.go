package viz

import (
	"bytes"
	"math"
	"math/cmplx"
	"sync"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/sdrlab/simradio/pkg/dsp/window"
)

const fftAvg = 0.10 // exponential averaging factor between renders

// FFTPlotter renders the averaged power spectrum of the most recent samples
// appended to it. Safe for one appending goroutine plus the render loop.
type FFTPlotter struct {
	mu           sync.Mutex
	buf          []complex64
	win          []float64
	averagePower []float64
	sampleRate   float64
	size         int
	name         string
	plotOptions  []PlotOptions
}

func NewFFTPlotter(name string, size int, sampleRate float64) *FFTPlotter {
	return &FFTPlotter{
		buf:          make([]complex64, size),
		win:          window.Blackman(size),
		averagePower: make([]float64, size),
		sampleRate:   sampleRate,
		size:         size,
		name:         name,
	}
}

func (p *FFTPlotter) Name() string {
	return p.name
}

func (p *FFTPlotter) AddPlotOption(opt PlotOptions) {
	p.plotOptions = append(p.plotOptions, opt)
}

// Append slides the given samples into the plotter's window, keeping the
// most recent size samples.
func (p *FFTPlotter) Append(s []complex64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(s) >= p.size {
		copy(p.buf, s[len(s)-p.size:])
		return
	}
	p.buf = append(p.buf, s...)
	p.buf = p.buf[len(s):]
}

// GetImage renders the current averaged spectrum as a PNG.
func (p *FFTPlotter) GetImage() *ImageContainer {
	p.mu.Lock()
	data := make([]complex128, p.size)
	for i, s := range p.buf {
		// Windowed and normalized by the window's coherent gain.
		data[i] = complex128(s) * complex(p.win[i]/(0.42*float64(p.size)), 0)
	}
	p.mu.Unlock()

	f := fourier.NewCmplxFFT(p.size)
	coeffs := f.Coefficients(nil, data)

	xys := make(plotter.XYs, len(coeffs))
	for i := range coeffs {
		shift := f.ShiftIdx(i)
		mag := cmplx.Abs(coeffs[shift])
		p.averagePower[i] = (1.0-fftAvg)*p.averagePower[i] + fftAvg*mag

		db := -140.0
		if p.averagePower[i] > 0 {
			db = 20 * math.Log10(p.averagePower[i])
		}
		xys[i] = plotter.XY{X: f.Freq(shift) * p.sampleRate, Y: db}
	}

	pl := plotWithDefaults()
	pl.Title.Text = p.name
	pl.X.Label.Text = "Frequency (Hz)"
	pl.Y.Label.Text = "Power (dB)"
	pl.Y.Min = -100
	pl.Y.Max = 0
	for _, opt := range p.plotOptions {
		opt(pl)
	}
	pl.Add(plotter.NewGrid())
	plotutil.AddLines(pl, "spectrum", xys)

	var imageData bytes.Buffer
	w, err := pl.WriterTo(8*vg.Inch, 6*vg.Inch, "png")
	if err != nil {
		panic(err)
	}
	w.WriteTo(&imageData)
	return &ImageContainer{name: p.name, data: imageData.Bytes()}
}
