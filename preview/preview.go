package preview

import (
	"errors"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"math"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/vector"

	"github.com/gogpu/svgmesh/geom"
	"github.com/gogpu/svgmesh/mesh"
)

// ErrInvalidSize is returned for non-positive image dimensions.
var ErrInvalidSize = errors.New("preview: invalid image size")

// Options configures a preview rendering.
type Options struct {
	// Width and Height of the output image in pixels.
	Width, Height int
	// Padding in pixels kept free around the mesh bounds.
	Padding int
	// Background fills the image before drawing. Nil leaves it transparent.
	Background color.Color
	// YDown is set for meshes tessellated with a Y-down axis. Y-up meshes
	// are flipped so they appear upright.
	YDown bool
	// Supersample renders at this multiple of the output size and scales
	// down. Values below 2 disable supersampling.
	Supersample int
	// Caption is drawn in the bottom-left corner when non-empty.
	Caption string
}

// DefaultOptions returns a 512x512 white preview with 16px padding.
func DefaultOptions() Options {
	return Options{
		Width:      512,
		Height:     512,
		Padding:    16,
		Background: color.White,
	}
}

// Render rasterizes m into a new image. The mesh bounds are fitted into the
// image preserving aspect ratio. Triangles are drawn in index order.
func Render(m *mesh.Mesh, opts Options) (*image.RGBA, error) {
	if opts.Width <= 0 || opts.Height <= 0 {
		return nil, ErrInvalidSize
	}
	ss := opts.Supersample
	if ss < 2 {
		ss = 1
	}
	w, h := opts.Width*ss, opts.Height*ss

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	if opts.Background != nil {
		draw.Draw(dst, dst.Bounds(), image.NewUniform(opts.Background), image.Point{}, draw.Src)
	}
	if m != nil && !m.IsEmpty() {
		v := newViewport(m.Bounds, w, h, opts.Padding*ss, opts.YDown)
		drawMesh(dst, m, v)
	}

	out := dst
	if ss > 1 {
		out = image.NewRGBA(image.Rect(0, 0, opts.Width, opts.Height))
		xdraw.CatmullRom.Scale(out, out.Bounds(), dst, dst.Bounds(), draw.Src, nil)
	}
	if opts.Caption != "" {
		if err := drawCaption(out, opts.Caption); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// WritePNG renders m and encodes the result as PNG.
func WritePNG(w io.Writer, m *mesh.Mesh, opts Options) error {
	img, err := Render(m, opts)
	if err != nil {
		return err
	}
	return png.Encode(w, img)
}

// viewport maps mesh coordinates to pixel coordinates.
type viewport struct {
	scale  float64
	tx, ty float64
	height float64
	flip   bool
}

func newViewport(b geom.Rect, w, h, pad int, yDown bool) viewport {
	availW := float64(w - 2*pad)
	availH := float64(h - 2*pad)
	if availW <= 0 || availH <= 0 {
		availW, availH, pad = float64(w), float64(h), 0
	}
	bw, bh := b.Width(), b.Height()
	scale := math.Inf(1)
	if bw > 0 {
		scale = availW / bw
	}
	if bh > 0 {
		scale = math.Min(scale, availH/bh)
	}
	if math.IsInf(scale, 1) {
		scale = 1
	}
	// Center the content in the available area.
	offX := float64(pad) + (availW-bw*scale)/2
	offY := float64(pad) + (availH-bh*scale)/2
	return viewport{
		scale:  scale,
		tx:     offX - b.Min.X*scale,
		ty:     offY - b.Min.Y*scale,
		height: float64(h),
		flip:   !yDown,
	}
}

func (v viewport) apply(x, y float32) (float32, float32) {
	px := float64(x)*v.scale + v.tx
	py := float64(y)*v.scale + v.ty
	if v.flip {
		py = v.height - py
	}
	return float32(px), float32(py)
}

// drawMesh draws runs of same-colored triangles.
func drawMesh(dst *image.RGBA, m *mesh.Mesh, v viewport) {
	b := dst.Bounds()
	r := vector.NewRasterizer(b.Dx(), b.Dy())
	var (
		runColor mesh.Color
		pending  bool
	)
	flush := func() {
		if !pending {
			return
		}
		r.Draw(dst, b, image.NewUniform(toNRGBA(runColor)), image.Point{})
		r.Reset(b.Dx(), b.Dy())
		pending = false
	}

	for i := 0; i+2 < len(m.Indices); i += 3 {
		i0, i1, i2 := m.Indices[i], m.Indices[i+1], m.Indices[i+2]
		if int(i0) >= len(m.Vertices) || int(i1) >= len(m.Vertices) || int(i2) >= len(m.Vertices) {
			continue
		}
		a, bv, c := m.Vertices[i0], m.Vertices[i1], m.Vertices[i2]
		if pending && a.Color != runColor {
			flush()
		}
		runColor = a.Color
		pending = true

		x, y := v.apply(a.X, a.Y)
		r.MoveTo(x, y)
		x, y = v.apply(bv.X, bv.Y)
		r.LineTo(x, y)
		x, y = v.apply(c.X, c.Y)
		r.LineTo(x, y)
		r.ClosePath()
	}
	flush()
}

func toNRGBA(c mesh.Color) color.NRGBA {
	ch := func(f float32) uint8 {
		switch {
		case f <= 0:
			return 0
		case f >= 1:
			return 255
		}
		return uint8(f*255 + 0.5)
	}
	return color.NRGBA{R: ch(c[0]), G: ch(c[1]), B: ch(c[2]), A: ch(c[3])}
}
