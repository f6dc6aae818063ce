package preview

import (
	"fmt"
	"image"
	"image/color"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

const captionSize = 12

var (
	captionOnce sync.Once
	captionFont *opentype.Font
	captionErr  error
)

func loadCaptionFont() (*opentype.Font, error) {
	captionOnce.Do(func() {
		captionFont, captionErr = opentype.Parse(goregular.TTF)
	})
	return captionFont, captionErr
}

// drawCaption draws text in the bottom-left corner of dst.
func drawCaption(dst *image.RGBA, text string) error {
	f, err := loadCaptionFont()
	if err != nil {
		return fmt.Errorf("preview: load caption font: %w", err)
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    captionSize,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return fmt.Errorf("preview: caption face: %w", err)
	}
	defer face.Close()

	descent := face.Metrics().Descent.Ceil()
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(color.Black),
		Face: face,
		Dot:  fixed.P(dst.Bounds().Min.X+4, dst.Bounds().Max.Y-4-descent),
	}
	d.DrawString(text)
	return nil
}
