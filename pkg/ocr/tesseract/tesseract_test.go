package tesseract

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/draw"
	"testing"

	"bingocall/pkg/calibration"
	"bingocall/pkg/ocr"

	"github.com/disintegration/imaging"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// boardWithNumber renders a 1000x600 caller board with text drawn large inside
// the default calibration box.
func boardWithNumber(t *testing.T, text string) []byte {
	t.Helper()
	board := image.NewNRGBA(image.Rect(0, 0, 1000, 600))
	draw.Draw(board, board.Bounds(), image.NewUniform(color.NRGBA{250, 250, 250, 255}), image.Point{}, draw.Src)

	// draw at 7x13 then scale up so the glyphs are ~52px tall
	small := image.NewNRGBA(image.Rect(0, 0, 7*len(text)+4, 16))
	draw.Draw(small, small.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	d := &font.Drawer{
		Dst:  small,
		Src:  image.NewUniform(color.Black),
		Face: basicfont.Face7x13,
		Dot:  fixed.Point26_6{X: fixed.I(2), Y: fixed.I(13)},
	}
	d.DrawString(text)
	big := imaging.Resize(small, small.Bounds().Dx()*4, small.Bounds().Dy()*4, imaging.NearestNeighbor)

	// default box: rows 42..113, cols 792..856 on 1000x600
	at := image.Pt(792, 50)
	draw.Draw(board, big.Bounds().Add(at), big, image.Point{}, draw.Src)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, board, imaging.PNG); err != nil {
		t.Fatalf("encode: %v", err)
	}
	return buf.Bytes()
}

func TestRecognizeKnownDigits(t *testing.T) {
	p := ocr.New(&calibration.MemoryStore{}, New("eng"))
	res, err := p.Detect(context.Background(), boardWithNumber(t, "42"), nil)
	if err != nil {
		t.Fatalf("detect: %v", err)
	}
	if res.Digits != "42" || res.Label != "N42" {
		t.Fatalf("expected 42/N42 got %+v", res)
	}
}

func TestRecognizeBlankAreaIsNoDetection(t *testing.T) {
	p := ocr.New(&calibration.MemoryStore{}, New("eng"))
	blank := calibration.Calibration{Top: 0.5, Bottom: 0.7, Left: 0.1, Right: 0.3}
	res, err := p.Detect(context.Background(), boardWithNumber(t, "42"), &blank)
	if err != nil {
		t.Fatalf("detect: %v", err)
	}
	if res.Detected() {
		t.Fatalf("expected no detection, got %+v", res)
	}
}

func TestVersion(t *testing.T) {
	if Version() == "" {
		t.Fatalf("empty tesseract version")
	}
}
