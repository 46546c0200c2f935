package engine_test

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/ANUcybernetics/trajectory-tracer/pkg/domain"
	"github.com/ANUcybernetics/trajectory-tracer/pkg/engine"
	"github.com/ANUcybernetics/trajectory-tracer/pkg/utils/try"
)

func pngBytes(t *testing.T, img image.Image, level png.CompressionLevel) []byte {
	t.Helper()
	buf := new(bytes.Buffer)
	enc := png.Encoder{CompressionLevel: level}
	if err := enc.Encode(buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func flatImage(c color.Color) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, 16, 16))
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func TestOutputHash(t *testing.T) {
	t.Run("text hashing is pure", func(t *testing.T) {
		a := try.To(engine.OutputHash(domain.TextOutput("hello"))).OrFatal(t)
		b := try.To(engine.OutputHash(domain.TextOutput("hello"))).OrFatal(t)
		if a != b {
			t.Errorf("same text, different hashes: %s != %s", a, b)
		}
		if len(a) != 64 {
			t.Errorf("hash should be a sha256 hex digest, got %q", a)
		}
	})

	t.Run("different texts hash differently", func(t *testing.T) {
		a := try.To(engine.OutputHash(domain.TextOutput("hello"))).OrFatal(t)
		b := try.To(engine.OutputHash(domain.TextOutput("hello!"))).OrFatal(t)
		if a == b {
			t.Error("different texts should not collide")
		}
	})

	t.Run("pixel-identical images hash identically across encodings", func(t *testing.T) {
		img := flatImage(color.RGBA{R: 200, G: 10, B: 10, A: 255})
		fast := pngBytes(t, img, png.BestSpeed)
		small := pngBytes(t, img, png.BestCompression)
		if bytes.Equal(fast, small) {
			t.Skip("encodings happen to coincide, nothing to compare")
		}

		a := try.To(engine.OutputHash(domain.ImageOutput(fast))).OrFatal(t)
		b := try.To(engine.OutputHash(domain.ImageOutput(small))).OrFatal(t)
		if a != b {
			t.Errorf("same pixels, different hashes: %s != %s", a, b)
		}
	})

	t.Run("different pixels hash differently", func(t *testing.T) {
		red := pngBytes(t, flatImage(color.RGBA{R: 255, A: 255}), png.DefaultCompression)
		blue := pngBytes(t, flatImage(color.RGBA{B: 255, A: 255}), png.DefaultCompression)

		a := try.To(engine.OutputHash(domain.ImageOutput(red))).OrFatal(t)
		b := try.To(engine.OutputHash(domain.ImageOutput(blue))).OrFatal(t)
		if a == b {
			t.Error("different images should not collide")
		}
	})

	t.Run("undecodable image bytes fail", func(t *testing.T) {
		if _, err := engine.OutputHash(domain.ImageOutput([]byte("not an image"))); err == nil {
			t.Error("an error should be reported for undecodable bytes")
		}
	})

	t.Run("text and image hashes come from different domains", func(t *testing.T) {
		img := pngBytes(t, flatImage(color.Black), png.DefaultCompression)
		a := try.To(engine.OutputHash(domain.ImageOutput(img))).OrFatal(t)
		b := try.To(engine.OutputHash(domain.TextOutput(string(img)))).OrFatal(t)
		if a == b {
			t.Error("image hash should be over re-encoded pixels, not raw bytes")
		}
	})
}
