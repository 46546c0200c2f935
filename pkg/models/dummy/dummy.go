// Package dummy provides deterministic stand-in models.
//
// They are cheap pure functions of (input, seed), useful for wiring
// tests and dry-running experiment configs without loading real models.
package dummy

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"image"
	"image/color"
	"image/png"

	"github.com/ANUcybernetics/trajectory-tracer/pkg/domain"
	xe "github.com/ANUcybernetics/trajectory-tracer/pkg/errors"
)

const imageSize = 64

func digestOf(input domain.Output, seed int) [sha256.Size]byte {
	h := sha256.New()
	var seedBytes [8]byte
	binary.LittleEndian.PutUint64(seedBytes[:], uint64(seed))
	h.Write(seedBytes[:])
	switch input.Modality {
	case domain.Text:
		h.Write([]byte(input.Text))
	case domain.Image:
		h.Write(input.Image)
	}
	var d [sha256.Size]byte
	copy(d[:], h.Sum(nil))
	return d
}

// T2I renders a small PNG whose pixels are a pure function of
// (input text, seed).
type T2I struct{}

func (T2I) Modality() domain.Modality { return domain.Image }

func (T2I) Generate(_ context.Context, input domain.Output, seed int) (domain.Output, error) {
	if input.Modality != domain.Text {
		return domain.Output{}, xe.New("dummy-t2i takes text input")
	}

	d := digestOf(input, seed)
	img := image.NewRGBA(image.Rect(0, 0, imageSize, imageSize))
	for y := 0; y < imageSize; y++ {
		for x := 0; x < imageSize; x++ {
			b := d[(x+y*imageSize)%len(d)]
			img.SetRGBA(x, y, color.RGBA{
				R: b,
				G: d[(int(b)+x)%len(d)],
				B: d[(int(b)+y)%len(d)],
				A: 0xff,
			})
		}
	}

	buf := new(bytes.Buffer)
	if err := png.Encode(buf, img); err != nil {
		return domain.Output{}, xe.Wrap(err)
	}
	return domain.ImageOutput(buf.Bytes()), nil
}

// I2T captions an image with a deterministic pseudo-caption derived
// from (image bytes, seed).
type I2T struct{}

func (I2T) Modality() domain.Modality { return domain.Text }

func (I2T) Generate(_ context.Context, input domain.Output, seed int) (domain.Output, error) {
	if input.Modality != domain.Image {
		return domain.Output{}, xe.New("dummy-i2t takes image input")
	}
	d := digestOf(input, seed)
	return domain.TextOutput(fmt.Sprintf("a dummy caption of %x", d[:8])), nil
}

// Echo repeats its text input unchanged. A network of only Echo models
// stops with loop length 1 at the second step.
type Echo struct{}

func (Echo) Modality() domain.Modality { return domain.Text }

func (Echo) Generate(_ context.Context, input domain.Output, _ int) (domain.Output, error) {
	if input.Modality != domain.Text {
		return domain.Output{}, xe.New("dummy-echo takes text input")
	}
	return domain.TextOutput(input.Text), nil
}

// Embedder hashes content into a fixed-length unit-less vector.
type Embedder struct {
	// Dim is the vector length. Zero means 32.
	Dim int
}

func (e Embedder) Embed(_ context.Context, content domain.Output) ([]float32, error) {
	dim := e.Dim
	if dim <= 0 {
		dim = 32
	}
	d := digestOf(content, 0)
	vector := make([]float32, dim)
	for i := range vector {
		vector[i] = float32(d[i%len(d)])/255.0 - 0.5
	}
	return vector, nil
}
