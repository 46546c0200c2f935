package dummy_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/ANUcybernetics/trajectory-tracer/pkg/domain"
	"github.com/ANUcybernetics/trajectory-tracer/pkg/models/dummy"
	"github.com/ANUcybernetics/trajectory-tracer/pkg/utils/try"
)

func TestT2I(t *testing.T) {
	ctx := context.Background()

	t.Run("it is deterministic for fixed (input, seed)", func(t *testing.T) {
		input := domain.TextOutput("a duck in a pond")

		a := try.To(dummy.T2I{}.Generate(ctx, input, 42)).OrFatal(t)
		b := try.To(dummy.T2I{}.Generate(ctx, input, 42)).OrFatal(t)

		if a.Modality != domain.Image {
			t.Errorf("t2i output is not an image: %s", a.Modality)
		}
		if !bytes.Equal(a.Image, b.Image) {
			t.Error("same input and seed render different images")
		}
	})

	t.Run("it varies with seed", func(t *testing.T) {
		input := domain.TextOutput("a duck in a pond")

		a := try.To(dummy.T2I{}.Generate(ctx, input, 1)).OrFatal(t)
		b := try.To(dummy.T2I{}.Generate(ctx, input, 2)).OrFatal(t)

		if bytes.Equal(a.Image, b.Image) {
			t.Error("different seeds render the same image")
		}
	})

	t.Run("it rejects image input", func(t *testing.T) {
		if _, err := (dummy.T2I{}).Generate(ctx, domain.ImageOutput([]byte{1}), 0); err == nil {
			t.Error("image input is accepted")
		}
	})
}

func TestI2T(t *testing.T) {
	ctx := context.Background()

	t.Run("it captions deterministically", func(t *testing.T) {
		img := try.To(dummy.T2I{}.Generate(ctx, domain.TextOutput("x"), 7)).OrFatal(t)

		a := try.To(dummy.I2T{}.Generate(ctx, img, 7)).OrFatal(t)
		b := try.To(dummy.I2T{}.Generate(ctx, img, 7)).OrFatal(t)

		if a.Modality != domain.Text {
			t.Errorf("i2t output is not text: %s", a.Modality)
		}
		if a.Text != b.Text {
			t.Errorf("same image captions differently: %q vs %q", a.Text, b.Text)
		}
	})

	t.Run("it rejects text input", func(t *testing.T) {
		if _, err := (dummy.I2T{}).Generate(ctx, domain.TextOutput("x"), 0); err == nil {
			t.Error("text input is accepted")
		}
	})
}

func TestEcho(t *testing.T) {
	t.Run("it repeats its input", func(t *testing.T) {
		out := try.To(
			dummy.Echo{}.Generate(context.Background(), domain.TextOutput("quack"), 3),
		).OrFatal(t)
		if out.Text != "quack" {
			t.Errorf("echo changed the text: %q", out.Text)
		}
	})
}

func TestEmbedder(t *testing.T) {
	ctx := context.Background()

	t.Run("it returns vectors of the configured dimension", func(t *testing.T) {
		vector := try.To(
			dummy.Embedder{Dim: 16}.Embed(ctx, domain.TextOutput("quack")),
		).OrFatal(t)
		if len(vector) != 16 {
			t.Errorf("unexpected dimension: %d", len(vector))
		}
	})

	t.Run("it is deterministic per content", func(t *testing.T) {
		a := try.To(dummy.Embedder{}.Embed(ctx, domain.TextOutput("quack"))).OrFatal(t)
		b := try.To(dummy.Embedder{}.Embed(ctx, domain.TextOutput("quack"))).OrFatal(t)
		c := try.To(dummy.Embedder{}.Embed(ctx, domain.TextOutput("honk"))).OrFatal(t)

		for i := range a {
			if a[i] != b[i] {
				t.Fatal("same content embeds differently")
			}
		}
		same := true
		for i := range a {
			if a[i] != c[i] {
				same = false
				break
			}
		}
		if same {
			t.Error("different content embeds identically")
		}
	})
}
