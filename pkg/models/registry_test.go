package models_test

import (
	"context"
	"testing"

	"github.com/ANUcybernetics/trajectory-tracer/pkg/domain"
	"github.com/ANUcybernetics/trajectory-tracer/pkg/models"
	"github.com/ANUcybernetics/trajectory-tracer/pkg/utils/cmp"
)

type fakeGenerator struct {
	modality domain.Modality
}

func (f fakeGenerator) Modality() domain.Modality { return f.modality }

func (f fakeGenerator) Generate(context.Context, domain.Output, int) (domain.Output, error) {
	return domain.TextOutput("fake"), nil
}

type fakeEmbedder struct{}

func (fakeEmbedder) Embed(context.Context, domain.Output) ([]float32, error) {
	return []float32{0}, nil
}

func TestRegistry(t *testing.T) {
	t.Run("it resolves registered generators and their modality", func(t *testing.T) {
		reg := models.NewRegistry()
		if err := reg.AddGenerator("t2i", fakeGenerator{modality: domain.Image}, models.Capacity{}); err != nil {
			t.Fatal(err)
		}
		if err := reg.AddGenerator("i2t", fakeGenerator{modality: domain.Text}, models.Capacity{}); err != nil {
			t.Fatal(err)
		}

		if _, ok := reg.Generator("t2i"); !ok {
			t.Error("registered generator is not found")
		}
		if modality, ok := reg.OutputModality("t2i"); !ok || modality != domain.Image {
			t.Errorf("unexpected modality for t2i: %s", modality)
		}
		if modality, ok := reg.OutputModality("i2t"); !ok || modality != domain.Text {
			t.Errorf("unexpected modality for i2t: %s", modality)
		}
		if _, ok := reg.OutputModality("no-such-model"); ok {
			t.Error("unknown model resolves a modality")
		}
	})

	t.Run("it rejects double registration", func(t *testing.T) {
		reg := models.NewRegistry()
		if err := reg.AddGenerator("m", fakeGenerator{modality: domain.Text}, models.Capacity{}); err != nil {
			t.Fatal(err)
		}
		if err := reg.AddGenerator("m", fakeGenerator{modality: domain.Text}, models.Capacity{}); err == nil {
			t.Error("second registration of m is accepted")
		}
	})

	t.Run("it defaults capacity to one slot", func(t *testing.T) {
		reg := models.NewRegistry()
		if err := reg.AddGenerator("m", fakeGenerator{modality: domain.Text}, models.Capacity{}); err != nil {
			t.Fatal(err)
		}
		entry, _ := reg.Generator("m")
		if entry.Capacity.Slots != 1 {
			t.Errorf("default slots = %d (expected 1)", entry.Capacity.Slots)
		}
	})

	t.Run("it lists names sorted", func(t *testing.T) {
		reg := models.NewRegistry()
		for _, name := range []string{"zebra", "alpaca", "mule"} {
			if err := reg.AddGenerator(name, fakeGenerator{modality: domain.Text}, models.Capacity{}); err != nil {
				t.Fatal(err)
			}
		}
		if err := reg.AddEmbedder("emb", fakeEmbedder{}, models.Capacity{}); err != nil {
			t.Fatal(err)
		}

		if !cmp.SliceEq(reg.GeneratorNames(), []string{"alpaca", "mule", "zebra"}) {
			t.Errorf("generator names are not sorted: %v", reg.GeneratorNames())
		}
		if !cmp.SliceEq(reg.EmbedderNames(), []string{"emb"}) {
			t.Errorf("unexpected embedder names: %v", reg.EmbedderNames())
		}
	})
}
