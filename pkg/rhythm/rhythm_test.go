package rhythm

import (
	"errors"
	"reflect"
	"testing"

	"github.com/james-see/codecomposer/pkg/errs"
)

var mixed = []Weight{
	{ClassQuarter, 0.35},
	{ClassEighth, 0.3},
	{ClassHalf, 0.1},
	{ClassDottedQuarter, 0.1},
	{ClassSixteenth, 0.05},
	{ClassTriplet, 0.05},
	{ClassWhole, 0.05},
}

func sum(ds []Duration) Duration {
	var total Duration
	for _, d := range ds {
		total += d
	}
	return total
}

func TestGenerateBarDurationsFillsBar(t *testing.T) {
	for _, ratio := range []float64{0.5, 0.667, 0.6, 0.75} {
		for seed := int64(0); seed < 200; seed++ {
			src := NewSource(seed)
			ds, err := GenerateBarDurations(mixed, ratio, src)
			if err != nil {
				t.Fatalf("seed %d ratio %v: error: %v", seed, ratio, err)
			}
			if got := sum(ds); got != Bar {
				t.Fatalf("seed %d ratio %v: sum = %d, want %d (%v)", seed, ratio, got, Bar, ds)
			}
		}
	}
}

func TestGenerateBarDurationsDeterministic(t *testing.T) {
	a, _ := GenerateBarDurations(mixed, 0.5, NewSource(42))
	b, _ := GenerateBarDurations(mixed, 0.5, NewSource(42))
	if !reflect.DeepEqual(a, b) {
		t.Errorf("same seed gave %v and %v", a, b)
	}
}

func TestGenerateBarDurationsSingleClass(t *testing.T) {
	tests := []struct {
		name     string
		class    Class
		swing    float64
		expected []Duration
	}{
		{"whole", ClassWhole, 0.5, []Duration{1920}},
		{"quarters", ClassQuarter, 0.5, []Duration{480, 480, 480, 480}},
		{"dotted quarter clipped", ClassDottedQuarter, 0.5, []Duration{720, 720, 480}},
		{"triplets", ClassTriplet, 0.5, []Duration{160, 160, 160, 160, 160, 160, 160, 160, 160, 160, 160, 160}},
		{"swung eighths", ClassEighth, 2.0 / 3.0, []Duration{320, 160, 320, 160, 320, 160, 320, 160}},
		{"swung triplets", ClassTriplet, 2.0 / 3.0, []Duration{320, 160, 320, 160, 320, 160, 320, 160}},
		{"swung quarters untouched", ClassQuarter, 2.0 / 3.0, []Duration{480, 480, 480, 480}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ds, err := GenerateBarDurations([]Weight{{tt.class, 1}}, tt.swing, NewSource(1))
			if err != nil {
				t.Fatalf("GenerateBarDurations() error: %v", err)
			}
			if !reflect.DeepEqual(ds, tt.expected) {
				t.Errorf("GenerateBarDurations() = %v, want %v", ds, tt.expected)
			}
		})
	}
}

func TestGenerateBarDurationsErrors(t *testing.T) {
	if _, err := GenerateBarDurations(mixed, 0.5, nil); err == nil {
		t.Error("expected error for nil source")
	}

	_, err := GenerateBarDurations([]Weight{{ClassQuarter, 0}}, 0.5, NewSource(1))
	if !errors.Is(err, errs.ErrConfiguration) {
		t.Errorf("zero weights: err = %v, want ErrConfiguration", err)
	}

	_, err = GenerateBarDurations([]Weight{{"breve", 1}}, 0.5, NewSource(1))
	if !errors.Is(err, errs.ErrConfiguration) {
		t.Errorf("unknown class: err = %v, want ErrConfiguration", err)
	}

	_, err = GenerateBarDurations(mixed, 1.0, NewSource(1))
	if !errors.Is(err, errs.ErrConfiguration) {
		t.Errorf("swing 1.0: err = %v, want ErrConfiguration", err)
	}
}

func TestValidateWeights(t *testing.T) {
	tests := []struct {
		name    string
		weights []Weight
		wantErr bool
	}{
		{"valid", mixed, false},
		{"within tolerance", []Weight{{ClassQuarter, 0.5}, {ClassEighth, 0.495}}, false},
		{"empty", nil, true},
		{"sum too low", []Weight{{ClassQuarter, 0.5}}, true},
		{"negative", []Weight{{ClassQuarter, 1.5}, {ClassEighth, -0.5}}, true},
		{"unknown class", []Weight{{"breve", 1}}, true},
		{"duplicate", []Weight{{ClassQuarter, 0.5}, {ClassQuarter, 0.5}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateWeights(tt.weights)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateWeights() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestSourceDerive(t *testing.T) {
	root := NewSource(42)

	a := root.Derive(3, StreamMotif).Float64()
	b := root.Derive(3, StreamMotif).Float64()
	if a != b {
		t.Errorf("Derive(3, motif) not reproducible: %v vs %v", a, b)
	}

	if root.Derive(3, StreamMotif).Float64() == root.Derive(4, StreamMotif).Float64() {
		t.Error("different bars produced identical draws")
	}
	if root.Derive(3, StreamMotif).Float64() == root.Derive(3, StreamRhythm).Float64() {
		t.Error("different streams produced identical draws")
	}

	fresh := NewSource(42)
	if root.Float64() != fresh.Float64() {
		t.Error("Derive advanced the parent stream")
	}
}

func TestSourceChoose(t *testing.T) {
	src := NewSource(9)
	if got := src.Choose([]float64{0, 0}); got != -1 {
		t.Errorf("Choose(all zero) = %d, want -1", got)
	}
	for range 100 {
		if got := src.Choose([]float64{0, 1, 0}); got != 1 {
			t.Fatalf("Choose() = %d, want 1", got)
		}
	}
}
