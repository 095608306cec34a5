package app

import (
	"testing"

	"lumen/pipeline"
)

type nullTarget struct{ w, h int16 }

func (n *nullTarget) Size() (int16, int16) { return n.w, n.h }

func (n *nullTarget) Blit(_, _, _, _ int16, _ []uint16) error { return nil }

func TestFormatMillivolts(t *testing.T) {
	for _, tc := range []struct {
		mv   int32
		want string
	}{
		{0, "0.000 V"},
		{7, "0.007 V"},
		{42, "0.042 V"},
		{999, "0.999 V"},
		{1000, "1.000 V"},
		{1234, "1.234 V"},
		{3300, "3.300 V"},
	} {
		if got := formatMillivolts(tc.mv); got != tc.want {
			t.Fatalf("formatMillivolts(%d) = %q, want %q", tc.mv, got, tc.want)
		}
	}
}

func TestSampleInvalidatesOnlyChangedSpans(t *testing.T) {
	tgt := &nullTarget{w: 320, h: 240}
	pipe, err := pipeline.New(tgt, pipeline.Config{TileHeight: 8})
	if err != nil {
		t.Fatalf("pipeline.New: %v", err)
	}
	if _, err := pipe.FlushDirty(func(*pipeline.RenderContext) {}); err != nil {
		t.Fatalf("initial flush: %v", err)
	}

	r := newReadout(320, 240)
	r.sample(1, pipe)
	if !pipe.Pending() {
		t.Fatal("sample left nothing to flush")
	}

	n, err := pipe.FlushDirty(func(*pipeline.RenderContext) {})
	if err != nil {
		t.Fatalf("flush: %v", err)
	}
	// Value span covers bands 10..15, bar span 20..22. The header band
	// must not re-dirty.
	if n != 9 {
		t.Fatalf("flushed %d bands after sample, want 9", n)
	}
}

func TestRecordFormat(t *testing.T) {
	r := newReadout(320, 240)
	r.shown = 1234
	if got := string(r.record()); got != "1234 mV" {
		t.Fatalf("record = %q, want %q", got, "1234 mV")
	}
	r.shown = 0
	if got := string(r.record()); got != "0 mV" {
		t.Fatalf("record = %q, want %q", got, "0 mV")
	}
}
