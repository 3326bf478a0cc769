package render

import (
	"testing"

	"github.com/gogpu/gg"
)

func TestDownscale(t *testing.T) {
	src := gg.NewPixmap(40, 20)
	src.Clear(gg.RGB(1, 0, 0))

	dst := Downscale(src, 10, 5)
	if dst.Width() != 10 || dst.Height() != 5 {
		t.Fatalf("size %dx%d", dst.Width(), dst.Height())
	}
	for y := 0; y < 5; y++ {
		for x := 0; x < 10; x++ {
			if c := dst.GetPixel(x, y); c.R < 0.99 || c.G > 0.01 || c.B > 0.01 || c.A < 0.99 {
				t.Fatalf("pixel (%d, %d) = %+v", x, y, c)
			}
		}
	}

	if Downscale(src, 40, 20) != src {
		t.Error("same size was copied")
	}
}

func TestFit(t *testing.T) {
	tests := []struct {
		w, h, max    int
		wantW, wantH int
	}{
		{100, 50, 200, 100, 50},
		{1200, 400, 300, 300, 100},
		{400, 1200, 300, 100, 300},
		{1000, 1, 10, 10, 1},
		{500, 500, 50, 50, 50},
	}

	for _, tt := range tests {
		w, h := Fit(tt.w, tt.h, tt.max)
		if w != tt.wantW || h != tt.wantH {
			t.Errorf("Fit(%d, %d, %d) = %d, %d, want %d, %d", tt.w, tt.h, tt.max, w, h, tt.wantW, tt.wantH)
		}
	}
}
