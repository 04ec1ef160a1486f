package video

import (
	"bytes"
	"image"
	"image/color"
	"strings"
	"testing"

	"github.com/ivlev/scene2video/internal/config"
)

func TestSegmentArgs(t *testing.T) {
	params := config.SegmentParams{Width: 1280, Height: 720, FPS: 30}
	args := strings.Join(segmentArgs("out/s0.mp4", params, "libx264", 20), " ")

	for _, want := range []string{"-video_size 1280x720", "-framerate 30", "-crf 20", "-c:v libx264"} {
		if !strings.Contains(args, want) {
			t.Errorf("Expected %q in %s", want, args)
		}
	}
	if !strings.HasSuffix(args, "out/s0.mp4") {
		t.Errorf("Output path should come last: %s", args)
	}
}

func TestQualityArgs(t *testing.T) {
	tests := []struct {
		encoder string
		want    string
	}{
		{"h264_videotoolbox", "-b:v 7500k"},
		{"h264_nvenc", "-cq 75"},
		{"libx264", "-crf 75 -preset medium"},
	}
	for _, tt := range tests {
		if got := strings.Join(qualityArgs(tt.encoder, 75), " "); got != tt.want {
			t.Errorf("%s: expected %q, got %q", tt.encoder, tt.want, got)
		}
	}
}

func TestComplexArgs(t *testing.T) {
	segs := []string{"s0.mp4", "s1.mp4", "s2.mp4"}

	t.Run("xfade", func(t *testing.T) {
		params := config.Config{
			TransitionType:   "fade",
			FadeDuration:     0.5,
			SectionDurations: []float64{4, 6, 2},
			VideoEncoder:     "libx264",
			Quality:          20,
		}
		if !useComplex(len(segs), params) {
			t.Fatal("Expected the filter graph path")
		}
		args := strings.Join(complexArgs(segs, "final.mp4", params), " ")
		if !strings.Contains(args, "offset=3.500000[v1]") || !strings.Contains(args, "offset=9.000000[v2]") {
			t.Errorf("Unexpected xfade offsets: %s", args)
		}
		if !strings.Contains(args, "-map [v2]") {
			t.Errorf("Expected last xfade output mapped: %s", args)
		}
	})

	t.Run("concat with audio", func(t *testing.T) {
		params := config.Config{AudioPath: "voice.mp3", VideoEncoder: "libx264"}
		args := strings.Join(complexArgs(segs, "final.mp4", params), " ")
		if !strings.Contains(args, "concat=n=3:v=1:a=0[vconcat]") {
			t.Errorf("Expected concat filter: %s", args)
		}
		if !strings.Contains(args, "-map 3:a -shortest") {
			t.Errorf("Expected narration mapped: %s", args)
		}
	})

	t.Run("plain", func(t *testing.T) {
		if useComplex(len(segs), config.Config{TransitionType: "none"}) {
			t.Error("Expected the concat demuxer path")
		}
	})
}

func TestWriteRawRGBA(t *testing.T) {
	src := image.NewNRGBA(image.Rect(5, 5, 7, 6))
	src.Set(5, 5, color.NRGBA{R: 255, A: 255})

	var buf bytes.Buffer
	if err := writeRawRGBA(&buf, src); err != nil {
		t.Fatal(err)
	}
	if buf.Len() != 2*1*4 {
		t.Fatalf("Expected 8 bytes, got %d", buf.Len())
	}
	if buf.Bytes()[0] != 255 || buf.Bytes()[3] != 255 {
		t.Errorf("Unexpected first pixel % x", buf.Bytes()[:4])
	}
}
