package video

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/draw"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/ivlev/scene2video/internal/config"
	"github.com/ivlev/scene2video/internal/system"
)

// Frames produces the frames of one segment in order, passing each to emit.
type Frames func(emit func(img image.Image) error) error

type VideoEncoder interface {
	EncodeSegment(ctx context.Context, frames Frames, videoPath string, params config.SegmentParams, encoderName string, quality int) error
	Concatenate(ctx context.Context, segmentPaths []string, finalPath string, tmpDir string, params config.Config) error
}

type FFmpegEncoder struct{}

var _ VideoEncoder = (*FFmpegEncoder)(nil)

// EncodeSegment streams raw RGBA frames through ffmpeg's stdin.
func (e *FFmpegEncoder) EncodeSegment(
	ctx context.Context,
	frames Frames,
	videoPath string,
	params config.SegmentParams,
	encoderName string,
	quality int,
) error {
	args := segmentArgs(videoPath, params, encoderName, quality)
	cmd := exec.CommandContext(ctx, "ffmpeg", args...)
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("stdin pipe error: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("ffmpeg start error: %w", err)
	}

	count := 0
	writeErr := frames(func(img image.Image) error {
		b := img.Bounds()
		if b.Dx() != params.Width || b.Dy() != params.Height {
			return fmt.Errorf("frame %d is %dx%d, segment is %dx%d", count, b.Dx(), b.Dy(), params.Width, params.Height)
		}
		count++
		return writeRawRGBA(stdin, img)
	})
	stdin.Close()

	waitErr := cmd.Wait()
	if writeErr != nil {
		return fmt.Errorf("write raw error: %w", writeErr)
	}
	if waitErr != nil {
		return fmt.Errorf("ffmpeg wait error: %w, output: %s", waitErr, out.String())
	}
	if count == 0 {
		return fmt.Errorf("segment %s has no frames", videoPath)
	}
	return nil
}

func segmentArgs(videoPath string, params config.SegmentParams, encoderName string, quality int) []string {
	args := []string{
		"-y",
		"-f", "rawvideo",
		"-pixel_format", "rgba",
		"-video_size", fmt.Sprintf("%dx%d", params.Width, params.Height),
		"-framerate", fmt.Sprintf("%d", params.FPS),
		"-i", "-",
		"-pix_fmt", "yuv420p",
		"-c:v", encoderName,
	}
	args = append(args, qualityArgs(encoderName, quality)...)
	return append(args, videoPath)
}

// qualityArgs maps the quality value onto the encoder's own scale.
func qualityArgs(encoderName string, quality int) []string {
	switch encoderName {
	case "h264_videotoolbox":
		// VideoToolbox не везде поддерживает -q:v, используем битрейт
		return []string{"-b:v", fmt.Sprintf("%dk", quality*100)}
	case "h264_nvenc":
		return []string{"-cq", fmt.Sprintf("%d", quality)}
	default: // libx264
		return []string{"-crf", fmt.Sprintf("%d", quality), "-preset", "medium"}
	}
}

func writeRawRGBA(w io.Writer, img image.Image) error {
	bounds := img.Bounds()
	rgba, ok := img.(*image.RGBA)
	if ok && rgba.Stride == bounds.Dx()*4 && rgba.Rect.Min.X == 0 && rgba.Rect.Min.Y == 0 {
		_, err := w.Write(rgba.Pix[:bounds.Dy()*rgba.Stride])
		return err
	}
	buf := system.GetImage(image.Rectangle{Max: bounds.Size()})
	defer system.PutImage(buf)
	draw.Draw(buf, buf.Rect, img, bounds.Min, draw.Src)
	_, err := w.Write(buf.Pix)
	return err
}

func useComplex(n int, params config.Config) bool {
	return hasTransition(n, params) || params.BackgroundAudio != "" || params.AudioPath != ""
}

func hasTransition(n int, params config.Config) bool {
	return params.TransitionType != "" && params.TransitionType != "none" && n > 1
}

func (e *FFmpegEncoder) Concatenate(ctx context.Context, segmentPaths []string, finalPath string, tmpDir string, params config.Config) error {
	if len(segmentPaths) == 0 {
		return fmt.Errorf("nothing to concatenate")
	}
	if !useComplex(len(segmentPaths), params) {
		concatFilePath := filepath.Join(tmpDir, "inputs.txt")
		f, err := os.Create(concatFilePath)
		if err != nil {
			return err
		}
		for _, p := range segmentPaths {
			absPath, _ := filepath.Abs(p)
			fmt.Fprintf(f, "file '%s'\n", absPath)
		}
		if err := f.Close(); err != nil {
			return err
		}

		cmd := exec.CommandContext(ctx, "ffmpeg", "-y",
			"-f", "concat", "-safe", "0", "-i", concatFilePath,
			"-c", "copy", finalPath,
		)
		if out, err := cmd.CombinedOutput(); err != nil {
			return fmt.Errorf("ffmpeg concat error: %v, output: %s", err, string(out))
		}
		return nil
	}

	cmd := exec.CommandContext(ctx, "ffmpeg", complexArgs(segmentPaths, finalPath, params)...)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("ffmpeg xfade error: %v, output: %s", err, string(out))
	}
	return nil
}

// complexArgs builds the filter_complex invocation: xfade or concat for
// video, optional narration mixed with a looped background track.
func complexArgs(segmentPaths []string, finalPath string, params config.Config) []string {
	fadeDuration := params.FadeDuration
	n := len(segmentPaths)

	args := []string{"-y"}
	for _, p := range segmentPaths {
		args = append(args, "-i", p)
	}

	audioIndex := -1
	if params.AudioPath != "" {
		audioIndex = n
		args = append(args, "-i", params.AudioPath)
	}

	var graph strings.Builder
	lastOut := "[0:v]"

	// 1. Видео: xfade между секциями или простой concat
	if hasTransition(n, params) {
		offset := 0.0
		for i := 1; i < n; i++ {
			duration := params.TotalDuration / float64(n)
			if i-1 < len(params.SectionDurations) {
				duration = params.SectionDurations[i-1]
			}
			offset += duration - fadeDuration

			outName := fmt.Sprintf("[v%d]", i)
			fmt.Fprintf(&graph, "%s[%d:v]xfade=transition=%s:duration=%f:offset=%f%s;",
				lastOut, i, params.TransitionType, fadeDuration, offset, outName)
			lastOut = outName
		}
	} else if n > 1 {
		for i := 0; i < n; i++ {
			fmt.Fprintf(&graph, "[%d:v]", i)
		}
		fmt.Fprintf(&graph, "concat=n=%d:v=1:a=0[vconcat];", n)
		lastOut = "[vconcat]"
	}

	// 2. Аудио
	audioOut := ""
	switch {
	case audioIndex != -1 && params.BackgroundAudio != "":
		bgIndex := audioIndex + 1
		args = append(args, "-stream_loop", "-1", "-i", params.BackgroundAudio)
		fmt.Fprintf(&graph, "[%d:a]%s[bg_a];[%d:a]volume=1.0[main_a];[main_a][bg_a]amix=inputs=2:duration=first:dropout_transition=3[aout];",
			bgIndex, backgroundVolume(params), audioIndex)
		audioOut = "[aout]"
	case audioIndex != -1:
		audioOut = fmt.Sprintf("%d:a", audioIndex)
	case params.BackgroundAudio != "":
		bgIndex := n
		args = append(args, "-stream_loop", "-1", "-i", params.BackgroundAudio)
		fmt.Fprintf(&graph, "[%d:a]%s[aout];", bgIndex, backgroundVolume(params))
		audioOut = "[aout]"
	}

	filter := strings.TrimSuffix(graph.String(), ";")
	if filter != "" {
		args = append(args, "-filter_complex", filter)
	}

	args = append(args, "-map", lastOut)
	if audioOut != "" {
		args = append(args, "-map", audioOut, "-shortest")
	}

	args = append(args, "-c:v", params.VideoEncoder, "-pix_fmt", "yuv420p")
	args = append(args, qualityArgs(params.VideoEncoder, params.Quality)...)
	return append(args, finalPath)
}

// backgroundVolume fades the background track in and out around the
// total running time.
func backgroundVolume(params config.Config) string {
	fadeIn, fadeOut := 5.0, 5.0
	total := params.TotalDuration
	if total < fadeIn+fadeOut {
		fadeIn, fadeOut = total*0.1, total*0.1
	}
	return fmt.Sprintf("volume='%f*(if(lte(t,%f), 0.1 + 0.9*(t/%f), if(gte(t, %f), (%f-t)/%f, 1.0)))':eval=frame",
		params.BackgroundVolume, fadeIn, fadeIn, total-fadeOut, total, fadeOut)
}
