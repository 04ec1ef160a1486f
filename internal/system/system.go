package system

import (
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"
	"time"

	"github.com/shirou/gopsutil/v3/mem"
)

var audioExtensions = []string{".mp3", ".wav", ".m4a", ".ogg", ".aac", ".flac"}

func InitResourceLimits() {
	var rLimit syscall.Rlimit
	err := syscall.Getrlimit(syscall.RLIMIT_NOFILE, &rLimit)
	if err != nil {
		log.Printf("[!] Не удалось получить лимит файлов: %v", err)
		return
	}

	rLimit.Cur = 2048
	if rLimit.Cur > rLimit.Max {
		rLimit.Cur = rLimit.Max
	}

	err = syscall.Setrlimit(syscall.RLIMIT_NOFILE, &rLimit)
	if err != nil {
		log.Printf("[!] Не удалось установить лимит файлов: %v", err)
	} else {
		fmt.Printf("[*] Системный лимит открытых файлов увеличен до %d\n", rLimit.Cur)
	}
}

// FindLatestFile returns the most recently modified file in dir with one
// of the given extensions.
func FindLatestFile(dir string, extensions ...string) (string, error) {
	files, err := os.ReadDir(dir)
	if err != nil {
		return "", err
	}

	var latestFile string
	var latestTime time.Time

	for _, f := range files {
		if f.IsDir() || !hasExtension(f.Name(), extensions) {
			continue
		}
		info, err := f.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(latestTime) {
			latestTime = info.ModTime()
			latestFile = filepath.Join(dir, f.Name())
		}
	}

	if latestFile == "" {
		return "", fmt.Errorf("в папке %s не найдено файлов %s", dir, strings.Join(extensions, ", "))
	}
	return latestFile, nil
}

func hasExtension(name string, extensions []string) bool {
	lower := strings.ToLower(name)
	for _, ext := range extensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

func FindLatestAudio(dir string) (string, error) {
	return FindLatestFile(dir, audioExtensions...)
}

func GetAudioDuration(path string) (float64, error) {
	cmd := exec.Command("ffprobe", "-v", "error", "-show_entries", "format=duration", "-of", "default=noprint_wrappers=1:nokey=1", path)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return 0, err
	}

	var duration float64
	_, err = fmt.Sscanf(strings.TrimSpace(string(out)), "%f", &duration)
	if err != nil {
		return 0, err
	}

	return duration, nil
}

// GetBestH264Encoder probes ffmpeg for a hardware H.264 encoder and falls
// back to libx264.
func GetBestH264Encoder() string {
	// Приоритеты: VideoToolbox (macOS), NVENC (NVIDIA), затем libx264
	out, err := exec.Command("ffmpeg", "-hide_banner", "-encoders").CombinedOutput()
	if err != nil {
		return "libx264"
	}
	for _, enc := range []string{"h264_videotoolbox", "h264_nvenc"} {
		if strings.Contains(string(out), enc) {
			return enc
		}
	}
	return "libx264"
}

// DefaultQuality is the quality value used when none is configured.
func DefaultQuality(encoder string) int {
	switch encoder {
	case "h264_videotoolbox":
		return 75 // битрейт Q*100 кбит/с
	case "h264_nvenc":
		return 28
	default:
		return 20 // CRF
	}
}

// FFmpegAvailable reports whether ffmpeg is on PATH.
func FFmpegAvailable() bool {
	_, err := exec.LookPath("ffmpeg")
	return err == nil
}

// MemoryReport describes host memory for the performance report.
func MemoryReport() string {
	vm, err := mem.VirtualMemory()
	if err != nil {
		return "memory: unavailable"
	}
	return fmt.Sprintf("memory: %.1f/%.1f GiB used (%.0f%%)",
		float64(vm.Used)/(1<<30), float64(vm.Total)/(1<<30), vm.UsedPercent)
}

// framesInFlight approximates the frame buffers one segment worker holds:
// canvas pixmap, rendered copy and the pipe conversion buffer, plus the
// ffmpeg input queue.
const framesInFlight = 8

// SuggestWorkers caps the requested worker count so that the frame
// buffers of all workers fit in half of the available memory.
func SuggestWorkers(requested, width, height int) int {
	if requested <= 0 {
		requested = runtime.NumCPU()
	}
	vm, err := mem.VirtualMemory()
	if err != nil || vm.Available == 0 {
		return requested
	}
	perWorker := uint64(width) * uint64(height) * 4 * framesInFlight
	if perWorker == 0 {
		return requested
	}
	limit := int(vm.Available / 2 / perWorker)
	if limit < 1 {
		limit = 1
	}
	if requested > limit {
		log.Printf("[!] Потоков %d слишком много для свободной памяти, используется %d", requested, limit)
		return limit
	}
	return requested
}
