// Package media wraps the ffmpeg and ffprobe operations texttrack needs from
// media files: probing the duration and pulling out embedded subtitle streams.
package media

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	ffmpeg "github.com/u2takey/ffmpeg-go"

	ffmpegbin "github.com/henry234/texttrack/internal/ffmpeg"
)

// media file information
type Info struct {
	Path string
	// seconds; 0 when the container does not report one
	Duration        float64
	SubtitleStreams int
	// codec name of each subtitle stream, in stream order
	SubtitleCodecs []string
}

type ffprobeOutput struct {
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
	Streams []struct {
		Index     int    `json:"index"`
		CodecType string `json:"codec_type"`
		CodecName string `json:"codec_name"`
	} `json:"streams"`
}

// Probe runs ffprobe on path.
func Probe(ctx context.Context, path string) (*Info, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("media file not found: %s", path)
	}

	ffprobePath, err := ffmpegbin.FFprobePath()
	if err != nil {
		return nil, err
	}

	cmd := exec.CommandContext(ctx, ffprobePath,
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		path,
	)
	var out bytes.Buffer
	cmd.Stdout = &out

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("ffprobe failed: %w", err)
	}

	info, err := parseProbe(out.Bytes())
	if err != nil {
		return nil, err
	}
	info.Path = path
	return info, nil
}

func parseProbe(data []byte) (*Info, error) {
	var probe ffprobeOutput
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("failed to parse ffprobe output: %w", err)
	}

	info := &Info{}
	if d := strings.TrimSpace(probe.Format.Duration); d != "" && d != "N/A" {
		seconds, err := strconv.ParseFloat(d, 64)
		if err != nil {
			return nil, fmt.Errorf("failed to parse duration: %w", err)
		}
		info.Duration = seconds
	}

	for _, s := range probe.Streams {
		if s.CodecType == "subtitle" {
			info.SubtitleStreams++
			info.SubtitleCodecs = append(info.SubtitleCodecs, s.CodecName)
		}
	}
	return info, nil
}

// Extractor converts embedded subtitle streams to WebVTT with ffmpeg.
type Extractor struct {
	// os.TempDir() when empty
	TempDir string
}

func NewExtractor(tempDir string) *Extractor {
	return &Extractor{TempDir: tempDir}
}

// ExtractSubtitles returns subtitle stream n of path (counting subtitle
// streams only) as WebVTT text.
func (e *Extractor) ExtractSubtitles(ctx context.Context, path string, stream int) (string, error) {
	if stream < 0 {
		return "", fmt.Errorf("invalid subtitle stream %d", stream)
	}
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("media file not found: %s", path)
	}

	tmp, err := os.CreateTemp(e.TempDir, "texttrack-*.vtt")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	outPath := tmp.Name()
	_ = tmp.Close()
	defer os.Remove(outPath)

	if err := e.ExtractToFile(ctx, path, stream, outPath); err != nil {
		return "", err
	}

	data, err := os.ReadFile(outPath)
	if err != nil {
		return "", fmt.Errorf("failed to read extracted subtitles: %w", err)
	}
	return string(data), nil
}

// ExtractToFile writes subtitle stream n of path to outPath as WebVTT.
func (e *Extractor) ExtractToFile(ctx context.Context, path string, stream int, outPath string) error {
	if err := os.MkdirAll(filepath.Dir(outPath), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	ffmpegPath, err := ffmpegbin.FFmpegPath()
	if err != nil {
		return err
	}

	var stderr bytes.Buffer
	cmd := ffmpeg.Input(path).
		Output(outPath, ffmpeg.KwArgs{
			"map": fmt.Sprintf("0:s:%d", stream),
			"f":   "webvtt",
		}).
		OverWriteOutput().
		SetFfmpegPath(ffmpegPath).
		WithErrorOutput(&stderr).
		Compile()

	if err := runContext(ctx, cmd); err != nil {
		return fmt.Errorf("subtitle extraction failed: %w: %s", err, lastLine(stderr.String()))
	}
	return nil
}

// runContext runs cmd and kills it when ctx ends first.
func runContext(ctx context.Context, cmd *exec.Cmd) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := cmd.Start(); err != nil {
		return err
	}

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		_ = cmd.Process.Kill()
		<-done
		return ctx.Err()
	}
}

func lastLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		return s[i+1:]
	}
	return s
}

var videoExts = map[string]bool{
	".mp4":  true,
	".mkv":  true,
	".avi":  true,
	".mov":  true,
	".wmv":  true,
	".flv":  true,
	".webm": true,
	".m4v":  true,
	".mpeg": true,
	".mpg":  true,
	".3gp":  true,
	".ts":   true,
}

var audioExts = map[string]bool{
	".mp3":  true,
	".wav":  true,
	".aac":  true,
	".flac": true,
	".ogg":  true,
	".m4a":  true,
	".wma":  true,
	".aiff": true,
	".mka":  true,
}

// checks if the file is a video based on extension
func IsVideoFile(path string) bool {
	return videoExts[strings.ToLower(filepath.Ext(path))]
}

// checks if the file is an audio file based on extension
func IsAudioFile(path string) bool {
	return audioExts[strings.ToLower(filepath.Ext(path))]
}

func IsMediaFile(path string) bool {
	return IsAudioFile(path) || IsVideoFile(path)
}
