// Package source fetches the raw text of a track from wherever its src
// points: a local file, an HTTP URL, or a subtitle stream inside a media file.
package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/henry234/texttrack/internal/media"
)

// largest track body accepted over HTTP
const MaxBodySize = 16 << 20

type Loader interface {
	Load(ctx context.Context, src string) (string, error)
}

// LoaderFunc adapts a plain function to Loader.
type LoaderFunc func(ctx context.Context, src string) (string, error)

func (f LoaderFunc) Load(ctx context.Context, src string) (string, error) {
	return f(ctx, src)
}

type FileLoader struct{}

func (FileLoader) Load(ctx context.Context, src string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	data, err := os.ReadFile(src)
	if err != nil {
		return "", fmt.Errorf("failed to read track file: %w", err)
	}
	return Decode(data)
}

type HTTPLoader struct {
	// http.DefaultClient when nil
	Client *http.Client
}

func (l HTTPLoader) Load(ctx context.Context, src string) (string, error) {
	client := l.Client
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch track: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("failed to fetch track: unexpected status %s", resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxBodySize+1))
	if err != nil {
		return "", fmt.Errorf("failed to read track body: %w", err)
	}
	if len(data) > MaxBodySize {
		return "", fmt.Errorf("track body exceeds %d bytes", MaxBodySize)
	}
	return Decode(data)
}

// SubtitleExtractor pulls one subtitle stream out of a media file as WebVTT.
type SubtitleExtractor interface {
	ExtractSubtitles(ctx context.Context, path string, stream int) (string, error)
}

// MediaLoader reads an embedded subtitle stream. The src is the media path,
// optionally suffixed with #N to pick the Nth subtitle stream.
type MediaLoader struct {
	Extractor SubtitleExtractor
}

func (l MediaLoader) Load(ctx context.Context, src string) (string, error) {
	if l.Extractor == nil {
		return "", fmt.Errorf("no subtitle extractor configured for %s", src)
	}
	path, stream, err := SplitStream(src)
	if err != nil {
		return "", err
	}
	return l.Extractor.ExtractSubtitles(ctx, path, stream)
}

// SplitStream splits "movie.mkv#2" into the path and the stream number.
// A src without a fragment selects stream 0.
func SplitStream(src string) (string, int, error) {
	path, frag, ok := strings.Cut(src, "#")
	if !ok {
		return src, 0, nil
	}
	n, err := strconv.Atoi(frag)
	if err != nil || n < 0 {
		return "", 0, fmt.Errorf("invalid subtitle stream %q in %s", frag, src)
	}
	return path, n, nil
}

// Auto picks a loader from the shape of src.
type Auto struct {
	File  Loader
	HTTP  Loader
	Media Loader
}

func NewAuto(client *http.Client, extractor SubtitleExtractor) *Auto {
	return &Auto{
		File:  FileLoader{},
		HTTP:  HTTPLoader{Client: client},
		Media: MediaLoader{Extractor: extractor},
	}
}

func (a *Auto) Load(ctx context.Context, src string) (string, error) {
	switch {
	case IsURL(src):
		return a.HTTP.Load(ctx, src)
	case isMediaSource(src):
		return a.Media.Load(ctx, src)
	default:
		return a.File.Load(ctx, src)
	}
}

func IsURL(src string) bool {
	return strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://")
}

func isMediaSource(src string) bool {
	path, _, _ := strings.Cut(src, "#")
	return media.IsMediaFile(path)
}
