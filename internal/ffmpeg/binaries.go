package ffmpeg

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"
)

const (
	EnvFFmpegPath  = "TEXTTRACK_FFMPEG_PATH"
	EnvFFprobePath = "TEXTTRACK_FFPROBE_PATH"

	releaseVersion = "6.1"
	releaseBaseURL = "https://github.com/ffbinaries/ffbinaries-prebuilt/releases/download"
)

var ErrUnsupportedPlatform = errors.New("no prebuilt ffmpeg for this platform")

type BinaryPaths struct {
	FFmpeg  string
	FFprobe string
}

var (
	ensureOnce  sync.Once
	ensureErr   error
	ensurePaths BinaryPaths
)

// Ensure resolves the ffmpeg and ffprobe binaries once per process: explicit
// env paths first, then PATH, then a cached download.
func Ensure() (BinaryPaths, error) {
	ensureOnce.Do(func() {
		ensurePaths, ensureErr = resolver{
			getenv:   os.Getenv,
			lookPath: exec.LookPath,
			download: downloadToCache,
		}.resolve()
	})
	return ensurePaths, ensureErr
}

func FFmpegPath() (string, error) {
	paths, err := Ensure()
	if err != nil {
		return "", err
	}
	return paths.FFmpeg, nil
}

func FFprobePath() (string, error) {
	paths, err := Ensure()
	if err != nil {
		return "", err
	}
	return paths.FFprobe, nil
}

type resolver struct {
	getenv   func(string) string
	lookPath func(string) (string, error)
	download func() (BinaryPaths, error)
}

func (r resolver) resolve() (BinaryPaths, error) {
	paths := BinaryPaths{
		FFmpeg:  r.getenv(EnvFFmpegPath),
		FFprobe: r.getenv(EnvFFprobePath),
	}

	if paths.FFmpeg == "" {
		if found, err := r.lookPath("ffmpeg"); err == nil {
			paths.FFmpeg = found
		}
	}
	if paths.FFprobe == "" {
		if found, err := r.lookPath("ffprobe"); err == nil {
			paths.FFprobe = found
		}
	}
	if paths.FFmpeg != "" && paths.FFprobe != "" {
		return paths, nil
	}

	cached, err := r.download()
	if err != nil {
		return BinaryPaths{}, err
	}
	if paths.FFmpeg == "" {
		paths.FFmpeg = cached.FFmpeg
	}
	if paths.FFprobe == "" {
		paths.FFprobe = cached.FFprobe
	}
	return paths, nil
}

func cacheDir() string {
	dir, err := os.UserCacheDir()
	if err != nil || dir == "" {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "texttrack", "ffmpeg", releaseVersion, runtime.GOOS, runtime.GOARCH)
}

func downloadToCache() (BinaryPaths, error) {
	asset, err := assetForPlatform(runtime.GOOS, runtime.GOARCH)
	if err != nil {
		return BinaryPaths{}, err
	}

	installDir := cacheDir()
	paths := BinaryPaths{
		FFmpeg:  filepath.Join(installDir, "ffmpeg"+executableSuffix()),
		FFprobe: filepath.Join(installDir, "ffprobe"+executableSuffix()),
	}
	if fileExists(paths.FFmpeg) && fileExists(paths.FFprobe) {
		return paths, nil
	}

	if err := os.MkdirAll(installDir, 0o755); err != nil {
		return BinaryPaths{}, fmt.Errorf("create ffmpeg cache dir: %w", err)
	}
	if err := download(asset, installDir); err != nil {
		return BinaryPaths{}, err
	}
	if !fileExists(paths.FFmpeg) || !fileExists(paths.FFprobe) {
		return BinaryPaths{}, errors.New("ffmpeg binaries not found after extraction")
	}

	if runtime.GOOS != "windows" {
		for _, p := range []string{paths.FFmpeg, paths.FFprobe} {
			if err := os.Chmod(p, 0o755); err != nil {
				return BinaryPaths{}, fmt.Errorf("chmod %s: %w", filepath.Base(p), err)
			}
		}
	}
	return paths, nil
}

func assetForPlatform(goos, goarch string) (string, error) {
	var platform string
	switch {
	case goos == "linux" && goarch == "amd64":
		platform = "linux-64"
	case goos == "linux" && goarch == "arm64":
		platform = "linux-arm-64"
	case goos == "darwin" && goarch == "amd64":
		platform = "macos-64"
	case goos == "windows" && goarch == "amd64":
		platform = "win-64"
	default:
		return "", fmt.Errorf("%w: %s/%s", ErrUnsupportedPlatform, goos, goarch)
	}
	return "ffmpeg-" + releaseVersion + "-" + platform + ".zip", nil
}

func download(asset, installDir string) error {
	url := fmt.Sprintf("%s/v%s/%s", releaseBaseURL, releaseVersion, asset)
	client := &http.Client{Timeout: 5 * time.Minute}
	resp, err := client.Get(url)
	if err != nil {
		return fmt.Errorf("download ffmpeg bundle: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download ffmpeg bundle: unexpected status %s", resp.Status)
	}

	tmp, err := os.CreateTemp("", "texttrack-ffmpeg-*.zip")
	if err != nil {
		return fmt.Errorf("create temp archive: %w", err)
	}
	archivePath := tmp.Name()
	defer func() { _ = os.Remove(archivePath) }()

	if _, err := io.Copy(tmp, resp.Body); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write archive: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close archive: %w", err)
	}

	if err := extractArchive(archivePath, installDir); err != nil {
		return fmt.Errorf("extract %s: %w", asset, err)
	}
	return nil
}

// extractArchive copies the ffmpeg and ffprobe entries of a zip bundle into
// installDir, ignoring everything else.
func extractArchive(archivePath, installDir string) error {
	zr, err := zip.OpenReader(archivePath)
	if err != nil {
		return fmt.Errorf("open ffmpeg archive: %w", err)
	}
	defer func() { _ = zr.Close() }()

	found := map[string]bool{}
	for _, file := range zr.File {
		name := binaryName(filepath.Base(file.Name))
		if name == "" || found[name] {
			continue
		}
		dest := filepath.Join(installDir, name+executableSuffix())
		if err := extractZipFile(file, dest); err != nil {
			return err
		}
		found[name] = true
	}

	if !found["ffmpeg"] || !found["ffprobe"] {
		return errors.New("ffmpeg archive missing required binaries")
	}
	return nil
}

func extractZipFile(file *zip.File, dest string) error {
	r, err := file.Open()
	if err != nil {
		return fmt.Errorf("open ffmpeg archive entry: %w", err)
	}
	defer func() { _ = r.Close() }()

	out, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("create ffmpeg binary: %w", err)
	}
	defer func() { _ = out.Close() }()

	if _, err := io.Copy(out, r); err != nil {
		return fmt.Errorf("write ffmpeg binary: %w", err)
	}
	return nil
}

// binaryName maps an archive entry to "ffmpeg" or "ffprobe", or "" when it is
// neither.
func binaryName(entry string) string {
	name := strings.TrimSuffix(strings.ToLower(entry), ".exe")
	if name == "ffmpeg" || name == "ffprobe" {
		return name
	}
	return ""
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir() && info.Size() > 0
}

func executableSuffix() string {
	if runtime.GOOS == "windows" {
		return ".exe"
	}
	return ""
}
