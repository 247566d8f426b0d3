// package media plays track previews on the local machine.
package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/photon/internal/shared"
)

var (
	ErrNoTrack        = errors.New("no track selected")
	ErrTrackNotFound  = errors.New("track file not found")
	ErrNoAudioBackend = errors.New("no audio player available")
)

// TrackExt is the file extension of track files under the media directory.
const TrackExt = ".mp3"

var (
	getRuntime = func() string { return runtime.GOOS }
	lookPath   = exec.LookPath
)

// Player is the playback capability used for track previews.
type Player interface {
	// Play starts playing trackID, stopping anything already playing.
	Play(ctx context.Context, trackID string) error
	// Stop ends playback. Stopping while idle is not an error.
	Stop() error
}

// NopPlayer discards every call.
type NopPlayer struct{}

func (NopPlayer) Play(context.Context, string) error { return nil }
func (NopPlayer) Stop() error                        { return nil }

// ExecPlayer plays "<dir>/<trackID>.mp3" with a system audio command.
//
// Only one preview plays at a time.
type ExecPlayer struct {
	dir     string
	command []string
	logger  *log.Logger

	mu  sync.Mutex
	cmd *exec.Cmd
}

// NewExecPlayer creates a player for track files under dir.
//
// command overrides the platform default; the file path is appended as the last argument.
func NewExecPlayer(dir, command string, logger *log.Logger) *ExecPlayer {
	if logger == nil {
		logger = shared.NewLogger(io.Discard)
	}
	return &ExecPlayer{
		dir:     dir,
		command: strings.Fields(command),
		logger:  logger,
	}
}

// TrackPath returns the file played for trackID.
func (p *ExecPlayer) TrackPath(trackID string) string {
	return filepath.Join(p.dir, trackID+TrackExt)
}

// Command returns the argv used to play path on this platform.
//
// Supports macOS (afplay), Linux (mpg123, then ffplay), and Windows (PowerShell).
func (p *ExecPlayer) Command(path string) ([]string, error) {
	if len(p.command) > 0 {
		return append(append([]string{}, p.command...), path), nil
	}

	rt := getRuntime()
	switch rt {
	case "darwin":
		return []string{"afplay", path}, nil
	case "linux", "freebsd", "openbsd":
		if _, err := lookPath("mpg123"); err == nil {
			return []string{"mpg123", "-q", path}, nil
		}
		if _, err := lookPath("ffplay"); err == nil {
			return []string{"ffplay", "-nodisp", "-autoexit", "-loglevel", "quiet", path}, nil
		}
		return nil, fmt.Errorf("%w: install mpg123 or ffplay, or set media.command", ErrNoAudioBackend)
	case "windows":
		script := fmt.Sprintf(
			"Add-Type -AssemblyName presentationCore; $p = New-Object System.Windows.Media.MediaPlayer; $p.Open('%s'); $p.Play(); Start-Sleep -Seconds 600",
			strings.ReplaceAll(path, "'", "''"),
		)
		return []string{"powershell", "-NoProfile", "-Command", script}, nil
	default:
		return nil, fmt.Errorf("%w: unsupported platform: %s", ErrNoAudioBackend, rt)
	}
}

// Play stops any current preview and starts trackID.
func (p *ExecPlayer) Play(ctx context.Context, trackID string) error {
	if trackID == "" {
		return ErrNoTrack
	}

	path := p.TrackPath(trackID)
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("%w: %s", ErrTrackNotFound, path)
	}

	argv, err := p.Command(path)
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopLocked()

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start player: %w", err)
	}
	p.cmd = cmd
	p.logger.Debug("preview started", "track", trackID, "cmd", argv[0])

	go func() {
		err := cmd.Wait()
		p.mu.Lock()
		if p.cmd == cmd {
			p.cmd = nil
		}
		p.mu.Unlock()
		if err != nil {
			p.logger.Debug("preview ended", "track", trackID, "error", err)
		}
	}()
	return nil
}

// Stop kills the running preview, if any.
func (p *ExecPlayer) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopLocked()
	return nil
}

// Playing reports whether a preview process is running.
func (p *ExecPlayer) Playing() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cmd != nil
}

func (p *ExecPlayer) stopLocked() {
	if p.cmd == nil || p.cmd.Process == nil {
		return
	}
	if err := p.cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
		p.logger.Warn("failed to stop preview", "error", err)
	}
	p.cmd = nil
}
