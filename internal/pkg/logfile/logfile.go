package logfile

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/onyria-app/core/internal/pkg/prettylog"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	EnvLogDir = "ONYRIA_LOG_DIR"

	defaultLogFilePerm = 0o644
	defaultLogDirPerm  = 0o755
	defaultMaxSizeMB   = 64
	defaultKeepCount   = 30
)

// ResolveDir resolves the log directory path.
func ResolveDir() string {
	if dir := strings.TrimSpace(os.Getenv(EnvLogDir)); dir != "" {
		return dir
	}

	candidates := make([]string, 0, 3)
	if home, err := os.UserHomeDir(); err == nil && home != "" {
		candidates = append(candidates, filepath.Join(home, ".onyria", "log"))
	}
	candidates = append(candidates, filepath.Join(".", "logs"))

	for _, dir := range candidates {
		info, err := os.Stat(dir)
		if err == nil && info.IsDir() {
			return dir
		}
	}
	return candidates[0]
}

// TodayFilename returns the daily log filename.
func TodayFilename(now time.Time) string {
	return "server_" + now.Format("2006-01-02") + ".log"
}

// Options controls file output and rotation.
type Options struct {
	Dir       string // empty means ResolveDir()
	MaxSizeMB int    // rotate when the daily file exceeds this, 0 means default
	KeepCount int    // rotated files kept per day, 0 means default
}

// Writer appends log lines to a daily file and rotates it by size.
type Writer struct {
	mu       sync.Mutex
	dir      string
	maxBytes int64
	keep     int
}

// NewWriter creates a file log writer, creating the directory if needed.
func NewWriter(opts Options) (*Writer, error) {
	dir := strings.TrimSpace(opts.Dir)
	if dir == "" {
		dir = ResolveDir()
	}
	if err := os.MkdirAll(dir, defaultLogDirPerm); err != nil {
		return nil, err
	}
	_ = os.Setenv(EnvLogDir, dir)

	maxMB := opts.MaxSizeMB
	if maxMB <= 0 {
		maxMB = defaultMaxSizeMB
	}
	keep := opts.KeepCount
	if keep <= 0 {
		keep = defaultKeepCount
	}
	return &Writer{dir: dir, maxBytes: int64(maxMB) << 20, keep: keep}, nil
}

func (w *Writer) Write(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	path := filepath.Join(w.dir, TodayFilename(time.Now()))
	if info, err := os.Stat(path); err == nil && info.Size()+int64(len(p)) > w.maxBytes {
		w.rotate(path)
	}

	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, defaultLogFilePerm)
	if err != nil {
		return 0, err
	}

	n, writeErr := file.Write(p)
	closeErr := file.Close()
	if writeErr != nil {
		return n, writeErr
	}
	return n, closeErr
}

func (w *Writer) Sync() error { return nil }

// rotate renames the active file out of the way and prunes old rotations.
func (w *Writer) rotate(path string) {
	rotated := fmt.Sprintf("%s.%d", path, time.Now().UnixMilli())
	if err := os.Rename(path, rotated); err != nil {
		return
	}

	pattern := path + ".*"
	matches, err := filepath.Glob(pattern)
	if err != nil || len(matches) <= w.keep {
		return
	}
	sort.Strings(matches)
	for _, stale := range matches[:len(matches)-w.keep] {
		_ = os.Remove(stale)
	}
}

// NewZapLogger creates a zap logger writing to stdout and the daily log file.
// Development mode switches the stdout core to the colorized pretty encoder.
func NewZapLogger(opts Options, development bool) (*zap.Logger, error) {
	writer, err := NewWriter(opts)
	if err != nil {
		return nil, err
	}

	level := zap.NewAtomicLevelAt(zap.InfoLevel)
	if development {
		level.SetLevel(zap.DebugLevel)
	}

	fileEncoderConfig := zap.NewProductionEncoderConfig()
	fileEncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05.000")
	fileEncoder := zapcore.NewConsoleEncoder(fileEncoderConfig)

	var stdoutEncoder zapcore.Encoder
	if development {
		stdoutEncoder = prettylog.NewEncoder(prettylog.ShouldColor())
	} else {
		stdoutEncoder = zapcore.NewConsoleEncoder(fileEncoderConfig)
	}

	core := zapcore.NewTee(
		zapcore.NewCore(stdoutEncoder, zapcore.Lock(os.Stdout), level),
		zapcore.NewCore(fileEncoder, zapcore.AddSync(writer), level),
	)

	logger := zap.New(core, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel))
	_ = zap.RedirectStdLog(logger)
	return logger, nil
}
