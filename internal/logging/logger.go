package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Level 是日志级别。
type Level string

const (
	LevelInfo    Level = "INFO"
	LevelSuccess Level = "SUCCESS"
	LevelWarn    Level = "WARN"
	LevelError   Level = "ERROR"
	LevelDebug   Level = "DEBUG"
)

// 颜色模式（与 config.Color* 取值一致）。
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

var levelColors = map[Level]lipgloss.Color{
	LevelInfo:    lipgloss.Color("39"),
	LevelSuccess: lipgloss.Color("42"),
	LevelWarn:    lipgloss.Color("214"),
	LevelError:   lipgloss.Color("160"),
	LevelDebug:   lipgloss.Color("241"),
}

// Options 控制 Logger 的输出位置与样式。Stdout/Stderr 为空时使用 os.Stdout/os.Stderr。
type Options struct {
	Color   string
	LogFile string
	Verbose bool

	Stdout io.Writer
	Stderr io.Writer
}

// Logger 提供分级、可选彩色的行日志，并可同时追加写入日志文件（文件内永远是纯文本）。
// ERROR 级别写 stderr，其余写 stdout。并发安全。
type Logger struct {
	mu      sync.Mutex
	out     io.Writer
	errOut  io.Writer
	file    *os.File
	verbose bool
	color   bool
	badges  map[Level]lipgloss.Style
	now     func() time.Time
}

// New 按 opts 初始化 Logger。设置了 LogFile 时需要调用 Close。
func New(opts Options) (*Logger, error) {
	l := &Logger{
		out:     opts.Stdout,
		errOut:  opts.Stderr,
		verbose: opts.Verbose,
		now:     time.Now,
	}
	if l.out == nil {
		l.out = os.Stdout
	}
	if l.errOut == nil {
		l.errOut = os.Stderr
	}

	switch opts.Color {
	case ColorAlways:
		l.color = true
	case ColorNever:
		l.color = false
	default:
		l.color = isTerminal(l.out) && os.Getenv("NO_COLOR") == "" && strings.ToLower(os.Getenv("TERM")) != "dumb"
	}
	if l.color {
		r := lipgloss.NewRenderer(l.out)
		r.SetColorProfile(termenv.ANSI256)
		l.badges = make(map[Level]lipgloss.Style, len(levelColors))
		for lv, c := range levelColors {
			l.badges[lv] = r.NewStyle().Foreground(c).Bold(true)
		}
	}

	if opts.LogFile != "" {
		if err := os.MkdirAll(filepath.Dir(opts.LogFile), 0o755); err != nil {
			return nil, err
		}
		f, err := os.OpenFile(opts.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, err
		}
		l.file = f
	}
	return l, nil
}

// Close 关闭日志文件（若有）。
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file != nil {
		err := l.file.Close()
		l.file = nil
		return err
	}
	return nil
}

// Color 报告当前是否启用了彩色输出。
func (l *Logger) Color() bool { return l.color }

func (l *Logger) line(level Level, text string) {
	ts := l.now().Format("2006-01-02 15:04:05")
	plain := ts + " [" + string(level) + "] " + text + "\n"

	l.mu.Lock()
	defer l.mu.Unlock()

	out := l.out
	if level == LevelError {
		out = l.errOut
	}
	if st, ok := l.badges[level]; ok {
		_, _ = io.WriteString(out, ts+" "+st.Render("["+string(level)+"]")+" "+text+"\n")
	} else {
		_, _ = io.WriteString(out, plain)
	}
	if l.file != nil {
		_, _ = io.WriteString(l.file, plain)
	}
}

func (l *Logger) Info(format string, args ...any) {
	l.line(LevelInfo, fmt.Sprintf(format, args...))
}

func (l *Logger) Success(format string, args ...any) {
	l.line(LevelSuccess, fmt.Sprintf(format, args...))
}

func (l *Logger) Warn(format string, args ...any) {
	l.line(LevelWarn, fmt.Sprintf(format, args...))
}

// Error 写 stderr（以及日志文件）。
func (l *Logger) Error(format string, args ...any) {
	l.line(LevelError, fmt.Sprintf(format, args...))
}

// Debug 仅在 Verbose 时输出。
func (l *Logger) Debug(format string, args ...any) {
	if !l.verbose {
		return
	}
	l.line(LevelDebug, fmt.Sprintf(format, args...))
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok || f == nil {
		return false
	}
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}
