package main

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/schollz/progressbar/v3"

	"github.com/John-Robertt/sheetsort/internal/app/run"
	"github.com/John-Robertt/sheetsort/internal/config"
	"github.com/John-Robertt/sheetsort/internal/domain"
	"github.com/John-Robertt/sheetsort/internal/logging"
)

var _ run.Observer = (*consoleUI)(nil)

// consoleUI 把 run 事件渲染成逐文件日志行。
//
// - 每个文件完成时输出一行；结束时输出 processed/skipped/failed 汇总
// - progress 非空（交互终端）时显示一个不定长 spinner，输出日志行前先清掉它
type consoleUI struct {
	log *logging.Logger

	mu  sync.Mutex
	bar *progressbar.ProgressBar
}

func newConsoleUI(log *logging.Logger, progress io.Writer) *consoleUI {
	ui := &consoleUI{log: log}
	if progress != nil {
		ui.bar = progressbar.NewOptions(-1,
			progressbar.OptionSetWriter(progress),
			progressbar.OptionSetDescription("整理中"),
			progressbar.OptionSpinnerType(14),
			progressbar.OptionShowCount(),
			progressbar.OptionShowElapsedTimeOnFinish(),
			progressbar.OptionThrottle(80*time.Millisecond),
			progressbar.OptionClearOnFinish(),
		)
	}
	return ui
}

func (u *consoleUI) OnStart(eff config.EffectiveConfig) {
	u.mu.Lock()
	defer u.mu.Unlock()

	mode := "apply"
	if eff.DryRun {
		mode = "dry-run（不创建目录/不复制）"
	}
	u.log.Info("sheetsort run (%s)", mode)
	u.log.Info("源目录: %s", eff.SourceDir)
	u.log.Info("目标目录: %s", eff.TargetDir)
	if eff.ConfigPath != "" {
		u.log.Debug("配置文件: %s", eff.ConfigPath)
	}
	u.log.Debug("扩展名: %s 默认行业: %s 映射客户数: %d", eff.Ext, eff.DefaultIndustry, len(eff.Industries))
}

func (u *consoleUI) OnPhaseDone(name string, fields map[string]any, dur time.Duration) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.clearBar()
	u.log.Debug("%s 完成 (%s)", name, formatShortDuration(dur))
	if clients, ok := fields["mapped_clients"].([]string); ok {
		u.log.Debug("已映射客户（%d）: %s", len(clients), strings.Join(clients, "、"))
	}
}

func (u *consoleUI) OnItemDone(idx int, res domain.ItemResult, dur time.Duration) {
	u.mu.Lock()
	defer u.mu.Unlock()

	u.clearBar()
	switch res.Status {
	case domain.StatusProcessed:
		switch res.Action {
		case domain.ActionReplaced:
			u.log.Warn("[%d] %s → %s 覆盖了内容不同的旧文件 (%s)", idx, res.File, res.Dst, humanize.IBytes(uint64(res.Bytes)))
		case domain.ActionUnchanged:
			u.log.Info("[%d] %s → %s 已存在且内容一致", idx, res.File, res.Dst)
		case domain.ActionPlanned:
			u.log.Info("[%d] %s → %s%s", idx, res.File, res.Dst, unmappedNote(res))
		default:
			u.log.Success("[%d] %s → %s (%s)%s", idx, res.File, res.Dst, humanize.IBytes(uint64(res.Bytes)), unmappedNote(res))
		}
	case domain.StatusSkipped:
		u.log.Warn("[%d] %s 跳过：%s", idx, res.File, truncate(res.ErrorMsg, 160))
	case domain.StatusFailed:
		u.log.Error("[%d] %s 失败 %s：%s", idx, res.File, res.ErrorCode, truncate(res.ErrorMsg, 160))
	}
	u.log.Debug("[%d] 耗时 %s", idx, formatShortDuration(dur))

	if u.bar != nil {
		_ = u.bar.Add(1)
	}
}

func (u *consoleUI) OnFinish(rr domain.RunReport) {
	u.mu.Lock()
	defer u.mu.Unlock()

	if u.bar != nil {
		_ = u.bar.Finish()
		u.clearBar()
	}
	line := formatSummary(rr.Summary)
	if rr.Summary.Failed > 0 {
		u.log.Warn("%s", line)
	} else {
		u.log.Success("%s", line)
	}
}

func (u *consoleUI) clearBar() {
	if u.bar != nil {
		_ = u.bar.Clear()
	}
}

func formatSummary(s domain.ReportSummary) string {
	return fmt.Sprintf("完成：processed=%d skipped=%d failed=%d", s.Processed, s.Skipped, s.Failed)
}

func unmappedNote(res domain.ItemResult) string {
	if res.Mapped {
		return ""
	}
	return "（客户未映射，归入 " + res.Industry + "）"
}

// truncate 按 rune 截断，避免切坏中文。
func truncate(s string, max int) string {
	s = strings.TrimSpace(s)
	r := []rune(s)
	if max <= 0 || len(r) <= max {
		return s
	}
	if max <= 3 {
		return string(r[:max])
	}
	return string(r[:max-3]) + "..."
}

func formatShortDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	return humanize.FtoaWithDigits(d.Seconds(), 3) + "s"
}
