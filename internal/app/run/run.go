package run

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/John-Robertt/sheetsort/internal/app/planner"
	"github.com/John-Robertt/sheetsort/internal/classify"
	"github.com/John-Robertt/sheetsort/internal/config"
	"github.com/John-Robertt/sheetsort/internal/domain"
	"github.com/John-Robertt/sheetsort/internal/infra/fsx"
	"github.com/John-Robertt/sheetsort/internal/scan"
)

// TargetRootError 表示目标根目录无法创建。属于致命错误：整批中止。
type TargetRootError struct {
	Path string
	Err  error
}

func (e *TargetRootError) Error() string {
	return fmt.Sprintf("无法创建目标根目录：%q：%v", e.Path, e.Err)
}

func (e *TargetRootError) Unwrap() error { return e.Err }

// Execute 执行一次整理，并返回对外稳定的 RunReport。
func Execute(ctx context.Context, eff config.EffectiveConfig) (domain.RunReport, error) {
	return ExecuteWithObserver(ctx, eff, nil)
}

// ExecuteWithObserver 与 Execute 相同，但允许传入 Observer 输出逐文件结果（由上层决定如何展示）。
//
// 错误分级（硬约束）：
// - 源目录缺失（*scan.MissingSourceError）/ 目标根目录无法创建（*TargetRootError）：
//   返回 error，整批不处理任何文件
// - 文件名不符合语法：该文件 skipped
// - 创建目录/复制失败：该文件 failed
// 单个文件的任何错误都不会越过文件边界中断整批。
//
// 严格串行：一个文件扫描、分类、落盘完成后才处理下一个。ctx 只在文件之间检查；
// 在处理下一个文件之前发现取消时停止，已完成的复制保留，返回 ctx.Err()。
func ExecuteWithObserver(ctx context.Context, eff config.EffectiveConfig, obs Observer) (domain.RunReport, error) {
	if obs == nil {
		obs = nopObserver{}
	}
	started := time.Now().UTC()
	obs.OnStart(eff)

	rr := domain.RunReport{
		RunID:     uuid.NewString(),
		SourceDir: eff.SourceDir,
		TargetDir: eff.TargetDir,
		DryRun:    eff.DryRun,
		StartedAt: started,
		Items:     make([]domain.ItemResult, 0, 64),
	}
	finish := func() domain.RunReport {
		rr.FinishedAt = time.Now().UTC()
		rr.Finalize()
		obs.OnFinish(rr)
		return rr
	}

	prepStarted := time.Now()

	// 必须先确认源目录，再创建目标根目录：源缺失时目标下不得出现任何东西。
	sheets, err := scan.Sheets(eff.SourceDir, eff.Ext)
	if err != nil {
		return finish(), err
	}
	if !eff.DryRun {
		if err := fsx.EnsureDir(eff.TargetDir); err != nil {
			return finish(), &TargetRootError{Path: eff.TargetDir, Err: err}
		}
	}

	industries := classify.NewIndustryMap(eff.DefaultIndustry, eff.Industries)
	obs.OnPhaseDone("prepare", map[string]any{
		"clients":        industries.Len(),
		"mapped_clients": industries.Clients(),
		"ext":            eff.Ext,
	}, time.Since(prepStarted))

	idx := 0
	var interrupted error
	for rec, serr := range sheets {
		if err := ctx.Err(); err != nil {
			interrupted = err
			break
		}
		oneStarted := time.Now()

		var res domain.ItemResult
		if serr != nil {
			res = scanFailed(eff.SourceDir, serr)
		} else {
			res = execOne(eff, industries, rec)
		}

		rr.Items = append(rr.Items, res)
		idx++
		obs.OnItemDone(idx, res, time.Since(oneStarted))
	}

	// 所有文件都已处理完之后才到达的取消信号不影响结果。
	return finish(), interrupted
}

// execOne 处理单个文件：分类 → 规划 → 建目录 → 复制。所有错误都收敛为 ItemResult。
func execOne(eff config.EffectiveConfig, industries classify.IndustryMap, rec domain.FileRecord) domain.ItemResult {
	item := domain.ItemResult{File: rec.Name}

	cls, err := classify.Classify(rec.Name, eff.Ext, industries)
	if err != nil {
		item.Status = domain.StatusSkipped
		item.ErrorCode = domain.ErrCodeParseMismatch
		item.ErrorMsg = err.Error()
		return item
	}

	item.Industry = cls.Industry
	item.Module = cls.Parsed.Module
	item.Client = cls.Parsed.Client
	item.Detail = cls.Parsed.Detail
	item.Date = cls.Parsed.Date
	item.Mapped = cls.Mapped
	item.Dst = filepath.Join(cls.Destination().Rel(), rec.Name)

	plan, err := planner.PlanCopy(eff.TargetDir, rec, cls)
	if err != nil {
		failItem(&item, fmt.Errorf("读取目标状态失败：%w", err))
		return item
	}

	item.Status = domain.StatusProcessed

	// dry-run：只规划，不建目录、不复制。
	if eff.DryRun {
		item.Action = domain.ActionPlanned
		if plan.State == domain.DestIdentical {
			item.Action = domain.ActionUnchanged
		}
		return item
	}

	if err := fsx.EnsureDir(plan.DstDir); err != nil {
		failItem(&item, fmt.Errorf("创建目录失败：%w", err))
		return item
	}

	switch plan.State {
	case domain.DestIdentical:
		// 内容一致：不重写内容，只把时间戳对齐到源文件，保证重复运行得到同一棵树。
		fi, err := os.Stat(rec.AbsPath)
		if err == nil {
			err = fsx.CopyTimes(fi, plan.DstAbs)
		}
		if err != nil {
			failItem(&item, fmt.Errorf("同步时间戳失败：%w", err))
			return item
		}
		item.Action = domain.ActionUnchanged
		item.Bytes = fi.Size()
	default:
		n, err := fsx.CopyFile(rec.AbsPath, plan.DstAbs)
		if err != nil {
			failItem(&item, fmt.Errorf("复制失败：%w", err))
			return item
		}
		item.Bytes = n
		item.Action = domain.ActionCopied
		if plan.State == domain.DestDiffers {
			item.Action = domain.ActionReplaced
		}
	}
	return item
}

func failItem(item *domain.ItemResult, err error) {
	item.Status = domain.StatusFailed
	item.Action = ""
	item.ErrorCode = domain.ErrCodeIOFailed
	if fsx.IsPathTypeConflict(err) {
		item.ErrorCode = domain.ErrCodeTargetConflict
	}
	item.ErrorMsg = err.Error()
}

func scanFailed(sourceDir string, err error) domain.ItemResult {
	name := sourceDir
	var ee *scan.EntryError
	if errors.As(err, &ee) {
		name = ee.Name
	}
	return domain.ItemResult{
		File:      name,
		Status:    domain.StatusFailed,
		ErrorCode: domain.ErrCodeIOFailed,
		ErrorMsg:  err.Error(),
	}
}
