package run

import (
	"time"

	"github.com/John-Robertt/sheetsort/internal/config"
	"github.com/John-Robertt/sheetsort/internal/domain"
)

// Observer 用于把"运行进度/条目结果"从核心执行流程中解耦出来。
//
// 约束：
// - run 包只负责发事件，不做任何输出。
// - 事件在执行 goroutine 上同步触发；实现不应阻塞。
type Observer interface {
	// OnStart 在 ExecuteWithObserver 开始时调用。
	OnStart(eff config.EffectiveConfig)
	// OnPhaseDone 在准备阶段结束时调用（源目录已确认、目标根目录已就绪）。
	OnPhaseDone(name string, fields map[string]any, dur time.Duration)
	// OnItemDone 在每个文件处理完成时调用（idx 从 1 开始；总数事先未知）。
	OnItemDone(idx int, res domain.ItemResult, dur time.Duration)
	// OnFinish 在整批结束时调用（rr 已 Finalize）。
	OnFinish(rr domain.RunReport)
}

type nopObserver struct{}

func (nopObserver) OnStart(config.EffectiveConfig) {}

func (nopObserver) OnPhaseDone(string, map[string]any, time.Duration) {}

func (nopObserver) OnItemDone(int, domain.ItemResult, time.Duration) {}

func (nopObserver) OnFinish(domain.RunReport) {}
