package domain

import (
	"encoding/json"
	"sort"
	"time"
)

const (
	StatusProcessed = "processed"
	StatusSkipped   = "skipped"
	StatusFailed    = "failed"
)

const (
	ActionPlanned   = "planned"
	ActionCopied    = "copied"
	ActionUnchanged = "unchanged"
	ActionReplaced  = "replaced"
)

const (
	ErrCodeParseMismatch  = "parse_mismatch"
	ErrCodeIOFailed       = "io_failed"
	ErrCodeTargetConflict = "target_conflict"
)

// RunReport 是对外稳定输出（report.json / report.html）的结构。
type RunReport struct {
	RunID     string `json:"run_id"`
	SourceDir string `json:"source_dir"`
	TargetDir string `json:"target_dir"`
	DryRun    bool   `json:"dry_run"`

	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	Summary ReportSummary `json:"summary"`
	Items   []ItemResult  `json:"items"`
}

type ReportSummary struct {
	Processed int `json:"processed"`
	Skipped   int `json:"skipped"`
	Failed    int `json:"failed"`
}

// ItemResult 是单个文件的处理结果。
type ItemResult struct {
	File   string `json:"file"`
	Status string `json:"status"`

	Industry string `json:"industry"`
	Module   string `json:"module"`
	Client   string `json:"client"`
	Detail   string `json:"detail"`
	Date     string `json:"date"`
	Mapped   bool   `json:"mapped"`

	Dst    string `json:"dst"`
	Action string `json:"action"`
	Bytes  int64  `json:"bytes"`

	ErrorCode string `json:"error_code"`
	ErrorMsg  string `json:"error_msg"`
}

// Destination 还原该条目的目标三元组（skipped 条目返回零值）。
func (it ItemResult) Destination() Destination {
	return Destination{Industry: it.Industry, Module: it.Module, Client: it.Client}
}

// Finalize 做三件事：
// 1) 时间统一为 UTC（确保 JSON 为 RFC3339 且后缀 Z）
// 2) items 稳定排序：按文件名字典序
// 3) summary 由 items 计算得出
func (r *RunReport) Finalize() {
	r.StartedAt = r.StartedAt.UTC()
	r.FinishedAt = r.FinishedAt.UTC()

	sort.SliceStable(r.Items, func(i, j int) bool { return r.Items[i].File < r.Items[j].File })

	var s ReportSummary
	for _, it := range r.Items {
		switch it.Status {
		case StatusProcessed:
			s.Processed++
		case StatusSkipped:
			s.Skipped++
		case StatusFailed:
			s.Failed++
		}
	}
	r.Summary = s
}

// MarshalJSON 集中约束输出的稳定性：nil items 输出为 []，而不是 null。
func (r RunReport) MarshalJSON() ([]byte, error) {
	type Alias RunReport
	a := Alias(r)
	if a.Items == nil {
		a.Items = []ItemResult{}
	}
	return json.Marshal(a)
}
