package domain

import "path/filepath"

// Destination 决定文件落在 <root>/<industry>/<module>/<client>/ 下。
// 同客户同模块的不同日期文件共享同一个 Destination。
type Destination struct {
	Industry string
	Module   string
	Client   string
}

// Dir 计算 Destination 在 root 下的绝对目录。
func (d Destination) Dir(root string) string {
	return filepath.Join(root, d.Industry, d.Module, d.Client)
}

// Rel 返回相对 root 的目录（用于日志与报告）。
func (d Destination) Rel() string {
	return filepath.Join(d.Industry, d.Module, d.Client)
}

// DestState 描述目标文件的现状（规划阶段只做 stat + 摘要比对）。
type DestState string

const (
	DestAbsent    DestState = "absent"
	DestIdentical DestState = "identical"
	DestDiffers   DestState = "differs"
)

// CopyPlan 规划一次复制（只描述 src/dst；真正执行在 run 层）。
type CopyPlan struct {
	Record      FileRecord
	Destination Destination

	DstDir string
	DstAbs string
	State  DestState
}

// DestGroup 是按 Destination 聚合后的结果下标（指向 RunReport.Items）。
type DestGroup struct {
	Destination Destination
	ItemIdx     []int
}
