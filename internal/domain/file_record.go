package domain

import "time"

// FileRecord 描述一次扫描得到的表格文件（只做 stat，不读文件内容）。
//
// 不变量（实现必须遵守）：
// - AbsPath 必须是 clean + absolute
// - 扫描后不可变，只被消费一次
type FileRecord struct {
	Name    string // 原始文件名（含扩展名）
	AbsPath string
	Size    int64
	ModTime time.Time
}
