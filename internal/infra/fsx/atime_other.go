//go:build !linux && !darwin

package fsx

import (
	"os"
	"time"
)

// 其他平台拿不到可移植的访问时间：退化为修改时间。
func accessTime(fi os.FileInfo) time.Time {
	return fi.ModTime()
}
