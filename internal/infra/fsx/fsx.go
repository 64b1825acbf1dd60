package fsx

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"syscall"
)

// 通过可替换的函数指针，让测试能稳定模拟 rename 失败。
var renameFunc = os.Rename

// PathTypeConflictError 表示目标路径类型冲突（例如期望目录但实际是文件）。
// 上层可把它映射为 error_code=target_conflict。
type PathTypeConflictError struct {
	Path string
	Want string
	Got  string
}

func (e *PathTypeConflictError) Error() string {
	return fmt.Sprintf("目标路径类型冲突：%q（期望 %s，实际 %s）", e.Path, e.Want, e.Got)
}

func IsPathTypeConflict(err error) bool {
	var e *PathTypeConflictError
	return errors.As(err, &e)
}

// EnsureDir 确保 dir 存在（含所有中间目录）。幂等：已存在的目录直接返回 nil。
// dir 或其某一级祖先是文件时返回 *PathTypeConflictError。
func EnsureDir(dir string) error {
	fi, err := os.Stat(dir)
	if err == nil {
		if fi.IsDir() {
			return nil
		}
		return &PathTypeConflictError{Path: dir, Want: "dir", Got: "file"}
	}
	if !os.IsNotExist(err) && !errors.Is(err, syscall.ENOTDIR) {
		return err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		if errors.Is(err, syscall.ENOTDIR) || errors.Is(err, os.ErrExist) {
			return &PathTypeConflictError{Path: dir, Want: "dir", Got: "file"}
		}
		return err
	}
	return nil
}

// CopyFile 把 src 复制为 dst（同目录临时文件 + rename，保证 dst 要么是旧内容、要么是完整新内容）。
//
// 语义：
// - 内容逐字节一致；权限位、修改时间、访问时间与 src 一致
// - src 只读打开，绝不修改
// - dst 已存在则覆盖；dst 是目录则返回 *PathTypeConflictError
//
// 返回复制的字节数。
func CopyFile(src, dst string) (int64, error) {
	in, err := os.Open(src)
	if err != nil {
		return 0, err
	}
	defer in.Close()

	fi, err := in.Stat()
	if err != nil {
		return 0, err
	}
	if !fi.Mode().IsRegular() {
		return 0, fmt.Errorf("源文件不是普通文件：%q", src)
	}

	if dfi, err := os.Lstat(dst); err == nil {
		if dfi.IsDir() {
			return 0, &PathTypeConflictError{Path: dst, Want: "file", Got: "dir"}
		}
	} else if !os.IsNotExist(err) {
		return 0, err
	}

	dir := filepath.Dir(dst)
	name := filepath.Base(dst)

	// 创建同目录临时文件（前缀带 '.'，避免出现在常规目录视图里）。
	tmp, err := os.CreateTemp(dir, "."+name+".tmp-*")
	if err != nil {
		return 0, err
	}
	tmpName := tmp.Name()
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
	}()

	n, err := io.Copy(tmp, in)
	if err != nil {
		return 0, err
	}
	if err := tmp.Chmod(fi.Mode().Perm()); err != nil {
		return 0, err
	}
	if err := tmp.Sync(); err != nil {
		return 0, err
	}
	if err := tmp.Close(); err != nil {
		return 0, err
	}
	// 时间戳必须在写入完成之后设置；rename 不会改变它。
	if err := CopyTimes(fi, tmpName); err != nil {
		return 0, err
	}

	if err := renameFunc(tmpName, dst); err != nil {
		return 0, err
	}
	_ = syncDirBestEffort(dir)
	return n, nil
}

// CopyTimes 把 src 的访问时间与修改时间应用到 dst。
func CopyTimes(src os.FileInfo, dst string) error {
	return os.Chtimes(dst, accessTime(src), src.ModTime())
}

// WriteFileAtomic 在 dir 下原子写入 name（临时文件 + rename），目标已存在则覆盖。
// 用于 report.json / report.html 这类可覆盖的输出。
func WriteFileAtomic(dir, name string, data []byte) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	dst := filepath.Join(dir, name)

	tmp, err := os.CreateTemp(dir, "."+name+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
	}()

	if err := writeAll(tmp, data); err != nil {
		return err
	}
	if err := tmp.Chmod(0o644); err != nil {
		return err
	}
	if err := tmp.Sync(); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	if err := renameFunc(tmpName, dst); err != nil {
		return err
	}

	// 目录 fsync：best-effort（不同平台/文件系统的语义差异很大）。
	_ = syncDirBestEffort(dir)
	return nil
}

func writeAll(w io.Writer, b []byte) error {
	for len(b) > 0 {
		n, err := w.Write(b)
		if err != nil {
			return err
		}
		b = b[n:]
	}
	return nil
}

func syncDirBestEffort(dir string) error {
	// Windows 上目录 Sync 的语义与支持情况不稳定，这里直接跳过。
	if runtime.GOOS == "windows" {
		return nil
	}
	f, err := os.Open(dir)
	if err != nil {
		return err
	}
	defer f.Close()
	return f.Sync()
}
