package fsx

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestWriteFileAtomic_SuccessAndNoTempLeft(t *testing.T) {
	dir := t.TempDir()

	if err := WriteFileAtomic(dir, "a.txt", []byte("hello")); err != nil {
		t.Fatalf("不期望错误：%v", err)
	}

	b, err := os.ReadFile(filepath.Join(dir, "a.txt"))
	if err != nil {
		t.Fatalf("读取文件失败：%v", err)
	}
	if string(b) != "hello" {
		t.Fatalf("内容不一致：%q", string(b))
	}
	assertNoTemp(t, dir, "a.txt")
}

func TestWriteFileAtomic_RenameFail_CleanupTemp(t *testing.T) {
	dir := t.TempDir()

	old := renameFunc
	renameFunc = func(oldpath, newpath string) error {
		return os.ErrPermission
	}
	defer func() { renameFunc = old }()

	if err := WriteFileAtomic(dir, "a.txt", []byte("hello")); err == nil {
		t.Fatalf("期望失败，但得到 nil")
	}
	assertNoTemp(t, dir, "a.txt")
	if _, err := os.Stat(filepath.Join(dir, "a.txt")); !os.IsNotExist(err) {
		t.Fatalf("不应写出最终文件：err=%v", err)
	}
}

func TestCopyFile_PreservesContentModeAndTimes(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src", "a.xls")
	dst := filepath.Join(dir, "dst", "a.xls")
	mustWrite(t, src, "表格内容")
	if err := os.Chmod(src, 0o640); err != nil {
		t.Fatalf("chmod 失败：%v", err)
	}
	mtime := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	atime := time.Date(2025, 6, 7, 8, 9, 10, 0, time.UTC)
	if err := os.Chtimes(src, atime, mtime); err != nil {
		t.Fatalf("chtimes 失败：%v", err)
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		t.Fatalf("创建目录失败：%v", err)
	}

	n, err := CopyFile(src, dst)
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if n != int64(len("表格内容")) {
		t.Fatalf("复制字节数不一致：%d", n)
	}

	b, err := os.ReadFile(dst)
	if err != nil || string(b) != "表格内容" {
		t.Fatalf("目标内容不一致：%q err=%v", string(b), err)
	}
	fi, err := os.Stat(dst)
	if err != nil {
		t.Fatalf("stat 失败：%v", err)
	}
	if !fi.ModTime().Equal(mtime) {
		t.Fatalf("mtime 未保留：got=%v want=%v", fi.ModTime(), mtime)
	}
	if fi.Mode().Perm() != 0o640 {
		t.Fatalf("权限位未保留：%v", fi.Mode().Perm())
	}

	// 源文件必须保持不变。
	sb, err := os.ReadFile(src)
	if err != nil || string(sb) != "表格内容" {
		t.Fatalf("源文件被修改：%q err=%v", string(sb), err)
	}
	sfi, _ := os.Stat(src)
	if !sfi.ModTime().Equal(mtime) {
		t.Fatalf("源文件 mtime 被修改：%v", sfi.ModTime())
	}
	assertNoTemp(t, filepath.Dir(dst), "a.xls")
}

func TestCopyFile_OverwriteExisting(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "a.xls")
	dst := filepath.Join(dir, "out", "a.xls")
	mustWrite(t, src, "new")
	mustWrite(t, dst, "old-content")

	if _, err := CopyFile(src, dst); err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	b, _ := os.ReadFile(dst)
	if string(b) != "new" {
		t.Fatalf("期望覆盖为 new，实际 %q", string(b))
	}
}

func TestCopyFile_DstIsDir(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "a.xls")
	mustWrite(t, src, "x")
	dst := filepath.Join(dir, "out", "a.xls")
	if err := os.MkdirAll(dst, 0o755); err != nil {
		t.Fatalf("创建目录失败：%v", err)
	}

	_, err := CopyFile(src, dst)
	if !IsPathTypeConflict(err) {
		t.Fatalf("期望 PathTypeConflictError，实际：%T %v", err, err)
	}
}

func TestCopyFile_RenameFail_KeepsOldAndCleansTemp(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "a.xls")
	dst := filepath.Join(dir, "out", "a.xls")
	mustWrite(t, src, "new")
	mustWrite(t, dst, "old")

	old := renameFunc
	renameFunc = func(oldpath, newpath string) error { return os.ErrPermission }
	defer func() { renameFunc = old }()

	if _, err := CopyFile(src, dst); err == nil {
		t.Fatalf("期望失败，但得到 nil")
	}
	b, _ := os.ReadFile(dst)
	if string(b) != "old" {
		t.Fatalf("失败时目标应保持旧内容，实际 %q", string(b))
	}
	assertNoTemp(t, filepath.Dir(dst), "a.xls")
}

func TestCopyFile_MissingSource(t *testing.T) {
	dir := t.TempDir()
	if _, err := CopyFile(filepath.Join(dir, "nope.xls"), filepath.Join(dir, "x.xls")); err == nil {
		t.Fatalf("期望错误，但得到 nil")
	}
}

func TestEnsureDir_Idempotent(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b", "c")
	for i := 0; i < 2; i++ {
		if err := EnsureDir(dir); err != nil {
			t.Fatalf("第 %d 次 EnsureDir 失败：%v", i+1, err)
		}
	}
	fi, err := os.Stat(dir)
	if err != nil || !fi.IsDir() {
		t.Fatalf("目录未创建：err=%v", err)
	}
}

func TestEnsureDir_FileInTheWay(t *testing.T) {
	root := t.TempDir()
	mustWrite(t, filepath.Join(root, "a"), "x")

	if err := EnsureDir(filepath.Join(root, "a")); !IsPathTypeConflict(err) {
		t.Fatalf("期望 PathTypeConflictError，实际：%T %v", err, err)
	}
	if err := EnsureDir(filepath.Join(root, "a", "b")); !IsPathTypeConflict(err) {
		t.Fatalf("祖先是文件时期望 PathTypeConflictError，实际：%T %v", err, err)
	}
}

func TestSameContent(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a")
	b := filepath.Join(dir, "b")
	c := filepath.Join(dir, "c")
	d := filepath.Join(dir, "d")
	mustWrite(t, a, "same")
	mustWrite(t, b, "same")
	mustWrite(t, c, "diff")
	mustWrite(t, d, "longer")

	if ok, err := SameContent(a, b); err != nil || !ok {
		t.Fatalf("期望相同：ok=%v err=%v", ok, err)
	}
	if ok, err := SameContent(a, c); err != nil || ok {
		t.Fatalf("同大小不同内容期望不同：ok=%v err=%v", ok, err)
	}
	if ok, err := SameContent(a, d); err != nil || ok {
		t.Fatalf("不同大小期望不同：ok=%v err=%v", ok, err)
	}

	da, err := Digest(a)
	if err != nil || len(da) != 32 {
		t.Fatalf("摘要长度不正确：%d err=%v", len(da), err)
	}
}

func mustWrite(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("创建目录失败：%v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("写入文件失败：%v", err)
	}
}

func assertNoTemp(t *testing.T, dir, name string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir 失败：%v", err)
	}
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), "."+name+".tmp-") {
			t.Fatalf("临时文件未清理：%q", e.Name())
		}
	}
}
