package fsx

import (
	"bytes"
	"io"
	"os"

	"github.com/zeebo/blake3"
)

// Digest 计算文件内容的 BLAKE3 摘要（32 字节）。
func Digest(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	h := blake3.New()
	if _, err := io.Copy(h, f); err != nil {
		return nil, err
	}
	return h.Sum(nil), nil
}

// SameContent 判断两个文件内容是否一致：先比大小，再比 BLAKE3 摘要。
func SameContent(a, b string) (bool, error) {
	fa, err := os.Stat(a)
	if err != nil {
		return false, err
	}
	fb, err := os.Stat(b)
	if err != nil {
		return false, err
	}
	if fa.Size() != fb.Size() {
		return false, nil
	}

	da, err := Digest(a)
	if err != nil {
		return false, err
	}
	db, err := Digest(b)
	if err != nil {
		return false, err
	}
	return bytes.Equal(da, db), nil
}
