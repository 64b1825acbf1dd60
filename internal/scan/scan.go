package scan

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"iter"
	"os"
	"path/filepath"
	"strings"

	"github.com/John-Robertt/sheetsort/internal/domain"
)

// DefaultExt 是默认扫描的表格扩展名。
const DefaultExt = ".xls"

// readBatch 是每次 ReadDir 读取的目录项数量；扫描按批次惰性推进。
const readBatch = 64

// MissingSourceError 表示源目录不存在（或不是目录）。属于致命错误：整批中止。
type MissingSourceError struct {
	Path string
	Err  error
}

func (e *MissingSourceError) Error() string {
	return fmt.Sprintf("源目录不存在：%q：%v", e.Path, e.Err)
}

func (e *MissingSourceError) Unwrap() error { return e.Err }

// IsMissingSource 判断 err 是否为 MissingSourceError。
func IsMissingSource(err error) bool {
	var e *MissingSourceError
	return errors.As(err, &e)
}

// EntryError 表示单个目录项 stat 失败；只影响该文件，不影响整批。
type EntryError struct {
	Name string
	Err  error
}

func (e *EntryError) Error() string {
	return fmt.Sprintf("读取文件信息失败：%q：%v", e.Name, e.Err)
}

func (e *EntryError) Unwrap() error { return e.Err }

// Sheets 返回 dir 下（不递归）以 ext 结尾的文件序列。
//
// 规则（硬约束）：
// - 源目录缺失：立即返回 *MissingSourceError，不产生任何序列
// - 后缀匹配区分大小写（".xls" 不匹配 "X.XLS"）
// - 只产出普通文件（符号链接按其指向判断）；目录即使名字以 ext 结尾也忽略
// - 只做 stat，不读文件内容
//
// 序列是惰性的：目录项按批读取、逐个产出。产出顺序取决于文件系统，
// 上层不应依赖它（RunReport.Finalize 会统一排序）。
func Sheets(dir, ext string) (iter.Seq2[domain.FileRecord, error], error) {
	if ext == "" {
		ext = DefaultExt
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, &MissingSourceError{Path: dir, Err: err}
	}

	fi, err := os.Stat(abs)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &MissingSourceError{Path: abs, Err: err}
		}
		return nil, err
	}
	if !fi.IsDir() {
		return nil, &MissingSourceError{Path: abs, Err: fmt.Errorf("不是目录")}
	}

	seq := func(yield func(domain.FileRecord, error) bool) {
		f, err := os.Open(abs)
		if err != nil {
			yield(domain.FileRecord{}, err)
			return
		}
		defer f.Close()

		for {
			entries, rerr := f.ReadDir(readBatch)
			for _, e := range entries {
				if !strings.HasSuffix(e.Name(), ext) {
					continue
				}
				rec, ok, serr := toRecord(abs, e)
				if serr != nil {
					if !yield(domain.FileRecord{}, &EntryError{Name: e.Name(), Err: serr}) {
						return
					}
					continue
				}
				if !ok {
					continue
				}
				if !yield(rec, nil) {
					return
				}
			}
			if rerr != nil {
				if !errors.Is(rerr, io.EOF) {
					yield(domain.FileRecord{}, rerr)
				}
				return
			}
		}
	}
	return seq, nil
}

func toRecord(dir string, e fs.DirEntry) (domain.FileRecord, bool, error) {
	path := filepath.Join(dir, e.Name())

	var (
		info fs.FileInfo
		err  error
	)
	if e.Type()&fs.ModeSymlink != 0 {
		info, err = os.Stat(path)
	} else {
		info, err = e.Info()
	}
	if err != nil {
		return domain.FileRecord{}, false, err
	}
	if !info.Mode().IsRegular() {
		return domain.FileRecord{}, false, nil
	}

	return domain.FileRecord{
		Name:    e.Name(),
		AbsPath: path,
		Size:    info.Size(),
		ModTime: info.ModTime(),
	}, true, nil
}
