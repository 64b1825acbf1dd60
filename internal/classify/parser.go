package classify

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/John-Robertt/sheetsort/internal/domain"
)

// ProdToken 是客户名与明细之间的固定分隔标记。
const ProdToken = "-PROD("

// MinDateDigits 是日期段的最少位数。
const MinDateDigits = 8

// Mismatch 的种类（用于日志与报告，便于用户定位是哪一段不合法）。
const (
	KindBadExt         = "bad_ext"
	KindNoProdToken    = "no_prod_token"
	KindEmptyClient    = "empty_client"
	KindUnclosedDetail = "unclosed_detail"
	KindEmptyDetail    = "empty_detail"
	KindBadDate        = "bad_date"
	KindMissingDateSep = "missing_date_sep"
	KindEmptyModule    = "empty_module"
	KindUnsafeSegment  = "unsafe_segment"
)

// MismatchError 表示文件名不符合语法。它不是故障：上层把它记为 skipped 并继续。
type MismatchError struct {
	Name string
	Kind string
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("文件名不符合 <客户>-PROD(<明细>)<模块>-<日期> 语法（%s）：%q", describeKind(e.Kind), e.Name)
}

func describeKind(kind string) string {
	switch kind {
	case KindBadExt:
		return "扩展名不匹配"
	case KindNoProdToken:
		return "缺少 -PROD( 标记"
	case KindEmptyClient:
		return "客户名为空"
	case KindUnclosedDetail:
		return "明细缺少右括号"
	case KindEmptyDetail:
		return "明细为空"
	case KindBadDate:
		return "日期不足 8 位数字"
	case KindMissingDateSep:
		return "日期前缺少 '-'"
	case KindEmptyModule:
		return "模块名为空"
	case KindUnsafeSegment:
		return "客户名或模块名不能是 . 或 .."
	default:
		return kind
	}
}

// Parse 按顺序逐段提取 <client>-PROD(<detail>)<module>-<date><ext>。
//
// 规则（硬约束）：
//   - 只认第一个 "-PROD("：之前的全部文本是 client（即最短前缀）
//   - detail 截止到其后的第一个 ')'
//   - date 以扩展名为锚点，取扩展名前最长的十进制数字串（含全角等 Unicode 数字），至少 8 个数字，且前面紧跟 '-'
//   - module 是 ')' 与该 '-' 之间的全部文本，因此模块名自身含 '-' 或 '-数字' 也不会被拆开
//   - 四段都必须非空；按原始字节匹配，不做大小写折叠/规范化
func Parse(name, ext string) (domain.ParsedName, error) {
	mismatch := func(kind string) (domain.ParsedName, error) {
		return domain.ParsedName{}, &MismatchError{Name: name, Kind: kind}
	}

	if ext == "" || !strings.HasSuffix(name, ext) {
		return mismatch(KindBadExt)
	}
	stem := strings.TrimSuffix(name, ext)

	i := strings.Index(stem, ProdToken)
	if i < 0 {
		return mismatch(KindNoProdToken)
	}
	client := stem[:i]
	if client == "" {
		return mismatch(KindEmptyClient)
	}
	rest := stem[i+len(ProdToken):]

	j := strings.IndexByte(rest, ')')
	if j < 0 {
		return mismatch(KindUnclosedDetail)
	}
	detail := rest[:j]
	if detail == "" {
		return mismatch(KindEmptyDetail)
	}
	tail := rest[j+1:]

	k, digits := len(tail), 0
	for k > 0 {
		r, size := utf8.DecodeLastRuneInString(tail[:k])
		if !unicode.IsDigit(r) {
			break
		}
		k -= size
		digits++
	}
	date := tail[k:]
	if digits < MinDateDigits {
		return mismatch(KindBadDate)
	}
	if k == 0 || tail[k-1] != '-' {
		return mismatch(KindMissingDateSep)
	}
	module := tail[:k-1]
	if module == "" {
		return mismatch(KindEmptyModule)
	}
	// client/module 会成为目录名：禁止 "." 与 ".."，避免逃出目标根目录。
	if isDotSegment(client) || isDotSegment(module) {
		return mismatch(KindUnsafeSegment)
	}

	return domain.ParsedName{
		Client: client,
		Detail: detail,
		Module: module,
		Date:   date,
	}, nil
}

func isDotSegment(s string) bool { return s == "." || s == ".." }

// ValidSegment 判断 s 能否安全地作为一级目录名（用于校验配置中的行业名）。
func ValidSegment(s string) bool {
	if strings.TrimSpace(s) == "" || isDotSegment(s) {
		return false
	}
	return !strings.ContainsAny(s, `/\`)
}
