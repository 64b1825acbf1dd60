package classify

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/John-Robertt/sheetsort/internal/domain"
)

func TestParse_WellFormed(t *testing.T) {
	cases := []struct {
		name string
		want domain.ParsedName
	}{
		{
			name: "东威科技-PROD(东威科技)工序验收体系-20260130.xls",
			want: domain.ParsedName{Client: "东威科技", Detail: "东威科技", Module: "工序验收体系", Date: "20260130"},
		},
		{
			// 模块名自身含 '-'：date 以扩展名为锚点，模块保持完整。
			name: "中海地产-PROD(华南)质量-安全体系-20250101.xls",
			want: domain.ParsedName{Client: "中海地产", Detail: "华南", Module: "质量-安全体系", Date: "20250101"},
		},
		{
			// 模块名含 '-数字'：只有最右侧的数字串是日期。
			name: "A-PROD(x)mod-2026-20260130.xls",
			want: domain.ParsedName{Client: "A", Detail: "x", Module: "mod-2026", Date: "20260130"},
		},
		{
			// 日期可以超过 8 位。
			name: "A-PROD(x)m-202601301200.xls",
			want: domain.ParsedName{Client: "A", Detail: "x", Module: "m", Date: "202601301200"},
		},
		{
			// 客户名含 '-'：仍以第一个 -PROD( 为界。
			name: "星河-地产-PROD(d)m-20260130.xls",
			want: domain.ParsedName{Client: "星河-地产", Detail: "d", Module: "m", Date: "20260130"},
		},
		{
			// 多个 -PROD(...)：第一个生效，其余归入模块。
			name: "A-PROD(x)B-PROD(y)m-20260130.xls",
			want: domain.ParsedName{Client: "A", Detail: "x", Module: "B-PROD(y)m", Date: "20260130"},
		},
		{
			// detail 截止到第一个 ')'。
			name: "A-PROD(x)(y)m-20260130.xls",
			want: domain.ParsedName{Client: "A", Detail: "x", Module: "(y)m", Date: "20260130"},
		},
		{
			// 全角数字同样是十进制数字，按个数而不是字节数计。
			name: "东威科技-PROD(东威科技)工序验收体系-２０２６０１３０.xls",
			want: domain.ParsedName{Client: "东威科技", Detail: "东威科技", Module: "工序验收体系", Date: "２０２６０１３０"},
		},
		{
			name: "A-PROD(x)m-2026０１３０.xls",
			want: domain.ParsedName{Client: "A", Detail: "x", Module: "m", Date: "2026０１３０"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Parse(tc.name, ".xls")
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestParse_Mismatch(t *testing.T) {
	cases := []struct {
		name string
		kind string
	}{
		{"randomfile.xls", KindNoProdToken},
		{"A-PROD(x)m-20260130.xlsx", KindBadExt},
		{"A-PROD(x)m-20260130.XLS", KindBadExt},
		{"-PROD(x)m-20260130.xls", KindEmptyClient},
		{"A-PROD(xm-20260130.xls", KindUnclosedDetail},
		{"A-PROD()m-20260130.xls", KindEmptyDetail},
		{"A-PROD(x)m-2026013.xls", KindBadDate},
		{"A-PROD(x)m-.xls", KindBadDate},
		{"A-PROD(x)m20260130.xls", KindMissingDateSep},
		{"A-PROD(x)-20260130.xls", KindEmptyModule},
		{"A-prod(x)m-20260130.xls", KindNoProdToken},
		{"..-PROD(x)m-20260130.xls", KindUnsafeSegment},
		{"A-PROD(x)..-20260130.xls", KindUnsafeSegment},
		{"A-PROD(x)m-２０２６０１３.xls", KindBadDate},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse(tc.name, ".xls")
			var me *MismatchError
			require.True(t, errors.As(err, &me), "期望 MismatchError，实际：%v", err)
			assert.Equal(t, tc.kind, me.Kind)
			assert.Equal(t, tc.name, me.Name)
			assert.NotEmpty(t, me.Error())
		})
	}
}

func TestParse_CustomExt(t *testing.T) {
	got, err := Parse("A-PROD(x)m-20260130.xlsx", ".xlsx")
	require.NoError(t, err)
	assert.Equal(t, "m", got.Module)
}

func TestParse_Deterministic(t *testing.T) {
	name := "东威科技-PROD(东威科技)工序验收体系-20260130.xls"
	first, err := Parse(name, ".xls")
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := Parse(name, ".xls")
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestValidSegment(t *testing.T) {
	assert.True(t, ValidSegment("制造业"))
	assert.False(t, ValidSegment(""))
	assert.False(t, ValidSegment("  "))
	assert.False(t, ValidSegment(".."))
	assert.False(t, ValidSegment("a/b"))
	assert.False(t, ValidSegment(`a\b`))
}
