package domain

// DefaultIndustry 是客户未登记时的兜底行业。
const DefaultIndustry = "其他行业"

// ParsedName 是文件名按固定语法拆出的四个字段：
//
//	<client>-PROD(<detail>)<module>-<date><ext>
//
// 四个字段均非空；解析失败时不存在 ParsedName（文件被记为 skipped）。
type ParsedName struct {
	Client string
	Detail string // 仅用于审计/报告，不参与目录结构
	Module string
	Date   string
}

// Classification 是一次成功分类的结果。
type Classification struct {
	Parsed   ParsedName
	Industry string
	// Mapped=false 表示客户未登记，Industry 为兜底值。
	Mapped bool
}

// Destination 返回该分类对应的目标三元组。
func (c Classification) Destination() Destination {
	return Destination{
		Industry: c.Industry,
		Module:   c.Parsed.Module,
		Client:   c.Parsed.Client,
	}
}
