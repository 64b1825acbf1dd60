package classify

import "github.com/John-Robertt/sheetsort/internal/domain"

// Classify 解析文件名并解析出行业。纯函数：相同 name + 映射 => 相同结果。
// 不符合语法时返回 *MismatchError。
func Classify(name, ext string, industries IndustryMap) (domain.Classification, error) {
	p, err := Parse(name, ext)
	if err != nil {
		return domain.Classification{}, err
	}
	industry, ok := industries.Lookup(p.Client)
	return domain.Classification{
		Parsed:   p,
		Industry: industry,
		Mapped:   ok,
	}, nil
}
