package classify

import (
	"maps"
	"sort"
	"strings"

	"github.com/John-Robertt/sheetsort/internal/domain"
)

// builtinIndustries 是内置的 客户 → 行业 映射。配置文件与 --map 可以覆盖或追加。
var builtinIndustries = map[string]string{
	"东威科技":   "制造业",
	"中建智地":   "房地产业",
	"中海地产":   "房地产业",
	"广州地铁地产": "房地产业",
	"星河地产":   "房地产业",
	"深铁置业":   "房地产业",
	"明康工程咨询": "建筑服务业",
	"湖南建投":   "建筑服务业",
}

// BuiltinIndustries 返回内置映射的副本。
func BuiltinIndustries() map[string]string {
	return maps.Clone(builtinIndustries)
}

// IndustryMap 是一次运行内只读的 客户 → 行业 映射（精确匹配，区分大小写）。
//
// 不变量：Lookup 是全函数，未命中时返回 Default，永远不会返回空行业。
type IndustryMap struct {
	byClient map[string]string
	def      string
}

// NewIndustryMap 以 layers 依次叠加构造映射（后者覆盖前者）。
// 空 key/空 value 的条目被忽略；def 为空时使用 domain.DefaultIndustry。
func NewIndustryMap(def string, layers ...map[string]string) IndustryMap {
	def = strings.TrimSpace(def)
	if def == "" {
		def = domain.DefaultIndustry
	}
	m := make(map[string]string, len(builtinIndustries))
	for _, layer := range layers {
		for client, industry := range layer {
			if client == "" || strings.TrimSpace(industry) == "" {
				continue
			}
			m[client] = industry
		}
	}
	return IndustryMap{byClient: m, def: def}
}

// Lookup 返回客户所属行业；ok=false 表示使用了兜底值。
func (m IndustryMap) Lookup(client string) (industry string, ok bool) {
	if v, hit := m.byClient[client]; hit {
		return v, true
	}
	return m.Default(), false
}

// Default 返回兜底行业。
func (m IndustryMap) Default() string {
	if m.def == "" {
		return domain.DefaultIndustry
	}
	return m.def
}

// Len 返回已登记客户数。
func (m IndustryMap) Len() int { return len(m.byClient) }

// Clients 返回已登记客户（排序后，保证输出稳定）。
func (m IndustryMap) Clients() []string {
	out := make([]string, 0, len(m.byClient))
	for c := range m.byClient {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}
