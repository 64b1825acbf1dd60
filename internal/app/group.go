package app

import (
	"sort"

	"github.com/John-Robertt/sheetsort/internal/domain"
)

// GroupByDestination 把已处理（processed）的条目按目标目录聚合（DestGroup 只存 item index）。
//
// - skipped/failed 条目不参与聚合
// - groups 稳定排序：按 industry/module/client 路径字典序
// - group 内 ItemIdx 稳定排序：按文件名字典序
func GroupByDestination(items []domain.ItemResult) []domain.DestGroup {
	index := make(map[domain.Destination]int, 32)
	groups := make([]domain.DestGroup, 0, 32)

	for i := range items {
		if items[i].Status != domain.StatusProcessed {
			continue
		}
		d := items[i].Destination()
		if idx, ok := index[d]; ok {
			groups[idx].ItemIdx = append(groups[idx].ItemIdx, i)
			continue
		}
		index[d] = len(groups)
		groups = append(groups, domain.DestGroup{
			Destination: d,
			ItemIdx:     []int{i},
		})
	}

	sort.Slice(groups, func(i, j int) bool { return groups[i].Destination.Rel() < groups[j].Destination.Rel() })
	for i := range groups {
		sort.Slice(groups[i].ItemIdx, func(a, b int) bool {
			return items[groups[i].ItemIdx[a]].File < items[groups[i].ItemIdx[b]].File
		})
	}
	return groups
}
