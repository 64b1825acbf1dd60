package app

import (
	"testing"

	"github.com/John-Robertt/sheetsort/internal/domain"
)

func TestGroupByDestination_MergeSameDestination(t *testing.T) {
	items := []domain.ItemResult{
		{File: "A-PROD(a)m-20260201.xls", Status: domain.StatusProcessed, Industry: "制造业", Module: "m", Client: "A"},
		{File: "A-PROD(a)m-20260101.xls", Status: domain.StatusProcessed, Industry: "制造业", Module: "m", Client: "A"},
		{File: "B-PROD(b)m-20260101.xls", Status: domain.StatusProcessed, Industry: "其他行业", Module: "m", Client: "B"},
	}

	groups := GroupByDestination(items)
	if len(groups) != 2 {
		t.Fatalf("期望 2 个目标目录，实际 %d", len(groups))
	}
	var a domain.DestGroup
	for _, g := range groups {
		if g.Destination.Client == "A" {
			a = g
		}
	}
	// group 内必须按文件名排序：20260101 在 20260201 之前。
	if len(a.ItemIdx) != 2 || a.ItemIdx[0] != 1 || a.ItemIdx[1] != 0 {
		t.Fatalf("ItemIdx 排序不稳定：%v", a.ItemIdx)
	}
	if groups[0].Destination.Rel() > groups[1].Destination.Rel() {
		t.Fatalf("groups 未按路径排序：%v", groups)
	}
}

func TestGroupByDestination_IgnoreSkippedAndFailed(t *testing.T) {
	items := []domain.ItemResult{
		{File: "randomfile.xls", Status: domain.StatusSkipped},
		{File: "A-PROD(a)m-20260101.xls", Status: domain.StatusFailed, Industry: "制造业", Module: "m", Client: "A"},
		{File: "C-PROD(c)m-20260101.xls", Status: domain.StatusProcessed, Industry: "制造业", Module: "m", Client: "C"},
	}

	groups := GroupByDestination(items)
	if len(groups) != 1 {
		t.Fatalf("期望 1 个目标目录，实际 %d", len(groups))
	}
	if groups[0].Destination.Client != "C" || len(groups[0].ItemIdx) != 1 {
		t.Fatalf("group 不符合预期：%+v", groups[0])
	}
}
