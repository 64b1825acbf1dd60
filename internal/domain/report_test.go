package domain

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"
)

func TestRunReport_Finalize_SortAndSummaryAndUTC(t *testing.T) {
	r := RunReport{
		SourceDir:  "/src",
		TargetDir:  "/out",
		StartedAt:  time.Date(2026, 2, 9, 10, 0, 0, 0, time.FixedZone("X", 8*3600)),
		FinishedAt: time.Date(2026, 2, 9, 10, 0, 1, 0, time.FixedZone("X", 8*3600)),
		Items: []ItemResult{
			{File: "c.xls", Status: StatusSkipped},
			{File: "a.xls", Status: StatusProcessed},
			{File: "b.xls", Status: StatusFailed},
			{File: "d.xls", Status: StatusProcessed},
		},
	}

	r.Finalize()

	got := []string{r.Items[0].File, r.Items[1].File, r.Items[2].File, r.Items[3].File}
	want := []string{"a.xls", "b.xls", "c.xls", "d.xls"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("items 排序不符合契约：got=%v want=%v", got, want)
		}
	}
	if r.Summary.Processed != 2 || r.Summary.Skipped != 1 || r.Summary.Failed != 1 {
		t.Fatalf("summary 统计不正确：%+v", r.Summary)
	}

	b, err := json.Marshal(r)
	if err != nil {
		t.Fatalf("json.Marshal 失败：%v", err)
	}
	if !bytes.Contains(b, []byte("\"started_at\":\"2026-02-09T02:00:00Z\"")) {
		t.Fatalf("started_at 不是 UTC RFC3339：%s", string(b))
	}
}

func TestRunReport_MarshalJSON_EmptyItems(t *testing.T) {
	b, err := json.Marshal(RunReport{})
	if err != nil {
		t.Fatalf("json.Marshal 失败：%v", err)
	}
	if !bytes.Contains(b, []byte(`"items":[]`)) {
		t.Fatalf("空 items 应输出 []：%s", string(b))
	}
}

func TestDestination_Dir(t *testing.T) {
	d := Destination{Industry: "制造业", Module: "工序验收体系", Client: "东威科技"}
	want := filepath.Join("/out", "制造业", "工序验收体系", "东威科技")
	if got := d.Dir("/out"); got != want {
		t.Fatalf("期望 %q，实际 %q", want, got)
	}
}
