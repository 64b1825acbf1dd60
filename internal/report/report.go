package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/dustin/go-humanize"

	"github.com/John-Robertt/sheetsort/internal/app"
	"github.com/John-Robertt/sheetsort/internal/domain"
	"github.com/John-Robertt/sheetsort/internal/infra/fsx"
)

// MarshalJSON 输出带缩进、以换行结尾的 RunReport。
func MarshalJSON(rr domain.RunReport) ([]byte, error) {
	b, err := json.MarshalIndent(rr, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(b, '\n'), nil
}

// WriteJSON 原子写入 report.json（已存在则覆盖）。
func WriteJSON(path string, rr domain.RunReport) error {
	b, err := MarshalJSON(rr)
	if err != nil {
		return err
	}
	return fsx.WriteFileAtomic(filepath.Dir(path), filepath.Base(path), b)
}

// WriteHTML 原子写入 HTML 报告（已存在则覆盖）。
func WriteHTML(path string, rr domain.RunReport) error {
	b, err := RenderHTML(rr)
	if err != nil {
		return err
	}
	return fsx.WriteFileAtomic(filepath.Dir(path), filepath.Base(path), b)
}

const skeleton = `<!DOCTYPE html>
<html lang="zh-CN">
<head>
<meta charset="utf-8">
<title>sheetsort 报告</title>
<style>
body{font-family:sans-serif;margin:2em}
table{border-collapse:collapse;margin-bottom:2em}
th,td{border:1px solid #ccc;padding:4px 8px;text-align:left}
tr.skipped{color:#8a6d00}
tr.failed{color:#b00020}
</style>
</head>
<body>
<h1>sheetsort 报告</h1>
<dl id="meta">
<dt>run_id</dt><dd id="run-id"></dd>
<dt>源目录</dt><dd id="source-dir"></dd>
<dt>目标目录</dt><dd id="target-dir"></dd>
<dt>模式</dt><dd id="mode"></dd>
<dt>开始</dt><dd id="started-at"></dd>
<dt>耗时</dt><dd id="elapsed"></dd>
</dl>
<h2>汇总</h2>
<table id="summary">
<tr><th>processed</th><th>skipped</th><th>failed</th></tr>
<tr><td id="sum-processed"></td><td id="sum-skipped"></td><td id="sum-failed"></td></tr>
</table>
<h2>按目标目录</h2>
<table id="groups">
<thead><tr><th>行业</th><th>模块</th><th>客户</th><th>文件数</th><th>大小</th></tr></thead>
<tbody></tbody>
</table>
<h2>逐文件</h2>
<table id="items">
<thead><tr><th>文件</th><th>状态</th><th>动作</th><th>目标</th><th>大小</th><th>错误</th></tr></thead>
<tbody></tbody>
</table>
</body>
</html>
`

// RenderHTML 生成自包含的 HTML 报告：汇总、按目标目录聚合、逐文件明细。
// 所有文本都经过转义；行顺序与 rr.Items（已 Finalize）一致。
func RenderHTML(rr domain.RunReport) ([]byte, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(skeleton))
	if err != nil {
		return nil, err
	}

	mode := "apply"
	if rr.DryRun {
		mode = "dry-run"
	}
	doc.Find("#run-id").SetText(rr.RunID)
	doc.Find("#source-dir").SetText(rr.SourceDir)
	doc.Find("#target-dir").SetText(rr.TargetDir)
	doc.Find("#mode").SetText(mode)
	doc.Find("#started-at").SetText(rr.StartedAt.UTC().Format(time.RFC3339))
	doc.Find("#elapsed").SetText(rr.FinishedAt.Sub(rr.StartedAt).Round(time.Millisecond).String())

	doc.Find("#sum-processed").SetText(strconv.Itoa(rr.Summary.Processed))
	doc.Find("#sum-skipped").SetText(strconv.Itoa(rr.Summary.Skipped))
	doc.Find("#sum-failed").SetText(strconv.Itoa(rr.Summary.Failed))

	groups := doc.Find("#groups tbody")
	for _, g := range app.GroupByDestination(rr.Items) {
		var size int64
		for _, i := range g.ItemIdx {
			size += rr.Items[i].Bytes
		}
		groups.AppendHtml(row("",
			g.Destination.Industry,
			g.Destination.Module,
			g.Destination.Client,
			strconv.Itoa(len(g.ItemIdx)),
			humanize.IBytes(uint64(size)),
		))
	}

	items := doc.Find("#items tbody")
	for _, it := range rr.Items {
		size := ""
		if it.Bytes > 0 {
			size = humanize.IBytes(uint64(it.Bytes))
		}
		msg := it.ErrorMsg
		if it.ErrorCode != "" {
			msg = it.ErrorCode + ": " + msg
		}
		items.AppendHtml(row(it.Status, it.File, it.Status, it.Action, it.Dst, size, msg))
	}

	out, err := doc.Html()
	if err != nil {
		return nil, err
	}
	return []byte(out), nil
}

func row(class string, cells ...string) string {
	var b bytes.Buffer
	if class != "" {
		fmt.Fprintf(&b, `<tr class="%s">`, html.EscapeString(class))
	} else {
		b.WriteString("<tr>")
	}
	for _, c := range cells {
		b.WriteString("<td>")
		b.WriteString(html.EscapeString(c))
		b.WriteString("</td>")
	}
	b.WriteString("</tr>")
	return b.String()
}
