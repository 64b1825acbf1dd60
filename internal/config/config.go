package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/John-Robertt/sheetsort/internal/classify"
	"github.com/John-Robertt/sheetsort/internal/domain"
)

const (
	// ErrCodeNotFound 表示 --config 指定的配置文件不存在。
	ErrCodeNotFound = "config_not_found"
	// ErrCodeInvalid 表示配置文件无法读取/解析，或字段不合法。
	ErrCodeInvalid = "config_invalid"
	// ErrCodeMissingSource 表示 CLI 与配置文件都没有给出源目录。
	ErrCodeMissingSource = "config_missing_source_dir"
)

const (
	// DefaultFileName 是 cwd 下自动发现的配置文件名。
	DefaultFileName = "sheetsort.yaml"
	// DefaultExt 是默认扫描的扩展名。
	DefaultExt = ".xls"
	// DefaultTargetSuffix 用于在未指定目标目录时，由源目录推导：<source>_Structured。
	DefaultTargetSuffix = "_Structured"
)

const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// CLIArgs 是 CLI 暴露的入口。字符串字段为空表示未指定；bool 字段带 Set 标记，
// 保证 --dry-run=false 可以覆盖配置文件里的 dry_run: true。
type CLIArgs struct {
	ConfigPath string

	SourceDir       string
	TargetDir       string
	Ext             string
	DefaultIndustry string
	// IndustryMap 来自重复的 --map 客户=行业，叠加在配置文件之上。
	IndustryMap map[string]string

	DryRun    bool
	DryRunSet bool

	ReportPath string
	HTMLPath   string
	LogFile    string
	Color      string
	Verbose    bool
}

// FileConfig 对应 sheetsort.yaml 的解析结构。
type FileConfig struct {
	SourceDir       string            `yaml:"source_dir"`
	TargetDir       string            `yaml:"target_dir"`
	Ext             string            `yaml:"ext"`
	DefaultIndustry string            `yaml:"default_industry"`
	IndustryMap     map[string]string `yaml:"industry_map"`
	DryRun          *bool             `yaml:"dry_run"`
	Report          string            `yaml:"report"`
	HTMLReport      string            `yaml:"html_report"`
	LogFile         string            `yaml:"log_file"`
	Color           string            `yaml:"color"`
}

// EffectiveConfig 是合并并做最小规范化后的最终配置（实现层直接消费，不再做二次默认/优先级判断）。
type EffectiveConfig struct {
	SourceDir string
	TargetDir string
	Ext       string

	DefaultIndustry string
	// Industries 是 内置 → 配置文件 → --map 依次叠加后的映射。
	Industries map[string]string

	DryRun bool

	ReportPath string
	HTMLPath   string
	LogFile    string
	Color      string
	Verbose    bool

	// ConfigPath 是实际读取的配置文件（未读取则为空）。
	ConfigPath string
}

// Error 是配置阶段的结构化错误（带 error_code）。
type Error struct {
	Code string
	Path string
	Err  error
}

func (e *Error) Error() string {
	switch e.Code {
	case ErrCodeNotFound:
		return fmt.Sprintf("%s：未找到配置文件 %q", e.Code, e.Path)
	case ErrCodeMissingSource:
		return fmt.Sprintf("%s：未指定源目录（--src 或配置文件 source_dir）", e.Code)
	case ErrCodeInvalid:
		if e.Err != nil {
			return fmt.Sprintf("%s：配置 %q 无效：%v", e.Code, e.Path, e.Err)
		}
		return fmt.Sprintf("%s：配置 %q 无效", e.Code, e.Path)
	default:
		if e.Err != nil {
			return fmt.Sprintf("%s：%v", e.Code, e.Err)
		}
		return e.Code
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Code 从 error 中提取 error_code；若不是 *Error 则返回空串。
func Code(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// LoadEffective 发现并读取配置文件，然后与 CLI 参数合并为最终配置。
//
// 发现规则（固定）：
// 1) CLI 提供 --config：必须存在
// 2) 否则尝试 <cwd>/sheetsort.yaml（可选，不存在不报错）
//
// 覆盖优先级（固定）：
// - 标量字段：CLI > 配置文件 > 内置默认
// - 行业映射：内置 → 配置文件 → --map 依次叠加（后者覆盖前者）
// - 路径：配置文件中的相对路径以配置文件所在目录为基准；CLI 相对路径以 cwd 为基准
func LoadEffective(cwd string, cli CLIArgs) (EffectiveConfig, error) {
	cwdAbs, err := filepath.Abs(cwd)
	if err != nil {
		return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cwd, Err: err}
	}

	cfgPath := ""
	var fc FileConfig
	if strings.TrimSpace(cli.ConfigPath) != "" {
		cfgPath = absCleanFrom(cwdAbs, cli.ConfigPath)
		var exists bool
		fc, exists, err = readFileConfig(cfgPath)
		if err != nil {
			return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cfgPath, Err: err}
		}
		if !exists {
			return EffectiveConfig{}, &Error{Code: ErrCodeNotFound, Path: cfgPath, Err: os.ErrNotExist}
		}
	} else {
		p := filepath.Join(cwdAbs, DefaultFileName)
		var exists bool
		fc, exists, err = readFileConfig(p)
		if err != nil {
			return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: p, Err: err}
		}
		if exists {
			cfgPath = p
		}
	}

	return merge(cwdAbs, cli, fc, cfgPath)
}

func merge(cwdAbs string, cli CLIArgs, fc FileConfig, cfgPath string) (EffectiveConfig, error) {
	cfgDir := cwdAbs
	if cfgPath != "" {
		cfgDir = filepath.Dir(cfgPath)
	}
	invalid := func(format string, args ...any) error {
		p := cfgPath
		if p == "" {
			p = "<cli>"
		}
		return &Error{Code: ErrCodeInvalid, Path: p, Err: fmt.Errorf(format, args...)}
	}

	// source：CLI > config；必填。
	src := ""
	switch {
	case strings.TrimSpace(cli.SourceDir) != "":
		src = absCleanFrom(cwdAbs, cli.SourceDir)
	case strings.TrimSpace(fc.SourceDir) != "":
		src = absCleanFrom(cfgDir, fc.SourceDir)
	default:
		return EffectiveConfig{}, &Error{Code: ErrCodeMissingSource, Path: cfgPath}
	}

	// target：CLI > config > <source>_Structured
	dst := src + DefaultTargetSuffix
	switch {
	case strings.TrimSpace(cli.TargetDir) != "":
		dst = absCleanFrom(cwdAbs, cli.TargetDir)
	case strings.TrimSpace(fc.TargetDir) != "":
		dst = absCleanFrom(cfgDir, fc.TargetDir)
	}
	if dst == src {
		return EffectiveConfig{}, invalid("目标目录不能与源目录相同：%q", dst)
	}

	ext := firstNonEmpty(cli.Ext, fc.Ext, DefaultExt)
	if !strings.HasPrefix(ext, ".") || len(ext) < 2 || strings.ContainsAny(ext, `/\`) {
		return EffectiveConfig{}, invalid("ext 必须形如 .xls，实际是 %q", ext)
	}

	def := firstNonEmpty(cli.DefaultIndustry, fc.DefaultIndustry, domain.DefaultIndustry)
	if !classify.ValidSegment(def) {
		return EffectiveConfig{}, invalid("default_industry 不能作为目录名：%q", def)
	}

	industries := classify.BuiltinIndustries()
	for _, layer := range []map[string]string{fc.IndustryMap, cli.IndustryMap} {
		for client, industry := range layer {
			if client == "" {
				return EffectiveConfig{}, invalid("industry_map 中存在空客户名")
			}
			if !classify.ValidSegment(industry) {
				return EffectiveConfig{}, invalid("客户 %q 的行业不能作为目录名：%q", client, industry)
			}
			industries[client] = industry
		}
	}

	// dry_run：CLI > config > 默认 false
	dryRun := false
	if cli.DryRunSet {
		dryRun = cli.DryRun
	} else if fc.DryRun != nil {
		dryRun = *fc.DryRun
	}

	color := strings.ToLower(firstNonEmpty(cli.Color, fc.Color, ColorAuto))
	switch color {
	case ColorAuto, ColorAlways, ColorNever:
	default:
		return EffectiveConfig{}, invalid("color 只能是 auto|always|never，实际是 %q", color)
	}

	return EffectiveConfig{
		SourceDir:       src,
		TargetDir:       dst,
		Ext:             ext,
		DefaultIndustry: def,
		Industries:      industries,
		DryRun:          dryRun,
		ReportPath:      pickPath(cwdAbs, cli.ReportPath, cfgDir, fc.Report),
		HTMLPath:        pickPath(cwdAbs, cli.HTMLPath, cfgDir, fc.HTMLReport),
		LogFile:         pickPath(cwdAbs, cli.LogFile, cfgDir, fc.LogFile),
		Color:           color,
		Verbose:         cli.Verbose,
		ConfigPath:      cfgPath,
	}, nil
}

func firstNonEmpty(vs ...string) string {
	for _, v := range vs {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

// pickPath：CLI 路径以 cwd 为基准，配置文件路径以配置文件目录为基准；都为空返回空串。
func pickPath(cwdAbs, cliPath, cfgDir, filePath string) string {
	if strings.TrimSpace(cliPath) != "" {
		return absCleanFrom(cwdAbs, cliPath)
	}
	if strings.TrimSpace(filePath) != "" {
		return absCleanFrom(cfgDir, filePath)
	}
	return ""
}

// absCleanFrom 以 base 为基准，把 p 变为 clean + absolute。
// - p 若已是绝对路径：直接 Clean
// - p 若是相对路径：Join(base, p) 后 Clean
func absCleanFrom(base, p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return ""
	}
	p = filepath.Clean(p)
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Clean(filepath.Join(base, p))
}

// readFileConfig 读取并解析 YAML 配置文件。
// 返回值 exists 表示该文件是否存在（不存在不算错误）。
func readFileConfig(path string) (fc FileConfig, exists bool, err error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, false, nil
		}
		return FileConfig{}, false, err
	}
	if err := yaml.Unmarshal(b, &fc); err != nil {
		return FileConfig{}, true, err
	}
	return fc, true, nil
}
