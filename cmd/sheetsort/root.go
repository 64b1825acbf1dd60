package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/John-Robertt/sheetsort/internal/app/run"
	"github.com/John-Robertt/sheetsort/internal/config"
	"github.com/John-Robertt/sheetsort/internal/logging"
	"github.com/John-Robertt/sheetsort/internal/report"
	"github.com/John-Robertt/sheetsort/internal/scan"
)

const (
	exitOK          = 0
	exitFatal       = 1
	exitUsage       = 2
	exitInterrupted = 130
)

// exitError 携带进程退出码；其余 cobra 错误（未知命令/参数）一律视为用法错误。
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }

func (e *exitError) Unwrap() error { return e.err }

func execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	root := newRootCmd(stdout, stderr)
	root.SetArgs(args)

	err := root.ExecuteContext(ctx)
	if err == nil {
		return exitOK
	}
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	fmt.Fprintf(stderr, "参数错误：%v\n\n", err)
	_ = root.Usage()
	return exitUsage
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:           "sheetsort",
		Short:         "把平铺的 .xls 报表按 行业/模块/客户 整理成目录树",
		Long:          "sheetsort 扫描源目录中的报表文件，按文件名解析出客户与模块，结合客户→行业映射，复制到 <目标>/<行业>/<模块>/<客户>/ 下。源目录永远不被修改。",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.AddCommand(newRunCmd(stdout, stderr))
	return root
}

func newRunCmd(stdout, stderr io.Writer) *cobra.Command {
	var cli config.CLIArgs

	cmd := &cobra.Command{
		Use:   "run",
		Short: "执行一次整理（默认直接复制；--dry-run 只规划）",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cli.DryRunSet = cmd.Flags().Changed("dry-run")
			return runSheets(cmd.Context(), cli, stdout, stderr)
		},
	}

	f := cmd.Flags()
	f.StringVar(&cli.SourceDir, "src", "", "源目录（平铺的报表文件）")
	f.StringVar(&cli.TargetDir, "dst", "", "目标根目录（默认 <src>"+config.DefaultTargetSuffix+"）")
	f.StringVar(&cli.ConfigPath, "config", "", "配置文件（YAML；默认读取 ./"+config.DefaultFileName+"，若存在）")
	f.StringVar(&cli.Ext, "ext", "", "扫描的扩展名，大小写敏感（默认 "+config.DefaultExt+"）")
	f.StringToStringVar(&cli.IndustryMap, "map", nil, "追加/覆盖 客户=行业 映射，可重复")
	f.StringVar(&cli.DefaultIndustry, "default-industry", "", "未映射客户使用的行业（默认 其他行业）")
	f.BoolVar(&cli.DryRun, "dry-run", false, "只解析与规划，不创建目录、不复制")
	f.StringVar(&cli.ReportPath, "report", "", "写入 JSON 运行报告")
	f.StringVar(&cli.HTMLPath, "html", "", "写入 HTML 运行报告")
	f.StringVar(&cli.LogFile, "log-file", "", "同时追加写入日志文件（纯文本）")
	f.StringVar(&cli.Color, "color", "", "彩色输出：auto|always|never")
	f.BoolVarP(&cli.Verbose, "verbose", "v", false, "输出调试信息")

	return cmd
}

func runSheets(ctx context.Context, cli config.CLIArgs, stdout, stderr io.Writer) error {
	cwd, err := os.Getwd()
	if err != nil {
		fmt.Fprintf(stderr, "读取当前目录失败：%v\n", err)
		return &exitError{code: exitFatal, err: err}
	}

	eff, err := config.LoadEffective(cwd, cli)
	if err != nil {
		fmt.Fprintf(stderr, "配置错误（%s）：%v\n", config.Code(err), err)
		return &exitError{code: exitFatal, err: err}
	}

	log, err := logging.New(logging.Options{
		Color:   eff.Color,
		LogFile: eff.LogFile,
		Verbose: eff.Verbose,
		Stdout:  stdout,
		Stderr:  stderr,
	})
	if err != nil {
		fmt.Fprintf(stderr, "打开日志文件失败：%v\n", err)
		return &exitError{code: exitFatal, err: err}
	}
	defer log.Close()

	ui := newConsoleUI(log, pickProgressWriter(stderr))
	rr, runErr := run.ExecuteWithObserver(ctx, eff, ui)

	code := exitOK
	var tre *run.TargetRootError
	switch {
	case runErr == nil:
	case scan.IsMissingSource(runErr):
		log.Error("源目录不存在：%v", runErr)
		code = exitFatal
	case errors.As(runErr, &tre):
		log.Error("%v", runErr)
		code = exitFatal
	case errors.Is(runErr, context.Canceled):
		log.Warn("已中断：已完成的文件保留在目标目录，可重新运行继续")
		code = exitInterrupted
	default:
		log.Error("运行失败：%v", runErr)
		code = exitFatal
	}

	if eff.ReportPath != "" {
		if err := report.WriteJSON(eff.ReportPath, rr); err != nil {
			log.Error("写入 JSON 报告失败：%v", err)
			code = exitFatal
		} else {
			log.Info("report: %s", eff.ReportPath)
		}
	}
	if eff.HTMLPath != "" {
		if err := report.WriteHTML(eff.HTMLPath, rr); err != nil {
			log.Error("写入 HTML 报告失败：%v", err)
			code = exitFatal
		} else {
			log.Info("html: %s", eff.HTMLPath)
		}
	}

	if code != exitOK {
		if runErr == nil {
			runErr = errors.New("写入报告失败")
		}
		return &exitError{code: code, err: runErr}
	}
	return nil
}

func isTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok || f == nil {
		return false
	}
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

// pickProgressWriter 只在 stderr 是交互终端时返回进度输出目标。
func pickProgressWriter(stderr io.Writer) io.Writer {
	if isTTY(stderr) {
		return stderr
	}
	return nil
}
