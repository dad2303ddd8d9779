package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/John-Robertt/geoclean/internal/app/run"
	"github.com/John-Robertt/geoclean/internal/config"
	"github.com/John-Robertt/geoclean/internal/infra/logx"
	"github.com/John-Robertt/geoclean/internal/wiki"
)

// 退出码：0 成功（单条记录未找到不算失败）；1 运行失败；2 参数错误。
const (
	exitOK      = 0
	exitFailed  = 1
	exitUsage   = 2
	exitAborted = 130
)

func main() {
	os.Exit(execute(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

// exitError 携带退出码；cobra 自身的参数解析错误不是 exitError，按 exitUsage 处理。
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

type cliFlags struct {
	outputDir  string
	configPath string
	noEnrich   bool
	dryRun     bool
	logLevel   string
}

func execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cmd := newRootCmd(stderr)
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return exitOK
	}
	var ee *exitError
	if errors.As(err, &ee) {
		fmt.Fprintf(stderr, "失败：%v\n", ee.err)
		return ee.code
	}
	fmt.Fprintf(stderr, "参数错误：%v\n\n", err)
	fmt.Fprint(stderr, cmd.UsageString())
	return exitUsage
}

func newRootCmd(stderr io.Writer) *cobra.Command {
	var f cliFlags
	cmd := &cobra.Command{
		Use:   "geoclean <input.geojson>",
		Short: "清洗地点数据集并补全 Wikipedia 链接",
		Long: `geoclean 读取一个 GeoJSON FeatureCollection，修复文本字段的换行与乱码，
删除冗余字段，找出疑似重复的记录，并为缺少 Wikipedia 链接的记录查找最合适的文章。

输出写到 <output-dir>/<name>_cleaned<ext>，同目录下附带审阅报告：
  cleanup_summary.txt / potential_duplicates.txt / wikipedia_not_found.txt / unicode_errors_review.txt`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cli := config.CLIArgs{
				Input:      args[0],
				OutputDir:  f.outputDir,
				ConfigPath: f.configPath,
				NoEnrich:   f.noEnrich,
				DryRun:     f.dryRun,
				LogLevel:   f.logLevel,
			}
			return runClean(cmd.Context(), cli, stderr)
		},
	}
	fl := cmd.Flags()
	fl.StringVarP(&f.outputDir, "output-dir", "o", "", "输出目录（默认与输入文件同目录）")
	fl.StringVar(&f.configPath, "config", "", "配置文件路径（默认读取 ./"+config.DefaultFileName+"，不存在则忽略）")
	fl.BoolVar(&f.noEnrich, "no-enrich", false, "跳过 Wikipedia 查找")
	fl.BoolVar(&f.dryRun, "dry-run", false, "只运行流水线与查找，不写入任何文件")
	fl.StringVar(&f.logLevel, "log-level", "", "日志级别：debug|info|warn|error")
	return cmd
}

func runClean(ctx context.Context, cli config.CLIArgs, stderr io.Writer) error {
	cwd, err := os.Getwd()
	if err != nil {
		return &exitError{code: exitFailed, err: fmt.Errorf("读取当前目录失败：%w", err)}
	}

	eff, err := config.LoadEffective(cwd, cli)
	if err != nil {
		return &exitError{code: exitFailed, err: err}
	}

	log, closeLog, err := logx.NewTee(stderr, eff.LogLevel, eff.LogFormat, logx.FileOptions{
		Path:       eff.LogFile,
		MaxSizeMB:  eff.LogMaxSizeMB,
		MaxBackups: eff.LogMaxBackups,
	})
	if err != nil {
		return &exitError{code: exitFailed, err: err}
	}
	defer func() { _ = closeLog() }()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	progressW, interactive := pickProgressWriter(stderr)
	var obs run.Observer
	if interactive {
		ui := newProgressUI(progressW)
		defer ui.Close()
		obs = ui
	}

	res, err := run.ExecuteWithObserver(ctx, eff, run.Deps{Log: log}, obs)
	if err != nil {
		log.Error("运行失败", zap.Error(err))
		return &exitError{code: exitCodeFor(err), err: err}
	}

	emitSummary(stderr, res)
	emitLocations(stderr, res)
	return nil
}

func exitCodeFor(err error) int {
	if wiki.IsCanceled(err) {
		return exitAborted
	}
	return exitFailed
}

// emitSummary 输出一行结果摘要（stdout 保持干净）。
func emitSummary(w io.Writer, res run.Result) {
	s := res.Report.Summary
	mode := ""
	if res.DryRun {
		mode = " (dry-run，未写入)"
	}
	fmt.Fprintf(w, "完成%s：records=%d corrected=%d unicode_review=%d pruned=%d duplicate_groups=%d resolved=%d not_found=%d skipped=%d\n",
		mode, s.Records, s.TextCorrections, s.UnicodeReviews, s.FieldsPruned, s.DuplicateGroups,
		s.EnrichResolved, s.EnrichNotFound, s.EnrichSkipped,
	)
}

// emitLocations 列出写出的文件，降低“完成后不知道产物在哪”的摩擦。
func emitLocations(w io.Writer, res run.Result) {
	if res.DryRun {
		fmt.Fprintf(w, "out: %s (未写入)\n", res.OutputPath)
		return
	}
	for _, p := range res.Written {
		label := "report"
		if p == res.OutputPath {
			label = "out"
		}
		size := ""
		if fi, err := os.Stat(p); err == nil {
			size = " (" + humanize.Bytes(uint64(fi.Size())) + ")"
		}
		fmt.Fprintf(w, "%s: %s%s\n", label, filepath.Clean(p), size)
	}
}

func isTTY(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// pickProgressWriter 只在交互终端启用进度输出；非终端时过程信息只走结构化日志。
func pickProgressWriter(stderr io.Writer) (io.Writer, bool) {
	f, ok := stderr.(*os.File)
	if !ok || !isTTY(f) {
		return nil, false
	}
	return f, true
}
