package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/conneroisu/prosemark/internal/binder"
	"github.com/conneroisu/prosemark/internal/compiler"
	"github.com/conneroisu/prosemark/internal/config"
	pmkerrors "github.com/conneroisu/prosemark/internal/errors"
	"github.com/conneroisu/prosemark/internal/logging"
	"github.com/conneroisu/prosemark/internal/metrics"
	"github.com/conneroisu/prosemark/internal/services"
	"github.com/conneroisu/prosemark/internal/types"
	"github.com/conneroisu/prosemark/internal/watcher"
	"github.com/conneroisu/prosemark/internal/wordcount"
)

var wcWatch bool

// wcFlagKeys maps wc flags to configuration keys.
var wcFlagKeys = map[string]string{
	"path":          "project.path",
	"include-empty": "wordcount.include_empty",
	"format":        "wordcount.format",
	"metrics-file":  "metrics.file",
}

var wcCmd = &cobra.Command{
	Use:   "wc [NODE_ID]",
	Short: "Count words in the binder or one subtree",
	Long: `Count the words in a node and all of its descendants, or in every
top-level binder item when no node is given.

The count is printed to stdout as a bare integer so it can be used in
scripts. On failure pmk prints 0 to stdout, an error to stderr, and exits 1.

URLs and email addresses count as one word each. Hyphenated compounds,
contractions and dotted numbers are single words. Em and en dashes separate
words.

Examples:
  pmk wc                                        # Whole manuscript
  pmk wc 0192f0c1-2345-7123-8abc-def012345678   # One part or chapter
  pmk wc --path ~/novel --include-empty         # Another project
  pmk wc --format json                          # Count plus traversal stats
  pmk wc --watch                                # Re-count on every save`,
	Args:          wcArgs,
	SilenceErrors: true,
	SilenceUsage:  true,
	RunE:          runWordCount,
}

func init() {
	rootCmd.AddCommand(wcCmd)

	wcCmd.Flags().StringP("path", "p", ".", "Project directory")
	wcCmd.Flags().Bool("include-empty", false, "Include empty nodes in compilation")
	addFormatFlag(wcCmd)
	wcCmd.Flags().BoolVarP(&wcWatch, "watch", "w", false, "Re-count whenever a draft or the binder changes")
	wcCmd.Flags().String("metrics-file", "", "Write Prometheus metrics to this file after each count")

	wcCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return reportFailure(cmd.OutOrStdout(), cmd.ErrOrStderr(), err.Error())
	})
}

func wcArgs(cmd *cobra.Command, args []string) error {
	if err := cobra.MaximumNArgs(1)(cmd, args); err != nil {
		return reportFailure(cmd.OutOrStdout(), cmd.ErrOrStderr(), err.Error())
	}
	return nil
}

// exitError is a failure that has already been reported to the user.
type exitError struct {
	code int
	msg  string
}

func (e *exitError) Error() string {
	return e.msg
}

// ExitCode returns the process exit code for an error returned by Execute.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var exit *exitError
	if errors.As(err, &exit) {
		return exit.code
	}
	return 1
}

// reportFailure prints the scriptable failure output: 0 on stdout and an
// Error line on stderr.
func reportFailure(stdout, stderr io.Writer, msg string) error {
	fmt.Fprintln(stdout, "0")
	fmt.Fprintln(stderr, "Error: "+msg)
	return &exitError{code: 1, msg: msg}
}

func runWordCount(cmd *cobra.Command, args []string) error {
	stdout, stderr := cmd.OutOrStdout(), cmd.ErrOrStderr()

	cfg, err := loadConfig(cmd, wcFlagKeys)
	if err != nil {
		return reportFailure(stdout, stderr, "Invalid configuration: "+err.Error())
	}

	ctx := cmd.Context()
	logger, err := newLogger(ctx, cfg, stderr)
	if err != nil {
		return reportFailure(stdout, stderr, "Invalid configuration: "+err.Error())
	}

	run, err := newWordCountRun(cfg, logger, stdout, stderr)
	if err != nil {
		return reportFailure(stdout, stderr, "Word count failed: "+err.Error())
	}

	req := types.NewAllRootsRequest(cfg.WordCount.IncludeEmpty)
	if len(args) == 1 {
		nodeID, err := types.ParseNodeID(args[0])
		if err != nil {
			run.errors.Handle(ctx, err)
			run.metrics.ObserveFailure(metrics.OutcomeInvalidID, 0)
			run.writeMetrics(ctx)
			return reportFailure(stdout, stderr, "Invalid node ID format: "+args[0])
		}
		req = types.NewWordCountRequest(nodeID, cfg.WordCount.IncludeEmpty)
	}

	if !wcWatch {
		return run.count(ctx, req)
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	return run.watch(ctx, req)
}

// wordCountRun wires the counting pipeline for one project.
type wordCountRun struct {
	cfg      *config.Config
	logger   logging.Logger
	useCase  *services.WordCountUseCase
	recorder *compiler.Recorder
	metrics  *metrics.WordCountMetrics
	errors   *pmkerrors.ErrorHandler
	stdout   io.Writer
	stderr   io.Writer
}

func newWordCountRun(cfg *config.Config, logger logging.Logger, stdout, stderr io.Writer) (*wordCountRun, error) {
	counter, err := wordcount.NewCachingCounter(wordcount.NewStandardWordCounter(), cfg.WordCount.CacheSize)
	if err != nil {
		return nil, err
	}

	m := metrics.NewWordCountMetrics()
	if err := m.RegisterCache(counter); err != nil {
		return nil, err
	}

	recorder := compiler.NewRecorder(compiler.New(
		binder.NewBinderRepo(cfg.Project.Path),
		binder.NewNodeRepo(cfg.Project.Path),
		compiler.WithLogger(logger),
	))

	logger = logger.WithComponent("wc")
	return &wordCountRun{
		cfg:      cfg,
		logger:   logger,
		useCase:  services.NewWordCountUseCase(recorder, services.NewWordCountService(counter)),
		recorder: recorder,
		metrics:  m,
		errors:   pmkerrors.NewErrorHandler(logger),
		stdout:   stdout,
		stderr:   stderr,
	}, nil
}

// count runs one word count and prints the result or the failure.
func (r *wordCountRun) count(ctx context.Context, req types.WordCountRequest) error {
	op := logging.StartOperation(r.logger, "wordcount")
	start := time.Now()

	res, err := r.useCase.CountWords(ctx, req)
	if err != nil {
		r.errors.Handle(ctx, err)
		outcome := failureOutcome(err)
		r.metrics.ObserveFailure(outcome, time.Since(start))
		r.writeMetrics(ctx)
		op.End(ctx, "outcome", outcome)
		return reportFailure(r.stdout, r.stderr, describeFailure(err, req))
	}

	stats, _ := r.recorder.Last()
	r.metrics.ObserveSuccess(res.Count(), stats.NodeCount, stats.SkippedEmpty, time.Since(start))
	r.writeMetrics(ctx)
	op.End(ctx, "outcome", metrics.OutcomeSuccess, "count", res.Count(), "nodes", stats.NodeCount)

	return r.print(res, req, stats)
}

// wordCountOutput is the --format json document.
type wordCountOutput struct {
	Count        int     `json:"count"`
	NodeID       *string `json:"node_id"`
	NodeCount    int     `json:"node_count"`
	TotalNodes   int     `json:"total_nodes"`
	SkippedEmpty int     `json:"skipped_empty"`
}

func (r *wordCountRun) print(res types.WordCountResult, req types.WordCountRequest, stats types.CompileResult) error {
	if r.cfg.WordCount.Format != formatJSON {
		_, err := fmt.Fprintln(r.stdout, res.Count())
		return err
	}

	out := wordCountOutput{
		Count:        res.Count(),
		NodeCount:    stats.NodeCount,
		TotalNodes:   stats.TotalNodes,
		SkippedEmpty: stats.SkippedEmpty,
	}
	if id, ok := req.NodeID(); ok {
		s := id.String()
		out.NodeID = &s
	}

	return json.NewEncoder(r.stdout).Encode(out)
}

func (r *wordCountRun) writeMetrics(ctx context.Context) {
	if r.cfg.Metrics.File == "" {
		return
	}
	if err := r.metrics.WriteTextfile(r.cfg.Metrics.File); err != nil {
		r.logger.Warn(ctx, err, "Failed to write metrics file", "path", r.cfg.Metrics.File)
	}
}

// watch prints an initial count, then a fresh one after every debounced
// batch of project changes until ctx is done. Count failures are reported
// and watching continues.
func (r *wordCountRun) watch(ctx context.Context, req types.WordCountRequest) error {
	fw, err := watcher.NewFileWatcher(r.cfg.Watch.Debounce, r.logger)
	if err != nil {
		return reportFailure(r.stdout, r.stderr, "Word count failed: "+err.Error())
	}
	defer fw.Stop()

	for _, filter := range watcher.ProjectFilters(r.cfg.Watch.Extensions) {
		fw.AddFilter(filter)
	}
	if err := fw.AddPath(r.cfg.Project.Path); err != nil {
		return reportFailure(r.stdout, r.stderr, "Word count failed: "+err.Error())
	}

	fw.AddHandler(func(events []watcher.ChangeEvent) error {
		r.logger.Info(ctx, "Project changed, recounting", "files", len(events))
		_ = r.count(ctx, req)
		return nil
	})

	_ = r.count(ctx, req)

	if err := fw.Start(ctx); err != nil {
		return reportFailure(r.stdout, r.stderr, "Word count failed: "+err.Error())
	}

	<-ctx.Done()
	return nil
}

// describeFailure maps a use case error to the message shown after "Error: ".
func describeFailure(err error, req types.WordCountRequest) string {
	id, targeted := req.NodeID()
	switch {
	case pmkerrors.IsNotFound(err) && targeted:
		return "Node not found: " + id.String()
	case pmkerrors.IsNotFound(err):
		return "Compilation failed"
	default:
		return "Word count failed: " + err.Error()
	}
}

func failureOutcome(err error) string {
	if pmkerrors.IsNotFound(err) {
		return metrics.OutcomeNotFound
	}
	return metrics.OutcomeError
}
