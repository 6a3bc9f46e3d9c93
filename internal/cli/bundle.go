package cli

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/matzehuels/jscadpack/pkg/pipeline"
)

// bundleOpts holds the command-line flags for the bundle command.
type bundleOpts struct {
	output  string // output file; stdout when empty
	outDir  string // write each library file below this directory instead
	header  bool   // prefix each file with a "// <package>/<file>" comment
	refresh bool   // ignore cached orderings
}

// bundleCommand creates the bundle command.
func (c *CLI) bundleCommand() *cobra.Command {
	var opts bundleOpts

	cmd := &cobra.Command{
		Use:   "bundle [package.json]",
		Short: "Concatenate JSCAD library files in dependency order",
		Long: `Bundle resolves the dependencies of package.json (default: package.json in
the project directory, "-" for stdin) and writes the files of every JSCAD
library, dependencies first. Each library contributes the files listed in
its jscad.json, in declared order.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("header") {
				opts.header = c.cfg.Bundle.Header
			}
			if opts.output != "" && opts.outDir != "" {
				return fmt.Errorf("--output and --out-dir are mutually exclusive")
			}
			manifest, err := c.readManifest(cmd, args)
			if err != nil {
				return err
			}
			return c.runBundle(cmd.Context(), manifest, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().StringVar(&opts.outDir, "out-dir", "", "write library files below this directory")
	cmd.Flags().BoolVar(&opts.header, "header", false, "add a // <package>/<file> comment before each file")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "ignore cached orderings")

	return cmd
}

func (c *CLI) runBundle(ctx context.Context, manifest []byte, opts bundleOpts) error {
	runner, err := c.newRunner(ctx)
	if err != nil {
		return err
	}
	defer runner.Close()

	popts, err := c.pipelineOptions()
	if err != nil {
		return err
	}
	popts.Refresh = opts.refresh

	prog := newProgress(c.Logger)

	var buf bytes.Buffer
	var sink pipeline.Sink
	var dirSink *pipeline.DirSink
	switch {
	case opts.outDir != "":
		dirSink = pipeline.NewDirSink(opts.outDir)
		sink = dirSink
	case opts.output != "":
		sink = pipeline.NewWriterSink(&buf, opts.header)
	default:
		sink = pipeline.NewWriterSink(c.Out, opts.header)
	}

	res, err := runner.Bundle(ctx, manifest, sink, popts)
	if err != nil {
		return err
	}

	if opts.output != "" {
		if err := writeFile(opts.output, buf.Bytes()); err != nil {
			return err
		}
	}
	prog.done(fmt.Sprintf("Bundled %d files", res.Files))

	if len(res.Libraries) == 0 {
		printWarning("No JSCAD libraries among %d packages", len(res.Resolution.Order))
		return nil
	}
	printSuccess("Bundled %d files from %d libraries", res.Files, len(res.Libraries))
	printStats(len(res.Resolution.Order), len(res.Libraries), res.Resolution.Passes, res.CacheHit)
	switch {
	case dirSink != nil:
		for _, p := range dirSink.Written {
			printFile(p)
		}
	case opts.output != "":
		printFile(opts.output)
	}
	return nil
}

// writeFile writes data to path, creating parent directories.
func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0o644)
}
