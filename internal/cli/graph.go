package cli

import (
	"bytes"
	"context"
	"fmt"

	"github.com/spf13/cobra"

	graphio "github.com/matzehuels/jscadpack/pkg/io"
	"github.com/matzehuels/jscadpack/pkg/render/nodelink"
)

const (
	formatDOT  = "dot"
	formatSVG  = "svg"
	formatJSON = "json"
)

// graphOpts holds the command-line flags for the graph command.
type graphOpts struct {
	format   string // dot, svg or json
	output   string // output file; stdout when empty
	detailed bool   // add dependency counts to node labels
}

// graphCommand creates the graph command.
func (c *CLI) graphCommand() *cobra.Command {
	opts := graphOpts{format: formatDOT}

	cmd := &cobra.Command{
		Use:   "graph [package.json]",
		Short: "Print the resolved dependency graph as DOT, SVG or JSON",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch opts.format {
			case formatDOT, formatSVG, formatJSON:
			default:
				return fmt.Errorf("invalid format: %s (must be 'dot', 'svg' or 'json')", opts.format)
			}
			manifest, err := c.readManifest(cmd, args)
			if err != nil {
				return err
			}
			return c.runGraph(cmd.Context(), manifest, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.format, "format", "f", opts.format, "output format: dot (default), svg, json")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "show dependency counts in node labels")

	return cmd
}

func (c *CLI) runGraph(ctx context.Context, manifest []byte, opts graphOpts) error {
	runner, err := c.newRunner(ctx)
	if err != nil {
		return err
	}
	defer runner.Close()

	popts, err := c.pipelineOptions()
	if err != nil {
		return err
	}
	res, err := runner.Order(ctx, manifest, popts)
	if err != nil {
		return err
	}

	var data []byte
	if opts.format == formatJSON {
		var buf bytes.Buffer
		if err := graphio.WriteJSON(&buf, res.Resolution.Graph, res.Resolution.Order, res.Libraries); err != nil {
			return err
		}
		data = buf.Bytes()
	} else {
		dot := nodelink.ToDOT(res.Resolution.Graph, nodelink.Options{
			Order:     res.Resolution.Order,
			Libraries: res.Libraries,
			Detailed:  opts.detailed,
		})
		data = []byte(dot)
		if opts.format == formatSVG {
			prog := newProgress(c.Logger)
			if data, err = nodelink.RenderSVG(ctx, dot); err != nil {
				return err
			}
			prog.done("Rendered SVG")
		}
	}

	if opts.output == "" {
		_, err := c.Out.Write(data)
		return err
	}
	if err := writeFile(opts.output, data); err != nil {
		return err
	}
	printSuccess("Wrote %s graph", opts.format)
	printFile(opts.output)
	return nil
}
