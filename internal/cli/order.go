package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/jscadpack/pkg/deps"
	graphio "github.com/matzehuels/jscadpack/pkg/io"
	"github.com/matzehuels/jscadpack/pkg/pipeline"
)

// orderOpts holds the command-line flags for the order command.
type orderOpts struct {
	table   bool   // render a table instead of one name per line
	refresh bool   // ignore cached orderings
	graph   string // sort a saved JSON graph instead of resolving node_modules
}

// orderCommand creates the order command.
func (c *CLI) orderCommand() *cobra.Command {
	var opts orderOpts

	cmd := &cobra.Command{
		Use:   "order [package.json]",
		Short: "Print packages in dependency order",
		Long: `Order resolves the dependencies of package.json and prints every installed
package so that each one follows all of its dependencies.

With --graph, a graph saved by "graph --format json" is sorted instead and
no node_modules tree is needed.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.graph != "" {
				return c.runOrderGraph(opts)
			}
			manifest, err := c.readManifest(cmd, args)
			if err != nil {
				return err
			}
			return c.runOrder(cmd.Context(), manifest, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.table, "table", false, "render a table with dependencies and library flags")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "ignore cached orderings")
	cmd.Flags().StringVar(&opts.graph, "graph", "", "sort a JSON graph file instead of resolving package.json")

	return cmd
}

func (c *CLI) runOrder(ctx context.Context, manifest []byte, opts orderOpts) error {
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

	res, err := runner.Order(ctx, manifest, popts)
	if err != nil {
		return err
	}

	if opts.table {
		fmt.Fprintln(c.Out, orderTable(res))
	} else {
		for _, name := range res.Resolution.Order {
			fmt.Fprintln(c.Out, name)
		}
	}

	printStats(len(res.Resolution.Order), len(res.Libraries), res.Resolution.Passes, res.CacheHit)
	if len(res.Libraries) > 0 {
		printNextStep("Bundle the libraries", appName+" bundle -o bundle.jscad")
	}
	return nil
}

// runOrderGraph sorts a saved graph with the configured pass limit.
func (c *CLI) runOrderGraph(opts orderOpts) error {
	doc, err := graphio.ImportJSON(opts.graph)
	if err != nil {
		return err
	}
	order, err := deps.Sort(doc.Graph, deps.Options{
		MaxPasses: c.cfg.MaxPasses,
		Logger:    c.Logger.Debugf,
	})
	if err != nil {
		return err
	}

	res := &pipeline.Result{
		Resolution: &deps.Result{Graph: doc.Graph, Order: order},
		Libraries:  doc.Libraries,
	}
	if opts.table {
		fmt.Fprintln(c.Out, orderTable(res))
	} else {
		for _, name := range order {
			fmt.Fprintln(c.Out, name)
		}
	}
	printStats(len(order), len(doc.Libraries), 0, false)
	return nil
}

// orderTable renders the ordering with each package's direct dependencies
// and whether it is a JSCAD library.
func orderTable(res *pipeline.Result) string {
	libs := make(map[string]bool, len(res.Libraries))
	for _, l := range res.Libraries {
		libs[l] = true
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleLight)
	tw.AppendHeader(table.Row{"#", "Package", "Dependencies", "JSCAD"})
	for i, name := range res.Resolution.Order {
		jscad := ""
		if libs[name] {
			jscad = "yes"
		}
		tw.AppendRow(table.Row{i + 1, name, strings.Join(res.Resolution.Graph.DependenciesOf(name), ", "), jscad})
	}
	tw.AppendFooter(table.Row{"", fmt.Sprintf("%d packages", len(res.Resolution.Order)), "", fmt.Sprintf("%d", len(res.Libraries))})
	return tw.Render()
}
