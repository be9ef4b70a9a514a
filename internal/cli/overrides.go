package cli

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	apperr "github.com/matzehuels/alluvial/pkg/errors"
	"github.com/matzehuels/alluvial/pkg/pipeline"
	"github.com/matzehuels/alluvial/pkg/render/alluvial"
	"github.com/matzehuels/alluvial/pkg/render/alluvial/override"
)

// diagramFlags select which diagram an overrides subcommand addresses.
type diagramFlags struct {
	key   string
	title string
	rules string
}

func (f *diagramFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.key, "key", "", "diagram key (default: derived from title and node IDs)")
	cmd.Flags().StringVar(&f.title, "title", "", "diagram title used for the derived key")
	cmd.Flags().StringVar(&f.rules, "rules", "", "TOML layout rules file")
}

// overridesCommand creates the overrides management command.
func (c *CLI) overridesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "overrides",
		Aliases: []string{"ov"},
		Short:   "Show, reset or edit a diagram's persisted overrides",
		Long: `Show, reset or edit the persisted edits of a diagram.

Every subcommand takes the flow document so the diagram key can be derived
from its title and node IDs, exactly as 'render' does. Negative offsets must
follow '--' so they are not read as flags.`,
	}

	cmd.AddCommand(c.overridesShowCommand())
	cmd.AddCommand(c.overridesResetCommand())
	cmd.AddCommand(c.overridesNudgeCommand())
	cmd.AddCommand(c.overridesMoveLabelCommand())
	cmd.AddCommand(c.overridesResizeCommand())
	cmd.AddCommand(c.overridesToggleCommand())

	return cmd
}

// openDiagram lays out input with its persisted overrides. The caller must
// close the returned runner so queued writes are flushed.
func (c *CLI) openDiagram(ctx context.Context, input string, f *diagramFlags) (*pipeline.Runner, *pipeline.Result, error) {
	in, err := loadInput(input)
	if err != nil {
		return nil, nil, err
	}
	rules, err := loadRules(f.rules)
	if err != nil {
		return nil, nil, err
	}
	runner, err := c.newRunner(ctx)
	if err != nil {
		return nil, nil, err
	}
	result, err := runner.Layout(ctx, in, pipeline.Options{
		Title:      f.title,
		DiagramKey: f.key,
		Rules:      rules,
	})
	if err != nil {
		runner.Close()
		return nil, nil, err
	}
	return runner, result, nil
}

// editDiagram runs one edit through an editor bound to the diagram's
// persisted overrides and waits until the commit is written.
func (c *CLI) editDiagram(ctx context.Context, input string, f *diagramFlags, edit func(*override.Editor, *alluvial.Diagram) error) (err error) {
	runner, result, err := c.openDiagram(ctx, input, f)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := runner.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("persist overrides: %w", cerr)
		}
	}()

	committer := runner.Overrides.Committer(ctx, result.DiagramKey)
	editor := override.NewEditor(result.Overrides, committer, override.WithLogger(loggerFromContext(ctx)))
	if err := edit(editor, result.Diagram); err != nil {
		editor.Cancel()
		return err
	}
	printSuccess("Updated overrides for %s", result.DiagramKey)
	return nil
}

// overridesShowCommand creates the "overrides show" subcommand.
func (c *CLI) overridesShowCommand() *cobra.Command {
	var f diagramFlags

	cmd := &cobra.Command{
		Use:   "show [file]",
		Short: "List a diagram's persisted overrides",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			runner, result, err := c.openDiagram(cmd.Context(), args[0], &f)
			if err != nil {
				return err
			}
			defer runner.Close()

			printKeyValue("Key", result.DiagramKey)
			rows := overrideRows(result.Overrides, result.Diagram.Layers)
			if len(rows) == 0 {
				printInfo("No overrides")
				return nil
			}
			fmt.Println(overridesTable(rows))
			return nil
		},
	}
	f.register(cmd)

	return cmd
}

// overridesResetCommand creates the "overrides reset" subcommand.
func (c *CLI) overridesResetCommand() *cobra.Command {
	var (
		f   diagramFlags
		yes bool
	)

	cmd := &cobra.Command{
		Use:   "reset [file]",
		Short: "Delete every persisted override of a diagram",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			runner, result, err := c.openDiagram(ctx, args[0], &f)
			if err != nil {
				return err
			}
			defer runner.Close()

			if result.Overrides.IsZero() {
				printInfo("No overrides for %s", result.DiagramKey)
				return nil
			}
			if !yes {
				ok, err := confirm(ctx, fmt.Sprintf("Reset all overrides of %s?", result.DiagramKey))
				if err != nil {
					return err
				}
				if !ok {
					printInfo("Aborted")
					return nil
				}
			}
			if err := runner.Overrides.Reset(ctx, result.DiagramKey); err != nil {
				return apperr.Wrap(apperr.ErrCodeStoreWrite, err, "reset overrides")
			}
			printSuccess("Reset overrides for %s", result.DiagramKey)
			return nil
		},
	}
	f.register(cmd)
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip confirmation")

	return cmd
}

// overridesNudgeCommand creates the "overrides nudge" subcommand.
func (c *CLI) overridesNudgeCommand() *cobra.Command {
	var f diagramFlags

	cmd := &cobra.Command{
		Use:     "nudge [file] [node] [dx] [dy]",
		Short:   "Move a node by an offset",
		Example: `  alluvial overrides nudge flows.json tech-ai 0 -- -12`,
		Args:    cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			dx, dy, err := parseDelta(args[2], args[3])
			if err != nil {
				return err
			}
			return c.editDiagram(cmd.Context(), args[0], &f, func(e *override.Editor, d *alluvial.Diagram) error {
				if _, ok := d.Node(args[1]); !ok {
					return apperr.New(apperr.ErrCodeNotFound, "node %q not in diagram", args[1])
				}
				return drag(e, override.NodeTarget(args[1]), dx, dy)
			})
		},
	}
	f.register(cmd)

	return cmd
}

// overridesMoveLabelCommand creates the "overrides move-label" subcommand.
func (c *CLI) overridesMoveLabelCommand() *cobra.Command {
	var f diagramFlags

	cmd := &cobra.Command{
		Use:   "move-label [file] [layer] [dx] [dy]",
		Short: "Move a layer label by an offset",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			dx, dy, err := parseDelta(args[2], args[3])
			if err != nil {
				return err
			}
			return c.editDiagram(cmd.Context(), args[0], &f, func(e *override.Editor, d *alluvial.Diagram) error {
				layer, err := parseLayer(args[1], len(d.Layers))
				if err != nil {
					return err
				}
				return drag(e, override.LabelTarget(layer), dx, dy)
			})
		},
	}
	f.register(cmd)

	return cmd
}

// overridesResizeCommand creates the "overrides resize" subcommand.
func (c *CLI) overridesResizeCommand() *cobra.Command {
	var f diagramFlags

	cmd := &cobra.Command{
		Use:   "resize [file] [node] [width] [height]",
		Short: "Set a node box's size",
		Long: `Set a node box's size. The box stays centered on its band; sizes below
the minimum box size are clamped.`,
		Args: cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			w, h, err := parseDelta(args[2], args[3])
			if err != nil {
				return err
			}
			return c.editDiagram(cmd.Context(), args[0], &f, func(e *override.Editor, d *alluvial.Diagram) error {
				n, ok := d.Node(args[1])
				if !ok {
					return apperr.New(apperr.ErrCodeNotFound, "node %q not in diagram", args[1])
				}
				cur := override.Size{Width: n.Box.Width, Height: n.Box.Height}
				if err := e.BeginResize(n.ID, cur); err != nil {
					return err
				}
				if err := e.Move((w-cur.Width)/2, (h-cur.Height)/2); err != nil {
					return err
				}
				return e.End()
			})
		},
	}
	f.register(cmd)

	return cmd
}

// overridesToggleCommand creates the "overrides toggle" subcommand.
func (c *CLI) overridesToggleCommand() *cobra.Command {
	var f diagramFlags

	cmd := &cobra.Command{
		Use:       "toggle [file] [border|box|text] [layer|all]",
		Short:     "Flip a layer's border, box or text visibility",
		Args:      cobra.ExactArgs(3),
		ValidArgs: []string{"border", "box", "text"},
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := override.ParseVisibility(args[1])
			if err != nil {
				return apperr.Wrap(apperr.ErrCodeInvalidInput, err, "toggle")
			}
			return c.editDiagram(cmd.Context(), args[0], &f, func(e *override.Editor, d *alluvial.Diagram) error {
				if args[2] == "all" {
					e.ToggleAll(v, len(d.Layers))
					return nil
				}
				layer, err := parseLayer(args[2], len(d.Layers))
				if err != nil {
					return err
				}
				e.Toggle(v, layer)
				return nil
			})
		},
	}
	f.register(cmd)

	return cmd
}

// drag performs a complete drag gesture on t.
func drag(e *override.Editor, t override.Target, dx, dy float64) error {
	if err := e.BeginDrag(t); err != nil {
		return err
	}
	if err := e.Move(dx, dy); err != nil {
		return err
	}
	return e.End()
}

// parseDelta parses two numeric arguments.
func parseDelta(a, b string) (float64, float64, error) {
	x, err := strconv.ParseFloat(a, 64)
	if err != nil {
		return 0, 0, apperr.New(apperr.ErrCodeInvalidInput, "invalid number %q", a)
	}
	y, err := strconv.ParseFloat(b, 64)
	if err != nil {
		return 0, 0, apperr.New(apperr.ErrCodeInvalidInput, "invalid number %q", b)
	}
	return x, y, nil
}

// parseLayer parses a layer index and checks it against the layer count.
func parseLayer(s string, n int) (int, error) {
	layer, err := strconv.Atoi(s)
	if err != nil || layer < 0 || layer >= n {
		return 0, apperr.New(apperr.ErrCodeInvalidInput, "invalid layer %q (diagram has %d layers)", s, n)
	}
	return layer, nil
}

// overrideRows flattens a set into sorted table rows of record, target and
// value.
func overrideRows(s override.Set, layers []alluvial.Layer) [][]string {
	layerName := func(i int) string {
		if i >= 0 && i < len(layers) {
			return fmt.Sprintf("%d %s", i, layers[i].Name)
		}
		return strconv.Itoa(i)
	}
	offset := func(o override.Offset) string {
		return fmt.Sprintf("dx=%g dy=%g", o.DX, o.DY)
	}
	shown := func(v bool) string {
		if v {
			return "shown"
		}
		return "hidden"
	}

	var rows [][]string
	for _, id := range slices.Sorted(maps.Keys(s.Offsets)) {
		rows = append(rows, []string{string(override.RecordOffsets), id, offset(s.Offsets[id])})
	}
	for _, id := range slices.Sorted(maps.Keys(s.Sizes)) {
		sz := s.Sizes[id]
		rows = append(rows, []string{string(override.RecordSizes), id, fmt.Sprintf("%gx%g", sz.Width, sz.Height)})
	}
	for _, vis := range []struct {
		rec override.Record
		m   map[int]bool
	}{
		{override.RecordBorders, s.Borders},
		{override.RecordBoxes, s.Boxes},
		{override.RecordTexts, s.Texts},
	} {
		for _, l := range slices.Sorted(maps.Keys(vis.m)) {
			rows = append(rows, []string{string(vis.rec), layerName(l), shown(vis.m[l])})
		}
	}
	for _, l := range slices.Sorted(maps.Keys(s.Labels)) {
		rows = append(rows, []string{string(override.RecordLabels), layerName(l), offset(s.Labels[l])})
	}
	return rows
}

// overridesTable renders override rows as a bordered table.
func overridesTable(rows [][]string) string {
	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	cellStyle := lipgloss.NewStyle().Padding(0, 1)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Record", "Target", "Value").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 { // header
				return headerStyle.Padding(0, 1)
			}
			if col == 2 {
				return cellStyle.Foreground(colorCyan)
			}
			return cellStyle.Foreground(colorWhite)
		})
	return t.Render()
}
