package commands

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/sqldoc-labs/sqldoc/internal/cli/output"
	"github.com/sqldoc-labs/sqldoc/internal/project"
)

// AssetsOptions holds options for the assets command.
type AssetsOptions struct {
	Format  string
	Orphans bool
}

// NewAssetsCommand creates the assets command.
func NewAssetsCommand() *cobra.Command {
	opts := &AssetsOptions{}

	cmd := &cobra.Command{
		Use:   "assets",
		Short: "Audit images and other asset files",
		Long: `Assets inventories every non-Markdown file under the docs tree and
cross-references it against image and link targets in the documents.

The audit shows each asset's size and the documents that reference it.
Assets nothing references are flagged as orphaned; they usually mean a
screenshot was replaced but the old file never deleted.`,
		Example: `  sqldoc assets                 # full audit table
  sqldoc assets --orphans       # only unreferenced assets
  sqldoc assets --format json   # machine-readable audit`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runAssets(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Format, "format", "f", "", "output format for this command (text, markdown, json)")
	cmd.Flags().BoolVar(&opts.Orphans, "orphans", false, "list only assets no document references")

	return cmd
}

func runAssets(cmd *cobra.Command, opts *AssetsOptions) error {
	cmdCtx := NewCommandContextWithoutStore(cmd)

	if opts.Format != "" {
		mode, err := output.ParseMode(opts.Format)
		if err != nil {
			return err
		}
		cmdCtx.Renderer = output.NewRenderer(os.Stdout, os.Stderr, mode)
	}

	return assetsOnce(cmd.Context(), cmdCtx, opts)
}

func assetsOnce(ctx context.Context, cmdCtx *CommandContext, opts *AssetsOptions) error {
	r := cmdCtx.Renderer

	p, err := cmdCtx.LoadProject(ctx)
	if err != nil {
		return err
	}

	infos := collectAssetInfo(p)
	if opts.Orphans {
		var orphans []output.AssetInfo
		for _, info := range infos {
			if info.Orphaned {
				orphans = append(orphans, info)
			}
		}
		infos = orphans
	}

	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(infos)
	}
	return renderAssetTable(r, infos, opts.Orphans)
}

// collectAssetInfo flattens the project's asset inventory into rows,
// sorted by path.
func collectAssetInfo(p *project.Project) []output.AssetInfo {
	infos := make([]output.AssetInfo, 0, len(p.Assets))
	for _, a := range p.Assets {
		info := output.AssetInfo{
			Path:       a.Path,
			Size:       a.Size,
			References: len(a.Refs),
			Orphaned:   len(a.Refs) == 0,
		}
		seen := make(map[string]bool)
		for _, ref := range a.Refs {
			if !seen[ref.DocPath] {
				seen[ref.DocPath] = true
				info.ReferencedBy = append(info.ReferencedBy, ref.DocPath)
			}
		}
		sort.Strings(info.ReferencedBy)
		infos = append(infos, info)
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Path < infos[j].Path })
	return infos
}

func renderAssetTable(r *output.Renderer, infos []output.AssetInfo, orphansOnly bool) error {
	if len(infos) == 0 {
		if orphansOnly {
			r.Success("No orphaned assets")
		} else {
			r.Muted("No assets found")
		}
		return nil
	}

	t := table.NewWriter()
	t.SetOutputMirror(r.Writer())
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Asset", "Size", "Refs", "Referenced by"})

	var orphaned int
	var totalSize int64
	for _, info := range infos {
		refCol := strings.Join(info.ReferencedBy, ", ")
		if info.Orphaned {
			orphaned++
			refCol = "(orphaned)"
		}
		t.AppendRow(table.Row{info.Path, formatSize(info.Size), info.References, refCol})
		totalSize += info.Size
	}

	if r.EffectiveMode() == output.ModeMarkdown {
		t.RenderMarkdown()
	} else {
		t.Render()
	}

	summary := fmt.Sprintf("%d %s, %s total",
		len(infos), output.Pluralize(len(infos), "asset", "assets"), formatSize(totalSize))
	if orphaned > 0 {
		r.Warning(fmt.Sprintf("%s, %d orphaned", summary, orphaned))
	} else {
		r.Println(summary)
	}
	return nil
}

// formatSize renders a byte count the way ls -h does.
func formatSize(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(n)/float64(div), "KMGTPE"[exp])
}
