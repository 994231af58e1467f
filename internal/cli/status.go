package cli

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/matzehuels/modmirror/pkg/config"
	"github.com/matzehuels/modmirror/pkg/store"
)

// statusRow is one repository's mirrored state.
type statusRow struct {
	Source   string
	Dir      string
	Version  string
	Type     string
	Images   int
	Size     int64
	Modified time.Time
	Managed  bool   // listed in the repository configuration
	Err      string // record could not be read
}

// statusCommand creates the status command.
func (c *CLI) statusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the mirrored version of each repository",
		Long: `Status reads the mirror root without touching the network. Directories that
are not in the repository configuration are listed as unmanaged.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			repos, _, err := c.loadRepos()
			if err != nil {
				return err
			}
			rows, err := collectStatus(c.newStore(), repos)
			if err != nil {
				return err
			}
			if len(rows) == 0 {
				printInfo("Nothing mirrored under %s", c.Settings.Root)
				printNextStep("Mirror the configured repositories", appName+" sync")
				return nil
			}
			printKeyValue("Root", c.Settings.Root)
			renderStatus(cmd.OutOrStdout(), rows)
			return nil
		},
	}
}

// collectStatus builds a row per configured repository, then one per
// unmanaged directory under the root.
func collectStatus(st *store.Store, repos config.RepoList) ([]statusRow, error) {
	names, err := st.Names()
	if err != nil {
		return nil, err
	}

	var rows []statusRow
	seen := make(map[string]bool, repos.Len())
	for _, spec := range repos.All() {
		seen[spec.Name()] = true
		rows = append(rows, statusFor(st, spec.SourceID, spec.Name(), true))
	}
	for _, name := range names {
		if !seen[name] {
			rows = append(rows, statusFor(st, "", name, false))
		}
	}
	return rows, nil
}

func statusFor(st *store.Store, source, dir string, managed bool) statusRow {
	row := statusRow{Source: source, Dir: dir, Managed: managed}
	rec, err := st.Load(dir)
	if err != nil {
		row.Err = err.Error()
		return row
	}
	row.Version = rec.Version()
	row.Type = rec.String(store.FieldType)
	row.Images = rec.Images()
	if fi, err := os.Stat(st.ArtifactPath(dir)); err == nil {
		row.Size = fi.Size()
		row.Modified = fi.ModTime()
	}
	return row
}

// renderStatus prints rows as a table.
func renderStatus(w io.Writer, rows []statusRow) {
	data := make([][]string, 0, len(rows))
	for _, r := range rows {
		source := r.Source
		if !r.Managed {
			source = "(unmanaged)"
		}
		version, size, updated := orDash(r.Version), "—", "—"
		if r.Err != "" {
			version = "unreadable"
		}
		if !r.Modified.IsZero() {
			size = humanize.Bytes(uint64(r.Size))
			updated = humanize.Time(r.Modified)
		}
		data = append(data, []string{source, r.Dir, version, orDash(r.Type), strconv.Itoa(r.Images), size, updated})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	cell := lipgloss.NewStyle().Padding(0, 1)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Repository", "Directory", "Version", "Type", "Images", "Size", "Updated").
		Rows(data...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle.Padding(0, 1)
			}
			r := rows[row]
			switch {
			case r.Err != "":
				return cell.Foreground(colorRed)
			case !r.Managed:
				return cell.Foreground(colorDim)
			case col == 2 && r.Version != "":
				return cell.Foreground(colorCyan)
			}
			return cell
		})

	fmt.Fprintln(w, t.Render())
}
