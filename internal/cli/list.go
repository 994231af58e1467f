package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/modmirror/pkg/store"
)

// listCommand creates the list command.
func (c *CLI) listCommand() *cobra.Command {
	var refresh bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print the directory listing manifest",
		Long: `List prints the names in the mirror root's listing manifest, one per line.
With --refresh the manifest is first rebuilt from the directories on disk.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st := c.newStore()

			var names []string
			var err error
			if refresh {
				names, err = st.WriteListing()
			} else {
				names, err = st.ReadListing()
			}
			if err != nil {
				return err
			}

			if refresh {
				printSuccess("Rebuilt listing with %d directories", len(names))
				printFile(filepath.Join(st.Root(), store.ListingFile))
				return nil
			}
			if len(names) == 0 {
				printInfo("Listing is empty")
				printNextStep("Rebuild it from disk", appName+" list --refresh")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), strings.Join(names, "\n"))
			return nil
		},
	}

	cmd.Flags().BoolVar(&refresh, "refresh", false, "rebuild the manifest from the directories on disk")

	return cmd
}
