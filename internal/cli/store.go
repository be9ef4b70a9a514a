package cli

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
)

// storeCommand creates the override store management command.
func (c *CLI) storeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "store",
		Short: "Inspect the override store",
	}

	cmd.AddCommand(c.storePathCommand())
	cmd.AddCommand(c.storeClearCommand())

	return cmd
}

// storePathCommand creates the "store path" subcommand.
func (c *CLI) storePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the override store URL",
		RunE: func(cmd *cobra.Command, args []string) error {
			u, err := c.resolveStoreURL()
			if err != nil {
				return err
			}
			fmt.Println(u)
			return nil
		},
	}
}

// storeClearCommand creates the "store clear" subcommand. Only local file
// stores can be cleared wholesale; other backends are reset per diagram
// with 'overrides reset'.
func (c *CLI) storeClearCommand() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every persisted override in a file store",
		RunE: func(cmd *cobra.Command, args []string) error {
			u, err := c.resolveStoreURL()
			if err != nil {
				return err
			}
			dir, ok := fileStoreDir(u)
			if !ok {
				return fmt.Errorf("store %s cannot be cleared wholesale; use 'overrides reset'", u)
			}

			if _, err := os.Stat(dir); os.IsNotExist(err) {
				printInfo("Store is empty")
				return nil
			}

			if !yes {
				confirmed, err := confirm(cmd.Context(), fmt.Sprintf("Delete all overrides in %s?", dir))
				if err != nil {
					return err
				}
				if !confirmed {
					printInfo("Aborted")
					return nil
				}
			}

			count, err := clearDir(dir)
			if err != nil {
				return err
			}
			printSuccess("Cleared %d override records", count)
			printDetail("Directory: %s", dir)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip confirmation")

	return cmd
}

// fileStoreDir returns the directory of a file:// store URL.
func fileStoreDir(raw string) (string, bool) {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme != "file" {
		return "", false
	}
	if u.Opaque != "" {
		return u.Opaque, true
	}
	return filepath.FromSlash(u.Host + u.Path), true
}

// clearDir removes every entry file below dir and prunes empty
// subdirectories.
func clearDir(dir string) (int, error) {
	count := 0
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil // Skip errors, continue walking
		}
		if path == dir || info.IsDir() || !strings.HasSuffix(path, ".json") {
			return nil
		}
		if err := os.Remove(path); err == nil {
			count++
		}
		return nil
	})
	if err != nil {
		return count, err
	}

	// Clean up empty subdirectories
	_ = filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil || path == dir {
			return nil
		}
		if info.IsDir() {
			os.Remove(path)
		}
		return nil
	})
	return count, nil
}
