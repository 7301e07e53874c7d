package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var (
	deleteDBPath string
)

var (
	deletePromptInput  io.Reader = os.Stdin
	deletePromptOutput io.Writer = os.Stdout
)

var deleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Delete the complete SQLite database file",
	Long: `Destructive database cleanup command.

This command deletes the complete SQLite database file including all stored
products and supplier offers. Use "offers delete" to remove a single offer.
Before deletion, an interactive security prompt requires typing exactly "Y".`,
	Example: `
  # Delete the configured SQLite file (requires interactive confirmation)
  supplynorm delete

  # Delete a specific database file
  supplynorm delete --db ./supplynorm.db
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		dbPath, err := resolveDeleteTarget(deleteDBPath)
		if err != nil {
			return err
		}

		confirmed, err := confirmDeletePrompt(deletePromptInput, deletePromptOutput, dbPath)
		if err != nil {
			return err
		}
		if !confirmed {
			return fmt.Errorf("delete aborted: confirmation was not 'Y'")
		}

		if err := removeDatabaseFile(dbPath); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted database file: %s\n", dbPath)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(deleteCmd)

	deleteCmd.Flags().StringVar(&deleteDBPath, "db", "", "Path to local SQLite database (default: database.path from config)")
}

// resolveDeleteTarget picks the database file to delete: --db, then
// database.path from config.
func resolveDeleteTarget(flagValue string) (string, error) {
	dbPath := strings.TrimSpace(resolveDBPath(flagValue))
	if dbPath == "" {
		return "", fmt.Errorf("no database path configured; pass --db")
	}
	return dbPath, nil
}

func confirmDeletePrompt(input io.Reader, output io.Writer, path string) (bool, error) {
	if input == nil {
		return false, fmt.Errorf("delete confirmation input is not available")
	}

	if output == nil {
		output = io.Discard
	}

	if _, err := fmt.Fprintf(output, "Delete database file %q? Type Y to confirm: ", path); err != nil {
		return false, fmt.Errorf("write delete confirmation prompt: %w", err)
	}

	line, err := bufio.NewReader(input).ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) {
			line = strings.TrimSpace(line)
			return line == "Y", nil
		}
		return false, fmt.Errorf("read delete confirmation: %w", err)
	}
	return strings.TrimSpace(line) == "Y", nil
}

func removeDatabaseFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("database file not found: %s", path)
		}
		return fmt.Errorf("stat database file: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("database path is a directory: %s", path)
	}
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("delete database file: %w", err)
	}
	return nil
}
