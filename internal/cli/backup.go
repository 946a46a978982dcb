package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/anonto42/vaxtop/backend/internal/models"
	"github.com/anonto42/vaxtop/backend/internal/repositories"
	"github.com/anonto42/vaxtop/backend/pkg/kvstore"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// NewExportCmd creates the "export" subcommand.
func NewExportCmd(env *Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write a backup of the stored user, products and settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			format, _ := cmd.Flags().GetString("format")
			outPath, _ := cmd.Flags().GetString("output")

			return env.withStore(cmd.Context(), func(store kvstore.Store) error {
				backup, err := repositories.NewDataRepository(store, env.repoOptions()...).ExportData(cmd.Context())
				if err != nil {
					return fmt.Errorf("exporting data: %w", err)
				}
				data, err := encodeBackup(backup, format)
				if err != nil {
					return err
				}
				if outPath == "" {
					_, err = cmd.OutOrStdout().Write(data)
					return err
				}
				if err := os.WriteFile(outPath, data, 0600); err != nil {
					return fmt.Errorf("writing backup: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "backup written to %s\n", outPath)
				return nil
			})
		},
	}

	cmd.Flags().String("format", "json", "Output format: json | yaml")
	cmd.Flags().StringP("output", "o", "", "Write the backup to a file instead of stdout")
	return cmd
}

// NewImportCmd creates the "import" subcommand.
func NewImportCmd(env *Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Restore a backup produced by export (use - for stdin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, _ := cmd.Flags().GetString("format")

			data, err := readInput(cmd.InOrStdin(), args[0])
			if err != nil {
				return err
			}
			if format == "" {
				format = formatFromPath(args[0])
			}
			backup, err := decodeBackup(data, format)
			if err != nil {
				return err
			}

			return env.withStore(cmd.Context(), func(store kvstore.Store) error {
				if err := repositories.NewDataRepository(store, env.repoOptions()...).ImportData(cmd.Context(), backup); err != nil {
					return fmt.Errorf("importing data: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), "backup imported")
				return nil
			})
		},
	}

	cmd.Flags().String("format", "", "Input format: json | yaml (default: from file extension)")
	return cmd
}

// NewClearCmd creates the "clear" subcommand.
func NewClearCmd(env *Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove the stored user, products, accounts and settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if yes, _ := cmd.Flags().GetBool("yes"); !yes {
				return errors.New("refusing to clear data without --yes")
			}
			return env.withStore(cmd.Context(), func(store kvstore.Store) error {
				if err := repositories.NewDataRepository(store, env.repoOptions()...).ClearAll(cmd.Context()); err != nil {
					return fmt.Errorf("clearing data: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), "data cleared")
				return nil
			})
		},
	}

	cmd.Flags().Bool("yes", false, "Confirm removal")
	return cmd
}

func encodeBackup(backup *models.Backup, format string) ([]byte, error) {
	switch format {
	case "json":
		data, err := json.MarshalIndent(backup, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(data, '\n'), nil
	case "yaml", "yml":
		return yaml.Marshal(backup)
	}
	return nil, fmt.Errorf("unknown format %q", format)
}

func decodeBackup(data []byte, format string) (*models.Backup, error) {
	var backup models.Backup
	var err error
	switch format {
	case "json":
		err = json.Unmarshal(data, &backup)
	case "yaml", "yml":
		err = yaml.Unmarshal(data, &backup)
	default:
		return nil, fmt.Errorf("unknown format %q", format)
	}
	if err != nil {
		return nil, fmt.Errorf("parsing backup: %w", err)
	}
	return &backup, nil
}

func formatFromPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return "yaml"
	}
	return "json"
}

func readInput(stdin io.Reader, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(stdin)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("file not found: %s", path)
		}
		return nil, fmt.Errorf("reading file: %w", err)
	}
	return data, nil
}
