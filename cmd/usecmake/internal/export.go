package internal

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/goplus/usecmake/internal/archive"
	"github.com/goplus/usecmake/internal/env"
	"github.com/spf13/cobra"
)

var exportOutput string

var exportCmd = &cobra.Command{
	Use:   "export <variant>",
	Short: "Install a variant and archive its install tree",
	Long: `Export installs a generated variant and writes its install tree to the
output path: a .tar.xz or .zip archive, or a directory. Without -o the
archive is written to the usecmake cache directory.`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Output path (directory, .tar.xz or .zip file)")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	cfg, v, err := loadVariant(args[0])
	if err != nil {
		return err
	}

	dest := exportOutput
	if dest == "" {
		dir, err := env.WorkDir()
		if err != nil {
			return err
		}
		dest = filepath.Join(dir, filepath.Base(cfg.ProjectDir())+"-"+filepath.Base(v.InstallDir)+".tar.xz")
	}
	if dest, err = filepath.Abs(dest); err != nil {
		return fmt.Errorf("failed to resolve output path: %w", err)
	}

	if err := buildVariant(context.Background(), cfg, v, true); err != nil {
		return err
	}
	if err := archive.Write(v.InstallDir, dest); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), dest)
	return nil
}
