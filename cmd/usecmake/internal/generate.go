package internal

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/goplus/usecmake/internal/manifest"
	"github.com/goplus/usecmake/internal/proc"
	"github.com/qiniu/x/log"
	"github.com/spf13/cobra"
)

var generateJobs int

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Configure every variant and record its outputs",
	Long: `Generate configures the CMake project once per variant, reads the targets
of each configuration through the CMake file API and writes the published
outputs to the manifest in the build directory.`,
	Args: cobra.NoArgs,
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().IntVarP(&generateJobs, "jobs", "j", 0, "Variants configured at once (overrides the config)")
	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	g, err := newGenerator(cfg, proc.Default)
	if err != nil {
		return err
	}
	if generateJobs > 0 {
		g.Jobs = generateJobs
	}

	result, err := g.Generate(context.Background())
	if err != nil {
		return err
	}
	project := cfg.Project
	if project == "" {
		project = filepath.Base(cfg.ProjectDir())
	}
	path := manifest.Path(cfg.BuildRoot())
	if err := manifest.Save(path, manifest.New(project, result)); err != nil {
		return err
	}
	log.Infof("Wrote %s", path)

	out := cmd.OutOrStdout()
	for _, p := range result.Variants {
		fmt.Fprintf(out, "%s\t%d outputs\n", p.Variant.Name, len(p.Outputs))
	}
	for _, tm := range result.Skipped {
		fmt.Fprintf(out, "skipped %s: no toolchain\n", tm)
	}
	if n := len(result.Dropped); n > 0 {
		fmt.Fprintf(out, "%d artifacts ignored\n", n)
	}
	return nil
}
