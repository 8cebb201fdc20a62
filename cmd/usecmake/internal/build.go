package internal

import (
	"context"
	"fmt"

	"github.com/goplus/usecmake/internal/config"
	"github.com/goplus/usecmake/internal/install"
	"github.com/goplus/usecmake/internal/lock"
	"github.com/goplus/usecmake/internal/proc"
	"github.com/goplus/usecmake/internal/publish"
	"github.com/goplus/usecmake/variant"
	"github.com/qiniu/x/log"
	"github.com/spf13/cobra"
)

var buildCmd = &cobra.Command{
	Use:   "build <variant>",
	Short: "Build a generated variant",
	Long:  `Build runs "cmake --build" in the build directory of a generated variant.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runBuild,
}

var installCmd = &cobra.Command{
	Use:   "install <variant>",
	Short: "Build and install a generated variant",
	Long: `Install builds a generated variant and runs "cmake --install" into its
install prefix, whose include directory is the variant's api output.`,
	Args: cobra.ExactArgs(1),
	RunE: runInstall,
}

func init() {
	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(installCmd)
}

func loadVariant(name string) (*config.Config, *variant.Variant, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	m, err := loadManifest(cfg)
	if err != nil {
		return nil, nil, err
	}
	p, err := m.Variant(name)
	if err != nil {
		return nil, nil, err
	}
	return cfg, p.Variant, nil
}

func runBuild(cmd *cobra.Command, args []string) error {
	cfg, v, err := loadVariant(args[0])
	if err != nil {
		return err
	}
	return buildVariant(context.Background(), cfg, v, false)
}

func runInstall(cmd *cobra.Command, args []string) error {
	cfg, v, err := loadVariant(args[0])
	if err != nil {
		return err
	}
	if err := buildVariant(context.Background(), cfg, v, true); err != nil {
		return err
	}
	headers, err := install.Layout{Root: v.InstallDir}.Files(install.IncludeDir)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s: %d headers installed to %s\n", v.Name, len(headers), v.InstallDir)
	return nil
}

// buildVariant runs the build step of v and, when doInstall is set, its
// install step.
func buildVariant(ctx context.Context, cfg *config.Config, v *variant.Variant, doInstall bool) error {
	unlock, err := lock.Dir(v.BuildDir).Lock()
	if err != nil {
		return err
	}
	defer unlock()

	c := newCMake(cfg, proc.Default)
	log.Infof("Running %s", publish.BuildStep(v))
	if err := c.Build(ctx, v.BuildDir, v.ConfiguredAs); err != nil {
		return fmt.Errorf("%s: %w", publish.BuildStep(v), err)
	}
	if !doInstall {
		return nil
	}
	log.Infof("Running %s", publish.InstallStep(v))
	if err := c.Install(ctx, v.BuildDir, v.InstallDir, "--config", v.ConfiguredAs); err != nil {
		return fmt.Errorf("%s: %w", publish.InstallStep(v), err)
	}
	return nil
}
