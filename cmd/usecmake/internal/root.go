package internal

import (
	"github.com/qiniu/x/log"
	"github.com/spf13/cobra"
)

var (
	verbose    bool
	projectDir string
	configFile string
)

var rootCmd = &cobra.Command{
	Use:   "usecmake",
	Short: "usecmake publishes the variants of a CMake project",
	Long: `usecmake configures a CMake project once per build variant (build type,
target machine and, optionally, linkage) with the toolchain installed for
each target machine, and publishes the produced libraries and headers as
attribute-tagged outputs.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if verbose {
			log.SetOutputLevel(log.Ldebug)
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVarP(&projectDir, "dir", "C", ".", "Project directory")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Config file (default is usecmake.yaml or usecmake.hcl in the project directory)")
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		log.Fatal(err)
	}
}
