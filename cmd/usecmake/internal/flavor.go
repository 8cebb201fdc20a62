package internal

import (
	"context"
	"fmt"

	"github.com/goplus/usecmake/internal/env"
	"github.com/goplus/usecmake/internal/makeflavor"
	"github.com/goplus/usecmake/internal/proc"
	"github.com/spf13/cobra"
)

var flavorCmd = &cobra.Command{
	Use:   "flavor [make]",
	Short: "Print the makefile generator matching a make",
	Long: `Flavor runs "make -v" and prints the CMake makefile generator matching the
platform make was built for. The make defaults to $MAKE_EXECUTABLE or make.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runFlavor,
}

func init() {
	rootCmd.AddCommand(flavorCmd)
}

func runFlavor(cmd *cobra.Command, args []string) error {
	makeExe := env.MakeExecutable()
	if len(args) == 1 {
		makeExe = args[0]
	}
	d, err := makeflavor.Detect(context.Background(), proc.Default, makeExe)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), d)
	return nil
}
