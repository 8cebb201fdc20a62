package internal

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/goplus/usecmake/internal/proc"
	"github.com/spf13/cobra"
)

var variantsCmd = &cobra.Command{
	Use:   "variants",
	Short: "List the variants of the configured matrix",
	Long: `Variants lists every cell of the configured matrix with its variant name,
its build directory key and the toolchain found for its target machine.
Cells of a machine without a toolchain are skipped by generate.`,
	Args: cobra.NoArgs,
	RunE: runVariants,
}

func init() {
	rootCmd.AddCommand(variantsCmd)
}

func runVariants(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	m, err := cfg.Matrix()
	if err != nil {
		return err
	}
	resolver := newResolver(cfg, proc.Default)
	ctx := context.Background()

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "VARIANT\tDIRECTORY\tTOOLCHAIN")
	for _, c := range m.Cells() {
		sel, err := resolver.Resolve(ctx, c.Machine)
		if err != nil {
			return err
		}
		tc := "(unavailable)"
		if sel.Available {
			tc = sel.Name
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", m.Name(c), c.Dir(), tc)
	}
	return w.Flush()
}
