package internal

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/goplus/usecmake/internal/manifest"
	"github.com/goplus/usecmake/internal/publish"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var outputsFormat string

var outputsCmd = &cobra.Command{
	Use:   "outputs [variant]",
	Short: "Print the published outputs",
	Long: `Outputs prints the output channels recorded by the last generate, for every
variant or for the named one.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runOutputs,
}

func init() {
	outputsCmd.Flags().StringVarP(&outputsFormat, "format", "f", "json", "Output format (json or yaml)")
	rootCmd.AddCommand(outputsCmd)
}

func runOutputs(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	m, err := loadManifest(cfg)
	if err != nil {
		return err
	}
	outputs, err := selectOutputs(m, args)
	if err != nil {
		return err
	}
	return writeOutputs(cmd.OutOrStdout(), outputs, outputsFormat)
}

func selectOutputs(m *manifest.Manifest, args []string) ([]publish.Output, error) {
	if len(args) == 0 {
		return m.Outputs(), nil
	}
	p, err := m.Variant(args[0])
	if err != nil {
		return nil, err
	}
	return p.Outputs, nil
}

// writeOutputs encodes outputs to w in format.
func writeOutputs(w io.Writer, outputs []publish.Output, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(outputs)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(outputs); err != nil {
			return err
		}
		return enc.Close()
	}
	return fmt.Errorf("unknown format %q, want json or yaml", format)
}
