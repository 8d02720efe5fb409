package cmd

import (
	"fmt"
	"sort"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ygfuyfffdf-max/v0-crypto-dashboard-design-sub016/config"
	"github.com/ygfuyfffdf-max/v0-crypto-dashboard-design-sub016/model"
	"github.com/ygfuyfffdf-max/v0-crypto-dashboard-design-sub016/pdp/matrix"
)

var matrixCmd = &cobra.Command{
	Use:   "matrix",
	Short: "Inspect and validate permission matrices",
}

// matrixValidateCmd represents the matrix validate command
var matrixValidateCmd = &cobra.Command{
	Use:   "validate <file>",
	Short: "Validate a permission matrix file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := matrix.LoadFile(args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: valid (version %s, %d panels)\n", args[0], reg.Version(), len(reg.Panels()))
		return nil
	},
}

var matrixShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the configured permission matrix",
	RunE: func(cmd *cobra.Command, args []string) error {
		file, _ := cmd.Flags().GetString("file")
		if file == "" {
			file = config.GetConfig().Engine.MatrixFile
		}
		raw, _ := cmd.Flags().GetBool("raw")

		reg, err := loadRegistry(file)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()

		if raw {
			doc := matrix.Document{
				Version:       reg.Version(),
				TimeWindows:   reg.TimeWindows(),
				LocationRules: reg.LocationRules(),
				Panels:        make(map[string]model.Panel),
			}
			for _, p := range reg.Panels() {
				doc.Panels[p.ID] = p
			}
			enc := yaml.NewEncoder(out)
			enc.SetIndent(2)
			defer enc.Close()
			return enc.Encode(doc)
		}

		fmt.Fprintf(out, "version: %s\n", reg.Version())
		t := table.NewWriter()
		t.SetOutputMirror(out)
		t.AppendHeader(table.Row{"Panel", "Sensitivity", "Action", "Allowed", "Denied", "Conditions"})
		for _, p := range reg.Panels() {
			actions := make([]string, 0, len(p.Actions))
			for a := range p.Actions {
				actions = append(actions, string(a))
			}
			sort.Strings(actions)
			for _, a := range actions {
				cfg := p.Actions[model.ActionType(a)]
				conditions := make([]string, 0, len(cfg.Conditions))
				for _, c := range cfg.Conditions {
					conditions = append(conditions, c.String())
				}
				t.AppendRow(table.Row{
					p.ID,
					p.Sensitivity,
					a,
					orDash(strings.Join(cfg.AllowedRoles, ", ")),
					orDash(strings.Join(cfg.DeniedRoles, ", ")),
					orDash(strings.Join(conditions, "; ")),
				})
			}
			t.AppendSeparator()
		}

		style := table.StyleRounded
		style.Format.Header = text.FormatDefault
		t.SetStyle(style)
		t.Render()
		return nil
	},
}

func loadRegistry(file string) (*matrix.Registry, error) {
	if file == "" {
		return matrix.LoadDefault()
	}
	return matrix.LoadFile(file)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func init() {
	matrixShowCmd.Flags().String("file", "", "Matrix file (default is the configured or built-in matrix)")
	matrixShowCmd.Flags().Bool("raw", false, "Print the matrix as YAML")

	matrixCmd.AddCommand(matrixValidateCmd)
	matrixCmd.AddCommand(matrixShowCmd)
	rootCmd.AddCommand(matrixCmd)
}
