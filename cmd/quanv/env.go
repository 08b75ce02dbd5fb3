package main

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/born-ml/quanv/internal/envconfig"
)

func newEnvCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "env",
		Short: "List configuration environment variables and their values",
		Args:  cobra.NoArgs,
		RunE:  EnvHandler,
	}
}

// EnvHandler prints every QUANV_* variable, its current value and description.
func EnvHandler(cmd *cobra.Command, _ []string) error {
	vars := envconfig.AsMap()
	names := make([]string, 0, len(vars))
	for name := range vars {
		names = append(names, name)
	}
	slices.Sort(names)

	table := newTable(cmd.OutOrStdout(), "NAME", "VALUE", "DESCRIPTION")
	for _, name := range names {
		v := vars[name]
		table.Append([]string{v.Name, fmt.Sprintf("%v", v.Value), v.Description})
	}
	table.Render()
	return nil
}
