package main

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/born-ml/quanv/internal/envconfig"
)

var version = "v0.0.1-dev"

// NewCLI builds the root command.
func NewCLI() *cobra.Command {
	cobra.EnableCommandSorting = false

	rootCmd := &cobra.Command{
		Use:           "quanv",
		Short:         "Quantum convolution layers on a simulated quantum backend",
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			slog.SetDefault(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
				Level: envconfig.LogLevel(),
			})))
		},
		Run: func(cmd *cobra.Command, args []string) {
			if v, _ := cmd.Flags().GetBool("version"); v {
				versionHandler(cmd, args)
				return
			}

			cmd.Print(cmd.UsageString())
		},
	}

	rootCmd.Flags().BoolP("version", "v", false, "Show version information")

	runCmd := newRunCmd()
	circuitCmd := newCircuitCmd()
	trainCmd := newTrainCmd()

	envVars := envconfig.AsMap()
	envs := []envconfig.EnvVar{envVars["QUANV_SHOTS"], envVars["QUANV_SEED"], envVars["QUANV_NUM_PARALLEL"], envVars["QUANV_DEBUG"]}
	for _, cmd := range []*cobra.Command{runCmd, trainCmd} {
		appendEnvDocs(cmd, envs)
	}

	rootCmd.AddCommand(
		runCmd,
		circuitCmd,
		trainCmd,
		newEnvCmd(),
		newVersionCmd(),
	)

	return rootCmd
}

// appendEnvDocs lists the environment variables a command honours in its usage text.
func appendEnvDocs(cmd *cobra.Command, envs []envconfig.EnvVar) {
	if len(envs) == 0 {
		return
	}

	envUsage := `
Environment Variables:
`
	for _, e := range envs {
		envUsage += fmt.Sprintf("      %-24s   %s\n", e.Name, e.Description)
	}

	cmd.SetUsageTemplate(cmd.UsageTemplate() + envUsage)
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run:   versionHandler,
	}
}

func versionHandler(cmd *cobra.Command, _ []string) {
	fmt.Fprintf(cmd.OutOrStdout(), "quanv version %s\n", version)
}

// newTable returns a borderless left-aligned table.
func newTable(w io.Writer, header ...string) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetAutoFormatHeaders(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetNoWhiteSpace(true)
	table.SetTablePadding("    ")
	return table
}
