package terminal

import (
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/Amadeus750/spend-streamlet/pkg/runtime/terminal/commands"
	"github.com/Amadeus750/spend-streamlet/pkg/runtime/terminal/export"
	"github.com/Amadeus750/spend-streamlet/pkg/services/config"
	"github.com/Amadeus750/spend-streamlet/pkg/services/spend"
)

// CLI represents the command-line interface
type CLI struct {
	registry spend.Registry
	profiles config.ProfileRegistry
	reporter *export.Reporter
	rootCmd  *cobra.Command
}

// Options contain configuration for the CLI
type Options struct {
	Registry spend.Registry
	Profiles config.ProfileRegistry
	Output   io.Writer
}

// NewCLI creates a new CLI instance
func NewCLI(opts Options) *CLI {
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	cli := &CLI{
		registry: opts.Registry,
		profiles: opts.Profiles,
		reporter: export.NewReporter(opts.Output),
	}

	cli.rootCmd = cli.newRootCmd()
	return cli
}

func (cli *CLI) Execute() error {
	return cli.rootCmd.Execute()
}

func (cli *CLI) newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "spendctl",
		Short: "Spend analytics tool",
	}

	cmd.AddCommand(commands.NewReportCmd(cli.registry, cli.profiles, cli.reporter))
	cmd.AddCommand(commands.NewDimensionsCmd(cli.registry, cli.profiles))

	return cmd
}
