package terminal

import (
	"io"
	"os"

	"github.com/rcm-tools/revenue-atlas/pkg/terminal/commands"
	"github.com/rcm-tools/revenue-atlas/pkg/terminal/export"

	"github.com/spf13/cobra"
)

// CLI represents the command-line interface
type CLI struct {
	rootCmd *cobra.Command
}

// Options contain configuration for the CLI
type Options struct {
	DBPath string
	Output io.Writer
}

// NewCLI creates a new CLI instance
func NewCLI(opts Options) *CLI {
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.DBPath == "" {
		opts.DBPath = "revenue-atlas.db"
	}

	return &CLI{rootCmd: newRootCmd(opts)}
}

func (cli *CLI) Execute() error {
	return cli.rootCmd.Execute()
}

func newRootCmd(opts Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "revenue-atlas",
		Short: "Revenue cycle reporting from the terminal",
	}
	cmd.SetOut(opts.Output)

	table := export.NewReporter(opts.Output)
	plain := NewReporter(opts.Output)

	cmd.AddCommand(commands.NewTypesCmd())
	cmd.AddCommand(commands.NewResolveCmd())
	cmd.AddCommand(commands.NewGenerateCmd(opts.DBPath, table, plain))
	cmd.AddCommand(commands.NewSeedCmd(opts.DBPath))

	return cmd
}
