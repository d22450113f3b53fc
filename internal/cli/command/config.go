package command

import (
	"github.com/urfave/cli/v2"

	"github.com/yndnr/jobhost/internal/cli/output"
)

// ConfigCommand returns the config command.
func ConfigCommand() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Print the effective configuration",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Output format: yaml, json",
				Value:   string(output.FormatYAML),
			},
		},
		Action: func(c *cli.Context) error {
			format, err := output.ParseFormat(c.String("output"))
			if err != nil {
				return cli.Exit(err.Error(), 2)
			}
			if format == output.FormatText {
				format = output.FormatYAML
			}
			return output.NewFormatter(format).Format(c.App.Writer, configFrom(c))
		},
	}
}
