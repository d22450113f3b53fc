package command

import (
	"github.com/urfave/cli/v2"

	"github.com/yndnr/jobhost/internal/cli/output"
	"github.com/yndnr/jobhost/internal/infra/buildinfo"
)

// VersionCommand returns the version command.
func VersionCommand() *cli.Command {
	return &cli.Command{
		Name:  "version",
		Usage: "Show build information",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Output format: text, json, yaml",
				Value:   string(output.FormatText),
			},
		},
		Action: func(c *cli.Context) error {
			format, err := output.ParseFormat(c.String("output"))
			if err != nil {
				return cli.Exit(err.Error(), 2)
			}

			info := buildinfo.Get()
			var data any = info
			if format == output.FormatText {
				data = output.Fields{
					{Name: "Version", Value: info.Version},
					{Name: "Commit", Value: info.Commit},
					{Name: "Built", Value: info.BuildTime},
					{Name: "Go version", Value: info.GoVersion},
				}
			}
			return output.NewFormatter(format).Format(c.App.Writer, data)
		},
	}
}
