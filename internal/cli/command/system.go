package command

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/sigstream/internal/cli/connection"
	"github.com/yndnr/sigstream/internal/cli/output"
	"github.com/yndnr/sigstream/internal/infra/buildinfo"
)

// SystemCommand returns the system subcommand group.
func SystemCommand() *cli.Command {
	return &cli.Command{
		Name:    "system",
		Aliases: []string{"sys"},
		Usage:   "Server health and version",
		Subcommands: []*cli.Command{
			{
				Name:  "health",
				Usage: "Check server health",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "ready",
						Usage: "Check readiness (store reachable) instead of liveness",
					},
				},
				Action: systemHealth,
			},
			{
				Name:   "version",
				Usage:  "Show client and server versions",
				Action: systemVersion,
			},
		},
	}
}

type healthResult struct {
	Status string `json:"status" yaml:"status"`
	Time   string `json:"time" yaml:"time"`
	Target string `json:"target" yaml:"target"`
}

func (h healthResult) Table() *output.Table {
	t := output.NewTable("STATUS", "TIME", "TARGET")
	t.AddRow(h.Status, h.Time, h.Target)
	return t
}

func systemHealth(c *cli.Context) error {
	client, err := NewClient(c)
	if err != nil {
		return err
	}

	path := "/health"
	if c.Bool("ready") {
		path = "/ready"
	}

	resp, err := client.Get(c.Context, path)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}

	result := healthResult{Target: client.BaseURL()}
	if err := connection.ParseResponse(resp, &result); err != nil {
		return err
	}
	return render(c, result)
}

type versionResult struct {
	Client buildinfo.Info `json:"client" yaml:"client"`
	Server buildinfo.Info `json:"server" yaml:"server"`
}

func (v versionResult) Table() *output.Table {
	t := output.NewTable("COMPONENT", "VERSION", "COMMIT", "BUILD_TIME", "GO")
	t.AddRow("client", v.Client.Version, v.Client.Commit, v.Client.BuildTime, v.Client.GoVersion)
	t.AddRow("server", v.Server.Version, v.Server.Commit, v.Server.BuildTime, v.Server.GoVersion)
	return t
}

func systemVersion(c *cli.Context) error {
	client, err := NewClient(c)
	if err != nil {
		return err
	}

	resp, err := client.Get(c.Context, "/version")
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}

	result := versionResult{Client: buildinfo.Get()}
	if err := connection.ParseResponse(resp, &result.Server); err != nil {
		return err
	}
	return render(c, result)
}
