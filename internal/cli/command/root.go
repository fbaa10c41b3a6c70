package command

import (
	"fmt"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/sigstream/internal/cli/connection"
	"github.com/yndnr/sigstream/internal/cli/output"
	"github.com/yndnr/sigstream/internal/infra/buildinfo"
	"github.com/yndnr/sigstream/internal/infra/tlsroots"
)

// App creates the CLI application.
func App() *cli.App {
	return &cli.App{
		Name:    "sigstream-cli",
		Usage:   "Read and append signed messages on a sigstream server",
		Version: buildinfo.String(),
		Flags:   globalFlags(),
		Commands: []*cli.Command{
			StreamCommand(),
			SystemCommand(),
		},
		Before: func(c *cli.Context) error {
			_, err := output.ParseFormat(c.String("output"))
			return err
		},
	}
}

func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "server",
			Aliases: []string{"s"},
			Usage:   "sigstream server address (e.g., localhost:8000 or https://host)",
			EnvVars: []string{"SIGSTREAM_SERVER"},
			Value:   "localhost:8000",
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Output format: table, json, yaml",
			Value:   "table",
		},
		&cli.BoolFlag{
			Name:  "no-headers",
			Usage: "Omit the header row in table output",
		},
		&cli.StringFlag{
			Name:    "ca-file",
			Usage:   "PEM file with extra root certificates to trust",
			EnvVars: []string{"SIGSTREAM_CA_FILE"},
		},
		&cli.BoolFlag{
			Name:  "insecure",
			Usage: "Skip TLS certificate verification",
		},
		&cli.DurationFlag{
			Name:  "timeout",
			Usage: "Per-request timeout",
			Value: connection.DefaultTimeout,
		},
	}
}

// GlobalFlags defines flags available to all commands.
type GlobalFlags struct {
	Server    string
	Output    output.Format
	NoHeaders bool
	CAFile    string
	Insecure  bool
	Timeout   time.Duration
}

// ParseGlobalFlags extracts global flags from context.
func ParseGlobalFlags(c *cli.Context) *GlobalFlags {
	format, err := output.ParseFormat(c.String("output"))
	if err != nil {
		format = output.FormatTable
	}
	return &GlobalFlags{
		Server:    c.String("server"),
		Output:    format,
		NoHeaders: c.Bool("no-headers"),
		CAFile:    c.String("ca-file"),
		Insecure:  c.Bool("insecure"),
		Timeout:   c.Duration("timeout"),
	}
}

// NewClient builds the HTTP client described by the global flags.
func NewClient(c *cli.Context) (*connection.Client, error) {
	flags := ParseGlobalFlags(c)

	pool := tlsroots.NewPool()
	if flags.CAFile != "" {
		if err := pool.AddCertFile(flags.CAFile); err != nil {
			return nil, err
		}
	}

	opts := []connection.Option{connection.WithTLSConfig(pool.ClientConfig(flags.Insecure))}
	if flags.Timeout > 0 {
		opts = append(opts, connection.WithTimeout(flags.Timeout))
	}
	return connection.NewClient(flags.Server, opts...), nil
}

// render writes data to the app's writer in the selected format.
func render(c *cli.Context, data any) error {
	flags := ParseGlobalFlags(c)
	return output.NewFormatter(flags.Output, flags.NoHeaders).Format(c.App.Writer, data)
}

// PrintError prints an error message to the app's error writer.
func PrintError(c *cli.Context, format string, args ...any) {
	fmt.Fprintf(c.App.ErrWriter, "error: "+format+"\n", args...)
}
