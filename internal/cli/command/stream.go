package command

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math"
	"net/url"
	"os"
	"strconv"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/sigstream/internal/cli/connection"
	"github.com/yndnr/sigstream/internal/cli/output"
	"github.com/yndnr/sigstream/internal/core/domain"
	"github.com/yndnr/sigstream/pkg/fixedbytes"
)

// StreamCommand returns the stream subcommand group.
func StreamCommand() *cli.Command {
	return &cli.Command{
		Name:    "stream",
		Aliases: []string{"st"},
		Usage:   "Stream operations",
		Subcommands: []*cli.Command{
			{
				Name:      "read",
				Usage:     "Read messages from a stream",
				ArgsUsage: "ID",
				Flags: []cli.Flag{
					&cli.UintFlag{
						Name:  "offset",
						Usage: "Index of the first message",
					},
					&cli.UintFlag{
						Name:  "limit",
						Usage: "Inclusive index of the last message (server default when unset)",
					},
				},
				Action: streamRead,
			},
			{
				Name:      "append",
				Usage:     "Append a signed message to a stream",
				ArgsUsage: "ID",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "signature",
						Usage: "Signature as base64url text (64 bytes)",
					},
					&cli.StringFlag{
						Name:  "data",
						Usage: "Payload as base64url text (128 bytes)",
					},
					&cli.PathFlag{
						Name:  "signature-file",
						Usage: "File holding the raw 64 signature bytes",
					},
					&cli.PathFlag{
						Name:  "data-file",
						Usage: "File holding the raw 128 payload bytes",
					},
				},
				Action: streamAppend,
			},
			{
				Name:   "new-id",
				Usage:  "Generate a random stream address",
				Action: streamNewID,
			},
		},
	}
}

// streamArg parses the single ID argument. The server treats a malformed
// address as a missing stream, so it is rejected here with a clearer error.
func streamArg(c *cli.Context) (domain.StreamAddress, error) {
	if c.NArg() != 1 {
		return domain.StreamAddress{}, errors.New("expected exactly one stream ID argument")
	}
	id, err := domain.ParseStreamAddress(c.Args().First())
	if err != nil {
		return domain.StreamAddress{}, fmt.Errorf("invalid stream ID %q: must be 8 bytes of base64url text", c.Args().First())
	}
	return id, nil
}

func messagesPath(id domain.StreamAddress) string {
	return "/streams/" + url.PathEscape(id.String()) + "/messages"
}

type streamMessages struct {
	ID       domain.StreamAddress `json:"id" yaml:"id"`
	Messages []domain.Message     `json:"messages" yaml:"messages"`

	offset uint64
}

func (s streamMessages) Table() *output.Table {
	t := output.NewTable("INDEX", "SIGNATURE", "DATA")
	for i, m := range s.Messages {
		t.AddRow(strconv.FormatUint(s.offset+uint64(i), 10), m.Signature.String(), m.Data.String())
	}
	return t
}

func streamRead(c *cli.Context) error {
	id, err := streamArg(c)
	if err != nil {
		return err
	}

	query := url.Values{}
	offset := c.Uint("offset")
	if uint64(offset) > math.MaxUint32 {
		return fmt.Errorf("offset %d out of range (max %d)", offset, uint32(math.MaxUint32))
	}
	if c.IsSet("offset") {
		query.Set("offset", strconv.FormatUint(uint64(offset), 10))
	}
	if c.IsSet("limit") {
		limit := c.Uint("limit")
		if limit > math.MaxUint8 {
			return fmt.Errorf("limit %d out of range (max %d)", limit, math.MaxUint8)
		}
		query.Set("limit", strconv.FormatUint(uint64(limit), 10))
	}

	path := messagesPath(id)
	if len(query) > 0 {
		path += "?" + query.Encode()
	}

	client, err := NewClient(c)
	if err != nil {
		return err
	}
	resp, err := client.Get(c.Context, path)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}

	result := streamMessages{offset: uint64(offset)}
	if err := connection.ParseResponse(resp, &result); err != nil {
		return err
	}
	return render(c, result)
}

type appendResult struct {
	ID     string `json:"id" yaml:"id"`
	Status string `json:"status" yaml:"status"`
}

func (a appendResult) Table() *output.Table {
	t := output.NewTable("ID", "STATUS")
	t.AddRow(a.ID, a.Status)
	return t
}

func streamAppend(c *cli.Context) error {
	id, err := streamArg(c)
	if err != nil {
		return err
	}

	msg, err := messageFromFlags(c)
	if err != nil {
		return err
	}

	client, err := NewClient(c)
	if err != nil {
		return err
	}
	resp, err := client.Post(c.Context, messagesPath(id), msg)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	if err := connection.ParseResponse(resp, nil); err != nil {
		return err
	}
	return render(c, appendResult{ID: id.String(), Status: "appended"})
}

// messageFromFlags takes each field either as text or from a raw file.
func messageFromFlags(c *cli.Context) (domain.Message, error) {
	sigText, err := fieldText[[domain.SignatureSize]byte](c, "signature")
	if err != nil {
		return domain.Message{}, err
	}
	dataText, err := fieldText[[domain.DataSize]byte](c, "data")
	if err != nil {
		return domain.Message{}, err
	}

	msg, err := domain.ParseMessage(sigText, dataText)
	if err != nil {
		return domain.Message{}, err
	}
	return msg, nil
}

func fieldText[A fixedbytes.Fixed](c *cli.Context, name string) (string, error) {
	text, file := c.String(name), c.Path(name+"-file")
	switch {
	case text != "" && file != "":
		return "", fmt.Errorf("--%s and --%s-file are mutually exclusive", name, name)
	case text != "":
		return text, nil
	case file != "":
		raw, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("read %s file: %w", name, err)
		}
		v, err := fixedbytes.FromBytes[A](raw)
		if err != nil {
			return "", fmt.Errorf("%s file %s: %w", name, file, err)
		}
		return v.String(), nil
	default:
		return "", fmt.Errorf("one of --%s or --%s-file is required", name, name)
	}
}

type newIDResult struct {
	ID string `json:"id" yaml:"id"`
}

func (n newIDResult) Table() *output.Table {
	t := output.NewTable("ID")
	t.AddRow(n.ID)
	return t
}

func streamNewID(c *cli.Context) error {
	var raw [domain.StreamAddressSize]byte
	if _, err := rand.Read(raw[:]); err != nil {
		return fmt.Errorf("generate stream ID: %w", err)
	}
	return render(c, newIDResult{ID: fixedbytes.New(raw).String()})
}
