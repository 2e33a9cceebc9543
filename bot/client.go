package bot

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"
)

const requestTimeout = 60 * time.Second

type Client struct {
	// NATS connection
	nc      *nats.Conn
	channel string
}

func NewClient(nc *nats.Conn, channel string) *Client {
	return &Client{nc: nc, channel: channel}
}

// Command sends one referee command to a bot served by Main and returns
// its reply.
func (c *Client) Command(ctx context.Context, cmd string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()
	res, err := c.nc.RequestWithContext(ctx, c.channel, []byte(cmd))
	if err != nil {
		if c.nc.LastError() != nil {
			log.Error().Msgf("%v for request", c.nc.LastError())
		}
		log.Error().Msgf("%v for request", err)
		return "", err
	}
	log.Debug().Msgf("res: %v", string(res.Data))
	reply := string(res.Data)
	if msg, ok := strings.CutPrefix(reply, "error: "); ok {
		return "", errors.New("Bot returned: " + msg)
	}
	return reply, nil
}

// RequestMove asks the bot for its move.
func (c *Client) RequestMove(ctx context.Context) (string, error) {
	return c.Command(ctx, CmdGenMove)
}

// SendMove tells the bot what its opponent played.
func (c *Client) SendMove(ctx context.Context, mv string) error {
	_, err := c.Command(ctx, CmdPlayMove+" "+mv)
	return err
}
