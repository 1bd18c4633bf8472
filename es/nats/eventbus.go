package nats

import (
	"context"
	"encoding/json"
	"strings"

	nats "github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"

	"github.com/contextgg/go-es-mongo/es"
)

// Client publishes stored events to nats
type Client struct {
	namespace string
	conn      *nats.Conn
}

// NewClient returns the basic client to access to nats
func NewClient(urls string, namespace string) (es.EventBus, error) {
	servers := strings.Split(urls, ",")
	for i, s := range servers {
		servers[i] = strings.Trim(s, " ")
	}

	conn, err := nats.Connect(strings.Join(servers, ","))
	if err != nil {
		return nil, err
	}

	return &Client{
		namespace,
		conn,
	}, nil
}

// PublishEvent via nats
func (c *Client) PublishEvent(ctx context.Context, event *es.Event) error {
	blob, err := json.Marshal(event)
	if err != nil {
		return err
	}

	_, name := es.GetTypeName(event.Data)
	subj := c.namespace + "." + name

	if err := c.conn.Publish(subj, blob); err != nil {
		log.
			Error().
			Err(err).
			Str("subject", subj).
			Msg("Could not publish event")
		return err
	}
	return c.conn.Flush()
}

// Close underlying connection
func (c *Client) Close() {
	if c.conn != nil {
		c.conn.Close()
	}
}
