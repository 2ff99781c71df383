package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/MIgor26/explore-with-me/pkg/datetime"
	"github.com/MIgor26/explore-with-me/stats-service/pkg/statsclient"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeChannel struct {
	exchange, key string
	msg           amqp.Publishing
	err           error
}

func (f *fakeChannel) PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	f.exchange, f.key, f.msg = exchange, key, msg
	return f.err
}

func (f *fakeChannel) Close() error { return nil }

func TestAddHit_PublishesJSON(t *testing.T) {
	ch := &fakeChannel{}
	p := &Publisher{channel: ch}
	at := time.Date(2026, 3, 10, 12, 0, 0, 0, time.Local)

	err := p.AddHit(context.Background(), statsclient.EndpointHit{
		App: "ewm-main-service", URI: "/events/1", IP: "10.0.0.1", Timestamp: datetime.New(at),
	})

	require.NoError(t, err)
	assert.Equal(t, ExchangeName, ch.exchange)
	assert.Equal(t, HitRoutingKey, ch.key)
	assert.Equal(t, "application/json", ch.msg.ContentType)

	var body map[string]string
	require.NoError(t, json.Unmarshal(ch.msg.Body, &body))
	assert.Equal(t, "/events/1", body["uri"])
	assert.Equal(t, "2026-03-10 12:00:00", body["timestamp"])
}

func TestAddHit_ChannelError(t *testing.T) {
	p := &Publisher{channel: &fakeChannel{err: errors.New("channel closed")}}

	err := p.AddHit(context.Background(), statsclient.EndpointHit{URI: "/events"})

	assert.ErrorContains(t, err, "channel closed")
}
