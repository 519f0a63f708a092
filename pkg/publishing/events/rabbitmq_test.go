package events_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wepublish/wepublish-api/pkg/publishing"
	"github.com/wepublish/wepublish-api/pkg/publishing/events"
)

type published struct {
	exchange string
	key      string
	msg      amqp.Publishing
}

type fakeChannel struct {
	sent   []published
	err    error
	closed bool
}

func (c *fakeChannel) PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	if c.err != nil {
		return c.err
	}
	c.sent = append(c.sent, published{exchange: exchange, key: key, msg: msg})
	return nil
}

func (c *fakeChannel) Close() error {
	c.closed = true
	return nil
}

func TestRabbitMQ_PublishesEvents(t *testing.T) {
	ch := &fakeChannel{}
	pub := events.NewPublisher(ch, events.Config{Exchange: "items", RoutingKey: "item.events"}, nil)
	ctx := context.Background()

	item := &publishing.Item{ID: uuid.New(), Kind: publishing.KindArticle}
	item.SetRevision(&publishing.Revision{State: publishing.StatePublished, Title: "Live", Slug: "live"})

	fire := []struct {
		action string
		call   func(context.Context, *publishing.Item) error
	}{
		{events.ActionCreated, pub.ItemCreated},
		{events.ActionUpdated, pub.ItemUpdated},
		{events.ActionPublished, pub.ItemPublished},
		{events.ActionUnpublished, pub.ItemUnpublished},
		{events.ActionDeleted, pub.ItemDeleted},
	}
	for _, f := range fire {
		require.NoError(t, f.call(ctx, item))
	}

	require.Len(t, ch.sent, len(fire))
	for i, f := range fire {
		sent := ch.sent[i]
		assert.Equal(t, "items", sent.exchange)
		assert.Equal(t, "item.events", sent.key)
		assert.Equal(t, amqp.Persistent, sent.msg.DeliveryMode)
		assert.Equal(t, "application/json", sent.msg.ContentType)
		assert.Equal(t, "article."+f.action, sent.msg.Type)
		assert.Equal(t, item.ID.String(), sent.msg.MessageId)

		var msg events.ItemMessage
		require.NoError(t, json.Unmarshal(sent.msg.Body, &msg))
		assert.Equal(t, f.action, msg.Action)
		assert.Equal(t, publishing.KindArticle, msg.Kind)
		assert.Equal(t, item.ID.String(), msg.ItemID)
		require.NotNil(t, msg.Item.Published())
		assert.Equal(t, "live", msg.Item.Published().Slug)
		assert.False(t, msg.Timestamp.IsZero())
	}

	require.NoError(t, pub.Close())
	assert.True(t, ch.closed)
}

func TestRabbitMQ_PublishError(t *testing.T) {
	ch := &fakeChannel{err: errors.New("channel closed")}
	pub := events.NewPublisher(ch, events.Config{Exchange: "items"}, nil)

	err := pub.ItemDeleted(context.Background(), &publishing.Item{ID: uuid.New(), Kind: publishing.KindPage})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "publish message")
}
