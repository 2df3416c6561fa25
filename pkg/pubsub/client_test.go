package pubsub

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/angelmondragon/pdv-backend/pkg/config"
)

func TestTopicResourceName(t *testing.T) {
	assert.Equal(t, "projects/p1/topics/sales", topicResourceName("p1", " sales "))
	assert.Equal(t, "projects/other/topics/sales", topicResourceName("p1", "projects/other/topics/sales"))
	assert.Empty(t, topicResourceName("", "sales"))
	assert.Empty(t, topicResourceName("p1", " "))
}

func TestTopicNamesSkipsBlank(t *testing.T) {
	assert.Equal(t, []string{"pdv-sales-events"}, topicNames(config.PubSubConfig{SalesTopic: "pdv-sales-events"}))
	assert.Empty(t, topicNames(config.PubSubConfig{}))
}

func TestNilClientIsSafe(t *testing.T) {
	var c *Client
	assert.Nil(t, c.Publisher("sales"))
	assert.NoError(t, c.Close())
	assert.Error(t, c.Ping(context.Background()))
}
