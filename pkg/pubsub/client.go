package pubsub

import (
	"context"
	"errors"
	"fmt"
	"strings"

	pubsub "cloud.google.com/go/pubsub/v2"

	"github.com/luisocampo/nichesmith-backend/pkg/config"
	"github.com/luisocampo/nichesmith-backend/pkg/logger"
)

var errProjectIDRequired = errors.New("gcp project id is required")

// Client wraps the Pub/Sub v2 client for billing event fan-out.
type Client struct {
	client    *pubsub.Client
	projectID string
	cfg       config.PubSubConfig
}

// NewClient creates a Pub/Sub v2 client bound to the billing topic.
func NewClient(ctx context.Context, gcp config.GCPConfig, cfg config.PubSubConfig, logg *logger.Logger) (*Client, error) {
	if strings.TrimSpace(gcp.ProjectID) == "" {
		return nil, errProjectIDRequired
	}

	psClient, err := pubsub.NewClient(ctx, gcp.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("creating pubsub client: %w", err)
	}

	if logg != nil {
		logg.Info(ctx, "pubsub client initialized")
	}

	return &Client{
		client:    psClient,
		projectID: gcp.ProjectID,
		cfg:       cfg,
	}, nil
}

// BillingPublisher returns the publisher for the billing event topic.
func (c *Client) BillingPublisher() *pubsub.Publisher {
	if c == nil || c.client == nil {
		return nil
	}
	name := strings.TrimSpace(c.cfg.BillingTopic)
	if name == "" {
		return nil
	}
	return c.client.Publisher(c.topicResourceName(name))
}

// PublishBilling sends one message to the billing topic and waits for the ack.
func (c *Client) PublishBilling(ctx context.Context, data []byte) error {
	publisher := c.BillingPublisher()
	if publisher == nil {
		return errors.New("billing publisher not configured")
	}
	result := publisher.Publish(ctx, &pubsub.Message{Data: data})
	_, err := result.Get(ctx)
	return err
}

// Close releases the underlying client.
func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

func (c *Client) topicResourceName(name string) string {
	if strings.HasPrefix(name, "projects/") {
		return name
	}
	return fmt.Sprintf("projects/%s/topics/%s", c.projectID, name)
}
