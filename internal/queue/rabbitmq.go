package queue

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/KOFI-GYIMAH/github-client/internal/github"
	"github.com/KOFI-GYIMAH/github-client/pkg/logger"
	"github.com/streadway/amqp"
)

// RepoCreator is satisfied by *github.Client.
type RepoCreator interface {
	CreateRepo(ctx context.Context, repoData github.RepoCreationPayload) (github.ResponseBody, error)
}

// RabbitMQ carries repository creation requests from an automation layer to
// the GitHub client. Each message is one RepoCreationPayload.
type RabbitMQ struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	queue   string
}

func NewRabbitMQ(url, queue string) (*RabbitMQ, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open RabbitMQ channel: %w", err)
	}

	return &RabbitMQ{
		conn:    conn,
		channel: channel,
		queue:   queue,
	}, nil
}

func (r *RabbitMQ) declare() (amqp.Queue, error) {
	return r.channel.QueueDeclare(
		r.queue,
		true,
		false,
		false,
		false,
		nil,
	)
}

// ConsumeCreateRequests forwards every message to creator until ctx is done or
// the channel closes. Messages are acknowledged whether or not the remote call
// succeeded; a failed creation is logged and dropped.
func (r *RabbitMQ) ConsumeCreateRequests(ctx context.Context, creator RepoCreator) error {
	queue, err := r.declare()
	if err != nil {
		return err
	}

	msgs, err := r.channel.Consume(
		queue.Name,
		"",
		false,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return err
	}

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case d, ok := <-msgs:
				if !ok {
					logger.Warn("RabbitMQ delivery channel closed")
					return
				}

				if err := handleCreateRequest(ctx, creator, d.Body); err != nil {
					logger.Error("Error handling create request: %v", err)
				}
				if err := d.Ack(false); err != nil {
					logger.Error("Error acknowledging message: %v", err)
				}
			}
		}
	}()

	return nil
}

func handleCreateRequest(ctx context.Context, creator RepoCreator, body []byte) error {
	payload, err := decodeCreateRequest(body)
	if err != nil {
		return err
	}

	created, err := creator.CreateRepo(ctx, payload)
	if err != nil {
		return err
	}

	var repo github.Repository
	if err := created.Decode(&repo); err == nil && repo.FullName != "" {
		logger.Info("Created repository %s", repo.FullName)
	} else {
		logger.Info("Created repository")
	}
	return nil
}

// decodeCreateRequest accepts only a JSON object; its fields are not checked.
func decodeCreateRequest(body []byte) (github.RepoCreationPayload, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, fmt.Errorf("create request must be a JSON object")
	}

	var payload github.RepoCreationPayload
	if err := json.Unmarshal(trimmed, &payload); err != nil {
		return nil, fmt.Errorf("error decoding create request: %w", err)
	}
	return payload, nil
}

func (r *RabbitMQ) Close() error {
	if err := r.channel.Close(); err != nil {
		return err
	}
	return r.conn.Close()
}
