package queue

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// Publisher appends events to a stream.
type Publisher interface {
	// Publish adds an event to the stream and returns the assigned message id.
	Publish(ctx context.Context, stream string, event FeedEvent) (messageID string, err error)
}

// RedisPublisher implements Publisher on Redis Streams.
type RedisPublisher struct {
	client *redis.Client
}

func NewPublisher(client *redis.Client) Publisher {
	return &RedisPublisher{client: client}
}

// Publish runs XADD with an auto-generated message id.
func (p *RedisPublisher) Publish(ctx context.Context, stream string, event FeedEvent) (string, error) {
	startTime := time.Now()

	values, err := event.ToMap()
	if err != nil {
		log.Printf("[Publisher] Publish FAILED: stream=%s type=%s err=%v", stream, event.Type, err)
		return "", fmt.Errorf("serialize event: %w", err)
	}

	messageID, err := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: stream,
		Values: values,
	}).Result()
	if err != nil {
		log.Printf("[Publisher] Publish FAILED: stream=%s type=%s err=%v", stream, event.Type, err)
		return "", fmt.Errorf("xadd to stream: %w", err)
	}

	log.Printf("[Publisher] Publish OK: stream=%s type=%s msgID=%s duration=%v",
		stream, event.Type, messageID, time.Since(startTime))

	switch event.Type {
	case EventPostCreated, EventPostDeleted:
		log.Printf("[Publisher]   -> post=%d author=%s", event.PostID, event.AuthorID)
	case EventUserFollowed, EventUserUnfollowed:
		log.Printf("[Publisher]   -> follower=%s followee=%s", event.FollowerID, event.FolloweeID)
	}

	return messageID, nil
}

// PublishPostCreated publishes a post created event to the feed stream.
func (p *RedisPublisher) PublishPostCreated(ctx context.Context, postID int64, authorID string) (string, error) {
	return p.Publish(ctx, StreamFeed, NewPostCreatedEvent(postID, authorID))
}

// PublishPostDeleted publishes a post deleted event to the feed stream.
func (p *RedisPublisher) PublishPostDeleted(ctx context.Context, postID int64, authorID string) (string, error) {
	return p.Publish(ctx, StreamFeed, NewPostDeletedEvent(postID, authorID))
}

// PublishUserFollowed publishes a follow event to the feed stream.
func (p *RedisPublisher) PublishUserFollowed(ctx context.Context, followerID, followeeID string) (string, error) {
	return p.Publish(ctx, StreamFeed, NewUserFollowedEvent(followerID, followeeID))
}

// PublishUserUnfollowed publishes an unfollow event to the feed stream.
func (p *RedisPublisher) PublishUserUnfollowed(ctx context.Context, followerID, followeeID string) (string, error) {
	return p.Publish(ctx, StreamFeed, NewUserUnfollowedEvent(followerID, followeeID))
}
