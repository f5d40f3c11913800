package queue

import (
	"encoding/json"
	"fmt"
	"time"
)

// Event types carried on the feed stream.
const (
	EventPostCreated    = "post_created"
	EventPostDeleted    = "post_deleted"
	EventUserFollowed   = "user_followed"
	EventUserUnfollowed = "user_unfollowed"
)

const (
	StreamFeed = "stream:feed"
)

const (
	ConsumerGroupFeed = "feed_workers"
)

// FeedEvent is the one message shape on the feed stream. Uids are the opaque
// identity-provider strings, post ids are database serials. Timestamps are
// epoch microseconds, the same precision the feed cache scores carry.
type FeedEvent struct {
	Type      string `json:"type"`
	Timestamp int64  `json:"timestamp"`

	// Post events
	PostID   int64  `json:"post_id,omitempty"`
	AuthorID string `json:"author_id,omitempty"`

	// Follow events
	FollowerID string `json:"follower_id,omitempty"`
	FolloweeID string `json:"followee_id,omitempty"`
}

// NewPostCreatedEvent signals a new post to fan out to follower feeds.
func NewPostCreatedEvent(postID int64, authorID string) FeedEvent {
	return FeedEvent{
		Type:      EventPostCreated,
		Timestamp: time.Now().UnixMicro(),
		PostID:    postID,
		AuthorID:  authorID,
	}
}

// NewPostDeletedEvent signals a deleted post to purge from follower feeds.
func NewPostDeletedEvent(postID int64, authorID string) FeedEvent {
	return FeedEvent{
		Type:      EventPostDeleted,
		Timestamp: time.Now().UnixMicro(),
		PostID:    postID,
		AuthorID:  authorID,
	}
}

// NewUserFollowedEvent asks the worker to backfill the followee's recent
// posts into the follower's feed.
func NewUserFollowedEvent(followerID, followeeID string) FeedEvent {
	return FeedEvent{
		Type:       EventUserFollowed,
		Timestamp:  time.Now().UnixMicro(),
		FollowerID: followerID,
		FolloweeID: followeeID,
	}
}

// NewUserUnfollowedEvent asks the worker to drop the followee's posts from
// the follower's feed.
func NewUserUnfollowedEvent(followerID, followeeID string) FeedEvent {
	return FeedEvent{
		Type:       EventUserUnfollowed,
		Timestamp:  time.Now().UnixMicro(),
		FollowerID: followerID,
		FolloweeID: followeeID,
	}
}

// ToMap serializes the event for XADD. Streams store field-value pairs, so
// the full event rides in a JSON "data" field next to a bare "type" for
// cheap filtering.
func (e FeedEvent) ToMap() (map[string]interface{}, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("marshal event: %w", err)
	}
	return map[string]interface{}{
		"type": e.Type,
		"data": string(data),
	}, nil
}

// ParseFeedEvent decodes a stream message back into a FeedEvent.
func ParseFeedEvent(values map[string]interface{}) (FeedEvent, error) {
	data, ok := values["data"].(string)
	if !ok {
		return FeedEvent{}, fmt.Errorf("missing or invalid 'data' field")
	}

	var event FeedEvent
	if err := json.Unmarshal([]byte(data), &event); err != nil {
		return FeedEvent{}, fmt.Errorf("unmarshal event: %w", err)
	}
	return event, nil
}
