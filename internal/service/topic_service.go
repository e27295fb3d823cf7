package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/looplearn/loop-api/internal/domain"
	"github.com/looplearn/loop-api/internal/store"
)

// TopicWithSubtopics pairs a topic with its ordered curriculum.
type TopicWithSubtopics struct {
	Topic     domain.Topic      `json:"topic"`
	Subtopics []domain.Subtopic `json:"subtopics"`
}

// TopicService provides the topic catalog and subscription management.
type TopicService interface {
	// ListTopics retrieves all active topics.
	ListTopics(ctx context.Context) ([]domain.Topic, error)

	// GetTopic retrieves a topic together with its active subtopics in
	// curriculum order.
	// Returns ErrTopicNotFound if the topic does not exist.
	GetTopic(ctx context.Context, topicID uuid.UUID) (*TopicWithSubtopics, error)

	// Subscribe adds the topic to the user's learning queue at the given
	// priority.
	// Returns ErrTopicNotFound if the topic does not exist and
	// ErrAlreadySubscribed for a duplicate subscription.
	Subscribe(ctx context.Context, userID, topicID uuid.UUID, priorityOrder int) (*domain.UserTopic, error)

	// Unsubscribe removes a subscription owned by the user.
	// Returns ErrSubscriptionNotFound if it does not exist or belongs to
	// someone else.
	Unsubscribe(ctx context.Context, userID, userTopicID uuid.UUID) error

	// ListSubscriptions retrieves the user's active subscriptions in
	// priority order.
	ListSubscriptions(ctx context.Context, userID uuid.UUID) ([]domain.UserTopic, error)
}

// TopicServiceImpl implements the TopicService interface
type TopicServiceImpl struct {
	topicStore     store.TopicStore
	subtopicStore  store.SubtopicStore
	userTopicStore store.UserTopicStore
	logger         *slog.Logger
}

// Ensure TopicServiceImpl implements TopicService interface
var _ TopicService = (*TopicServiceImpl)(nil)

// NewTopicService creates a new TopicService
func NewTopicService(
	topicStore store.TopicStore,
	subtopicStore store.SubtopicStore,
	userTopicStore store.UserTopicStore,
	logger *slog.Logger,
) *TopicServiceImpl {
	if topicStore == nil {
		panic("topicStore cannot be nil")
	}
	if subtopicStore == nil {
		panic("subtopicStore cannot be nil")
	}
	if userTopicStore == nil {
		panic("userTopicStore cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &TopicServiceImpl{
		topicStore:     topicStore,
		subtopicStore:  subtopicStore,
		userTopicStore: userTopicStore,
		logger:         logger.With("component", "topic_service"),
	}
}

// ListTopics retrieves all active topics.
func (s *TopicServiceImpl) ListTopics(ctx context.Context) ([]domain.Topic, error) {
	topics, err := s.topicStore.List(ctx)
	if err != nil {
		s.logger.Error("failed to list topics", "error", err)
		return nil, fmt.Errorf("failed to list topics: %w", err)
	}
	return topics, nil
}

// GetTopic retrieves a topic together with its active subtopics.
func (s *TopicServiceImpl) GetTopic(ctx context.Context, topicID uuid.UUID) (*TopicWithSubtopics, error) {
	topic, err := s.topicStore.GetByID(ctx, topicID)
	if err != nil {
		if errors.Is(err, store.ErrTopicNotFound) {
			return nil, ErrTopicNotFound
		}
		s.logger.Error("failed to get topic",
			"error", err,
			"topic_id", topicID)
		return nil, fmt.Errorf("failed to get topic: %w", err)
	}

	subtopics, err := s.subtopicStore.ListByTopic(ctx, topicID)
	if err != nil {
		s.logger.Error("failed to list subtopics",
			"error", err,
			"topic_id", topicID)
		return nil, fmt.Errorf("failed to list subtopics: %w", err)
	}

	return &TopicWithSubtopics{
		Topic:     *topic,
		Subtopics: subtopics,
	}, nil
}

// Subscribe adds the topic to the user's learning queue.
func (s *TopicServiceImpl) Subscribe(ctx context.Context, userID, topicID uuid.UUID, priorityOrder int) (*domain.UserTopic, error) {
	if _, err := s.topicStore.GetByID(ctx, topicID); err != nil {
		if errors.Is(err, store.ErrTopicNotFound) {
			return nil, ErrTopicNotFound
		}
		return nil, fmt.Errorf("failed to get topic: %w", err)
	}

	userTopic, err := domain.NewUserTopic(userID, topicID, priorityOrder)
	if err != nil {
		return nil, err
	}

	if err := s.userTopicStore.Create(ctx, userTopic); err != nil {
		if errors.Is(err, store.ErrUserTopicExists) {
			return nil, ErrAlreadySubscribed
		}
		s.logger.Error("failed to create subscription",
			"error", err,
			"user_id", userID,
			"topic_id", topicID)
		return nil, fmt.Errorf("failed to subscribe: %w", err)
	}

	s.logger.Info("user subscribed to topic",
		"user_id", userID,
		"topic_id", topicID,
		"priority_order", priorityOrder)
	return userTopic, nil
}

// Unsubscribe removes a subscription owned by the user.
func (s *TopicServiceImpl) Unsubscribe(ctx context.Context, userID, userTopicID uuid.UUID) error {
	subscriptions, err := s.userTopicStore.ListByUser(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to list subscriptions: %w", err)
	}

	owned := false
	for _, ut := range subscriptions {
		if ut.ID == userTopicID {
			owned = true
			break
		}
	}
	if !owned {
		return ErrSubscriptionNotFound
	}

	if err := s.userTopicStore.Delete(ctx, userTopicID); err != nil {
		if errors.Is(err, store.ErrUserTopicNotFound) {
			return ErrSubscriptionNotFound
		}
		s.logger.Error("failed to delete subscription",
			"error", err,
			"user_topic_id", userTopicID)
		return fmt.Errorf("failed to unsubscribe: %w", err)
	}

	s.logger.Info("user unsubscribed from topic",
		"user_id", userID,
		"user_topic_id", userTopicID)
	return nil
}

// ListSubscriptions retrieves the user's active subscriptions.
func (s *TopicServiceImpl) ListSubscriptions(ctx context.Context, userID uuid.UUID) ([]domain.UserTopic, error) {
	subscriptions, err := s.userTopicStore.ListByUser(ctx, userID)
	if err != nil {
		s.logger.Error("failed to list subscriptions",
			"error", err,
			"user_id", userID)
		return nil, fmt.Errorf("failed to list subscriptions: %w", err)
	}
	return subscriptions, nil
}
