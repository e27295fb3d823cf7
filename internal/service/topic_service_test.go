package service

import (
	"context"
	"database/sql"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/looplearn/loop-api/internal/domain"
	"github.com/looplearn/loop-api/internal/store"
)

type fakeTopicStore struct {
	topics map[uuid.UUID]domain.Topic
}

func (f *fakeTopicStore) Create(_ context.Context, topic *domain.Topic) error {
	f.topics[topic.ID] = *topic
	return nil
}

func (f *fakeTopicStore) GetByID(_ context.Context, id uuid.UUID) (*domain.Topic, error) {
	topic, ok := f.topics[id]
	if !ok {
		return nil, store.ErrTopicNotFound
	}
	return &topic, nil
}

func (f *fakeTopicStore) List(context.Context) ([]domain.Topic, error) {
	var topics []domain.Topic
	for _, topic := range f.topics {
		topics = append(topics, topic)
	}
	sort.Slice(topics, func(i, j int) bool { return topics[i].Name < topics[j].Name })
	return topics, nil
}

func (f *fakeTopicStore) Update(context.Context, *domain.Topic) error { return nil }
func (f *fakeTopicStore) WithTx(*sql.Tx) store.TopicStore             { return f }

type fakeSubtopicCatalog struct {
	subtopics map[uuid.UUID]domain.Subtopic
}

func (f *fakeSubtopicCatalog) Create(_ context.Context, subtopic *domain.Subtopic) error {
	f.subtopics[subtopic.ID] = *subtopic
	return nil
}

func (f *fakeSubtopicCatalog) GetByID(_ context.Context, id uuid.UUID) (*domain.Subtopic, error) {
	subtopic, ok := f.subtopics[id]
	if !ok {
		return nil, store.ErrSubtopicNotFound
	}
	return &subtopic, nil
}

func (f *fakeSubtopicCatalog) ListByTopic(_ context.Context, topicID uuid.UUID) ([]domain.Subtopic, error) {
	var result []domain.Subtopic
	for _, subtopic := range f.subtopics {
		if subtopic.TopicID == topicID {
			result = append(result, subtopic)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].OrderIndex < result[j].OrderIndex })
	return result, nil
}

func (f *fakeSubtopicCatalog) ListByTopics(ctx context.Context, topicIDs []uuid.UUID) ([]domain.Subtopic, error) {
	var result []domain.Subtopic
	for _, topicID := range topicIDs {
		subtopics, _ := f.ListByTopic(ctx, topicID)
		result = append(result, subtopics...)
	}
	return result, nil
}

func (f *fakeSubtopicCatalog) WithTx(*sql.Tx) store.SubtopicStore { return f }

type fakeSubscriptionStore struct {
	subscriptions map[uuid.UUID]domain.UserTopic
}

func (f *fakeSubscriptionStore) Create(_ context.Context, userTopic *domain.UserTopic) error {
	for _, existing := range f.subscriptions {
		if existing.UserID == userTopic.UserID && existing.TopicID == userTopic.TopicID {
			return store.ErrUserTopicExists
		}
	}
	f.subscriptions[userTopic.ID] = *userTopic
	return nil
}

func (f *fakeSubscriptionStore) ListByUser(_ context.Context, userID uuid.UUID) ([]domain.UserTopic, error) {
	var result []domain.UserTopic
	for _, ut := range f.subscriptions {
		if ut.UserID == userID {
			result = append(result, ut)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].PriorityOrder < result[j].PriorityOrder })
	return result, nil
}

func (f *fakeSubscriptionStore) ListActiveUserIDs(context.Context) ([]uuid.UUID, error) {
	seen := make(map[uuid.UUID]bool)
	var ids []uuid.UUID
	for _, ut := range f.subscriptions {
		if ut.IsActive && !seen[ut.UserID] {
			seen[ut.UserID] = true
			ids = append(ids, ut.UserID)
		}
	}
	return ids, nil
}

func (f *fakeSubscriptionStore) Update(context.Context, *domain.UserTopic) error { return nil }

func (f *fakeSubscriptionStore) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := f.subscriptions[id]; !ok {
		return store.ErrUserTopicNotFound
	}
	delete(f.subscriptions, id)
	return nil
}

func (f *fakeSubscriptionStore) WithTx(*sql.Tx) store.UserTopicStore { return f }

type topicFixture struct {
	service   *TopicServiceImpl
	topics    *fakeTopicStore
	subs      *fakeSubscriptionStore
	topicID   uuid.UUID
	subtopics []uuid.UUID
}

func newTopicFixture(t *testing.T) *topicFixture {
	t.Helper()

	topics := &fakeTopicStore{topics: make(map[uuid.UUID]domain.Topic)}
	catalog := &fakeSubtopicCatalog{subtopics: make(map[uuid.UUID]domain.Subtopic)}
	subs := &fakeSubscriptionStore{subscriptions: make(map[uuid.UUID]domain.UserTopic)}

	topicID := uuid.New()
	topics.topics[topicID] = domain.Topic{
		ID:        topicID,
		Name:      "Distributed Systems",
		Category:  "engineering",
		IsActive:  true,
		CreatedAt: time.Now().UTC(),
	}

	var subtopicIDs []uuid.UUID
	for i, name := range []string{"Consensus", "Replication"} {
		id := uuid.New()
		catalog.subtopics[id] = domain.Subtopic{
			ID:                  id,
			TopicID:             topicID,
			Name:                name,
			OrderIndex:          i,
			ExpectedTimeMinutes: 30,
			IsActive:            true,
		}
		subtopicIDs = append(subtopicIDs, id)
	}

	return &topicFixture{
		service:   NewTopicService(topics, catalog, subs, nil),
		topics:    topics,
		subs:      subs,
		topicID:   topicID,
		subtopics: subtopicIDs,
	}
}

func TestGetTopicWithSubtopics(t *testing.T) {
	t.Parallel()

	fx := newTopicFixture(t)
	ctx := context.Background()

	result, err := fx.service.GetTopic(ctx, fx.topicID)
	require.NoError(t, err)
	assert.Equal(t, "Distributed Systems", result.Topic.Name)
	require.Len(t, result.Subtopics, 2)
	assert.Equal(t, "Consensus", result.Subtopics[0].Name, "subtopics must come back in curriculum order")
	assert.Equal(t, "Replication", result.Subtopics[1].Name)

	_, err = fx.service.GetTopic(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrTopicNotFound)
}

func TestSubscribe(t *testing.T) {
	t.Parallel()

	fx := newTopicFixture(t)
	ctx := context.Background()
	userID := uuid.New()

	userTopic, err := fx.service.Subscribe(ctx, userID, fx.topicID, 1)
	require.NoError(t, err)
	assert.Equal(t, userID, userTopic.UserID)
	assert.Equal(t, fx.topicID, userTopic.TopicID)
	assert.True(t, userTopic.IsActive)

	_, err = fx.service.Subscribe(ctx, userID, fx.topicID, 2)
	assert.ErrorIs(t, err, ErrAlreadySubscribed)

	_, err = fx.service.Subscribe(ctx, userID, uuid.New(), 1)
	assert.ErrorIs(t, err, ErrTopicNotFound)
}

func TestUnsubscribe(t *testing.T) {
	t.Parallel()

	fx := newTopicFixture(t)
	ctx := context.Background()
	userID := uuid.New()

	userTopic, err := fx.service.Subscribe(ctx, userID, fx.topicID, 1)
	require.NoError(t, err)

	// Another user cannot remove someone else's subscription.
	err = fx.service.Unsubscribe(ctx, uuid.New(), userTopic.ID)
	assert.ErrorIs(t, err, ErrSubscriptionNotFound)

	err = fx.service.Unsubscribe(ctx, userID, userTopic.ID)
	require.NoError(t, err)

	err = fx.service.Unsubscribe(ctx, userID, userTopic.ID)
	assert.ErrorIs(t, err, ErrSubscriptionNotFound)
}

func TestListSubscriptionsOrdering(t *testing.T) {
	t.Parallel()

	fx := newTopicFixture(t)
	ctx := context.Background()
	userID := uuid.New()

	secondID := uuid.New()
	fx.topics.topics[secondID] = domain.Topic{
		ID:       secondID,
		Name:     "Spanish Grammar",
		IsActive: true,
	}

	_, err := fx.service.Subscribe(ctx, userID, secondID, 2)
	require.NoError(t, err)
	_, err = fx.service.Subscribe(ctx, userID, fx.topicID, 1)
	require.NoError(t, err)

	subscriptions, err := fx.service.ListSubscriptions(ctx, userID)
	require.NoError(t, err)
	require.Len(t, subscriptions, 2)
	assert.Equal(t, fx.topicID, subscriptions[0].TopicID, "lower priority order comes first")
	assert.Equal(t, secondID, subscriptions[1].TopicID)
}
