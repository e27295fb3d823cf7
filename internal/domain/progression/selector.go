package progression

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/looplearn/loop-api/internal/domain"
)

// SelectionInput is the snapshot the selector works over: the user's active
// subscriptions, the catalog subtopics of those topics, and whatever
// progress states exist. Subtopics never attempted simply have no state.
type SelectionInput struct {
	UserTopics []domain.UserTopic
	Subtopics  []domain.Subtopic
	States     []domain.SubtopicProgressState
}

// SelectNext picks the single subtopic to present next, or nil when nothing
// is eligible (everything mastered and no reviews due).
//
// Priority order, highest first:
//  1. a due review (earliest next review date, then lowest order index,
//     then subtopic ID)
//  2. the lowest-order unmastered subtopic of the highest-priority
//     subscribed topic whose prerequisites are all mastered or better
//  3. the first subtopic of the next subscribed topic once the active one
//     is fully mastered (falls out of iterating subscriptions in priority
//     order)
//
// The prerequisite gate is hard: a subtopic with unmet prerequisites is
// never selectable, due review or not.
func SelectNext(input SelectionInput, now time.Time) *uuid.UUID {
	subtopicsByID := make(map[uuid.UUID]domain.Subtopic, len(input.Subtopics))
	byTopic := make(map[uuid.UUID][]domain.Subtopic)
	for _, st := range input.Subtopics {
		if !st.IsActive {
			continue
		}
		subtopicsByID[st.ID] = st
		byTopic[st.TopicID] = append(byTopic[st.TopicID], st)
	}
	for topicID := range byTopic {
		list := byTopic[topicID]
		sort.Slice(list, func(i, j int) bool { return list[i].OrderIndex < list[j].OrderIndex })
		byTopic[topicID] = list
	}

	statesBySubtopic := make(map[uuid.UUID]*domain.SubtopicProgressState, len(input.States))
	for i := range input.States {
		s := &input.States[i]
		statesBySubtopic[s.SubtopicID] = s
	}

	subscribed := make(map[uuid.UUID]bool, len(input.UserTopics))
	subscriptions := make([]domain.UserTopic, 0, len(input.UserTopics))
	for _, ut := range input.UserTopics {
		if !ut.IsActive {
			continue
		}
		subscribed[ut.TopicID] = true
		subscriptions = append(subscriptions, ut)
	}
	sort.Slice(subscriptions, func(i, j int) bool {
		return subscriptions[i].PriorityOrder < subscriptions[j].PriorityOrder
	})

	explicitPrereqsMet := func(st domain.Subtopic) bool {
		for _, prereqID := range st.Prerequisites {
			if !mastered(statesBySubtopic[prereqID]) {
				return false
			}
		}
		return true
	}

	orderingPrereqsMet := func(st domain.Subtopic) bool {
		// Every lower-order subtopic in the same topic is an implicit
		// prerequisite.
		for _, sibling := range byTopic[st.TopicID] {
			if sibling.OrderIndex >= st.OrderIndex {
				break
			}
			if !mastered(statesBySubtopic[sibling.ID]) {
				return false
			}
		}
		return true
	}

	// Priority 1: due reviews. Both gates still apply here: a lower-order
	// sibling that regressed below mastered blocks the review until it
	// recovers.
	var due *domain.SubtopicProgressState
	var dueSubtopic domain.Subtopic
	for i := range input.States {
		state := &input.States[i]
		if !state.ReviewDue(now) {
			continue
		}
		st, ok := subtopicsByID[state.SubtopicID]
		if !ok || !subscribed[st.TopicID] {
			continue
		}
		if !explicitPrereqsMet(st) || !orderingPrereqsMet(st) {
			continue
		}
		if due == nil || reviewBefore(state, st, due, dueSubtopic) {
			due = state
			dueSubtopic = st
		}
	}
	if due != nil {
		id := due.SubtopicID
		return &id
	}

	// Priority 2 and 3: sequential progression through subscriptions.
	for _, ut := range subscriptions {
		for _, st := range byTopic[ut.TopicID] {
			if mastered(statesBySubtopic[st.ID]) {
				continue
			}
			if !orderingPrereqsMet(st) {
				// Sequential ordering means nothing later in this topic is
				// reachable either.
				break
			}
			if !explicitPrereqsMet(st) {
				continue
			}
			id := st.ID
			return &id
		}
	}

	return nil
}

// mastered reports whether a progress state has reached mastered or better.
// A missing state means the subtopic was never attempted.
func mastered(state *domain.SubtopicProgressState) bool {
	return state != nil && state.MasteryLevel.AtLeast(domain.MasteryMastered)
}

// reviewBefore orders due reviews: earlier due date first, then lower
// subtopic order index, then subtopic ID so ties resolve the same way
// on every run.
func reviewBefore(
	a *domain.SubtopicProgressState, aSub domain.Subtopic,
	b *domain.SubtopicProgressState, bSub domain.Subtopic,
) bool {
	if !a.NextReviewDate.Equal(*b.NextReviewDate) {
		return a.NextReviewDate.Before(*b.NextReviewDate)
	}
	if aSub.OrderIndex != bSub.OrderIndex {
		return aSub.OrderIndex < bSub.OrderIndex
	}
	return aSub.ID.String() < bSub.ID.String()
}
