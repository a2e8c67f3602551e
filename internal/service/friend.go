package service

import (
	"context"
	"slices"
	"time"

	"valorant-hub/internal/constants"
	"valorant-hub/internal/domain"
	"valorant-hub/internal/quest"
)

func (s *PlayerService) SendFriendRequest(ctx context.Context, actorID, targetID string) error {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	if actorID == targetID {
		return ErrCannotFriendSelf
	}

	actor, err := s.players.Get(ctx, actorID)
	if err != nil {
		return err
	}
	target, err := s.players.Get(ctx, targetID)
	if err != nil {
		return err
	}

	if slices.Contains(actor.Friends, targetID) {
		return ErrAlreadyFriends
	}
	for _, req := range target.FriendRequests {
		if req.FromID == actorID {
			return ErrRequestPending
		}
	}

	target.FriendRequests = append(target.FriendRequests, domain.FriendRequest{
		FromID:    actorID,
		ToID:      targetID,
		Timestamp: time.Now(),
	})
	if err := s.players.Upsert(ctx, target); err != nil {
		return err
	}

	s.logger.Info().Str("from", actorID).Str("to", targetID).Msg("friend request sent")
	return nil
}

// AcceptFriendRequest links both players and removes the pending
// request. The ADD_FRIEND quest counts each friend at most once, even
// across remove/re-add cycles.
func (s *PlayerService) AcceptFriendRequest(ctx context.Context, actorID, fromID string) error {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	actor, err := s.players.Get(ctx, actorID)
	if err != nil {
		return err
	}
	if !removeRequest(actor, fromID) {
		return ErrNoSuchRequest
	}

	sender, err := s.players.Get(ctx, fromID)
	if err != nil {
		return err
	}

	if !slices.Contains(actor.Friends, fromID) {
		actor.Friends = append(actor.Friends, fromID)
	}
	if !slices.Contains(sender.Friends, actorID) {
		sender.Friends = append(sender.Friends, actorID)
	}

	countFriendQuest(actor, fromID)
	countFriendQuest(sender, actorID)

	if err := s.players.Upsert(ctx, actor); err != nil {
		return err
	}
	if err := s.players.Upsert(ctx, sender); err != nil {
		return err
	}

	s.logger.Info().Str("player_id", actorID).Str("friend_id", fromID).Msg("friend request accepted")
	return nil
}

func (s *PlayerService) RejectFriendRequest(ctx context.Context, actorID, fromID string) error {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	actor, err := s.players.Get(ctx, actorID)
	if err != nil {
		return err
	}
	if !removeRequest(actor, fromID) {
		return ErrNoSuchRequest
	}
	return s.players.Upsert(ctx, actor)
}

func (s *PlayerService) RemoveFriend(ctx context.Context, actorID, friendID string) error {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	actor, err := s.players.Get(ctx, actorID)
	if err != nil {
		return err
	}
	friend, err := s.players.Get(ctx, friendID)
	if err != nil {
		return err
	}

	actor.Friends = slices.DeleteFunc(actor.Friends, func(id string) bool { return id == friendID })
	friend.Friends = slices.DeleteFunc(friend.Friends, func(id string) bool { return id == actorID })

	if err := s.players.Upsert(ctx, actor); err != nil {
		return err
	}
	return s.players.Upsert(ctx, friend)
}

func removeRequest(p *domain.Player, fromID string) bool {
	before := len(p.FriendRequests)
	p.FriendRequests = slices.DeleteFunc(p.FriendRequests, func(r domain.FriendRequest) bool {
		return r.FromID == fromID
	})
	return len(p.FriendRequests) != before
}

func countFriendQuest(p *domain.Player, friendID string) {
	if slices.Contains(p.FriendQuestCountedIDs, friendID) {
		return
	}
	p.FriendQuestCountedIDs = append(p.FriendQuestCountedIDs, friendID)
	p.ActiveQuests = quest.RecordProgress(p.ActiveQuests, domain.QuestAddFriend, 1, nil)
}
