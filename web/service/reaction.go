package service

import (
	"errors"
	"strings"

	"github.com/tandr/homehub/database"
	"github.com/tandr/homehub/database/model"
	"github.com/tandr/homehub/logger"

	"gorm.io/gorm"
)

var (
	ErrBadKind         = errors.New("bad kind")
	ErrBadAction       = errors.New("bad action")
	ErrCommentNotFound = errors.New("not found")
)

// ReactionState is the outcome of a toggle or a per-comment summary. Counts
// are always counted live from the ledger, never cached.
type ReactionState struct {
	Likes        int
	Dislikes     int
	UserReaction *string // "like", "dislike" or nil
}

// ReactionService keeps at most one reaction row per (kind, comment, user).
// Posting the same action twice clears it, posting the opposite flips it.
// Both comment kinds share one ledger via the kind discriminator.
type ReactionService struct{}

// Toggle applies one like/dislike action for a user and returns the fresh
// aggregate counts plus the user's resulting state. The toggle is
// idempotent-safe under rapid repeated clicks: a racing duplicate insert
// trips the unique index and is retried as an update/delete.
func (s *ReactionService) Toggle(kind string, commentId int, userId int, action string) (*ReactionState, error) {
	if kind != model.KindTrip && kind != model.KindItem {
		return nil, ErrBadKind
	}

	var value int
	switch strings.ToLower(action) {
	case "like":
		value = model.ReactionLike
	case "dislike":
		value = model.ReactionDislike
	default:
		return nil, ErrBadAction
	}

	exists, err := s.CommentExists(kind, commentId)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrCommentNotFound
	}

	db := database.GetDB()

	userReaction, err := s.apply(db, kind, commentId, userId, value)
	if err != nil {
		return nil, err
	}

	likes, dislikes, err := s.count(kind, commentId)
	if err != nil {
		return nil, err
	}
	return &ReactionState{Likes: likes, Dislikes: dislikes, UserReaction: reactionName(userReaction)}, nil
}

// apply runs one transition of the toggle state machine and returns the
// user's resulting value (0 means no reaction).
func (s *ReactionService) apply(db *gorm.DB, kind string, commentId, userId, value int) (int, error) {
	record := &model.CommentReaction{}
	err := db.Model(model.CommentReaction{}).
		Where("kind = ? AND comment_id = ? AND user_id = ?", kind, commentId, userId).
		First(record).
		Error

	if database.IsNotFound(err) {
		record = &model.CommentReaction{
			Kind:      kind,
			CommentId: commentId,
			UserId:    userId,
			Value:     value,
		}
		err = db.Create(record).Error
		if err == nil {
			return value, nil
		}
		if !isUniqueViolation(err) {
			return 0, err
		}
		// Lost an insert race against ourselves; the row exists now, so
		// re-read and take the update/delete branch instead.
		logger.Debug("reaction insert race, retrying as update:", err)
		if err := db.Model(model.CommentReaction{}).
			Where("kind = ? AND comment_id = ? AND user_id = ?", kind, commentId, userId).
			First(record).
			Error; err != nil {
			return 0, err
		}
	} else if err != nil {
		return 0, err
	}

	if record.Value == value {
		// Same action twice cancels the reaction.
		if err := db.Delete(record).Error; err != nil {
			return 0, err
		}
		return 0, nil
	}

	// Opposite action flips the existing row.
	record.Value = value
	if err := db.Save(record).Error; err != nil {
		return 0, err
	}
	return value, nil
}

// Summaries hydrates reaction counts and the caller's own reaction for a
// set of comments of one kind.
func (s *ReactionService) Summaries(kind string, commentIds []int, userId int) (map[int]ReactionState, error) {
	states := make(map[int]ReactionState, len(commentIds))
	if len(commentIds) == 0 {
		return states, nil
	}
	if kind != model.KindTrip && kind != model.KindItem {
		return nil, ErrBadKind
	}

	db := database.GetDB()

	var rows []model.CommentReaction
	err := db.Model(model.CommentReaction{}).
		Where("kind = ? AND comment_id IN ?", kind, commentIds).
		Find(&rows).
		Error
	if err != nil {
		return nil, err
	}

	for _, row := range rows {
		state := states[row.CommentId]
		switch row.Value {
		case model.ReactionLike:
			state.Likes++
		case model.ReactionDislike:
			state.Dislikes++
		}
		if row.UserId == userId {
			state.UserReaction = reactionName(row.Value)
		}
		states[row.CommentId] = state
	}
	return states, nil
}

// DeleteFor removes every reaction of one kind for the given comment ids,
// used when a comment or its parent goes away.
func (s *ReactionService) DeleteFor(kind string, commentIds []int) error {
	if len(commentIds) == 0 {
		return nil
	}
	return database.GetDB().
		Where("kind = ? AND comment_id IN ?", kind, commentIds).
		Delete(&model.CommentReaction{}).
		Error
}

// CommentExists reports whether the target comment of that kind is present.
func (s *ReactionService) CommentExists(kind string, commentId int) (bool, error) {
	db := database.GetDB()

	var count int64
	var err error
	if kind == model.KindTrip {
		err = db.Model(model.Comment{}).Where("id = ?", commentId).Count(&count).Error
	} else {
		err = db.Model(model.ItemComment{}).Where("id = ?", commentId).Count(&count).Error
	}
	return count > 0, err
}

func (s *ReactionService) count(kind string, commentId int) (int, int, error) {
	db := database.GetDB()

	var likes, dislikes int64
	err := db.Model(model.CommentReaction{}).
		Where("kind = ? AND comment_id = ? AND value = ?", kind, commentId, model.ReactionLike).
		Count(&likes).
		Error
	if err != nil {
		return 0, 0, err
	}
	err = db.Model(model.CommentReaction{}).
		Where("kind = ? AND comment_id = ? AND value = ?", kind, commentId, model.ReactionDislike).
		Count(&dislikes).
		Error
	if err != nil {
		return 0, 0, err
	}
	return int(likes), int(dislikes), nil
}

func reactionName(value int) *string {
	var name string
	switch value {
	case model.ReactionLike:
		name = "like"
	case model.ReactionDislike:
		name = "dislike"
	default:
		return nil
	}
	return &name
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
