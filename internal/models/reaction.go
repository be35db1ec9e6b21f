package models

import (
	"strings"
	"time"
)

// ReactionType is the kind of reaction a user leaves on a recipe or comment.
type ReactionType string

const (
	ReactionLike    ReactionType = "like"
	ReactionDislike ReactionType = "dislike"
)

// ParseReactionType validates raw client input.
func ParseReactionType(s string) (ReactionType, bool) {
	switch ReactionType(strings.ToLower(strings.TrimSpace(s))) {
	case ReactionLike:
		return ReactionLike, true
	case ReactionDislike:
		return ReactionDislike, true
	}
	return "", false
}

// RecipeReaction holds at most one row per (user, recipe).
type RecipeReaction struct {
	ID           uint         `gorm:"primaryKey" json:"id"`
	UserID       uint         `gorm:"not null;uniqueIndex:idx_recipe_reactions_user_recipe" json:"user_id"`
	RecipeID     uint         `gorm:"not null;uniqueIndex:idx_recipe_reactions_user_recipe;index" json:"recipe_id"`
	ReactionType ReactionType `gorm:"size:16;not null" json:"reaction_type"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

// CommentReaction holds at most one row per (user, comment).
type CommentReaction struct {
	ID           uint         `gorm:"primaryKey" json:"id"`
	UserID       uint         `gorm:"not null;uniqueIndex:idx_comment_reactions_user_comment" json:"user_id"`
	CommentID    uint         `gorm:"not null;uniqueIndex:idx_comment_reactions_user_comment;index" json:"comment_id"`
	ReactionType ReactionType `gorm:"size:16;not null" json:"reaction_type"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

// ReactionState is the per (user, target) state of the toggle machine.
type ReactionState int

const (
	NoReaction ReactionState = iota
	Liked
	Disliked
)

func (s ReactionState) String() string {
	switch s {
	case Liked:
		return "liked"
	case Disliked:
		return "disliked"
	default:
		return "none"
	}
}

// ReactionAction is the storage operation a transition requires.
type ReactionAction string

const (
	ReactionAdded   ReactionAction = "added"
	ReactionRemoved ReactionAction = "removed"
	ReactionUpdated ReactionAction = "updated"
)

// StateOf converts a stored reaction (nil for none) into a state.
func StateOf(t *ReactionType) ReactionState {
	if t == nil {
		return NoReaction
	}
	return stateFor(*t)
}

func stateFor(t ReactionType) ReactionState {
	switch t {
	case ReactionLike:
		return Liked
	case ReactionDislike:
		return Disliked
	}
	return NoReaction
}

// Type returns the stored reaction for s, or nil for NoReaction.
func (s ReactionState) Type() *ReactionType {
	var t ReactionType
	switch s {
	case Liked:
		t = ReactionLike
	case Disliked:
		t = ReactionDislike
	default:
		return nil
	}
	return &t
}

// Toggle applies a requested reaction. Requesting the current reaction clears
// it, requesting the other one switches in place, and from NoReaction the
// requested reaction is added.
func (s ReactionState) Toggle(requested ReactionType) (ReactionState, ReactionAction) {
	target := stateFor(requested)
	switch {
	case s == NoReaction:
		return target, ReactionAdded
	case s == target:
		return NoReaction, ReactionRemoved
	default:
		return target, ReactionUpdated
	}
}
