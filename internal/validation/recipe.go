package validation

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

const (
	MaxTitleLength       = 255
	MaxIngredientLength  = 255
	MaxIngredients       = 100
	MaxRecipeImages      = 5
	MaxPrepTimeMinutes   = 7 * 24 * 60
	MaxCommentLength     = 10000
	MaxDescriptionLength = 20000
)

// NormalizeIngredients trims every item and drops blank ones, preserving order.
func NormalizeIngredients(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// ValidateIngredients expects an already normalized list.
func ValidateIngredients(items []string) error {
	if len(items) == 0 {
		return fmt.Errorf("at least one ingredient is required")
	}
	if len(items) > MaxIngredients {
		return fmt.Errorf("a recipe can list at most %d ingredients", MaxIngredients)
	}
	for _, item := range items {
		if utf8.RuneCountInString(item) > MaxIngredientLength {
			return fmt.Errorf("ingredient %q is too long (max %d characters)", item, MaxIngredientLength)
		}
	}
	return nil
}

func ValidateTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return fmt.Errorf("title is required")
	}
	if utf8.RuneCountInString(title) > MaxTitleLength {
		return fmt.Errorf("title must not exceed %d characters", MaxTitleLength)
	}
	return nil
}

func ValidatePrepTime(minutes int) error {
	if minutes < 0 {
		return fmt.Errorf("preparation time cannot be negative")
	}
	if minutes > MaxPrepTimeMinutes {
		return fmt.Errorf("preparation time must not exceed %d minutes", MaxPrepTimeMinutes)
	}
	return nil
}

// DedupeIDs drops zero and repeated ids, keeping first occurrences in order.
func DedupeIDs(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if id == 0 {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
