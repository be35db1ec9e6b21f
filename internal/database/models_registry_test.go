package database

import (
	"testing"

	modelspkg "cookconnect/internal/models"

	"github.com/stretchr/testify/require"
)

func TestPersistentModels_ParentsBeforeChildren(t *testing.T) {
	index := map[string]int{}
	for i, model := range PersistentModels() {
		switch model.(type) {
		case *modelspkg.User:
			index["user"] = i
		case *modelspkg.Recipe:
			index["recipe"] = i
		case *modelspkg.Comment:
			index["comment"] = i
		case *modelspkg.CommentReaction:
			index["comment_reaction"] = i
		}
	}
	require.Len(t, index, 4)
	require.Less(t, index["user"], index["recipe"])
	require.Less(t, index["recipe"], index["comment"])
	require.Less(t, index["comment"], index["comment_reaction"])
}
