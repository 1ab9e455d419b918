package store

import (
	"sort"

	"github.com/ahmetcoskunkizilkaya/buildforge-backend/internal/models"
)

// SortPostsNewestFirst orders posts by creation time descending, breaking
// ties by id so repeated reads are stable.
func SortPostsNewestFirst(posts []models.Post) {
	sort.SliceStable(posts, func(i, j int) bool {
		if !posts[i].CreatedAt.Equal(posts[j].CreatedAt) {
			return posts[i].CreatedAt.After(posts[j].CreatedAt)
		}
		return posts[i].ID < posts[j].ID
	})
}

// SortMessagesOldestFirst orders messages chronologically.
func SortMessagesOldestFirst(msgs []models.Message) {
	sort.SliceStable(msgs, func(i, j int) bool {
		if !msgs[i].Timestamp.Equal(msgs[j].Timestamp) {
			return msgs[i].Timestamp.Before(msgs[j].Timestamp)
		}
		return msgs[i].ID < msgs[j].ID
	})
}
