package repositories

import (
	"fmt"
	"strings"

	"github.com/mama165/sdk-go/database"
)

// InspectMapper renders stored messages and stories in the Badger debug inspector.
func InspectMapper(key string, val []byte) database.InspectRow {
	row := database.DefaultMapper(key, val)

	switch {
	case strings.HasPrefix(key, "msg:"):
		message, err := DecodeMessage(val)
		if err != nil {
			row.Detail = "Error: decode failed"
			return row
		}
		row.Type = "MESSAGE"
		row.Detail = fmt.Sprintf("%s -> %s [%s] %s", message.SenderID, message.ReceiverID, message.Status, message.Content)
	case strings.HasPrefix(key, storyPrefix):
		story, err := DecodeStory(val)
		if err != nil {
			row.Detail = "Error: decode failed"
			return row
		}
		row.Type = "STORY"
		row.Detail = fmt.Sprintf("%s %s expires %s (%d views)", story.UserID, story.MediaURL,
			story.ExpiresAt().Format("2006-01-02 15:04:05"), len(story.Views))
	case strings.HasPrefix(key, "conv:"):
		row.Type = "INDEX"
	}
	return row
}
