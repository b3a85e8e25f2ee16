package youtube

import "strings"

// Sentinel values used when a source path is absent. Downstream consumers can
// detect incomplete records with a prefix check instead of handling nulls.
const (
	MissingChannelID     = "MISSING_CHANNEL_ID"
	MissingDisplayName   = "MISSING_DISPLAY_NAME"
	MissingThumbnail     = "MISSING_THUMBNAIL"
	MissingCommentID     = "MISSING_COMMENT_ID"
	MissingContent       = "MISSING_CONTENT"
	MissingPublishedTime = "MISSING_PUBLISHED_TIME"
)

// CommentContent is one decoded comment entity, before its place in the
// thread hierarchy is known.
type CommentContent struct {
	CommentID     string
	ChannelID     string
	VideoID       string
	DisplayName   string
	UserVerified  bool
	Thumbnail     string
	Content       string
	PublishedTime string
	LikeCount     int
	ReplyCount    int
}

// Comment is a fully placed comment record.
//
// The hierarchy is exactly two levels deep: CommentLevel is 0 for top-level
// comments and 1 for replies (the platform UI does not expose replies to
// replies). ReplyOrder restores display order among a parent's extracted
// replies, which arrive as an unordered batch.
type Comment struct {
	CommentID     string `json:"comment_id"`
	ChannelID     string `json:"channel_id"`
	VideoID       string `json:"video_id"`
	DisplayName   string `json:"display_name"`
	UserVerified  bool   `json:"user_verified"`
	Thumbnail     string `json:"thumbnail"`
	Content       string `json:"content"`
	PublishedTime string `json:"published_time"`
	LikeCount     int    `json:"like_count"`
	ReplyCount    int    `json:"reply_count"`
	CommentLevel  int    `json:"comment_level"`
	ReplyTo       string `json:"reply_to"`
	ReplyOrder    int    `json:"reply_order"`
}

// TopLevelComment builds a level-0 Comment from decoded content.
func TopLevelComment(c CommentContent) Comment {
	return newComment(c, 0, "", 0)
}

// ReplyComment builds a level-1 Comment linked to its parent. order is the
// 1-based position among the parent's successfully decoded replies.
func ReplyComment(c CommentContent, parentID string, order int) Comment {
	return newComment(c, 1, parentID, order)
}

func newComment(c CommentContent, level int, replyTo string, order int) Comment {
	return Comment{
		CommentID:     c.CommentID,
		ChannelID:     c.ChannelID,
		VideoID:       c.VideoID,
		DisplayName:   c.DisplayName,
		UserVerified:  c.UserVerified,
		Thumbnail:     c.Thumbnail,
		Content:       c.Content,
		PublishedTime: c.PublishedTime,
		LikeCount:     c.LikeCount,
		ReplyCount:    c.ReplyCount,
		CommentLevel:  level,
		ReplyTo:       replyTo,
		ReplyOrder:    order,
	}
}

// ParseBoolLenient parses the tolerant boolean forms the platform emits in
// entity payloads. Accepts true/yes/y/1/on and false/no/n/0/off,
// case-insensitively. Anything else yields (false, false).
func ParseBoolLenient(value string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "true", "yes", "y", "1", "on":
		return true, true
	case "false", "no", "n", "0", "off":
		return false, true
	}
	return false, false
}
