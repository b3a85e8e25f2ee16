package youtube

import (
	"fmt"
	"strings"
)

// Missing-value sentinels for video metadata fields. A field that cannot be
// located in the page data is reported as its sentinel rather than dropped,
// so downstream consumers can tell "absent" from "empty".
const (
	MissingTitle            = "MISSING_TITLE"
	MissingChannel          = "MISSING_CHANNEL"
	MissingDescription      = "MISSING_DESCRIPTION"
	MissingVideoID          = "MISSING_VIDEO_ID"
	MissingUploadDate       = "MISSING_UPLOAD_DATE"
	MissingChannelThumbnail = "MISSING_CHANNEL_THUMBNAIL"
)

// VideoInfo holds the metadata extracted from a watch page.
type VideoInfo struct {
	Title            string `json:"title"`
	Channel          string `json:"channel"`
	ChannelID        string `json:"channel_id"`
	Description      string `json:"description"`
	VideoID          string `json:"yt_id"`
	Views            uint64 `json:"views"`
	CommentCount     uint64 `json:"comment_count"`
	LikeCount        uint64 `json:"like_count"`
	VideoThumbnail   string `json:"video_thumbnail"`
	UploadDate       string `json:"upload_date"`
	ChannelThumbnail string `json:"channel_thumbnail"`
}

// Paths into ytInitialData for each metadata field. These mirror the watch
// page layout: primary info is contents[0], owner info is contents[1].
var (
	titlePath = []string{
		"contents", "twoColumnWatchNextResults", "results", "results",
		"contents", "0", "videoPrimaryInfoRenderer", "title",
	}
	viewsPath = []string{
		"contents", "twoColumnWatchNextResults", "results", "results",
		"contents", "0", "videoPrimaryInfoRenderer", "viewCount",
		"videoViewCountRenderer", "viewCount",
	}
	uploadDatePath = []string{
		"contents", "twoColumnWatchNextResults", "results", "results",
		"contents", "0", "videoPrimaryInfoRenderer", "dateText",
	}
	likesPath = []string{
		"contents", "twoColumnWatchNextResults", "results", "results",
		"contents", "0", "videoPrimaryInfoRenderer", "videoActions",
		"menuRenderer", "topLevelButtons", "0",
		"segmentedLikeDislikeButtonViewModel", "likeButtonViewModel",
		"likeButtonViewModel", "toggleButtonViewModel", "toggleButtonViewModel",
		"defaultButtonViewModel", "buttonViewModel", "accessibilityText",
	}
	channelPath = []string{
		"contents", "twoColumnWatchNextResults", "results", "results",
		"contents", "1", "videoSecondaryInfoRenderer", "owner",
		"videoOwnerRenderer", "title",
	}
	channelIDPath = []string{
		"contents", "twoColumnWatchNextResults", "results", "results",
		"contents", "1", "videoSecondaryInfoRenderer", "owner",
		"videoOwnerRenderer", "navigationEndpoint", "browseEndpoint", "browseId",
	}
	channelThumbPath = []string{
		"contents", "twoColumnWatchNextResults", "results", "results",
		"contents", "1", "videoSecondaryInfoRenderer", "owner",
		"videoOwnerRenderer", "thumbnail", "thumbnails", "0", "url",
	}
	descriptionPath = []string{
		"contents", "twoColumnWatchNextResults", "results", "results",
		"contents", "1", "videoSecondaryInfoRenderer",
		"attributedDescription", "content",
	}
	commentCountPath = []string{
		"engagementPanels", "0", "engagementPanelSectionListRenderer",
		"header", "engagementPanelTitleHeaderRenderer", "contextualInfo",
	}
	videoIDPath = []string{
		"currentVideoEndpoint", "watchEndpoint", "videoId",
	}
)

// ExtractVideoInfo pulls video metadata from a decoded ytInitialData object.
// Every field is best-effort: numeric fields default to 0 and string fields
// default to their MISSING_ sentinel. videoID is the fallback when the page
// data does not name the video itself.
func ExtractVideoInfo(initialData any, videoID string) VideoInfo {
	info := VideoInfo{
		Title:            TextOr(initialData, MissingTitle, titlePath...),
		Channel:          TextOr(initialData, MissingChannel, channelPath...),
		ChannelID:        TextOr(initialData, MissingChannelID, channelIDPath...),
		Description:      TextOr(initialData, MissingDescription, descriptionPath...),
		UploadDate:       TextOr(initialData, MissingUploadDate, uploadDatePath...),
		ChannelThumbnail: TextOr(initialData, MissingChannelThumbnail, channelThumbPath...),
	}

	info.VideoID = TextOr(initialData, "", videoIDPath...)
	if info.VideoID == "" {
		info.VideoID = videoID
	}
	if info.VideoID == "" {
		info.VideoID = MissingVideoID
	}
	if info.VideoID != MissingVideoID {
		info.VideoThumbnail = fmt.Sprintf("https://i.ytimg.com/vi/%s/hqdefault.jpg", info.VideoID)
	}

	// "1,234,567 views" - count is the first token.
	if text, ok := TextFromPath(initialData, viewsPath...); ok {
		if n, ok := ParseCount(firstToken(text)); ok {
			info.Views = n
		}
	}

	// "like this video along with 53,407 other people" - count is the
	// sixth token of the accessibility label.
	if text, ok := TextFromPath(initialData, likesPath...); ok {
		if n, ok := ParseCount(nthToken(text, 5)); ok {
			info.LikeCount = n
		}
	}

	if text, ok := TextFromPath(initialData, commentCountPath...); ok {
		if n, ok := ParseCount(text); ok {
			info.CommentCount = n
		}
	}

	return info
}

// firstToken returns the first whitespace-separated token of s.
func firstToken(s string) string {
	return nthToken(s, 0)
}

// nthToken returns the zero-based nth whitespace-separated token of s, or
// "" when s has fewer tokens.
func nthToken(s string, n int) string {
	fields := strings.Fields(s)
	if n < 0 || n >= len(fields) {
		return ""
	}
	return fields[n]
}
