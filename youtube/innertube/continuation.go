package innertube

import (
	"encoding/base64"

	"ytcomments/youtube"
)

// initialTokenPath locates the comments-section continuation token in the
// engagement panels of a freshly rendered watch page.
var initialTokenPath = []string{
	"engagementPanels", "0", "engagementPanelSectionListRenderer",
	"content", "sectionListRenderer", "contents", "0",
	"itemSectionRenderer", "contents", "0",
	"continuationItemRenderer", "continuationEndpoint",
	"continuationCommand", "token",
}

// InitialContinuationToken returns the token that starts comment pagination
// for a watch page. When the page render omitted the comments section, a
// synthetic token is fabricated from the video ID; the second return value
// reports which path was taken.
func InitialContinuationToken(initialData any, videoID string) (string, bool) {
	if token, ok := youtube.TextFromPath(initialData, initialTokenPath...); ok && token != "" {
		return token, false
	}
	return SyntheticToken(videoID), true
}

// SyntheticToken fabricates a comments-section continuation token for a
// video ID. The byte layout reproduces the protobuf framing the page itself
// would have embedded; the API accepts it interchangeably.
func SyntheticToken(videoID string) string {
	raw := "\x12\r\x12\x0b" + videoID + "\x18\x062'\"\\x11\"\x0b" + videoID + "0\x00x\x020\x00B\x10comments-section"
	return base64.StdEncoding.EncodeToString([]byte(raw))
}

// ContinuationItems returns the list of continuation items from a response
// document. The container moves depending on where in a pagination run the
// request sits: the first response reloads the section, later responses
// append to it.
func ContinuationItems(data map[string]any, requestCount int) ([]any, bool) {
	var path []string
	if requestCount == 1 {
		path = []string{
			"onResponseReceivedEndpoints", "1",
			"reloadContinuationItemsCommand", "continuationItems",
		}
	} else {
		path = []string{
			"onResponseReceivedEndpoints", "0",
			"appendContinuationItemsAction", "continuationItems",
		}
	}
	v, ok := youtube.FromPath(data, path...)
	if !ok {
		return nil, false
	}
	items, ok := v.([]any)
	return items, ok
}

// NextContinuationToken extracts the token for the next page from a response
// document. The token renderer sits at the tail of the item list, so the
// scan runs in reverse. An empty return means pagination is complete.
func NextContinuationToken(data map[string]any, requestCount int) string {
	items, ok := ContinuationItems(data, requestCount)
	if !ok {
		return ""
	}
	for i := len(items) - 1; i >= 0; i-- {
		token, ok := youtube.TextFromPath(items[i],
			"continuationItemRenderer", "continuationEndpoint",
			"continuationCommand", "token")
		if ok && token != "" {
			return token
		}
	}
	return ""
}
