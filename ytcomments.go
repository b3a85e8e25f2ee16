package ytcomments

import (
	"context"

	ythttp "ytcomments/http"
	"ytcomments/youtube"
	"ytcomments/youtube/innertube"
)

// FetchComments extracts the full comment thread for a video using the
// anonymous continuation engine with default settings.
func FetchComments(ctx context.Context, videoID string) (*youtube.CommentResult, error) {
	client := ythttp.New(nil)
	defer client.Close()

	lister := innertube.NewCommentLister(client)
	return lister.Comments(ctx, videoID, nil)
}

// FetchVideoInfo extracts video metadata from a watch page.
func FetchVideoInfo(ctx context.Context, videoID string) (*youtube.VideoInfo, error) {
	client := ythttp.New(nil)
	defer client.Close()

	fetcher := youtube.NewPageFetcher(client)
	page, err := fetcher.Fetch(ctx, videoID)
	if err != nil {
		return nil, err
	}
	info := youtube.ExtractVideoInfo(page.InitialData, videoID)
	return &info, nil
}

// FetchAll extracts both metadata and the full comment thread from a single
// watch page fetch.
func FetchAll(ctx context.Context, videoID string) (*youtube.VideoInfo, *youtube.CommentResult, error) {
	client := ythttp.New(nil)
	defer client.Close()

	fetcher := youtube.NewPageFetcher(client)
	page, err := fetcher.Fetch(ctx, videoID)
	if err != nil {
		return nil, nil, err
	}
	info := youtube.ExtractVideoInfo(page.InitialData, videoID)

	lister := innertube.NewCommentLister(client, innertube.WithPageFetcher(fetcher))
	result, err := lister.GetComments(ctx, page.InitialData, page.ClientConfig, videoID, nil)
	if err != nil {
		return &info, nil, err
	}
	return &info, result, nil
}
