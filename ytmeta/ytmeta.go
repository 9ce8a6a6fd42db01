// Package ytmeta looks up display metadata for a YouTube video id via the
// YouTube Data API v3, used by the "save" CLI subcommand to title tracks
// ingested from a video source instead of a bare filename. A lookup
// failure degrades to the caller falling back on the filename; it is
// never treated as fatal to ingestion.
package ytmeta

import (
	"context"
	"fmt"

	"google.golang.org/api/option"
	youtube "google.golang.org/api/youtube/v3"
)

// VideoInfo is the subset of a video's snippet this package exposes.
type VideoInfo struct {
	Title   string
	Channel string
}

// Client wraps a YouTube Data API v3 service handle.
type Client struct {
	svc *youtube.Service
}

// New constructs a Client authorized with apiKey.
func New(ctx context.Context, apiKey string) (*Client, error) {
	svc, err := youtube.NewService(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create youtube client: %w", err)
	}
	return &Client{svc: svc}, nil
}

// Lookup fetches title and channel name for videoID.
func (c *Client) Lookup(ctx context.Context, videoID string) (*VideoInfo, error) {
	call := c.svc.Videos.List([]string{"snippet"}).Id(videoID).Context(ctx)
	resp, err := call.Do()
	if err != nil {
		return nil, fmt.Errorf("youtube videos.list failed for %q: %w", videoID, err)
	}
	if len(resp.Items) == 0 {
		return nil, fmt.Errorf("no youtube video found for id %q", videoID)
	}

	snippet := resp.Items[0].Snippet
	return &VideoInfo{Title: snippet.Title, Channel: snippet.ChannelTitle}, nil
}
