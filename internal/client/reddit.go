package client

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"
)

// RedditClient reads public subreddit listings
type RedditClient struct {
	*baseClient
}

// NewRedditClient creates a Reddit listing client
func NewRedditClient(baseURL string, opts Options) *RedditClient {
	return &RedditClient{baseClient: newBaseClient("reddit", baseURL, opts)}
}

type redditListing struct {
	Data struct {
		Children []struct {
			Data struct {
				Title       string  `json:"title"`
				SelfText    string  `json:"selftext"`
				Score       int     `json:"score"`
				NumComments int     `json:"num_comments"`
				CreatedUTC  float64 `json:"created_utc"`
			} `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

// RedditPost is one listing entry
type RedditPost struct {
	Title       string
	Body        string
	Score       int
	NumComments int
	CreatedAt   time.Time
}

// FetchHot returns up to limit hot posts of a subreddit
func (c *RedditClient) FetchHot(ctx context.Context, subreddit string, limit int) ([]RedditPost, error) {
	if subreddit == "" {
		return nil, fmt.Errorf("subreddit is required")
	}
	if limit <= 0 {
		limit = 25
	}

	params := url.Values{}
	params.Set("limit", strconv.Itoa(limit))

	var listing redditListing
	if err := c.getJSON(ctx, "/r/"+url.PathEscape(subreddit)+"/hot.json", params, nil, &listing); err != nil {
		return nil, fmt.Errorf("failed to fetch r/%s: %w", subreddit, err)
	}

	posts := make([]RedditPost, 0, len(listing.Data.Children))
	for _, child := range listing.Data.Children {
		d := child.Data
		posts = append(posts, RedditPost{
			Title:       d.Title,
			Body:        d.SelfText,
			Score:       d.Score,
			NumComments: d.NumComments,
			CreatedAt:   time.Unix(int64(d.CreatedUTC), 0).UTC(),
		})
	}
	return posts, nil
}
