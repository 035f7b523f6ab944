// Package telegram reads posts from the public web preview of a channel
// (t.me/s/<channel>) so that history can be backfilled through ingestion.
package telegram

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	infraerrors "github.com/Hosseinjeff/Wholesale-project/infrastructure/errors"
	infrahttp "github.com/Hosseinjeff/Wholesale-project/infrastructure/http"
	"github.com/Hosseinjeff/Wholesale-project/infrastructure/logger"
	"github.com/Hosseinjeff/Wholesale-project/infrastructure/retry"
	"github.com/Hosseinjeff/Wholesale-project/internal/ingest"
	"github.com/PuerkitoBio/goquery"
)

const (
	defaultBaseURL      = "https://t.me/s/"
	defaultTimeout      = 15 * time.Second
	defaultUserAgent    = "wholesale-extractor/1.0"
	maxResponseBodySize = 4 << 20
)

// ErrChannelNotFound is returned when the preview page has no posts section.
var ErrChannelNotFound = errors.New("channel preview not available")

// Config configures the reader.
type Config struct {
	BaseURL   string
	Timeout   time.Duration
	UserAgent string
	Retry     retry.Config
}

// Post is one message scraped from the preview.
type Post struct {
	// Channel is the username taken from the post reference.
	Channel string
	// Title is the channel display name.
	Title     string
	ID        int
	Author    string
	Text      string
	Date      time.Time
	URL       string
	Forwarded string
	HasMedia  bool
	MediaType string
}

// Page is one preview page, newest post last.
type Page struct {
	Title string
	Posts []Post
}

// Reader fetches preview pages.
type Reader struct {
	client    *http.Client
	baseURL   string
	userAgent string
	retry     retry.Config
	log       logger.Logger
}

// NewReader creates a reader.
func NewReader(cfg Config, log logger.Logger) *Reader {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if !strings.HasSuffix(cfg.BaseURL, "/") {
		cfg.BaseURL += "/"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaultUserAgent
	}
	if log == nil {
		log = logger.NewNop()
	}
	cfg.Retry.IsRetryable = func(err error) bool {
		return infraerrors.IsTemporary(err) || retry.IsTransient(err)
	}

	return &Reader{
		client:    infrahttp.NewClient(infrahttp.ClientConfig{Timeout: cfg.Timeout}),
		baseURL:   cfg.BaseURL,
		userAgent: cfg.UserAgent,
		retry:     cfg.Retry,
		log:       log.With(logger.Component("telegram")),
	}
}

// Fetch returns the page of posts older than before. before <= 0 fetches the
// latest page.
func (r *Reader) Fetch(ctx context.Context, channel string, before int) (Page, error) {
	channel = strings.TrimPrefix(strings.TrimSpace(channel), "@")
	pageURL := r.baseURL + url.PathEscape(channel)
	if before > 0 {
		pageURL += "?before=" + strconv.Itoa(before)
	}

	var body []byte
	err := retry.Do(ctx, r.retry, func(ctx context.Context) error {
		var fetchErr error
		body, fetchErr = r.get(ctx, pageURL)
		return fetchErr
	})
	if err != nil {
		return Page{}, err
	}
	return Parse(channel, body)
}

func (r *Reader) get(ctx context.Context, pageURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", r.userAgent)

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrChannelNotFound
	}
	if err = infraerrors.CheckResponse(resp); err != nil {
		return nil, err
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBodySize))
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}
	return body, nil
}

// Backfill walks pages backwards until limit posts are collected or the
// channel history ends. Posts are returned oldest first.
func (r *Reader) Backfill(ctx context.Context, channel string, limit int) ([]Post, error) {
	var (
		posts  []Post
		before int
	)
	for limit <= 0 || len(posts) < limit {
		page, err := r.Fetch(ctx, channel, before)
		if err != nil {
			return nil, err
		}
		if len(page.Posts) == 0 {
			break
		}
		oldest := page.Posts[0].ID
		if before > 0 && oldest >= before {
			break
		}

		posts = append(page.Posts, posts...)
		before = oldest
		r.log.Debug("Fetched preview page",
			logger.Channel(channel),
			logger.Int("posts", len(page.Posts)),
			logger.Int("before", before),
		)
		if oldest <= 1 {
			break
		}
	}

	if limit > 0 && len(posts) > limit {
		posts = posts[len(posts)-limit:]
	}
	return posts, nil
}

// Parse extracts posts from a preview page body.
func Parse(channel string, body []byte) (Page, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return Page{}, fmt.Errorf("parse html: %w", err)
	}

	page := Page{Title: strings.TrimSpace(doc.Find(".tgme_channel_info_header_title").First().Text())}
	if doc.Find(".tgme_channel_history").Length() == 0 && doc.Find(".tgme_widget_message").Length() == 0 {
		return page, ErrChannelNotFound
	}

	doc.Find(".tgme_widget_message[data-post]").Each(func(_ int, s *goquery.Selection) {
		if post, ok := parsePost(s); ok {
			post.Title = page.Title
			if post.Channel == "" {
				post.Channel = channel
			}
			page.Posts = append(page.Posts, post)
		}
	})
	return page, nil
}

func parsePost(s *goquery.Selection) (Post, bool) {
	ref, _ := s.Attr("data-post")
	tag, idStr, found := strings.Cut(ref, "/")
	if !found {
		return Post{}, false
	}
	id, err := strconv.Atoi(idStr)
	if err != nil {
		return Post{}, false
	}

	post := Post{
		Channel:   tag,
		ID:        id,
		Author:    strings.TrimSpace(s.Find(".tgme_widget_message_owner_name").First().Text()),
		Text:      messageText(s.Find(".tgme_widget_message_text").First()),
		Forwarded: strings.TrimSpace(s.Find(".tgme_widget_message_forwarded_from_name").First().Text()),
	}
	if href, ok := s.Find("a.tgme_widget_message_date").Attr("href"); ok {
		post.URL = href
	}
	if dt, ok := s.Find(".tgme_widget_message_date time").Attr("datetime"); ok {
		if parsed, err := time.Parse(time.RFC3339, dt); err == nil {
			post.Date = parsed.UTC()
		}
	}

	switch {
	case s.Find(".tgme_widget_message_photo_wrap").Length() > 0:
		post.HasMedia, post.MediaType = true, "photo"
	case s.Find(".tgme_widget_message_video_player").Length() > 0:
		post.HasMedia, post.MediaType = true, "video"
	case s.Find(".tgme_widget_message_document").Length() > 0:
		post.HasMedia, post.MediaType = true, "document"
	}
	return post, true
}

// messageText keeps line breaks, which the segmenter depends on.
func messageText(s *goquery.Selection) string {
	if s.Length() == 0 {
		return ""
	}
	s = s.Clone()
	s.Find("br").ReplaceWithHtml("\n")
	return strings.TrimSpace(s.Text())
}

// Payload converts the post into an ingestion payload.
func (p Post) Payload() ingest.Payload {
	title := p.Title
	if title == "" {
		title = p.Channel
	}
	return ingest.Payload{
		ID:              p.Channel + "_" + strconv.Itoa(p.ID),
		Content:         p.Text,
		Channel:         title,
		ChannelUsername: p.Channel,
		Author:          p.Author,
		Timestamp:       ingest.Timestamp{Time: p.Date},
		URL:             p.URL,
		ForwardedBy:     p.Forwarded,
		HasMedia:        p.HasMedia,
		MediaType:       p.MediaType,
	}
}
