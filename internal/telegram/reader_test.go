package telegram_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Hosseinjeff/Wholesale-project/infrastructure/retry"
	"github.com/Hosseinjeff/Wholesale-project/internal/telegram"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const postTemplate = `
<div class="tgme_widget_message" data-post="shop_ir/%d">
  <div class="tgme_widget_message_owner_name"><span>Shop</span></div>
  %s
  <div class="tgme_widget_message_text">%s</div>
  <a class="tgme_widget_message_date" href="https://t.me/shop_ir/%d"><time datetime="2025-03-01T10:00:00+00:00">10:00</time></a>
</div>`

func previewPage(posts ...string) string {
	return `<html><body>
<div class="tgme_channel_info_header_title"><span>Shop Wholesale</span></div>
<section class="tgme_channel_history">` + strings.Join(posts, "\n") + `</section>
</body></html>`
}

func post(id int, text, extra string) string {
	return fmt.Sprintf(postTemplate, id, extra, text, id)
}

func TestParse(t *testing.T) {
	t.Helper()

	body := previewPage(
		post(10, "نوشابه کوکا<br/>قیمت: ۵۰،۰۰۰", ""),
		post(11, "", `<a class="tgme_widget_message_photo_wrap"></a>`),
	)

	page, err := telegram.Parse("shop_ir", []byte(body))
	require.NoError(t, err)

	assert.Equal(t, "Shop Wholesale", page.Title)
	require.Len(t, page.Posts, 2)

	first := page.Posts[0]
	assert.Equal(t, 10, first.ID)
	assert.Equal(t, "shop_ir", first.Channel)
	assert.Equal(t, "Shop", first.Author)
	assert.Equal(t, "نوشابه کوکا\nقیمت: ۵۰،۰۰۰", first.Text)
	assert.Equal(t, "https://t.me/shop_ir/10", first.URL)
	assert.Equal(t, time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC), first.Date)

	media := page.Posts[1]
	assert.True(t, media.HasMedia)
	assert.Equal(t, "photo", media.MediaType)

	p := first.Payload()
	require.NoError(t, p.Validate())
	assert.Equal(t, "shop_ir_10", p.ID)
	assert.Equal(t, "Shop Wholesale", p.Channel)
	assert.Equal(t, "shop_ir", p.ChannelUsername)
}

func TestParse_NoChannel(t *testing.T) {
	t.Helper()

	_, err := telegram.Parse("missing", []byte(`<html><body><div class="tgme_page">Nothing here</div></body></html>`))
	require.ErrorIs(t, err, telegram.ErrChannelNotFound)
}

func TestReader_BackfillWalksPages(t *testing.T) {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/s/shop_ir", r.URL.Path)
		before, _ := strconv.Atoi(r.URL.Query().Get("before"))
		switch before {
		case 0:
			_, _ = fmt.Fprint(w, previewPage(post(5, "e", ""), post(6, "f", "")))
		case 5:
			_, _ = fmt.Fprint(w, previewPage(post(3, "c", ""), post(4, "d", "")))
		default:
			_, _ = fmt.Fprint(w, previewPage())
		}
	}))
	t.Cleanup(srv.Close)

	reader := telegram.NewReader(telegram.Config{BaseURL: srv.URL + "/s"}, nil)

	posts, err := reader.Backfill(context.Background(), "@shop_ir", 3)
	require.NoError(t, err)
	require.Len(t, posts, 3)
	assert.Equal(t, []int{4, 5, 6}, []int{posts[0].ID, posts[1].ID, posts[2].ID})

	all, err := reader.Backfill(context.Background(), "shop_ir", 0)
	require.NoError(t, err)
	assert.Len(t, all, 4)
}

func TestReader_RetriesServerErrors(t *testing.T) {
	t.Helper()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = fmt.Fprint(w, previewPage(post(1, "a", "")))
	}))
	t.Cleanup(srv.Close)

	reader := telegram.NewReader(telegram.Config{
		BaseURL: srv.URL,
		Retry:   retry.Config{MaxAttempts: 2, InitialDelay: time.Millisecond},
	}, nil)

	page, err := reader.Fetch(context.Background(), "shop_ir", 0)
	require.NoError(t, err)
	assert.Len(t, page.Posts, 1)
	assert.Equal(t, int32(2), calls.Load())
}

func TestReader_NotFoundIsNotRetried(t *testing.T) {
	t.Helper()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	t.Cleanup(srv.Close)

	reader := telegram.NewReader(telegram.Config{BaseURL: srv.URL}, nil)

	_, err := reader.Fetch(context.Background(), "gone", 0)
	require.ErrorIs(t, err, telegram.ErrChannelNotFound)
	assert.Equal(t, int32(1), calls.Load())
}
