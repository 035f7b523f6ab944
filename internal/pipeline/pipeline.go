// Package pipeline turns one raw message into product records: classify,
// select the channel profile, segment, extract fields, resolve prices and
// score quality.
package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/Hosseinjeff/Wholesale-project/infrastructure/logger"
	"github.com/Hosseinjeff/Wholesale-project/internal/classifier"
	"github.com/Hosseinjeff/Wholesale-project/internal/domain"
	"github.com/Hosseinjeff/Wholesale-project/internal/fields"
	"github.com/Hosseinjeff/Wholesale-project/internal/normalize"
	"github.com/Hosseinjeff/Wholesale-project/internal/pricing"
	"github.com/Hosseinjeff/Wholesale-project/internal/profile"
	"github.com/Hosseinjeff/Wholesale-project/internal/quality"
	"github.com/Hosseinjeff/Wholesale-project/internal/segment"
)

const previewRunes = 500

// ProfileSource resolves channel profiles.
type ProfileSource interface {
	Get(channel string) profile.Profile
	IsStructured(channel string) bool
}

// PriceHistory returns stored sale-price statistics for a product name.
type PriceHistory interface {
	MeanSalePrice(ctx context.Context, name string) (domain.PriceStats, error)
}

// Result is everything one message produced.
type Result struct {
	Classification domain.Classification  `json:"classification"`
	Profile        string                 `json:"profile"`
	Segments       int                    `json:"segments"`
	Records        []domain.ProductRecord `json:"records"`
	Events         []domain.LogEvent      `json:"events"`
}

// Extractor runs the pipeline. Apart from history lookups it does no I/O.
type Extractor struct {
	profiles   ProfileSource
	classifier *classifier.Classifier
	checker    *quality.Checker
	history    PriceHistory
	log        logger.Logger
	now        func() time.Time
}

// New creates an extractor. history may be nil, in which case the deviation
// check never fires.
func New(profiles ProfileSource, checker *quality.Checker, history PriceHistory, log logger.Logger) *Extractor {
	if log == nil {
		log = logger.NewNop()
	}
	return &Extractor{
		profiles:   profiles,
		classifier: classifier.New(profiles),
		checker:    checker,
		history:    history,
		log:        log.With(logger.Component("pipeline")),
		now:        time.Now,
	}
}

// Extract processes msg. Every emitted record satisfies: a positive sale
// price or Out of Stock status, a valid name, and sale ≤ consumer on a
// comparable basis.
func (e *Extractor) Extract(ctx context.Context, msg domain.RawMessage) (Result, error) {
	channel := msg.ChannelIdentifier()
	res := Result{Classification: e.classifier.Classify(msg.Text, channel)}

	if !res.Classification.ProductBearing() {
		res.Events = append(res.Events, e.event(msg, domain.FnExtract, domain.LevelInfo,
			"message classified as non_product", 0, ""))
		return res, nil
	}

	prof := e.profiles.Get(channel)
	res.Profile = prof.Name

	segs := segment.Split(msg.Text, prof)
	res.Segments = len(segs)

	analyzer := pricing.NewAnalyzer(prof.PriceLabels)
	state := fields.NewState()
	lines := normalize.Lines(msg.Text)
	location, contact := fields.Location(lines), fields.Contact(lines)

	for _, seg := range segs {
		if err := ctx.Err(); err != nil {
			return res, fmt.Errorf("extract message %s: %w", msg.ID, err)
		}

		rec, ok := e.buildRecord(msg, prof, res.Classification, seg, analyzer, state)
		if !ok {
			continue
		}
		rec.Location, rec.ContactInfo = location, contact

		verdict := e.checker.Check(rec, e.priceStats(ctx, msg, rec.Name, &res))
		rec.Status = domain.StatusImported
		if verdict.RequiresReview {
			rec.Status = domain.StatusNeedsReview
			rec.ReviewReason = verdict.Reason()
			res.Events = append(res.Events, e.event(msg, domain.FnQualityCheck, domain.LevelWarn,
				"product flagged for review: "+rec.Name, 0, verdict.Reason()))
		}
		res.Records = append(res.Records, rec)
	}

	if len(res.Records) == 0 {
		e.log.Warn("No products extracted",
			logger.MessageID(msg.ID),
			logger.Channel(channel),
			logger.String("profile", prof.Name),
			logger.Int("segments", res.Segments),
		)
		res.Events = append(res.Events, e.event(msg, domain.FnNoProducts, domain.LevelWarn,
			"no products extracted", 0, "preview: "+preview(msg.Text)))
		return res, nil
	}

	res.Events = append(res.Events, e.event(msg, domain.FnExtract, domain.LevelInfo,
		fmt.Sprintf("extracted %d products", len(res.Records)), len(res.Records), "profile: "+prof.Name))
	return res, nil
}

func (e *Extractor) buildRecord(
	msg domain.RawMessage,
	prof profile.Profile,
	cls domain.Classification,
	seg domain.ProductSegment,
	analyzer *pricing.Analyzer,
	state *fields.State,
) (domain.ProductRecord, bool) {
	draft, ok := fields.Extract(seg, prof, state)
	if !ok {
		return domain.ProductRecord{}, false
	}

	price := analyzer.Analyze(draft.PriceLines, draft.PackQuantity)
	stock := draft.StockStatus
	if cls.Type == domain.OutOfStock && stock == domain.StockAvailable {
		stock = domain.StockOutOfStock
	}
	if !price.HasPrice() && stock != domain.StockOutOfStock {
		return domain.ProductRecord{}, false
	}

	rec := domain.ProductRecord{
		Name:          draft.Name,
		SalePrice:     price.Sale,
		ConsumerPrice: domain.Price(price.Consumer),
		BoxPrice:      domain.Price(price.Box),
		UnitPrice:     domain.Price(price.Unit),
		PriceType:     price.PriceType,
		Currency:      domain.CurrencyIRT,
		Packaging:     draft.Packaging,
		Volume:        draft.Volume,
		Variation:     draft.Variation,
		StockStatus:   stock,
		Category:      draft.Category,
		Channel:       msg.ChannelIdentifier(),
		Description:   draft.Description,
		MessageID:     msg.ID,
	}
	if rec.ConsumerPrice == nil && prof.MirrorConsumerPrice && rec.SalePrice > 0 {
		rec.ConsumerPrice = domain.Price(rec.SalePrice)
	}

	switch {
	case price.HasPrice():
		rec.ExtractionConfidence = max(price.Confidence, prof.BaseConfidence)
	case cls.Type == domain.OutOfStock:
		rec.ExtractionConfidence = max(cls.Confidence, prof.BaseConfidence)
	default:
		rec.ExtractionConfidence = prof.BaseConfidence
	}
	return rec, true
}

// priceStats is best effort: a failed lookup skips the deviation check and
// is reported as an event.
func (e *Extractor) priceStats(ctx context.Context, msg domain.RawMessage, name string, res *Result) domain.PriceStats {
	if e.history == nil {
		return domain.PriceStats{}
	}
	stats, err := e.history.MeanSalePrice(ctx, name)
	if err != nil {
		e.log.Warn("Price history lookup failed",
			logger.MessageID(msg.ID),
			logger.String("product", name),
			logger.Error(err),
		)
		res.Events = append(res.Events, e.event(msg, domain.FnQualityCheck, domain.LevelWarn,
			"price history unavailable for "+name, 0, err.Error()))
		return domain.PriceStats{}
	}
	return stats
}

func (e *Extractor) event(msg domain.RawMessage, fn string, level domain.LogLevel, text string, found int, details string) domain.LogEvent {
	return domain.LogEvent{
		CreatedAt:     e.now().UTC(),
		Function:      fn,
		Level:         level,
		MessageID:     msg.ID,
		Channel:       msg.ChannelIdentifier(),
		ContentLength: utf8.RuneCountInString(msg.Text),
		Message:       text,
		ProductsFound: found,
		Details:       details,
	}
}

func preview(text string) string {
	flat := strings.NewReplacer("\r", "", "\n", " | ").Replace(text)
	if utf8.RuneCountInString(flat) <= previewRunes {
		return flat
	}
	return string([]rune(flat)[:previewRunes])
}
