// Package export writes stored products and messages to an xlsx workbook.
package export

import (
	"fmt"
	"io"
	"time"

	"github.com/Hosseinjeff/Wholesale-project/internal/domain"
	"github.com/xuri/excelize/v2"
)

// Sheet names.
const (
	ProductsSheet = "Products"
	MessagesSheet = "Messages"
)

const timeLayout = "2006-01-02 15:04:05"

// ProductHeaders is the column order of the Products sheet.
var ProductHeaders = []string{
	"Product ID",
	"Product Name",
	"Price",
	"Currency",
	"Consumer Price",
	"Box Price",
	"Unit Price",
	"Packaging",
	"Volume",
	"Category",
	"Description",
	"Stock Status",
	"Location",
	"Contact Info",
	"Original Message",
	"Channel",
	"Channel Username",
	"Message Timestamp",
	"Forwarded By",
	"Import Timestamp",
	"Last Updated",
	"Status",
	"Price Type",
	"Confidence",
	"Review Reason",
}

// MessageHeaders is the column order of the Messages sheet.
var MessageHeaders = []string{
	"ID",
	"Channel",
	"Channel Username",
	"Author",
	"Content",
	"Timestamp",
	"URL",
	"Forwarded By",
	"Forwarded At",
	"Has Media",
	"Media Type",
	"Import Timestamp",
	"Status",
}

// Build creates a workbook with a Products and a Messages sheet. Product rows
// are joined to their source message when it is among messages.
func Build(products []domain.ProductRecord, messages []domain.RawMessage) (*excelize.File, error) {
	f := excelize.NewFile()

	if err := f.SetSheetName("Sheet1", ProductsSheet); err != nil {
		return nil, closeOnError(f, fmt.Errorf("rename sheet: %w", err))
	}
	if _, err := f.NewSheet(MessagesSheet); err != nil {
		return nil, closeOnError(f, fmt.Errorf("create sheet: %w", err))
	}

	header, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, closeOnError(f, fmt.Errorf("create header style: %w", err))
	}

	byID := make(map[string]domain.RawMessage, len(messages))
	for _, m := range messages {
		byID[m.ID] = m
	}

	productRows := make([][]any, 0, len(products))
	for i := range products {
		productRows = append(productRows, productRow(&products[i], byID))
	}
	if err := writeSheet(f, ProductsSheet, ProductHeaders, productRows, header); err != nil {
		return nil, closeOnError(f, err)
	}

	messageRows := make([][]any, 0, len(messages))
	for i := range messages {
		messageRows = append(messageRows, messageRow(&messages[i]))
	}
	if err := writeSheet(f, MessagesSheet, MessageHeaders, messageRows, header); err != nil {
		return nil, closeOnError(f, err)
	}

	return f, nil
}

// Write builds the workbook and writes it to w.
func Write(w io.Writer, products []domain.ProductRecord, messages []domain.RawMessage) error {
	f, err := Build(products, messages)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// Save builds the workbook and saves it at path.
func Save(path string, products []domain.ProductRecord, messages []domain.RawMessage) error {
	f, err := Build(products, messages)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook %s: %w", path, err)
	}
	return nil
}

func writeSheet(f *excelize.File, sheet string, headers []string, rows [][]any, headerStyle int) error {
	headerRow := make([]any, len(headers))
	for i, h := range headers {
		headerRow[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &headerRow); err != nil {
		return fmt.Errorf("write %s header: %w", sheet, err)
	}

	last, err := excelize.CoordinatesToCellName(len(headers), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", last, headerStyle); err != nil {
		return fmt.Errorf("style %s header: %w", sheet, err)
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write %s row %d: %w", sheet, i+2, err)
		}
	}
	return nil
}

func productRow(p *domain.ProductRecord, messages map[string]domain.RawMessage) []any {
	msg := messages[p.MessageID]
	var forwardedBy, original, username, msgTime string
	if msg.ID != "" {
		original = msg.Text
		username = msg.ChannelUsername
		msgTime = formatTime(msg.ReceivedAt)
		forwardedBy = msg.ForwardedBy
	}

	return []any{
		p.ID,
		p.Name,
		p.SalePrice,
		p.Currency,
		optional(p.ConsumerPrice),
		optional(p.BoxPrice),
		optional(p.UnitPrice),
		p.Packaging,
		p.Volume,
		p.Category,
		p.Description,
		string(p.StockStatus),
		p.Location,
		p.ContactInfo,
		original,
		p.Channel,
		username,
		msgTime,
		forwardedBy,
		formatTime(p.CreatedAt),
		formatTime(p.UpdatedAt),
		string(p.Status),
		string(p.PriceType),
		p.ExtractionConfidence,
		p.ReviewReason,
	}
}

func messageRow(m *domain.RawMessage) []any {
	var forwardedAt string
	if m.ForwardedAt != nil {
		forwardedAt = formatTime(*m.ForwardedAt)
	}
	return []any{
		m.ID,
		m.Channel,
		m.ChannelUsername,
		m.Author,
		m.Text,
		formatTime(m.ReceivedAt),
		m.URL,
		m.ForwardedBy,
		forwardedAt,
		m.HasMedia,
		m.MediaType,
		formatTime(m.ImportedAt),
		m.Status,
	}
}

func optional(v *int64) any {
	if v == nil {
		return ""
	}
	return *v
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(timeLayout)
}

func closeOnError(f *excelize.File, err error) error {
	_ = f.Close()
	return err
}
