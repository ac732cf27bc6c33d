package importer

import (
	"context"
	"fmt"

	domain "github.com/mohammadpnp/content-inventory/internal/domain/content"
)

type urlChecker interface {
	URLExists(ctx context.Context, url string) (bool, error)
}

type campaignEnsurer interface {
	EnsureByName(ctx context.Context, name string) (string, error)
}

// Validator checks one import row against the content-item schema.
// campaignIDs maps every campaign name appearing in the batch to its id;
// the processor resolves (and auto-creates) them before validation starts.
type Validator struct {
	content     urlChecker
	campaignIDs map[string]string
}

func NewValidator(content urlChecker, campaignIDs map[string]string) *Validator {
	if campaignIDs == nil {
		campaignIDs = map[string]string{}
	}
	return &Validator{content: content, campaignIDs: campaignIDs}
}

// ValidateRow returns the content item a valid row maps to, or the list of
// field-level errors that exclude it from persistence. The returned error is
// reserved for infrastructure failures (persistence round-trips), which
// abort the whole run rather than a single row.
func (v *Validator) ValidateRow(ctx context.Context, row domain.ImportRow, rowIndex int) (*domain.ContentItem, []domain.RowError, error) {
	var rowErrors []domain.RowError

	rawURL := row.URL()
	urlOK := rawURL != "" && domain.ValidURL(rawURL)
	if rawURL == "" {
		rowErrors = append(rowErrors, domain.RowError{Row: rowIndex, Field: "url", Message: "url is required"})
	} else if !urlOK {
		rowErrors = append(rowErrors, domain.RowError{Row: rowIndex, Field: "url", Message: fmt.Sprintf("invalid url: %s", rawURL)})
	}

	// Enrichment may have filled the title; a still-blank title falls back
	// to the URL as a display title rather than failing the row.
	title := row.Title()
	if title == "" && urlOK {
		title = rawURL
	}
	if title == "" {
		rowErrors = append(rowErrors, domain.RowError{Row: rowIndex, Field: "title", Message: "title is required"})
	}

	if urlOK {
		exists, err := v.content.URLExists(ctx, rawURL)
		if err != nil {
			return nil, nil, fmt.Errorf("url uniqueness check: %w", err)
		}
		if exists {
			rowErrors = append(rowErrors, domain.RowError{Row: rowIndex, Field: "url", Message: fmt.Sprintf("duplicate url: %s", rawURL)})
		}
	}

	publishDate := ""
	if raw := row.Field("publish_date", "publishdate", "published", "date"); raw != "" {
		normalized, ok := domain.NormalizeDate(raw)
		if !ok {
			rowErrors = append(rowErrors, domain.RowError{Row: rowIndex, Field: "publish_date", Message: fmt.Sprintf("unparseable date: %s", raw)})
		} else {
			publishDate = normalized
		}
	}

	if len(rowErrors) > 0 {
		return nil, rowErrors, nil
	}

	return &domain.ContentItem{
		Title:          title,
		CurrentURL:     rawURL,
		ContentType:    domain.ParseContentType(row.Field("content_type", "contenttype", "type")),
		PublishDate:    publishDate,
		Description:    row.Field("description"),
		Author:         row.Field("author"),
		TargetAudience: row.Field("target_audience", "targetaudience", "audience"),
		Tags:           row.Field("tags"),
		CampaignID:     v.campaignIDs[campaignName(row)],
		Source:         domain.SourceCSVImport,
	}, nil, nil
}

func campaignName(row domain.ImportRow) string {
	return row.Field("campaign", "campaign_name")
}
