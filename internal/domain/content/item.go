package content

import (
	"net/url"
	"strings"
)

// SourceCSVImport marks items created by the bulk import pipeline.
const SourceCSVImport = "csv_import"

type ContentType string

const (
	TypeBlogPost    ContentType = "blog_post"
	TypeVideo       ContentType = "video"
	TypePodcast     ContentType = "podcast"
	TypeWhitepaper  ContentType = "whitepaper"
	TypeCaseStudy   ContentType = "case_study"
	TypeSocialPost  ContentType = "social_post"
	TypeEmail       ContentType = "email"
	TypeWebinar     ContentType = "webinar"
	TypeInfographic ContentType = "infographic"
	TypeOther       ContentType = "other"
)

var knownContentTypes = map[string]ContentType{
	"blog_post":   TypeBlogPost,
	"blog post":   TypeBlogPost,
	"blog":        TypeBlogPost,
	"article":     TypeBlogPost,
	"video":       TypeVideo,
	"podcast":     TypePodcast,
	"whitepaper":  TypeWhitepaper,
	"white paper": TypeWhitepaper,
	"case_study":  TypeCaseStudy,
	"case study":  TypeCaseStudy,
	"social_post": TypeSocialPost,
	"social post": TypeSocialPost,
	"social":      TypeSocialPost,
	"email":       TypeEmail,
	"webinar":     TypeWebinar,
	"infographic": TypeInfographic,
	"other":       TypeOther,
}

// ParseContentType maps a raw column value to a known content type.
// Unknown or blank values classify as TypeOther rather than failing the row.
func ParseContentType(raw string) ContentType {
	normalized := strings.ToLower(strings.TrimSpace(raw))
	if normalized == "" {
		return TypeOther
	}
	if ct, ok := knownContentTypes[normalized]; ok {
		return ct
	}
	return TypeOther
}

type ContentItem struct {
	ID             string
	Title          string
	CurrentURL     string
	ContentType    ContentType
	PublishDate    string
	Description    string
	Author         string
	TargetAudience string
	Tags           string
	CampaignID     string
	Source         string
}

// ValidURL reports whether raw parses as an absolute http(s) URL.
func ValidURL(raw string) bool {
	parsed, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return false
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return false
	}
	return parsed.Host != ""
}
