package content

import (
	"fmt"
	"strings"
)

// Kind names a generation category exposed over HTTP.
type Kind string

const (
	KindProductDescription Kind = "product_description"
	KindSEOTags            Kind = "seo_tags"
	KindMarketing          Kind = "marketing_content"
)

// ProductDescriptionPrompt builds the prompt for a product description.
// Inputs are interpolated verbatim.
func ProductDescriptionPrompt(name, category, details string) string {
	return fmt.Sprintf("Write a compelling product description for %s in %s. Details: %s.", name, category, details)
}

// SEOTagsPrompt builds the prompt for SEO tag generation. An empty keyword list
// still yields a prompt.
func SEOTagsPrompt(keywords []string) string {
	return fmt.Sprintf("Generate SEO-friendly tags for these keywords: %s.", strings.Join(keywords, ", "))
}

// MarketingPrompt builds the prompt for a marketing campaign message.
func MarketingPrompt(audience, platform string) string {
	return fmt.Sprintf("Create a marketing campaign message targeting %s on %s.", audience, platform)
}
