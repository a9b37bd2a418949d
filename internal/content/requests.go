package content

// ProductRequest is the body of POST /generate_description. Pointer fields
// separate an absent field from an empty string: absent is rejected, empty is
// accepted.
type ProductRequest struct {
	Name     *string `json:"name" validate:"required"`
	Category *string `json:"category" validate:"required"`
	Details  *string `json:"details" validate:"required"`
}

// Prompt renders the request into a product description prompt.
func (r ProductRequest) Prompt() string {
	return ProductDescriptionPrompt(deref(r.Name), deref(r.Category), deref(r.Details))
}

// SEORequest is the body of POST /generate_tags. A null element is rejected
// like a missing field; an empty list is accepted.
type SEORequest struct {
	Keywords []*string `json:"keywords" validate:"required,dive,required"`
}

// Prompt renders the request into an SEO tags prompt.
func (r SEORequest) Prompt() string {
	keywords := make([]string, len(r.Keywords))
	for i, k := range r.Keywords {
		keywords[i] = deref(k)
	}
	return SEOTagsPrompt(keywords)
}

// MarketingRequest is the body of POST /generate_marketing_content.
type MarketingRequest struct {
	Audience *string `json:"audience" validate:"required"`
	Platform *string `json:"platform" validate:"required"`
}

// Prompt renders the request into a marketing campaign prompt.
func (r MarketingRequest) Prompt() string {
	return MarketingPrompt(deref(r.Audience), deref(r.Platform))
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
