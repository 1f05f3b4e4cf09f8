package catalog

import "github.com/harsha33983/harshaflix/models"

// PlaceholderImageURL stands in for every title with no poster art, so the
// missing-image state renders identically everywhere.
const PlaceholderImageURL = "https://via.placeholder.com/185x278?text=No+Image"

// ImageURL resolves a provider-relative image path into a fetchable URL at
// the requested size. An empty path always yields the placeholder.
func ImageURL(baseURL string, path string, variant models.ImageVariant) string {
	if path == "" {
		return PlaceholderImageURL
	}
	if variant == "" {
		variant = models.ImageVariantPoster
	}
	return baseURL + "/" + string(variant) + path
}

// ImageURL resolves an image path against the client's configured image host.
func (c *Client) ImageURL(path string, variant models.ImageVariant) string {
	return ImageURL(c.cfg.ImageBaseURL, path, variant)
}
