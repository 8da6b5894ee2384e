package igdb

import (
	"fmt"
	"strings"
)

const (
	// BaseURL is the IGDB v4 API root
	BaseURL = "https://api.igdb.com/v4"

	// GamesEndpoint is the catalog resource queried for covers
	GamesEndpoint = "games"

	// ImageBaseURL is where cover images are served from, protocol-relative
	// like the URLs the API returns
	ImageBaseURL = "//images.igdb.com/igdb/image/upload"

	// ThumbSize is the image size the API hands out by default
	ThumbSize = "t_thumb"

	// MaxPageSize is the largest limit the API accepts
	MaxPageSize = 500
)

// BuildQuery renders the Apicalypse query for one page of games on a
// platform that have a cover
func BuildQuery(platformID, limit, offset int) string {
	return fmt.Sprintf(
		"fields name, cover.url, cover.image_id; where platforms = %d & cover != null; limit %d; offset %d;",
		platformID, limit, offset,
	)
}

// CoverURLFromImageID builds an image URL for an image id at the given
// size, e.g. "t_cover_big"
func CoverURLFromImageID(imageID, size string) string {
	if imageID == "" {
		return ""
	}
	if size == "" {
		size = ThumbSize
	}
	return fmt.Sprintf("%s/%s/%s.jpg", ImageBaseURL, size, imageID)
}

// GamesURL returns the games endpoint under base
func GamesURL(base string) string {
	return strings.TrimSuffix(base, "/") + "/" + GamesEndpoint
}
