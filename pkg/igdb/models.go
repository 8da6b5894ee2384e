package igdb

import "github.com/MattThePandah/RA-Tracker/pkg/models"

// Game is one element of a games query response
type Game struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Cover *Cover `json:"cover,omitempty"`
}

// Cover is the expanded cover reference of a game
type Cover struct {
	ID      int    `json:"id"`
	URL     string `json:"url"`
	ImageID string `json:"image_id"`
}

// ImageURL returns the cover URL, building one from the image id when the
// API omitted the url field
func (g Game) ImageURL() string {
	if g.Cover == nil {
		return ""
	}
	if g.Cover.URL != "" {
		return g.Cover.URL
	}
	return CoverURLFromImageID(g.Cover.ImageID, ThumbSize)
}

// Record converts the game into a cover record for platform
func (g Game) Record(platform models.Platform) models.CoverRecord {
	return models.CoverRecord{
		Title:        g.Name,
		PlatformName: platform.Name,
		ImageURL:     g.ImageURL(),
	}
}
