package domain

import "time"

// ScrapedProfile is the result of reading a third-party profile page.
// MaxPower is nil when no power value could be found on the page.
type ScrapedProfile struct {
	Name      string    `json:"name"`
	SourceURL string    `json:"sourceUrl"`
	MaxPower  *int      `json:"maxPower"`
	IsPrivate bool      `json:"isPrivate"`
	ScrapedAt time.Time `json:"scrapedAt"`
}

// ScrapeTarget names one profile page to fetch.
type ScrapeTarget struct {
	URL  string `json:"url" validate:"required,url,max=2048"`
	Name string `json:"nome,omitempty" validate:"max=64"`
}

// ScrapeResult pairs a target with either its profile or its failure message.
type ScrapeResult struct {
	Target  ScrapeTarget    `json:"target"`
	Profile *ScrapedProfile `json:"profile,omitempty"`
	Error   string          `json:"error,omitempty"`
}
