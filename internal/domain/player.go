package domain

// PlayerRecord is one roster line from an upload.
type PlayerRecord struct {
	FamilyName    string `json:"familyName,omitempty" validate:"max=64"`
	CharacterName string `json:"characterName,omitempty" validate:"max=64"`
	MainClass     string `json:"mainClass,omitempty" validate:"max=32"`
	AP            Stat   `json:"ap"`
	AAP           Stat   `json:"aap"`
	DP            Stat   `json:"dp"`
	Kills         int    `json:"kills,omitempty" validate:"gte=0"`
	Deaths        int    `json:"deaths,omitempty" validate:"gte=0"`
}

// RankedPlayer is a player record annotated with its derived gearscore.
type RankedPlayer struct {
	FamilyName    string  `json:"familyName"`
	CharacterName string  `json:"characterName"`
	MainClass     string  `json:"mainClass"`
	Gearscore     float64 `json:"gearscore"`
}

// Classification is the per-record verdict of the eligibility rules.
type Classification struct {
	Defense       bool    `json:"defense"`
	ValidForStats bool    `json:"validForStats"`
	Gearscore     float64 `json:"gearscore"`
}
