package domain

// GuildStats aggregates one roster. Averages and the class distribution only
// cover players that are valid for stats. Every record is counted once:
// TotalPlayers = EligiblePlayers + DefensePlayers + ShaiPlayers, with a Shai
// record on the exclusion list counted as Defense.
type GuildStats struct {
	Guild             string         `json:"guild"`
	TotalPlayers      int            `json:"totalPlayers"`
	EligiblePlayers   int            `json:"eligiblePlayers"`
	DefensePlayers    int            `json:"defensePlayers"`
	ShaiPlayers       int            `json:"shaiPlayers"`
	AverageGearscore  float64        `json:"averageGearscore"`
	MinGearscore      float64        `json:"minGearscore"`
	MaxGearscore      float64        `json:"maxGearscore"`
	AverageAP         float64        `json:"averageAp"`
	AverageAAP        float64        `json:"averageAap"`
	AverageDP         float64        `json:"averageDp"`
	TotalKills        int            `json:"totalKills"`
	TotalDeaths       int            `json:"totalDeaths"`
	KillDeathRatio    float64        `json:"killDeathRatio"`
	ClassDistribution map[string]int `json:"classDistribution"`
	TopPlayers        []RankedPlayer `json:"topPlayers"`
}

// StatsComparison holds two rosters side by side. Deltas are B minus A.
type StatsComparison struct {
	A                     GuildStats     `json:"a"`
	B                     GuildStats     `json:"b"`
	EligibleDelta         int            `json:"eligibleDelta"`
	AverageGearscoreDelta float64        `json:"averageGearscoreDelta"`
	AverageAPDelta        float64        `json:"averageApDelta"`
	AverageAAPDelta       float64        `json:"averageAapDelta"`
	AverageDPDelta        float64        `json:"averageDpDelta"`
	KillDeathRatioDelta   float64        `json:"killDeathRatioDelta"`
	ClassDeltas           map[string]int `json:"classDeltas"`
}
