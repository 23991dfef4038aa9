package domain

// LeaderboardEntry is one ranked row. Rank uses standard competition
// ranking: ties share a rank and the next rank skips the tied count.
type LeaderboardEntry struct {
	Rank      int    `json:"rank"`
	ProfileID int64  `json:"profile_id"`
	Username  string `json:"username"`
	Name      string `json:"name"`
	Points    int64  `json:"points"`
}
