package dto

// LeaderboardEntry 排行榜条目：排名 + 全部选手字段
// 未评分的选手没有排名，排在末尾
type LeaderboardEntry struct {
	Rank *int `json:"rank"`
	AssignmentResponse
}

// LeaderboardResponse 轮次排行榜
type LeaderboardResponse struct {
	RoundID     string             `json:"round_id"`
	RoundName   string             `json:"round_name"`
	EventID     string             `json:"event_id"`
	Entries     []LeaderboardEntry `json:"entries"`
	GeneratedAt string             `json:"generated_at"`
}
