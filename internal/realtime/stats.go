package realtime

import (
	"fmt"
	"math"
	"time"

	"botconsole/internal/models"
	"botconsole/internal/store"
)

// Stats is the dashboard headline snapshot pushed over the socket.
type Stats struct {
	TotalMessages   int `json:"total_messages"`
	ActiveUsers     int `json:"active_users"`
	ResponseRate    int `json:"response_rate"`
	AvgResponseTime int `json:"avg_response_time"`
}

// ComputeStats aggregates the headline counters. Response rate and average
// latency are derived from the most recent window of messages rather than
// the full history, so the figures track current behavior.
func ComputeStats(st store.Store, window int) (*Stats, error) {
	platforms, err := st.ListPlatforms()
	if err != nil {
		return nil, fmt.Errorf("failed to list platforms: %w", err)
	}
	total := 0
	for _, p := range platforms {
		total += p.MessagesCount
	}

	now := time.Now()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	active, err := st.ActiveUserCount(midnight)
	if err != nil {
		return nil, fmt.Errorf("failed to count active users: %w", err)
	}

	recent, err := st.RecentMessages(window)
	if err != nil {
		return nil, fmt.Errorf("failed to load recent messages: %w", err)
	}

	var userTurns, botTurns, latencySum, latencyCount int64
	for _, m := range recent {
		switch m.Sender {
		case models.SenderUser:
			userTurns++
		case models.SenderBot:
			botTurns++
		}
		if m.ResponseTimeMs != nil {
			latencySum += *m.ResponseTimeMs
			latencyCount++
		}
	}

	rate := 100
	if userTurns > 0 {
		rate = int(math.Min(100, float64(botTurns)/float64(userTurns)*100))
	}

	avg := 0
	if latencyCount > 0 {
		avg = int(math.Round(float64(latencySum) / float64(latencyCount)))
	}

	return &Stats{
		TotalMessages:   total,
		ActiveUsers:     active,
		ResponseRate:    rate,
		AvgResponseTime: avg,
	}, nil
}
