package matches

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestApplyDefaults(t *testing.T) {
	kickoff := time.Date(2026, 10, 4, 18, 30, 0, 0, time.UTC)
	existing := &Match{
		ID:        1,
		HomeTeam:  "Home FC",
		AwayTeam:  "Away FC",
		MatchDate: kickoff,
		StadiumID: 7,
	}

	t.Run("zero stadium and date are kept from the existing row", func(t *testing.T) {
		update := &Match{HomeTeam: "Home FC", AwayTeam: "City FC"}
		applyDefaults(existing, update)
		assert.Equal(t, int64(7), update.StadiumID)
		assert.Equal(t, kickoff, update.MatchDate)
	})

	t.Run("explicit values win", func(t *testing.T) {
		rescheduled := kickoff.Add(48 * time.Hour)
		update := &Match{HomeTeam: "Home FC", AwayTeam: "City FC", MatchDate: rescheduled, StadiumID: 9}
		applyDefaults(existing, update)
		assert.Equal(t, int64(9), update.StadiumID)
		assert.Equal(t, rescheduled, update.MatchDate)
	})
}
