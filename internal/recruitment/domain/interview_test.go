package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wyfcoding/jobportal/pkg/errorx"
)

func TestSlotNormalize(t *testing.T) {
	got, err := Slot{ScheduledDate: " 2026-05-01 ", StartTime: "09:30:00"}.Normalize()
	require.NoError(t, err)
	assert.Equal(t, Slot{ScheduledDate: "2026-05-01", StartTime: "09:30", DurationMinutes: DefaultDurationMinutes}, got)

	_, err = Slot{ScheduledDate: "2026-02-30", StartTime: "25:00", DurationMinutes: 2}.Normalize()
	require.Error(t, err)
	fields := errorx.Fields(err)
	assert.Contains(t, fields, "scheduled_date")
	assert.Contains(t, fields, "start_time")
	assert.Contains(t, fields, "duration_minutes")
}

func TestInterviewCode(t *testing.T) {
	assert.Equal(t, "INT-2026-", InterviewCodePrefix(2026))
	assert.Equal(t, "INT-2026-0042", FormatInterviewCode(2026, 42))
	assert.Equal(t, "INT-2026-12345", FormatInterviewCode(2026, 12345))
}

func TestParseInterviewStatus(t *testing.T) {
	st, err := ParseInterviewStatus(" Completed ")
	require.NoError(t, err)
	assert.Equal(t, InterviewCompleted, st)
	_, err = ParseInterviewStatus("postponed")
	assert.True(t, errorx.Is(err, errorx.CodeValidation))
}

func TestDedupPanel(t *testing.T) {
	got := DedupPanel([]PanelMember{
		{UserID: 3, Role: PanelChair},
		{UserID: 7},
		{UserID: 3, Role: PanelObserver},
	})
	assert.Equal(t, []PanelMember{
		{UserID: 3, Role: PanelObserver},
		{UserID: 7, Role: PanelMemberRole},
	}, got)
}

func TestDiffPanel(t *testing.T) {
	existing := []PanelMember{
		{UserID: 1, Role: PanelChair},
		{UserID: 2, Role: PanelMemberRole},
		{UserID: 3, Role: PanelSecretary},
	}

	t.Run("mixed changes", func(t *testing.T) {
		diff := DiffPanel(existing, []PanelMember{
			{UserID: 1, Role: PanelChair},
			{UserID: 2, Role: PanelObserver},
			{UserID: 4, Role: PanelMemberRole},
			{UserID: 4, Role: PanelSecretary},
		})
		assert.Equal(t, []PanelMember{{UserID: 4, Role: PanelSecretary}}, diff.Add)
		assert.Equal(t, []PanelMember{{UserID: 2, Role: PanelObserver}}, diff.Update)
		assert.Equal(t, []uint{3}, diff.Remove)
	})

	t.Run("unchanged", func(t *testing.T) {
		assert.True(t, DiffPanel(existing, existing).Empty())
	})

	t.Run("cleared", func(t *testing.T) {
		diff := DiffPanel(existing, nil)
		assert.Equal(t, []uint{1, 2, 3}, diff.Remove)
		assert.Empty(t, diff.Add)
	})

	t.Run("result equals desired set", func(t *testing.T) {
		desired := []PanelMember{{UserID: 9}, {UserID: 2, Role: PanelChair}, {UserID: 9, Role: PanelObserver}}
		diff := DiffPanel(existing, desired)

		result := map[uint]PanelRole{}
		for _, m := range existing {
			result[m.UserID] = m.Role
		}
		for _, id := range diff.Remove {
			delete(result, id)
		}
		for _, m := range append(diff.Update, diff.Add...) {
			result[m.UserID] = m.Role
		}
		assert.Equal(t, map[uint]PanelRole{2: PanelChair, 9: PanelObserver}, result)
	})
}
