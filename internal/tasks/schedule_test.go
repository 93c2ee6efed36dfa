package tasks

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestScheduleTasks(t *testing.T) {
	cfg := testConfig()
	now := time.Date(2020, 10, 17, 9, 5, 42, 0, time.UTC)
	lines := []string{
		"# Tasks",
		"- a dur:30",
		"",
		"x done dur:5",
		"! 07:00 b dur:90",
		"- c dur:15",
	}

	out, err := ScheduleTasks(cfg, lines, now)
	require.NoError(t, err)
	require.Equal(t, []string{
		"# Tasks",
		"- 09:05 a dur:30",
		"",
		"x done dur:5",
		"! 09:35 b dur:90",
		"- 11:05 c dur:15",
	}, out)

	again, err := ScheduleTasks(cfg, out, now)
	require.NoError(t, err)
	require.Equal(t, out, again)
}

func TestScheduleTasksWrapsMidnight(t *testing.T) {
	cfg := testConfig()
	now := time.Date(2020, 10, 17, 23, 50, 0, 0, time.UTC)

	out, err := ScheduleTasks(cfg, []string{"- a dur:30", "- b dur:5"}, now)
	require.NoError(t, err)
	require.Equal(t, []string{"- 23:50 a dur:30", "- 00:20 b dur:5"}, out)
}

func TestScheduleTasksMissingDurationAborts(t *testing.T) {
	cfg := testConfig()
	out, err := ScheduleTasks(cfg, []string{"- a dur:30", "- b"}, testNow)
	require.ErrorIs(t, err, ErrMissingDuration)
	require.Nil(t, out)

	_, err = ScheduleTasks(cfg, []string{"- a dur:x"}, testNow)
	require.ErrorIs(t, err, ErrMalformedProperty)
}
