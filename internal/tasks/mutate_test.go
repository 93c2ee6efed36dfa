package tasks

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2020, 10, 17, 12, 0, 0, 0, time.UTC)

func dailyDoc(lines ...string) Document {
	return Document{Path: "/p/20201017.txt", Lines: lines}
}

func TestMarkTaskDone(t *testing.T) {
	cfg := testConfig()
	doc := dailyDoc("- 09:00 Task A dur:30", "- Task B dur:15", "")

	out, original, err := MarkTaskDone(cfg, doc, 0, testNow)
	require.NoError(t, err)
	require.Equal(t, "- Task A dur:30", original)
	require.Equal(t, []string{
		"- Task B dur:15",
		"x 2020-10-17 - Task A dur:30",
	}, out)
	require.Equal(t, "- 09:00 Task A dur:30", doc.Lines[0])
}

func TestMarkTaskDoneOutsideDailyFile(t *testing.T) {
	cfg := testConfig()
	doc := Document{Path: "/p/home.txt", Lines: []string{"- Task dur:5"}}

	out, _, err := MarkTaskDone(cfg, doc, 0, testNow)
	require.ErrorIs(t, err, ErrPrecondition)
	require.Nil(t, out)
	require.Equal(t, []string{"- Task dur:5"}, doc.Lines)
}

func TestMarkTaskDoneRejectsInactiveAndRange(t *testing.T) {
	cfg := testConfig()
	doc := dailyDoc("x 2020-10-16 - Old dur:5", "- New dur:5")

	_, _, err := MarkTaskDone(cfg, doc, 0, testNow)
	require.ErrorIs(t, err, ErrPrecondition)

	_, _, err = MarkTaskDone(cfg, doc, 5, testNow)
	require.ErrorIs(t, err, ErrPrecondition)
}

func TestMarkTaskForRescheduling(t *testing.T) {
	cfg := testConfig()
	doc := dailyDoc("- 09:00 Task A dur:30", "- Task B dur:15")

	out, err := MarkTaskForRescheduling(cfg, doc, 1, false, testNow)
	require.NoError(t, err)
	require.Equal(t, []string{"- 09:00 Task A dur:30", "? 2020-10-17 - Task B dur:15"}, out)

	out, err = MarkTaskForRescheduling(cfg, doc, 0, true, testNow)
	require.NoError(t, err)
	require.Equal(t, []string{"- Task B dur:15", "~ 2020-10-17 - 09:00 Task A dur:30"}, out)

	_, err = MarkTaskForRescheduling(cfg, Document{Path: "/p/work.txt", Lines: doc.Lines}, 0, false, testNow)
	require.ErrorIs(t, err, ErrPrecondition)

	_, err = MarkTaskForRescheduling(cfg, dailyDoc("- a dur:5", "", "- b dur:5"), 1, false, testNow)
	require.ErrorIs(t, err, ErrPrecondition)
}

func TestPeriodicTaskText(t *testing.T) {
	cfg := testConfig()
	doc := dailyDoc(
		"- 08:00 Water plants +rec:3d due:2020-10-17 dur:5",
		"- Stretch rec:daily dur:10",
		"- One off dur:5",
		"x 2020-10-17 - Done +rec:3d due:2020-10-17 dur:5",
	)

	text, err := PeriodicTaskText(cfg, doc, 0)
	require.NoError(t, err)
	require.Equal(t, "- Water plants +rec:3d due:2020-10-17 dur:5", text)

	for _, row := range []int{1, 2, 3} {
		_, err := PeriodicTaskText(cfg, doc, row)
		require.ErrorIs(t, err, ErrPrecondition, "row %d", row)
	}
}

func TestToggleTop(t *testing.T) {
	cfg := testConfig()
	doc := Document{Path: "/p/home.txt", Lines: []string{
		"- Task dur:5",
		"! Top dur:5",
		"- Dentist due:2020-01-01 dur:5",
		"- Water +rec:3d dur:5",
		"# Heading",
	}}

	out, err := ToggleTop(cfg, doc, 0)
	require.NoError(t, err)
	require.Equal(t, "! Task dur:5", out[0])

	out, err = ToggleTop(cfg, doc, 1)
	require.NoError(t, err)
	require.Equal(t, "- Top dur:5", out[1])

	for _, row := range []int{2, 3, 4} {
		_, err := ToggleTop(cfg, doc, row)
		require.ErrorIs(t, err, ErrPrecondition, "row %d", row)
	}
	require.Equal(t, "- Task dur:5", doc.Lines[0])
}

func TestTagLine(t *testing.T) {
	cfg := testConfig()
	doc := Document{Path: "/p/home.txt", Lines: []string{"- Task dur:5", "x done dur:5"}}

	out, changed, err := TagLine(cfg, doc, 0)
	require.NoError(t, err)
	require.True(t, changed)
	require.Equal(t, "- Task dur:5 +home", out[0])

	again, changed, err := TagLine(cfg, Document{Path: doc.Path, Lines: out}, 0)
	require.NoError(t, err)
	require.False(t, changed)
	require.Equal(t, out, again)

	_, changed, err = TagLine(cfg, doc, 1)
	require.NoError(t, err)
	require.False(t, changed)
}

func TestAddAdHocTaskPortfolio(t *testing.T) {
	cfg := testConfig()
	doc := Document{Path: "/p/home.txt", Lines: []string{
		"# Top Tasks List",
		"",
		"# Incoming",
		"- old dur:5",
		"",
		"# Projects",
		"",
	}}

	out, err := AddAdHocTask(cfg, doc, AdHocTask{
		Description: "Call bank",
		Duration:    20,
		Tags:        []string{"@phone"},
		Work:        true,
	})
	require.NoError(t, err)
	require.Equal(t, []string{
		"# Top Tasks List",
		"",
		"# Incoming",
		"- Call bank dur:20 @phone +work",
		"- old dur:5",
		"",
		"# Projects",
	}, out)

	_, err = AddAdHocTask(cfg, doc, AdHocTask{Description: "Done thing", Duration: 5, Finished: true})
	require.ErrorIs(t, err, ErrPrecondition)

	noIncoming := Document{Path: "/p/work.txt", Lines: []string{"# Work", "- a dur:5"}}
	_, err = AddAdHocTask(cfg, noIncoming, AdHocTask{Description: "x", Duration: 5})
	require.ErrorIs(t, err, ErrPrecondition)
}

func TestAddAdHocTaskDaily(t *testing.T) {
	cfg := testConfig()
	doc := dailyDoc(
		"# Tasks proposed for 2020-10-17",
		"- a dur:5",
		"# Tasks DONE on 2020-10-17",
		"x 2020-10-17 - b dur:5",
		"",
	)

	out, err := AddAdHocTask(cfg, doc, AdHocTask{Description: "Fix sink", Duration: 30})
	require.NoError(t, err)
	require.Equal(t, []string{
		"# Tasks proposed for 2020-10-17",
		"- a dur:5",
		"- Fix sink dur:30",
		"# Tasks DONE on 2020-10-17",
		"x 2020-10-17 - b dur:5",
	}, out)

	out, err = AddAdHocTask(cfg, doc, AdHocTask{Description: "Fix sink", Duration: 30, Finished: true, Work: true})
	require.NoError(t, err)
	require.Equal(t, "x Fix sink dur:30 +work", out[len(out)-1])
	require.Len(t, out, 5)

	plain := dailyDoc("- a dur:5", "")
	out, err = AddAdHocTask(cfg, plain, AdHocTask{Description: "c", Duration: 1})
	require.NoError(t, err)
	require.Equal(t, []string{"- a dur:5", "- c dur:1"}, out)
}

func TestAddAdHocTaskRejects(t *testing.T) {
	cfg := testConfig()
	other := Document{Path: "/p/booked.txt", Lines: []string{"- a dur:5"}}
	_, err := AddAdHocTask(cfg, other, AdHocTask{Description: "x", Duration: 5})
	require.ErrorIs(t, err, ErrPrecondition)

	_, err = AddAdHocTask(cfg, dailyDoc(), AdHocTask{Description: "  ", Duration: 5})
	require.ErrorIs(t, err, ErrPrecondition)

	_, err = AddAdHocTask(cfg, dailyDoc(), AdHocTask{Description: "two\nlines", Duration: 5})
	require.ErrorIs(t, err, ErrPrecondition)
}

func TestAdHocWorkTagNotDuplicated(t *testing.T) {
	cfg := testConfig()
	line := AdHocTask{Description: "Review", Duration: 15, Tags: []string{"+work"}, Work: true}.Line(cfg)
	require.Equal(t, "- Review dur:15 +work", line)
}

func TestMoveLine(t *testing.T) {
	lines := []string{"a", "b", "c"}

	out, err := MoveLine(lines, 1, -1)
	require.NoError(t, err)
	require.Equal(t, []string{"b", "a", "c"}, out)
	require.Equal(t, []string{"a", "b", "c"}, lines)

	_, err = MoveLine(lines, 2, 1)
	require.ErrorIs(t, err, ErrPrecondition)
}
