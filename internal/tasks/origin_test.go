package tasks

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func portfolioDocs() []Document {
	return []Document{
		{Path: "/p/home.txt", Lines: []string{
			"# Top Tasks List",
			"",
			"! Call mom dur:10",
			"",
			"# Family",
			"! Call mom dur:10",
			"- Water plants +rec:3d due:2020-10-17 dur:5",
			"- Daily stretch rec:daily dur:10",
			"",
		}},
		{Path: "/p/work.txt", Lines: []string{
			"# Work",
			"- Write report +work dur:60",
			"- Call mom dur:10",
		}},
	}
}

func TestMarkDoneAtOriginSkipsTTL(t *testing.T) {
	cfg := testConfig()
	docs := portfolioDocs()

	doc, err := MarkDoneAtOrigin(cfg, "- Call mom dur:10", docs, testNow)
	require.NoError(t, err)
	require.NotNil(t, doc)
	require.Equal(t, "/p/home.txt", doc.Path)
	require.Equal(t, "! Call mom dur:10", doc.Lines[2])
	require.Equal(t, "x Call mom dur:10", doc.Lines[5])
	require.Len(t, doc.Lines, 8)

	require.Equal(t, "! Call mom dur:10", docs[0].Lines[5])
}

func TestMarkDoneAtOriginSecondFile(t *testing.T) {
	cfg := testConfig()
	doc, err := MarkDoneAtOrigin(cfg, "- Write report +work dur:60", portfolioDocs(), testNow)
	require.NoError(t, err)
	require.Equal(t, "/p/work.txt", doc.Path)
	require.Equal(t, []string{"# Work", "x Write report +work dur:60", "- Call mom dur:10"}, doc.Lines)
}

func TestMarkDoneAtOriginAdvancesPeriodic(t *testing.T) {
	cfg := testConfig()
	now := time.Date(2020, 10, 18, 8, 0, 0, 0, time.UTC)

	doc, err := MarkDoneAtOrigin(cfg, "- Water plants +rec:3d due:2020-10-17 dur:5", portfolioDocs(), now)
	require.NoError(t, err)
	require.Equal(t, "- Water plants +rec:3d due:2020-10-20 dur:5", doc.Lines[6])
}

func TestMarkDoneAtOriginRepeatedSeparators(t *testing.T) {
	cfg := testConfig()
	docs := []Document{{Path: "/p/home.txt", Lines: []string{"# Incoming", "- call  mom dur:10"}}}

	require.Equal(t, "call  mom", TaskText(cfg, "- call  mom dur:10"))
	doc, err := MarkDoneAtOrigin(cfg, "- call  mom dur:10", docs, testNow)
	require.NoError(t, err)
	require.NotNil(t, doc)
	require.Equal(t, []string{"# Incoming", "x call  mom dur:10"}, doc.Lines)
}

func TestMarkDoneAtOriginNoOps(t *testing.T) {
	cfg := testConfig()
	for _, task := range []string{
		"",
		"x 2020-10-17 - Call mom dur:10",
		"- Daily stretch rec:daily dur:10",
		"- Unknown errand dur:5",
	} {
		doc, err := MarkDoneAtOrigin(cfg, task, portfolioDocs(), testNow)
		require.NoError(t, err, task)
		require.Nil(t, doc, task)
	}
}

func TestMatcherFirstMatchAndEmptyText(t *testing.T) {
	cfg := testConfig()
	docs := []Document{{Path: "/p/a.txt", Lines: []string{
		"- +only @tags dur:5",
		"- Real task dur:5",
		"- Real task longer dur:5",
	}}}

	pos, ok := NewMatcher(cfg).Find("- Real task longer dur:5", docs)
	require.True(t, ok)
	require.Equal(t, Position{Doc: 0, Row: 1}, pos)
}

func TestMatcherCustomPredicates(t *testing.T) {
	cfg := testConfig()
	m := NewMatcher(cfg)
	m.Predicates = append(m.Predicates, Predicate{
		Name:  "exact-text",
		Match: func(task string, c Candidate) bool { return c.Text == TaskText(cfg, task) },
	})
	docs := []Document{{Path: "/p/a.txt", Lines: []string{
		"- Real task dur:5",
		"- Real task longer dur:5",
	}}}

	pos, ok := m.Find("- Real task longer dur:5", docs)
	require.True(t, ok)
	require.Equal(t, 1, pos.Row)

	_, ok = m.Find("- Other dur:5", docs)
	require.False(t, ok)
}

func TestExtractBooked(t *testing.T) {
	cfg := testConfig()
	docs := []Document{
		{Path: "/p/a.txt", Lines: []string{
			"# Top Tasks List",
			"- Dentist due:2020-11-01 dur:60",
			"# Health",
			"- Dentist due:2020-11-01 dur:60",
		}},
		{Path: "/p/b.txt", Lines: []string{"- Bills due:2020-11-02 +rec:1m dur:10"}},
		{Path: "/p/c.txt", Lines: []string{"x Old due:2020-01-01 dur:5", "- Car service due:2020-11-05 dur:120"}},
	}

	out, err := Extract(cfg, ExtractBooked, docs)
	require.NoError(t, err)
	require.Equal(t, []string{
		"- Dentist due:2020-11-01 dur:60",
		"- Car service due:2020-11-05 dur:120",
	}, out)
}

func TestExtractOtherKinds(t *testing.T) {
	cfg := testConfig()
	docs := []Document{{Path: "/p/home.txt", Lines: []string{
		"- Stretch rec:daily dur:10",
		"- Water plants +rec:3d due:2020-10-17 dur:5",
		"- Milk @shopping dur:5",
		"x Eggs @shopping dur:5",
		"- Read @shoppingmall dur:5",
	}}}

	daily, err := Extract(cfg, ExtractDaily, docs)
	require.NoError(t, err)
	require.Equal(t, []string{"- Stretch rec:daily dur:10"}, daily)

	periodic, err := Extract(cfg, ExtractPeriodic, docs)
	require.NoError(t, err)
	require.Equal(t, []string{"- Water plants +rec:3d due:2020-10-17 dur:5"}, periodic)

	shlist, err := Extract(cfg, ExtractShlist, docs)
	require.NoError(t, err)
	require.Equal(t, []string{"- Milk @shopping dur:5"}, shlist)

	none, err := Extract(cfg, ExtractBooked, docs)
	require.NoError(t, err)
	require.Empty(t, none)
}

func TestParseExtractKind(t *testing.T) {
	k, err := ParseExtractKind("periodic")
	require.NoError(t, err)
	require.Equal(t, ExtractPeriodic, k)

	_, err = ParseExtractKind("bogus")
	require.ErrorIs(t, err, ErrInvalid)

	_, err = Extract(testConfig(), ExtractKind("bogus"), nil)
	require.ErrorIs(t, err, ErrInvalid)
}
