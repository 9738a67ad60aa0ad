package timetable

import (
	"bytes"
	"context"
	"errors"
	"log"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestExtractor(t *testing.T, mutate func(*ExtractorConfig)) *Extractor {
	t.Helper()
	cfg := DefaultExtractorConfig()
	if mutate != nil {
		mutate(&cfg)
	}
	e, err := NewExtractor(cfg)
	require.NoError(t, err)
	return e
}

// The single-cell page splits "CS101 Mr X" at the "Mr X" name boundary, so
// the first entry carries the whole-text matches and raw text "CS101".
func TestExtract_SingleSlotPage(t *testing.T) {
	e := newTestExtractor(t, nil)

	result, err := e.Extract(context.Background(), sourceOf(singleSlotPage()), "BE-CSE-2A")
	require.NoError(t, err)
	require.True(t, result.Found())
	assert.Equal(t, "BE-CSE-2A (Block A)", *result.Section)
	assert.Equal(t, []int{1}, result.MatchedPages)

	require.Len(t, result.Entries, 2)
	first := result.Entries[0]
	assert.Equal(t, "Mo", first.Day)
	assert.Equal(t, "10:00-11:00", first.Time)
	assert.Equal(t, strPtr("CS"), first.Subject)
	assert.Equal(t, strPtr("CS101"), first.Room)
	assert.Nil(t, first.Group)
	assert.Equal(t, "CS101", first.RawText)
	assert.Equal(t, 1, first.Page)

	second := result.Entries[1]
	assert.Equal(t, "Mr X", second.RawText)
	assert.Nil(t, second.Subject)
	assert.Equal(t, "Mo", second.Day)
}

func TestExtract_TwoSlotPage(t *testing.T) {
	e := newTestExtractor(t, nil)

	result, err := e.Extract(context.Background(), sourceOf(twoSlotPage()), "BE-CSE-2A")
	require.NoError(t, err)

	expected := []Entry{
		{Day: "Mo", Time: "09:00-10:00", Subject: strPtr("PH"), Room: strPtr("PH101"),
			Group: strPtr("Group 1"), RawText: "PH101 Group 1", Page: 1},
		{Day: "Tu", Time: "09:00-10:00", Subject: strPtr("EE"), Room: strPtr("EE103"),
			RawText: "EE103", Page: 1},
		{Day: "Mo", Time: "10:00-11:00", Subject: strPtr("MA"), Room: strPtr("MA102"),
			RawText: "MA102", Page: 1},
	}
	assert.Equal(t, expected, result.Entries)
}

func TestExtract_StrategiesAgreeOnCleanPage(t *testing.T) {
	greedy := newTestExtractor(t, nil)
	sweep := newTestExtractor(t, func(c *ExtractorConfig) { c.RowStrategy = RowStrategySweep })

	g, err := greedy.Extract(context.Background(), sourceOf(twoSlotPage()), "BE-CSE-2A")
	require.NoError(t, err)
	s, err := sweep.Extract(context.Background(), sourceOf(twoSlotPage()), "BE-CSE-2A")
	require.NoError(t, err)

	assert.Equal(t, g.Entries, s.Entries)
}

func TestExtract_SectionNameFromLastMatchedPage(t *testing.T) {
	e := newTestExtractor(t, nil)

	continued := twoSlotPage()
	continued[0].Text = "BE-CSE-2A (contd.)"

	result, err := e.Extract(context.Background(), sourceOf(singleSlotPage(), continued), "BE-CSE-2A")
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, result.MatchedPages)
	require.NotNil(t, result.Section)
	assert.Equal(t, "BE-CSE-2A (contd.)", *result.Section)
}

func TestExtract_NoSectionMatch(t *testing.T) {
	e := newTestExtractor(t, nil)

	result, err := e.Extract(context.Background(), sourceOf(singleSlotPage(), twoSlotPage()), "BE-ECE-1B")
	require.NoError(t, err)
	assert.False(t, result.Found())
	assert.Nil(t, result.Section)
	assert.NotNil(t, result.Entries)
	assert.Empty(t, result.Entries)
	assert.Empty(t, result.MatchedPages)
}

func TestExtract_OnlyMatchingPagesContribute(t *testing.T) {
	e := newTestExtractor(t, nil)

	other := twoSlotPage()
	other[0].Text = "BE-CSE-2B"

	result, err := e.Extract(context.Background(), sourceOf(other, singleSlotPage()), "BE-CSE-2A")
	require.NoError(t, err)
	assert.Equal(t, []int{2}, result.MatchedPages)
	for _, entry := range result.Entries {
		assert.Equal(t, 2, entry.Page)
	}
}

func TestExtract_StructuralShortfall(t *testing.T) {
	e := newTestExtractor(t, nil)

	page := []TextFragment{
		frag("BE-CSE-2A", 10, 90, 300),
		frag("1", 100, 110, 260),
		frag("CS101", 100, 160, 240),
	}

	result, err := e.Extract(context.Background(), sourceOf(page), "BE-CSE-2A")
	require.NoError(t, err)
	assert.True(t, result.Found())
	assert.Empty(t, result.Entries)

	pr := e.ExtractPage(1, page, "BE-CSE-2A")
	assert.True(t, pr.Shortfall)
	assert.Equal(t, 3, pr.RowCount)
	assert.Empty(t, pr.Columns)
}

func TestExtract_HeaderScope(t *testing.T) {
	// second page repeats the grid but carries no time-slot header band
	withoutSlots := func() []TextFragment {
		var out []TextFragment
		for _, f := range twoSlotPage() {
			if f.YCenter() == 50 {
				continue
			}
			out = append(out, f)
		}
		return out
	}

	t.Run("page scope resets headers", func(t *testing.T) {
		e := newTestExtractor(t, nil)
		result, err := e.Extract(context.Background(), sourceOf(twoSlotPage(), withoutSlots()), "BE-CSE-2A")
		require.NoError(t, err)

		for _, entry := range result.Entries {
			if entry.Page == 2 {
				assert.Contains(t, entry.Time, "Unknown Time Slot")
			}
		}
	})

	t.Run("document scope carries headers forward", func(t *testing.T) {
		e := newTestExtractor(t, func(c *ExtractorConfig) { c.HeaderScope = HeaderScopeDocument })
		result, err := e.Extract(context.Background(), sourceOf(twoSlotPage(), withoutSlots()), "BE-CSE-2A")
		require.NoError(t, err)

		var page2 []Entry
		for _, entry := range result.Entries {
			if entry.Page == 2 {
				page2 = append(page2, entry)
			}
		}
		require.Len(t, page2, 3)
		assert.Equal(t, "09:00-10:00", page2[0].Time)
		assert.Equal(t, "10:00-11:00", page2[2].Time)
	})

	t.Run("document scope merges repeated headers", func(t *testing.T) {
		// Accumulated headers from both pages interleave by x0, so the second
		// column of page 2 is labelled with the duplicate first slot.
		e := newTestExtractor(t, func(c *ExtractorConfig) { c.HeaderScope = HeaderScopeDocument })
		result, err := e.Extract(context.Background(), sourceOf(twoSlotPage(), twoSlotPage()), "BE-CSE-2A")
		require.NoError(t, err)

		var page2 []Entry
		for _, entry := range result.Entries {
			if entry.Page == 2 {
				page2 = append(page2, entry)
			}
		}
		require.Len(t, page2, 3)
		assert.Equal(t, "MA102", page2[2].RawText)
		assert.Equal(t, "09:00-10:00", page2[2].Time)
	})
}

func TestExtract_MalformedPageSkipped(t *testing.T) {
	var logs bytes.Buffer
	e := newTestExtractor(t, func(c *ExtractorConfig) { c.Logger = log.New(&logs, "", 0) })

	src := &fakeSource{pages: []fakePage{malformedPage(1), {fragments: twoSlotPage()}}}
	result, err := e.Extract(context.Background(), src, "BE-CSE-2A")
	require.NoError(t, err)
	assert.Equal(t, []int{2}, result.MatchedPages)
	assert.Len(t, result.Entries, 3)
	assert.Contains(t, logs.String(), "skipping page 1")
}

func TestExtract_UpstreamFailure(t *testing.T) {
	e := newTestExtractor(t, nil)
	boom := errors.New("stream truncated")

	src := &fakeSource{pages: []fakePage{{err: boom}}}
	_, err := e.Extract(context.Background(), src, "BE-CSE-2A")
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
}

func TestExtract_Cancelled(t *testing.T) {
	e := newTestExtractor(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := e.Extract(ctx, sourceOf(twoSlotPage()), "BE-CSE-2A")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestExtract_DroppedCellsLogged(t *testing.T) {
	var logs bytes.Buffer
	e := newTestExtractor(t, func(c *ExtractorConfig) { c.Logger = log.New(&logs, "", 0) })

	page := append(twoSlotPage(), frag("ANNEX", 600, 640, 300))
	pr := e.ExtractPage(1, page, "BE-CSE-2A")

	require.Len(t, pr.Dropped, 1)
	assert.Equal(t, "ANNEX", pr.Dropped[0].Text)
	assert.Contains(t, logs.String(), `"ANNEX"`)
}

func TestNewExtractor_Validation(t *testing.T) {
	cfg := DefaultExtractorConfig()
	cfg.Thresholds.HeaderRows = 1
	_, err := NewExtractor(cfg)
	assert.Error(t, err)

	e, err := NewExtractor(ExtractorConfig{Thresholds: DefaultThresholds()})
	require.NoError(t, err)
	assert.Equal(t, RowStrategyGreedy, e.Config().RowStrategy)
	assert.Equal(t, HeaderScopePage, e.Config().HeaderScope)
}

func TestParseHeaderScope(t *testing.T) {
	s, err := ParseHeaderScope("document")
	require.NoError(t, err)
	assert.Equal(t, HeaderScopeDocument, s)

	s, err = ParseHeaderScope("")
	require.NoError(t, err)
	assert.Equal(t, HeaderScopePage, s)

	_, err = ParseHeaderScope("global")
	assert.Error(t, err)
}
