package inbox

import (
	"testing"

	"github.com/hupe1980/inboxgate/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRecords() []Record {
	return []Record{
		{ID: "1", From: "jane@example.com", Subject: "Coffee this weekend?", Body: "Hey! Are you free this Saturday?"},
		{ID: "2", From: "boss@company.com", Subject: "Q3 Report Review", Body: "Could you review the Q3 report?"},
		{ID: "3", From: "deals@spammy-cruises.biz", Subject: "YOU WON A FREE CRUISE!!!", Body: "Click here to claim your prize!!!"},
		{ID: "4", From: "mike@example.com", Subject: "Hike on Sunday?", Body: "We're meeting at 8am at the trailhead."},
		{ID: "5", From: "hr@company.com", Subject: "Compliance Training Reminder", Body: "Complete the training module by Friday."},
	}
}

func TestStore_ListDerivesStatus(t *testing.T) {
	s := NewStore(sampleRecords()...)

	views := s.List()
	require.Len(t, views, 5)
	for _, v := range views {
		assert.Equal(t, StatusNew, v.Status)
	}

	s.MarkProcessed("2")

	views = s.List()
	assert.Equal(t, StatusNew, views[0].Status)
	assert.Equal(t, StatusDone, views[1].Status)
	// Order preserved
	assert.Equal(t, "1", views[0].ID)
	assert.Equal(t, "5", views[4].ID)
}

func TestStore_Get(t *testing.T) {
	s := NewStore(sampleRecords()...)

	rec, err := s.Get("3")
	require.NoError(t, err)
	assert.Equal(t, "deals@spammy-cruises.biz", rec.From)

	_, err = s.Get("99")
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestStore_MarkProcessedIdempotent(t *testing.T) {
	s := NewStore(sampleRecords()...)

	s.MarkProcessed("4")
	s.MarkProcessed("4")

	assert.True(t, s.IsProcessed("4"))
	assert.Equal(t, []string{"4"}, s.Processed())
	assert.Equal(t, 4, s.Remaining())
}

func TestStore_RemoveDeletesAndMarksProcessed(t *testing.T) {
	s := NewStore(sampleRecords()...)

	require.NoError(t, s.Remove("3"))

	assert.Equal(t, 4, s.Len())
	assert.True(t, s.IsProcessed("3"))
	_, err := s.Get("3")
	assert.ErrorIs(t, err, core.ErrNotFound)

	// Removing again fails but leaves the processed set unchanged.
	assert.ErrorIs(t, s.Remove("3"), core.ErrNotFound)
	assert.Equal(t, []string{"3"}, s.Processed())
}

func TestStore_RemainingCountsUnprocessedOnly(t *testing.T) {
	s := NewStore(sampleRecords()...)
	assert.Equal(t, 5, s.Remaining())

	s.MarkProcessed("1")
	require.NoError(t, s.Remove("3"))

	assert.Equal(t, 3, s.Remaining())

	for _, id := range []string{"2", "4", "5"} {
		s.MarkProcessed(id)
	}
	assert.Equal(t, 0, s.Remaining())
}

func TestStore_DuplicateSeedIDsKeepFirst(t *testing.T) {
	s := NewStore(
		Record{ID: "1", From: "first@example.com"},
		Record{ID: "1", From: "second@example.com"},
	)

	assert.Equal(t, 1, s.Len())
	rec, err := s.Get("1")
	require.NoError(t, err)
	assert.Equal(t, "first@example.com", rec.From)
}
