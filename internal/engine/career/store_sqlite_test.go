package career

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistoryLifecycle(t *testing.T) {
	ctx := context.Background()
	withStore(t)

	first, err := RecordAnalysis(ctx, "", &AnalysisResult{ATSScore: 61, Skills: []string{"Go"}})
	require.NoError(t, err)
	assert.Equal(t, DefaultFileName, first.FileName)
	assert.Equal(t, 61.0, first.Score)
	time.Sleep(2 * time.Millisecond)
	second, err := RecordAnalysis(ctx, " cv.pdf ", &AnalysisResult{ATSScore: 80})
	require.NoError(t, err)
	assert.Equal(t, "cv.pdf", second.FileName)

	list, err := ListHistory(ctx, 0)
	require.NoError(t, err)
	require.Equal(t, 2, list.Total)
	assert.Equal(t, second.ID, list.Entries[0].ID, "newest first")
	assert.Equal(t, []string{"Go"}, list.Entries[1].Results.Skills)

	limited, err := ListHistory(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, limited.Entries, 1)

	got, err := GetHistory(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, 61.0, got.Results.ATSScore)

	require.NoError(t, DeleteHistory(ctx, first.ID))
	_, err = GetHistory(ctx, first.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, DeleteHistory(ctx, first.ID), ErrNotFound)
	assert.True(t, IsValidation(DeleteHistory(ctx, "")))

	require.NoError(t, ClearHistory(ctx))
	list, err = ListHistory(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, list.Entries)
	assert.NotNil(t, list.Entries)
}

func TestRecordAnalysisRequiresResult(t *testing.T) {
	withStore(t)
	_, err := RecordAnalysis(context.Background(), "cv.pdf", nil)
	assert.Error(t, err)
}

func TestHistoryWithoutStore(t *testing.T) {
	SetStore(nil)
	_, err := ListHistory(context.Background(), 10)
	assert.Error(t, err)
}

func TestToggleSavedJob(t *testing.T) {
	ctx := context.Background()
	withStore(t)

	saved, err := ToggleSavedJob(ctx, "job-1")
	require.NoError(t, err)
	assert.True(t, saved)
	time.Sleep(2 * time.Millisecond)
	saved, err = ToggleSavedJob(ctx, "job-2")
	require.NoError(t, err)
	assert.True(t, saved)

	ids, err := SavedJobs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"job-2", "job-1"}, ids)

	saved, err = ToggleSavedJob(ctx, "job-1")
	require.NoError(t, err)
	assert.False(t, saved)

	ids, err = SavedJobs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"job-2"}, ids)

	_, err = ToggleSavedJob(ctx, " ")
	assert.True(t, IsValidation(err))
}

func TestSavedJobsEmpty(t *testing.T) {
	withStore(t)
	ids, err := SavedJobs(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{}, ids)
}
