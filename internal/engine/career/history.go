package career

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned for unknown history entries and sessions.
var ErrNotFound = errors.New("not found")

// sortableTime is RFC3339 with fixed-width nanoseconds so string order is time order.
const sortableTime = "2006-01-02T15:04:05.000000000Z07:00"

// DefaultFileName names history entries uploaded without a file name.
const DefaultFileName = "Unnamed Resume"

// HistoryEntry is one stored résumé analysis.
type HistoryEntry struct {
	ID       string         `json:"id"`
	FileName string         `json:"fileName"`
	Date     string         `json:"date"` // RFC3339, UTC
	Score    float64        `json:"score"`
	Results  AnalysisResult `json:"results"`
}

// Store persists analysis history and saved job ids.
type Store interface {
	AddHistory(ctx context.Context, e HistoryEntry) error
	ListHistory(ctx context.Context, limit int) ([]HistoryEntry, error)
	GetHistory(ctx context.Context, id string) (*HistoryEntry, error)
	DeleteHistory(ctx context.Context, id string) error
	ClearHistory(ctx context.Context) error
	ToggleSavedJob(ctx context.Context, jobID string) (bool, error)
	ListSavedJobs(ctx context.Context) ([]string, error)
	Close() error
}

var (
	storeMu sync.RWMutex
	store   Store
)

// SetStore installs the package-level history store, set from main.go.
func SetStore(s Store) {
	storeMu.Lock()
	store = s
	storeMu.Unlock()
}

func getStore() (Store, error) {
	storeMu.RLock()
	defer storeMu.RUnlock()
	if store == nil {
		return nil, errors.New("history store not configured")
	}
	return store, nil
}

// RecordAnalysis stores an analysis result as a new history entry, newest first.
func RecordAnalysis(ctx context.Context, fileName string, result *AnalysisResult) (*HistoryEntry, error) {
	if result == nil {
		return nil, errors.New("history_add: result is required")
	}
	s, err := getStore()
	if err != nil {
		return nil, err
	}
	fileName = strings.TrimSpace(fileName)
	if fileName == "" {
		fileName = DefaultFileName
	}
	e := HistoryEntry{
		ID:       uuid.NewString(),
		FileName: fileName,
		Date:     time.Now().UTC().Format(sortableTime),
		Score:    result.ATSScore,
		Results:  *result,
	}
	if err := s.AddHistory(ctx, e); err != nil {
		return nil, err
	}
	return &e, nil
}

// HistoryListResult is the output of ListHistory.
type HistoryListResult struct {
	Entries []HistoryEntry `json:"entries"`
	Total   int            `json:"total"`
}

// ListHistory returns history newest first. limit <= 0 or > 100 means 50.
func ListHistory(ctx context.Context, limit int) (*HistoryListResult, error) {
	s, err := getStore()
	if err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	entries, err := s.ListHistory(ctx, limit)
	if err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []HistoryEntry{}
	}
	return &HistoryListResult{Entries: entries, Total: len(entries)}, nil
}

// GetHistory returns one entry or ErrNotFound.
func GetHistory(ctx context.Context, id string) (*HistoryEntry, error) {
	s, err := getStore()
	if err != nil {
		return nil, err
	}
	return s.GetHistory(ctx, id)
}

// DeleteHistory removes one entry or returns ErrNotFound.
func DeleteHistory(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return invalid("id", "id is required")
	}
	s, err := getStore()
	if err != nil {
		return err
	}
	return s.DeleteHistory(ctx, id)
}

// ClearHistory removes every entry.
func ClearHistory(ctx context.Context) error {
	s, err := getStore()
	if err != nil {
		return err
	}
	return s.ClearHistory(ctx)
}

// ToggleSavedJob saves jobID if unsaved and unsaves it otherwise.
// Returns the new saved state.
func ToggleSavedJob(ctx context.Context, jobID string) (bool, error) {
	if strings.TrimSpace(jobID) == "" {
		return false, invalid("jobId", "job id is required")
	}
	s, err := getStore()
	if err != nil {
		return false, err
	}
	return s.ToggleSavedJob(ctx, jobID)
}

// SavedJobs lists saved job ids, most recently saved first.
func SavedJobs(ctx context.Context) ([]string, error) {
	s, err := getStore()
	if err != nil {
		return nil, err
	}
	ids, err := s.ListSavedJobs(ctx)
	if ids == nil && err == nil {
		ids = []string{}
	}
	return ids, err
}
