package career

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

const searchBody = `{"status":"OK","data":[
 {"job_id":"abc","job_title":"Go Engineer","employer_name":"Acme","job_city":"Austin","job_state":"TX","job_country":"US",
  "job_is_remote":true,"job_description":"<p>Build <b>APIs</b></p>","job_apply_link":"https://acme/apply",
  "job_google_link":"https://google/abc","job_required_skills":["Go","SQL"],"job_min_salary":100000,"job_max_salary":140000},
 {"job_title":"Data Engineer","employer_name":"Globex","job_location":"Remote","job_description":"Pipelines"},
 {"job_id":"skip","job_title":""}
]}`

const salaryBody = `{"status":"OK","data":[{"min_salary":90000,"max_salary":150000,"median_salary":120000}]}`

func newTestRapidAPI(t *testing.T, handler http.HandlerFunc) *RapidAPIClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c, err := NewRapidAPIClient("test-key", "jsearch.example")
	require.NoError(t, err)
	c.baseURL = srv.URL
	c.limiter = rate.NewLimiter(rate.Inf, 1)
	return c
}

func TestRapidAPISearch(t *testing.T) {
	var salaryHits atomic.Int32
	c := newTestRapidAPI(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.Header.Get("x-rapidapi-key"))
		assert.Equal(t, "jsearch.example", r.Header.Get("x-rapidapi-host"))
		switch r.URL.Path {
		case "/search":
			assert.Equal(t, "golang in united states", r.URL.Query().Get("query"))
			w.Write([]byte(searchBody))
		case "/estimated-salary":
			salaryHits.Add(1)
			assert.Equal(t, "golang", r.URL.Query().Get("job_title"))
			w.Write([]byte(salaryBody))
		default:
			http.NotFound(w, r)
		}
	})

	jobs, err := c.Search(context.Background(), "golang", "")
	require.NoError(t, err)
	require.Len(t, jobs, 2)

	first := jobs[0]
	assert.Equal(t, "abc", first.ID)
	assert.Equal(t, "Austin, TX, US · Remote", first.Location)
	assert.Equal(t, []string{"Go", "SQL"}, first.Skills)
	assert.NotContains(t, first.Description, "<p>")
	require.NotNil(t, first.Salary)
	assert.Equal(t, 120000.0, first.Salary.Median)

	second := jobs[1]
	assert.NotEmpty(t, second.ID, "id derived when missing")
	assert.Equal(t, "Remote", second.Location)
	require.NotNil(t, second.Salary, "estimated salary fills gaps")
	assert.Equal(t, 120000.0, second.Salary.Median)
	assert.Equal(t, int32(1), salaryHits.Load())
}

func TestRapidAPISearchErrors(t *testing.T) {
	t.Run("empty query", func(t *testing.T) {
		c, err := NewRapidAPIClient("k", "")
		require.NoError(t, err)
		_, err = c.Search(context.Background(), " ", "")
		assert.True(t, IsValidation(err))
	})
	t.Run("missing key", func(t *testing.T) {
		_, err := NewRapidAPIClient("", "")
		assert.Error(t, err)
	})
	t.Run("upstream 403", func(t *testing.T) {
		c := newTestRapidAPI(t, func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusForbidden)
		})
		_, err := c.Search(context.Background(), "golang", "berlin")
		assert.Error(t, err)
	})
	t.Run("salary failure is ignored", func(t *testing.T) {
		c := newTestRapidAPI(t, func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/search" {
				w.Write([]byte(`{"data":[{"job_id":"x","job_title":"Dev"}]}`))
				return
			}
			w.WriteHeader(http.StatusBadRequest)
		})
		jobs, err := c.Search(context.Background(), "dev", "")
		require.NoError(t, err)
		require.Len(t, jobs, 1)
		assert.Nil(t, jobs[0].Salary)
	})
}

func TestParseSalaryEstimate(t *testing.T) {
	tests := []struct {
		name string
		body string
		want *Salary
	}{
		{"empty", `{"data":[]}`, nil},
		{"zeros", `{"data":[{"min_salary":0,"max_salary":0}]}`, nil},
		{"median derived", `{"data":[{"min_salary":100,"max_salary":200}]}`, &Salary{Min: 100, Median: 150, Max: 200}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, parseSalaryEstimate([]byte(tt.body)))
		})
	}
}

func TestParseSearchResultsLimit(t *testing.T) {
	jobs := parseSearchResults([]byte(searchBody), 1)
	assert.Len(t, jobs, 1)
}

func TestSearchLive(t *testing.T) {
	withSearcher(t, nil)
	_, err := SearchLive(context.Background(), "go", "", "")
	require.ErrorIs(t, err, ErrNoJobSearch)

	s := &stubSearcher{jobs: []JobRecommendation{
		{ID: "1", Title: "Accountant", Skills: []string{"excel"}},
		{ID: "2", Title: "Go Developer", Skills: []string{"go", "kubernetes"}},
	}}
	withSearcher(t, s)

	jobs, err := SearchLive(context.Background(), "  ", "", "Senior Go engineer, kubernetes operator")
	require.NoError(t, err)
	assert.Equal(t, defaultSearchTerm, s.term)
	require.Len(t, jobs, 2)
	assert.Equal(t, "2", jobs[0].ID)

	s.err = errors.New("boom")
	_, err = SearchLive(context.Background(), "go", "", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"go"`)
}
