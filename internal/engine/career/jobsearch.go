package career

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"sync"

	"github.com/tidwall/gjson"
	"golang.org/x/time/rate"

	"github.com/anatolykoptev/go_career/internal/engine"
)

// JobSearcher finds live job listings for a search term.
type JobSearcher interface {
	Search(ctx context.Context, query, location string) ([]JobRecommendation, error)
}

var (
	jobSearcherMu sync.RWMutex
	jobSearcher   JobSearcher
)

// SetJobSearcher installs the live job source used for recommendations.
func SetJobSearcher(s JobSearcher) {
	jobSearcherMu.Lock()
	jobSearcher = s
	jobSearcherMu.Unlock()
}

func getJobSearcher() JobSearcher {
	jobSearcherMu.RLock()
	defer jobSearcherMu.RUnlock()
	return jobSearcher
}

// ErrNoJobSearch is returned by SearchLive when no job search API is configured.
var ErrNoJobSearch = errors.New("job search is not configured")

// SearchLive queries the configured job source and ranks the listings
// against resumeText.
func SearchLive(ctx context.Context, query, location, resumeText string) ([]JobRecommendation, error) {
	src := getJobSearcher()
	if src == nil {
		return nil, ErrNoJobSearch
	}
	query = strings.TrimSpace(query)
	if query == "" {
		query = defaultSearchTerm
	}
	jobs, err := src.Search(ctx, query, location)
	if err != nil {
		return nil, fmt.Errorf("job search %q: %w", query, err)
	}
	return RankJobs(jobs, resumeText), nil
}

// DefaultSearchLocation is used when the caller gives none.
const DefaultSearchLocation = "united states"

// RapidAPIClient queries the JSearch API on RapidAPI.
type RapidAPIClient struct {
	key     string
	host    string
	baseURL string
	limiter *rate.Limiter
	limit   int
}

// NewRapidAPIClient creates a JSearch client. host defaults to jsearch.p.rapidapi.com.
func NewRapidAPIClient(key, host string) (*RapidAPIClient, error) {
	if key == "" {
		return nil, errors.New("rapidapi: key is required")
	}
	if host == "" {
		host = "jsearch.p.rapidapi.com"
	}
	return &RapidAPIClient{
		key:     key,
		host:    host,
		baseURL: "https://" + host,
		// free tier allows a handful of requests per second
		limiter: rate.NewLimiter(rate.Limit(2), 2),
		limit:   10,
	}, nil
}

func (c *RapidAPIClient) headers() map[string]string {
	return map[string]string{
		"x-rapidapi-key":  c.key,
		"x-rapidapi-host": c.host,
	}
}

func (c *RapidAPIClient) get(ctx context.Context, path string, q url.Values) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	engine.IncrJobSearchRequests()
	return engine.FetchJSON(ctx, c.baseURL+path, q, c.headers())
}

// Search returns listings for query in location. Listings without pay data get
// the estimated salary for the query.
func (c *RapidAPIClient) Search(ctx context.Context, query, location string) ([]JobRecommendation, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, invalid("query", "query is required")
	}
	if location == "" {
		location = DefaultSearchLocation
	}
	body, err := c.get(ctx, "/search", url.Values{
		"query":     {query + " in " + location},
		"page":      {"1"},
		"num_pages": {"1"},
	})
	if err != nil {
		return nil, fmt.Errorf("rapidapi search: %w", err)
	}
	jobs := parseSearchResults(body, c.limit)

	needSalary := false
	for _, j := range jobs {
		if j.Salary == nil {
			needSalary = true
			break
		}
	}
	if needSalary {
		est, err := c.EstimateSalary(ctx, query, location)
		if err != nil {
			slog.Debug("rapidapi: salary estimate failed", slog.String("query", query), slog.Any("error", err))
		} else if est != nil {
			for i := range jobs {
				if jobs[i].Salary == nil {
					s := *est
					jobs[i].Salary = &s
				}
			}
		}
	}
	return jobs, nil
}

// EstimateSalary returns the median market range for a job title, or nil when unknown.
func (c *RapidAPIClient) EstimateSalary(ctx context.Context, title, location string) (*Salary, error) {
	if location == "" {
		location = DefaultSearchLocation
	}
	body, err := c.get(ctx, "/estimated-salary", url.Values{
		"job_title":           {title},
		"location":            {location},
		"location_type":       {"ANY"},
		"years_of_experience": {"ALL"},
	})
	if err != nil {
		return nil, fmt.Errorf("rapidapi estimated-salary: %w", err)
	}
	return parseSalaryEstimate(body), nil
}

func parseSearchResults(body []byte, limit int) []JobRecommendation {
	var jobs []JobRecommendation
	gjson.GetBytes(body, "data").ForEach(func(_, item gjson.Result) bool {
		title := item.Get("job_title").String()
		if title == "" {
			return true
		}
		loc := joinNonEmpty(", ", item.Get("job_city").String(), item.Get("job_state").String(), item.Get("job_country").String())
		if loc == "" {
			loc = item.Get("job_location").String()
		}
		if item.Get("job_is_remote").Bool() {
			loc = joinNonEmpty(" · ", loc, "Remote")
		}
		j := JobRecommendation{
			ID:          item.Get("job_id").String(),
			Title:       title,
			Company:     item.Get("employer_name").String(),
			Location:    loc,
			Description: engine.TruncateAtWord(engine.HTMLToText(item.Get("job_description").String()), 600),
			Link:        item.Get("job_apply_link").String(),
			SourceLink:  item.Get("job_google_link").String(),
		}
		for _, s := range item.Get("job_required_skills").Array() {
			if v := s.String(); v != "" {
				j.Skills = append(j.Skills, v)
			}
		}
		if j.Skills == nil {
			j.Skills = []string{}
		}
		if lo, hi := item.Get("job_min_salary").Float(), item.Get("job_max_salary").Float(); hi > 0 {
			j.Salary = &Salary{Min: lo, Median: (lo + hi) / 2, Max: hi}
		}
		if j.ID == "" {
			j.ID = engine.CacheKey("job", j.Title, j.Company, j.Location)[3:]
		}
		jobs = append(jobs, j)
		return len(jobs) < limit
	})
	return jobs
}

func parseSalaryEstimate(body []byte) *Salary {
	first := gjson.GetBytes(body, "data.0")
	if !first.Exists() {
		return nil
	}
	s := &Salary{
		Min:    first.Get("min_salary").Float(),
		Median: first.Get("median_salary").Float(),
		Max:    first.Get("max_salary").Float(),
	}
	if s.Max == 0 && s.Median == 0 {
		return nil
	}
	if s.Median == 0 {
		s.Median = (s.Min + s.Max) / 2
	}
	return s
}

func joinNonEmpty(sep string, parts ...string) string {
	var out []string
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, sep)
}
