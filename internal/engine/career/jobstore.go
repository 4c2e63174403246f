package career

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/anatolykoptev/go_career/internal/engine"
)

// JobStore lists curated job postings.
type JobStore interface {
	ListJobs(ctx context.Context) []JobRecommendation
}

var (
	jobStoreMu sync.RWMutex
	jobStore   JobStore
)

// SetJobStore installs the curated job source.
func SetJobStore(s JobStore) {
	jobStoreMu.Lock()
	jobStore = s
	jobStoreMu.Unlock()
}

func getJobStore() JobStore {
	jobStoreMu.RLock()
	defer jobStoreMu.RUnlock()
	return jobStore
}

// DefaultJobCollection is the collection holding curated listings.
const DefaultJobCollection = "career-pilot-db"

// MongoJobStore reads listings from a Mongo-compatible database (MongoDB, Cosmos DB).
type MongoJobStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// mongoJob mirrors the stored document; _id may be an ObjectID or a string.
type mongoJob struct {
	MongoID         bson.RawValue `bson:"_id"`
	ID              string        `bson:"id"`
	Title           string        `bson:"title"`
	Company         string        `bson:"company"`
	Location        string        `bson:"location"`
	Description     string        `bson:"description"`
	MatchPercentage float64       `bson:"matchPercentage"`
	Skills          []string      `bson:"skills"`
	Link            string        `bson:"link"`
	SourceLink      string        `bson:"sourceLink"`
	Salary          *struct {
		Min    float64 `bson:"min"`
		Median float64 `bson:"median"`
		Max    float64 `bson:"max"`
	} `bson:"salary"`
}

// ConnectMongoJobStore connects and pings. collection defaults to DefaultJobCollection.
func ConnectMongoJobStore(ctx context.Context, uri, database, collection string) (*MongoJobStore, error) {
	if collection == "" {
		collection = DefaultJobCollection
	}
	cctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(cctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("jobstore: connect: %w", err)
	}
	if err := client.Ping(cctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("jobstore: ping: %w", err)
	}
	return &MongoJobStore{
		client: client,
		coll:   client.Database(database).Collection(collection),
	}, nil
}

// ListJobs returns all stored listings. Errors are logged and yield an empty list.
func (s *MongoJobStore) ListJobs(ctx context.Context) []JobRecommendation {
	engine.IncrJobStoreReads()
	cur, err := s.coll.Find(ctx, bson.D{})
	if err != nil {
		slog.Warn("jobstore: find failed", slog.Any("error", err))
		return []JobRecommendation{}
	}
	var docs []mongoJob
	if err := cur.All(ctx, &docs); err != nil {
		slog.Warn("jobstore: decode failed", slog.Any("error", err))
		return []JobRecommendation{}
	}

	out := make([]JobRecommendation, 0, len(docs))
	for _, d := range docs {
		j := JobRecommendation{
			ID:              d.ID,
			Title:           d.Title,
			Company:         d.Company,
			Location:        d.Location,
			Description:     engine.HTMLToText(d.Description),
			MatchPercentage: engine.ClampScore(d.MatchPercentage),
			Skills:          d.Skills,
			Link:            d.Link,
			SourceLink:      d.SourceLink,
		}
		if j.ID == "" {
			j.ID = rawID(d.MongoID)
		}
		if j.Skills == nil {
			j.Skills = []string{}
		}
		if d.Salary != nil {
			j.Salary = &Salary{Min: d.Salary.Min, Median: d.Salary.Median, Max: d.Salary.Max}
		}
		out = append(out, j)
	}
	return out
}

// Close disconnects the client.
func (s *MongoJobStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func rawID(v bson.RawValue) string {
	if oid, ok := v.ObjectIDOK(); ok {
		return oid.Hex()
	}
	if str, ok := v.StringValueOK(); ok {
		return str
	}
	if n, ok := v.AsInt64OK(); ok {
		return fmt.Sprintf("%d", n)
	}
	return ""
}

// MatchBand buckets listings by match percentage.
type MatchBand string

const (
	BandAll    MatchBand = "all"
	BandHigh   MatchBand = "high"   // >= 80
	BandMedium MatchBand = "medium" // 60-79
	BandLow    MatchBand = "low"    // < 60
)

// ListRecommendations returns curated listings filtered by term and match band,
// ranked against resumeText when given.
func ListRecommendations(ctx context.Context, term string, band MatchBand, resumeText string) []JobRecommendation {
	store := getJobStore()
	if store == nil {
		return []JobRecommendation{}
	}
	jobs := RankJobs(store.ListJobs(ctx), resumeText)
	jobs = FilterJobs(jobs, term)
	return FilterByBand(jobs, band)
}

// FilterByBand keeps jobs whose match percentage falls into band.
func FilterByBand(jobs []JobRecommendation, band MatchBand) []JobRecommendation {
	if band == "" || band == BandAll {
		return jobs
	}
	out := make([]JobRecommendation, 0, len(jobs))
	for _, j := range jobs {
		p := j.MatchPercentage
		switch {
		case band == BandHigh && p >= 80,
			band == BandMedium && p >= 60 && p < 80,
			band == BandLow && p < 60:
			out = append(out, j)
		}
	}
	return out
}
