package career

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/streadway/amqp"

	"github.com/anatolykoptev/go_career/internal/engine"
)

const (
	// AnalysisQueueName holds pending résumé analyses.
	AnalysisQueueName = "resume_analysis"
	// AnalysisUpdatesExchange receives status updates keyed analysis.<jobId>.
	AnalysisUpdatesExchange = "analysis_updates"
)

// Job statuses published on AnalysisUpdatesExchange.
const (
	JobQueued     = "queued"
	JobProcessing = "processing"
	JobCompleted  = "completed"
	JobFailed     = "failed"
)

// AnalysisJob is one queued analysis. Either ResumeText or ObjectKey is set.
type AnalysisJob struct {
	JobID          string `json:"jobId"`
	FileName       string `json:"fileName"`
	ResumeText     string `json:"resumeText,omitempty"`
	ObjectKey      string `json:"objectKey,omitempty"`
	JobDescription string `json:"jobDescription,omitempty"`
}

// AnalysisStatus is published for every job state change.
type AnalysisStatus struct {
	JobID     string    `json:"jobId"`
	Status    string    `json:"status"`
	HistoryID string    `json:"historyId,omitempty"`
	Error     string    `json:"error,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// AnalysisQueue runs résumé analyses through RabbitMQ.
type AnalysisQueue struct {
	conn    *amqp.Connection
	objects *ObjectStore

	pubMu sync.Mutex
	pubCh *amqp.Channel
}

// DialAnalysisQueue connects and declares the queue and status exchange.
// objects may be nil when uploads are not archived.
func DialAnalysisQueue(url string, objects *ObjectStore) (*AnalysisQueue, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("queue: dial: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("queue: channel: %w", err)
	}
	if err := declareTopology(ch); err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}
	return &AnalysisQueue{conn: conn, objects: objects, pubCh: ch}, nil
}

func declareTopology(ch *amqp.Channel) error {
	if _, err := ch.QueueDeclare(
		AnalysisQueueName,
		true,  // durable
		false, // auto-delete
		false, // exclusive
		false, // no-wait
		nil,
	); err != nil {
		return fmt.Errorf("queue: declare %s: %w", AnalysisQueueName, err)
	}
	if err := ch.ExchangeDeclare(
		AnalysisUpdatesExchange,
		amqp.ExchangeTopic,
		true,  // durable
		false, // auto-delete
		false, // internal
		false, // no-wait
		nil,
	); err != nil {
		return fmt.Errorf("queue: declare %s: %w", AnalysisUpdatesExchange, err)
	}
	return nil
}

// Publish enqueues job, assigning a JobID when empty, and returns the id.
func (q *AnalysisQueue) Publish(ctx context.Context, job AnalysisJob) (string, error) {
	if job.ResumeText == "" && job.ObjectKey == "" {
		return "", invalid("resumeText", "resume text or object key is required")
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if job.JobID == "" {
		job.JobID = uuid.NewString()
	}
	body, err := json.Marshal(job)
	if err != nil {
		return "", fmt.Errorf("queue: marshal: %w", err)
	}
	q.pubMu.Lock()
	err = q.pubCh.Publish("", AnalysisQueueName, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    job.JobID,
		Body:         body,
	})
	q.pubMu.Unlock()
	if err != nil {
		return "", fmt.Errorf("queue: publish: %w", err)
	}
	engine.IncrQueueJobs()
	q.publishStatus(AnalysisStatus{JobID: job.JobID, Status: JobQueued})
	return job.JobID, nil
}

func (q *AnalysisQueue) publishStatus(st AnalysisStatus) {
	st.Timestamp = time.Now().UTC()
	body, err := json.Marshal(st)
	if err != nil {
		return
	}
	q.pubMu.Lock()
	defer q.pubMu.Unlock()
	err = q.pubCh.Publish(AnalysisUpdatesExchange, "analysis."+st.JobID, false, false, amqp.Publishing{
		ContentType: "application/json",
		Body:        body,
	})
	if err != nil {
		slog.Warn("queue: status publish failed", slog.String("job", st.JobID), slog.Any("error", err))
	}
}

// RunWorkers consumes jobs with n workers until ctx is cancelled.
func (q *AnalysisQueue) RunWorkers(ctx context.Context, n int) error {
	if n <= 0 {
		n = 1
	}
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := range n {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			if err := q.worker(ctx, id); err != nil {
				errs <- err
			}
		}(i + 1)
	}
	slog.Info("analysis workers started", slog.Int("workers", n))
	wg.Wait()
	close(errs)
	return errors.Join(drain(errs)...)
}

func drain(ch <-chan error) []error {
	var out []error
	for err := range ch {
		out = append(out, err)
	}
	return out
}

func (q *AnalysisQueue) worker(ctx context.Context, id int) error {
	ch, err := q.conn.Channel()
	if err != nil {
		return fmt.Errorf("worker %d: channel: %w", id, err)
	}
	defer ch.Close()
	if err := ch.Qos(1, 0, false); err != nil {
		return fmt.Errorf("worker %d: qos: %w", id, err)
	}
	msgs, err := ch.Consume(
		AnalysisQueueName,
		fmt.Sprintf("career-worker-%d", id),
		false, // manual ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("worker %d: consume: %w", id, err)
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-msgs:
			if !ok {
				return nil
			}
			q.handle(ctx, id, msg)
		}
	}
}

func (q *AnalysisQueue) handle(ctx context.Context, workerID int, msg amqp.Delivery) {
	var job AnalysisJob
	if err := json.Unmarshal(msg.Body, &job); err != nil || job.JobID == "" {
		slog.Warn("queue: dropping malformed job", slog.Int("worker", workerID), slog.Any("error", err))
		_ = msg.Nack(false, false)
		return
	}
	q.publishStatus(AnalysisStatus{JobID: job.JobID, Status: JobProcessing})

	var entry *HistoryEntry
	err := engine.TrackOperation(ctx, "queue_analysis", func(ctx context.Context) error {
		var err error
		entry, err = q.process(ctx, job)
		return err
	})
	if err != nil {
		slog.Warn("queue: analysis failed", slog.String("job", job.JobID), slog.Any("error", err))
		q.publishStatus(AnalysisStatus{JobID: job.JobID, Status: JobFailed, Error: UserMessage(err)})
		_ = msg.Ack(false)
		return
	}
	q.publishStatus(AnalysisStatus{JobID: job.JobID, Status: JobCompleted, HistoryID: entry.ID})
	_ = msg.Ack(false)
	slog.Info("queue: analysis done", slog.Int("worker", workerID), slog.String("job", job.JobID),
		slog.Float64("score", entry.Score))
}

func (q *AnalysisQueue) process(ctx context.Context, job AnalysisJob) (*HistoryEntry, error) {
	text := job.ResumeText
	if text == "" {
		if q.objects == nil {
			return nil, errors.New("job has no resume text and no object store is configured")
		}
		data, err := q.objects.GetResume(ctx, job.ObjectKey)
		if err != nil {
			return nil, err
		}
		if text, err = ExtractText(job.FileName, data); err != nil {
			return nil, err
		}
	}
	result, err := AnalyzeResume(ctx, AnalyzeInput{ResumeText: text, JobDescription: job.JobDescription})
	if err != nil {
		return nil, err
	}
	return RecordAnalysis(ctx, job.FileName, result)
}

// Close closes the publisher channel and connection.
func (q *AnalysisQueue) Close() error {
	q.pubMu.Lock()
	defer q.pubMu.Unlock()
	_ = q.pubCh.Close()
	return q.conn.Close()
}
