package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"github.com/arzan03/wastetrack/internal/models"
	"github.com/arzan03/wastetrack/internal/utils"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ObjectStore holds exported report files.
type ObjectStore interface {
	Put(ctx context.Context, name, contentType string, data []byte) error
	PresignedURL(ctx context.Context, name string, ttl time.Duration) (string, error)
}

// EntryLister is the read side of WasteStore used by exports.
type EntryLister interface {
	List(ctx context.Context) ([]models.WasteEntry, error)
}

// Report describes an exported snapshot.
type Report struct {
	ID         string          `json:"id"`
	CreatedAt  time.Time       `json:"createdAt"`
	EntryCount int             `json:"entryCount"`
	Summary    *models.Summary `json:"summary"`
	EntriesURL string          `json:"entriesUrl"`
	SummaryURL string          `json:"summaryUrl"`
	ExpiresAt  time.Time       `json:"expiresAt"`
}

type ReportService struct {
	entries EntryLister
	objects ObjectStore
	loc     *time.Location
	urlTTL  time.Duration
	now     func() time.Time
	log     *zap.Logger
}

func NewReportService(entries EntryLister, objects ObjectStore, loc *time.Location, urlTTL time.Duration, log *zap.Logger) *ReportService {
	return &ReportService{entries: entries, objects: objects, loc: loc, urlTTL: urlTTL, now: time.Now, log: log}
}

var csvHeader = []string{"id", "location", "weight_kg", "category", "date", "time", "collected_at", "user"}

// Export snapshots every entry once and uploads entries.csv and summary.json
// built from that same snapshot, so the two files always agree.
func (s *ReportService) Export(ctx context.Context) (*Report, error) {
	entries, err := s.entries.List(ctx)
	if err != nil {
		return nil, internalError(s.log, "list waste entries", err)
	}

	summary := models.Summarize(entries, s.loc)
	entriesCSV, err := encodeEntriesCSV(entries, s.loc)
	if err != nil {
		return nil, internalError(s.log, "encode entries csv", err)
	}
	summaryJSON, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return nil, internalError(s.log, "encode summary", err)
	}

	created := s.now().UTC()
	id := uuid.NewString()
	prefix := fmt.Sprintf("reports/%s-%s/", created.Format("20060102T150405Z"), id)

	upload := func(name, contentType string, data []byte) utils.ParallelTask[string] {
		return func() (string, error) {
			if err := s.objects.Put(ctx, prefix+name, contentType, data); err != nil {
				return "", err
			}
			return s.objects.PresignedURL(ctx, prefix+name, s.urlTTL)
		}
	}

	urls, err := utils.RunParallelTasks(
		upload("entries.csv", "text/csv", entriesCSV),
		upload("summary.json", "application/json", summaryJSON),
	)
	if err != nil {
		return nil, internalError(s.log, "upload report", err)
	}

	s.log.Info("report exported", zap.String("report_id", id), zap.Int("entries", len(entries)))
	return &Report{
		ID:         id,
		CreatedAt:  created,
		EntryCount: len(entries),
		Summary:    summary,
		EntriesURL: urls[0],
		SummaryURL: urls[1],
		ExpiresAt:  created.Add(s.urlTTL),
	}, nil
}

func encodeEntriesCSV(entries []models.WasteEntry, loc *time.Location) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(csvHeader); err != nil {
		return nil, err
	}
	for _, e := range entries {
		user := ""
		if !e.User.IsZero() {
			user = e.User.Hex()
		}
		record := []string{
			e.ID.Hex(),
			e.Location,
			strconv.FormatFloat(e.Weight, 'f', -1, 64),
			string(e.Category),
			e.Date,
			e.Time,
			e.CollectedAt.In(loc).Format(time.RFC3339),
			user,
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}
