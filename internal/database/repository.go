package database

import (
	"time"

	"github.com/procuptime/procuptime/internal/models"

	"github.com/pkg/errors"
)

// Repository handles all database operations for the diagnostics log
type Repository struct {
	db *DB
}

// NewRepository creates a new repository instance
func NewRepository(db *DB) *Repository {
	return &Repository{db: db}
}

// CreateErrorLog inserts a new error log into the database
func (r *Repository) CreateErrorLog(errorLog *models.ErrorLog) error {
	if errorLog.Timestamp.IsZero() {
		errorLog.Timestamp = time.Now()
	}
	result := r.db.Create(errorLog)
	if result.Error != nil {
		return errors.Wrap(result.Error, "failed to insert error log")
	}
	return nil
}

// RecentErrors returns up to limit error logs, newest first. An empty kind
// matches every kind.
func (r *Repository) RecentErrors(kind string, limit int) ([]*models.ErrorLog, error) {
	var logs []*models.ErrorLog

	query := r.db.Order("timestamp DESC").Order("id DESC")
	if kind != "" {
		query = query.Where("kind = ?", kind)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}

	if result := query.Find(&logs); result.Error != nil {
		return nil, errors.Wrap(result.Error, "failed to query error logs")
	}
	return logs, nil
}

// SummarizeErrors returns error counts per kind since a given time
func (r *Repository) SummarizeErrors(since time.Time) ([]models.ErrorSummary, error) {
	var rows []struct {
		Kind  string
		Count int64
		Last  string
	}

	result := r.db.Model(&models.ErrorLog{}).
		Select("kind, COUNT(*) as count, MAX(timestamp) as last").
		Where("timestamp >= ?", since).
		Group("kind").
		Order("count DESC").
		Scan(&rows)
	if result.Error != nil {
		return nil, errors.Wrap(result.Error, "failed to summarize error logs")
	}

	summaries := make([]models.ErrorSummary, 0, len(rows))
	for _, row := range rows {
		summaries = append(summaries, models.ErrorSummary{
			Kind:  row.Kind,
			Count: row.Count,
			Last:  parseSQLiteTime(row.Last),
		})
	}
	return summaries, nil
}

// parseSQLiteTime parses timestamps as written by the sqlite driver.
func parseSQLiteTime(s string) time.Time {
	for _, layout := range []string{
		"2006-01-02 15:04:05.999999999-07:00",
		"2006-01-02T15:04:05.999999999-07:00",
		"2006-01-02 15:04:05.999999999",
		time.RFC3339Nano,
	} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// PruneErrors deletes error logs older than before
func (r *Repository) PruneErrors(before time.Time) (int64, error) {
	result := r.db.Unscoped().Where("timestamp < ?", before).Delete(&models.ErrorLog{})
	if result.Error != nil {
		return 0, errors.Wrap(result.Error, "failed to delete old error logs")
	}
	return result.RowsAffected, nil
}

// Clear removes all error logs from the database
func (r *Repository) Clear() error {
	result := r.db.Exec("DELETE FROM error_logs")
	if result.Error != nil {
		return errors.Wrap(result.Error, "failed to clear error logs")
	}
	return nil
}
