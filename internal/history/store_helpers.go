package history

import (
	"database/sql"
	"errors"
	"time"

	"obdexporter/internal/thing"
)

const runColumns = "id, client_version, format_version, output_dir, total, completed, status, error_kind, error_message, failed_category, failed_thing_id, started_at, finished_at"

func scanRun(scanner interface{ Scan(dest ...any) error }) (*Run, error) {
	var (
		run            Run
		clientVersion  int64
		statusStr      string
		errorKind      sql.NullString
		errorMessage   sql.NullString
		failedCategory sql.NullString
		failedThingID  sql.NullInt64
		startedRaw     string
		finishedRaw    sql.NullString
	)
	if err := scanner.Scan(
		&run.ID,
		&clientVersion,
		&run.FormatVersion,
		&run.OutputDir,
		&run.Total,
		&run.Completed,
		&statusStr,
		&errorKind,
		&errorMessage,
		&failedCategory,
		&failedThingID,
		&startedRaw,
		&finishedRaw,
	); err != nil {
		return nil, err
	}

	run.ClientVersion = uint16(clientVersion)
	run.Status = Status(statusStr)
	run.ErrorKind = errorKind.String
	run.ErrorMessage = errorMessage.String
	if failedCategory.Valid && failedThingID.Valid {
		if category, err := thing.ParseCategory(failedCategory.String); err == nil {
			id := thing.New(category, uint32(failedThingID.Int64))
			run.FailedThing = &id
		}
	}
	if started, err := parseTimeString(startedRaw); err == nil {
		run.StartedAt = started
	}
	if finishedRaw.Valid {
		if finished, err := parseTimeString(finishedRaw.String); err == nil {
			run.FinishedAt = &finished
		}
	}
	return &run, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func formatTime(value time.Time) string {
	if value.IsZero() {
		value = time.Now()
	}
	return value.UTC().Format(time.RFC3339Nano)
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", value)
}
