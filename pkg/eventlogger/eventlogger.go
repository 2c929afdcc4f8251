// Package eventlogger journals configlet lifecycle and builder-run
// events. Events land in DuckDB for querying and are flushed to
// hour-partitioned JSON files for archival.
package eventlogger

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	_ "github.com/marcboeker/go-duckdb"
	"github.com/sirupsen/logrus"
)

const (
	defaultBaseDir         = "/logs"
	defaultWriteInterval   = time.Hour
	defaultCleanupInterval = 2 * time.Hour
)

type Config struct {
	BaseDir         string
	WriteInterval   time.Duration
	CleanupInterval time.Duration
	RetainInDB      bool
	DuckDBPath      string
}

func DefaultConfig() Config {
	return Config{
		BaseDir:         defaultBaseDir,
		WriteInterval:   defaultWriteInterval,
		CleanupInterval: defaultCleanupInterval,
		RetainInDB:      true,
		DuckDBPath:      "", // in-memory
	}
}

type EventLogger struct {
	db           *sql.DB
	log          *logrus.Logger
	config       Config
	shutdownChan chan struct{}
	wg           sync.WaitGroup
}

func New(config Config) (*EventLogger, error) {
	db, err := sql.Open("duckdb", config.DuckDBPath)
	if err != nil {
		return nil, err
	}

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS events (
		timestamp TIMESTAMP,
		event_type STRING,
		event_data JSON
	)`)
	if err != nil {
		return nil, err
	}

	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	return &EventLogger{
		db:           db,
		log:          logger,
		config:       config,
		shutdownChan: make(chan struct{}),
	}, nil
}

// LogEvent writes an event to stdout and to the journal table.
func (el *EventLogger) LogEvent(eventType string, eventData map[string]interface{}) {
	timestamp := time.Now().Format(time.RFC3339)

	el.log.WithFields(logrus.Fields{
		"event":      eventType,
		"timestamp":  timestamp,
		"event_data": eventData,
	}).Info("Event logged")

	eventDataJSON, _ := json.Marshal(eventData)
	_, err := el.db.Exec(`INSERT INTO events (timestamp, event_type, event_data) VALUES (?, ?, ?)`,
		timestamp, eventType, string(eventDataJSON))
	if err != nil {
		el.log.WithError(err).Error("Failed to insert event into DuckDB")
	}
}

// FlushEvents appends journaled events to hour-partitioned files under
// BaseDir.
func (el *EventLogger) FlushEvents() {
	el.wg.Add(1)
	defer el.wg.Done()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	rows, err := el.db.QueryContext(ctx, `SELECT timestamp, event_data FROM events`)
	if err != nil {
		el.log.WithError(err).Error("Failed to query events from DuckDB")
		return
	}
	defer rows.Close()

	eventFiles := make(map[string]*os.File)
	defer func() {
		for _, file := range eventFiles {
			file.Close()
		}
	}()

	for rows.Next() {
		var timestamp, eventData string
		if err := rows.Scan(&timestamp, &eventData); err != nil {
			el.log.WithError(err).Error("Failed to scan event row")
			continue
		}

		t, _ := time.Parse(time.RFC3339, timestamp)
		dir := fmt.Sprintf("%s/year=%d/month=%02d/day=%02d/hour=%02d",
			el.config.BaseDir, t.Year(), t.Month(), t.Day(), t.Hour())
		if err := os.MkdirAll(dir, os.ModePerm); err != nil {
			el.log.WithError(err).Error("Failed to create partition directory")
			continue
		}

		filePath := dir + "/part-00000.json"
		file, ok := eventFiles[filePath]
		if !ok {
			file, err = os.OpenFile(filePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
			if err != nil {
				el.log.WithError(err).Error("Failed to open event file")
				continue
			}
			eventFiles[filePath] = file
		}

		if _, err := file.WriteString(eventData + "\n"); err != nil {
			el.log.WithError(err).Error("Failed to write event to file")
		}
	}

	if !el.config.RetainInDB {
		if _, err := el.db.ExecContext(ctx, `DELETE FROM events`); err != nil {
			el.log.WithError(err).Error("Failed to clear events from DuckDB")
		}
	}
}

func (el *EventLogger) CleanupEvents() {
	el.wg.Add(1)
	defer el.wg.Done()

	if el.config.RetainInDB {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if _, err := el.db.ExecContext(ctx, `DELETE FROM events`); err != nil {
		el.log.WithError(err).Error("Failed to clear events from DuckDB")
	}
}

// StartPeriodicFlush flushes and cleans up on the configured intervals
// until Stop is called.
func (el *EventLogger) StartPeriodicFlush() {
	writeTicker := time.NewTicker(el.config.WriteInterval)
	cleanupTicker := time.NewTicker(el.config.CleanupInterval)
	go func() {
		for {
			select {
			case <-writeTicker.C:
				el.FlushEvents()
			case <-cleanupTicker.C:
				el.CleanupEvents()
			case <-el.shutdownChan:
				el.FlushEvents()
				writeTicker.Stop()
				cleanupTicker.Stop()
				return
			}
		}
	}()
}

func (el *EventLogger) Stop() {
	close(el.shutdownChan)
	el.wg.Wait()
}
