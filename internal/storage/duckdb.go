package storage

import (
	"bufio"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/google/uuid"
	_ "github.com/marcboeker/go-duckdb"
	"github.com/rs/zerolog/log"

	"github.com/netauto/configlet-builder/pkg/configlets"
	"github.com/netauto/configlet-builder/pkg/devices"
)

// DuckDBStorage keeps configlets and device facts in DuckDB, with
// periodic Parquet snapshots for durability.
type DuckDBStorage struct {
	db                *sql.DB
	snapshotFrequency time.Duration
	snapshotPath      string
	wg                sync.WaitGroup
	cancelSnapshot    context.CancelFunc
}

type DuckDBStorageOption interface {
	apply(*DuckDBStorage) error
}

type snapshotFrequencyOption time.Duration

func (s snapshotFrequencyOption) apply(d *DuckDBStorage) error {
	d.snapshotFrequency = time.Duration(s)
	return nil
}

func WithSnapshotFrequency(frequency time.Duration) DuckDBStorageOption {
	return snapshotFrequencyOption(frequency)
}

type snapshotPathOption string

func (s snapshotPathOption) apply(d *DuckDBStorage) error {
	d.snapshotPath = string(s)
	return os.MkdirAll(string(s), 0755)
}

func WithSnapshotPath(path string) DuckDBStorageOption {
	return snapshotPathOption(path)
}

type restoreOption string

func (r restoreOption) apply(d *DuckDBStorage) error {
	d.snapshotPath = string(r)
	return d.restoreLatest(string(r))
}

// WithRestore loads the most recent snapshot under path before serving.
func WithRestore(path string) DuckDBStorageOption {
	return restoreOption(path)
}

func NewDuckDBStorage(path string, options ...DuckDBStorageOption) (*DuckDBStorage, error) {
	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, err
	}

	d := &DuckDBStorage{
		db:                db,
		snapshotFrequency: time.Hour,
		snapshotPath:      "snapshots/",
	}
	d.db.Exec("INSTALL json; LOAD json")

	for _, option := range options {
		if err := option.apply(d); err != nil {
			log.Warn().Err(err).Msg("Error applying DuckDBStorage option")
		}
	}

	if err := d.initTables(); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	d.cancelSnapshot = cancel

	d.wg.Add(1)
	go d.snapshotRoutine(ctx)
	go d.handleShutdown()

	return d, nil
}

func (d *DuckDBStorage) initTables() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS configlets (
			id UUID PRIMARY KEY,
			name TEXT UNIQUE,
			added TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			data JSON
		)`,
		`CREATE TABLE IF NOT EXISTS devices (
			id UUID PRIMARY KEY,
			hostname TEXT UNIQUE,
			added TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			data JSON
		)`,
	}
	for _, query := range queries {
		if _, err := d.db.Exec(query); err != nil {
			return err
		}
	}
	return nil
}

func (d *DuckDBStorage) snapshotRoutine(ctx context.Context) {
	defer d.wg.Done()
	ticker := time.NewTicker(d.snapshotFrequency)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("Snapshot routine stopped")
			return
		case <-ticker.C:
			if err := d.SnapshotParquet(d.snapshotPath); err != nil {
				log.Error().Err(err).Msg("Error taking snapshot")
			}
		}
	}
}

func (d *DuckDBStorage) handleShutdown() {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	<-quit
	log.Info().Msg("Shutting down... Taking final snapshot")
	if err := d.SnapshotParquet(d.snapshotPath); err != nil {
		log.Error().Err(err).Msg("Error taking final snapshot")
	}

	d.cancelSnapshot()
	d.wg.Wait()
	log.Info().Msg("Shutdown complete")
	os.Exit(1)
}

func (d *DuckDBStorage) SaveConfiglet(configletID uuid.UUID, configlet configlets.Configlet) error {
	data, err := json.Marshal(configlet)
	if err != nil {
		return err
	}
	_, err = d.db.Exec(`INSERT INTO configlets (id, name, data) VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET name = excluded.name, data = excluded.data`,
		configletID, configlet.Name, string(data))
	return err
}

func (d *DuckDBStorage) GetConfiglet(configletID uuid.UUID) (configlets.Configlet, error) {
	return d.configletQuery(`SELECT data FROM configlets WHERE id = ?`, configletID)
}

func (d *DuckDBStorage) UpdateConfiglet(configletID uuid.UUID, configlet configlets.Configlet) error {
	return d.SaveConfiglet(configletID, configlet)
}

func (d *DuckDBStorage) DeleteConfiglet(configletID uuid.UUID) error {
	_, err := d.db.Exec(`DELETE FROM configlets WHERE id = ?`, configletID)
	return err
}

func (d *DuckDBStorage) LookupConfigletByName(name string) (configlets.Configlet, error) {
	return d.configletQuery(`SELECT data FROM configlets WHERE name = ?`, name)
}

func (d *DuckDBStorage) configletQuery(query string, args ...interface{}) (configlets.Configlet, error) {
	var data string
	if err := d.db.QueryRow(query, args...).Scan(&data); err != nil {
		return configlets.Configlet{}, err
	}
	var configlet configlets.Configlet
	err := json.Unmarshal([]byte(data), &configlet)
	return configlet, err
}

func (d *DuckDBStorage) SaveDevice(deviceID uuid.UUID, device devices.Device) error {
	data, err := json.Marshal(device)
	if err != nil {
		return err
	}
	_, err = d.db.Exec(`INSERT INTO devices (id, hostname, data) VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET hostname = excluded.hostname, data = excluded.data`,
		deviceID, device.Hostname, string(data))
	return err
}

func (d *DuckDBStorage) GetDevice(deviceID uuid.UUID) (devices.Device, error) {
	return d.deviceQuery(`SELECT data FROM devices WHERE id = ?`, deviceID)
}

func (d *DuckDBStorage) UpdateDevice(deviceID uuid.UUID, device devices.Device) error {
	return d.SaveDevice(deviceID, device)
}

func (d *DuckDBStorage) DeleteDevice(deviceID uuid.UUID) error {
	_, err := d.db.Exec(`DELETE FROM devices WHERE id = ?`, deviceID)
	return err
}

func (d *DuckDBStorage) LookupDeviceByHostname(hostname string) (devices.Device, error) {
	return d.deviceQuery(`SELECT data FROM devices WHERE hostname = ?`, hostname)
}

func (d *DuckDBStorage) LookupDeviceByMACAddress(mac string) (devices.Device, error) {
	return d.deviceQuery(`SELECT data FROM devices WHERE json_extract(data, '$.mac_address') = ?`, `"`+mac+`"`)
}

func (d *DuckDBStorage) deviceQuery(query string, args ...interface{}) (devices.Device, error) {
	var data string
	if err := d.db.QueryRow(query, args...).Scan(&data); err != nil {
		return devices.Device{}, err
	}
	var device devices.Device
	err := json.Unmarshal([]byte(data), &device)
	return device, err
}

func (d *DuckDBStorage) SearchDevices(hostname, mac string) ([]devices.Device, error) {
	query := "SELECT data FROM devices WHERE 1=1"
	var queryArgs []interface{}
	if hostname != "" {
		query += " AND hostname = ?"
		queryArgs = append(queryArgs, hostname)
	}
	if mac != "" {
		query += " AND json_extract(data, '$.mac_address')::text = ?"
		queryArgs = append(queryArgs, `"`+mac+`"`)
	}

	rows, err := d.db.Query(query, queryArgs...)
	if err != nil {
		log.Error().Err(err).Msg("Error querying DuckDB for devices")
		return nil, err
	}
	defer rows.Close()

	var found []devices.Device
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, err
		}
		var device devices.Device
		if err := json.Unmarshal([]byte(data), &device); err != nil {
			return nil, err
		}
		found = append(found, device)
	}
	log.Debug().
		Str("query", query).
		Interface("args", queryArgs).
		Int("count", len(found)).
		Msg("DuckDB device search complete")
	return found, rows.Err()
}

func (d *DuckDBStorage) Close() error {
	return d.db.Close()
}

// SnapshotParquet exports the database to a timestamped directory of
// Parquet files under path.
func (d *DuckDBStorage) SnapshotParquet(path string) error {
	escapedPath := strings.ReplaceAll(path, "'", "''")
	if !strings.HasSuffix(escapedPath, "/") {
		escapedPath += "/"
	}
	escapedPath += time.Now().Format("2006-01-02T15-04-05") + "/"
	os.MkdirAll(escapedPath, 0755)

	stmt := fmt.Sprintf(`INSTALL parquet;
	LOAD parquet;
	EXPORT DATABASE '%s' (FORMAT PARQUET);`, escapedPath)

	if _, err := d.db.Exec(stmt); err != nil {
		log.Error().Err(err).Msg("Error exporting DuckDB database to Parquet format")
		return err
	}
	log.Info().Str("path", escapedPath).Msg("SnapshotParquet")
	return nil
}

// RestoreParquet replays the schema.sql and load.sql scripts that
// EXPORT DATABASE wrote alongside the Parquet files.
func (d *DuckDBStorage) RestoreParquet(path string) error {
	for _, name := range []string{"schema.sql", "load.sql"} {
		file := filepath.Join(path, name)
		if err := d.executeSQLFile(file); err != nil {
			return fmt.Errorf("error executing %s: %w", name, err)
		}
		log.Info().Str("file", file).Msg("Executed snapshot script")
	}
	return nil
}

func (d *DuckDBStorage) executeSQLFile(filePath string) error {
	file, err := os.Open(filePath)
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	var sb strings.Builder
	for scanner.Scan() {
		line := scanner.Text()
		sb.WriteString(line)
		if strings.HasSuffix(strings.TrimSpace(line), ";") {
			if _, err := d.db.Exec(sb.String()); err != nil {
				return err
			}
			sb.Reset()
		}
	}
	return scanner.Err()
}

func (d *DuckDBStorage) restoreLatest(path string) error {
	entries, err := os.ReadDir(path)
	if err != nil {
		return err
	}

	var dirs []string
	for _, entry := range entries {
		if entry.IsDir() {
			dirs = append(dirs, entry.Name())
		}
	}
	if len(dirs) == 0 {
		return fmt.Errorf("no snapshot directories found in %s", path)
	}

	// Snapshot directories are named by timestamp, so the newest
	// sorts last.
	sort.Strings(dirs)
	latest := filepath.Join(path, dirs[len(dirs)-1])
	log.Info().Str("snapshot", latest).Msg("Restoring snapshot")
	return d.RestoreParquet(latest)
}
