package registry

import (
	"context"
	"database/sql"
	"strconv"
	"strings"

	interchanges "github.com/juliuste/db-interchanges"
	"github.com/paulmach/osm"
	"github.com/pkg/errors"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

const (
	DRIVER_POSTGRES = "postgres"
	DRIVER_SQLITE   = "sqlite"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS platforms (
		station_id TEXT NOT NULL,
		name TEXT NOT NULL,
		osm_type TEXT,
		osm_id BIGINT,
		PRIMARY KEY (station_id, name)
	)`,
	`CREATE TABLE IF NOT EXISTS elevators (
		osm_node_id BIGINT PRIMARY KEY,
		facility_id TEXT NOT NULL
	)`,
}

// Store persists registry in SQL database
type Store struct {
	db     *sql.DB
	driver string
}

// NewStore wraps opened database. driver selects placeholder style.
func NewStore(db *sql.DB, driver string) *Store {
	return &Store{db: db, driver: driver}
}

// Open opens and pings database. Supported drivers are 'postgres' and 'sqlite'.
func Open(ctx context.Context, driver, dsn string) (*Store, error) {
	if driver != DRIVER_POSTGRES && driver != DRIVER_SQLITE {
		return nil, errors.Errorf("Driver '%s' is not supported", driver)
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, errors.Wrap(err, "Can't open database")
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "Can't ping database")
	}
	return NewStore(db, driver), nil
}

// Close closes underlying database
func (store *Store) Close() error {
	return store.db.Close()
}

// DB returns underlying database
func (store *Store) DB() *sql.DB {
	return store.db
}

// rebind replaces '?' placeholders with '$N' ones for Postgres
func (store *Store) rebind(query string) string {
	if store.driver != DRIVER_POSTGRES {
		return query
	}
	var sb strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			sb.WriteString("$" + strconv.Itoa(n))
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

// Migrate creates registry tables if they do not exist
func (store *Store) Migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := store.db.ExecContext(ctx, stmt); err != nil {
			return errors.Wrap(err, "Can't migrate registry schema")
		}
	}
	return nil
}

// Save upserts every record of the registry in single transaction
func (store *Store) Save(ctx context.Context, reg *Registry) error {
	tx, err := store.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "Can't begin transaction")
	}
	defer tx.Rollback()

	insertPlatform := store.rebind(`
		INSERT INTO platforms (station_id, name, osm_type, osm_id) VALUES (?, ?, ?, ?)
		ON CONFLICT (station_id, name) DO UPDATE SET osm_type = excluded.osm_type, osm_id = excluded.osm_id`)
	for _, platform := range reg.Platforms() {
		var osmType sql.NullString
		var osmID sql.NullInt64
		if platform.Anchor != nil {
			osmType = sql.NullString{String: string(platform.Anchor.Type), Valid: true}
			osmID = sql.NullInt64{Int64: platform.Anchor.ID, Valid: true}
		}
		_, err := tx.ExecContext(ctx, insertPlatform, platform.StationID, platform.Name, osmType, osmID)
		if err != nil {
			return errors.Wrapf(err, "Can't save platform %s/%s", platform.StationID, platform.Name)
		}
	}
	insertElevator := store.rebind(`
		INSERT INTO elevators (osm_node_id, facility_id) VALUES (?, ?)
		ON CONFLICT (osm_node_id) DO UPDATE SET facility_id = excluded.facility_id`)
	for nodeID, facilityID := range reg.Elevators() {
		_, err := tx.ExecContext(ctx, insertElevator, int64(nodeID), facilityID)
		if err != nil {
			return errors.Wrapf(err, "Can't save elevator %d", nodeID)
		}
	}
	return errors.Wrap(tx.Commit(), "Can't commit registry")
}

// Load reads whole registry from database
func (store *Store) Load(ctx context.Context) (*Registry, error) {
	reg := New()

	rows, err := store.db.QueryContext(ctx, `SELECT station_id, name, osm_type, osm_id FROM platforms`)
	if err != nil {
		return nil, errors.Wrap(err, "Can't query platforms")
	}
	defer rows.Close()
	for rows.Next() {
		var stationID, name string
		var osmType sql.NullString
		var osmID sql.NullInt64
		if err := rows.Scan(&stationID, &name, &osmType, &osmID); err != nil {
			return nil, errors.Wrap(err, "Can't scan platform")
		}
		platform := interchanges.Platform{StationID: stationID, Name: name}
		if osmType.Valid && osmID.Valid {
			anchorType := osm.Type(osmType.String)
			if !validAnchorType(anchorType) {
				return nil, errors.Errorf("Platform %s/%s has bad anchor type '%s'", stationID, name, osmType.String)
			}
			platform.Anchor = &interchanges.OSMRef{Type: anchorType, ID: osmID.Int64}
		}
		reg.AddPlatform(platform)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "Can't iterate platforms")
	}

	elevatorRows, err := store.db.QueryContext(ctx, `SELECT osm_node_id, facility_id FROM elevators`)
	if err != nil {
		return nil, errors.Wrap(err, "Can't query elevators")
	}
	defer elevatorRows.Close()
	for elevatorRows.Next() {
		var nodeID int64
		var facilityID string
		if err := elevatorRows.Scan(&nodeID, &facilityID); err != nil {
			return nil, errors.Wrap(err, "Can't scan elevator")
		}
		reg.AddElevator(osm.NodeID(nodeID), facilityID)
	}
	if err := elevatorRows.Err(); err != nil {
		return nil, errors.Wrap(err, "Can't iterate elevators")
	}
	return reg, nil
}
