package network

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// PostGISSource loads sea-lane geometries from a PostGIS table. The table is
// expected to carry one LINESTRING or MULTILINESTRING row per lane in an id
// column order that fixes the network's feature ordering.
type PostGISSource struct {
	db    *sql.DB
	table string
}

// NewPostGISSource opens a pooled connection to a PostGIS database.
func NewPostGISSource(host, user, password, dbname string, port int, table string) (*PostGISSource, error) {
	connStr := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		host, port, user, password, dbname)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	return &PostGISSource{db: db, table: table}, nil
}

// Close releases the underlying connection pool.
func (p *PostGISSource) Close() error {
	return p.db.Close()
}

// Load reads every lane geometry as GeoJSON and builds a Network from it.
func (p *PostGISSource) Load() (*Network, error) {
	query := fmt.Sprintf(`SELECT ST_AsGeoJSON(geom) FROM %s ORDER BY id`, p.table)

	rows, err := p.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query lanes: %w", err)
	}
	defer rows.Close()

	var lines []orb.LineString
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("failed to scan lane row: %w", err)
		}

		g, err := geojson.UnmarshalGeometry(raw)
		if err != nil {
			return nil, fmt.Errorf("failed to parse lane geometry: %w", err)
		}

		switch geom := g.Geometry().(type) {
		case orb.LineString:
			lines = append(lines, geom)
		case orb.MultiLineString:
			for _, ls := range geom {
				lines = append(lines, ls)
			}
		default:
			return nil, fmt.Errorf("unsupported lane geometry type %q", g.Type)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed reading lane rows: %w", err)
	}

	return New(lines)
}
