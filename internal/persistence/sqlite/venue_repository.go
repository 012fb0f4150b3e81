package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/example/campus-coordinator/internal/persistence"
)

// VenueRepository implements persistence.VenueRepository using SQLite.
type VenueRepository struct {
	pool *ConnectionPool
}

// NewVenueRepository creates a new SQLite venue repository.
func NewVenueRepository(pool *ConnectionPool) *VenueRepository {
	return &VenueRepository{pool: pool}
}

const venueColumns = `id, name, type, capacity, features, location, created_at, updated_at`

// CreateVenue inserts a new venue.
func (r *VenueRepository) CreateVenue(ctx context.Context, venue persistence.Venue) error {
	if venue.ID == "" || venue.Capacity <= 0 {
		return persistence.ErrConstraintViolation
	}

	features, err := json.Marshal(emptyStrings(venue.Features))
	if err != nil {
		return fmt.Errorf("failed to encode features: %w", err)
	}

	query := `INSERT INTO venues (` + venueColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = r.pool.db.ExecContext(ctx, query,
		venue.ID, venue.Name, venue.Type, venue.Capacity,
		string(features), nullString(venue.Location),
		formatTime(venue.CreatedAt), formatTime(venue.UpdatedAt),
	)
	return mapError(err)
}

// UpdateVenue replaces an existing venue's mutable fields.
func (r *VenueRepository) UpdateVenue(ctx context.Context, venue persistence.Venue) error {
	if venue.ID == "" {
		return persistence.ErrNotFound
	}
	if venue.Capacity <= 0 {
		return persistence.ErrConstraintViolation
	}

	features, err := json.Marshal(emptyStrings(venue.Features))
	if err != nil {
		return fmt.Errorf("failed to encode features: %w", err)
	}

	query := `
		UPDATE venues SET name = ?, type = ?, capacity = ?, features = ?, location = ?, updated_at = ?
		WHERE id = ?
	`
	result, err := r.pool.db.ExecContext(ctx, query,
		venue.Name, venue.Type, venue.Capacity,
		string(features), nullString(venue.Location),
		formatTime(venue.UpdatedAt), venue.ID,
	)
	if err != nil {
		return mapError(err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return persistence.ErrNotFound
	}
	return nil
}

// GetVenue retrieves a venue by ID.
func (r *VenueRepository) GetVenue(ctx context.Context, id string) (persistence.Venue, error) {
	if id == "" {
		return persistence.Venue{}, persistence.ErrNotFound
	}

	query := `SELECT ` + venueColumns + ` FROM venues WHERE id = ?`
	venue, err := scanVenue(r.pool.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return persistence.Venue{}, mapError(err)
	}
	return venue, nil
}

// ListVenues returns all venues ordered by name.
func (r *VenueRepository) ListVenues(ctx context.Context) ([]persistence.Venue, error) {
	query := `SELECT ` + venueColumns + ` FROM venues ORDER BY name ASC, id ASC`
	rows, err := r.pool.db.QueryContext(ctx, query)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var venues []persistence.Venue
	for rows.Next() {
		venue, err := scanVenue(rows)
		if err != nil {
			return nil, mapError(err)
		}
		venues = append(venues, venue)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}

	return venues, nil
}

func scanVenue(row rowScanner) (persistence.Venue, error) {
	var venue persistence.Venue
	var features string
	var location sql.NullString
	var createdStr, updatedStr string

	err := row.Scan(
		&venue.ID, &venue.Name, &venue.Type, &venue.Capacity,
		&features, &location, &createdStr, &updatedStr,
	)
	if err != nil {
		return persistence.Venue{}, err
	}

	if err := json.Unmarshal([]byte(features), &venue.Features); err != nil {
		return persistence.Venue{}, fmt.Errorf("failed to decode features: %w", err)
	}
	venue.Location = stringPtr(location)

	if venue.CreatedAt, err = parseTime(createdStr); err != nil {
		return persistence.Venue{}, err
	}
	if venue.UpdatedAt, err = parseTime(updatedStr); err != nil {
		return persistence.Venue{}, err
	}

	return venue, nil
}

func emptyStrings(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}
