package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/example/campus-coordinator/internal/persistence"
)

// ResourceRepository implements persistence.ResourceRepository using SQLite.
type ResourceRepository struct {
	pool *ConnectionPool
}

// NewResourceRepository creates a new SQLite resource repository.
func NewResourceRepository(pool *ConnectionPool) *ResourceRepository {
	return &ResourceRepository{pool: pool}
}

const resourceColumns = `id, name, type, total_capacity, description, maintenance_status, created_at, updated_at`

// CreateResource inserts a new resource.
func (r *ResourceRepository) CreateResource(ctx context.Context, resource persistence.Resource) error {
	if resource.ID == "" || resource.TotalCapacity <= 0 {
		return persistence.ErrConstraintViolation
	}

	query := `INSERT INTO resources (` + resourceColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.pool.db.ExecContext(ctx, query,
		resource.ID, resource.Name, resource.Type, resource.TotalCapacity,
		nullString(resource.Description), resource.MaintenanceStatus,
		formatTime(resource.CreatedAt), formatTime(resource.UpdatedAt),
	)
	return mapError(err)
}

// UpdateResource replaces an existing resource's mutable fields.
func (r *ResourceRepository) UpdateResource(ctx context.Context, resource persistence.Resource) error {
	if resource.ID == "" {
		return persistence.ErrNotFound
	}
	if resource.TotalCapacity <= 0 {
		return persistence.ErrConstraintViolation
	}

	query := `
		UPDATE resources SET name = ?, type = ?, total_capacity = ?, description = ?, maintenance_status = ?, updated_at = ?
		WHERE id = ?
	`
	result, err := r.pool.db.ExecContext(ctx, query,
		resource.Name, resource.Type, resource.TotalCapacity,
		nullString(resource.Description), resource.MaintenanceStatus,
		formatTime(resource.UpdatedAt), resource.ID,
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

// GetResource retrieves a resource by ID.
func (r *ResourceRepository) GetResource(ctx context.Context, id string) (persistence.Resource, error) {
	if id == "" {
		return persistence.Resource{}, persistence.ErrNotFound
	}

	query := `SELECT ` + resourceColumns + ` FROM resources WHERE id = ?`
	resource, err := scanResource(r.pool.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return persistence.Resource{}, mapError(err)
	}
	return resource, nil
}

// ListResources returns all resources ordered by name.
func (r *ResourceRepository) ListResources(ctx context.Context) ([]persistence.Resource, error) {
	query := `SELECT ` + resourceColumns + ` FROM resources ORDER BY name ASC, id ASC`
	rows, err := r.pool.db.QueryContext(ctx, query)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var resources []persistence.Resource
	for rows.Next() {
		resource, err := scanResource(rows)
		if err != nil {
			return nil, mapError(err)
		}
		resources = append(resources, resource)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}

	return resources, nil
}

func scanResource(row rowScanner) (persistence.Resource, error) {
	var resource persistence.Resource
	var description sql.NullString
	var createdStr, updatedStr string

	err := row.Scan(
		&resource.ID, &resource.Name, &resource.Type, &resource.TotalCapacity,
		&description, &resource.MaintenanceStatus, &createdStr, &updatedStr,
	)
	if err != nil {
		return persistence.Resource{}, err
	}

	resource.Description = stringPtr(description)

	if resource.CreatedAt, err = parseTime(createdStr); err != nil {
		return persistence.Resource{}, err
	}
	if resource.UpdatedAt, err = parseTime(updatedStr); err != nil {
		return persistence.Resource{}, err
	}

	return resource, nil
}
