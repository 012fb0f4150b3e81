package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/example/campus-coordinator/internal/persistence"
)

// EventRepository implements persistence.EventRepository using SQLite.
type EventRepository struct {
	pool *ConnectionPool
}

// NewEventRepository creates a new SQLite event repository.
func NewEventRepository(pool *ConnectionPool) *EventRepository {
	return &EventRepository{pool: pool}
}

const eventColumns = `id, title, type, description, start_at, end_at, venue_id,
	venue_preference, participant_count, mandatory_resources, optional_resources,
	status, execution_state, requester_role, requester_id, department, school,
	rejection_reason, approval_chain, modification_requests, is_modifiable,
	conflict_acknowledged, marked_start_at, marked_complete_at,
	venue_released_at, resources_released_at, post_event_summary,
	actual_participants, created_at, updated_at, version`

// CreateEvent inserts a new event aggregate at version 1.
func (r *EventRepository) CreateEvent(ctx context.Context, event persistence.Event) error {
	if event.ID == "" {
		return persistence.ErrConstraintViolation
	}

	cols, err := encodeEvent(event)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO events (` + eventColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 1)
	`

	_, err = r.pool.db.ExecContext(ctx, query,
		event.ID, event.Title, event.Type, cols.description,
		formatTime(event.Start), formatTime(event.End), cols.venueID,
		cols.preference, event.ParticipantCount, cols.mandatory, cols.optional,
		event.Status, event.ExecutionState, event.RequesterRole, event.RequesterID,
		event.Department, event.School, cols.rejectionReason, cols.chain,
		cols.modifications, boolToInt(event.IsModifiable), boolToInt(event.ConflictAcknowledged),
		cols.markedStartAt, cols.markedCompleteAt, cols.venueReleasedAt, cols.resourcesReleasedAt,
		cols.summary, cols.actualParticipants,
		formatTime(event.CreatedAt), formatTime(event.UpdatedAt),
	)
	return mapError(err)
}

// UpdateEvent replaces the aggregate when the stored version matches the
// caller's, incrementing the version on success.
func (r *EventRepository) UpdateEvent(ctx context.Context, event persistence.Event) (persistence.Event, error) {
	if event.ID == "" {
		return persistence.Event{}, persistence.ErrNotFound
	}

	cols, err := encodeEvent(event)
	if err != nil {
		return persistence.Event{}, err
	}

	query := `
		UPDATE events SET
			title = ?, type = ?, description = ?, start_at = ?, end_at = ?,
			venue_id = ?, venue_preference = ?, participant_count = ?,
			mandatory_resources = ?, optional_resources = ?, status = ?,
			execution_state = ?, rejection_reason = ?, approval_chain = ?,
			modification_requests = ?, is_modifiable = ?, conflict_acknowledged = ?,
			marked_start_at = ?, marked_complete_at = ?, venue_released_at = ?,
			resources_released_at = ?, post_event_summary = ?, actual_participants = ?,
			updated_at = ?, version = version + 1
		WHERE id = ? AND version = ?
	`

	result, err := r.pool.db.ExecContext(ctx, query,
		event.Title, event.Type, cols.description,
		formatTime(event.Start), formatTime(event.End),
		cols.venueID, cols.preference, event.ParticipantCount,
		cols.mandatory, cols.optional, event.Status,
		event.ExecutionState, cols.rejectionReason, cols.chain,
		cols.modifications, boolToInt(event.IsModifiable), boolToInt(event.ConflictAcknowledged),
		cols.markedStartAt, cols.markedCompleteAt, cols.venueReleasedAt,
		cols.resourcesReleasedAt, cols.summary, cols.actualParticipants,
		formatTime(event.UpdatedAt),
		event.ID, event.Version,
	)
	if err != nil {
		return persistence.Event{}, mapError(err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return persistence.Event{}, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		// Either the event is gone or the caller read an older version.
		if _, getErr := r.GetEvent(ctx, event.ID); getErr != nil {
			return persistence.Event{}, getErr
		}
		return persistence.Event{}, persistence.ErrStaleVersion
	}

	return r.GetEvent(ctx, event.ID)
}

// GetEvent retrieves an event by ID.
func (r *EventRepository) GetEvent(ctx context.Context, id string) (persistence.Event, error) {
	if id == "" {
		return persistence.Event{}, persistence.ErrNotFound
	}

	query := `SELECT ` + eventColumns + ` FROM events WHERE id = ?`
	event, err := scanEvent(r.pool.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return persistence.Event{}, mapError(err)
	}
	return event, nil
}

// ListEvents returns events matching the filter ordered by creation time.
func (r *EventRepository) ListEvents(ctx context.Context, filter persistence.EventFilter) ([]persistence.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events`
	var conditions []string
	var args []any

	if filter.RequesterID != "" {
		conditions = append(conditions, "requester_id = ?")
		args = append(args, filter.RequesterID)
	}
	if filter.Department != "" {
		conditions = append(conditions, "department = ?")
		args = append(args, filter.Department)
	}
	if filter.School != "" {
		conditions = append(conditions, "school = ?")
		args = append(args, filter.School)
	}
	if len(filter.Statuses) > 0 {
		placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(filter.Statuses)), ", ")
		conditions = append(conditions, "status IN ("+placeholders+")")
		for _, status := range filter.Statuses {
			args = append(args, status)
		}
	}
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY created_at ASC, id ASC"

	rows, err := r.pool.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var events []persistence.Event
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, mapError(err)
		}
		if filter.VenueID != "" && occupiedVenue(event) != filter.VenueID {
			continue
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}

	return events, nil
}

// occupiedVenue is the venue an event holds: the bound venue after approval,
// the preferred one before.
func occupiedVenue(event persistence.Event) string {
	if event.VenueID != nil {
		return *event.VenueID
	}
	return event.VenuePreference.VenueID
}

// --- row encoding/decoding ---

type eventColumnsEncoded struct {
	description         sql.NullString
	venueID             sql.NullString
	preference          string
	mandatory           string
	optional            string
	rejectionReason     sql.NullString
	chain               string
	modifications       string
	markedStartAt       sql.NullString
	markedCompleteAt    sql.NullString
	venueReleasedAt     sql.NullString
	resourcesReleasedAt sql.NullString
	summary             sql.NullString
	actualParticipants  sql.NullInt64
}

func encodeEvent(event persistence.Event) (eventColumnsEncoded, error) {
	preference, err := json.Marshal(event.VenuePreference)
	if err != nil {
		return eventColumnsEncoded{}, fmt.Errorf("failed to encode venue preference: %w", err)
	}
	mandatory, err := json.Marshal(emptyAllocations(event.MandatoryResources))
	if err != nil {
		return eventColumnsEncoded{}, fmt.Errorf("failed to encode mandatory resources: %w", err)
	}
	optional, err := json.Marshal(emptyAllocations(event.OptionalResources))
	if err != nil {
		return eventColumnsEncoded{}, fmt.Errorf("failed to encode optional resources: %w", err)
	}
	chain, err := json.Marshal(emptyChain(event.ApprovalChain))
	if err != nil {
		return eventColumnsEncoded{}, fmt.Errorf("failed to encode approval chain: %w", err)
	}
	modifications, err := json.Marshal(emptyModifications(event.ModificationRequests))
	if err != nil {
		return eventColumnsEncoded{}, fmt.Errorf("failed to encode modification requests: %w", err)
	}

	return eventColumnsEncoded{
		description:         nullString(event.Description),
		venueID:             nullString(event.VenueID),
		preference:          string(preference),
		mandatory:           string(mandatory),
		optional:            string(optional),
		rejectionReason:     nullString(event.RejectionReason),
		chain:               string(chain),
		modifications:       string(modifications),
		markedStartAt:       nullTime(event.MarkedStartAt),
		markedCompleteAt:    nullTime(event.MarkedCompleteAt),
		venueReleasedAt:     nullTime(event.VenueReleasedAt),
		resourcesReleasedAt: nullTime(event.ResourcesReleasedAt),
		summary:             nullString(event.PostEventSummary),
		actualParticipants:  nullInt(event.ActualParticipants),
	}, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(row rowScanner) (persistence.Event, error) {
	var event persistence.Event
	var cols eventColumnsEncoded
	var startStr, endStr, createdStr, updatedStr string
	var isModifiable, conflictAcknowledged int

	err := row.Scan(
		&event.ID, &event.Title, &event.Type, &cols.description,
		&startStr, &endStr, &cols.venueID,
		&cols.preference, &event.ParticipantCount, &cols.mandatory, &cols.optional,
		&event.Status, &event.ExecutionState, &event.RequesterRole, &event.RequesterID,
		&event.Department, &event.School, &cols.rejectionReason, &cols.chain,
		&cols.modifications, &isModifiable, &conflictAcknowledged,
		&cols.markedStartAt, &cols.markedCompleteAt, &cols.venueReleasedAt,
		&cols.resourcesReleasedAt, &cols.summary, &cols.actualParticipants,
		&createdStr, &updatedStr, &event.Version,
	)
	if err != nil {
		return persistence.Event{}, err
	}

	if err := json.Unmarshal([]byte(cols.preference), &event.VenuePreference); err != nil {
		return persistence.Event{}, fmt.Errorf("failed to decode venue preference: %w", err)
	}
	if err := json.Unmarshal([]byte(cols.mandatory), &event.MandatoryResources); err != nil {
		return persistence.Event{}, fmt.Errorf("failed to decode mandatory resources: %w", err)
	}
	if err := json.Unmarshal([]byte(cols.optional), &event.OptionalResources); err != nil {
		return persistence.Event{}, fmt.Errorf("failed to decode optional resources: %w", err)
	}
	if err := json.Unmarshal([]byte(cols.chain), &event.ApprovalChain); err != nil {
		return persistence.Event{}, fmt.Errorf("failed to decode approval chain: %w", err)
	}
	if err := json.Unmarshal([]byte(cols.modifications), &event.ModificationRequests); err != nil {
		return persistence.Event{}, fmt.Errorf("failed to decode modification requests: %w", err)
	}

	event.Description = stringPtr(cols.description)
	event.VenueID = stringPtr(cols.venueID)
	event.RejectionReason = stringPtr(cols.rejectionReason)
	event.PostEventSummary = stringPtr(cols.summary)
	event.ActualParticipants = intPtr(cols.actualParticipants)
	event.IsModifiable = isModifiable != 0
	event.ConflictAcknowledged = conflictAcknowledged != 0

	if event.Start, err = parseTime(startStr); err != nil {
		return persistence.Event{}, err
	}
	if event.End, err = parseTime(endStr); err != nil {
		return persistence.Event{}, err
	}
	if event.CreatedAt, err = parseTime(createdStr); err != nil {
		return persistence.Event{}, err
	}
	if event.UpdatedAt, err = parseTime(updatedStr); err != nil {
		return persistence.Event{}, err
	}
	if event.MarkedStartAt, err = timePtr(cols.markedStartAt); err != nil {
		return persistence.Event{}, err
	}
	if event.MarkedCompleteAt, err = timePtr(cols.markedCompleteAt); err != nil {
		return persistence.Event{}, err
	}
	if event.VenueReleasedAt, err = timePtr(cols.venueReleasedAt); err != nil {
		return persistence.Event{}, err
	}
	if event.ResourcesReleasedAt, err = timePtr(cols.resourcesReleasedAt); err != nil {
		return persistence.Event{}, err
	}

	return event, nil
}

func emptyAllocations(in []persistence.Allocation) []persistence.Allocation {
	if in == nil {
		return []persistence.Allocation{}
	}
	return in
}

func emptyChain(in []persistence.ChainEntry) []persistence.ChainEntry {
	if in == nil {
		return []persistence.ChainEntry{}
	}
	return in
}

func emptyModifications(in []persistence.ModificationRequest) []persistence.ModificationRequest {
	if in == nil {
		return []persistence.ModificationRequest{}
	}
	return in
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(value string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse timestamp %q: %w", value, err)
	}
	return t, nil
}

func nullString(value *string) sql.NullString {
	if value == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *value, Valid: true}
}

func nullInt(value *int) sql.NullInt64 {
	if value == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*value), Valid: true}
}

func nullTime(value *time.Time) sql.NullString {
	if value == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: formatTime(*value), Valid: true}
}

func stringPtr(value sql.NullString) *string {
	if !value.Valid {
		return nil
	}
	out := value.String
	return &out
}

func intPtr(value sql.NullInt64) *int {
	if !value.Valid {
		return nil
	}
	out := int(value.Int64)
	return &out
}

func timePtr(value sql.NullString) (*time.Time, error) {
	if !value.Valid {
		return nil, nil
	}
	t, err := parseTime(value.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}
