package audit

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// Event represents an audit log entry.
type Event struct {
	ID           string          `json:"id" db:"id"`
	Timestamp    time.Time       `json:"timestamp" db:"timestamp"`
	ActorID      *string         `json:"actor_id,omitempty" db:"actor_id"`
	Action       string          `json:"action" db:"action"`
	ResourceType string          `json:"resource_type" db:"resource_type"`
	ResourceID   *string         `json:"resource_id,omitempty" db:"resource_id"`
	Details      json.RawMessage `json:"details,omitempty" db:"details"`
	IPAddress    *string         `json:"ip_address,omitempty" db:"ip_address"`
	Outcome      string          `json:"outcome" db:"outcome"` // success, failure
}

// LogInput holds input for creating an audit log entry.
type LogInput struct {
	ActorID    *string
	Action     string
	Resource   string
	ResourceID *string
	Details    interface{}
	IPAddress  *string
	Outcome    string
}

// QueryParams holds parameters for querying audit logs.
type QueryParams struct {
	ActorID   *string
	Action    *string
	Resource  *string
	Outcome   *string
	StartTime *time.Time
	EndTime   *time.Time
	Limit     int
	Offset    int
}

// Store defines audit log storage operations.
type Store interface {
	Log(ctx context.Context, e Event) (string, error)
	Query(ctx context.Context, params QueryParams) ([]Event, int, error)
	GetEvent(ctx context.Context, id string) (Event, error)
}

type store struct {
	db *sqlx.DB
}

// NewStore creates a new audit store.
func NewStore(db *sqlx.DB) Store {
	return &store{db: db}
}

func (s *store) Log(ctx context.Context, e Event) (string, error) {
	id := uuid.NewString()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO audit_logs (id, actor_id, action, resource_type, resource_id, details, ip_address, outcome)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		id, e.ActorID, e.Action, e.ResourceType, e.ResourceID, e.Details, e.IPAddress, e.Outcome)
	return id, err
}

func (s *store) Query(ctx context.Context, params QueryParams) ([]Event, int, error) {
	query := `SELECT * FROM audit_logs WHERE 1 = 1`
	countQuery := `SELECT COUNT(*) FROM audit_logs WHERE 1 = 1`
	args := []interface{}{}
	argIdx := 1

	addFilter := func(cond string, value interface{}) {
		placeholder := ` $` + strconv.Itoa(argIdx)
		query += ` AND ` + cond + placeholder
		countQuery += ` AND ` + cond + placeholder
		args = append(args, value)
		argIdx++
	}

	if params.ActorID != nil {
		addFilter("actor_id =", *params.ActorID)
	}
	if params.Action != nil {
		addFilter("action =", *params.Action)
	}
	if params.Resource != nil {
		addFilter("resource_type =", *params.Resource)
	}
	if params.Outcome != nil {
		addFilter("outcome =", *params.Outcome)
	}
	if params.StartTime != nil {
		addFilter("timestamp >=", *params.StartTime)
	}
	if params.EndTime != nil {
		addFilter("timestamp <=", *params.EndTime)
	}

	var total int
	if err := s.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, err
	}

	query += ` ORDER BY timestamp DESC`
	if params.Limit > 0 {
		query += ` LIMIT $` + strconv.Itoa(argIdx)
		args = append(args, params.Limit)
		argIdx++
	}
	if params.Offset > 0 {
		query += ` OFFSET $` + strconv.Itoa(argIdx)
		args = append(args, params.Offset)
	}

	events := []Event{}
	if err := s.db.SelectContext(ctx, &events, query, args...); err != nil {
		return nil, 0, err
	}
	return events, total, nil
}

func (s *store) GetEvent(ctx context.Context, id string) (Event, error) {
	var e Event
	err := s.db.GetContext(ctx, &e, `SELECT * FROM audit_logs WHERE id = $1`, id)
	return e, err
}
