package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/lib/pq"
	"github.com/sortielabs/sortie/backend/internal/domain/entities"
	"github.com/sortielabs/sortie/backend/internal/domain/repositories"
	"github.com/sortielabs/sortie/backend/internal/infrastructure/clients/postgres"
	apperrors "github.com/sortielabs/sortie/backend/pkg/errors"
)

// EventAdapter implements EventRepository on top of an events table holding
// the raw JSONB document plus denormalized columns for the two indexable
// predicates (price, categories). Everything else is filtered client-side on
// the decoded documents.
type EventAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewEventAdapter creates a new event adapter
func NewEventAdapter(client *postgres.Client) repositories.EventRepository {
	return &EventAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// Create inserts a new event document
func (a *EventAdapter) Create(ctx context.Context, event *entities.Event) error {
	doc, err := json.Marshal(event)
	if err != nil {
		return apperrors.NewInternalError("failed to encode event document", err)
	}

	record := goqu.Record{
		"id":         event.ID,
		"creator_id": event.CreatorID,
		"price":      event.Price,
		"categories": pq.Array(event.Categories),
		"doc":        doc,
		"created_at": event.CreatedAt,
		"updated_at": event.UpdatedAt,
	}

	query, args, err := a.db.Insert("events").Prepared(true).Rows(record).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build insert query", err)
	}

	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		return apperrors.NewTransportError("failed to create event", err)
	}

	return nil
}

// GetByID retrieves a single raw event document
func (a *EventAdapter) GetByID(ctx context.Context, id string) (*repositories.RawEventDocument, error) {
	query, args, err := a.db.Select("id", "doc").
		From("events").
		Prepared(true).
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	raw := &repositories.RawEventDocument{}
	err = a.client.DB().QueryRowContext(ctx, query, args...).Scan(&raw.ID, (*[]byte)(&raw.Data))
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("event with id %s not found", id))
	}
	if err != nil {
		return nil, apperrors.NewTransportError("failed to get event", err)
	}

	return raw, nil
}

// Update replaces an event document
func (a *EventAdapter) Update(ctx context.Context, event *entities.Event) error {
	doc, err := json.Marshal(event)
	if err != nil {
		return apperrors.NewInternalError("failed to encode event document", err)
	}

	record := goqu.Record{
		"price":      event.Price,
		"categories": pq.Array(event.Categories),
		"doc":        doc,
		"updated_at": time.Now().UTC(),
	}

	query, args, err := a.db.Update("events").
		Prepared(true).
		Set(record).
		Where(goqu.Ex{"id": event.ID}).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build update query", err)
	}

	result, err := a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewTransportError("failed to update event", err)
	}

	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("event with id %s not found", event.ID))
	}

	return nil
}

// Delete removes an event document
func (a *EventAdapter) Delete(ctx context.Context, id string) error {
	query, args, err := a.db.Delete("events").
		Prepared(true).
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build delete query", err)
	}

	result, err := a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewTransportError("failed to delete event", err)
	}

	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("event with id %s not found", id))
	}

	return nil
}

// QueryCoarse returns raw documents matching the indexable predicates. Store
// order is pinned to insertion order so repeated queries over an unchanged
// table yield identical output.
func (a *EventAdapter) QueryCoarse(ctx context.Context, q repositories.CoarseQuery) ([]repositories.RawEventDocument, error) {
	ds := a.db.Select("id", "doc").
		From("events").
		Prepared(true).
		Order(goqu.I("created_at").Asc(), goqu.I("id").Asc())

	if q.FreeOnly {
		ds = ds.Where(goqu.Ex{"price": 0.0})
	}
	if len(q.Categories) > 0 {
		ds = ds.Where(goqu.L("categories && ?", pq.Array(q.Categories)))
	}
	if q.Limit > 0 {
		ds = ds.Limit(uint(q.Limit))
	}
	if q.Offset > 0 {
		ds = ds.Offset(uint(q.Offset))
	}

	query, args, err := ds.ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build coarse query", err)
	}

	return a.queryRaw(ctx, query, args)
}

// ListByCreator returns the raw documents owned by a creator
func (a *EventAdapter) ListByCreator(ctx context.Context, creatorID string) ([]repositories.RawEventDocument, error) {
	query, args, err := a.db.Select("id", "doc").
		From("events").
		Prepared(true).
		Where(goqu.Ex{"creator_id": creatorID}).
		Order(goqu.I("created_at").Asc(), goqu.I("id").Asc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build creator query", err)
	}

	return a.queryRaw(ctx, query, args)
}

func (a *EventAdapter) queryRaw(ctx context.Context, query string, args []interface{}) ([]repositories.RawEventDocument, error) {
	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewTransportError("failed to query events", err)
	}
	defer rows.Close()

	var docs []repositories.RawEventDocument
	for rows.Next() {
		var raw repositories.RawEventDocument
		if err := rows.Scan(&raw.ID, (*[]byte)(&raw.Data)); err != nil {
			return nil, apperrors.NewTransportError("failed to scan event document", err)
		}
		docs = append(docs, raw)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewTransportError("failed to read event documents", err)
	}

	return docs, nil
}
