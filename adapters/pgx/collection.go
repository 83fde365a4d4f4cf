package pgx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/lborres/reisetagebuch/core"
)

// Collection is one JSONB table. The key column holds the upsert match value,
// which is the document id for every collection except users.
type Collection struct {
	db    DB
	table string
}

var _ core.DocumentCollection = (*Collection)(nil)

func (c *Collection) FindByOwner(ctx context.Context, ownerID, sortKey string) ([]core.RawDocument, error) {
	q := fmt.Sprintf(`SELECT key, doc, created_at, updated_at FROM %s WHERE owner = $1 ORDER BY doc -> $2 ASC NULLS FIRST, created_at ASC`, c.table)

	rows, err := c.db.Query(ctx, q, ownerID, sortKey)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	docs := []core.RawDocument{}
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return docs, nil
}

func (c *Collection) FindOne(ctx context.Context, id, ownerID string) (core.RawDocument, error) {
	q := fmt.Sprintf(`SELECT key, doc, created_at, updated_at FROM %s WHERE key = $1 AND owner = $2`, c.table)

	doc, err := scanDocument(c.db.QueryRow(ctx, q, id, ownerID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, core.ErrNotFound
		}
		return nil, err
	}
	return doc, nil
}

// Upsert is a single INSERT ... ON CONFLICT. Supplied fields are merged over
// the stored document and created_at is left untouched on conflict.
func (c *Collection) Upsert(ctx context.Context, matchField, matchValue string, fields core.RawDocument, now time.Time) error {
	payload, err := encodeFields(fields)
	if err != nil {
		return err
	}

	owner := ownerOf(fields)
	if matchField == core.FieldUserID {
		owner = &matchValue
	}

	q := fmt.Sprintf(`INSERT INTO %[1]s (key, owner, doc, created_at, updated_at)
VALUES ($1, $2, $3, $4, $4)
ON CONFLICT (key) DO UPDATE
SET owner = EXCLUDED.owner, doc = %[1]s.doc || EXCLUDED.doc, updated_at = EXCLUDED.updated_at`, c.table)

	_, err = c.db.Exec(ctx, q, matchValue, owner, payload, now)
	return err
}

func (c *Collection) Insert(ctx context.Context, doc core.RawDocument) error {
	key, ok := doc[core.FieldID].(string)
	if !ok || key == "" {
		return fmt.Errorf("insert into %s: document has no string %s", c.table, core.FieldID)
	}

	createdAt, ok := doc[core.FieldCreatedAt].(time.Time)
	if !ok {
		createdAt = time.Now().UTC()
	}

	payload, err := encodeFields(doc)
	if err != nil {
		return err
	}

	q := fmt.Sprintf(`INSERT INTO %s (key, owner, doc, created_at, updated_at) VALUES ($1, $2, $3, $4, $4)`, c.table)
	_, err = c.db.Exec(ctx, q, key, ownerOf(doc), payload, createdAt)
	return err
}

// encodeFields serializes the document without the columns kept outside of it.
func encodeFields(fields core.RawDocument) ([]byte, error) {
	body := make(map[string]any, len(fields))
	for k, v := range fields {
		switch k {
		case core.FieldID, core.FieldCreatedAt, core.FieldUpdatedAt:
			continue
		}
		body[k] = v
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	return payload, nil
}

func ownerOf(doc core.RawDocument) *string {
	if owner, ok := doc[core.FieldUserID].(string); ok {
		return &owner
	}
	return nil
}

func scanDocument(row pgx.Row) (core.RawDocument, error) {
	var (
		key                  string
		payload              []byte
		createdAt, updatedAt time.Time
	)
	if err := row.Scan(&key, &payload, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	doc := core.RawDocument{}
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &doc); err != nil {
			return nil, fmt.Errorf("decode document %s: %w", key, err)
		}
	}
	doc[core.FieldID] = key
	doc[core.FieldCreatedAt] = createdAt
	doc[core.FieldUpdatedAt] = updatedAt
	return doc, nil
}
