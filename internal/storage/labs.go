package storage

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/paradigmbrian/wellness-mono-sub000/internal/models"
)

// InsertLabDocument records the metadata row for an uploaded lab file.
// The file bytes live in object storage under doc.ObjectKey.
func (db *DB) InsertLabDocument(ctx context.Context, doc models.LabDocument) error {
	_, err := db.Pool.Exec(ctx, `
		INSERT INTO lab_documents (id, user_id, filename, object_key, content_type, size_bytes)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, doc.ID, doc.UserID, doc.Filename, doc.ObjectKey, doc.ContentType, doc.SizeBytes)
	if err != nil {
		return fmt.Errorf("inserting lab document: %w", err)
	}
	return nil
}

// GetLabDocument fetches one lab document owned by the user, or nil when
// no such document exists.
func (db *DB) GetLabDocument(ctx context.Context, id uuid.UUID, userID string) (*models.LabDocument, error) {
	var d models.LabDocument
	err := db.Pool.QueryRow(ctx, `
		SELECT id, user_id, filename, object_key, content_type, size_bytes, uploaded_at
		FROM lab_documents
		WHERE id = $1 AND user_id = $2
	`, id, userID).Scan(&d.ID, &d.UserID, &d.Filename, &d.ObjectKey, &d.ContentType, &d.SizeBytes, &d.UploadedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("fetching lab document %s: %w", id, err)
	}
	return &d, nil
}

// ListLabDocuments returns a user's lab documents, newest first.
func (db *DB) ListLabDocuments(ctx context.Context, userID string) ([]models.LabDocument, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT id, user_id, filename, object_key, content_type, size_bytes, uploaded_at
		FROM lab_documents
		WHERE user_id = $1
		ORDER BY uploaded_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("listing lab documents: %w", err)
	}
	defer rows.Close()

	var result []models.LabDocument
	for rows.Next() {
		var d models.LabDocument
		if err := rows.Scan(&d.ID, &d.UserID, &d.Filename, &d.ObjectKey,
			&d.ContentType, &d.SizeBytes, &d.UploadedAt); err != nil {
			return nil, fmt.Errorf("scanning lab document row: %w", err)
		}
		result = append(result, d)
	}
	return result, rows.Err()
}

// DeleteLabDocument removes a lab document's metadata row.
func (db *DB) DeleteLabDocument(ctx context.Context, id uuid.UUID, userID string) error {
	tag, err := db.Pool.Exec(ctx,
		`DELETE FROM lab_documents WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("deleting lab document %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("lab document %s not found", id)
	}
	return nil
}
