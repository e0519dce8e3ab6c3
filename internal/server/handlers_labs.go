package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/paradigmbrian/wellness-mono-sub000/internal/models"
	"github.com/paradigmbrian/wellness-mono-sub000/internal/objectstore"
)

const maxLabUploadBytes = 25 << 20 // 25 MiB

// handleUploadLab stores a lab document in S3 and records it for the user.
// Expects a multipart form with a "file" field.
func (s *Server) handleUploadLab(w http.ResponseWriter, r *http.Request) {
	if s.objects == nil {
		writeError(w, http.StatusServiceUnavailable, "lab storage is not configured")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxLabUploadBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing file field")
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	uid := userID(r)
	key := objectstore.LabObjectKey(uid, header.Filename)
	if err := s.objects.Put(r.Context(), key, contentType, file); err != nil {
		s.log.Error("failed to upload lab document", "user_id", uid, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to store document")
		return
	}

	doc := models.LabDocument{
		ID:          uuid.New(),
		UserID:      uid,
		Filename:    header.Filename,
		ObjectKey:   key,
		ContentType: contentType,
		SizeBytes:   header.Size,
		UploadedAt:  time.Now().UTC(),
	}
	if err := s.db.InsertLabDocument(r.Context(), doc); err != nil {
		s.log.Error("failed to record lab document", "user_id", uid, "error", err)
		// Best effort cleanup of the orphaned object.
		if derr := s.objects.Delete(r.Context(), key); derr != nil {
			s.log.Error("failed to delete orphaned lab object", "key", key, "error", derr)
		}
		writeError(w, http.StatusInternalServerError, "failed to record document")
		return
	}

	writeJSON(w, http.StatusCreated, doc)
}

// handleListLabs returns the user's lab documents.
func (s *Server) handleListLabs(w http.ResponseWriter, r *http.Request) {
	docs, err := s.db.ListLabDocuments(r.Context(), userID(r))
	if err != nil {
		s.log.Error("failed to list lab documents", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list documents")
		return
	}
	if docs == nil {
		docs = []models.LabDocument{}
	}
	writeJSON(w, http.StatusOK, docs)
}

// handleDeleteLab removes a lab document record and its stored object.
func (s *Server) handleDeleteLab(w http.ResponseWriter, r *http.Request) {
	if s.objects == nil {
		writeError(w, http.StatusServiceUnavailable, "lab storage is not configured")
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid document id")
		return
	}

	uid := userID(r)
	doc, err := s.db.GetLabDocument(r.Context(), id, uid)
	if err != nil {
		s.log.Error("failed to fetch lab document", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to fetch document")
		return
	}
	if doc == nil {
		writeError(w, http.StatusNotFound, "document not found")
		return
	}

	if err := s.objects.Delete(r.Context(), doc.ObjectKey); err != nil {
		s.log.Error("failed to delete lab object", "key", doc.ObjectKey, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete document")
		return
	}
	if err := s.db.DeleteLabDocument(r.Context(), id, uid); err != nil {
		s.log.Error("failed to delete lab record", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete document")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
