package httpadapter

import (
	"io"
	"net/http"

	"github.com/akarpov/docrouter/internal/core/domain"
	"github.com/akarpov/docrouter/internal/core/ports"
)

const maxUploadMemory = 32 << 20

func (rt *Router) uploadDocument(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "multipart form is required"})
		return
	}
	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "multipart field 'file' is required"})
		return
	}
	defer file.Close()

	doc, err := rt.ingest.Upload(
		r.Context(),
		fileHeader.Filename,
		fileHeader.Header.Get("Content-Type"),
		file,
		actorFromRequest(r),
	)
	if err != nil {
		if rt.metrics != nil {
			rt.metrics.RecordUpload(serviceName, "error")
		}
		writeError(w, err)
		return
	}

	status := http.StatusAccepted
	outcome := "accepted"
	if doc.Status != domain.StatusUploaded {
		// dedup hit returns the already stored document
		status = http.StatusOK
		outcome = "duplicate"
	}
	if rt.metrics != nil {
		rt.metrics.RecordUpload(serviceName, outcome)
	}
	writeJSON(w, status, doc)
}

func (rt *Router) listDocuments(w http.ResponseWriter, r *http.Request) {
	filter := ports.DocumentFilter{
		DocType: r.URL.Query().Get("doc_type"),
		Status:  r.URL.Query().Get("status"),
		Limit:   queryInt(r, "limit", 0),
		Offset:  queryInt(r, "offset", 0),
	}
	docs, err := rt.documents.List(r.Context(), filter)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"documents": docs, "count": len(docs)})
}

func (rt *Router) getDocument(w http.ResponseWriter, r *http.Request) {
	doc, meta, err := rt.documents.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"document": doc, "metadata": meta})
}

func (rt *Router) downloadDocument(w http.ResponseWriter, r *http.Request) {
	doc, body, err := rt.documents.Open(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	defer body.Close()

	contentType := doc.MimeType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+doc.OriginalName+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = io.Copy(w, body)
}

func (rt *Router) documentAuditTrail(w http.ResponseWriter, r *http.Request) {
	entries, err := rt.documents.AuditTrail(r.Context(), r.PathValue("id"), queryInt(r, "limit", 0))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"entries": entries, "count": len(entries)})
}

func (rt *Router) documentAssignments(w http.ResponseWriter, r *http.Request) {
	assignments, err := rt.assignments.ListByDocument(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"assignments": assignments, "count": len(assignments)})
}

func (rt *Router) deleteDocument(w http.ResponseWriter, r *http.Request) {
	if err := rt.documents.Delete(r.Context(), r.PathValue("id"), actorFromRequest(r)); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
