package handler

import (
	"log"
	"net/http"

	"relsync/internal/codec"
)

// ExportYAML streams the full dataset as a YAML snapshot
func (h *BlogHandler) ExportYAML(w http.ResponseWriter, r *http.Request) {
	h.export(w, r, codec.NewYAMLCodec(), "application/yaml", "relsync-export.yaml")
}

// ExportJSON streams the full dataset as a JSON snapshot
func (h *BlogHandler) ExportJSON(w http.ResponseWriter, r *http.Request) {
	h.export(w, r, codec.NewJSONCodec(), "application/json", "relsync-export.json")
}

func (h *BlogHandler) export(w http.ResponseWriter, r *http.Request, exp codec.Exporter, contentType, filename string) {
	snapshot, err := h.svc.ExportSnapshot(r.Context())
	if err != nil {
		log.Printf("Failed to export snapshot: %v", err)
		h.writeError(w, "Failed to export", err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", "attachment; filename="+filename)
	if err := exp.Export(snapshot, w); err != nil {
		log.Printf("Failed to encode %s export: %v", exp.Format(), err)
	}
}

// ImportYAML imports a YAML snapshot from the request body
func (h *BlogHandler) ImportYAML(w http.ResponseWriter, r *http.Request) {
	h.importSnapshot(w, r, codec.NewYAMLCodec())
}

// ImportJSON imports a JSON snapshot from the request body
func (h *BlogHandler) ImportJSON(w http.ResponseWriter, r *http.Request) {
	h.importSnapshot(w, r, codec.NewJSONCodec())
}

func (h *BlogHandler) importSnapshot(w http.ResponseWriter, r *http.Request, imp codec.Importer) {
	snapshot, err := imp.Parse(r.Body)
	if err != nil {
		h.writeError(w, "Invalid "+imp.Format()+" snapshot", err.Error(), http.StatusBadRequest)
		return
	}

	result, err := h.svc.ImportSnapshot(r.Context(), snapshot)
	if err != nil {
		log.Printf("Failed to import %s snapshot: %v", imp.Format(), err)
		h.writeError(w, "Failed to import", err.Error(), http.StatusBadRequest)
		return
	}

	h.writeJSON(w, result, http.StatusOK)
}
