package api

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/gisdiff/changedet/pkg/geojson"
	"github.com/gisdiff/changedet/pkg/hashkey"
)

// HashKeyRequest carries a GeoJSON feature collection and the key
// derivation parameters
type HashKeyRequest struct {
	Data             json.RawMessage `json:"data"`
	OutputField      string          `json:"output_field"`
	Fields           []string        `json:"fields,omitempty"`
	HashGeometry     bool            `json:"hash_geometry,omitempty"`
	DropNullGeometry bool            `json:"drop_null_geometry,omitempty"`
	AllowDuplicates  bool            `json:"allow_duplicates,omitempty"`
	Precision        float64         `json:"precision,omitempty"`
	CRS              string          `json:"crs,omitempty"`
	Geographic       bool            `json:"geographic,omitempty"`
}

// HandleHashKey handles POST requests to add a surrogate key to a dataset
func (h *Handler) HandleHashKey(w http.ResponseWriter, r *http.Request) {
	var req HashKeyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("decoding hashkey request failed", zap.Error(err))
		WriteJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.OutputField == "" {
		WriteJSONError(w, http.StatusBadRequest, "output_field is required")
		return
	}

	var loadOptions []geojson.Option
	if req.CRS != "" {
		loadOptions = append(loadOptions, geojson.WithCRS(req.CRS, req.Geographic))
	}
	ds, err := geojson.Decode(req.Data, "data", loadOptions...)
	if err != nil {
		WriteJSONError(w, statusForError(err), err.Error())
		return
	}

	keyed, err := h.deriver.AddHashKey(ds, req.OutputField, hashkey.KeyConfig{
		Fields:           req.Fields,
		HashGeometry:     req.HashGeometry,
		DropNullGeometry: req.DropNullGeometry,
		AllowDuplicates:  req.AllowDuplicates,
		Precision:        req.Precision,
	})
	if err != nil {
		h.logger.Warn("key derivation failed", zap.Error(err))
		WriteJSONError(w, statusForError(err), err.Error())
		return
	}

	encoded, err := geojson.Encode(keyed)
	if err != nil {
		h.logger.Error("encoding keyed dataset failed", zap.Error(err))
		WriteJSONError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Write(encoded)
}
