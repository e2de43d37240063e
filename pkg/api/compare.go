package api

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/gisdiff/changedet/pkg/diff"
	"github.com/gisdiff/changedet/pkg/geojson"
)

// CompareRequest carries two GeoJSON feature collections and the
// comparison parameters
type CompareRequest struct {
	A            json.RawMessage `json:"a"`
	B            json.RawMessage `json:"b"`
	PrimaryKey   string          `json:"primary_key"`
	Fields       []string        `json:"fields,omitempty"`
	IgnoreFields []string        `json:"ignore_fields,omitempty"`
	Precision    float64         `json:"precision,omitempty"`
	LabelA       string          `json:"label_a,omitempty"`
	LabelB       string          `json:"label_b,omitempty"`
	CRS          string          `json:"crs,omitempty"`
	Geographic   bool            `json:"geographic,omitempty"`
}

// CompareResponse carries the per-bucket counts and each bucket as a
// GeoJSON feature collection
type CompareResponse struct {
	Summary diff.Summary               `json:"summary"`
	Buckets map[string]json.RawMessage `json:"buckets"`
}

// HandleCompare handles POST requests to run a comparison
func (h *Handler) HandleCompare(w http.ResponseWriter, r *http.Request) {
	var req CompareRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("decoding compare request failed", zap.Error(err))
		WriteJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.PrimaryKey == "" {
		WriteJSONError(w, http.StatusBadRequest, "primary_key is required")
		return
	}

	var loadOptions []geojson.Option
	if req.CRS != "" {
		loadOptions = append(loadOptions, geojson.WithCRS(req.CRS, req.Geographic))
	}
	dsA, err := geojson.Decode(req.A, "a", loadOptions...)
	if err != nil {
		WriteJSONError(w, statusForError(err), err.Error())
		return
	}
	dsB, err := geojson.Decode(req.B, "b", loadOptions...)
	if err != nil {
		WriteJSONError(w, statusForError(err), err.Error())
		return
	}

	var differOptions []diff.Option
	differOptions = append(differOptions, diff.WithLogger(h.logger))
	if req.Precision != 0 {
		differOptions = append(differOptions, diff.WithPrecision(req.Precision))
	}
	if req.LabelA != "" || req.LabelB != "" {
		differOptions = append(differOptions, diff.WithLabels(req.LabelA, req.LabelB))
	}

	result, err := diff.NewDiffer(differOptions...).Diff(dsA, dsB, req.PrimaryKey, req.Fields, req.IgnoreFields)
	if err != nil {
		h.logger.Warn("comparison failed", zap.Error(err))
		WriteJSONError(w, statusForError(err), err.Error())
		return
	}

	resp := CompareResponse{
		Summary: result.Summary(),
		Buckets: make(map[string]json.RawMessage, len(diff.BucketNames)),
	}
	for _, bucket := range result.Buckets() {
		encoded, err := geojson.Encode(bucket)
		if err != nil {
			h.logger.Error("encoding bucket failed", zap.String("bucket", bucket.Name), zap.Error(err))
			WriteJSONError(w, http.StatusInternalServerError, err.Error())
			return
		}
		resp.Buckets[bucket.Name] = encoded
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}
