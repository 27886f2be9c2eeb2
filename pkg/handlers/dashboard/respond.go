package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/Amadeus750/spend-streamlet/pkg/models/api"
	"github.com/Amadeus750/spend-streamlet/pkg/services/dataset"
	"github.com/Amadeus750/spend-streamlet/pkg/services/spend"
)

func respondJSON(ctx context.Context, w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("failed to encode response")
	}
}

// respondError maps service errors onto statuses: unusable request
// parameters are the client's fault, a dataset that was never loaded is
// unknown, anything else stays opaque.
func respondError(ctx context.Context, w http.ResponseWriter, err error) {
	var filterErr *spend.FilterError
	switch {
	case errors.As(err, &filterErr):
		respondJSON(ctx, w, http.StatusBadRequest, api.Error{Error: filterErr.Error()})
	case errors.Is(err, dataset.ErrNotLoaded):
		respondJSON(ctx, w, http.StatusNotFound, api.Error{Error: err.Error()})
	default:
		zerolog.Ctx(ctx).Error().Err(err).Msg("request failed")
		respondJSON(ctx, w, http.StatusInternalServerError, api.Error{Error: "internal server error"})
	}
}
