package api

import (
	"net/http"

	"github.com/status-im/token-aggregator/aggregator"
	"github.com/status-im/token-aggregator/cursor"
	"github.com/status-im/token-aggregator/interfaces"
)

// TokensResponse is the paginated envelope of /api/tokens and /api/search
type TokensResponse struct {
	Data       []interfaces.TokenRecord `json:"data"`
	Pagination cursor.Pagination        `json:"pagination"`
}

// handleTokens serves the filtered, sorted and paginated merged token list
func (s *Server) handleTokens(w http.ResponseWriter, r *http.Request) {
	q, err := parseTokenQuery(r)
	if err != nil {
		s.sendError(w, http.StatusBadRequest, err.Error())
		return
	}

	records, cacheStatus := s.services.Tokens.GetAllWithStatus(r.Context(), true)
	sorted := aggregator.Sort(aggregator.Filter(records, q.filter), q.sort)

	fingerprint := cursor.Fingerprint(q.filter, q.sort)
	offset := cursor.Resolve(q.cursor, fingerprint)

	s.setCacheStatusHeader(w, cacheStatus.String())
	s.sendJSONResponse(w, TokensResponse{
		Data:       cursor.Page(sorted, offset, q.limit),
		Pagination: cursor.Paginate(len(sorted), offset, q.limit, fingerprint),
	})
}

// handleSearch serves tokens matching q by name, ticker or address
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	q, err := parseSearchQuery(r)
	if err != nil {
		s.sendError(w, http.StatusBadRequest, err.Error())
		return
	}

	records := s.services.Tokens.Search(r.Context(), q.query)

	fingerprint := cursor.SearchFingerprint(q.query)
	offset := cursor.Resolve(q.cursor, fingerprint)

	s.sendJSONResponse(w, TokensResponse{
		Data:       cursor.Page(records, offset, q.limit),
		Pagination: cursor.Paginate(len(records), offset, q.limit, fingerprint),
	})
}
