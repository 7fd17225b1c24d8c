package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/recipe-buddy/backend/internal/search"
	"github.com/pageza/recipe-buddy/backend/internal/types"
)

// Search handles POST /search.
func (h *Handler) Search(c *gin.Context) {
	var req types.SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	opts := search.Options{
		MaxResults:      req.MaxResults,
		Page:            req.Page,
		DisableSemantic: req.UseTFIDF != nil && !*req.UseTFIDF,
	}
	h.runSearch(c, req.Query, opts)
}

// SimpleSearch handles GET /search/simple?q=&limit=&page=.
func (h *Handler) SimpleSearch(c *gin.Context) {
	limit, ok := queryInt(c, "limit", search.DefaultMaxResults)
	if !ok {
		return
	}
	page, ok := queryInt(c, "page", 1)
	if !ok {
		return
	}
	useTFIDF, ok := queryBool(c, "use_tfidf", true)
	if !ok {
		return
	}
	h.runSearch(c, c.Query("q"), search.Options{MaxResults: limit, Page: page, DisableSemantic: !useTFIDF})
}

func (h *Handler) runSearch(c *gin.Context, query string, opts search.Options) {
	resp, err := h.svc.Search(c.Request.Context(), query, opts)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Parse handles POST /parse and returns the structured query only.
func (h *Handler) Parse(c *gin.Context) {
	var req types.ParseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	parsed, err := h.svc.Parse(req.Query)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, types.ParseResponse{Query: req.Query, Parsed: parsed})
}
