package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/restaurant-review/internal/config"
	"github.com/iliyamo/restaurant-review/internal/detail"
	"github.com/iliyamo/restaurant-review/internal/logging"
	"github.com/iliyamo/restaurant-review/internal/middleware"
	"github.com/iliyamo/restaurant-review/internal/model"
	"github.com/iliyamo/restaurant-review/internal/search"
)

// Notices added to list pages.
const (
	NoticeNoResults    = "no restaurants matched your search"
	NoticeSearchFailed = "search failed"
	NoticeListFailed   = "could not load restaurants"
)

const maxPageSize = 100

// RestaurantHandler serves the public restaurant views.
type RestaurantHandler struct {
	Cfg config.Config
}

func NewRestaurantHandler(cfg config.Config) *RestaurantHandler {
	return &RestaurantHandler{Cfg: cfg}
}

type listView struct {
	base
	Data []model.RestaurantSummary `json:"data"`
}

type searchView struct {
	base
	Data     []model.RestaurantSummary `json:"data"`
	Total    int64                     `json:"total"`
	Page     int                       `json:"page"`
	PageSize int                       `json:"page_size"`
}

type detailView struct {
	base
	RID uint64 `json:"rid"`
	detail.Result
}

// Index lists the first INDEX_LIMIT restaurants.
func (h *RestaurantHandler) Index(c echo.Context) error {
	st, ok := store(c)
	if !ok {
		middleware.SkipCache(c)
		return c.JSON(http.StatusOK, listView{base: newBase(c, NoticeDBUnavailable), Data: []model.RestaurantSummary{}})
	}
	items, err := st.Restaurants.ListIndex(c.Request().Context(), h.Cfg.IndexLimit)
	if err != nil {
		logging.Error().Err(err).Str("op", "list restaurants").Msg("query failed")
		middleware.SkipCache(c)
		return c.JSON(http.StatusOK, listView{base: newBase(c, NoticeListFailed), Data: []model.RestaurantSummary{}})
	}
	return c.JSON(http.StatusOK, listView{base: newBase(c), Data: items})
}

// Search runs an exact-match search. Filters come from the query string
// or a form body; page and page_size select the window.
func (h *RestaurantHandler) Search(c echo.Context) error { return h.search(c, search.Exact) }

// FuzzySearch is Search with pattern matching on name and location.
func (h *RestaurantHandler) FuzzySearch(c echo.Context) error { return h.search(c, search.Fuzzy) }

func (h *RestaurantHandler) search(c echo.Context, mode search.Mode) error {
	params, err := c.FormParams()
	if err != nil {
		return badRequest(c, "invalid form")
	}
	page, _ := strconv.Atoi(params.Get("page"))
	if page < 1 {
		page = 1
	}
	ps, _ := strconv.Atoi(params.Get("page_size"))
	if ps < 1 {
		ps = h.Cfg.SearchPageSize
	}
	if ps < 1 {
		ps = 20
	}
	if ps > maxPageSize {
		ps = maxPageSize
	}

	q, err := search.Build(search.Filters(params), mode)
	if err != nil {
		return badRequest(c, err.Error())
	}

	view := searchView{Data: []model.RestaurantSummary{}, Page: page, PageSize: ps}
	st, ok := store(c)
	if !ok {
		middleware.SkipCache(c)
		view.base = newBase(c, NoticeDBUnavailable)
		return c.JSON(http.StatusOK, view)
	}
	items, total, err := st.Restaurants.Search(c.Request().Context(), q, page, ps)
	if err != nil {
		logging.Error().Err(err).Str("op", "search").Msg("query failed")
		middleware.SkipCache(c)
		view.base = newBase(c, NoticeSearchFailed)
		return c.JSON(http.StatusOK, view)
	}
	view.Data, view.Total = items, total
	if total == 0 {
		view.base = newBase(c, NoticeNoResults)
	} else {
		view.base = newBase(c)
	}
	return c.JSON(http.StatusOK, view)
}

// Detail renders the aggregated restaurant record. Sections that fail
// to load are reported in warnings and logged; only a missing
// restaurant is an error.
func (h *RestaurantHandler) Detail(c echo.Context) error {
	rid, ok := idParam(c, "rid")
	if !ok {
		return badRequest(c, "invalid restaurant id")
	}
	st, ok := store(c)
	if !ok {
		middleware.SkipCache(c)
		return c.JSON(http.StatusOK, detailView{base: newBase(c, NoticeDBUnavailable), RID: rid, Result: detail.Empty(rid)})
	}

	agg := detail.New(st.Detail())
	if h.Cfg.PhotoPrefix != "" {
		agg.PhotoPrefix = h.Cfg.PhotoPrefix
	}
	res, err := agg.Aggregate(c.Request().Context(), rid, middleware.CurrentSession(c))
	if errors.Is(err, detail.ErrNotFound) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not_found", "message": "restaurant not found"})
	}
	if err != nil {
		return serverError(c, "restaurant detail", err)
	}
	if len(res.Warnings) > 0 {
		middleware.SkipCache(c)
	}
	for _, w := range res.Warnings {
		logging.Warn().Uint64("rid", rid).Str("section", w.Section).Str("error", w.Message).Msg("detail section degraded")
	}
	return c.JSON(http.StatusOK, detailView{base: newBase(c), RID: rid, Result: res})
}
