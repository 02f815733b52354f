package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/restaurant-review/internal/middleware"
	"github.com/iliyamo/restaurant-review/internal/model"
	"github.com/iliyamo/restaurant-review/internal/queue"
	"github.com/iliyamo/restaurant-review/internal/repository"
	"github.com/iliyamo/restaurant-review/internal/service"
)

// MemberHandler serves the endpoints that need a logged-in session. The
// routes are guarded by middleware.RequireLogin.
type MemberHandler struct {
	Pub service.Publisher
}

func NewMemberHandler(pub service.Publisher) *MemberHandler {
	return &MemberHandler{Pub: pub}
}

type reviewReq struct {
	Rating int    `json:"rating" form:"rating" validate:"required,min=1,max=5"`
	Text   string `json:"review_text" form:"review_text" validate:"required,max=5000"`
}

type tipReq struct {
	Text string `json:"t_text" form:"t_text" validate:"required,max=500"`
}

type voteReq struct {
	VoteType string `json:"vote_type" form:"vote_type" validate:"required,oneof=useful funny cool"`
}

type createdView struct {
	base
	ID  uint64 `json:"id,omitempty"`
	RID uint64 `json:"rid,omitempty"`
}

type bookmarksView struct {
	base
	Data []model.RestaurantSummary `json:"data"`
}

type friendsView struct {
	base
	Data []model.Friend `json:"data"`
}

func excerpt(s string) string {
	const n = 80
	if r := []rune(s); len(r) > n {
		return string(r[:n]) + "..."
	}
	return s
}

func notFound(c echo.Context, msg string) error {
	return c.JSON(http.StatusNotFound, echo.Map{"error": "not_found", "message": msg})
}

func conflict(c echo.Context, msg string) error {
	return c.JSON(http.StatusConflict, echo.Map{"error": "conflict", "message": msg})
}

// PostReview stores a review dated today for the session user.
func (h *MemberHandler) PostReview(c echo.Context) error {
	rid, ok := idParam(c, "rid")
	if !ok {
		return badRequest(c, "invalid restaurant id")
	}
	var req reviewReq
	if err := decode(c, &req); err != nil {
		return badRequest(c, validationMessage(err))
	}
	if req.Text = strings.TrimSpace(req.Text); req.Text == "" {
		return badRequest(c, "review_text is required")
	}
	st, ok := store(c)
	if !ok {
		return unavailable(c)
	}
	sess := middleware.CurrentSession(c)

	id, err := st.Reviews.Create(c.Request().Context(), rid, sess.UID, req.Rating, req.Text)
	if errors.Is(err, repository.ErrRestaurantNotFound) {
		return notFound(c, "restaurant not found")
	}
	if err != nil {
		return serverError(c, "create review", err)
	}
	publish(h.Pub, queue.ActivityEvent{
		Kind: queue.KindReviewCreated, UserID: sess.UID, UserName: sess.UName,
		Restaurant: rid, TargetID: id, Detail: strconv.Itoa(req.Rating) + " stars: " + excerpt(req.Text),
	})
	return c.JSON(http.StatusCreated, createdView{base: newBase(c, "review posted"), ID: id, RID: rid})
}

// PostTip stores a tip dated today for the session user.
func (h *MemberHandler) PostTip(c echo.Context) error {
	rid, ok := idParam(c, "rid")
	if !ok {
		return badRequest(c, "invalid restaurant id")
	}
	var req tipReq
	if err := decode(c, &req); err != nil {
		return badRequest(c, validationMessage(err))
	}
	if req.Text = strings.TrimSpace(req.Text); req.Text == "" {
		return badRequest(c, "t_text is required")
	}
	st, ok := store(c)
	if !ok {
		return unavailable(c)
	}
	sess := middleware.CurrentSession(c)

	id, err := st.Tips.Create(c.Request().Context(), rid, sess.UID, req.Text)
	if errors.Is(err, repository.ErrRestaurantNotFound) {
		return notFound(c, "restaurant not found")
	}
	if err != nil {
		return serverError(c, "create tip", err)
	}
	publish(h.Pub, queue.ActivityEvent{
		Kind: queue.KindTipCreated, UserID: sess.UID, UserName: sess.UName,
		Restaurant: rid, TargetID: id, Detail: excerpt(req.Text),
	})
	return c.JSON(http.StatusCreated, createdView{base: newBase(c, "tip posted"), ID: id, RID: rid})
}

// Vote increments the useful, funny or cool counter of a review.
func (h *MemberHandler) Vote(c echo.Context) error {
	reviewID, ok := idParam(c, "review_id")
	if !ok {
		return badRequest(c, "invalid review id")
	}
	var req voteReq
	if err := decode(c, &req); err != nil {
		return badRequest(c, validationMessage(err))
	}
	st, ok := store(c)
	if !ok {
		return unavailable(c)
	}
	sess := middleware.CurrentSession(c)

	err := st.Reviews.Vote(c.Request().Context(), reviewID, req.VoteType)
	switch {
	case errors.Is(err, repository.ErrInvalidVote):
		return badRequest(c, "vote_type must be one of: useful funny cool")
	case errors.Is(err, repository.ErrReviewNotFound):
		return notFound(c, "review not found")
	case err != nil:
		return serverError(c, "vote", err)
	}
	publish(h.Pub, queue.ActivityEvent{
		Kind: queue.KindReviewVoted, UserID: sess.UID, UserName: sess.UName,
		TargetID: reviewID, Detail: req.VoteType,
	})
	return c.JSON(http.StatusOK, createdView{base: newBase(c, "vote recorded"), ID: reviewID})
}

// AddBookmark bookmarks a restaurant for the session user.
func (h *MemberHandler) AddBookmark(c echo.Context) error {
	rid, ok := idParam(c, "rid")
	if !ok {
		return badRequest(c, "invalid restaurant id")
	}
	st, ok := store(c)
	if !ok {
		return unavailable(c)
	}
	sess := middleware.CurrentSession(c)

	err := st.Bookmarks.Add(c.Request().Context(), sess.UID, rid)
	switch {
	case errors.Is(err, repository.ErrAlreadyBookmarked):
		return conflict(c, "already bookmarked")
	case errors.Is(err, repository.ErrRestaurantNotFound):
		return notFound(c, "restaurant not found")
	case err != nil:
		return serverError(c, "add bookmark", err)
	}
	publish(h.Pub, queue.ActivityEvent{Kind: queue.KindBookmarkAdded, UserID: sess.UID, UserName: sess.UName, Restaurant: rid})
	return c.JSON(http.StatusCreated, createdView{base: newBase(c, "bookmarked"), RID: rid})
}

// RemoveBookmark deletes the session user's bookmark of a restaurant.
func (h *MemberHandler) RemoveBookmark(c echo.Context) error {
	rid, ok := idParam(c, "rid")
	if !ok {
		return badRequest(c, "invalid restaurant id")
	}
	st, ok := store(c)
	if !ok {
		return unavailable(c)
	}
	sess := middleware.CurrentSession(c)

	err := st.Bookmarks.Remove(c.Request().Context(), sess.UID, rid)
	if errors.Is(err, repository.ErrBookmarkNotFound) {
		return notFound(c, "bookmark not found")
	}
	if err != nil {
		return serverError(c, "remove bookmark", err)
	}
	publish(h.Pub, queue.ActivityEvent{Kind: queue.KindBookmarkRemoved, UserID: sess.UID, UserName: sess.UName, Restaurant: rid})
	return c.NoContent(http.StatusNoContent)
}

// Bookmarks lists the session user's bookmarked restaurants.
func (h *MemberHandler) Bookmarks(c echo.Context) error {
	st, ok := store(c)
	if !ok {
		return c.JSON(http.StatusOK, bookmarksView{base: newBase(c, NoticeDBUnavailable), Data: []model.RestaurantSummary{}})
	}
	items, err := st.Bookmarks.ListByUser(c.Request().Context(), middleware.CurrentSession(c).UID)
	if err != nil {
		return serverError(c, "list bookmarks", err)
	}
	return c.JSON(http.StatusOK, bookmarksView{base: newBase(c), Data: items})
}

// AddFriend follows another user. Following yourself is rejected.
func (h *MemberHandler) AddFriend(c echo.Context) error {
	uid, ok := idParam(c, "uid")
	if !ok {
		return badRequest(c, "invalid user id")
	}
	sess := middleware.CurrentSession(c)
	if uid == sess.UID {
		return badRequest(c, "cannot add yourself as a friend")
	}
	st, ok := store(c)
	if !ok {
		return unavailable(c)
	}

	err := st.Friends.Add(c.Request().Context(), sess.UID, uid)
	switch {
	case errors.Is(err, repository.ErrAlreadyFriends):
		return conflict(c, "already friends")
	case errors.Is(err, repository.ErrUserNotFound):
		return notFound(c, "user not found")
	case err != nil:
		return serverError(c, "add friend", err)
	}
	publish(h.Pub, queue.ActivityEvent{Kind: queue.KindFriendAdded, UserID: sess.UID, UserName: sess.UName, TargetID: uid})
	return c.JSON(http.StatusCreated, createdView{base: newBase(c, "friend added"), ID: uid})
}

// RemoveFriend unfollows a user.
func (h *MemberHandler) RemoveFriend(c echo.Context) error {
	uid, ok := idParam(c, "uid")
	if !ok {
		return badRequest(c, "invalid user id")
	}
	st, ok := store(c)
	if !ok {
		return unavailable(c)
	}
	sess := middleware.CurrentSession(c)

	err := st.Friends.Remove(c.Request().Context(), sess.UID, uid)
	if errors.Is(err, repository.ErrFriendNotFound) {
		return notFound(c, "friend not found")
	}
	if err != nil {
		return serverError(c, "remove friend", err)
	}
	publish(h.Pub, queue.ActivityEvent{Kind: queue.KindFriendRemoved, UserID: sess.UID, UserName: sess.UName, TargetID: uid})
	return c.NoContent(http.StatusNoContent)
}

// Friends lists the users the session user follows.
func (h *MemberHandler) Friends(c echo.Context) error {
	st, ok := store(c)
	if !ok {
		return c.JSON(http.StatusOK, friendsView{base: newBase(c, NoticeDBUnavailable), Data: []model.Friend{}})
	}
	items, err := st.Friends.List(c.Request().Context(), middleware.CurrentSession(c).UID)
	if err != nil {
		return serverError(c, "list friends", err)
	}
	return c.JSON(http.StatusOK, friendsView{base: newBase(c), Data: items})
}
