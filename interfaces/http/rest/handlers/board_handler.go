package handlers

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"boardcore/application/ports"
	"boardcore/domain/core/aggregates"
	"boardcore/domain/core/entities"
	dynamodbinfra "boardcore/infrastructure/persistence/dynamodb"
	"boardcore/pkg/common"
	pkgerrors "boardcore/pkg/errors"
)

const maxDocumentBytes = 4 << 20

// BoardHandler serves board document CRUD. Real-time edits flow over
// the sync bridge; these endpoints cover listing, loading, and durable
// snapshot saves.
type BoardHandler struct {
	repo     ports.BoardRepository
	events   ports.EventStore
	saveLock *dynamodbinfra.BoardLock
	logger   *zap.Logger
	validate *validator.Validate
	errors   *pkgerrors.ErrorHandler
}

// NewBoardHandler creates a board handler. events and saveLock may be
// nil when running single-instance without an outbox.
func NewBoardHandler(repo ports.BoardRepository, events ports.EventStore, saveLock *dynamodbinfra.BoardLock, logger *zap.Logger) *BoardHandler {
	return &BoardHandler{
		repo:     repo,
		events:   events,
		saveLock: saveLock,
		logger:   logger,
		validate: validator.New(),
		errors:   pkgerrors.NewErrorHandler(logger, false),
	}
}

type createBoardRequest struct {
	Name string `json:"name" validate:"required,min=1,max=120"`
}

type boardSummary struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	ItemCount int    `json:"itemCount"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

type createBookmarkRequest struct {
	Name     string  `json:"name" validate:"required,min=1,max=120"`
	TargetID string  `json:"targetId,omitempty"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Scale    float64 `json:"scale" validate:"omitempty,gt=0"`
}

// CreateBoard handles POST /boards
func (h *BoardHandler) CreateBoard(w http.ResponseWriter, r *http.Request) {
	userID, ok := common.GetUserID(r.Context())
	if !ok {
		common.RespondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Missing user context")
		return
	}

	var req createBoardRequest
	if err := common.ParseJSONBody(r, &req, 1<<16); err != nil {
		common.RespondError(w, http.StatusBadRequest, "INVALID_BODY", "Request body is not valid JSON")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION_FAILED", err.Error())
		return
	}

	board, err := aggregates.NewBoard(userID, req.Name)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	if err := h.repo.Save(r.Context(), board); err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	h.persistEvents(r.Context(), board)

	h.logger.Info("Board created",
		zap.String("boardID", board.ID().String()),
		zap.String("userID", userID),
	)

	common.RespondJSON(w, http.StatusCreated, summarize(board))
}

// ListBoards handles GET /boards
func (h *BoardHandler) ListBoards(w http.ResponseWriter, r *http.Request) {
	userID, ok := common.GetUserID(r.Context())
	if !ok {
		common.RespondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Missing user context")
		return
	}

	boards, err := h.repo.GetByUserID(r.Context(), userID)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	sort.Slice(boards, func(i, j int) bool {
		return boards[i].UpdatedAt().After(boards[j].UpdatedAt())
	})

	params := common.ExtractPaginationParams(r)
	start, end := params.Bounds(len(boards))

	summaries := make([]boardSummary, 0, end-start)
	for _, board := range boards[start:end] {
		summaries = append(summaries, summarize(board))
	}

	common.RespondJSON(w, http.StatusOK, common.NewPaginatedResult(summaries, params, len(boards)))
}

// GetBoard handles GET /boards/{boardID}, returning the full document
func (h *BoardHandler) GetBoard(w http.ResponseWriter, r *http.Request) {
	board, ok := h.loadOwnedBoard(w, r)
	if !ok {
		return
	}

	common.RespondJSON(w, http.StatusOK, board.ToDocument())
}

// SaveBoard handles PUT /boards/{boardID}. The body is a full board
// document; the save lock serializes concurrent snapshot writes.
func (h *BoardHandler) SaveBoard(w http.ResponseWriter, r *http.Request) {
	existing, ok := h.loadOwnedBoard(w, r)
	if !ok {
		return
	}
	userID, _ := common.GetUserID(r.Context())

	doc := &aggregates.BoardDocument{}
	if err := common.ParseJSONBody(r, doc, maxDocumentBytes); err != nil {
		common.RespondError(w, http.StatusBadRequest, "INVALID_BODY", "Request body is not a valid board document")
		return
	}

	// The document identity is not client-assignable.
	doc.ID = existing.ID().String()
	doc.UserID = existing.UserID()
	if doc.Name == "" {
		doc.Name = existing.Name()
	}
	doc.CreatedAt = existing.CreatedAt()
	doc.UpdatedAt = time.Now()

	board, err := aggregates.FromDocument(doc)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	if err := board.Validate(); err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	if h.saveLock != nil {
		lock, err := h.saveLock.TryAcquire(r.Context(), board.ID().String(), userID, 10*time.Second, 2*time.Second)
		if err != nil {
			common.RespondError(w, http.StatusConflict, "SAVE_CONTENTION", "Board is being saved by another writer")
			return
		}
		defer lock.Release(r.Context())
	}

	if err := h.repo.Save(r.Context(), board); err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, summarize(board))
}

// DeleteBoard handles DELETE /boards/{boardID}
func (h *BoardHandler) DeleteBoard(w http.ResponseWriter, r *http.Request) {
	board, ok := h.loadOwnedBoard(w, r)
	if !ok {
		return
	}

	if err := h.repo.Delete(r.Context(), board.ID()); err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	h.logger.Info("Board deleted",
		zap.String("boardID", board.ID().String()),
		zap.String("userID", board.UserID()),
	)

	common.RespondJSON(w, http.StatusOK, map[string]string{"id": board.ID().String()})
}

// CreateBookmark handles POST /boards/{boardID}/bookmarks
func (h *BoardHandler) CreateBookmark(w http.ResponseWriter, r *http.Request) {
	board, ok := h.loadOwnedBoard(w, r)
	if !ok {
		return
	}

	var req createBookmarkRequest
	if err := common.ParseJSONBody(r, &req, 1<<16); err != nil {
		common.RespondError(w, http.StatusBadRequest, "INVALID_BODY", "Request body is not valid JSON")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION_FAILED", err.Error())
		return
	}

	scale := req.Scale
	if scale <= 0 {
		scale = 1
	}

	var bookmark *entities.Bookmark
	var err error
	if req.TargetID != "" {
		bookmark, err = entities.NewItemBookmark(req.Name, req.TargetID, scale)
	} else {
		bookmark, err = entities.NewBookmark(req.Name, req.X, req.Y, scale)
	}
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	if err := board.AddBookmark(bookmark); err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	if err := h.repo.Save(r.Context(), board); err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	common.RespondJSON(w, http.StatusCreated, bookmark)
}

// DeleteBookmark handles DELETE /boards/{boardID}/bookmarks/{bookmarkID}
func (h *BoardHandler) DeleteBookmark(w http.ResponseWriter, r *http.Request) {
	board, ok := h.loadOwnedBoard(w, r)
	if !ok {
		return
	}

	bookmarkID := chi.URLParam(r, "bookmarkID")
	if err := board.RemoveBookmark(bookmarkID); err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	if err := h.repo.Save(r.Context(), board); err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, map[string]string{"id": bookmarkID})
}

// persistEvents stores the board's raised events for the outbox and
// clears them. The board save has already succeeded, so a failed event
// write is logged rather than surfaced.
func (h *BoardHandler) persistEvents(ctx context.Context, board *aggregates.Board) {
	raised := board.GetUncommittedEvents()
	board.MarkEventsAsCommitted()
	if h.events == nil || len(raised) == 0 {
		return
	}
	if err := h.events.SaveEvents(ctx, raised); err != nil {
		h.logger.Error("Failed to persist board events",
			zap.String("boardID", board.ID().String()),
			zap.Error(err),
		)
	}
}

// loadOwnedBoard fetches the board in the URL and checks ownership
func (h *BoardHandler) loadOwnedBoard(w http.ResponseWriter, r *http.Request) (*aggregates.Board, bool) {
	userID, ok := common.GetUserID(r.Context())
	if !ok {
		common.RespondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Missing user context")
		return nil, false
	}

	boardID, err := aggregates.ParseBoardID(chi.URLParam(r, "boardID"))
	if err != nil {
		common.RespondError(w, http.StatusBadRequest, "INVALID_ID", "Board id is not valid")
		return nil, false
	}

	board, err := h.repo.GetByID(r.Context(), boardID)
	if err != nil {
		h.errors.Handle(w, r, err)
		return nil, false
	}
	if board.UserID() != userID {
		common.RespondError(w, http.StatusForbidden, "FORBIDDEN", "Board belongs to another user")
		return nil, false
	}

	return board, true
}

func summarize(board *aggregates.Board) boardSummary {
	return boardSummary{
		ID:        board.ID().String(),
		Name:      board.Name(),
		ItemCount: len(board.Items()),
		CreatedAt: board.CreatedAt().Format(time.RFC3339),
		UpdatedAt: board.UpdatedAt().Format(time.RFC3339),
	}
}
