package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"codeclash/internal/api/middleware"
	"codeclash/internal/app/service"
	"codeclash/internal/common"
	"codeclash/internal/domain/model"

	"github.com/go-chi/chi/v5"
)

type SubmissionHandler struct {
	judgeService *service.JudgeService
}

func NewSubmissionHandler(js *service.JudgeService) *SubmissionHandler {
	return &SubmissionHandler{judgeService: js}
}

func (h *SubmissionHandler) RegisterRoutes(r chi.Router) {
	r.Use(middleware.Authenticator)
	r.Post("/{contestID}/questions/{questionID}/submissions", h.submit)
	r.Get("/{contestID}/submissions/mine", h.mySubmissions)
}

func (h *SubmissionHandler) submit(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Authorization required")
		return
	}

	var req service.SubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}

	submission, err := h.judgeService.Submit(r.Context(), userID,
		chi.URLParam(r, "contestID"), chi.URLParam(r, "questionID"), req)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}

	// A JudgingFailed verdict means the sandbox was unreachable; the attempt
	// is recorded but the caller should resubmit.
	if submission.Verdict == model.VerdictJudgingFailed {
		common.RespondWithJSON(w, http.StatusServiceUnavailable, submission)
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, submission)
}

func (h *SubmissionHandler) mySubmissions(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Authorization required")
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	subs, err := h.judgeService.ListMySubmissions(r.Context(), userID, chi.URLParam(r, "contestID"), limit, offset)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, subs)
}
