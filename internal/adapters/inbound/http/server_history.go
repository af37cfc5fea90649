package http

import (
	"net/http"
	"strconv"
)

const defaultHistoryLimit = 50

// History returns the persisted conversation window of a user. The optional
// since parameter accepts absolute dates and relative tokens like
// "yesterday"; limit caps the number of returned messages.
func (api GatewayServer) History(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("user_id")

	limit, ok := parseLimit(r, defaultHistoryLimit)
	if !ok {
		respondError(w, ErrorResp{
			Error: Error{
				Code:    ErrorCode_BadRequest,
				Message: "invalid limit parameter",
			},
		})
		return
	}

	messages, hasMore, err := api.ListHistoryUseCase.Query(r.Context(), userID, limit, r.URL.Query().Get("since"))
	if err != nil {
		respondError(w, toError(err))
		return
	}

	resp := ChatHistoryResp{
		UserID:   userID,
		Messages: []ChatMessageResp{},
		HasMore:  hasMore,
	}
	for _, msg := range messages {
		resp.Messages = append(resp.Messages, toChatMessage(msg))
	}

	respondJSON(w, http.StatusOK, resp)
}

// SearchHistory ranks the user's persisted messages by semantic closeness to
// the q parameter, best match first.
func (api GatewayServer) SearchHistory(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("user_id")

	limit, ok := parseLimit(r, defaultHistoryLimit)
	if !ok {
		respondError(w, ErrorResp{
			Error: Error{
				Code:    ErrorCode_BadRequest,
				Message: "invalid limit parameter",
			},
		})
		return
	}

	messages, err := api.SearchHistoryUseCase.Query(r.Context(), userID, r.URL.Query().Get("q"), limit)
	if err != nil {
		respondError(w, toError(err))
		return
	}

	resp := ChatHistoryResp{
		UserID:   userID,
		Messages: []ChatMessageResp{},
	}
	for _, msg := range messages {
		resp.Messages = append(resp.Messages, toChatMessage(msg))
	}

	respondJSON(w, http.StatusOK, resp)
}

// NewConversation clears the stored conversation window of a user.
func (api GatewayServer) NewConversation(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("user_id")

	err := api.ResetConversationUseCase.Execute(r.Context(), userID)
	if err != nil {
		respondError(w, toError(err))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func parseLimit(r *http.Request, fallback int) (int, bool) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return fallback, true
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 1 {
		return 0, false
	}
	return limit, true
}
