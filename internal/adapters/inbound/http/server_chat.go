package http

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/lexrag/aigateway/internal/domain"
)

// Chat runs a full orchestration cycle and returns the final result once.
func (api GatewayServer) Chat(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("user_id")

	req := ChatRequest{}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, ErrorResp{
			Error: Error{
				Code:    ErrorCode_BadRequest,
				Message: "invalid request body",
			},
		})
		return
	}
	if req.Model == "" {
		req.Model = api.DefaultModel
	}

	result, err := api.ProcessQueryUseCase.Execute(r.Context(), userID, req.Message, req.Model, nil)
	if err != nil {
		respondError(w, toError(err))
		return
	}

	respondJSON(w, http.StatusOK, toChatResponse(result))
}

// StreamChat runs a full orchestration cycle, streaming each progress event
// as an SSE data frame. The last frame carries a done or error status.
func (api GatewayServer) StreamChat(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("user_id")

	req := ChatRequest{}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, ErrorResp{
			Error: Error{
				Code:    ErrorCode_BadRequest,
				Message: "invalid request body",
			},
		})
		return
	}
	if req.Model == "" {
		req.Model = api.DefaultModel
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		respondError(w, ErrorResp{
			Error: Error{
				Code:    ErrorCode_InternalError,
				Message: "streaming not supported",
			},
		})
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Content-Type-Options", "nosniff")

	writeFrame := func(frame ProgressFrame) error {
		frameBytes, err := json.Marshal(frame)
		if err != nil {
			return err
		}

		_, err = fmt.Fprintf(w, "data: %s\n\n", string(frameBytes))
		if err != nil {
			return err
		}
		flusher.Flush()
		return nil
	}

	framesSent := 0
	_, err := api.ProcessQueryUseCase.Execute(r.Context(), userID, req.Message, req.Model, func(event domain.ProgressEvent) error {
		framesSent++
		return writeFrame(ProgressFrame{
			Status:  string(event.Status),
			Message: event.Message,
			Data:    event.Data,
		})
	})
	if err != nil {
		api.Logger.Printf("StreamChat: run ended with error: %v", err)
		if framesSent == 0 {
			// The run failed before the progress emitter took over; close
			// the stream with a terminal error frame ourselves.
			_ = writeFrame(ProgressFrame{
				Status:  string(domain.ProgressStatus_Error),
				Message: toError(err).Error.Message,
			})
		}
	}
}
