package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"huntbrief/internal/models"
	"huntbrief/internal/storage"
	"huntbrief/internal/workflows"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	enumspb "go.temporal.io/api/enums/v1"
	tclient "go.temporal.io/sdk/client"
	"go.uber.org/zap"
)

const maxDigestLimit = 50

func digestWorkflowID(digestID string) string {
	return "digest-" + digestID
}

func (s *Server) digestsReady() bool {
	return s.temporal != nil && s.digests != nil
}

func (s *Server) handleStartDigest(w http.ResponseWriter, r *http.Request) {
	if !s.digestsReady() {
		writeErr(w, http.StatusServiceUnavailable, fmt.Errorf("digests need temporal and storage"))
		return
	}
	var req struct {
		Limit    int  `json:"limit"`
		Detailed *int `json:"detailed"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeErr(w, http.StatusBadRequest, fmt.Errorf("invalid json: %w", err))
		return
	}
	if req.Limit < 0 || req.Limit > maxDigestLimit {
		writeErr(w, http.StatusBadRequest, fmt.Errorf("limit must be between 1 and %d", maxDigestLimit))
		return
	}
	if req.Limit == 0 {
		req.Limit = s.cfg.DigestLimit
	}
	detailed := s.cfg.DigestDetailed
	if req.Detailed != nil {
		detailed = *req.Detailed
	}
	if detailed < 0 {
		writeErr(w, http.StatusBadRequest, fmt.Errorf("detailed must not be negative"))
		return
	}

	digestID := uuid.NewString()
	if err := s.digests.Upsert(r.Context(), models.Digest{DigestID: digestID, Status: models.DigestRunning}); err != nil {
		writeErr(w, http.StatusInternalServerError, err)
		return
	}
	we, err := s.temporal.ExecuteWorkflow(r.Context(), tclient.StartWorkflowOptions{
		ID:                                       digestWorkflowID(digestID),
		TaskQueue:                                s.cfg.TemporalTaskQueue,
		WorkflowIDReusePolicy:                    enumspb.WORKFLOW_ID_REUSE_POLICY_REJECT_DUPLICATE,
		WorkflowExecutionErrorWhenAlreadyStarted: true,
	}, workflows.DailyDigestWorkflow, workflows.DigestInput{
		DigestID: digestID,
		Limit:    req.Limit,
		Detailed: detailed,
	})
	if err != nil {
		if uerr := s.digests.Upsert(r.Context(), models.Digest{DigestID: digestID, Status: models.DigestFailed}); uerr != nil {
			s.logger.Warn("mark digest failed", zap.String("digest_id", digestID), zap.Error(uerr))
		}
		writeErr(w, http.StatusBadGateway, fmt.Errorf("start digest workflow: %w", err))
		return
	}
	s.logger.Info("digest started", zap.String("digest_id", digestID), zap.String("workflow_id", we.GetID()))
	writeJSON(w, http.StatusAccepted, map[string]any{
		"digest_id":   digestID,
		"workflow_id": we.GetID(),
		"run_id":      we.GetRunID(),
	})
}

type digestResponse struct {
	models.Digest
	Progress *workflows.DigestProgress `json:"progress,omitempty"`
}

func (s *Server) handleGetDigest(w http.ResponseWriter, r *http.Request) {
	if !s.digestsReady() {
		writeErr(w, http.StatusServiceUnavailable, fmt.Errorf("digests need temporal and storage"))
		return
	}
	id := mux.Vars(r)["id"]
	if _, err := uuid.Parse(id); err != nil {
		writeErr(w, http.StatusBadRequest, fmt.Errorf("invalid digest id: %w", err))
		return
	}
	d, err := s.digests.Get(r.Context(), id)
	if errors.Is(err, storage.ErrNotFound) {
		writeErr(w, http.StatusNotFound, err)
		return
	}
	if err != nil {
		writeErr(w, http.StatusInternalServerError, err)
		return
	}

	out := digestResponse{Digest: d}
	if d.Status == models.DigestRunning {
		if val, err := s.temporal.QueryWorkflow(r.Context(), digestWorkflowID(id), "", workflows.QueryGetDigestProgress); err == nil {
			var prog workflows.DigestProgress
			if err := val.Get(&prog); err == nil {
				out.Progress = &prog
			}
		} else {
			s.logger.Debug("digest progress unavailable", zap.String("digest_id", id), zap.Error(err))
		}
	}
	writeJSON(w, http.StatusOK, out)
}
