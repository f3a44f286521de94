package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/spigell/linkedintel/internal/ai"
	"github.com/spigell/linkedintel/internal/lookup"
	"github.com/spigell/linkedintel/internal/salary"
)

const maxBodyBytes = 1 << 20

type salaryLookupRequest struct {
	Jobs    []lookup.Job `json:"jobs" validate:"required,min=1,dive"`
	ForceAI bool         `json:"forceAi"`
}

type salaryLookupResponse struct {
	Results []*salary.Result `json:"results"`
}

type matchRequest struct {
	ResumeText string `json:"resumeText" validate:"required"`
	JDText     string `json:"jdText" validate:"required"`
}

type connectRequest struct {
	Profile       *ai.Profile `json:"profile" validate:"required"`
	Intent        ai.Intent   `json:"intent" validate:"omitempty,oneof=referral connect business"`
	ResumeContext string      `json:"resumeContext"`
}

func (s *Server) handleSalaryLookup(w http.ResponseWriter, r *http.Request) {
	var req salaryLookupRequest
	if err := s.decode(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	if len(req.Jobs) > s.maxBatch {
		s.fail(w, r, &ErrValidation{Message: fmt.Sprintf("at most %d jobs per request", s.maxBatch)})
		return
	}

	if req.ForceAI {
		results, err := s.lookups.LookupBatchForceAI(r.Context(), req.Jobs)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		s.jsonResponse(w, http.StatusOK, salaryLookupResponse{Results: results})
		return
	}

	results := s.lookups.LookupBatch(r.Context(), req.Jobs)
	s.jsonResponse(w, http.StatusOK, salaryLookupResponse{Results: results})
}

func (s *Server) handleMatch(w http.ResponseWriter, r *http.Request) {
	var req matchRequest
	if err := s.decode(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}

	match, err := s.assistant.MatchResume(r.Context(), req.ResumeText, req.JDText)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, match)
}

func (s *Server) handleConnect(w http.ResponseWriter, r *http.Request) {
	var req connectRequest
	if err := s.decode(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}

	msg, err := s.assistant.Icebreaker(r.Context(), req.Profile, req.Intent, req.ResumeContext)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, msg)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"dataset":   s.dataset,
		"aiEnabled": s.lookups.AIEnabled(),
	})
}

// decode reads a JSON body into dst and validates it.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst any) error {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return &ErrValidation{Message: "request body is empty"}
		}
		return &ErrValidation{Message: "invalid JSON body: " + err.Error()}
	}

	if err := s.validate.Struct(dst); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			msgs := make([]string, 0, len(fieldErrs))
			for _, fe := range fieldErrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
			}
			return &ErrValidation{Message: strings.Join(msgs, "; ")}
		}
		return &ErrValidation{Message: err.Error()}
	}
	return nil
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := HTTPStatus(err)
	log := s.requestLogger(r)
	if status >= http.StatusInternalServerError {
		log.Error("request failed", zap.String("path", r.URL.Path), zap.Error(err))
	} else {
		log.Warn("request rejected", zap.String("path", r.URL.Path), zap.Int("status", status), zap.Error(err))
	}
	s.errorResponse(w, status, publicMessage(err))
}
