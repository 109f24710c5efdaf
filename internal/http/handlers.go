package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/pviana/futmatch/internal/events"
	"github.com/pviana/futmatch/internal/ledger"
	"github.com/pviana/futmatch/internal/match"
	"github.com/pviana/futmatch/internal/profile"
)

func (s *Server) HealthCheckHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Debug("Received health check request")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "OK!")
	}
}

func (s *Server) ClearStoreHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Info("Received request to clear all stores")
		s.Matches.Clear()
		s.Ledger.Clear()
		s.Profiles.Clear()
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "Store cleared!")
		log.Info("Store cleared successfully")
	}
}

// timed observes the handler duration under the given operation label.
func (s *Server) timed(op string, h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		h(w, r)
		s.Metrics.ObserveRPCDuration(op, time.Since(start).Seconds())
	}
}

func (s *Server) CreateMatchHandler() http.HandlerFunc {
	return s.timed("create-match", func(w http.ResponseWriter, r *http.Request) {
		userID := userIDFromContext(r)

		var nm match.NewMatch
		if err := json.NewDecoder(r.Body).Decode(&nm); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}

		created, err := s.Matches.CreateMatchWithTokens(userID, nm)
		if errors.Is(err, match.ErrInsufficientFunds) {
			respondJSON(w, http.StatusOK, rpcResponse{
				Status: match.InsufficientFundsCode,
				Hint:   "você precisa de mais MatchCoins",
			})
			return
		}
		if err != nil {
			log.Error("Failed to create match", "userID", userID, "error", err)
			http.Error(w, "Failed to create match", http.StatusInternalServerError)
			return
		}

		s.Metrics.IncMatchesCreated()
		s.Metrics.AddTokensSpent(match.CreateCost)
		s.publishMatchEvent(events.MatchEvent{
			Kind:    events.EventInsert,
			MatchID: created.ID,
			Match:   created,
		})

		log.Info("Match created", "matchID", created.ID, "userID", userID, "private", created.IsPrivate)
		respondJSON(w, http.StatusOK, rpcResponse{Status: "OK", Match: created})
	})
}

func (s *Server) JoinMatchHandler() http.HandlerFunc {
	return s.timed("join-match", func(w http.ResponseWriter, r *http.Request) {
		userID := userIDFromContext(r)

		var req matchIDRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}

		status, err := s.Matches.JoinMatchWithToken(userID, req.MatchID)
		if err != nil {
			log.Error("Failed to join match", "matchID", req.MatchID, "userID", userID, "error", err)
			http.Error(w, "Failed to join match", http.StatusInternalServerError)
			return
		}

		if status == match.JoinOK {
			s.Metrics.IncMatchesJoined()
			s.Metrics.AddTokensSpent(match.JoinCost)
			s.publishParticipantEvent(events.ParticipantEvent{
				Kind:    events.EventInsert,
				MatchID: req.MatchID,
				UserID:  userID,
			})
		}

		log.Info("Join attempt resolved", "matchID", req.MatchID, "userID", userID, "status", status)
		respondJSON(w, http.StatusOK, rpcResponse{Status: string(status)})
	})
}

func (s *Server) LeaveMatchHandler() http.HandlerFunc {
	return s.timed("leave-match", func(w http.ResponseWriter, r *http.Request) {
		userID := userIDFromContext(r)

		var req matchIDRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}

		status, err := s.Matches.LeaveMatchWithRefund(userID, req.MatchID)
		if err != nil {
			log.Error("Failed to leave match", "matchID", req.MatchID, "userID", userID, "error", err)
			http.Error(w, "Failed to leave match", http.StatusInternalServerError)
			return
		}

		if status == match.LeaveOK {
			s.Metrics.IncMatchesLeft()
			s.Metrics.AddTokensGranted(match.JoinCost)
			s.publishParticipantEvent(events.ParticipantEvent{
				Kind:    events.EventDelete,
				MatchID: req.MatchID,
				UserID:  userID,
			})
		}

		log.Info("Leave attempt resolved", "matchID", req.MatchID, "userID", userID, "status", status)
		respondJSON(w, http.StatusOK, rpcResponse{Status: string(status)})
	})
}

func (s *Server) CancelMatchHandler() http.HandlerFunc {
	return s.timed("cancel-match", func(w http.ResponseWriter, r *http.Request) {
		userID := userIDFromContext(r)

		var req cancelRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}

		if err := s.Matches.CancelMatch(req.MatchID, userID, req.Reason); err != nil {
			s.respondCreatorError(w, err, req.MatchID, userID, "cancel")
			return
		}

		s.Metrics.IncMatchesCancelled()
		cancelled := match.StatusCancelled
		s.publishMatchEvent(events.MatchEvent{
			Kind:    events.EventUpdate,
			MatchID: req.MatchID,
			Patch: &match.MatchPatch{
				Status:             &cancelled,
				CancellationReason: &req.Reason,
			},
		})

		log.Info("Match cancelled", "matchID", req.MatchID, "userID", userID, "reason", req.Reason)
		respondJSON(w, http.StatusOK, rpcResponse{Status: "OK"})
	})
}

func (s *Server) UpdateMatchHandler() http.HandlerFunc {
	return s.timed("update-match", func(w http.ResponseWriter, r *http.Request) {
		userID := userIDFromContext(r)

		var req updateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}

		updated, err := s.Matches.UpdateMatch(req.MatchID, userID, req.Patch)
		if err != nil {
			s.respondCreatorError(w, err, req.MatchID, userID, "update")
			return
		}

		s.publishMatchEvent(events.MatchEvent{
			Kind:    events.EventUpdate,
			MatchID: req.MatchID,
			Patch:   &req.Patch,
		})

		log.Info("Match updated", "matchID", req.MatchID, "userID", userID)
		respondJSON(w, http.StatusOK, rpcResponse{Status: "OK", Match: updated})
	})
}

func (s *Server) ConfirmMatchHandler() http.HandlerFunc {
	return s.timed("confirm-match", func(w http.ResponseWriter, r *http.Request) {
		userID := userIDFromContext(r)

		var req matchIDRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}

		if err := s.Matches.ConfirmMatch(req.MatchID, userID); err != nil {
			s.respondCreatorError(w, err, req.MatchID, userID, "confirm")
			return
		}

		confirmed := match.StatusConfirmed
		s.publishMatchEvent(events.MatchEvent{
			Kind:    events.EventUpdate,
			MatchID: req.MatchID,
			Patch:   &match.MatchPatch{Status: &confirmed},
		})

		log.Info("Match confirmed", "matchID", req.MatchID, "userID", userID)
		respondJSON(w, http.StatusOK, rpcResponse{Status: "OK"})
	})
}

func (s *Server) BoostMatchHandler() http.HandlerFunc {
	return s.timed("boost-match", func(w http.ResponseWriter, r *http.Request) {
		userID := userIDFromContext(r)

		var req matchIDRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}

		boosted, err := s.Matches.BoostMatch(req.MatchID, userID)
		if errors.Is(err, match.ErrInsufficientFunds) {
			respondJSON(w, http.StatusOK, rpcResponse{
				Status: match.InsufficientFundsCode,
				Hint:   "você precisa de mais MatchCoins",
			})
			return
		}
		if err != nil {
			s.respondCreatorError(w, err, req.MatchID, userID, "boost")
			return
		}

		s.Metrics.IncMatchesBoosted()
		s.Metrics.AddTokensSpent(match.BoostCost)
		s.publishMatchEvent(events.MatchEvent{
			Kind:    events.EventUpdate,
			MatchID: req.MatchID,
			Patch: &match.MatchPatch{
				IsBoosted:  &boosted.IsBoosted,
				BoostUntil: boosted.BoostUntil,
			},
		})

		log.Info("Match boosted", "matchID", req.MatchID, "userID", userID, "until", boosted.BoostUntil)
		respondJSON(w, http.StatusOK, rpcResponse{Status: "OK", Match: boosted})
	})
}

func (s *Server) AddTokensHandler() http.HandlerFunc {
	return s.timed("add-tokens", func(w http.ResponseWriter, r *http.Request) {
		userID := userIDFromContext(r)

		var req tokensRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		if req.Amount <= 0 {
			http.Error(w, "Amount must be positive", http.StatusBadRequest)
			return
		}

		if err := s.Ledger.AddTokens(userID, req.Amount); err != nil {
			log.Error("Failed to add tokens", "userID", userID, "amount", req.Amount, "error", err)
			http.Error(w, "Failed to add tokens", http.StatusInternalServerError)
			return
		}
		s.Metrics.AddTokensGranted(req.Amount)

		balance, err := s.Ledger.GetBalance(userID)
		if err != nil {
			log.Error("Failed to read balance after credit", "userID", userID, "error", err)
			http.Error(w, "Failed to read balance", http.StatusInternalServerError)
			return
		}

		log.Info("Tokens added", "userID", userID, "amount", req.Amount, "balance", balance)
		respondJSON(w, http.StatusOK, balanceResponse{Status: "OK", Balance: balance})
	})
}

func (s *Server) SpendTokensHandler() http.HandlerFunc {
	return s.timed("spend-tokens", func(w http.ResponseWriter, r *http.Request) {
		userID := userIDFromContext(r)

		var req tokensRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		if req.Amount <= 0 {
			http.Error(w, "Amount must be positive", http.StatusBadRequest)
			return
		}

		result, err := s.Ledger.SpendTokens(userID, req.Amount)
		if err != nil {
			log.Error("Failed to spend tokens", "userID", userID, "amount", req.Amount, "error", err)
			http.Error(w, "Failed to spend tokens", http.StatusInternalServerError)
			return
		}
		if result == ledger.SpendOK {
			s.Metrics.AddTokensSpent(req.Amount)
		}

		balance, err := s.Ledger.GetBalance(userID)
		if err != nil {
			log.Error("Failed to read balance after debit", "userID", userID, "error", err)
			http.Error(w, "Failed to read balance", http.StatusInternalServerError)
			return
		}

		log.Info("Spend attempt resolved", "userID", userID, "amount", req.Amount, "result", result)
		respondJSON(w, http.StatusOK, balanceResponse{Status: string(result), Balance: balance})
	})
}

// FinalizeExpiredHandler runs the sweep that moves past-date matches to
// Finalizada. It is meant to be hit by an external scheduler; nothing in the
// server triggers it on its own.
func (s *Server) FinalizeExpiredHandler() http.HandlerFunc {
	return s.timed("finalize-expired", func(w http.ResponseWriter, r *http.Request) {
		s.Metrics.IncSweepRuns()

		n, err := s.Matches.FinalizeExpiredMatches(time.Now())
		if err != nil {
			log.Error("Finalize sweep failed", "error", err)
			http.Error(w, "Failed to finalize matches", http.StatusInternalServerError)
			return
		}
		s.Metrics.AddMatchesFinalized(int(n))

		log.Info("Finalize sweep completed", "finalized", n)
		respondJSON(w, http.StatusOK, finalizeResponse{Status: "OK", Finalized: n})
	})
}

func (s *Server) ListMatchesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		matches, err := s.Matches.GetAllMatches()
		if err != nil {
			log.Error("Failed to list matches", "error", err)
			http.Error(w, "Failed to list matches", http.StatusInternalServerError)
			return
		}
		respondJSON(w, http.StatusOK, matches)
	}
}

func (s *Server) ListParticipantsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		matchID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
		if err != nil {
			http.Error(w, "Invalid match id", http.StatusBadRequest)
			return
		}

		participants, err := s.Matches.GetParticipants(matchID)
		if err != nil {
			log.Error("Failed to list participants", "matchID", matchID, "error", err)
			http.Error(w, "Failed to list participants", http.StatusInternalServerError)
			return
		}
		respondJSON(w, http.StatusOK, participants)
	}
}

func (s *Server) RankingsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rankings, err := s.Profiles.GetRankings()
		if err != nil {
			log.Error("Failed to compute rankings", "error", err)
			http.Error(w, "Failed to compute rankings", http.StatusInternalServerError)
			return
		}
		respondJSON(w, http.StatusOK, rankings)
	}
}

// CreateProfileHandler registers a profile and seeds its starting balance.
// Upserting an existing profile never re-grants the balance.
func (s *Server) CreateProfileHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var p profile.Profile
		if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		if p.ID == "" {
			http.Error(w, "Profile id is required", http.StatusBadRequest)
			return
		}

		if err := s.Profiles.UpsertProfile(p); err != nil {
			log.Error("Failed to upsert profile", "userID", p.ID, "error", err)
			http.Error(w, "Failed to save profile", http.StatusInternalServerError)
			return
		}
		if err := s.Ledger.GrantInitialBalance(p.ID); err != nil {
			log.Error("Failed to grant initial balance", "userID", p.ID, "error", err)
			http.Error(w, "Failed to grant initial balance", http.StatusInternalServerError)
			return
		}

		log.Info("Profile saved", "userID", p.ID)
		respondJSON(w, http.StatusCreated, rpcResponse{Status: "OK"})
	}
}

func (s *Server) GetProfileHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.PathValue("id")

		p, err := s.Profiles.GetProfile(userID)
		if errors.Is(err, profile.ErrNotFound) {
			http.Error(w, "Profile not found", http.StatusNotFound)
			return
		}
		if err != nil {
			log.Error("Failed to load profile", "userID", userID, "error", err)
			http.Error(w, "Failed to load profile", http.StatusInternalServerError)
			return
		}
		respondJSON(w, http.StatusOK, p)
	}
}

func (s *Server) JoinedMatchesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := userIDFromContext(r)

		ids, err := s.Matches.GetParticipantMatchIDs(userID)
		if err != nil {
			log.Error("Failed to list joined matches", "userID", userID, "error", err)
			http.Error(w, "Failed to list joined matches", http.StatusInternalServerError)
			return
		}
		respondJSON(w, http.StatusOK, joinedResponse{MatchIDs: ids})
	}
}

func (s *Server) BalanceHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := userIDFromContext(r)

		balance, err := s.Ledger.GetBalance(userID)
		if err != nil {
			log.Error("Failed to read balance", "userID", userID, "error", err)
			http.Error(w, "Failed to read balance", http.StatusInternalServerError)
			return
		}
		respondJSON(w, http.StatusOK, balanceResponse{Status: "OK", Balance: balance})
	}
}

// respondCreatorError maps the creator-gated store errors onto HTTP status
// codes: unknown match is 404, wrong caller is 403, anything else is a 500.
func (s *Server) respondCreatorError(w http.ResponseWriter, err error, matchID int64, userID, op string) {
	switch {
	case errors.Is(err, match.ErrNotFound):
		respondJSON(w, http.StatusNotFound, rpcResponse{Error: "match not found"})
	case errors.Is(err, match.ErrNotCreator):
		log.Warn("Rejected non-creator operation", "op", op, "matchID", matchID, "userID", userID)
		respondJSON(w, http.StatusForbidden, rpcResponse{Error: "only the creator may do this"})
	default:
		log.Error("Operation failed", "op", op, "matchID", matchID, "userID", userID, "error", err)
		http.Error(w, "Operation failed", http.StatusInternalServerError)
	}
}

// publishMatchEvent publishes best-effort: a failed publish is logged and the
// request still succeeds, consumers catch up on their next refresh.
func (s *Server) publishMatchEvent(event events.MatchEvent) {
	if err := s.Publisher.PublishMatchEvent(event); err != nil {
		log.Error("Failed to publish match event", "kind", event.Kind, "matchID", event.MatchID, "error", err)
		return
	}
	s.Metrics.IncEventsPublished()
}

func (s *Server) publishParticipantEvent(event events.ParticipantEvent) {
	if err := s.Publisher.PublishParticipantEvent(event); err != nil {
		log.Error("Failed to publish participant event", "kind", event.Kind, "matchID", event.MatchID, "error", err)
		return
	}
	s.Metrics.IncEventsPublished()
}

func respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Error("Failed to encode response", "error", err)
	}
}
