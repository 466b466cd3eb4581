package twin

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/supermal/mallpass/pkg/sdk"
)

type contextKey string

const profileCtxKey contextKey = "member_profile"

// requireMember rejects requests without a valid bearer token with 401.
func (t *Twin) requireMember(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			writeError(w, http.StatusUnauthorized, "missing authorization header")
			return
		}
		raw, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || raw == "" {
			writeError(w, http.StatusUnauthorized, "invalid authorization format")
			return
		}

		profile, err := t.authenticate(raw)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid or expired token")
			return
		}

		ctx := context.WithValue(r.Context(), profileCtxKey, profile)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func profileFrom(r *http.Request) sdk.MemberProfile {
	return r.Context().Value(profileCtxKey).(sdk.MemberProfile)
}

// handleLogin handles POST /auth/login.
func (t *Twin) handleLogin(w http.ResponseWriter, r *http.Request) {
	var creds sdk.LoginCredentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := creds.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	profile, ok := t.checkPassword(creds.CIF, creds.Password)
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid CIF or password")
		return
	}

	token, err := t.IssueToken(creds.CIF)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to issue token")
		return
	}
	writeData(w, sdk.LoginResult{Token: token, Profile: profile})
}

// handleProfile handles GET /auth/profile.
func (t *Twin) handleProfile(w http.ResponseWriter, r *http.Request) {
	writeData(w, profileFrom(r))
}

func (t *Twin) handleStores(w http.ResponseWriter, _ *http.Request) {
	writeData(w, sdk.SeedStores())
}

// handleStore handles GET /stores/{id}.
func (t *Twin) handleStore(w http.ResponseWriter, r *http.Request) {
	store := sdk.SeedStore(chi.URLParam(r, "id"))
	if store == nil {
		writeError(w, http.StatusNotFound, "store not found")
		return
	}
	writeData(w, store)
}

func (t *Twin) handlePromotions(w http.ResponseWriter, _ *http.Request) {
	writeData(w, sdk.SeedPromotions())
}

func (t *Twin) handleEvents(w http.ResponseWriter, _ *http.Request) {
	writeData(w, sdk.SeedEvents())
}

// handleBalance mirrors tier progress into the balance so the two stay consistent.
func (t *Twin) handleBalance(w http.ResponseWriter, r *http.Request) {
	balance := sdk.SeedPointsBalance()
	if tp := profileFrom(r).TierProgress; tp != nil {
		balance.CurrentBalance = tp.Current
	}
	writeData(w, balance)
}

func (t *Twin) handleTransactions(w http.ResponseWriter, _ *http.Request) {
	writeData(w, sdk.SeedTransactions())
}

func (t *Twin) handleRewards(w http.ResponseWriter, _ *http.Request) {
	writeData(w, sdk.SeedRewards())
}

func (t *Twin) handleNotifications(w http.ResponseWriter, _ *http.Request) {
	writeData(w, sdk.SeedNotifications())
}
