package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/HouseOfSounds/VitaeEMR/internal/records"
	"github.com/HouseOfSounds/VitaeEMR/internal/session"
)

type CookieSettings struct {
	Name   string
	TTL    time.Duration
	Secure bool
}

func (c CookieSettings) issue(w http.ResponseWriter, id string) {
	http.SetCookie(w, &http.Cookie{
		Name:     c.Name,
		Value:    id,
		Path:     "/",
		MaxAge:   int(c.TTL.Seconds()),
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (c CookieSettings) expire(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     c.Name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// callerFrom returns the zero Caller when no session was resolved.
func callerFrom(r *http.Request) records.Caller {
	c, _ := r.Context().Value(callerKey).(records.Caller)
	return c
}

// requireSession resolves the session cookie into a Caller. The role comes
// from the stored user, so role changes take effect on the next request.
func requireSession(svc *records.Service, sessions session.Store, cookies CookieSettings) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(cookies.Name)
			if err != nil || cookie.Value == "" {
				writeError(w, http.StatusUnauthorized, "unauthorized", "login required")
				return
			}

			s, err := sessions.Get(r.Context(), cookie.Value)
			if err != nil {
				handleError(w, r, err)
				return
			}

			user, err := svc.GetUser(r.Context(), records.Caller{UserID: s.UserID, Role: s.Role}, s.UserID)
			if errors.Is(err, records.ErrUserNotFound) {
				_ = sessions.Delete(r.Context(), s.ID)
				cookies.expire(w)
				writeError(w, http.StatusUnauthorized, "unauthorized", "account no longer exists")
				return
			}
			if err != nil {
				handleError(w, r, err)
				return
			}

			caller := records.Caller{UserID: user.ID, Role: user.Role}
			ctx := context.WithValue(r.Context(), callerKey, caller)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func loginHandler(svc *records.Service, sessions session.Store, verifier *session.Verifier, cookies CookieSettings) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req LoginRequest
		if err := decode(r, &req); err != nil {
			handleError(w, r, err)
			return
		}

		profile, err := verifier.Verify(req.Assertion)
		if err != nil {
			zerolog.Ctx(r.Context()).Warn().Err(err).Msg("login rejected")
			writeError(w, http.StatusUnauthorized, "invalid_assertion", "identity assertion could not be verified")
			return
		}

		user, err := svc.UpsertUser(r.Context(), profile)
		if err != nil {
			handleError(w, r, err)
			return
		}

		s, err := sessions.Create(r.Context(), user.ID, user.Role)
		if err != nil {
			handleError(w, r, err)
			return
		}

		cookies.issue(w, s.ID)
		writeJSON(w, http.StatusOK, user)
	}
}

func logoutHandler(sessions session.Store, cookies CookieSettings) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if cookie, err := r.Cookie(cookies.Name); err == nil && cookie.Value != "" {
			if err := sessions.Delete(r.Context(), cookie.Value); err != nil {
				handleError(w, r, err)
				return
			}
		}
		cookies.expire(w)
		w.WriteHeader(http.StatusNoContent)
	}
}

func currentUserHandler(svc *records.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller := callerFrom(r)
		user, err := svc.GetUser(r.Context(), caller, caller.UserID)
		if err != nil {
			handleError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, user)
	}
}
