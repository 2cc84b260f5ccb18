package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"deliverynav/internal/core"
)

// guestProfile is the wire shape of a guest identity.
type guestProfile struct {
	GuestID  string `json:"guest_id"`
	DeviceID string `json:"device_id,omitempty"`
	Nickname string `json:"nickname"`
}

// handleGuestInit provisions a guest identity. The device token comes from
// the header, the body, or gets minted server-side so clients without stable
// storage still receive a usable id. The returned device_id is what the
// client must present on subsequent requests.
func (s *Server) handleGuestInit(w http.ResponseWriter, r *http.Request) {
	if resp := RequireMethod(r, http.MethodPost); resp != nil {
		resp.Write(w)
		return
	}

	raw := DeviceToken(r)
	if raw == "" {
		parser := NewRequestBodyParser(r)
		if err := parser.Parse(); err == nil {
			raw = parser.Get("device_id")
		}
	}
	if raw == "" {
		raw = uuid.NewString()
		slog.InfoContext(r.Context(), "Minted device id for guest init")
	}

	ident, err := s.identities.Resolve(r.Context(), raw)
	if err != nil {
		slog.ErrorContext(r.Context(), "Guest init failed", "error", err)
		InternalServerError("guest init failed").Write(w)
		return
	}

	NewJSONResponse().Status(http.StatusCreated).Body(guestProfile{
		GuestID:  ident.Token,
		DeviceID: raw,
		Nickname: ident.DisplayName,
	}).Write(w)
}

// handleGuestProfile reads (GET) or updates (POST) the guest nickname.
func (s *Server) handleGuestProfile(w http.ResponseWriter, r *http.Request) {
	if resp := RequireMethod(r, http.MethodGet, http.MethodPost); resp != nil {
		resp.Write(w)
		return
	}

	ident, err := s.resolveIdentity(r)
	if err != nil {
		slog.ErrorContext(r.Context(), "Identity resolution failed", "error", err)
		InternalServerError("identity resolution failed").Write(w)
		return
	}

	if r.Method == http.MethodGet {
		NewJSONResponse().Body(guestProfile{
			GuestID:  ident.Token,
			Nickname: ident.DisplayName,
		}).Write(w)
		return
	}

	parser := NewRequestBodyParser(r)
	if err := parser.Parse(); err != nil {
		BadRequestError("invalid request body").Write(w)
		return
	}
	nickname := parser.Get("nickname")

	if err := s.identities.SetNickname(r.Context(), ident.ID, nickname); err != nil {
		if errors.Is(err, core.ErrDisplayNameLong) {
			UnprocessableEntityError("nickname too long").Write(w)
			return
		}
		slog.ErrorContext(r.Context(), "Nickname update failed", "error", err, "identity_id", ident.ID)
		InternalServerError("nickname update failed").Write(w)
		return
	}

	NewJSONResponse().Body(guestProfile{
		GuestID:  ident.Token,
		Nickname: nickname,
	}).Write(w)
}
