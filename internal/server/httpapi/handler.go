package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/dmitrijs2005/userreg/internal/common"
	"github.com/dmitrijs2005/userreg/internal/server/models"
	"github.com/dmitrijs2005/userreg/internal/server/services"
)

// MaxBodyBytes limits the size of a registration request body.
const MaxBodyBytes = 1 << 20

// BadRequestMessage answers bodies that are not valid registration JSON.
const BadRequestMessage = "Solicitud inválida"

// MaxNameLength matches the users.name column.
const MaxNameLength = 50

const (
	NameRequiredMessage = "El nombre es obligatorio"
	NameTooLongMessage  = "El nombre no puede superar 50 caracteres"
)

type userSvc interface {
	Register(ctx context.Context, req services.RegisterRequest) (*models.User, error)
	Authenticate(ctx context.Context, token string) (*models.User, error)
}

type Handler struct {
	users userSvc
}

func NewHandler(users userSvc) *Handler {
	return &Handler{users: users}
}

// Register handles POST /users.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest

	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	if err := dec.Decode(&req); err != nil {
		respondError(w, BadRequestMessage, http.StatusBadRequest)
		return
	}

	switch {
	case strings.TrimSpace(req.Name) == "":
		respondError(w, NameRequiredMessage, http.StatusBadRequest)
		return
	case utf8.RuneCountInString(req.Name) > MaxNameLength:
		respondError(w, NameTooLongMessage, http.StatusBadRequest)
		return
	}

	in := services.RegisterRequest{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Phones:   make([]services.PhoneInput, 0, len(req.Phones)),
	}
	for _, p := range req.Phones {
		in.Phones = append(in.Phones, services.PhoneInput{Number: p.Number, CityCode: p.CityCode, CountryCode: p.CountryCode})
	}

	user, err := h.users.Register(r.Context(), in)
	if err != nil {
		h.respondRegistrationError(w, r, err)
		return
	}

	respondJSON(w, newRegisterResponse(user), http.StatusCreated)
}

func (h *Handler) respondRegistrationError(w http.ResponseWriter, r *http.Request, err error) {
	var re *common.RegistrationError
	if !errors.As(err, &re) {
		LoggerFromContext(r.Context()).Error(r.Context(), "unexpected registration error", "error", err)
		respondError(w, common.InternalErrorMessage, http.StatusInternalServerError)
		return
	}

	status := http.StatusInternalServerError
	switch {
	case errors.Is(re.Kind, common.ErrInvalidEmailFormat), errors.Is(re.Kind, common.ErrInvalidPasswordFormat):
		status = http.StatusBadRequest
	case errors.Is(re.Kind, common.ErrEmailAlreadyExists):
		status = http.StatusConflict
	default:
		LoggerFromContext(r.Context()).Error(r.Context(), "registration failed", "code", re.Code(), "error", err)
	}

	respondError(w, re.PublicMessage(), status)
}

// Me handles GET /users/me.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		respondError(w, MissingTokenMessage, http.StatusUnauthorized)
		return
	}
	respondJSON(w, newUserResponse(user), http.StatusOK)
}

// Health handles GET /health.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, map[string]string{"status": "ok"}, http.StatusOK)
}
