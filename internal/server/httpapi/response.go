package httpapi

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/dmitrijs2005/userreg/internal/common"
	"github.com/dmitrijs2005/userreg/internal/server/models"
)

// ErrorResponse is the body of every error reply.
type ErrorResponse struct {
	Message string `json:"mensaje"`
}

type PhoneRequest struct {
	Number      string `json:"number"`
	CityCode    string `json:"citycode"`
	CountryCode string `json:"countrycode"`
}

type RegisterRequest struct {
	Name     string         `json:"name"`
	Email    string         `json:"email"`
	Password string         `json:"password"`
	Phones   []PhoneRequest `json:"phones"`
}

type RegisterResponse struct {
	ID        string    `json:"id"`
	Created   time.Time `json:"created"`
	Modified  time.Time `json:"modified"`
	LastLogin time.Time `json:"last_login"`
	Token     string    `json:"token"`
	IsActive  bool      `json:"isactive"`
}

type PhoneResponse struct {
	Number      string `json:"number"`
	CityCode    string `json:"citycode"`
	CountryCode string `json:"countrycode"`
}

type UserResponse struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Email     string          `json:"email"`
	Phones    []PhoneResponse `json:"phones"`
	Created   time.Time       `json:"created"`
	Modified  time.Time       `json:"modified"`
	LastLogin time.Time       `json:"last_login"`
	IsActive  bool            `json:"isactive"`
}

func newRegisterResponse(u *models.User) RegisterResponse {
	return RegisterResponse{
		ID:        u.ID,
		Created:   u.Created,
		Modified:  u.Modified,
		LastLogin: u.LastLogin,
		Token:     u.Token,
		IsActive:  u.Active,
	}
}

func newUserResponse(u *models.User) UserResponse {
	phones := make([]PhoneResponse, 0, len(u.Phones))
	for _, p := range u.Phones {
		phones = append(phones, PhoneResponse{Number: p.Number, CityCode: p.CityCode, CountryCode: p.CountryCode})
	}
	return UserResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Phones:    phones,
		Created:   u.Created,
		Modified:  u.Modified,
		LastLogin: u.LastLogin,
		IsActive:  u.Active,
	}
}

func respondJSON(w http.ResponseWriter, data any, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, message string, statusCode int) {
	respondJSON(w, ErrorResponse{Message: common.Truncate(message, common.MaxPublicMessageLength)}, statusCode)
}
