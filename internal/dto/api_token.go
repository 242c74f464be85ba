package dto

import (
	"time"

	"github.com/finsight-app/finsight_backend/internal/core/domain"
)

// CreateAPITokenRequest defines the data needed to create an API token.
type CreateAPITokenRequest struct {
	Name      string `json:"name" binding:"required,max=100"`
	ExpiresIn *int64 `json:"expiresInSeconds"` // Optional, nil means no expiry
}

// APITokenResponse defines the data returned for an API token.
// The plaintext token appears only in the creation response.
type APITokenResponse struct {
	TokenID    string     `json:"tokenID"`
	Name       string     `json:"name"`
	Token      string     `json:"token,omitempty"`
	CreatedAt  time.Time  `json:"createdAt"`
	ExpiresAt  *time.Time `json:"expiresAt,omitempty"`
	LastUsedAt *time.Time `json:"lastUsedAt,omitempty"`
}

// ToAPITokenResponse converts a domain.APIToken to APITokenResponse DTO
func ToAPITokenResponse(token *domain.APIToken) APITokenResponse {
	return APITokenResponse{
		TokenID:    token.ID,
		Name:       token.Name,
		CreatedAt:  token.CreatedAt,
		ExpiresAt:  token.ExpiresAt,
		LastUsedAt: token.LastUsedAt,
	}
}

// ToListAPITokensResponse converts a slice of domain tokens to DTOs
func ToListAPITokensResponse(tokens []domain.APIToken) []APITokenResponse {
	res := make([]APITokenResponse, len(tokens))
	for i, token := range tokens {
		res[i] = ToAPITokenResponse(&token)
	}
	return res
}
