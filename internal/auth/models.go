// Package auth provides admin authentication for the Nimbus API.
package auth

// TokenResponse represents an issued access token.
type TokenResponse struct {
	// AccessToken is the JWT access token for API authentication.
	AccessToken string `json:"accessToken"`

	// TokenType is always "Bearer".
	TokenType string `json:"tokenType"`

	// ExpiresIn is the number of seconds until the access token expires.
	ExpiresIn int64 `json:"expiresIn"`

	Subject string `json:"subject"`
	Role    string `json:"role"`
}

// DevTokenRequest is the body of the development token endpoint.
type DevTokenRequest struct {
	Subject string `json:"subject,omitempty"`
}
