// Package entity contains the core business objects of the project,
// each representing a unique, identifiable concept within the domain.
package entity

// User is the authenticated principal as reported by the profile endpoint.
type User struct {
	ID      int64  `json:"id"`      // Server-side identifier of the account.
	Email   string `json:"email"`   // Login identifier.
	Name    string `json:"name"`    // Display name, may be empty.
	Phone   string `json:"phone"`   // Contact phone, may be empty.
	Address string `json:"address"` // Default pickup address, may be empty.
}

// DisplayName returns the name when set, otherwise the email.
func (u *User) DisplayName() string {
	if u == nil {
		return ""
	}
	if u.Name != "" {
		return u.Name
	}

	return u.Email
}

// TokenPair is the credential pair issued by the token endpoint.
// Only Access is persisted.
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}
