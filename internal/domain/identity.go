package domain

import "strings"

// Identity is the registered user: email is the unique key, the display name
// and lab come from first-time registration. IsAdmin is never stored; it is
// derived from the configured administrator address at authentication time.
type Identity struct {
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	LabID       string `json:"lab_id,omitempty"`
}

type UserInfo struct {
	Email   string `json:"email"`
	Name    string `json:"name"`
	IsAdmin bool   `json:"is_admin"`
	LabID   string `json:"lab_id,omitempty"`
}

func (i *Identity) ToUserInfo(adminEmail string) UserInfo {
	return UserInfo{
		Email:   i.Email,
		Name:    i.DisplayName,
		IsAdmin: IsAdminEmail(i.Email, adminEmail),
		LabID:   i.LabID,
	}
}

// IsAdminEmail is the whole authorization model: a single fixed address.
func IsAdminEmail(email, adminEmail string) bool {
	return NormalizeEmail(email) == NormalizeEmail(adminEmail)
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
