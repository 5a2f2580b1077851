package domain

import (
	"regexp"
	"strings"
	"time"
)

// khPhonePattern matches Cambodian phone numbers in local format
// (0 followed by 8 or 9 digits, e.g. 012345678) or international format
// (+855 followed by 8 or 9 digits without the leading zero).
var khPhonePattern = regexp.MustCompile(`^(\+855|0)[1-9]\d{7,8}$`)

// IsValidKhPhone reports whether phone is a well-formed Cambodian phone number.
// Spaces and dashes are stripped before matching.
func IsValidKhPhone(phone string) bool {
	cleaned := strings.NewReplacer(" ", "", "-", "").Replace(phone)
	return khPhonePattern.MatchString(cleaned)
}

// NormalizePhone strips spaces and dashes from a phone number.
func NormalizePhone(phone string) string {
	return strings.NewReplacer(" ", "", "-", "").Replace(phone)
}

// NormalizeName trims surrounding whitespace and collapses internal runs of
// whitespace to a single space.
func NormalizeName(name string) string {
	return strings.Join(strings.Fields(name), " ")
}

// CountryKH is the only supported country today.
const CountryKH = "KH"

// Provinces lists the Cambodian capital and provinces accepted as a shipping
// destination.
var Provinces = []string{
	"Phnom Penh",
	"Banteay Meanchey",
	"Battambang",
	"Kampong Cham",
	"Kampong Chhnang",
	"Kampong Speu",
	"Kampong Thom",
	"Kampot",
	"Kandal",
	"Kep",
	"Koh Kong",
	"Kratie",
	"Mondulkiri",
	"Oddar Meanchey",
	"Pailin",
	"Preah Sihanouk",
	"Preah Vihear",
	"Prey Veng",
	"Pursat",
	"Ratanakiri",
	"Siem Reap",
	"Stung Treng",
	"Svay Rieng",
	"Takeo",
	"Tboung Khmum",
}

// IsValidProvince checks if the province is a known administrative region.
func IsValidProvince(province string) bool {
	for _, p := range Provinces {
		if p == province {
			return true
		}
	}
	return false
}

// Address represents a customer shipping address.
type Address struct {
	ID            string    `json:"id"`
	UserID        string    `json:"user_id"`
	FirstName     string    `json:"first_name"`
	LastName      string    `json:"last_name"`
	Phone         string    `json:"phone"`
	StreetAddress string    `json:"street_address"`
	Apartment     string    `json:"apartment,omitempty"`
	Country       string    `json:"country"`
	Province      string    `json:"province"`
	IsDefault     bool      `json:"is_default"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// OwnerID returns the owning user's ID.
func (a *Address) OwnerID() string {
	return a.UserID
}
