package enums

import "fmt"

// LoginKind identifies how a wallet connection was established. Embedded
// wallets resolve email/social logins to an address the provider manages.
type LoginKind string

const (
	LoginKindWallet   LoginKind = "wallet"
	LoginKindEmail    LoginKind = "email"
	LoginKindGoogle   LoginKind = "google"
	LoginKindApple    LoginKind = "apple"
	LoginKindFacebook LoginKind = "facebook"
)

var validLoginKinds = []LoginKind{
	LoginKindWallet,
	LoginKindEmail,
	LoginKindGoogle,
	LoginKindApple,
	LoginKindFacebook,
}

// String implements fmt.Stringer.
func (k LoginKind) String() string {
	return string(k)
}

// IsValid reports whether the value is a known LoginKind.
func (k LoginKind) IsValid() bool {
	for _, candidate := range validLoginKinds {
		if candidate == k {
			return true
		}
	}
	return false
}

// IsEmailBased reports whether the login kind carries a provider-extracted email.
func (k LoginKind) IsEmailBased() bool {
	switch k {
	case LoginKindEmail, LoginKindGoogle, LoginKindApple, LoginKindFacebook:
		return true
	}
	return false
}

// ParseLoginKind converts raw input into a LoginKind.
func ParseLoginKind(value string) (LoginKind, error) {
	for _, candidate := range validLoginKinds {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid login kind %q", value)
}
