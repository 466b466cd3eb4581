package sdk

import (
	"os"
	"strings"
	"unicode"
)

// LoginCredentials is what a member types on the login form.
type LoginCredentials struct {
	CIF      string `json:"cif"`
	Password string `json:"password"`
}

// Validate checks the credential shape before any network call is made.
func (c LoginCredentials) Validate() error {
	cif := strings.TrimSpace(c.CIF)
	if cif == "" {
		return &ValidationError{Field: "cif", Reason: "is required"}
	}
	for _, r := range cif {
		if !unicode.IsDigit(r) {
			return &ValidationError{Field: "cif", Reason: "must contain digits only"}
		}
	}
	if len(cif) < 6 || len(cif) > 16 {
		return &ValidationError{Field: "cif", Reason: "must be 6 to 16 digits"}
	}
	if c.Password == "" {
		return &ValidationError{Field: "password", Reason: "is required"}
	}
	return nil
}

// EnvCreds are login credentials supplied through the environment.
type EnvCreds struct {
	CIF      string
	Password string
}

// CheckEnvCreds reads MALLPASS_CIF and MALLPASS_PASSWORD for non-interactive logins.
func CheckEnvCreds() (bool, EnvCreds) {
	creds := EnvCreds{
		CIF:      os.Getenv("MALLPASS_CIF"),
		Password: os.Getenv("MALLPASS_PASSWORD"),
	}
	return creds.CIF != "" && creds.Password != "", creds
}
