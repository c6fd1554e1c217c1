package validation

import "strings"

type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type registerInput struct {
	Username string `json:"username" validate:"min=3,max=30"`
	Password string `json:"password" validate:"min=6"`
}

type loginInput struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

var authMessages = map[string]string{
	"username.min":      "Username must be at least 3 characters long",
	"username.max":      "Username must be less than 30 characters",
	"password.min":      "Password must be at least 6 characters long",
	"username.required": "Username is required",
	"password.required": "Password is required",
}

// Register trims the username before checking its length.
func Register(body []byte) (Credentials, error) {
	var in registerInput
	decoded, err := decode(body, &in)
	if err != nil {
		return Credentials{}, err
	}

	in.Username = strings.TrimSpace(in.Username)
	if err := check(&in, decoded, authMessages); err != nil {
		return Credentials{}, err
	}

	return Credentials{Username: in.Username, Password: in.Password}, nil
}

func Login(body []byte) (Credentials, error) {
	var in loginInput
	decoded, err := decode(body, &in)
	if err != nil {
		return Credentials{}, err
	}

	in.Username = strings.TrimSpace(in.Username)
	if err := check(&in, decoded, authMessages); err != nil {
		return Credentials{}, err
	}

	return Credentials{Username: in.Username, Password: in.Password}, nil
}
