package user

// CreateUserDTO is the admin-facing creation payload. IsActive defaults to
// true when omitted.
type CreateUserDTO struct {
	Username string  `json:"username"`
	Email    *string `json:"email,omitempty"`
	Password string  `json:"password"`
	IsActive *bool   `json:"is_active,omitempty"`
}

// UpdateUserDTO applies partial updates; nil fields are left untouched.
type UpdateUserDTO struct {
	Username *string `json:"username,omitempty"`
	Email    *string `json:"email,omitempty"`
	Password *string `json:"password,omitempty"`
	IsActive *bool   `json:"is_active,omitempty"`
}

type ValidationError struct {
	Msg string
}

func (v ValidationError) Error() string { return v.Msg }

func (d CreateUserDTO) Validate() error {
	if d.Username == "" {
		return ValidationError{Msg: "username is required"}
	}
	if d.Password == "" {
		return ValidationError{Msg: "password is required"}
	}
	if len(d.Password) < 8 {
		return ValidationError{Msg: "password must be at least 8 characters"}
	}
	return nil
}

func (d UpdateUserDTO) Validate() error {
	if d.Username != nil && *d.Username == "" {
		return ValidationError{Msg: "username must not be empty"}
	}
	if d.Password != nil && len(*d.Password) < 8 {
		return ValidationError{Msg: "password must be at least 8 characters"}
	}
	return nil
}
