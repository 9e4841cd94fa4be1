package permission

type CreatePermissionDTO struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

type UpdatePermissionDTO struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
}

type ValidationError struct {
	Msg string
}

func (v ValidationError) Error() string { return v.Msg }

func (d CreatePermissionDTO) Validate() error {
	if d.Name == "" {
		return ValidationError{Msg: "name is required"}
	}
	return nil
}

func (d UpdatePermissionDTO) Validate() error {
	if d.Name != nil && *d.Name == "" {
		return ValidationError{Msg: "name must not be empty"}
	}
	return nil
}
