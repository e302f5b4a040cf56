package session

import (
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
)

// Credentials is the login payload. Identity is phone-number based.
type Credentials struct {
	Phone    string `json:"phone_number"`
	Password string `json:"password"`
}

// Validate will run validation rules
func (c Credentials) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(
			&c.Phone,
			validation.Required,
			validation.By(validPhone),
		),
		validation.Field(
			&c.Password,
			validation.Required,
		),
	)
}

// RegisterPayload is the registration payload. At least one role must be
// present; anything beyond presence is enforced server-side.
type RegisterPayload struct {
	FullName        string         `json:"full_name"`
	Email           string         `json:"email,omitempty"`
	Phone           string         `json:"phone_number"`
	Password        string         `json:"password"`
	Roles           []Role         `json:"roles"`
	FarmDetail      *FarmDetail    `json:"farm_detail,omitempty"`
	OfficerDetail   *OfficerDetail `json:"officer_detail,omitempty"`
	DeliveryAddress string         `json:"delivery_address,omitempty"`
}

// Validate will validate the payload
func (r RegisterPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.FullName, validation.Required, validation.Length(1, 200)),
		validation.Field(&r.Email, is.Email),
		validation.Field(&r.Phone, validation.Required, validation.By(validPhone)),
		validation.Field(&r.Password, validation.Required, validation.Length(8, 100)),
		validation.Field(&r.Roles, validation.Required, validation.By(validRoles)),
	)
}

// ProfileUpdate carries the mutable profile fields. Zero values are
// omitted from the request body so partial updates stay partial.
type ProfileUpdate struct {
	FullName        string         `json:"full_name,omitempty"`
	Email           string         `json:"email,omitempty"`
	Phone           string         `json:"phone_number,omitempty"`
	ProfileImageURL string         `json:"profile_image_url,omitempty"`
	Region          string         `json:"region,omitempty"`
	FarmDetail      *FarmDetail    `json:"farm_detail,omitempty"`
	OfficerDetail   *OfficerDetail `json:"officer_detail,omitempty"`
	DeliveryAddress string         `json:"delivery_address,omitempty"`
}

// Validate will validate the payload
func (p ProfileUpdate) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.FullName, validation.Length(1, 200)),
		validation.Field(&p.Email, is.Email),
		validation.Field(&p.Phone, validation.By(validPhone)),
	)
}

// AddRolePayload extends the user's role set. RoleData carries the
// role-specific attributes the backend expects alongside the new role
// (farm details for farmer, staff details for officer).
type AddRolePayload struct {
	Role     Role           `json:"role"`
	RoleData map[string]any `json:"role_data,omitempty"`
}

// Validate will validate the payload
func (a AddRolePayload) Validate() error {
	return validation.ValidateStruct(&a,
		validation.Field(&a.Role, validation.Required, validation.By(validRole)),
	)
}

func validRole(value any) error {
	var raw string
	switch v := value.(type) {
	case Role:
		raw = string(v)
	case string:
		raw = v
	}
	if raw == "" {
		return nil
	}
	if _, ok := ParseRole(raw); !ok {
		return ErrInvalidRole
	}
	return nil
}

func validRoles(value any) error {
	roles, _ := value.([]Role)
	for _, r := range roles {
		if !IsValidRole(r) {
			return ErrInvalidRole
		}
	}
	return nil
}

// FormatValidationErrorToMap flattens ozzo validation output into a
// field-keyed error map suitable for the taxonomy's ValidationError.
func FormatValidationErrorToMap(err error) map[string][]string {
	fields := map[string][]string{}
	if err == nil {
		return fields
	}

	verrs, ok := err.(validation.Errors)
	if !ok {
		fields["payload"] = []string{err.Error()}
		return fields
	}

	for field, ferr := range verrs {
		if ferr == nil {
			continue
		}
		fields[field] = append(fields[field], ferr.Error())
	}
	return fields
}
