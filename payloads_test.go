package session_test

import (
	"testing"

	session "github.com/farmvine/go-session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCredentials_Validate(t *testing.T) {
	tests := []struct {
		name    string
		creds   session.Credentials
		wantErr bool
	}{
		{
			name:  "valid credentials",
			creds: session.Credentials{Phone: "+233501234567", Password: "secret"},
		},
		{
			name:  "local number without prefix",
			creds: session.Credentials{Phone: "0501234567", Password: "secret"},
		},
		{
			name:    "missing phone",
			creds:   session.Credentials{Password: "secret"},
			wantErr: true,
		},
		{
			name:    "missing password",
			creds:   session.Credentials{Phone: "+233501234567"},
			wantErr: true,
		},
		{
			name:    "unparseable phone",
			creds:   session.Credentials{Phone: "123", Password: "secret"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.creds.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestRegisterPayload_Validate(t *testing.T) {
	valid := session.RegisterPayload{
		FullName: "Ama Mensah",
		Email:    "ama@farmvine.dev",
		Phone:    "+233501234567",
		Password: "longenough",
		Roles:    []session.Role{session.RoleFarmer},
	}

	t.Run("valid payload", func(t *testing.T) {
		assert.NoError(t, valid.Validate())
	})

	t.Run("roles must not be empty", func(t *testing.T) {
		payload := valid
		payload.Roles = nil
		assert.Error(t, payload.Validate())
	})

	t.Run("roles must be from the closed set", func(t *testing.T) {
		payload := valid
		payload.Roles = []session.Role{"admin"}
		assert.Error(t, payload.Validate())
	})

	t.Run("password must meet minimum length", func(t *testing.T) {
		payload := valid
		payload.Password = "short"
		assert.Error(t, payload.Validate())
	})

	t.Run("email is optional but checked when present", func(t *testing.T) {
		payload := valid
		payload.Email = ""
		assert.NoError(t, payload.Validate())

		payload.Email = "not-an-email"
		assert.Error(t, payload.Validate())
	})
}

func TestProfileUpdate_Validate(t *testing.T) {
	t.Run("empty update is valid", func(t *testing.T) {
		assert.NoError(t, session.ProfileUpdate{}.Validate())
	})

	t.Run("bad phone rejected", func(t *testing.T) {
		assert.Error(t, session.ProfileUpdate{Phone: "12"}.Validate())
	})
}

func TestAddRolePayload_Validate(t *testing.T) {
	assert.NoError(t, session.AddRolePayload{Role: session.RoleOfficer}.Validate())
	assert.Error(t, session.AddRolePayload{}.Validate())
	assert.Error(t, session.AddRolePayload{Role: "superuser"}.Validate())
}

func TestFormatValidationErrorToMap(t *testing.T) {
	t.Run("flattens field errors", func(t *testing.T) {
		err := session.Credentials{}.Validate()
		require.Error(t, err)

		fields := session.FormatValidationErrorToMap(err)
		assert.Contains(t, fields, "phone_number")
		assert.Contains(t, fields, "password")
	})

	t.Run("non-validation errors land under payload", func(t *testing.T) {
		fields := session.FormatValidationErrorToMap(assert.AnError)
		assert.Equal(t, []string{assert.AnError.Error()}, fields["payload"])
	})

	t.Run("nil is empty", func(t *testing.T) {
		assert.Empty(t, session.FormatValidationErrorToMap(nil))
	})
}

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected string
		wantErr  bool
	}{
		{"already E.164", "+233501234567", "+233501234567", false},
		{"local Ghana format", "0501234567", "+233501234567", false},
		{"spaces tolerated", "050 123 4567", "+233501234567", false},
		{"too short", "123", "", true},
		{"letters", "phone", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := session.NormalizePhone(tt.raw)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, session.IsValidationError(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}
