package validate

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type joinBody struct {
	UserID     string `json:"userId" validate:"required"`
	InviteCode string `json:"inviteCode" validate:"required"`
	Note       string `json:"-" validate:"omitempty"`
}

func TestStructPassesValidInput(t *testing.T) {
	require.NoError(t, Struct(&joinBody{UserID: "u1", InviteCode: "abc"}))
}

func TestStructReportsWireFieldNames(t *testing.T) {
	err := Struct(&joinBody{})
	require.Error(t, err)
	require.Contains(t, err.Error(), "userId required")
	require.Contains(t, err.Error(), "inviteCode required")
	require.NotContains(t, err.Error(), "UserID")
}

func TestStructRejectsNonStructs(t *testing.T) {
	require.Error(t, Struct(nil))
	require.Error(t, Struct("not a struct"))
}
