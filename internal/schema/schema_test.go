package schema

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func testSchema() *Schema {
	return New().
		Add("first_name", NewChar(false, true)).
		Add("last_name", NewChar(false, true)).
		Add("email", NewEmail(false, true)).
		Add("phone", NewPhone(false, true))
}

func TestValidate_AllFieldsChecked(t *testing.T) {
	// Every broken field is reported in one pass, in declaration order.
	values, errs := testSchema().Validate(map[string]any{
		"first_name": float64(1),
		"email":      "not-an-email",
		"phone":      "89175002040",
	})

	require.Len(t, errs, 3)
	require.Contains(t, errs[0], "Field: first_name.")
	require.Contains(t, errs[1], "Field: email.")
	require.Contains(t, errs[2], "Field: phone.")
	require.Empty(t, values)
}

func TestValidate_PartialValuesSurviveErrors(t *testing.T) {
	values, errs := testSchema().Validate(map[string]any{
		"first_name": "Elon",
		"email":      "not-an-email",
	})

	require.Len(t, errs, 1)
	require.True(t, values.Has("first_name"))
	require.False(t, values.Has("email"))
}

func TestValidate_RequiredAndNullable(t *testing.T) {
	s := New().
		Add("login", NewChar(true, true)).
		Add("method", NewChar(true, false))

	_, errs := s.Validate(map[string]any{"method": ""})
	require.Len(t, errs, 2)
	require.Equal(t, "Field: login. This field is required.", errs[0])
	require.Equal(t, "Field: method. Empty value is not allowed.", errs[1])

	values, errs := s.Validate(map[string]any{"login": "", "method": "online_score"})
	require.Empty(t, errs)
	require.False(t, values.Has("login"))
	require.Equal(t, "online_score", values.String("method"))
}

func TestValidate_UnknownKeysIgnored(t *testing.T) {
	values, errs := testSchema().Validate(map[string]any{
		"first_name": "Ada",
		"surprise":   42,
	})
	require.Empty(t, errs)
	require.Equal(t, "Ada", values.String("first_name"))
}

func TestValues_TypedGetters(t *testing.T) {
	s := New().
		Add("gender", NewGender(false, true)).
		Add("birthday", NewBirthday(false, true)).
		Add("client_ids", NewClientIDs(false, true)).
		Add("arguments", NewArguments(false, true))

	values, errs := s.Validate(map[string]any{
		"gender":     float64(0),
		"birthday":   "01.01.1990",
		"client_ids": []any{float64(7)},
		"arguments":  map[string]any{"k": "v"},
	})
	require.Empty(t, errs)

	g, ok := values.Int("gender")
	require.True(t, ok)
	require.Equal(t, GenderUnknown, g)

	_, ok = values.Time("birthday")
	require.True(t, ok)

	require.Equal(t, []int{7}, values.Ints("client_ids"))
	require.Equal(t, map[string]any{"k": "v"}, values.Map("arguments"))
	require.Nil(t, values.Map("missing"))
}
