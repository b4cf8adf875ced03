package vo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateField(t *testing.T) {
	cases := []struct {
		field, value string
		want         FieldErrorKind
	}{
		{"customer.name", "José Núñez", ""},
		{"customer.name", "", FieldRequired},
		{"customer.name", "R2D2", FieldBadCharset},
		{"customer.name", "A", FieldTooShort},
		{"customer.phone", "12345678", ""},
		{"customer.phone", "1234-5678", FieldNotNumeric},
		{"customer.phone", "1234567", FieldTooShort},
		{"customer.address", "Av. Siempre Viva 742", ""},
		{"customer.address", "short", FieldTooShort},
		{"product.price", "19.90", ""},
		{"product.price", "0", FieldOutOfRange},
		{"product.price", "abc", FieldNotNumeric},
		{"category.name", "Lamps", ""},
		{"nope.field", "x", FieldUnknownRule},
	}
	for _, tc := range cases {
		fe := ValidateField(tc.field, tc.value)
		if tc.want == "" {
			assert.Nilf(t, fe, "%s=%q", tc.field, tc.value)
			continue
		}
		require.NotNilf(t, fe, "%s=%q", tc.field, tc.value)
		assert.Equal(t, tc.want, fe.Kind, "%s=%q", tc.field, tc.value)
	}
}

func TestValidateFieldsSorted(t *testing.T) {
	errs := ValidateFields(map[string]string{
		"product.price": "-1",
		"product.name":  "",
		"category.name": "Sofas",
	})
	require.Len(t, errs, 2)
	assert.Equal(t, "product.name", errs[0].Field)
	assert.Equal(t, FieldRequired, errs[0].Kind)
	assert.Equal(t, "product.price", errs[1].Field)
	assert.Equal(t, FieldOutOfRange, errs[1].Kind)
}
