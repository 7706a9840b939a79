package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRFCRegex(t *testing.T) {
	valid := []string{
		"GODE561231GR8", // persona física
		"XAXX010101000", // RFC genérico
		"AME880912I89",  // persona moral, 3 letters
		"ÑAMA800101AB1",
	}
	for _, rfc := range valid {
		assert.True(t, rfcRegex.MatchString(rfc), "expected %q to be valid", rfc)
	}

	invalid := []string{
		"",
		"gode561231gr8", // lowercase
		"GODE561231GR",  // homoclave too short
		"GODE5612GR800", // malformed date
		"GODEX61231GR8",
	}
	for _, rfc := range invalid {
		assert.False(t, rfcRegex.MatchString(rfc), "expected %q to be invalid", rfc)
	}
}
