package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMaskCard(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{name: "spaced card number", raw: "4111 1111 1111 1234", want: "************1234"},
		{name: "plain card number", raw: "4111111111111111", want: "************1111"},
		{name: "dashed card number", raw: "4111-1111-1111-9876", want: "************9876"},
		{name: "short amex-style", raw: "371449635398431", want: "***********8431"},
		{name: "four digits stay visible", raw: "1234", want: "1234"},
		{name: "empty", raw: "", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MaskCard(tt.raw))
		})
	}
}
