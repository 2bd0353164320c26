package regex

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_ParseRegularDefinitionText(t *testing.T) {
	testCases := []struct {
		name      string
		input     string
		wantNames []string
		wantErr   bool
	}{
		{
			name:      "single definition",
			input:     "digit [0-9]",
			wantNames: []string{"digit"},
		},
		{
			name: "multiple definitions with blank lines",
			input: `
digit [0-9]

letter [a-zA-Z]

id     {letter}({letter}|{digit})*
`,
			wantNames: []string{"digit", "letter", "id"},
		},
		{
			name:    "missing pattern",
			input:   "digit",
			wantErr: true,
		},
		{
			name:    "forward reference rejected",
			input:   "id {letter}\nletter [a-z]",
			wantErr: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rd, err := ParseRegularDefinitionText(tc.input)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.ElementsMatch(t, tc.wantNames, rd.Names())
		})
	}
}
