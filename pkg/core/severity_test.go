package core

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeverityJSONRoundTrip(t *testing.T) {
	for _, sev := range []Severity{SeverityInfo, SeverityWarning, SeverityError} {
		t.Run(sev.String(), func(t *testing.T) {
			in := Warning{
				Kind:     WarnSyntaxDifference,
				Message:  "sample",
				Severity: sev,
			}
			data, err := json.Marshal(in)
			require.NoError(t, err)
			assert.Contains(t, string(data), `"`+sev.String()+`"`)

			var out Warning
			require.NoError(t, json.Unmarshal(data, &out))
			assert.Equal(t, sev, out.Severity)
		})
	}
}

func TestSeverityUnmarshalRejectsUnknown(t *testing.T) {
	var s Severity
	assert.Error(t, s.UnmarshalText([]byte("fatal")))
}
