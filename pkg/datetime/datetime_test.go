package datetime

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAndFormat(t *testing.T) {
	ts, err := Parse("2026-03-01 18:30:00")
	require.NoError(t, err)
	assert.Equal(t, 2026, ts.Year())
	assert.Equal(t, time.March, ts.Month())
	assert.Equal(t, 18, ts.Hour())
	assert.Equal(t, "2026-03-01 18:30:00", Format(ts))
}

func TestParse_Invalid(t *testing.T) {
	_, err := Parse("2026-03-01T18:30:00Z")
	assert.Error(t, err)
}

func TestDateTime_JSON(t *testing.T) {
	var body struct {
		At  DateTime  `json:"at"`
		Opt *DateTime `json:"opt"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"at":"2026-01-02 03:04:05","opt":null}`), &body))
	assert.Equal(t, 5, body.At.Second())
	assert.Nil(t, body.Opt)

	out, err := json.Marshal(body)
	require.NoError(t, err)
	assert.JSONEq(t, `{"at":"2026-01-02 03:04:05","opt":null}`, string(out))
}

func TestDateTime_UnmarshalRejectsGarbage(t *testing.T) {
	var d DateTime
	assert.Error(t, json.Unmarshal([]byte(`"tomorrow"`), &d))
	assert.Error(t, json.Unmarshal([]byte(`12`), &d))
}
