package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusString(t *testing.T) {
	assert.Equal(t, "OK", StatusOK.String())
	assert.Equal(t, "ERROR", StatusError.String())
	assert.Equal(t, "NA", StatusNA.String())

	status, err := StatusString("ERROR")
	require.NoError(t, err)
	assert.Equal(t, StatusError, status)

	_, err = StatusString("DEGRADED")
	assert.Error(t, err)
}

func TestStatusIsAStatus(t *testing.T) {
	assert.True(t, StatusOK.IsAStatus())
	assert.True(t, StatusNA.IsAStatus())
	assert.False(t, Status(42).IsAStatus())
}

func TestStatusJSON(t *testing.T) {
	data, err := json.Marshal(StatusNA)
	require.NoError(t, err)
	assert.Equal(t, `"NA"`, string(data))

	var status Status
	require.NoError(t, json.Unmarshal([]byte(`"OK"`), &status))
	assert.Equal(t, StatusOK, status)

	assert.Error(t, json.Unmarshal([]byte(`"BROKEN"`), &status))
}

func TestStatusSQL(t *testing.T) {
	value, err := StatusError.Value()
	require.NoError(t, err)
	assert.Equal(t, "ERROR", value)

	var status Status
	require.NoError(t, status.Scan("NA"))
	assert.Equal(t, StatusNA, status)

	require.NoError(t, status.Scan([]byte("OK")))
	assert.Equal(t, StatusOK, status)

	assert.Error(t, status.Scan("BROKEN"))
}
