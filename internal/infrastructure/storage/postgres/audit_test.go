package postgres

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuditCompression_RoundTrip(t *testing.T) {
	s, err := NewAuditService(nil)
	require.NoError(t, err)

	big, err := json.Marshal(map[string]string{"comment": strings.Repeat("x", 20*1024)})
	require.NoError(t, err)

	e := AuditEntry{Changes: big}
	s.compress(&e)

	assert.Equal(t, CompressionZstd, e.CompressionAlgo)
	assert.Nil(t, e.Changes)
	assert.Less(t, len(e.ChangesCompressed), len(big))

	require.NoError(t, s.decompress(&e))
	assert.JSONEq(t, string(big), string(e.Changes))
	assert.Nil(t, e.ChangesCompressed)
}

func TestAuditCompression_SmallPayloadUntouched(t *testing.T) {
	s, err := NewAuditService(nil)
	require.NoError(t, err)

	e := AuditEntry{Changes: json.RawMessage(`{"number":"Acme/2024/3/00001"}`)}
	s.compress(&e)

	assert.Equal(t, CompressionNone, e.CompressionAlgo)
	assert.Nil(t, e.ChangesCompressed)
	require.NoError(t, s.decompress(&e))
	assert.JSONEq(t, `{"number":"Acme/2024/3/00001"}`, string(e.Changes))
}
