package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRecordKeepsNumericID(t *testing.T) {
	var record UserRecord
	require.NoError(t, json.Unmarshal([]byte(`{"id":42,"username":"amy","word_list":[],"wrong_list":[]}`), &record))
	require.Equal(t, "42", record.ID)

	data, err := json.Marshal(record.Clone())
	require.NoError(t, err)
	var doc map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &doc))
	require.JSONEq(t, `42`, string(doc["id"]))
}

func TestRecordStringIDStaysString(t *testing.T) {
	var record UserRecord
	require.NoError(t, json.Unmarshal([]byte(`{"id":"42","username":"amy"}`), &record))

	data, err := json.Marshal(record)
	require.NoError(t, err)
	var doc map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &doc))
	require.JSONEq(t, `"42"`, string(doc["id"]))
}

func TestRecordReassignedIDIsWrittenAsString(t *testing.T) {
	var record UserRecord
	require.NoError(t, json.Unmarshal([]byte(`{"id":7,"username":"amy","legacy":true}`), &record))
	record.ID = "b6f0c1de"

	data, err := json.Marshal(record)
	require.NoError(t, err)
	var doc map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &doc))
	require.JSONEq(t, `"b6f0c1de"`, string(doc["id"]))
	require.JSONEq(t, `true`, string(doc["legacy"]))
}
