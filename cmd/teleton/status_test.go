package main

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/Kira-Projects/teleton/internal/models"
)

func TestWriteStatusReport(t *testing.T) {
	count := 42
	completed := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	status := models.JobStatus{IsReady: true, ItemCount: &count, LastCompletedAt: &completed}

	var buf bytes.Buffer
	require.NoError(t, writeStatusReport(&buf, newStatusReport("http://backend/kb-status", completed, status)))

	var decoded map[string]interface{}
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "http://backend/kb-status", decoded["endpoint"])
	assert.Equal(t, false, decoded["is_generating"])
	assert.Equal(t, true, decoded["rag_system_loaded"])
	assert.Equal(t, 42, decoded["documents_count"])
	assert.Equal(t, "2024-05-01T10:00:00Z", decoded["last_generation_time"])
}

func TestWriteStatusReport_OmitsUnknownFields(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeStatusReport(&buf, newStatusReport("http://backend/kb-status", time.Now(), models.JobStatus{IsRunning: true})))

	out := buf.String()
	assert.Contains(t, out, "is_generating: true")
	assert.NotContains(t, out, "documents_count")
	assert.NotContains(t, out, "last_generation_time")
}
