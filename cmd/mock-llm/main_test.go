package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleChatCompletions_DefaultPayload(t *testing.T) {
	s := &server{fixtures: map[string]string{}}

	body, err := json.Marshal(chatRequest{
		Model: "anything",
		Messages: []chatMessage{
			{Role: "user", Content: "write a proposal"},
		},
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/v1/chat/completions", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	s.handleChatCompletions(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp chatResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Choices, 1)
	assert.Equal(t, "anything", resp.Model)
	assert.Equal(t, "stop", resp.Choices[0].FinishReason)

	// The default payload must parse as a complete sections object.
	var sections map[string]string
	require.NoError(t, json.Unmarshal([]byte(resp.Choices[0].Message.Content), &sections))
	for _, name := range []string{
		"executive_summary", "solution_overview", "pricing", "roi_calculator",
		"implementation_timeline", "case_studies", "next_steps",
	} {
		assert.NotEmpty(t, sections[name], "section %s", name)
	}
}

func TestHandleChatCompletions_Fixture(t *testing.T) {
	s := &server{fixtures: map[string]string{"mock-writer": `{"custom": true}`}}

	body, _ := json.Marshal(chatRequest{
		Model:    "mock-writer",
		Messages: []chatMessage{{Role: "user", Content: "hi"}},
	})

	req := httptest.NewRequest(http.MethodPost, "/v1/chat/completions", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	s.handleChatCompletions(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp chatResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, `{"custom": true}`, resp.Choices[0].Message.Content)
}

func TestHandleChatCompletions_MethodNotAllowed(t *testing.T) {
	s := &server{fixtures: map[string]string{}}

	req := httptest.NewRequest(http.MethodGet, "/v1/chat/completions", nil)
	rec := httptest.NewRecorder()
	s.handleChatCompletions(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
