package main

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prilive-com/tgbots/internal/testutil"
	"github.com/prilive-com/tgbots/registry"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)

	root := newRootCmd()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(append(args, "--env-file", ""))
	err := root.Execute()
	return out.String(), err
}

func TestListJSON(t *testing.T) {
	server := testutil.NewMockServerWithBots(t)
	t.Setenv("TGBOTS_BOT_TOKEN", testutil.TokenA)
	t.Setenv("TGBOTS_BOT_ID", "main")

	out, err := runCLI(t, "list", "--json", "--mode", "polling", "--base-url", server.BaseURL())
	require.NoError(t, err)

	var got struct {
		Mode string         `json:"mode"`
		Bots []registry.Row `json:"bots"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "POLLING", got.Mode)
	require.Len(t, got.Bots, 1)
	assert.Equal(t, "111111:***", got.Bots[0].Bot)
	assert.Equal(t, "main", got.Bots[0].ID)
	assert.Equal(t, testutil.UsernameA, got.Bots[0].Username)
	assert.True(t, got.Bots[0].Default)
	assert.True(t, got.Bots[0].Polling)
	assert.NotContains(t, out, "alpha_secret")
}

func TestStartTable(t *testing.T) {
	server := testutil.NewMockServerWithBots(t)
	t.Setenv("TGBOTS_BOT_TOKEN", testutil.TokenB)

	out, err := runCLI(t, "start", "--mode", "webhook", "--webhook-site", "https://bots.example.com", "--base-url", server.BaseURL())
	require.NoError(t, err)

	assert.Contains(t, out, "mode: WEBHOOK")
	assert.Contains(t, out, testutil.UsernameB)
	assert.Contains(t, out, "https://bots.example.com/222222:***/")
	assert.Contains(t, out, "ALL")
	assert.NotContains(t, out, "bravo_secret")
	assert.Equal(t, "https://bots.example.com/"+testutil.TokenB+"/", server.WebhookURL(testutil.TokenB))
}

func TestStartFailsWithoutWebhookSite(t *testing.T) {
	server := testutil.NewMockServerWithBots(t)
	t.Setenv("TGBOTS_BOT_TOKEN", testutil.TokenA)

	_, err := runCLI(t, "start", "--mode", "webhook", "--base-url", server.BaseURL())
	require.Error(t, err)
	assert.Zero(t, server.CaptureCount())
}

func TestPollingRejectsBothSelectors(t *testing.T) {
	_, err := runCLI(t, "polling", "--username", "a", "--token", "b")
	assert.Error(t, err)
}

func TestVersion(t *testing.T) {
	out, err := runCLI(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "tgbots dev")
}
