package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/recipe-buddy/backend/internal/service"
)

func TestIssueWritesValidAdminToken(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, issue(&out, "cli-secret", "ops", time.Hour))

	claims, err := service.NewTokenService("cli-secret", 0).ValidateToken(strings.TrimSpace(out.String()))
	require.NoError(t, err)
	assert.Equal(t, "ops", claims.Subject)
}

func TestIssueRejects(t *testing.T) {
	var out bytes.Buffer
	assert.Error(t, issue(&out, "", "ops", time.Hour))
	assert.Error(t, issue(&out, "cli-secret", "", time.Hour))
	assert.Empty(t, out.String())
}
