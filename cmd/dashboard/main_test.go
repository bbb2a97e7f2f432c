package main

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/andresuchdata/retailsense/backend-go/internal/stubbackend"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
	"github.com/xuri/excelize/v2"
)

func runApp(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("CACHE_ENABLED", "false")
	t.Setenv("BACKEND_TOKEN", "")

	var out bytes.Buffer
	app := newApp()
	app.Writer = &out
	app.ErrWriter = &out
	app.ExitErrHandler = func(*cli.Context, error) {}
	err := app.Run(append([]string{"dashboard"}, args...))
	return out.String(), err
}

func TestSnapshot_JSON(t *testing.T) {
	backend := stubbackend.Start()
	t.Cleanup(backend.Close)

	out, err := runApp(t, "snapshot", "--backend-url", backend.BaseURL(), "--view", "products")

	require.NoError(t, err)
	var payload struct {
		Model struct {
			Products []map[string]any `json:"products"`
		} `json:"model"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &payload))
	assert.Len(t, payload.Model.Products, 3)
}

func TestSnapshot_CSVSignsInFirst(t *testing.T) {
	backend := stubbackend.Start()
	t.Cleanup(backend.Close)
	backend.RequireToken("stub-token")

	out, err := runApp(t, "snapshot",
		"--backend-url", backend.BaseURL(),
		"--email", "owner@retailsense.test",
		"--password", "secret",
		"--view", "analytics",
		"--format", "csv",
	)

	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "# sales_trend\n"))
	assert.Equal(t, 1, backend.Hits(stubbackend.PathTopProducts))
}

func TestSnapshot_XLSXToFile(t *testing.T) {
	backend := stubbackend.Start()
	t.Cleanup(backend.Close)
	path := filepath.Join(t.TempDir(), "sales.xlsx")

	_, err := runApp(t, "snapshot", "--backend-url", backend.BaseURL(), "--view", "sales", "--format", "xlsx", "--out", path)

	require.NoError(t, err)
	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{"sales", "sections"}, f.GetSheetList())
}

func TestSnapshot_StrictPolicyFailsOnSectionError(t *testing.T) {
	backend := stubbackend.Start()
	t.Cleanup(backend.Close)
	backend.Fail(stubbackend.PathAIInsights, 500)

	_, err := runApp(t, "snapshot", "--backend-url", backend.BaseURL(), "--policy", "strict")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "did not refresh")
}

func TestSnapshot_RejectsUnknownFormat(t *testing.T) {
	_, err := runApp(t, "snapshot", "--format", "pdf")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported format")
}

func TestLogin_PrintsSession(t *testing.T) {
	backend := stubbackend.Start()
	t.Cleanup(backend.Close)

	out, err := runApp(t, "login", "--backend-url", backend.BaseURL(), "--email", "owner@retailsense.test", "--password", "secret")

	require.NoError(t, err)
	assert.Contains(t, out, "signed in as owner@retailsense.test")
	assert.Contains(t, out, "session expires at")
	for _, path := range []string{stubbackend.PathProducts, stubbackend.PathSales, stubbackend.PathSalesTrend} {
		assert.Equal(t, 0, backend.Hits(path), path)
	}
}

func TestLogin_RequiresCredentials(t *testing.T) {
	t.Setenv("BACKEND_EMAIL", "")
	t.Setenv("BACKEND_PASSWORD", "")

	_, err := runApp(t, "login")

	assert.Error(t, err)
}
