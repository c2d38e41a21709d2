package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const catalogJSON = `{
	"colors": [{"code": "#ff0000", "name": "red"}],
	"drawings": [{"name": "house", "areas": ["door", "window"]}],
	"pages": [{"name": "p1", "drawing": "house", "expectations": [{"area": "door", "color": "#ff0000", "here": true}]}],
	"surveys": [{"name": "pilot", "pages": ["p1"]}]
}`

func runAdmin(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), err
}

func setupAdminEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("COLORINGBOOK_DATABASE_DRIVER", "sqlite")
	t.Setenv("COLORINGBOOK_DATABASE_URL", filepath.Join(dir, "coloringbook.db"))

	_, err := runAdmin(t, "migrate")
	require.NoError(t, err)
	return dir
}

func TestSeedAndExportCommands(t *testing.T) {
	dir := setupAdminEnv(t)

	catalog := filepath.Join(dir, "catalog.json")
	require.NoError(t, os.WriteFile(catalog, []byte(catalogJSON), 0o600))

	out, err := runAdmin(t, "seed", "--file", catalog)
	require.NoError(t, err)
	require.Contains(t, out, "areas: 2\n")
	require.Contains(t, out, "surveys: 1\n")

	out, err = runAdmin(t, "export", "results", "--survey", "pilot")
	require.NoError(t, err)
	require.Equal(t, "Survey;Subject;Birthdate;Page;Target;Color;Correct\n", out)

	target := filepath.Join(dir, "final.csv")
	out, err = runAdmin(t, "export", "fills", "--final", "--out", target)
	require.NoError(t, err)
	require.Empty(t, out)

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	require.Equal(t, "Survey;Page;Area;Subject;Time;Color\n", string(data))
}

func TestExportResultsUnknownSurvey(t *testing.T) {
	setupAdminEnv(t)

	_, err := runAdmin(t, "export", "results", "--survey", "missing")
	require.Error(t, err)
}

func TestSeedRequiresFile(t *testing.T) {
	setupAdminEnv(t)

	_, err := runAdmin(t, "seed")
	require.Error(t, err)
}
