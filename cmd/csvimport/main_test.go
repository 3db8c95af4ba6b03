package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/JonMunkholm/gradabroad/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestCollectionsCmd(t *testing.T) {
	out, err := execute(t, "collections")
	require.NoError(t, err)

	assert.Contains(t, out, "NAME")
	assert.Contains(t, out, "application_tracker")
	assert.Contains(t, out, "user_id, university_name, course_name, deadline, status")
}

func TestPreviewCmd(t *testing.T) {
	path := writeTemp(t, "shortlist.csv", "university_name,course_name,deadline\nTUM,Informatics,2025-01-15\nRWTH,,\n")

	out, err := execute(t, "preview", path, "--collection", "shortlists")
	require.NoError(t, err)
	assert.Contains(t, out, "rows:       2")
	assert.Contains(t, out, "line 2: course_name: required field is empty")
	assert.NotContains(t, out, "\nok\n")

	out, err = execute(t, "preview", path, "-c", "shortlists", "--json")
	require.NoError(t, err)

	var p core.Preview
	require.NoError(t, json.Unmarshal([]byte(out), &p))
	assert.Equal(t, "shortlist.csv", p.FileName)
	assert.Equal(t, 2, p.RowCount)
}

func TestPreviewCmd_Errors(t *testing.T) {
	path := writeTemp(t, "a.csv", "university_name\nTUM\n")

	_, err := execute(t, "preview", path, "--collection", "nope")
	assert.ErrorIs(t, err, core.ErrUnknownCollection)
	assert.Equal(t, exitUsage, exitCode(err))

	_, err = execute(t, "preview", writeTemp(t, "a.pdf", "x"), "--collection", "programs")
	assert.ErrorIs(t, err, core.ErrUnsupportedFileType)

	_, err = execute(t, "preview", path)
	assert.Error(t, err)
}

func TestImportCmd_RejectsBadFlags(t *testing.T) {
	path := writeTemp(t, "a.csv", "university_name,course_name\nTUM,x\n")

	_, err := execute(t, "import", path, "--collection", "programs", "--owner", "me")
	assert.Equal(t, exitUsage, exitCode(err))

	_, err = execute(t, "import", path, "--collection", "programs",
		"--owner", "11111111-1111-1111-1111-111111111111", "--mode", "fast")
	assert.Equal(t, exitUsage, exitCode(err))
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://env/db")
	t.Setenv("IMPORT_BATCH_SIZE", "")
	t.Setenv("JWT_SECRET", "")

	cfg, err := loadConfig(importOptions{batchSize: 50, delimiter: "|"}.overrides())
	require.NoError(t, err)
	assert.Equal(t, "postgres://env/db", cfg.Database.URL)
	assert.Equal(t, 50, cfg.Import.BatchSize)
	assert.Equal(t, "|", cfg.Import.ChecklistDelimiter)

	cfg, err = loadConfig(importOptions{databaseURL: "postgres://flag/db"}.overrides())
	require.NoError(t, err)
	assert.Equal(t, "postgres://flag/db", cfg.Database.URL)
	assert.Equal(t, 500, cfg.Import.BatchSize)
}

func TestReportResult(t *testing.T) {
	var out bytes.Buffer
	err := reportResult(&out, &core.ImportResult{Collection: core.CollectionPrograms, TotalRows: 2, Inserted: 2})
	require.NoError(t, err)
	assert.Equal(t, "Imported 2 rows into programs.\n", out.String())

	out.Reset()
	err = reportResult(&out, &core.ImportResult{
		Collection: core.CollectionPrograms,
		TotalRows:  3,
		Inserted:   2,
		Failed:     []core.RowFailure{{Line: 3, Reason: "deadline: invalid date format"}},
	})
	assert.Equal(t, exitFailed, exitCode(err))
	assert.Contains(t, out.String(), "  line 3: deadline: invalid date format")
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, exitOK, exitCode(nil))
	assert.Equal(t, exitError, exitCode(errors.New("boom")))
	assert.Equal(t, exitDB, exitCode(withCode(exitDB, errors.New("down"))))
}
