package report

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWriteJSON(t *testing.T) {
	run := sampleRun()

	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, run))

	require.JSONEq(t, `{
		"stage": "pre-commit",
		"passed": 1,
		"failed": 1,
		"skipped": 1,
		"results": [
			{
				"id": "check-yaml",
				"name": "check yaml",
				"status": "Passed",
				"exit_code": 0,
				"duration_ms": 120,
				"files": 3
			},
			{
				"id": "flake8",
				"name": "flake8",
				"status": "Skipped",
				"exit_code": 0,
				"duration_ms": 0,
				"files": 0,
				"skip_reason": "no files to check"
			},
			{
				"id": "trailing-whitespace",
				"name": "trim trailing whitespace",
				"status": "Failed",
				"exit_code": 1,
				"duration_ms": 500,
				"files": 2,
				"output": "fixing src/app.py\n",
				"modified": true
			}
		]
	}`, buf.String())
}
