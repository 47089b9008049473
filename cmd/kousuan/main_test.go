package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/neumathe/kousuan/engine"
)

func TestRunGenerateSeeded(t *testing.T) {
	args := []string{"generate", "-grade", "grade_2", "-category", "2_4", "-count", "6", "-seed", "demo"}
	var a, b bytes.Buffer
	require.NoError(t, run(args, &a))
	require.NoError(t, run(args, &b))
	require.Equal(t, a.String(), b.String())

	var out batchOutput
	require.NoError(t, json.Unmarshal(a.Bytes(), &out))
	require.Equal(t, 6, out.Count)
	require.Zero(t, out.Shortfall)
	for _, q := range out.Questions {
		require.Equal(t, engine.TypeDivision, q.Type)
		ops, ok := q.IntOperands()
		require.True(t, ok)
		require.Zero(t, ops[0]%ops[1], q.Expression)
	}
}

func TestRunAllocate(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, run([]string{"allocate", "-grade", "grade_1", "-count", "20"}, &buf))
	var alloc []engine.AllocationEntry
	require.NoError(t, json.Unmarshal(buf.Bytes(), &alloc))
	require.Len(t, alloc, 11)
	sum := 0
	for _, a := range alloc {
		sum += a.Count
	}
	require.Equal(t, 20, sum)
}

func TestRunSheet(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, run([]string{"sheet", "-grade", "grade_3", "-count", "9", "-columns", "3", "-answers"}, &buf))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Equal(t, "口算练习题（三年级）", lines[0])
	require.Len(t, lines, 4)
	require.NotContains(t, buf.String(), "( )")
}

func TestRunErrors(t *testing.T) {
	var buf bytes.Buffer
	require.True(t, errors.Is(run(nil, &buf), errUsage))
	require.True(t, errors.Is(run([]string{"bogus"}, &buf), errUsage))
	require.True(t, errors.Is(run([]string{"generate", "-grade", "grade_1"}, &buf), errUsage))
	require.True(t, errors.Is(run([]string{"categories", "-grade", "grade_0"}, &buf), engine.ErrCategoryNotFound))
	require.True(t, errors.Is(run([]string{"allocate", "-count", "-4"}, &buf), engine.ErrInvalidAllocationRequest))
	require.Error(t, run([]string{"grades", "-catalog", "/nonexistent/catalog.yaml"}, &buf))
	for _, cmd := range []string{"generate", "allocate", "smart", "sheet"} {
		err := run([]string{cmd, "-grade", "grade_1", "-category", "1_1", "-count", "2000000000"}, &buf)
		require.True(t, errors.Is(err, engine.ErrInvalidCount), "%s: %v", cmd, err)
	}
}
