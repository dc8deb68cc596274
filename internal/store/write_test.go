package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordRun_Idempotent(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	run := createTestRun("run-1", testEpoch)

	require.NoError(t, s.RecordRun(ctx, run))
	run.Plan = "changed"
	require.NoError(t, s.RecordRun(ctx, run))

	got, err := s.ReadRun(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, "orders", got.Plan)
}

func TestRecordJob_RequiresRun(t *testing.T) {
	s := createTestStore(t)

	err := s.RecordJob(context.Background(), "missing", createTestJobResult(0, true))
	require.Error(t, err)
}

func TestRecordJob_Idempotent(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.RecordRun(ctx, createTestRun("run-1", testEpoch)))

	require.NoError(t, s.RecordJob(ctx, "run-1", createTestJobResult(0, true)))
	require.NoError(t, s.RecordJob(ctx, "run-1", createTestJobResult(0, false)))

	results, err := s.ReadJobResults(ctx, "run-1")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.True(t, results[0].Pass)
}

func TestRecordJob_Columns(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.RecordRun(ctx, createTestRun("run-1", testEpoch)))
	require.NoError(t, s.RecordJob(ctx, "run-1", createTestJobResult(2, false)))

	var (
		combination, failures string
		pass                  bool
		duration              int64
	)
	err := s.db.QueryRow(`SELECT combination, pass, failures, duration_ns FROM job_results WHERE run_id = ?`, "run-1").
		Scan(&combination, &pass, &failures, &duration)
	require.NoError(t, err)

	assert.Equal(t, "order=3", combination)
	assert.False(t, pass)
	assert.Equal(t, `["impulse: impulse response at sample 1: expected 12, got 11 <\"x\">"]`, failures)
	assert.Equal(t, int64(1500*time.Millisecond), duration)
}
