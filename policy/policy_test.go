package policy_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/citrinedb/citrine-go/policy"
)

func TestDeadline(t *testing.T) {
	now := time.Now()

	p := &policy.Base{Timeout: time.Second}
	require.Equal(t, now.Add(time.Second), p.Deadline(now))

	p = &policy.Base{Timeout: policy.NoTimeout}
	require.True(t, p.Deadline(now).IsZero())
}

func TestConsistencyLevel_Validate(t *testing.T) {
	require.NotPanics(t, func() {
		policy.ConsistencyOne.Validate()
		policy.ConsistencyAll.Validate()
	})

	require.Panics(t, func() {
		policy.ConsistencyLevel(42).Validate()
	})
}

func TestCommitLevel_Validate(t *testing.T) {
	require.NotPanics(t, func() {
		policy.CommitAll.Validate()
		policy.CommitMaster.Validate()
	})

	require.Panics(t, func() {
		policy.CommitLevel(42).Validate()
	})
}

func TestString(t *testing.T) {
	require.Equal(t, "one", policy.ConsistencyOne.String())
	require.Equal(t, "all", policy.ConsistencyAll.String())
	require.Equal(t, "all", policy.CommitAll.String())
	require.Equal(t, "master", policy.CommitMaster.String())
	require.Equal(t, "master", policy.ReplicaMaster.String())
	require.Equal(t, "sequence", policy.ReplicaSequence.String())
	require.Equal(t, "any", policy.ReplicaAny.String())
	require.Equal(t, "digest", policy.KeyDigestOnly.String())
	require.Equal(t, "send", policy.KeySend.String())
}
