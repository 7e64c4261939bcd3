package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGame_AvgScore(t *testing.T) {
	g := &Game{}
	assert.Equal(t, 0.0, g.AvgScore())

	g.Reviews = append(g.Reviews, Review{Score: 4}, Review{Score: 2})
	assert.Equal(t, 3.0, g.AvgScore())
}

func TestReadyCheck_RecordDedupesByUsername(t *testing.T) {
	rc := &ReadyCheck{TargetCount: 2, AllOK: true}

	rc.Record("alice", true, "")
	rc.Record("alice", false, "second response ignored")
	assert.True(t, rc.AllOK)
	assert.Len(t, rc.Responses, 1)

	rc.Record("bob", false, "missing dependency")
	assert.False(t, rc.AllOK)
	assert.Equal(t, "missing dependency", rc.FirstFailure)
	assert.True(t, rc.Done())
}

func TestReadyCheck_FirstFailureSticky(t *testing.T) {
	rc := &ReadyCheck{TargetCount: 3, AllOK: true}
	rc.Record("a", false, "reason one")
	rc.Record("b", false, "reason two")
	assert.Equal(t, "reason one", rc.FirstFailure)
}

func TestReadyCheck_DoneFalseUntilAllRespond(t *testing.T) {
	rc := &ReadyCheck{TargetCount: 2, AllOK: true}
	assert.False(t, rc.Done())
	rc.Record("a", true, "")
	assert.False(t, rc.Done())
	rc.Record("b", true, "")
	assert.True(t, rc.Done())
}
