// Copyright ©️ Ant Group. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package rangemap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/antgroup/hugetree/modules/changeerrors"
)

func TestSetAndGetFirstExactMatch(t *testing.T) {
	m := New()
	require.NoError(t, m.Set(0, 10, "a"))
	e, err := m.GetFirst(0, 10)
	require.NoError(t, err)
	assert.Equal(t, Entry{Start: 0, Length: 10, Value: "a", HasValue: true}, e)
}

func TestGetFirstOnGapReturnsUndefined(t *testing.T) {
	m := New()
	require.NoError(t, m.Set(10, 5, "a"))
	e, err := m.GetFirst(0, 10)
	require.NoError(t, err)
	assert.False(t, e.HasValue)
	assert.Equal(t, int64(0), e.Start)
	assert.Equal(t, int64(10), e.Length) // gap runs right up to the next interval's start
}

func TestGetFirstTruncatesAtIntervalBoundary(t *testing.T) {
	m := New()
	require.NoError(t, m.Set(0, 5, "a"))
	require.NoError(t, m.Set(5, 5, "b"))
	e, err := m.GetFirst(0, 10)
	require.NoError(t, err)
	assert.Equal(t, Entry{Start: 0, Length: 5, Value: "a", HasValue: true}, e)
}

func TestLaterWriteSplitsEarlierEntry(t *testing.T) {
	m := New()
	require.NoError(t, m.Set(0, 10, "a"))
	require.NoError(t, m.Set(4, 2, "b"))

	left, err := m.GetFirst(0, 4)
	require.NoError(t, err)
	assert.Equal(t, Entry{Start: 0, Length: 4, Value: "a", HasValue: true}, left)

	mid, err := m.GetFirst(4, 2)
	require.NoError(t, err)
	assert.Equal(t, Entry{Start: 4, Length: 2, Value: "b", HasValue: true}, mid)

	right, err := m.GetFirst(6, 4)
	require.NoError(t, err)
	assert.Equal(t, Entry{Start: 6, Length: 4, Value: "a", HasValue: true}, right)
}

func TestOverlapOnlyReplacesOverlappingPortion(t *testing.T) {
	m := New()
	require.NoError(t, m.Set(0, 5, "a"))
	require.NoError(t, m.Set(3, 5, "b"))

	left, err := m.GetFirst(0, 3)
	require.NoError(t, err)
	assert.Equal(t, Entry{Start: 0, Length: 3, Value: "a", HasValue: true}, left)

	right, err := m.GetFirst(3, 5)
	require.NoError(t, err)
	assert.Equal(t, Entry{Start: 3, Length: 5, Value: "b", HasValue: true}, right)
}

func TestDeleteSplitsAndClearsRange(t *testing.T) {
	m := New()
	require.NoError(t, m.Set(0, 10, "a"))
	require.NoError(t, m.Delete(4, 2))

	left, err := m.GetFirst(0, 4)
	require.NoError(t, err)
	assert.Equal(t, Entry{Start: 0, Length: 4, Value: "a", HasValue: true}, left)

	gap, err := m.GetFirst(4, 2)
	require.NoError(t, err)
	assert.False(t, gap.HasValue)
	assert.Equal(t, int64(2), gap.Length)

	right, err := m.GetFirst(6, 4)
	require.NoError(t, err)
	assert.Equal(t, Entry{Start: 6, Length: 4, Value: "a", HasValue: true}, right)
}

func TestNonPositiveLengthFails(t *testing.T) {
	m := New()
	err := m.Set(0, 0, "a")
	require.Error(t, err)
	assert.True(t, changeerrors.IsErrInvalidRange(err))

	_, err = m.GetFirst(0, -1)
	require.Error(t, err)
	assert.True(t, changeerrors.IsErrInvalidRange(err))
}
