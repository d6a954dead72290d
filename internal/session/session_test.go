package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCleanMonthLabel(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"JUNE", "JUNE"},
		{"  JUNE  ", "JUNE"},
		{"JUNE ●", "JUNE"},
		{"JULY●", "JULY"},
		{"\n AUGUST ● ", "AUGUST"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, cleanMonthLabel(tc.in), "input=%q", tc.in)
	}
}

func TestHeaderIDFromOnclick(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"getLogBook('6f1c2a-9d','JUNE')", "6f1c2a-9d"},
		{"getLogBook('')", ""},
		{"noQuotesHere()", ""},
		{"broken('half", ""},
		{"", ""},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, headerIDFromOnclick(tc.in), "input=%q", tc.in)
	}
}

func TestSessionHeaderFor(t *testing.T) {
	s := &Session{MonthHeaders: map[string]string{
		"JUNE": "hdr-june",
		"JULY": "",
	}}

	id, ok := s.HeaderFor(time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC))
	assert.True(t, ok)
	assert.Equal(t, "hdr-june", id)

	// empty mapping counts as missing
	_, ok = s.HeaderFor(time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC))
	assert.False(t, ok)

	_, ok = s.HeaderFor(time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC))
	assert.False(t, ok)
}
