package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStatusForLastVisit(t *testing.T) {
	now := time.Date(2026, time.June, 1, 12, 0, 0, 0, time.UTC)

	daysAgo := func(d int) *time.Time {
		visit := now.AddDate(0, 0, -d)
		return &visit
	}

	cases := []struct {
		name      string
		lastVisit *time.Time
		expected  CustomerStatus
	}{
		{"never visited", nil, CustomerDormant},
		{"visited today", daysAgo(0), CustomerActive},
		{"visited 30 days ago", daysAgo(30), CustomerActive},
		{"visited 31 days ago", daysAgo(31), CustomerInactive},
		{"visited 90 days ago", daysAgo(90), CustomerInactive},
		{"visited 91 days ago", daysAgo(91), CustomerDormant},
		{"visited a year ago", daysAgo(365), CustomerDormant},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, StatusForLastVisit(tc.lastVisit, now))
		})
	}
}
