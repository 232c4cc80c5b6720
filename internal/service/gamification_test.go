package service_test

import (
	"testing"
	"time"

	"lingo_flow_backend/internal/service"
)

func TestNextStreak(t *testing.T) {
	day := func(s string) time.Time {
		parsed, err := time.Parse(time.RFC3339, s)
		if err != nil {
			t.Fatalf("bad fixture time %q: %v", s, err)
		}
		return parsed
	}

	tests := []struct {
		name       string
		current    int
		lastActive time.Time
		now        time.Time
		want       int
	}{
		{"首次活跃", 0, time.Time{}, day("2025-03-10T09:00:00Z"), 1},
		{"同一天不变", 3, day("2025-03-10T08:00:00Z"), day("2025-03-10T22:00:00Z"), 3},
		{"次日加一", 3, day("2025-03-10T23:30:00Z"), day("2025-03-11T00:30:00Z"), 4},
		{"隔两天归一", 6, day("2025-03-10T09:00:00Z"), day("2025-03-12T09:00:00Z"), 1},
		{"隔五天归一", 9, day("2025-03-05T09:00:00Z"), day("2025-03-10T09:00:00Z"), 1},
		{"脏数据同天兜底", 0, day("2025-03-10T08:00:00Z"), day("2025-03-10T09:00:00Z"), 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := service.NextStreak(tt.current, tt.lastActive, tt.now, time.UTC)
			if got != tt.want {
				t.Fatalf("NextStreak(%d, %v, %v) = %d, want %d", tt.current, tt.lastActive, tt.now, got, tt.want)
			}
		})
	}
}

func TestNextStreakRespectsTimezone(t *testing.T) {
	loc, err := time.LoadLocation("Asia/Shanghai")
	if err != nil {
		t.Skipf("timezone data unavailable: %v", err)
	}

	// UTC 22:00 与次日 UTC 01:00 在上海时区分别是 06:00 和 09:00，同一天
	last := time.Date(2025, 3, 10, 22, 0, 0, 0, time.UTC)
	now := time.Date(2025, 3, 11, 1, 0, 0, 0, time.UTC)

	if got := service.NextStreak(3, last, now, loc); got != 3 {
		t.Fatalf("same Shanghai day must keep streak, got %d", got)
	}
	if got := service.NextStreak(3, last, now, time.UTC); got != 4 {
		t.Fatalf("UTC day boundary must extend streak, got %d", got)
	}
}

func TestQualifiedBadges(t *testing.T) {
	tests := []struct {
		name  string
		stats service.BadgeStats
		want  []string
	}{
		{"无成就", service.BadgeStats{}, nil},
		{"首个课时", service.BadgeStats{PassedLessons: 1}, []string{service.BadgeFirstLesson}},
		{
			"五个课时",
			service.BadgeStats{PassedLessons: 5},
			[]string{service.BadgeFirstLesson, service.BadgeDedicatedLearner},
		},
		{
			"全部达成",
			service.BadgeStats{PassedLessons: 5, StreakDays: 7, XP: 500},
			[]string{service.BadgeFirstLesson, service.BadgeDedicatedLearner, service.BadgeWeekStreak, service.BadgeXP500},
		},
		{"连续六天不够", service.BadgeStats{PassedLessons: 1, StreakDays: 6}, []string{service.BadgeFirstLesson}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := service.QualifiedBadges(tt.stats)
			if len(got) != len(tt.want) {
				t.Fatalf("QualifiedBadges(%+v) = %v, want %v", tt.stats, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("QualifiedBadges(%+v) = %v, want %v", tt.stats, got, tt.want)
				}
			}
		})
	}
}

func TestCalculateLevel(t *testing.T) {
	level, next := service.CalculateLevel(0)
	if level != 0 || next != 200 {
		t.Fatalf("level(0) = %d/%d", level, next)
	}
	level, next = service.CalculateLevel(450)
	if level != 2 || next != 600 {
		t.Fatalf("level(450) = %d/%d", level, next)
	}
}
