package service

import (
	"time"
)

// 徽章名是持久化标识，发布后不可改名
const (
	BadgeFirstLesson      = "first_lesson"
	BadgeDedicatedLearner = "dedicated_learner"
	BadgeWeekStreak       = "week_streak"
	BadgeXP500            = "xp_500"
)

// BadgeStats 徽章判定所需的用户统计快照
type BadgeStats struct {
	PassedLessons int
	StreakDays    int
	XP            int
}

type BadgeRule struct {
	Name        string
	Description string
	Qualifies   func(BadgeStats) bool
}

// badgeRules 固定规则表，每次课时状态转为 passed 后评估一轮；
// 新增里程碑在此追加即可
var badgeRules = []BadgeRule{
	{BadgeFirstLesson, "通过第一个课时", func(s BadgeStats) bool { return s.PassedLessons >= 1 }},
	{BadgeDedicatedLearner, "通过5个课时", func(s BadgeStats) bool { return s.PassedLessons >= 5 }},
	{BadgeWeekStreak, "连续学习7天", func(s BadgeStats) bool { return s.StreakDays >= 7 }},
	{BadgeXP500, "累计500经验值", func(s BadgeStats) bool { return s.XP >= 500 }},
}

// QualifiedBadges 返回当前统计满足的全部徽章名
func QualifiedBadges(stats BadgeStats) []string {
	var names []string
	for _, rule := range badgeRules {
		if rule.Qualifies(stats) {
			names = append(names, rule.Name)
		}
	}
	return names
}

// NextStreak 按 loc 时区的自然日推进连续学习天数：
// 同一天不变；相隔恰好一天 +1；中断或首次活跃归 1。
// 仅在产生经验值的提交上调用。
func NextStreak(current int, lastActive, now time.Time, loc *time.Location) int {
	if lastActive.IsZero() {
		return 1
	}

	switch calendarDaysBetween(lastActive, now, loc) {
	case 0:
		if current < 1 {
			return 1
		}
		return current
	case 1:
		if current < 1 {
			return 1
		}
		return current + 1
	default:
		return 1
	}
}

// calendarDaysBetween loc 时区下两个时刻相隔的自然日数
func calendarDaysBetween(a, b time.Time, loc *time.Location) int {
	ay, am, ad := a.In(loc).Date()
	by, bm, bd := b.In(loc).Date()
	dayA := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	dayB := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int(dayB.Sub(dayA).Hours() / 24)
}

// CalculateLevel 简单等级计算：每200经验升一级
func CalculateLevel(xp int) (int, int) {
	level := xp / 200
	nextLevelXP := (level + 1) * 200
	return level, nextLevelXP
}
