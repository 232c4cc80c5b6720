package util

import "strings"

// NormalizeAnswer 文本类答案的归一化：去首尾空白，内部连续空白折叠为单个空格。
// 大小写在 MatchTextAnswer 中统一忽略；重音符号保持显著。
func NormalizeAnswer(s string) string {
	return strings.Join(strings.Fields(strings.TrimSpace(s)), " ")
}

// MatchTextAnswer translate / fill_gap / audio_dictation 共用的判定规则
func MatchTextAnswer(submitted, correct string) bool {
	return strings.EqualFold(NormalizeAnswer(submitted), NormalizeAnswer(correct))
}

// MatchChoiceAnswer 选择题逐字符匹配选项文本，仅忽略首尾空白
func MatchChoiceAnswer(submitted, correct string) bool {
	return strings.TrimSpace(submitted) == strings.TrimSpace(correct)
}
