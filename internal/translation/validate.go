package translation

// 校验失败原因。历史拼写 Insuffient 已进入下游告警匹配，不要修正。
const (
	reasonNoChinese           = "No Chinese characters in translation"
	reasonInsuffientChinese   = "Insuffient Chinese characters in translation"
	reasonInsufficientDensity = "Insufficient Chinese density in translation"
)

// countHan 统计 CJK 统一表意文字数量。
func countHan(s string) int {
	count := 0
	for _, r := range s {
		if r >= 0x4E00 && r <= 0x9FA5 {
			count++
		}
	}
	return count
}

// validateChinese 判断译文是否真的是中文，按长度分档：
// - 译文不足 100 字：原文不足 50 字时 >1 个汉字即可（容忍 "Full Time"→"全职" 这类短译文），
//   否则要求 ≥5 个汉字；
// - 译文 ≥100 字：要求 ≥20 个汉字，且密度 >10% 或汉字总数 ≥100。
// 单一的比例阈值会误杀短译文，单一的数量阈值会放过长英文原文，所以两档并存。
// 返回是否有效与失败原因。
func validateChinese(translated string, originalLen int) (bool, string) {
	length := 0
	for range translated {
		length++
	}
	han := countHan(translated)

	if length < 100 {
		threshold := 5
		if originalLen < 50 {
			threshold = 2
		}
		if han >= threshold {
			return true, ""
		}
		if han == 0 {
			return false, reasonNoChinese
		}
		return false, reasonInsuffientChinese
	}

	if han >= 20 && (float64(han)/float64(length) > 0.1 || han >= 100) {
		return true, ""
	}
	if han == 0 {
		return false, reasonNoChinese
	}
	if han < 20 {
		return false, reasonInsuffientChinese
	}
	return false, reasonInsufficientDensity
}
