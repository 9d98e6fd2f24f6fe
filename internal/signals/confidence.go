package signals

// MapConfidence переводит эмоцию в уверенность кандидата в [0,1].
// happy и neutral дают силу эмоции как есть, остальные метки инвертируются.
// Неизвестные метки обрабатываются как neutral.
func MapConfidence(label string, strength float64) float64 {
	strength = clamp01(strength)
	switch NormalizeEmotion(label) {
	case EmotionHappy, EmotionNeutral:
		return strength
	default:
		return 1 - strength
	}
}
