package domain

// Pesos fijos del modo "balanced".
const (
	BalancedMemberWeight   = 10.0
	BalancedMessageDivisor = 100.0
	BalancedVoiceDivisor   = 12.0
)

// BalancedScore = member_weight*10 + weekly_messages/100 + weekly_voice_minutes/12
func BalancedScore(memberWeight float64, weeklyMessages, weeklyVoiceMinutes int64) float64 {
	return memberWeight*BalancedMemberWeight +
		float64(weeklyMessages)/BalancedMessageDivisor +
		float64(weeklyVoiceMinutes)/BalancedVoiceDivisor
}
