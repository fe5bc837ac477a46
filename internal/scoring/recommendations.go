package scoring

import "health-risk-service/internal/domain"

const disclaimer = "This assessment is educational and is not a medical diagnosis. Consult a healthcare professional for personal advice."

var categoryAdvice = map[domain.Category][]string{
	domain.CategoryBehavioral: {
		"Consider small, sustainable changes to daily habits such as smoking, activity, diet, or alcohol use.",
		"Support programs (quit lines, activity groups) improve the odds of lasting change.",
	},
	domain.CategoryKnowledge: {
		"Schedule a routine check-up to learn your key numbers, starting with blood pressure.",
		"Learn the warning signs of heart attack and stroke so you can act quickly.",
	},
	domain.CategoryEnvironmental: {
		"Reduce exposure where you can: ventilation at home, protective equipment at work, avoiding smoke-filled spaces.",
		"Check local air quality reports before prolonged outdoor activity.",
	},
	domain.CategorySocioeconomic: {
		"Community health centers offer care on a sliding fee scale if access or insurance is a barrier.",
		"Local assistance programs can ease food budget pressure on healthy choices.",
	},
}

var levelAdvice = map[domain.RiskLevel][]string{
	domain.RiskHigh: {
		"Arrange a visit with a healthcare provider to discuss these results.",
		"Prioritize the highest-risk areas above; addressing them first has the largest effect on your total score.",
	},
	domain.RiskModerate: {
		"Pick one area above and set a concrete goal for the next month.",
	},
}

// recommend assembles the ordered recommendation list: per-category advice for
// each highest-risk category (skipped when the set is empty), then
// level-specific guidance, then the fixed disclaimer as the final entry.
func recommend(level domain.RiskLevel, highest []domain.Category) []string {
	out := make([]string, 0, 8)
	for _, c := range highest {
		out = append(out, categoryAdvice[c]...)
	}
	out = append(out, levelAdvice[level]...)
	out = append(out, disclaimer)
	return out
}
