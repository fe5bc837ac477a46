package catalog

import "health-risk-service/internal/domain"

// builtinWeights are the fixed category weights of the standard questionnaire.
var builtinWeights = map[domain.Category]float64{
	domain.CategoryBehavioral:    0.4,
	domain.CategoryKnowledge:     0.2,
	domain.CategoryEnvironmental: 0.2,
	domain.CategorySocioeconomic: 0.2,
}

// Builtin returns the standard 12-question health-risk catalog. Category
// maxima derive to behavioral=11, knowledge=4, environmental=6,
// socioeconomic=4.
func Builtin() *Catalog {
	c, err := New(builtinQuestions(), builtinWeights)
	if err != nil {
		// The builtin list is defined at build time; a validation failure here
		// is a programming error.
		panic(err)
	}
	return c
}

func builtinQuestions() []domain.Question {
	return []domain.Question{
		{
			ID: "smoking", Ordinal: 1, Category: domain.CategoryBehavioral,
			Prompt: "How often do you smoke or use tobacco products?",
			Options: []domain.Option{
				{Label: "Never", Points: 0},
				{Label: "I quit more than a year ago", Points: 1},
				{Label: "Occasionally", Points: 2},
				{Label: "Daily", Points: 3},
			},
		},
		{
			ID: "exercise", Ordinal: 2, Category: domain.CategoryBehavioral,
			Prompt: "How often do you get at least 30 minutes of physical activity?",
			Options: []domain.Option{
				{Label: "Most days", Points: 0},
				{Label: "A few times a week", Points: 1},
				{Label: "A few times a month", Points: 2},
				{Label: "Rarely or never", Points: 3},
			},
		},
		{
			ID: "diet", Ordinal: 3, Category: domain.CategoryBehavioral,
			Prompt: "How many servings of fruits and vegetables do you eat on a typical day?",
			Options: []domain.Option{
				{Label: "Five or more", Points: 0},
				{Label: "Three or four", Points: 1},
				{Label: "One or two", Points: 2},
				{Label: "None", Points: 3},
			},
		},
		{
			ID: "alcohol", Ordinal: 4, Category: domain.CategoryBehavioral,
			Prompt: "How would you describe your alcohol consumption?",
			Options: []domain.Option{
				{Label: "None", Points: 0},
				{Label: "Moderate (within recommended limits)", Points: 1},
				{Label: "More than recommended limits", Points: 2},
			},
		},
		{
			ID: "bp-check", Ordinal: 5, Category: domain.CategoryKnowledge,
			Prompt: "When did you last have your blood pressure checked?",
			Options: []domain.Option{
				{Label: "Within the last year", Points: 0},
				{Label: "More than a year ago", Points: 1},
				{Label: "Never, or I don't remember", Points: 2},
			},
		},
		{
			ID: "warning-signs", Ordinal: 6, Category: domain.CategoryKnowledge,
			Prompt: "How familiar are you with the warning signs of a heart attack or stroke?",
			Options: []domain.Option{
				{Label: "Very familiar", Points: 0},
				{Label: "Somewhat familiar", Points: 1},
				{Label: "Not familiar at all", Points: 2},
			},
		},
		{
			ID: "air-quality", Ordinal: 7, Category: domain.CategoryEnvironmental,
			Prompt: "How would you rate the air quality where you live?",
			Options: []domain.Option{
				{Label: "Good", Points: 0},
				{Label: "Moderate", Points: 1},
				{Label: "Poor", Points: 2},
			},
		},
		{
			ID: "secondhand-smoke", Ordinal: 8, Category: domain.CategoryEnvironmental,
			Prompt: "How often are you exposed to secondhand smoke?",
			Options: []domain.Option{
				{Label: "Never", Points: 0},
				{Label: "Sometimes", Points: 1},
				{Label: "Daily", Points: 2},
			},
		},
		{
			ID: "work-hazards", Ordinal: 9, Category: domain.CategoryEnvironmental,
			Prompt: "Does your work expose you to dust, fumes, chemicals, or loud noise?",
			Options: []domain.Option{
				{Label: "No", Points: 0},
				{Label: "Occasionally", Points: 1},
				{Label: "Frequently", Points: 2},
			},
		},
		{
			ID: "care-access", Ordinal: 10, Category: domain.CategorySocioeconomic,
			Prompt: "How easy is it for you to see a doctor when you need one?",
			Options: []domain.Option{
				{Label: "Easy", Points: 0},
				{Label: "Difficult", Points: 1},
				{Label: "I have no regular access to care", Points: 2},
			},
		},
		{
			ID: "insurance", Ordinal: 11, Category: domain.CategorySocioeconomic,
			Prompt: "Do you currently have health insurance?",
			Options: []domain.Option{
				{Label: "Yes", Points: 0},
				{Label: "No", Points: 1},
			},
		},
		{
			ID: "food-budget", Ordinal: 12, Category: domain.CategorySocioeconomic,
			Prompt: "How often does your budget limit the food choices you can make?",
			Options: []domain.Option{
				{Label: "Rarely or never", Points: 0},
				{Label: "Often", Points: 1},
			},
		},
	}
}
