package sentiment

// Default keyword lists for the scorer, drawn from financial sentiment
// dictionaries (Loughran-McDonald style). Both lists are lowercase and
// disjoint; config may override them.

func DefaultPositiveKeywords() []string {
	return []string{
		"achieve", "beat", "benefit", "better", "bullish", "buyback",
		"competitive", "delight", "enhance", "excellent", "exceptional",
		"expand", "expansion", "favorable", "gain", "gains", "good", "great",
		"grew", "growth", "improve", "improved", "improvement", "innovation",
		"innovative", "leader", "leading", "opportunity", "optimistic",
		"outperform", "positive", "profit", "profitable", "progress", "rally",
		"record", "remarkable", "robust", "solid", "soar", "strength",
		"strong", "succeed", "success", "successful", "superior", "surge",
		"surpass", "upbeat", "upgrade", "valuable", "win", "winning",
	}
}

func DefaultNegativeKeywords() []string {
	return []string{
		"adverse", "bearish", "challenge", "challenging", "concern",
		"concerns", "crash", "crisis", "damage", "decline", "decrease",
		"deficit", "deteriorate", "difficult", "disappoint", "disappointing",
		"downgrade", "downturn", "drop", "fail", "failure", "falling", "fear",
		"fraud", "headwind", "impair", "inadequate", "investigation",
		"lawsuit", "layoff", "layoffs", "loss", "losses", "miss", "negative",
		"obstacle", "plunge", "poor", "problem", "recession", "restructuring",
		"risk", "risks", "sell-off", "slowdown", "slump", "tumble",
		"uncertain", "uncertainty", "underperform", "unfavorable", "volatile",
		"volatility", "weak", "weakness", "worse", "worst",
	}
}
