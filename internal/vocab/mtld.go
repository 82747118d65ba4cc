package vocab

// mtldTTRThreshold is the type-token ratio at which a diversity factor
// completes. 0.72 is the standard value from the MTLD literature.
const mtldTTRThreshold = 0.72

// mtldMinTokens is the smallest sample MTLD is computed on; shorter
// inputs fall back to the TTR heuristic.
const mtldMinTokens = 10

// mtld computes the Measure of Textual Lexical Diversity: the mean
// number of tokens it takes for the running type-token ratio to decay
// to the threshold, averaged over a forward and a backward pass. Higher
// means more diverse, and unlike raw TTR the measure is largely
// insensitive to text length.
func mtld(tokens []string) float64 {
	forward := mtldPass(tokens)
	backward := mtldPass(reversed(tokens))
	return (forward + backward) / 2
}

func mtldPass(tokens []string) float64 {
	var factors float64
	types := make(map[string]struct{})
	count := 0
	ttr := 1.0

	for _, tok := range tokens {
		count++
		types[tok] = struct{}{}
		ttr = float64(len(types)) / float64(count)
		if ttr <= mtldTTRThreshold {
			factors++
			types = make(map[string]struct{})
			count = 0
			ttr = 1.0
		}
	}

	// Partial factor for the remainder.
	if count > 0 {
		factors += (1 - ttr) / (1 - mtldTTRThreshold)
	}
	// No decay observed at all: every token distinct, maximal diversity.
	if factors == 0 {
		return 100
	}
	return float64(len(tokens)) / factors
}

func reversed(tokens []string) []string {
	out := make([]string, len(tokens))
	for i, t := range tokens {
		out[len(tokens)-1-i] = t
	}
	return out
}

// rangeScore maps a diversity measurement onto the 0–100 scale through
// fixed bands (below 50 poor, 50–70 fair, 70–90 good, above 90
// excellent). Samples too short for MTLD use a scaled type-token ratio
// instead.
func rangeScore(tokens []string) float64 {
	if len(tokens) < mtldMinTokens {
		types := make(map[string]struct{}, len(tokens))
		for _, t := range tokens {
			types[t] = struct{}{}
		}
		ttr := float64(len(types)) / float64(len(tokens))
		return min(100, ttr*150)
	}

	m := mtld(tokens)
	switch {
	case m < 50:
		return max(10, m/50*40)
	case m < 70:
		return 40 + (m-50)/20*30
	case m < 90:
		return 70 + (m-70)/20*20
	default:
		return 90 + min((m-90)/10, 10)
	}
}
