package confidence_test

import (
	"math"
	"testing"
	"time"

	"github.com/SwarupShekhar/ENGAPP/internal/confidence"
	"github.com/SwarupShekhar/ENGAPP/pkg/types"
)

func TestCalculate_ShortSampleWorkedExample(t *testing.T) {
	t.Parallel()

	// 10 words, quality 95, 5 seconds of audio. Pronunciation base 0.95,
	// sample factor 5/30 = 0.167 < 0.2, halved to 0.083: final ≈ 0.079.
	sig := types.AudioSignal{Quality: 95, Duration: 5 * time.Second, WordCount: 10}

	p := confidence.Calculate(sig).ByMetric[types.MetricPronunciation]

	if math.Abs(p.Score-7.9) > 0.1 {
		t.Errorf("pronunciation Score = %v, want ≈7.9", p.Score)
	}
	if p.Level != types.ConfidenceLow {
		t.Errorf("pronunciation Level = %q, want LOW", p.Level)
	}
	if math.Abs(p.MarginOfError-13.8) > 0.1 {
		t.Errorf("MarginOfError = %v, want ≈13.8", p.MarginOfError)
	}
}

func TestCalculate_AmpleSampleHighQuality(t *testing.T) {
	t.Parallel()

	sig := types.AudioSignal{Quality: 95, Duration: 60 * time.Second, WordCount: 150}
	profile := confidence.Calculate(sig)

	for _, m := range []types.Metric{types.MetricPronunciation, types.MetricFluency, types.MetricGrammar} {
		c := profile.ByMetric[m]
		if c.Score != 95 {
			t.Errorf("%s Score = %v, want 95 (full sample, top quality band)", m, c.Score)
		}
		if c.Level != types.ConfidenceHigh {
			t.Errorf("%s Level = %q, want HIGH", m, c.Level)
		}
	}
	if profile.Overall.Level != types.ConfidenceHigh {
		t.Errorf("Overall.Level = %q, want HIGH", profile.Overall.Level)
	}
}

func TestCalculate_QualityBands(t *testing.T) {
	t.Parallel()

	cases := []struct {
		quality float64
		want    float64
	}{
		{95, 95},
		{80, 85},
		{65, 70},
		{40, 50},
	}
	for _, tc := range cases {
		sig := types.AudioSignal{Quality: tc.quality, Duration: time.Minute, WordCount: 100}
		got := confidence.Calculate(sig).ByMetric[types.MetricPronunciation]
		if got.Score != tc.want {
			t.Errorf("quality %v: Score = %v, want %v", tc.quality, got.Score, tc.want)
		}
	}
}

func TestCalculate_VocabularySharesGrammarConfidence(t *testing.T) {
	t.Parallel()

	sig := types.AudioSignal{Quality: 85, Duration: 20 * time.Second, WordCount: 35}
	profile := confidence.Calculate(sig)

	if profile.ByMetric[types.MetricVocabulary] != profile.ByMetric[types.MetricGrammar] {
		t.Errorf("vocabulary confidence %+v != grammar confidence %+v",
			profile.ByMetric[types.MetricVocabulary], profile.ByMetric[types.MetricGrammar])
	}
}

func TestCalculate_OverallWeighting(t *testing.T) {
	t.Parallel()

	sig := types.AudioSignal{Quality: 80, Duration: 40 * time.Second, WordCount: 30}
	profile := confidence.Calculate(sig)

	p := profile.ByMetric[types.MetricPronunciation].Score
	f := profile.ByMetric[types.MetricFluency].Score
	g := profile.ByMetric[types.MetricGrammar].Score
	want := p*0.4 + f*0.3 + g*0.3

	if math.Abs(profile.Overall.Score-want) > 1e-9 {
		t.Errorf("Overall.Score = %v, want %v (40/30/30 weighting)", profile.Overall.Score, want)
	}
}

func TestCalculate_MarginMonotoneInQualityAndSample(t *testing.T) {
	t.Parallel()

	margin := func(quality float64, dur time.Duration) float64 {
		sig := types.AudioSignal{Quality: quality, Duration: dur, WordCount: 100}
		return confidence.Calculate(sig).ByMetric[types.MetricPronunciation].MarginOfError
	}

	// Fixed sample, rising quality: margin never widens.
	prev := math.Inf(1)
	for _, q := range []float64{40, 65, 80, 95} {
		m := margin(q, 20*time.Second)
		if m > prev {
			t.Errorf("margin widened from %v to %v as quality rose to %v", prev, m, q)
		}
		prev = m
	}

	// Fixed quality, rising sample: margin never widens.
	prev = math.Inf(1)
	for _, d := range []time.Duration{3 * time.Second, 10 * time.Second, 30 * time.Second, 90 * time.Second} {
		m := margin(95, d)
		if m > prev {
			t.Errorf("margin widened from %v to %v as duration rose to %v", prev, m, d)
		}
		prev = m
	}
}
