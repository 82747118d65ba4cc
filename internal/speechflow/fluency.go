package speechflow

import (
	"time"

	"github.com/montanaflynn/stats"
	"github.com/SwarupShekhar/ENGAPP/pkg/types"
)

// Fluency component weights.
const (
	flowWeight      = 0.35
	connectedWeight = 0.30
	prosodyWeight   = 0.20
	paceWeight      = 0.15
)

// FluencyInput carries the external estimates the recalibration starts
// from, alongside the timing evidence used to adjust them.
type FluencyInput struct {
	// BaseFluency is the recognizer's own 0–100 fluency estimate.
	BaseFluency float64

	// Prosody is the recognizer's 0–100 prosody estimate.
	Prosody float64

	// SpeechRateWPM is the measured words-per-minute rate.
	SpeechRateWPM float64

	// MidPhrasePauses counts pauses that fall inside a phrase rather
	// than at a natural boundary.
	MidPhrasePauses int

	// Transcript is the recognized text, consumed by the connected
	// speech analysis.
	Transcript string

	// Words is the word-level timing evidence.
	Words []types.WordObservation
}

// FluencyResult is the recalibrated fluency assessment.
type FluencyResult struct {
	Overall float64

	Flow        float64
	Prosody     float64
	PaceControl float64

	// Connected holds the full connected-speech sub-assessment; its
	// Score field is the component that feeds Overall.
	Connected ConnectedResult
}

// Recalibrate blends flow, connected speech, compressed prosody, and
// pace control into an overall fluency score, weighted 35/30/20/15.
func Recalibrate(in FluencyInput) FluencyResult {
	r := FluencyResult{
		Flow:        flowScore(in.BaseFluency, in.SpeechRateWPM, in.MidPhrasePauses),
		Connected:   AnalyzeConnected(in.Words, in.Transcript),
		Prosody:     compressProsody(in.Prosody),
		PaceControl: paceControl(wordDurationsMillis(in.Words)),
	}
	r.Overall = r.Flow*flowWeight +
		r.Connected.Score*connectedWeight +
		r.Prosody*prosodyWeight +
		r.PaceControl*paceWeight
	return r
}

// Breakdown returns the component scores keyed for a
// [types.DimensionScore].
func (r FluencyResult) Breakdown() map[string]float64 {
	return map[string]float64{
		"speech_flow":      r.Flow,
		"connected_speech": r.Connected.Score,
		"prosody":          r.Prosody,
		"pace_control":     r.PaceControl,
	}
}

// flowScore starts from the external fluency estimate and applies rate
// and pause penalties. Natural speakers sit between roughly 130 and 170
// words per minute; each mid-phrase pause costs 3 points up to a cap of
// 20. Floor is 0.
func flowScore(base, wpm float64, midPhrasePauses int) float64 {
	var rateAdjustment float64
	switch {
	case wpm >= 130 && wpm <= 170:
		rateAdjustment = 0
	case wpm < 100:
		rateAdjustment = -15
	case wpm > 200:
		rateAdjustment = -10
	default:
		rateAdjustment = -5
	}

	pausePenalty := min(float64(midPhrasePauses)*3, 20)

	return max(0, base+rateAdjustment-pausePenalty)
}

// compressProsody rescales the external prosody estimate, which runs
// 10 to 15 points high. Scores above 90 are compressed hardest so the
// output approaches 100 only for genuinely exceptional input.
func compressProsody(prosody float64) float64 {
	switch {
	case prosody >= 90:
		return 75 + (prosody-90)*0.5
	case prosody >= 70:
		return 60 + (prosody-70)*0.75
	default:
		return prosody * 0.85
	}
}

// paceControl scores natural pace variation from the coefficient of
// variation of word durations. A CV between 0.3 and 0.6 reads as
// natural; both metronomic and erratic pacing score lower.
func paceControl(durations []float64) float64 {
	if len(durations) == 0 {
		return 50
	}

	mean, err := stats.Mean(durations)
	if err != nil || mean <= 0 {
		return 50
	}
	sd, err := stats.StandardDeviation(durations)
	if err != nil {
		return 50
	}
	cv := sd / mean

	switch {
	case cv >= 0.3 && cv <= 0.6:
		return 80
	case (cv >= 0.2 && cv < 0.3) || (cv > 0.6 && cv <= 0.8):
		return 65
	default:
		return 50
	}
}

func wordDurationsMillis(words []types.WordObservation) []float64 {
	out := make([]float64, 0, len(words))
	for _, w := range words {
		if w.ErrorKind == types.ErrorOmission || w.Duration <= 0 {
			continue
		}
		out = append(out, float64(w.Duration)/float64(time.Millisecond))
	}
	return out
}
