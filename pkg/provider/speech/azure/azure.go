// Package azure provides a pronunciation assessment provider backed by
// the Azure Speech service WebSocket API. It implements the
// speech.Provider interface.
package azure

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/coder/websocket"

	"github.com/SwarupShekhar/ENGAPP/pkg/provider/speech"
	"github.com/SwarupShekhar/ENGAPP/pkg/types"
)

const (
	endpointFormat = "wss://%s.stt.speech.microsoft.com/speech/recognition/conversation/cognitiveservices/v1"

	defaultLanguage          = "en-US"
	defaultSampleRate        = 16000
	defaultPhonemeCandidates = 5

	// audioChunkSize is the size of each binary frame sent upstream.
	audioChunkSize = 8192

	// tick is the Azure time unit: 100ns.
	tick = 100 * time.Nanosecond
)

// Option is a functional option for configuring the azure Provider.
type Option func(*Provider)

// WithLanguage sets the default recognition language.
func WithLanguage(language string) Option {
	return func(p *Provider) {
		p.language = language
	}
}

// WithPhonemeAlphabet sets the phoneme alphabet requested from the
// service ("IPA" or "SAPI"). Default: "IPA".
func WithPhonemeAlphabet(alphabet string) Option {
	return func(p *Provider) {
		p.alphabet = alphabet
	}
}

// Provider implements speech.Provider backed by Azure Speech.
type Provider struct {
	key      string
	region   string
	language string
	alphabet string
}

// New creates a new azure Provider. key and region must be non-empty.
func New(key, region string, opts ...Option) (*Provider, error) {
	if key == "" {
		return nil, errors.New("azure: key must not be empty")
	}
	if region == "" {
		return nil, errors.New("azure: region must not be empty")
	}
	p := &Provider{
		key:      key,
		region:   region,
		language: defaultLanguage,
		alphabet: "IPA",
	}
	for _, o := range opts {
		o(p)
	}
	return p, nil
}

// assessmentParams is the pronunciation assessment configuration sent
// in the Pronunciation-Assessment header, base64-encoded JSON.
type assessmentParams struct {
	ReferenceText   string `json:"ReferenceText"`
	GradingSystem   string `json:"GradingSystem"`
	Granularity     string `json:"Granularity"`
	PhonemeAlphabet string `json:"PhonemeAlphabet"`
	NBestPhonemes   int    `json:"NBestPhonemeCount"`
	EnableProsody   bool   `json:"EnableProsodyAssessment"`
}

// Assess implements speech.Provider. It opens a WebSocket session,
// streams the audio, and blocks until the service delivers the final
// phrase result.
func (p *Provider) Assess(ctx context.Context, audio []byte, cfg speech.AssessConfig) (*speech.Result, error) {
	if len(audio) == 0 {
		return nil, errors.New("azure: empty audio")
	}

	wsURL, err := p.buildURL(cfg)
	if err != nil {
		return nil, fmt.Errorf("azure: build URL: %w", err)
	}

	candidates := cfg.PhonemeCandidates
	if candidates <= 0 {
		candidates = defaultPhonemeCandidates
	}
	params, err := json.Marshal(assessmentParams{
		ReferenceText:   cfg.ReferenceText,
		GradingSystem:   "HundredMark",
		Granularity:     "Phoneme",
		PhonemeAlphabet: p.alphabet,
		NBestPhonemes:   candidates,
		EnableProsody:   true,
	})
	if err != nil {
		return nil, fmt.Errorf("azure: marshal assessment params: %w", err)
	}

	headers := http.Header{}
	headers.Set("Ocp-Apim-Subscription-Key", p.key)
	headers.Set("Pronunciation-Assessment", base64.StdEncoding.EncodeToString(params))

	conn, _, err := websocket.Dial(ctx, wsURL, &websocket.DialOptions{
		HTTPHeader: headers,
	})
	if err != nil {
		return nil, fmt.Errorf("azure: dial: %w", err)
	}

	sess := &session{
		conn:   conn,
		result: make(chan *speech.Result, 1),
		errc:   make(chan error, 1),
		done:   make(chan struct{}),
	}

	sess.wg.Add(1)
	go sess.readLoop(ctx)
	defer sess.close()

	if err := sess.sendAudio(ctx, audio); err != nil {
		return nil, fmt.Errorf("azure: send audio: %w", err)
	}

	select {
	case r := <-sess.result:
		return r, nil
	case err := <-sess.errc:
		return nil, fmt.Errorf("azure: %w", err)
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (p *Provider) buildURL(cfg speech.AssessConfig) (string, error) {
	u, err := url.Parse(fmt.Sprintf(endpointFormat, p.region))
	if err != nil {
		return "", err
	}

	lang := cfg.Language
	if lang == "" {
		lang = p.language
	}

	q := u.Query()
	q.Set("language", lang)
	q.Set("format", "detailed")
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// ---- session ----

// phraseResponse is the JSON structure of a speech.phrase message with
// detailed pronunciation assessment enabled.
type phraseResponse struct {
	RecognitionStatus string `json:"RecognitionStatus"`
	DisplayText       string `json:"DisplayText"`
	Duration          int64  `json:"Duration"`
	NBest             []struct {
		Display                 string `json:"Display"`
		PronunciationAssessment struct {
			AccuracyScore     float64 `json:"AccuracyScore"`
			FluencyScore      float64 `json:"FluencyScore"`
			ProsodyScore      float64 `json:"ProsodyScore"`
			CompletenessScore float64 `json:"CompletenessScore"`
			PronScore         float64 `json:"PronScore"`
		} `json:"PronunciationAssessment"`
		Words []struct {
			Word                    string `json:"Word"`
			Offset                  int64  `json:"Offset"`
			Duration                int64  `json:"Duration"`
			PronunciationAssessment struct {
				AccuracyScore float64 `json:"AccuracyScore"`
				ErrorType     string  `json:"ErrorType"`
			} `json:"PronunciationAssessment"`
			Phonemes []struct {
				Phoneme                 string `json:"Phoneme"`
				Offset                  int64  `json:"Offset"`
				Duration                int64  `json:"Duration"`
				PronunciationAssessment struct {
					AccuracyScore float64 `json:"AccuracyScore"`
					NBestPhonemes []struct {
						Phoneme string `json:"Phoneme"`
					} `json:"NBestPhonemes"`
				} `json:"PronunciationAssessment"`
			} `json:"Phonemes"`
		} `json:"Words"`
	} `json:"NBest"`
}

// session is one live assessment exchange.
type session struct {
	conn   *websocket.Conn
	result chan *speech.Result
	errc   chan error

	done chan struct{}
	once sync.Once
	wg   sync.WaitGroup
}

// sendAudio streams the PCM payload in fixed-size binary frames,
// terminated by an empty frame signalling end of audio.
func (s *session) sendAudio(ctx context.Context, audio []byte) error {
	for off := 0; off < len(audio); off += audioChunkSize {
		end := min(off+audioChunkSize, len(audio))
		if err := s.conn.Write(ctx, websocket.MessageBinary, audio[off:end]); err != nil {
			return err
		}
	}
	return s.conn.Write(ctx, websocket.MessageBinary, nil)
}

func (s *session) close() {
	s.once.Do(func() {
		close(s.done)
		s.conn.Close(websocket.StatusNormalClosure, "assessment complete")
		s.wg.Wait()
	})
}

// readLoop receives JSON messages until the final phrase arrives.
func (s *session) readLoop(ctx context.Context) {
	defer s.wg.Done()

	for {
		_, msg, err := s.conn.Read(ctx)
		if err != nil {
			select {
			case s.errc <- err:
			case <-s.done:
			}
			return
		}

		r, ok := parsePhrase(msg)
		if !ok {
			continue
		}
		select {
		case s.result <- r:
		case <-s.done:
		}
		return
	}
}

// parsePhrase parses a raw message into a Result. Returns (nil, false)
// for interim messages that should be ignored.
func parsePhrase(data []byte) (*speech.Result, bool) {
	var resp phraseResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, false
	}
	if resp.RecognitionStatus != "Success" || len(resp.NBest) == 0 {
		return nil, false
	}

	best := resp.NBest[0]
	words := make([]types.WordObservation, 0, len(best.Words))
	for _, w := range best.Words {
		wo := types.WordObservation{
			Text:          w.Word,
			AccuracyScore: w.PronunciationAssessment.AccuracyScore,
			ErrorKind:     errorKind(w.PronunciationAssessment.ErrorType),
			Offset:        time.Duration(w.Offset) * tick,
			Duration:      time.Duration(w.Duration) * tick,
		}
		for _, ph := range w.Phonemes {
			po := types.PhonemeObservation{
				Expected:      ph.Phoneme,
				AccuracyScore: ph.PronunciationAssessment.AccuracyScore,
				Offset:        time.Duration(ph.Offset) * tick,
				Duration:      time.Duration(ph.Duration) * tick,
			}
			for rank, c := range ph.PronunciationAssessment.NBestPhonemes {
				po.Candidates = append(po.Candidates, types.PhonemeCandidate{
					Symbol: c.Phoneme,
					Rank:   rank,
				})
			}
			// A service that returns no candidate list still heard
			// something; fall back to the expected symbol as rank 0.
			if len(po.Candidates) == 0 {
				po.Candidates = []types.PhonemeCandidate{{Symbol: ph.Phoneme, Rank: 0}}
			}
			wo.Phonemes = append(wo.Phonemes, po)
		}
		words = append(words, wo)
	}

	pa := best.PronunciationAssessment
	return &speech.Result{
		Transcript: types.Transcript{
			Text:     best.Display,
			Words:    words,
			Duration: time.Duration(resp.Duration) * tick,
		},
		PronunciationScore: pa.PronScore,
		AccuracyScore:      pa.AccuracyScore,
		FluencyScore:       pa.FluencyScore,
		ProsodyScore:       pa.ProsodyScore,
		CompletenessScore:  pa.CompletenessScore,
	}, true
}

func errorKind(errorType string) types.ErrorKind {
	switch errorType {
	case "Omission":
		return types.ErrorOmission
	case "Insertion":
		return types.ErrorInsertion
	case "Mispronunciation":
		return types.ErrorMispronunciation
	default:
		return types.ErrorNone
	}
}
