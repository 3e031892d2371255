package describer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"mine-guard/internal/domain/entity"
	"mine-guard/internal/domain/port"
)

const DefaultGeminiModel = "gemini-1.5-flash"

const geminiInstruction = `Ты помощник диспетчера горного предприятия. На вход приходит кадр с камеры
с уже размеченными опасностями и их список в JSON. Дай короткую сводку на русском (не больше 3 предложений):
что найдено, где на кадре и что делать бригаде. Не придумывай опасностей, которых нет в списке.`

// Gemini описывает кадр через Gemini API.
type Gemini struct {
	APIKey string
	Model  string
}

func NewGemini(apiKey, model string) *Gemini {
	model = strings.TrimSpace(model)
	if model == "" {
		model = DefaultGeminiModel
	}
	return &Gemini{APIKey: strings.TrimSpace(apiKey), Model: model}
}

func (g *Gemini) Describe(ctx context.Context, analysis *entity.FrameAnalysis) (*entity.HazardSummary, error) {
	if g.APIKey == "" {
		return nil, errors.New("GEMINI_API_KEY is empty")
	}
	if analysis == nil {
		return nil, fmt.Errorf("describe: analysis is nil")
	}

	cl, err := genai.NewClient(ctx, option.WithAPIKey(g.APIKey))
	if err != nil {
		return nil, err
	}
	defer cl.Close()

	m := cl.GenerativeModel(g.Model)
	if m == nil {
		return nil, fmt.Errorf("gemini: model is nil")
	}
	m.GenerationConfig = genai.GenerationConfig{Temperature: ptrFloat32(0.2)}
	m.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(geminiInstruction)}}

	detections, err := json.Marshal(analysis.Detections)
	if err != nil {
		return nil, fmt.Errorf("gemini describe: %w", err)
	}
	parts := []genai.Part{
		genai.Text(fmt.Sprintf("Уровень риска: %s. Детекции: %s", analysis.RiskLevel, detections)),
	}
	if len(analysis.AnnotatedImage) > 0 {
		parts = append(parts, &genai.Blob{MIMEType: "image/jpeg", Data: analysis.AnnotatedImage})
	}

	// Ретраи на случай транзиентных сбоёв
	var lastErr error
	for attempt := 1; attempt <= 3; attempt++ {
		resp, err := m.GenerateContent(ctx, parts...)
		if err != nil {
			lastErr = err
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(time.Duration(attempt) * 300 * time.Millisecond):
			}
			continue
		}
		txt := strings.TrimSpace(firstText(resp))
		if txt == "" {
			return nil, fmt.Errorf("gemini describe: empty response")
		}
		return &entity.HazardSummary{Text: txt}, nil
	}
	return nil, lastErr
}

func firstText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}
	for _, c := range resp.Candidates {
		if c.Content == nil {
			continue
		}
		for _, p := range c.Content.Parts {
			if t, ok := p.(genai.Text); ok {
				return string(t)
			}
		}
	}
	return ""
}

func ptrFloat32(v float32) *float32 { return &v }

var _ port.HazardDescriber = (*Gemini)(nil)
