package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/rs/zerolog"
	"google.golang.org/genai"

	"github.com/Aashish23092/ghost-shift-audit/dto"
)

const defaultGeminiModel = "gemini-2.0-flash"

var jsonArrayPattern = regexp.MustCompile(`(?s)\[.*\]`)

// GeminiVerifier asks a Gemini model to check OCR-extracted sign-in rows
// against the sheet image.
type GeminiVerifier struct {
	client *genai.Client
	model  string
	logger *zerolog.Logger
}

func NewGeminiVerifier(ctx context.Context, apiKey, model string, logger *zerolog.Logger) (*GeminiVerifier, error) {
	if apiKey == "" {
		return nil, errors.New("gemini API key is required")
	}
	if model == "" {
		model = defaultGeminiModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	return &GeminiVerifier{
		client: client,
		model:  model,
		logger: logger,
	}, nil
}

// Verify returns the corrected entries. Any failure returns the input
// entries unchanged together with the error, so callers can log and
// continue with the OCR result.
func (g *GeminiVerifier) Verify(ctx context.Context, imageData []byte, mimeType string, entries []dto.PaperLogEntry) ([]dto.PaperLogEntry, error) {
	if len(entries) == 0 {
		return entries, nil
	}

	prompt, err := buildVerificationPrompt(entries)
	if err != nil {
		return entries, err
	}

	parts := []*genai.Part{genai.NewPartFromText(prompt)}
	if len(imageData) > 0 {
		parts = append(parts, genai.NewPartFromBytes(imageData, mimeType))
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model,
		[]*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)},
		&genai.GenerateContentConfig{ResponseMIMEType: "application/json"},
	)
	if err != nil {
		return entries, fmt.Errorf("gemini request failed: %w", err)
	}

	verified, err := parseVerifiedEntries(resp.Text())
	if err != nil {
		return entries, err
	}

	merged := mergeVerified(entries, verified)
	g.logger.Debug().Int("entries", len(merged)).Str("model", g.model).Msg("Gemini verification complete")
	return merged, nil
}

func buildVerificationPrompt(entries []dto.PaperLogEntry) (string, error) {
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal entries: %w", err)
	}

	var sb strings.Builder
	sb.WriteString("You are a data validation specialist reviewing a handwritten shift sign-in sheet.\n\n")
	sb.WriteString("OCR extracted these rows:\n")
	sb.Write(data)
	sb.WriteString("\n\nCompare them with the attached image and:\n")
	sb.WriteString("1. Fill in fields the OCR missed\n")
	sb.WriteString("2. Correct misread names and times\n")
	sb.WriteString("3. Use HH:MM 24-hour format for every time\n")
	sb.WriteString("4. Capitalize names properly\n")
	sb.WriteString("5. Keep each row's line_number unchanged\n\n")
	sb.WriteString("Return ONLY a JSON array with the same fields. No explanation.")
	return sb.String(), nil
}

func parseVerifiedEntries(text string) ([]dto.PaperLogEntry, error) {
	match := jsonArrayPattern.FindString(text)
	if match == "" {
		return nil, errors.New("gemini response contained no JSON array")
	}

	var entries []dto.PaperLogEntry
	if err := json.Unmarshal([]byte(match), &entries); err != nil {
		return nil, fmt.Errorf("failed to decode gemini response: %w", err)
	}
	return entries, nil
}

// mergeVerified applies corrections by line number. Rows the model invented
// are dropped and raw text always comes from the OCR pass.
func mergeVerified(original, verified []dto.PaperLogEntry) []dto.PaperLogEntry {
	byLine := make(map[int]dto.PaperLogEntry, len(verified))
	for _, v := range verified {
		byLine[v.LineNumber] = v
	}

	out := make([]dto.PaperLogEntry, len(original))
	for i, o := range original {
		out[i] = o
		v, ok := byLine[o.LineNumber]
		if !ok {
			continue
		}
		if name := strings.TrimSpace(v.ExtractedName); name != "" {
			out[i].ExtractedName = name
		}
		if in := strings.TrimSpace(v.ExtractedTimeIn); in != "" {
			out[i].ExtractedTimeIn = in
		}
		if v.ExtractedTimeOut != nil {
			out[i].ExtractedTimeOut = v.ExtractedTimeOut
		}
		if v.Supervisor != nil {
			out[i].Supervisor = v.Supervisor
		}
		if v.SignaturePresent != nil {
			out[i].SignaturePresent = v.SignaturePresent
		}
	}
	return out
}
