package services

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/gosimple/slug"

	"github.com/vytor/codetrail/internal/errors"
	"github.com/vytor/codetrail/internal/judge"
	"github.com/vytor/codetrail/internal/logger"
	"github.com/vytor/codetrail/internal/models"
	"github.com/vytor/codetrail/internal/ollama"
)

const (
	defaultGenerateTopic    = "algorithms"
	defaultGenerateLanguage = "python"
	defaultGenerateTimeout  = 60 * time.Second

	// Titles or descriptions sharing at least this share of words with an
	// existing challenge count as duplicates.
	duplicateSimilarity = 0.8
	maxExistingScan     = 1000

	generatorSystemPrompt = "You are an expert programming instructor who writes clear, self-contained coding challenges."
)

var defName = regexp.MustCompile(`^\s*def\s+([A-Za-z_]\w*)\s*\(([^)]*)\)`)

// ChallengeOption configures optional parts of the challenge service.
type ChallengeOption func(*challengeService)

// WithGenerator lets Generate ask client for new challenges. Without it every
// generated challenge comes from the built-in set.
func WithGenerator(client ollama.ClientInterface, timeout time.Duration) ChallengeOption {
	return func(s *challengeService) {
		s.generator = client
		if timeout > 0 {
			s.generateTimeout = timeout
		}
	}
}

type generatedChallenge struct {
	Title        string            `json:"title"`
	Description  string            `json:"description"`
	InputFormat  string            `json:"input_format"`
	OutputFormat string            `json:"output_format"`
	Template     string            `json:"template"`
	Examples     []models.TestCase `json:"examples"`
}

func (s *challengeService) Generate(ctx context.Context, difficulty, topic, language string) (*models.Challenge, error) {
	log := logger.FromContext(ctx).WithPrefix("challenge-generator")

	difficulty = strings.ToLower(strings.TrimSpace(difficulty))
	if difficulty == "" {
		difficulty = "easy"
	}
	if _, ok := defaultChallengeXP[difficulty]; !ok {
		return nil, errors.NewValidationError("difficulty", "use easy, medium or hard")
	}
	topic = strings.ToLower(strings.TrimSpace(topic))
	if topic == "" {
		topic = defaultGenerateTopic
	}
	language = strings.ToLower(strings.TrimSpace(language))
	if language == "" {
		language = defaultGenerateLanguage
	}

	existing, err := s.repo.List(ctx, models.ChallengeFilter{Limit: maxExistingScan})
	if err != nil {
		log.Error("failed to load existing challenges: %v", err)
		return nil, errors.NewInternalError(err)
	}

	var gen *generatedChallenge
	if s.generator != nil {
		gen, err = s.askModel(ctx, difficulty, topic, language, existing)
		if err != nil {
			log.Warn("model generation failed, using built-in challenge: %v", err)
			gen = nil
		}
	}
	if gen == nil {
		gen = fallbackChallenge(topic, difficulty)
		if dup := duplicateOf(gen.Title, gen.Description, existing); dup != "" {
			return nil, errors.NewConflictError(fmt.Sprintf("no new %s %s challenge available: %q already exists", difficulty, topic, dup))
		}
	}

	c := models.Challenge{
		ID:           slug.Make(gen.Title),
		Title:        gen.Title,
		Description:  gen.Description,
		InputFormat:  gen.InputFormat,
		OutputFormat: gen.OutputFormat,
		Difficulty:   difficulty,
		Topic:        topic,
		Language:     language,
		Template:     stubTemplate(gen.Template),
		Examples:     gen.Examples,
	}
	log.Info("generated challenge %s (%s, %s)", c.ID, difficulty, topic)
	return s.ImportChallenge(ctx, c)
}

func (s *challengeService) askModel(ctx context.Context, difficulty, topic, language string, existing []models.Challenge) (*generatedChallenge, error) {
	callCtx, cancel := context.WithTimeout(ctx, s.generateTimeout)
	defer cancel()

	reply, err := s.generator.Chat(callCtx, []ollama.Message{
		{Role: "system", Content: generatorSystemPrompt},
		{Role: "user", Content: generatePrompt(difficulty, topic, language, existing)},
	})
	if err != nil {
		return nil, err
	}

	obj, ok := judge.ExtractJSONObject(reply)
	if !ok {
		return nil, fmt.Errorf("no JSON found in reply")
	}
	var gen generatedChallenge
	if err := json.Unmarshal([]byte(obj), &gen); err != nil {
		return nil, fmt.Errorf("invalid challenge JSON: %w", err)
	}
	gen.Title = strings.TrimSpace(gen.Title)
	gen.Description = strings.TrimSpace(gen.Description)
	if gen.Title == "" || gen.Description == "" || len(gen.Examples) == 0 {
		return nil, fmt.Errorf("reply is missing title, description or examples")
	}
	if dup := duplicateOf(gen.Title, gen.Description, existing); dup != "" {
		return nil, fmt.Errorf("%q is too close to existing challenge %q", gen.Title, dup)
	}
	return &gen, nil
}

func generatePrompt(difficulty, topic, language string, existing []models.Challenge) string {
	titles := make([]string, len(existing))
	for i, c := range existing {
		titles[i] = c.Title
	}

	var b strings.Builder
	b.WriteString("Generate one coding challenge with the following specifications:\n")
	fmt.Fprintf(&b, "- Difficulty: %s\n- Topic: %s\n- Language: %s\n\n", difficulty, topic, language)
	if len(titles) > 0 {
		fmt.Fprintf(&b, "Do NOT repeat or closely imitate any of these existing challenges:\n%s\n\n", strings.Join(titles, ", "))
	}
	b.WriteString(`The template must contain ONLY the function signature, a docstring and a "# Your code here" placeholder. No working code.

Return ONLY a valid JSON object with this exact structure:
{
    "title": "Challenge title",
    "description": "Detailed problem description",
    "input_format": "Description of input format",
    "output_format": "Description of output format",
    "template": "def function_name(params):\n    \"\"\"Docstring\"\"\"\n    # Your code here\n    pass",
    "examples": [
        {"input": "input value", "output": "expected output"}
    ]
}
`)
	return b.String()
}

// duplicateOf returns the title of the first existing challenge that title or
// description is too close to, or "".
func duplicateOf(title, description string, existing []models.Challenge) string {
	id := slug.Make(title)
	for _, c := range existing {
		if c.ID == id || strings.EqualFold(strings.TrimSpace(c.Title), title) {
			return c.Title
		}
		if wordSimilarity(c.Title, title) >= duplicateSimilarity ||
			wordSimilarity(c.Description, description) >= duplicateSimilarity {
			return c.Title
		}
	}
	return ""
}

// wordSimilarity is the Jaccard index of the lowercased word sets of a and b.
func wordSimilarity(a, b string) float64 {
	wa := models.NewStringSet(strings.Fields(strings.ToLower(a))...)
	wb := models.NewStringSet(strings.Fields(strings.ToLower(b))...)
	if wa.Len() == 0 || wb.Len() == 0 {
		return 0
	}
	shared := 0
	for w := range wa {
		if wb.Has(w) {
			shared++
		}
	}
	return float64(shared) / float64(wa.Len()+wb.Len()-shared)
}

// stubTemplate keeps template unless it already reads as a full solution, in
// which case only the signature survives.
func stubTemplate(template string) string {
	template = strings.TrimRight(template, " \n")
	if template == "" {
		return "def solve():\n    # Your code here\n    pass"
	}
	if ok, _ := (judge.Prefilter{MinLines: 3}).Check(template); !ok {
		return template
	}
	name, params := "solve", ""
	if m := defName.FindStringSubmatch(template); m != nil {
		name, params = m[1], m[2]
	}
	return fmt.Sprintf("def %s(%s):\n    # Your code here\n    pass", name, params)
}
