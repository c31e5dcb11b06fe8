package problemgen

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"github.com/abhisek/kinderpath/internal/llm"
	"github.com/abhisek/kinderpath/internal/logger"
	"github.com/abhisek/kinderpath/internal/store"
)

// LLMGenerator implements Generator with one structured LLM call per batch.
type LLMGenerator struct {
	provider llm.Provider
	config   Config
	log      *logger.Logger
}

func New(provider llm.Provider, cfg Config, log *logger.Logger) *LLMGenerator {
	return &LLMGenerator{provider: provider, config: cfg, log: logger.OrNop(log)}
}

type problemSetOutput struct {
	Problems []Content `json:"problems"`
}

func (g *LLMGenerator) Generate(ctx context.Context, in GenerateInput) ([]store.Problem, error) {
	if in.Count <= 0 {
		return nil, nil
	}
	if g.config.MaxCount > 0 && in.Count > g.config.MaxCount {
		in.Count = g.config.MaxCount
	}
	ctx = llm.WithPurpose(ctx, "problem-gen")

	resp, err := g.provider.Generate(ctx, llm.Request{
		System:      systemPrompt,
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: buildUserMessage(in, g.config)}},
		Schema:      ProblemSetSchema,
		MaxTokens:   g.config.MaxTokens,
		Temperature: g.config.Temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("LLM generation failed: %w", err)
	}

	var out problemSetOutput
	if err := json.Unmarshal(resp.Content, &out); err != nil {
		return nil, fmt.Errorf("failed to parse LLM response: %w", err)
	}

	var problems []store.Problem
	var errs []error
	prior := append([]string(nil), in.PriorQuestions...)
	for i := range out.Problems {
		if len(problems) == in.Count {
			break
		}
		c := out.Problems[i]
		check := in
		check.PriorQuestions = prior
		if verr := g.validate(&c, check); verr != nil {
			g.log.Debug("dropped generated problem", "subskill", in.Subskill.ID, "reason", verr.Error())
			errs = append(errs, verr)
			continue
		}
		c.UnitID = in.Skill.UnitID
		payload, err := json.Marshal(c)
		if err != nil {
			return nil, fmt.Errorf("encode problem payload: %w", err)
		}
		prior = append(prior, c.Question)
		problems = append(problems, store.Problem{
			Subject:    in.Subject,
			UnitID:     in.Skill.UnitID,
			SkillID:    in.Skill.ID,
			SubskillID: in.Subskill.ID,
			Difficulty: math.Round(c.Difficulty*10) / 10,
			Payload:    payload,
		})
	}

	if len(problems) == 0 {
		if len(errs) == 0 {
			return nil, fmt.Errorf("LLM returned no problems")
		}
		return nil, fmt.Errorf("no generated problem passed validation: %w", errors.Join(errs...))
	}
	if len(errs) > 0 {
		g.log.Info("generated problems dropped", "subskill", in.Subskill.ID, "kept", len(problems), "dropped", len(errs))
	}
	return problems, nil
}

func (g *LLMGenerator) validate(c *Content, in GenerateInput) *ValidationError {
	for _, v := range g.config.Validators {
		if verr := v.Validate(c, in); verr != nil {
			return verr
		}
	}
	return nil
}
