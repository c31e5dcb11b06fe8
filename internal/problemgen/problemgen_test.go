package problemgen

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/kinderpath/internal/curriculum"
	"github.com/abhisek/kinderpath/internal/llm"
)

func addInput() GenerateInput {
	return GenerateInput{
		Subject: "math",
		Skill:   curriculum.Skill{ID: "add-within-5", Description: "Add within 5", UnitID: "operations", SubjectID: "math"},
		Subskill: curriculum.Subskill{
			ID:          "add-numerals-5",
			Description: "Add numerals with sums up to 5",
			SkillID:     "add-within-5",
			Difficulty:  curriculum.DifficultyRange{Start: 2, Target: 3, End: 4},
		},
		Count: 3,
	}
}

func numberProblem(q, answer string, difficulty float64) Content {
	return Content{Question: q, Format: FormatNumber, Answer: answer, Choices: []string{},
		Hint: "Count on your fingers.", Explanation: "Put the groups together and count.", Difficulty: difficulty}
}

func TestValidators(t *testing.T) {
	in := addInput()
	in.PriorQuestions = []string{"What is 1 + 1?"}

	tests := []struct {
		name      string
		content   Content
		validator Validator
		wantErr   bool
	}{
		{"structural ok", numberProblem("What is 2 + 2?", "4", 3), &StructuralValidator{}, false},
		{"empty question", numberProblem(" ", "4", 3), &StructuralValidator{}, true},
		{"long question", numberProblem(strings.Repeat("a", 301), "4", 3), &StructuralValidator{}, true},
		{"bad format", Content{Question: "q", Answer: "a", Explanation: "e", Format: "essay"}, &StructuralValidator{}, true},
		{"number not whole", numberProblem("How many?", "2.5", 3), &AnswerValidator{}, true},
		{"number negative", numberProblem("How many?", "-1", 3), &AnswerValidator{}, true},
		{"text two words", Content{Format: FormatText, Answer: "the cat"}, &AnswerValidator{}, true},
		{"text one word", Content{Format: FormatText, Answer: "cat"}, &AnswerValidator{}, false},
		{"choice ok", Content{Format: FormatChoice, Answer: "Circle", Choices: []string{"circle", "square"}}, &AnswerValidator{}, false},
		{"choice missing answer", Content{Format: FormatChoice, Answer: "triangle", Choices: []string{"circle", "square"}}, &AnswerValidator{}, true},
		{"choice duplicate", Content{Format: FormatChoice, Answer: "circle", Choices: []string{"circle", "Circle "}}, &AnswerValidator{}, true},
		{"choice too many", Content{Format: FormatChoice, Answer: "a", Choices: []string{"a", "b", "c", "d", "e"}}, &AnswerValidator{}, true},
		{"sum right", numberProblem("What is 2 + 3?", "5", 3), &ArithmeticValidator{}, false},
		{"sum wrong", numberProblem("What is 2 + 3?", "6", 3), &ArithmeticValidator{}, true},
		{"difference right", numberProblem("You have 4 ducks. 1 swims away. 4 - 1 is?", "3", 3), &ArithmeticValidator{}, false},
		{"below zero", numberProblem("What is 2 - 3?", "0", 3), &ArithmeticValidator{}, true},
		{"no sum", numberProblem("How many apples are in the basket?", "4", 3), &ArithmeticValidator{}, false},
		{"word answer", Content{Format: FormatChoice, Question: "What is 2 + 2?", Answer: "four"}, &ArithmeticValidator{}, false},
		{"in range", numberProblem("q", "1", 4), &DifficultyValidator{}, false},
		{"too hard", numberProblem("q", "1", 4.5), &DifficultyValidator{}, true},
		{"repeat", numberProblem("what is 1 +  1?", "2", 3), &DedupValidator{}, true},
		{"fresh", numberProblem("What is 1 + 2?", "3", 3), &DedupValidator{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := tt.content
			verr := tt.validator.Validate(&c, in)
			if tt.wantErr {
				require.NotNil(t, verr)
				assert.Equal(t, tt.validator.Name(), verr.Validator)
			} else {
				assert.Nil(t, verr)
			}
		})
	}
}

func TestCheckAnswer(t *testing.T) {
	num := numberProblem("What is 2 + 1?", "3", 3)
	assert.True(t, CheckAnswer(" 3 ", &num))
	assert.True(t, CheckAnswer("Three", &num))
	assert.False(t, CheckAnswer("4", &num))
	assert.False(t, CheckAnswer("", &num))

	choice := Content{Format: FormatChoice, Answer: "Circle", Choices: []string{"square", "circle", "star"}}
	assert.True(t, CheckAnswer("circle", &choice))
	assert.True(t, CheckAnswer("2", &choice))
	assert.False(t, CheckAnswer("1", &choice))

	text := Content{Format: FormatText, Answer: "the"}
	assert.True(t, CheckAnswer("THE", &text))
}

func TestGrade(t *testing.T) {
	payload, _ := json.Marshal(numberProblem("What is 2 + 2?", "4", 3))
	s, err := Grade(payload, "four")
	require.NoError(t, err)
	assert.Equal(t, 10.0, s)

	s, err = Grade(payload, "5")
	require.NoError(t, err)
	assert.Zero(t, s)

	_, err = Grade(json.RawMessage(`{"question":"q"}`), "1")
	assert.Error(t, err)
	_, err = Grade(json.RawMessage(`not json`), "1")
	assert.Error(t, err)
}

func TestBuildUserMessage(t *testing.T) {
	in := addInput()
	in.TargetDifficulty = 9
	in.PriorQuestions = []string{"q1", "q2", "q3"}
	msg := buildUserMessage(in, Config{MaxPriorQuestions: 2})

	assert.Contains(t, msg, "Subskill: add-numerals-5")
	assert.Contains(t, msg, "aim for 4.0")
	assert.Contains(t, msg, "1. q2\n2. q3")
	assert.NotContains(t, msg, "q1")
	assert.Contains(t, buildUserMessage(addInput(), DefaultConfig()), "Already asked:\nNone")
}

func setResponse(problems ...Content) llm.MockResponse {
	b, _ := json.Marshal(problemSetOutput{Problems: problems})
	return llm.MockResponse{Content: b}
}

func TestLLMGenerator(t *testing.T) {
	mock := llm.NewMockProvider(setResponse(
		numberProblem("What is 2 + 2?", "4", 3),
		numberProblem("What is 1 + 3?", "5", 3), // wrong sum
		numberProblem("What is 2 + 2?", "4", 3), // repeat within batch
		numberProblem("What is 3 + 2?", "5", 3.25),
		numberProblem("What is 0 + 1?", "1", 2),
	))
	gen := New(mock, DefaultConfig(), nil)

	problems, err := gen.Generate(context.Background(), addInput())
	require.NoError(t, err)
	require.Len(t, problems, 3)

	p := problems[0]
	assert.Equal(t, "math", p.Subject)
	assert.Equal(t, "operations", p.UnitID)
	assert.Equal(t, "add-within-5", p.SkillID)
	assert.Equal(t, "add-numerals-5", p.SubskillID)
	assert.Empty(t, p.ID)
	assert.Equal(t, 3.3, problems[1].Difficulty)

	var c Content
	require.NoError(t, json.Unmarshal(p.Payload, &c))
	assert.Equal(t, "operations", c.UnitID)
	assert.Equal(t, "4", c.Answer)

	require.Equal(t, 1, mock.CallCount())
	assert.Equal(t, ProblemSetSchema, mock.Calls[0].Schema)
}

func TestLLMGenerator_AllRejected(t *testing.T) {
	mock := llm.NewMockProvider(setResponse(numberProblem("What is 1 + 1?", "3", 3)))
	_, err := New(mock, DefaultConfig(), nil).Generate(context.Background(), addInput())
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestLLMGenerator_ProviderError(t *testing.T) {
	boom := errors.New("boom")
	mock := llm.NewMockProvider(llm.MockResponse{Err: boom})
	_, err := New(mock, DefaultConfig(), nil).Generate(context.Background(), addInput())
	assert.ErrorIs(t, err, boom)
}

func TestLLMGenerator_ZeroCount(t *testing.T) {
	mock := llm.NewMockProvider()
	in := addInput()
	in.Count = 0
	problems, err := New(mock, DefaultConfig(), nil).Generate(context.Background(), in)
	assert.NoError(t, err)
	assert.Empty(t, problems)
	assert.Zero(t, mock.CallCount())
}
