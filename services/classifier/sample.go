package classifiersvc

import (
	"context"
	"fmt"

	"github.com/PARTHSHARMA4010/ClarityAI/core"
	"github.com/PARTHSHARMA4010/ClarityAI/core/report"
)

// SampleClassifier returns a fixed report, quoting the first answers as examples.
// Used in development & tests.
type SampleClassifier struct{}

var _ report.Classifier = SampleClassifier{}

func (SampleClassifier) Classify(ctx context.Context, answers []string) ([]report.Cluster, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	examples := make([]string, 0, 2)
	for i := 0; i < len(answers) && i < 2; i++ {
		examples = append(examples, fmt.Sprintf("'%s'", answers[i]))
	}

	return []report.Cluster{
		{
			Title:        "Confusion between 'Mitosis' and 'Meiosis'",
			Explanation:  "Students use the terms interchangeably or confuse the outcomes of each process.",
			StudentCount: (len(answers) + 1) / 2,
			Examples:     examples,
			ActionPlan: report.ActionPlan{
				Suggestion: "Compare both processes in a Venn diagram, focusing on the number of divisions and the chromosome number of the resulting cells.",
				Quiz: []report.QuizQuestion{
					{Question: "Which process creates genetically identical cells?"},
					{Question: "How many cells are produced at the end of meiosis?"},
				},
			},
		},
		{
			Title:        "Misunderstanding of Photosynthesis Inputs",
			Explanation:  "Carbon dioxide is missing from the inputs of photosynthesis.",
			StudentCount: 1,
			Examples:     []string{},
			ActionPlan: report.ActionPlan{
				Suggestion: "Review the chemical equation for photosynthesis, emphasizing CO2 as a key reactant.",
				Quiz: []report.QuizQuestion{
					{Question: "What are the three main 'ingredients' for photosynthesis?"},
				},
			},
		},
	}, nil
}

// New returns the classifier selected by conf.Classifier.Backend.
// The sample backend is only available in DEV & TEST, and must be asked for explicitly.
func New(conf *core.Config) (report.Classifier, error) {
	switch conf.Classifier.Backend {
	case "", "http":
		if conf.Classifier.URL == "" {
			return nil, fmt.Errorf("classifier URL is required by the http backend")
		}
		return NewHTTPClassifier(nil, conf.Classifier.URL, conf.Classifier.APIKey), nil
	case "sample":
		if conf.Env != "DEV" && conf.Env != "TEST" {
			return nil, fmt.Errorf("sample classifier is not allowed in %s", conf.Env)
		}
		return SampleClassifier{}, nil
	default:
		return nil, fmt.Errorf("unknown classifier backend %q", conf.Classifier.Backend)
	}
}
