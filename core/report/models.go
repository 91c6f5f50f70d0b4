package report

import "time"

type (
	QuizQuestion struct {
		Question string `json:"question"`
	}

	ActionPlan struct {
		Suggestion string         `json:"suggestion"`
		Quiz       []QuizQuestion `json:"quiz"`
	}

	// Cluster is a recurring misconception found across submissions, as produced by the Classifier.
	Cluster struct {
		Title        string     `json:"title"`
		Explanation  string     `json:"explanation"`
		StudentCount int        `json:"studentCount"`
		Examples     []string   `json:"examples"`
		ActionPlan   ActionPlan `json:"actionPlan"`
	}

	Stats struct {
		TotalSubmissions   int `json:"totalSubmissions"`
		AnswerCount        int `json:"answerCount"`
		MisconceptionCount int `json:"misconceptionCount"`
	}

	Report struct {
		AssignmentID string    `json:"assignmentId"`
		Clusters     []Cluster `json:"clusters"`
		Stats        Stats     `json:"stats"`
		GeneratedAt  time.Time `json:"generatedAt"` // UTC
	}
)
