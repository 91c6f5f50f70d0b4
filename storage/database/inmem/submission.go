package inmemdb

import (
	"context"

	"github.com/google/uuid"

	"github.com/PARTHSHARMA4010/ClarityAI/core"
	"github.com/PARTHSHARMA4010/ClarityAI/core/submission"
)

type submissionRepository struct {
	db *submissionTable
}

var _ submission.Repository = (*submissionRepository)(nil) // interface compliance check

func NewSubmissionRepository(db *DB) *submissionRepository {
	return &submissionRepository{db: db.submission}
}

func (repo *submissionRepository) CreateSubmission(_ context.Context, sub submission.Submission, replace bool, _ ...core.DBExecutor) (submission.Submission, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if replace {
		kept := repo.db.order[:0]
		for _, id := range repo.db.order {
			s := repo.db.table[id]
			if s.AssignmentID == sub.AssignmentID && s.StudentID == sub.StudentID {
				delete(repo.db.table, id)
				continue
			}
			kept = append(kept, id)
		}
		repo.db.order = kept
	}

	sub.ID = uuid.New().String()
	sub.Answers = append([]submission.Answer{}, sub.Answers...)
	repo.db.table[sub.ID] = &sub
	repo.db.order = append(repo.db.order, sub.ID)
	return sub, nil
}

func (repo *submissionRepository) SubmissionExists(_ context.Context, assignmentID, studentID string, _ ...core.DBExecutor) (bool, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, s := range repo.db.table {
		if s.AssignmentID == assignmentID && s.StudentID == studentID {
			return true, nil
		}
	}
	return false, nil
}

func (repo *submissionRepository) QuerySubmissionsByAssignment(_ context.Context, assignmentID string, _ ...core.DBExecutor) ([]submission.Submission, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	subs := make([]submission.Submission, 0)
	for _, id := range repo.db.order {
		if s := repo.db.table[id]; s.AssignmentID == assignmentID {
			cp := *s
			cp.Answers = append([]submission.Answer{}, s.Answers...)
			subs = append(subs, cp)
		}
	}
	return subs, nil
}

func (repo *submissionRepository) CountByAssignment(_ context.Context, ids []string, _ ...core.DBExecutor) (map[string]int, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	wanted := make(map[string]map[string]struct{}, len(ids))
	for _, id := range ids {
		wanted[id] = make(map[string]struct{})
	}
	for _, s := range repo.db.table {
		if students, ok := wanted[s.AssignmentID]; ok {
			students[s.StudentID] = struct{}{}
		}
	}

	counts := make(map[string]int, len(ids))
	for id, students := range wanted {
		counts[id] = len(students)
	}
	return counts, nil
}
