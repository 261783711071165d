package cases

import (
	"fmt"
	"path/filepath"

	"github.com/spboyer/lineagebench/internal/models"
)

// Filter returns the tasks whose ID or source file name matches at least
// one of the glob patterns, keeping their order. No patterns keeps all tasks.
func Filter(tasks []models.Task, patterns []string) ([]models.Task, error) {
	if len(patterns) == 0 {
		return tasks, nil
	}

	var matched []models.Task
	for _, task := range tasks {
		ok, err := matchesAny(task, patterns)
		if err != nil {
			return nil, err
		}
		if ok {
			matched = append(matched, task)
		}
	}
	return matched, nil
}

func matchesAny(task models.Task, patterns []string) (bool, error) {
	for _, p := range patterns {
		for _, candidate := range []string{task.ID, task.SourceFile} {
			ok, err := filepath.Match(p, candidate)
			if err != nil {
				return false, fmt.Errorf("invalid case filter pattern %q: %w", p, err)
			}
			if ok {
				return true, nil
			}
		}
	}
	return false, nil
}
