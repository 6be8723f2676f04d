package main

import (
	"context"
	"fmt"
	"io"

	"task-tracker/internal/models"
	"task-tracker/internal/tasks"

	"gopkg.in/yaml.v3"
)

type fixtureTask struct {
	UserAssigned string `yaml:"user"`
	Country      string `yaml:"country"`
	Description  string `yaml:"description"`
	Completed    bool   `yaml:"completed"`
}

type fixture struct {
	Tasks []fixtureTask `yaml:"tasks"`
}

func readFixture(r io.Reader) ([]fixtureTask, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var fx fixture
	if err := dec.Decode(&fx); err != nil {
		return nil, err
	}
	return fx.Tasks, nil
}

// seed adds each entry through the store so the usual validation applies.
func seed(ctx context.Context, store *tasks.Store, entries []fixtureTask) (int, error) {
	for i, e := range entries {
		t, err := store.Add(ctx, models.Fields{UserAssigned: e.UserAssigned, Country: e.Country, Description: e.Description})
		if err != nil {
			return i, fmt.Errorf("task %d: %w", i+1, err)
		}
		if e.Completed {
			if _, err := store.ToggleCompletion(ctx, t.ID); err != nil {
				return i + 1, fmt.Errorf("task %d: %w", i+1, err)
			}
		}
		fmt.Printf("\rAdded %d / %d", i+1, len(entries))
	}
	if len(entries) > 0 {
		fmt.Println()
	}
	return len(entries), nil
}
