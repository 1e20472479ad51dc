package lode

import (
	"time"

	"github.com/justapithecus/lode/lode"

	"github.com/Ayymoose/PC-Lint-GUI-sub000/types"
)

// sharedFactory returns a StoreFactory that always returns the given store,
// so write and read datasets share the same in-memory state.
func sharedFactory(store lode.Store) lode.StoreFactory {
	return func() (lode.Store, error) { return store, nil }
}

func testConfig(runID string) Config {
	return Config{
		Dataset: "lintstream",
		Tool:    "pclp",
		Day:     "2026-03-01",
		RunID:   runID,
		Policy:  "strict",
	}
}

func testGroup(runID string, seq int64) *types.GroupEnvelope {
	return &types.GroupEnvelope{
		RunID: runID,
		Seq:   seq,
		Group: types.MessageGroup{Messages: []types.Message{
			{File: "src/main.c", Line: int(seq) * 10, Type: types.MessageTypeWarning, Number: 534, Description: "Ignoring return value"},
			{File: "src/main.c", Line: int(seq)*10 + 1, Type: types.MessageTypeSupplemental, Number: 831, Description: "Reference cited"},
		}},
	}
}

func testSummary(runID string, parent *string, batch int) *types.RunSummary {
	return &types.RunSummary{
		RunID:          runID,
		ParentRunID:    parent,
		Tool:           "pclp",
		Batch:          batch,
		Batches:        2,
		Status:         types.RunStatusPartialComplete,
		ExitCode:       0,
		StartedAt:      time.Date(2026, 3, 1, 9, batch, 0, 0, time.UTC),
		Duration:       1.5,
		FilesRequested: 3,
		FilesObserved:  2,
		FilesMissing:   []string{"src/missing.c"},
		Modules:        2,
		Messages:       4,
		Groups:         2,
	}
}
