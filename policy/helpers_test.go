package policy_test

import (
	"github.com/Ayymoose/PC-Lint-GUI-sub000/types"
)

func groupEnv(seq int64, msgs ...types.Message) *types.GroupEnvelope {
	if len(msgs) == 0 {
		msgs = []types.Message{{
			File:        "src/main.c",
			Line:        int(seq),
			Type:        types.MessageTypeWarning,
			Number:      534,
			Description: "ignoring return value of function",
		}}
	}
	return &types.GroupEnvelope{
		RunID: "run-1",
		Seq:   seq,
		Group: types.MessageGroup{Messages: msgs},
	}
}

func summary(status types.RunStatus) *types.RunSummary {
	return &types.RunSummary{
		RunID:  "run-1",
		Tool:   "pclp",
		Batch:  1,
		Status: status,
	}
}
