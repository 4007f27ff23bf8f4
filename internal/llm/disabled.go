package llm

import (
	"context"

	"github.com/granabot/granabot/internal/common"
	"github.com/granabot/granabot/internal/model"
)

// DisabledOracle is used when no LLM provider is configured. Every call
// reports the oracle unavailable, so the router degrades to the "other"
// action and the local grammars remain fully functional.
type DisabledOracle struct{}

// Classify always fails with ErrOracleUnavailable.
func (DisabledOracle) Classify(_ context.Context, _ string, _ model.OracleHints) (model.Classification, error) {
	return model.Classification{}, common.ErrOracleUnavailable
}
