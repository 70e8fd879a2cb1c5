// Package mocks provides mock expectation helpers for common testing patterns
package mocks

import (
	"context"

	"go.uber.org/mock/gomock"

	"github.com/KirkDiggler/rpg-tracker/internal/entities"
	"github.com/KirkDiggler/rpg-tracker/internal/repositories/encounters"
	encountersmock "github.com/KirkDiggler/rpg-tracker/internal/repositories/encounters/mock"
)

// Orchestrators hand the repository a span-carrying child of the caller's
// context, so the helpers match any context.

// ExpectGet serves a copy of stored for its ID
func ExpectGet(mockRepo *encountersmock.MockRepository, stored *entities.Encounter) *gomock.Call {
	return mockRepo.EXPECT().
		Get(gomock.Any(), encounters.GetInput{EncounterID: stored.ID}).
		Return(&encounters.GetOutput{Encounter: stored.Clone()}, nil)
}

// ExpectMutate applies the orchestrator's mutation to a copy of stored the
// way a real store would: errors from the mutation are returned and nothing
// changes, otherwise the version is bumped and the result becomes the new
// stored value.
func ExpectMutate(mockRepo *encountersmock.MockRepository, stored *entities.Encounter) *gomock.Call {
	return mockRepo.EXPECT().
		Mutate(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, input encounters.MutateInput) (*encounters.MutateOutput, error) {
			working := stored.Clone()
			if err := input.Fn(working); err != nil {
				return nil, err
			}
			working.Version++
			*stored = *working
			return &encounters.MutateOutput{Encounter: working.Clone()}, nil
		})
}

// ExpectMutateFails makes every Mutate call fail with err
func ExpectMutateFails(mockRepo *encountersmock.MockRepository, err error) *gomock.Call {
	return mockRepo.EXPECT().
		Mutate(gomock.Any(), gomock.Any()).
		Return(nil, err)
}
