// Package mocks provides shared test doubles for the generation and service
// boundaries.
//
// Each mock has function fields for per-test behavior and falls back to
// canned values when a field is unset:
//
//	gen := mocks.NewMockGeneratorWithResponse("1. Describe a system you scaled.")
//	coach := &mocks.MockCoachService{
//	    LatestFn: func(context.Context) (*domain.ResumeInfo, error) {
//	        return nil, service.ErrResumeNotFound
//	    },
//	}
package mocks
