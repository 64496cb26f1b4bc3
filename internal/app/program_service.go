package app

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"path2prevention/internal/model"
	"path2prevention/internal/platform/logger"
	"path2prevention/internal/repository"
	"path2prevention/internal/search"
)

var (
	ErrInvalidInput    = errors.New("invalid input")
	ErrFilterRequired  = errors.New("location or delivery mode required")
	ErrNameRequired    = errors.New("organization name required")
	ErrProgramNotFound = errors.New("program not found")
)

const recommendedLimit = 10

// ProgramStore is the relational read side used by ProgramService.
type ProgramStore interface {
	SearchByLocation(ctx context.Context, f search.Filter) ([]model.ProgramRow, error)
	SearchByDeliveryModes(ctx context.Context, modes []string) ([]model.ProgramRow, error)
	SearchByName(ctx context.Context, name string) ([]model.ProgramRow, error)
	ListAll(ctx context.Context) ([]model.ProgramRow, error)
	GetByID(ctx context.Context, id uint) (*model.ProgramRow, error)
	Recommended(ctx context.Context, modes []string, state string) ([]model.ProgramRow, error)
}

// SearchCriteria echoes the interpreted query back to the client.
type SearchCriteria struct {
	DeliveryMode  string
	ZipCode       *string
	State         *string
	City          *string
	Radius        int
	LocationBased bool
}

// MarshalJSON emits only the delivery mode for mode searches, and every
// location field (absent ones as null) for location searches.
func (c SearchCriteria) MarshalJSON() ([]byte, error) {
	if !c.LocationBased {
		return json.Marshal(map[string]interface{}{
			"deliveryMode":  c.DeliveryMode,
			"locationBased": false,
		})
	}
	return json.Marshal(map[string]interface{}{
		"zipCode":       c.ZipCode,
		"state":         c.State,
		"city":          c.City,
		"radius":        c.Radius,
		"locationBased": true,
	})
}

type ProgramList struct {
	Programs []model.ProgramRow
	Criteria *SearchCriteria
	Fallback bool
}

type ProgramResult struct {
	Program  model.ProgramRow
	Fallback bool
}

// ProgramService owns the static-data fallback: any store failure on a read
// path is logged and answered from the built-in catalogue instead.
type ProgramService struct {
	store         ProgramStore
	defaultRadius int
	log           *logger.Logger
}

func NewProgramService(store ProgramStore, defaultRadius int, log *logger.Logger) *ProgramService {
	if defaultRadius <= 0 {
		defaultRadius = 25
	}
	if log == nil {
		log = logger.Nop()
	}
	return &ProgramService{store: store, defaultRadius: defaultRadius, log: log}
}

// Search runs a delivery-mode search when a mode is given, otherwise a
// location search. At least one of the two is required.
func (s *ProgramService) Search(ctx context.Context, f search.Filter) (*ProgramList, error) {
	f = f.Normalize()

	if f.DeliveryMode != "" {
		criteria := &SearchCriteria{DeliveryMode: f.DeliveryMode, LocationBased: false}
		rows, err := s.store.SearchByDeliveryModes(ctx, search.NormalizeDeliveryMode(f.DeliveryMode))
		if err != nil {
			s.log.Warn("delivery mode search failed, serving fallback", "mode", f.DeliveryMode, "cause", repository.Cause(err), "error", err)
			return &ProgramList{
				Programs: search.FilterFallback(search.Filter{DeliveryMode: f.DeliveryMode}),
				Criteria: criteria,
				Fallback: true,
			}, nil
		}
		return &ProgramList{Programs: rows, Criteria: criteria}, nil
	}

	if !f.HasLocation() {
		return nil, ErrFilterRequired
	}
	if f.Radius <= 0 {
		f.Radius = s.defaultRadius
	}
	criteria := &SearchCriteria{
		ZipCode:       optional(f.ZipCode),
		State:         optional(f.State),
		City:          optional(f.City),
		Radius:        f.Radius,
		LocationBased: true,
	}

	rows, err := s.store.SearchByLocation(ctx, f)
	if err != nil {
		s.log.Warn("location search failed, serving fallback", "branch", search.SelectBranch(f).String(), "cause", repository.Cause(err), "error", err)
		return &ProgramList{Programs: search.FilterFallback(f), Criteria: criteria, Fallback: true}, nil
	}
	return &ProgramList{Programs: rows, Criteria: criteria}, nil
}

func (s *ProgramService) All(ctx context.Context) (*ProgramList, error) {
	rows, err := s.store.ListAll(ctx)
	if err != nil {
		s.log.Warn("list programs failed, serving fallback", "cause", repository.Cause(err), "error", err)
		return &ProgramList{Programs: search.FallbackPrograms(), Fallback: true}, nil
	}
	return &ProgramList{Programs: rows}, nil
}

func (s *ProgramService) ByName(ctx context.Context, name string) (*ProgramList, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrNameRequired
	}
	rows, err := s.store.SearchByName(ctx, name)
	if err != nil {
		s.log.Warn("name search failed, serving fallback", "name", name, "cause", repository.Cause(err), "error", err)
		return &ProgramList{Programs: search.FallbackByName(name), Fallback: true}, nil
	}
	return &ProgramList{Programs: rows}, nil
}

func (s *ProgramService) ByID(ctx context.Context, id uint) (*ProgramResult, error) {
	row, err := s.store.GetByID(ctx, id)
	if err != nil {
		s.log.Warn("get program failed, serving fallback", "program_id", id, "cause", repository.Cause(err), "error", err)
		fallback, ok := search.FallbackByID(id)
		if !ok {
			return nil, ErrProgramNotFound
		}
		return &ProgramResult{Program: fallback, Fallback: true}, nil
	}
	if row == nil {
		return nil, ErrProgramNotFound
	}
	return &ProgramResult{Program: *row}, nil
}

// Recommended returns open programs in any of the requested modes, programs
// in state first. Empty modes means every mode.
func (s *ProgramService) Recommended(ctx context.Context, modes []string, state string) (*ProgramList, error) {
	state = strings.ToUpper(strings.TrimSpace(state))
	wanted := expandModes(modes)

	rows, err := s.store.Recommended(ctx, wanted, state)
	if err != nil {
		s.log.Warn("recommend programs failed, serving fallback", "cause", repository.Cause(err), "error", err)
		return &ProgramList{Programs: recommendFallback(wanted, state), Fallback: true}, nil
	}
	return &ProgramList{Programs: rows}, nil
}

func expandModes(modes []string) []string {
	seen := make(map[string]bool)
	out := make([]string, 0, 4)
	for _, m := range modes {
		for _, n := range search.NormalizeDeliveryMode(m) {
			if !seen[n] {
				seen[n] = true
				out = append(out, n)
			}
		}
	}
	if len(out) == 0 {
		out = append(out,
			model.DeliveryInPerson,
			model.DeliveryVirtualLive,
			model.DeliveryVirtualSelfPaced,
			model.DeliveryHybrid,
		)
	}
	return out
}

func recommendFallback(modes []string, state string) []model.ProgramRow {
	out := make([]model.ProgramRow, 0)
	for _, row := range search.FallbackPrograms() {
		if search.MatchesDeliveryModes(row, modes) && (state == "" || row.State == state) {
			out = append(out, row)
		}
	}
	if len(out) > recommendedLimit {
		out = out[:recommendedLimit]
	}
	return out
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
