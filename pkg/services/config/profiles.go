package config

import (
	"context"
	"fmt"

	"gopkg.in/ini.v1"

	"github.com/Amadeus750/spend-streamlet/pkg/models/domain"
)

// ProfileRegistry resolves named dataset profiles from an ini file, one
// section per dataset.
type ProfileRegistry interface {
	GetProfiles(ctx context.Context) ([]domain.DatasetRef, error)
	GetProfile(ctx context.Context, name string) (*domain.DatasetRef, error)
}

type profileRegistry struct {
	cfg      *ini.File
	defaults Dataset
}

// NewProfileRegistry loads the registry file and validates every section
// up front: a profile without a path would only fail at first use, which
// is too late for a startup check. The defaults fill in fiscal calendar
// and currency for sections that omit them.
func NewProfileRegistry(path string, defaults Dataset) (ProfileRegistry, error) {
	cfg, err := ini.Load(path)
	if err != nil {
		return nil, err
	}
	registry := &profileRegistry{cfg: cfg, defaults: defaults}

	for _, section := range cfg.Sections() {
		if len(section.Keys()) == 0 {
			continue
		}
		if _, err := registry.profileFromSection(section); err != nil {
			return nil, err
		}
	}
	return registry, nil
}

func (r *profileRegistry) GetProfiles(_ context.Context) ([]domain.DatasetRef, error) {
	var profiles []domain.DatasetRef
	for _, section := range r.cfg.Sections() {
		if len(section.Keys()) == 0 {
			continue
		}
		profile, err := r.profileFromSection(section)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, *profile)
	}
	return profiles, nil
}

func (r *profileRegistry) GetProfile(_ context.Context, name string) (*domain.DatasetRef, error) {
	section, err := r.cfg.GetSection(name)
	if err != nil {
		return nil, fmt.Errorf("profile %s not found", name)
	}
	return r.profileFromSection(section)
}

func (r *profileRegistry) profileFromSection(section *ini.Section) (*domain.DatasetRef, error) {
	path := section.Key("path").String()
	if path == "" {
		return nil, fmt.Errorf("profile %s has no path", section.Name())
	}

	month := section.Key("fiscal_year_start_month").MustInt(r.defaults.FiscalYearStartMonth)
	if month < 1 || month > 12 {
		return nil, fmt.Errorf("profile %s: fiscal_year_start_month %d out of range", section.Name(), month)
	}

	currency := section.Key("currency").String()
	if currency == "" {
		currency = r.defaults.Currency
	}

	return &domain.DatasetRef{
		Name:                 section.Name(),
		Path:                 path,
		FiscalYearStartMonth: month,
		Currency:             currency,
	}, nil
}
