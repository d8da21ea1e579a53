// Package config reads the warehouse profile registry, an ini file listing
// the remote warehouses claims can be imported from.
package config

import (
	"context"
	"errors"
	"fmt"

	"github.com/rcm-tools/revenue-atlas/pkg/models/domain"
	"gopkg.in/ini.v1"
)

var ErrProfileNotFound = errors.New("profile not found")

// Profile holds everything needed to open a connection to one warehouse.
// Snowflake profiles use the account block, Databricks profiles the host
// block.
type Profile struct {
	Name     string
	Platform domain.WarehousePlatform

	Account   string
	User      string
	Password  string
	Database  string
	Schema    string
	Warehouse string
	Role      string

	Host     string
	Token    string
	HTTPPath string
}

type Registry interface {
	GetProfiles(ctx context.Context) ([]domain.WarehouseProfile, error)
	GetProfile(ctx context.Context, name string) (*Profile, error)
}

type cfgRegistry struct {
	cfg *ini.File
}

func NewRegistry(path string) (Registry, error) {
	cfg, err := ini.Load(path)
	if err != nil {
		return nil, err
	}
	return &cfgRegistry{cfg: cfg}, nil
}

func (cr *cfgRegistry) GetProfiles(_ context.Context) ([]domain.WarehouseProfile, error) {
	var profiles []domain.WarehouseProfile
	for _, section := range cr.cfg.Sections() {
		if len(section.Keys()) == 0 {
			continue
		}
		profiles = append(profiles, domain.WarehouseProfile{
			Name:     section.Name(),
			Platform: domain.WarehousePlatform(section.Key("platform").String()),
		})
	}
	return profiles, nil
}

func (cr *cfgRegistry) GetProfile(_ context.Context, name string) (*Profile, error) {
	section := cr.cfg.Section(name)
	if section == nil || len(section.Keys()) == 0 {
		return nil, fmt.Errorf("profile %s: %w", name, ErrProfileNotFound)
	}

	profile := &Profile{
		Name:      name,
		Platform:  domain.WarehousePlatform(section.Key("platform").String()),
		Account:   section.Key("account").String(),
		User:      section.Key("user").String(),
		Password:  section.Key("password").String(),
		Database:  section.Key("database").String(),
		Schema:    section.Key("schema").String(),
		Warehouse: section.Key("warehouse").String(),
		Role:      section.Key("role").String(),
		Host:      section.Key("host").String(),
		Token:     section.Key("token").String(),
		HTTPPath:  section.Key("http_path").String(),
	}

	switch profile.Platform {
	case domain.PlatformSnowflake, domain.PlatformDatabricks:
	default:
		return nil, fmt.Errorf("profile %s has unsupported platform %q", name, profile.Platform)
	}

	return profile, nil
}
