package services

import (
	"fmt"

	"github.com/reglet-dev/rxforge/internal/application/dto"
	domainservices "github.com/reglet-dev/rxforge/internal/domain/services"
	"github.com/reglet-dev/rxforge/internal/domain/values"
)

// ProfileService answers questions about the profile catalog.
type ProfileService struct {
	resolver *domainservices.ProfileResolver
}

// NewProfileService creates a profile service.
func NewProfileService(resolver *domainservices.ProfileResolver) *ProfileService {
	return &ProfileService{resolver: resolver}
}

// List describes every family, including the version it currently resolves to.
func (s *ProfileService) List() []dto.FamilyInfo {
	reg := s.resolver.Registry()
	families := reg.Families()
	out := make([]dto.FamilyInfo, 0, len(families))
	for _, f := range families {
		def, _ := reg.Family(f)
		info := dto.FamilyInfo{
			Family:      f.String(),
			Description: def.Description,
			Default:     def.Default.String(),
		}
		for _, v := range def.Versions {
			info.Versions = append(info.Versions, dto.VersionInfo{
				Version:    v.Version.String(),
				ValidFrom:  v.ValidFrom,
				ValidUntil: v.ValidUntil,
			})
		}
		if resolved, err := s.resolver.Resolve(f, nil); err != nil {
			info.Error = err.Error()
		} else {
			info.Resolved = resolved.String()
		}
		out = append(out, info)
	}
	return out
}

// Resolve resolves the version of a family, optionally with an explicit version.
func (s *ProfileService) Resolve(req dto.ResolveRequest) (values.ProfileVersion, error) {
	family, err := values.NewProfileFamily(req.Family)
	if err != nil {
		return values.ProfileVersion{}, err
	}
	var explicit *values.ProfileVersion
	if req.Version != "" {
		v, err := values.NewProfileVersion(req.Version)
		if err != nil {
			return values.ProfileVersion{}, fmt.Errorf("invalid version: %w", err)
		}
		explicit = &v
	}
	return s.resolver.Resolve(family, explicit)
}
