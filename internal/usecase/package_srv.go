package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"travel-agency/internal/data/entity"
	"travel-agency/internal/data/repository"
	"travel-agency/internal/dto/request"
	"travel-agency/internal/dto/response"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type PackageService interface {
	// Public endpoints
	GetPackage(ctx context.Context, id uuid.UUID) (*response.PackageResponse, error)
	ListPackages(ctx context.Context, req *request.PackageListRequest) (*response.PaginatedResponse[response.PackageResponse], error)
	TopRatedPackages(ctx context.Context, limit int) ([]response.PackageResponse, error)
	MostBookedPackages(ctx context.Context, limit int) ([]response.PackageResponse, error)
	SimilarPackages(ctx context.Context, id uuid.UUID, limit int) ([]response.PackageResponse, error)

	// Admin endpoints
	CreatePackage(ctx context.Context, req *request.CreatePackageRequest) (*response.PackageResponse, error)
	UpdatePackage(ctx context.Context, id uuid.UUID, req *request.UpdatePackageRequest) (*response.PackageResponse, error)
	DeletePackage(ctx context.Context, id uuid.UUID) error
	ToggleAvailability(ctx context.Context, id uuid.UUID) (*response.PackageResponse, error)
}

const (
	defaultRankingLimit = 5
	defaultSimilarLimit = 3
)

type packageService struct {
	repo  *repository.Repository
	clock clock
	log   *zap.Logger
}

func NewPackageService(repo *repository.Repository, clock clock, log *zap.Logger) PackageService {
	return &packageService{
		repo:  repo,
		clock: clock,
		log:   log.With(zap.String("service", "package")),
	}
}

// ==================== PUBLIC METHODS ====================

func (s *packageService) GetPackage(ctx context.Context, id uuid.UUID) (*response.PackageResponse, error) {
	pkg, err := s.repo.Package.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get package: %w", err)
	}
	if pkg == nil {
		return nil, fmt.Errorf("package %s: %w", id, ErrNotFound)
	}

	rating, err := s.repo.Package.Rating(ctx, id)
	if err != nil {
		// rating is decoration; the package itself is still served
		s.log.Warn("Failed to load package rating", zap.Error(err), zap.String("package_id", id.String()))
		rating = nil
	}

	resp := response.PackageToResponse(pkg, rating)
	return &resp, nil
}

func (s *packageService) ListPackages(ctx context.Context, req *request.PackageListRequest) (*response.PaginatedResponse[response.PackageResponse], error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	filter := entity.PackageFilter{
		Search:        strings.TrimSpace(req.Search),
		MinDuration:   req.MinDuration,
		MaxDuration:   req.MaxDuration,
		AvailableOnly: req.AvailableOnly,
	}
	if req.MinPrice != "" {
		v := decimal.RequireFromString(req.MinPrice)
		filter.MinPrice = &v
	}
	if req.MaxPrice != "" {
		v := decimal.RequireFromString(req.MaxPrice)
		filter.MaxPrice = &v
	}

	packages, err := s.repo.Package.FindAll(ctx, filter, req.Limit(), req.Offset())
	if err != nil {
		return nil, fmt.Errorf("list packages: %w", err)
	}

	total, err := s.repo.Package.Count(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("count packages: %w", err)
	}

	data := make([]response.PackageResponse, 0, len(packages))
	for _, pkg := range packages {
		data = append(data, response.PackageToResponse(pkg, nil))
	}

	return response.NewPaginatedResponse(data, req.Page, req.Limit(), total), nil
}

func (s *packageService) TopRatedPackages(ctx context.Context, limit int) ([]response.PackageResponse, error) {
	ranked, err := s.repo.Package.TopRated(ctx, clampLimit(limit, defaultRankingLimit))
	if err != nil {
		return nil, fmt.Errorf("top rated packages: %w", err)
	}
	return response.RankedPackagesToResponse(ranked), nil
}

func (s *packageService) MostBookedPackages(ctx context.Context, limit int) ([]response.PackageResponse, error) {
	ranked, err := s.repo.Package.MostBooked(ctx, clampLimit(limit, defaultRankingLimit))
	if err != nil {
		return nil, fmt.Errorf("most booked packages: %w", err)
	}
	return response.RankedPackagesToResponse(ranked), nil
}

// SimilarPackages lists other available packages close to id in duration and price.
func (s *packageService) SimilarPackages(ctx context.Context, id uuid.UUID, limit int) ([]response.PackageResponse, error) {
	pkg, err := s.repo.Package.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find package: %w", err)
	}
	if pkg == nil {
		return nil, fmt.Errorf("package %s: %w", id, ErrNotFound)
	}

	similar, err := s.repo.Package.FindSimilar(ctx, pkg, clampLimit(limit, defaultSimilarLimit))
	if err != nil {
		return nil, fmt.Errorf("similar packages: %w", err)
	}

	data := make([]response.PackageResponse, 0, len(similar))
	for _, p := range similar {
		data = append(data, response.PackageToResponse(p, nil))
	}
	return data, nil
}

// ==================== ADMIN METHODS ====================

func (s *packageService) CreatePackage(ctx context.Context, req *request.CreatePackageRequest) (*response.PackageResponse, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	pkg := &entity.Package{
		Base:             entity.NewBase(s.clock()),
		Destination:      strings.TrimSpace(req.Destination),
		Description:      req.Description,
		Price:            decimal.RequireFromString(req.Price),
		Duration:         req.Duration,
		IncludedServices: req.IncludedServices,
		Images:           req.Images,
		Availability:     true,
		MaxTravelers:     req.MaxTravelers,
		DifficultyLevel:  req.DifficultyLevel,
		Season:           req.Season,
	}
	if req.Availability != nil {
		pkg.Availability = *req.Availability
	}

	if err := s.repo.Package.Create(ctx, pkg); err != nil {
		return nil, fmt.Errorf("create package: %w", err)
	}

	s.log.Info("Package created",
		zap.String("package_id", pkg.ID.String()),
		zap.String("destination", pkg.Destination),
	)

	resp := response.PackageToResponse(pkg, nil)
	return &resp, nil
}

func (s *packageService) UpdatePackage(ctx context.Context, id uuid.UUID, req *request.UpdatePackageRequest) (*response.PackageResponse, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	pkg, err := s.repo.Package.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find package: %w", err)
	}
	if pkg == nil {
		return nil, fmt.Errorf("package %s: %w", id, ErrNotFound)
	}

	if req.Destination != nil {
		pkg.Destination = strings.TrimSpace(*req.Destination)
	}
	if req.Description != nil {
		pkg.Description = req.Description
	}
	if req.Price != nil {
		pkg.Price = decimal.RequireFromString(*req.Price)
	}
	if req.Duration != nil {
		pkg.Duration = *req.Duration
	}
	if req.IncludedServices != nil {
		pkg.IncludedServices = req.IncludedServices
	}
	if req.Images != nil {
		pkg.Images = req.Images
	}
	if req.Availability != nil {
		pkg.Availability = *req.Availability
	}
	if req.MaxTravelers != nil {
		pkg.MaxTravelers = *req.MaxTravelers
	}
	if req.DifficultyLevel != nil {
		pkg.DifficultyLevel = req.DifficultyLevel
	}
	if req.Season != nil {
		pkg.Season = req.Season
	}
	pkg.UpdatedAt = s.clock()

	if err := s.repo.Package.Update(ctx, pkg); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("package %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("update package: %w", err)
	}

	s.log.Info("Package updated", zap.String("package_id", id.String()))

	resp := response.PackageToResponse(pkg, nil)
	return &resp, nil
}

func (s *packageService) DeletePackage(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Package.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("package %s: %w", id, ErrNotFound)
		}
		return fmt.Errorf("delete package: %w", err)
	}
	return nil
}

func (s *packageService) ToggleAvailability(ctx context.Context, id uuid.UUID) (*response.PackageResponse, error) {
	available, err := s.repo.Package.ToggleAvailability(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("package %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("toggle availability: %w", err)
	}

	s.log.Info("Package availability toggled",
		zap.String("package_id", id.String()),
		zap.Bool("availability", available),
	)

	return s.GetPackage(ctx, id)
}
