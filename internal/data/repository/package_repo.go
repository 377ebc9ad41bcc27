package repository

import (
	"context"
	"fmt"
	"strings"

	"travel-agency/internal/data/entity"
	"travel-agency/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type PackageRepository interface {
	Create(ctx context.Context, pkg *entity.Package) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Package, error)
	// FindByIDForUpdate locks the package row until the enclosing transaction ends.
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*entity.Package, error)
	FindAll(ctx context.Context, filter entity.PackageFilter, limit, offset int) ([]*entity.Package, error)
	Count(ctx context.Context, filter entity.PackageFilter) (int64, error)
	Update(ctx context.Context, pkg *entity.Package) error
	ToggleAvailability(ctx context.Context, id uuid.UUID) (bool, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Rating(ctx context.Context, id uuid.UUID) (*entity.PackageRating, error)

	// Rankings. Only available packages are returned.
	TopRated(ctx context.Context, limit int) ([]*entity.RankedPackage, error)
	MostBooked(ctx context.Context, limit int) ([]*entity.RankedPackage, error)
	FindSimilar(ctx context.Context, pkg *entity.Package, limit int) ([]*entity.Package, error)
}

type packageRepository struct {
	db  database.Querier
	log *zap.Logger
}

func NewPackageRepository(db database.Querier, log *zap.Logger) PackageRepository {
	return &packageRepository{
		db:  db,
		log: log.With(zap.String("repository", "package")),
	}
}

const packageColumns = `id, destination, description, price, duration, included_services, images,
	availability, max_travelers, difficulty_level, season, created_at, updated_at`

func packageFields(p *entity.Package) []any {
	return []any{
		&p.ID,
		&p.Destination,
		&p.Description,
		&p.Price,
		&p.Duration,
		&p.IncludedServices,
		&p.Images,
		&p.Availability,
		&p.MaxTravelers,
		&p.DifficultyLevel,
		&p.Season,
		&p.CreatedAt,
		&p.UpdatedAt,
	}
}

func scanPackage(row pgx.Row) (*entity.Package, error) {
	var p entity.Package
	if err := row.Scan(packageFields(&p)...); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *packageRepository) Create(ctx context.Context, pkg *entity.Package) error {
	query := `
		INSERT INTO packages (id, destination, description, price, duration, included_services, images,
		                      availability, max_travelers, difficulty_level, season, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	_, err := r.db.Exec(ctx, query,
		pkg.ID,
		pkg.Destination,
		pkg.Description,
		pkg.Price,
		pkg.Duration,
		pkg.IncludedServices,
		orEmpty(pkg.Images),
		pkg.Availability,
		pkg.MaxTravelers,
		pkg.DifficultyLevel,
		pkg.Season,
		pkg.CreatedAt,
		pkg.UpdatedAt,
	)
	if err != nil {
		r.log.Error("Failed to create package",
			zap.Error(err),
			zap.String("destination", pkg.Destination),
		)
		return fmt.Errorf("create package %s: %w", pkg.Destination, err)
	}

	return nil
}

func (r *packageRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Package, error) {
	return r.findOne(ctx, `SELECT `+packageColumns+` FROM packages WHERE id = $1`, id)
}

func (r *packageRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*entity.Package, error) {
	return r.findOne(ctx, `SELECT `+packageColumns+` FROM packages WHERE id = $1 FOR UPDATE`, id)
}

func (r *packageRepository) findOne(ctx context.Context, query string, id uuid.UUID) (*entity.Package, error) {
	pkg, err := scanPackage(r.db.QueryRow(ctx, query, id))
	if isNoRows(err) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find package by ID",
			zap.Error(err),
			zap.String("package_id", id.String()),
		)
		return nil, fmt.Errorf("find package by ID %s: %w", id, err)
	}
	return pkg, nil
}

func buildPackageWhere(filter entity.PackageFilter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if s := strings.TrimSpace(filter.Search); s != "" {
		add("(destination ILIKE $%[1]d OR description ILIKE $%[1]d)", "%"+s+"%")
	}
	if filter.MinPrice != nil {
		add("price >= $%d", *filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		add("price <= $%d", *filter.MaxPrice)
	}
	if filter.MinDuration > 0 {
		add("duration >= $%d", filter.MinDuration)
	}
	if filter.MaxDuration > 0 {
		add("duration <= $%d", filter.MaxDuration)
	}
	if filter.AvailableOnly {
		conds = append(conds, "availability = TRUE")
	}

	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func (r *packageRepository) FindAll(ctx context.Context, filter entity.PackageFilter, limit, offset int) ([]*entity.Package, error) {
	where, args := buildPackageWhere(filter)
	query := fmt.Sprintf(`SELECT %s FROM packages%s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		packageColumns, where, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		r.log.Error("Failed to list packages", zap.Error(err))
		return nil, fmt.Errorf("list packages: %w", err)
	}
	defer rows.Close()

	var packages []*entity.Package
	for rows.Next() {
		pkg, err := scanPackage(rows)
		if err != nil {
			r.log.Error("Failed to scan package row", zap.Error(err))
			return nil, fmt.Errorf("scan package row: %w", err)
		}
		packages = append(packages, pkg)
	}

	return packages, rows.Err()
}

func (r *packageRepository) Count(ctx context.Context, filter entity.PackageFilter) (int64, error) {
	where, args := buildPackageWhere(filter)

	var count int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM packages`+where, args...).Scan(&count); err != nil {
		r.log.Error("Failed to count packages", zap.Error(err))
		return 0, fmt.Errorf("count packages: %w", err)
	}
	return count, nil
}

func (r *packageRepository) Update(ctx context.Context, pkg *entity.Package) error {
	query := `
		UPDATE packages
		SET destination = $2, description = $3, price = $4, duration = $5, included_services = $6,
		    images = $7, availability = $8, max_travelers = $9, difficulty_level = $10, season = $11,
		    updated_at = $12
		WHERE id = $1
	`

	result, err := r.db.Exec(ctx, query,
		pkg.ID,
		pkg.Destination,
		pkg.Description,
		pkg.Price,
		pkg.Duration,
		pkg.IncludedServices,
		orEmpty(pkg.Images),
		pkg.Availability,
		pkg.MaxTravelers,
		pkg.DifficultyLevel,
		pkg.Season,
		pkg.UpdatedAt,
	)
	if err != nil {
		r.log.Error("Failed to update package",
			zap.Error(err),
			zap.String("package_id", pkg.ID.String()),
		)
		return fmt.Errorf("update package %s: %w", pkg.ID, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("package %s: %w", pkg.ID, ErrNotFound)
	}

	return nil
}

func (r *packageRepository) ToggleAvailability(ctx context.Context, id uuid.UUID) (bool, error) {
	query := `
		UPDATE packages
		SET availability = NOT availability, updated_at = NOW()
		WHERE id = $1
		RETURNING availability
	`

	var available bool
	err := r.db.QueryRow(ctx, query, id).Scan(&available)
	if isNoRows(err) {
		return false, fmt.Errorf("package %s: %w", id, ErrNotFound)
	}
	if err != nil {
		r.log.Error("Failed to toggle package availability",
			zap.Error(err),
			zap.String("package_id", id.String()),
		)
		return false, fmt.Errorf("toggle availability of package %s: %w", id, err)
	}

	return available, nil
}

// Delete removes the package; bookings, payments and reviews go with it via ON DELETE CASCADE.
func (r *packageRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.Exec(ctx, `DELETE FROM packages WHERE id = $1`, id)
	if err != nil {
		r.log.Error("Failed to delete package",
			zap.Error(err),
			zap.String("package_id", id.String()),
		)
		return fmt.Errorf("delete package %s: %w", id, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("package %s: %w", id, ErrNotFound)
	}

	r.log.Info("Package deleted", zap.String("package_id", id.String()))
	return nil
}

func (r *packageRepository) Rating(ctx context.Context, id uuid.UUID) (*entity.PackageRating, error) {
	query := `
		SELECT COALESCE(ROUND(AVG(rating), 1), 0), COUNT(*)
		FROM reviews
		WHERE package_id = $1 AND approval = 'approved'
	`

	rating := &entity.PackageRating{Average: decimal.Zero}
	if err := r.db.QueryRow(ctx, query, id).Scan(&rating.Average, &rating.Count); err != nil {
		r.log.Error("Failed to compute package rating",
			zap.Error(err),
			zap.String("package_id", id.String()),
		)
		return nil, fmt.Errorf("rating of package %s: %w", id, err)
	}
	return rating, nil
}

// rankedColumns is packageColumns on the p alias plus the approved-review
// rating and the count of bookings that were not cancelled.
const rankedColumns = `p.id, p.destination, p.description, p.price, p.duration, p.included_services, p.images,
	p.availability, p.max_travelers, p.difficulty_level, p.season, p.created_at, p.updated_at,
	COALESCE(r.avg_rating, 0), COALESCE(r.review_count, 0), COALESCE(b.booking_count, 0)`

const rankedJoins = `
	FROM packages p
	LEFT JOIN (
		SELECT package_id, ROUND(AVG(rating), 1) AS avg_rating, COUNT(*) AS review_count
		FROM reviews
		WHERE approval = 'approved'
		GROUP BY package_id
	) r ON r.package_id = p.id
	LEFT JOIN (
		SELECT package_id, COUNT(*) AS booking_count
		FROM bookings
		WHERE status <> 'cancelled'
		GROUP BY package_id
	) b ON b.package_id = p.id
	WHERE p.availability = TRUE`

// TopRated orders available packages by their approved-review average.
// Packages without reviews come last.
func (r *packageRepository) TopRated(ctx context.Context, limit int) ([]*entity.RankedPackage, error) {
	query := `SELECT ` + rankedColumns + rankedJoins + `
		ORDER BY r.avg_rating DESC NULLS LAST, r.review_count DESC NULLS LAST, p.created_at DESC
		LIMIT $1`
	return r.ranked(ctx, "top rated", query, limit)
}

// MostBooked orders available packages by how many bookings were not cancelled.
func (r *packageRepository) MostBooked(ctx context.Context, limit int) ([]*entity.RankedPackage, error) {
	query := `SELECT ` + rankedColumns + rankedJoins + `
		ORDER BY COALESCE(b.booking_count, 0) DESC, p.created_at DESC
		LIMIT $1`
	return r.ranked(ctx, "most booked", query, limit)
}

func (r *packageRepository) ranked(ctx context.Context, name, query string, limit int) ([]*entity.RankedPackage, error) {
	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		r.log.Error("Failed to rank packages", zap.Error(err), zap.String("ranking", name))
		return nil, fmt.Errorf("%s packages: %w", name, err)
	}
	defer rows.Close()

	var out []*entity.RankedPackage
	for rows.Next() {
		item := &entity.RankedPackage{Package: &entity.Package{}}
		dest := append(packageFields(item.Package), &item.Rating.Average, &item.Rating.Count, &item.Bookings)
		if err := rows.Scan(dest...); err != nil {
			r.log.Error("Failed to scan ranked package row", zap.Error(err))
			return nil, fmt.Errorf("scan ranked package row: %w", err)
		}
		out = append(out, item)
	}

	return out, rows.Err()
}

// FindSimilar returns other available packages whose duration is within
// three days and whose price is within 30% of pkg.
func (r *packageRepository) FindSimilar(ctx context.Context, pkg *entity.Package, limit int) ([]*entity.Package, error) {
	query := `
		SELECT ` + packageColumns + `
		FROM packages
		WHERE id <> $1
		  AND availability = TRUE
		  AND duration BETWEEN $2 AND $3
		  AND price BETWEEN $4 AND $5
		ORDER BY ABS(price - $6), created_at DESC
		LIMIT $7
	`

	rows, err := r.db.Query(ctx, query,
		pkg.ID,
		pkg.Duration-3,
		pkg.Duration+3,
		pkg.Price.Mul(decimal.RequireFromString("0.7")),
		pkg.Price.Mul(decimal.RequireFromString("1.3")),
		pkg.Price,
		limit,
	)
	if err != nil {
		r.log.Error("Failed to find similar packages",
			zap.Error(err),
			zap.String("package_id", pkg.ID.String()),
		)
		return nil, fmt.Errorf("similar packages of %s: %w", pkg.ID, err)
	}
	defer rows.Close()

	var packages []*entity.Package
	for rows.Next() {
		p, err := scanPackage(rows)
		if err != nil {
			r.log.Error("Failed to scan package row", zap.Error(err))
			return nil, fmt.Errorf("scan package row: %w", err)
		}
		packages = append(packages, p)
	}

	return packages, rows.Err()
}

func orEmpty(images []string) []string {
	if images == nil {
		return []string{}
	}
	return images
}
