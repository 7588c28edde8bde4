package repository

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/elyasalemi10/bwa-catalog/internal/common"
	"github.com/elyasalemi10/bwa-catalog/internal/entity"
)

// ProductRepository is the catalog boundary. The core reads rows and
// proposes new ones; it never mutates an existing row in place.
type ProductRepository interface {
	// MaxCodeForPrefix returns the highest code currently allocated under a
	// prefix, or "" when the namespace is empty. Longer numeric suffixes
	// sort above shorter ones so a widened sequence (A1000 after A999)
	// stays monotonic.
	MaxCodeForPrefix(ctx context.Context, prefix string) (string, error)

	// Insert persists a proposed catalog row. A unique-constraint violation
	// on code surfaces as common.ErrCodeExists.
	Insert(ctx context.Context, p *entity.Product) (*entity.Product, error)

	GetByCode(ctx context.Context, code string) (*entity.Product, error)
	ListByCategory(ctx context.Context, category string) ([]*entity.Product, error)

	// LookupByCodes batch-resolves codes case-insensitively. The map is
	// keyed by uppercased code; when several rows collapse onto one key
	// (case-variant duplicates inserted out of band) the first row by
	// insertion order wins and the surplus codes come back as anomalies.
	LookupByCodes(ctx context.Context, codes []string) (map[string]*entity.Product, []string, error)
}

type productRepository struct {
	store  *Store
	logger *slog.Logger
}

func NewProductRepository(store *Store, logger *slog.Logger) ProductRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &productRepository{store: store, logger: logger}
}

const productColumns = `id, code, category, description, manufacturer_description, product_details, price, image_url, created_at, updated_at`

func (r *productRepository) MaxCodeForPrefix(ctx context.Context, prefix string) (string, error) {
	query := r.store.rebind(`SELECT code FROM products WHERE code LIKE ? ORDER BY LENGTH(code) DESC, code DESC LIMIT 1`)
	var code string
	err := r.store.DB.QueryRowContext(ctx, query, prefix+"%").Scan(&code)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		r.logger.Error("max code query failed", "prefix", prefix, "error", err)
		return "", err
	}
	return code, nil
}

func (r *productRepository) Insert(ctx context.Context, p *entity.Product) (*entity.Product, error) {
	now := time.Now().UTC()
	out := *p
	out.CreatedAt = now
	out.UpdatedAt = now

	query := r.store.rebind(`INSERT INTO products (code, category, description, manufacturer_description, product_details, price, image_url, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	args := []any{out.Code, out.Category, out.Description, out.ManufacturerDescription, out.ProductDetails, out.Price, out.ImageURL, now, now}

	if r.store.driver == driverPostgres {
		err := r.store.DB.QueryRowContext(ctx, query+` RETURNING id`, args...).Scan(&out.ID)
		if err != nil {
			return nil, r.insertErr(p.Code, err)
		}
		return &out, nil
	}

	res, err := r.store.DB.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, r.insertErr(p.Code, err)
	}
	out.ID, err = res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *productRepository) insertErr(code string, err error) error {
	if isUniqueViolation(err) {
		return common.NewAppError("CODE_EXISTS", "code "+code+" is taken", common.ErrCodeExists)
	}
	r.logger.Error("product insert failed", "code", code, "error", err)
	return err
}

func (r *productRepository) GetByCode(ctx context.Context, code string) (*entity.Product, error) {
	query := r.store.rebind(`SELECT ` + productColumns + ` FROM products WHERE UPPER(code) = ?`)
	row := r.store.DB.QueryRowContext(ctx, query, strings.ToUpper(code))
	p, err := scanProduct(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.NewAppError("PRODUCT_NOT_FOUND", "no product with code "+code, common.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *productRepository) ListByCategory(ctx context.Context, category string) ([]*entity.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products ORDER BY code`
	args := []any{}
	if category != "" {
		query = r.store.rebind(`SELECT ` + productColumns + ` FROM products WHERE category = ? ORDER BY code`)
		args = append(args, category)
	}

	rows, err := r.store.DB.QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("product list failed", "category", category, "error", err)
		return nil, err
	}
	defer rows.Close()

	var out []*entity.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *productRepository) LookupByCodes(ctx context.Context, codes []string) (map[string]*entity.Product, []string, error) {
	result := make(map[string]*entity.Product, len(codes))
	if len(codes) == 0 {
		return result, nil, nil
	}

	placeholders := make([]string, len(codes))
	args := make([]any, len(codes))
	for i, c := range codes {
		placeholders[i] = "?"
		args[i] = strings.ToUpper(c)
	}
	query := r.store.rebind(`SELECT ` + productColumns + ` FROM products WHERE UPPER(code) IN (` +
		strings.Join(placeholders, ", ") + `) ORDER BY id`)

	rows, err := r.store.DB.QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("code lookup failed", "codes", len(codes), "error", err)
		return nil, nil, err
	}
	defer rows.Close()

	var anomalies []string
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, nil, err
		}
		key := strings.ToUpper(p.Code)
		if _, dup := result[key]; dup {
			// Data-integrity anomaly: more than one catalog row answers to
			// this code. Keep the first by insertion order, surface the rest.
			anomalies = append(anomalies, key)
			continue
		}
		result[key] = p
	}
	return result, anomalies, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (*entity.Product, error) {
	var p entity.Product
	err := row.Scan(&p.ID, &p.Code, &p.Category, &p.Description, &p.ManufacturerDescription,
		&p.ProductDetails, &p.Price, &p.ImageURL, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	// modernc.org/sqlite reports constraint failures by message.
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
