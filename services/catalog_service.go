package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"vitaminderAPI/internal/catalog"
)

type CatalogService struct {
	db *pgxpool.Pool
}

func NewCatalogService(db *pgxpool.Pool) *CatalogService {
	return &CatalogService{db: db}
}

// GetCatalog lists catalog entries, optionally filtered by objective and a
// free-text query over name and description.
func (s *CatalogService) GetCatalog(ctx context.Context, objective, query string) ([]*catalog.Supplement, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, name, description, type, objectives, price_estimate, base_score, created_at, updated_at
		FROM catalog_supplements
		WHERE ($1 = '' OR $1 = ANY(objectives))
			AND ($2 = '' OR name ILIKE '%' || $2 || '%' OR description ILIKE '%' || $2 || '%')
		ORDER BY base_score DESC, name
	`, objective, query)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch catalog: %w", err)
	}
	defer rows.Close()

	var supplements []*catalog.Supplement
	for rows.Next() {
		supp := &catalog.Supplement{}
		err := rows.Scan(
			&supp.ID,
			&supp.Name,
			&supp.Description,
			&supp.Type,
			&supp.Objectives,
			&supp.PriceEstimate,
			&supp.BaseScore,
			&supp.CreatedAt,
			&supp.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan catalog entry: %w", err)
		}
		supplements = append(supplements, supp)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating catalog: %w", err)
	}

	if supplements == nil {
		supplements = []*catalog.Supplement{}
	}

	return supplements, nil
}

func (s *CatalogService) GetCatalogSupplement(ctx context.Context, id uuid.UUID) (*catalog.Supplement, error) {
	supp := &catalog.Supplement{}
	err := s.db.QueryRow(ctx, `
		SELECT id, name, description, type, objectives, price_estimate, base_score, created_at, updated_at
		FROM catalog_supplements
		WHERE id = $1
	`, id).Scan(
		&supp.ID,
		&supp.Name,
		&supp.Description,
		&supp.Type,
		&supp.Objectives,
		&supp.PriceEstimate,
		&supp.BaseScore,
		&supp.CreatedAt,
		&supp.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("catalog supplement not found")
		}
		return nil, fmt.Errorf("failed to get catalog supplement: %w", err)
	}
	return supp, nil
}

func (s *CatalogService) AddCatalogSupplement(ctx context.Context, req *catalog.CreateSupplementRequest) (*catalog.Supplement, error) {
	supp := &catalog.Supplement{
		ID:            uuid.New(),
		Name:          req.Name,
		Description:   req.Description,
		Type:          req.Type,
		Objectives:    req.Objectives,
		PriceEstimate: req.PriceEstimate,
		BaseScore:     req.BaseScore,
	}
	if supp.Objectives == nil {
		supp.Objectives = []string{}
	}

	err := s.db.QueryRow(ctx, `
		INSERT INTO catalog_supplements (id, name, description, type, objectives, price_estimate, base_score, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
		RETURNING created_at, updated_at
	`, supp.ID, supp.Name, supp.Description, supp.Type, supp.Objectives, supp.PriceEstimate, supp.BaseScore).Scan(&supp.CreatedAt, &supp.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to add catalog supplement: %w", err)
	}

	return supp, nil
}

func (s *CatalogService) UpdateCatalogSupplement(ctx context.Context, id uuid.UUID, req *catalog.UpdateSupplementRequest) (*catalog.Supplement, error) {
	supp, err := s.GetCatalogSupplement(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		supp.Name = *req.Name
	}
	if req.Description != nil {
		supp.Description = *req.Description
	}
	if req.Type != nil {
		supp.Type = *req.Type
	}
	if req.Objectives != nil {
		supp.Objectives = req.Objectives
	}
	if req.PriceEstimate != nil {
		supp.PriceEstimate = *req.PriceEstimate
	}
	if req.BaseScore != nil {
		supp.BaseScore = *req.BaseScore
	}

	err = s.db.QueryRow(ctx, `
		UPDATE catalog_supplements
		SET name = $2, description = $3, type = $4, objectives = $5, price_estimate = $6, base_score = $7, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`, supp.ID, supp.Name, supp.Description, supp.Type, supp.Objectives, supp.PriceEstimate, supp.BaseScore).Scan(&supp.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to update catalog supplement: %w", err)
	}

	return supp, nil
}

func (s *CatalogService) RemoveCatalogSupplement(ctx context.Context, id uuid.UUID) error {
	result, err := s.db.Exec(ctx, `DELETE FROM catalog_supplements WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to remove catalog supplement: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("catalog supplement not found")
	}

	return nil
}
