package court

import (
	"context"
	"strings"
)

type CreateRequest struct {
	Name        string
	Category    string
	Covered     bool
	Lit         bool
	HourlyPrice float64
}

// UpdateRequest carries the editable court fields. Nil means unchanged.
type UpdateRequest struct {
	Name        *string
	Category    *string
	Covered     *bool
	Lit         *bool
	HourlyPrice *float64
}

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Court, error)
	GetByID(ctx context.Context, id int64) (*Court, error)
	List(ctx context.Context, filter Filter) ([]*Court, int, error)
	Update(ctx context.Context, id int64, req UpdateRequest) (*Court, error)
	Delete(ctx context.Context, id int64) error
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) Create(ctx context.Context, req CreateRequest) (*Court, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, ErrEmptyName
	}
	if strings.TrimSpace(req.Category) == "" {
		return nil, ErrEmptyCategory
	}
	if req.HourlyPrice < 0 {
		return nil, ErrNegativePrice
	}

	c := &Court{
		Name:        strings.TrimSpace(req.Name),
		Category:    strings.TrimSpace(req.Category),
		Covered:     req.Covered,
		Lit:         req.Lit,
		HourlyPrice: req.HourlyPrice,
	}

	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *service) GetByID(ctx context.Context, id int64) (*Court, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) List(ctx context.Context, filter Filter) ([]*Court, int, error) {
	return s.repo.List(ctx, filter)
}

func (s *service) Update(ctx context.Context, id int64, req UpdateRequest) (*Court, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		if strings.TrimSpace(*req.Name) == "" {
			return nil, ErrEmptyName
		}
		c.Name = strings.TrimSpace(*req.Name)
	}
	if req.Category != nil {
		if strings.TrimSpace(*req.Category) == "" {
			return nil, ErrEmptyCategory
		}
		c.Category = strings.TrimSpace(*req.Category)
	}
	if req.Covered != nil {
		c.Covered = *req.Covered
	}
	if req.Lit != nil {
		c.Lit = *req.Lit
	}
	if req.HourlyPrice != nil {
		if *req.HourlyPrice < 0 {
			return nil, ErrNegativePrice
		}
		c.HourlyPrice = *req.HourlyPrice
	}

	if err := s.repo.Update(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *service) Delete(ctx context.Context, id int64) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}
