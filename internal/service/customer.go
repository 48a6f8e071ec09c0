package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/josh-kwaku/digital-banking/internal/domain"
	"github.com/josh-kwaku/digital-banking/internal/logging"
)

type CustomerRequest struct {
	Name  string
	Email string
}

func (r CustomerRequest) normalize() (CustomerRequest, error) {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = strings.TrimSpace(r.Email)
	if r.Name == "" {
		return r, fmt.Errorf("name is required: %w", domain.ErrInvalidRequest)
	}
	return r, nil
}

func (s *AccountService) SaveCustomer(ctx context.Context, req CustomerRequest) (*domain.Customer, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	req, err := req.normalize()
	if err != nil {
		return nil, fmt.Errorf("SaveCustomer: %w", err)
	}

	c := &domain.Customer{Name: req.Name, Email: req.Email}
	if err := s.customers.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("SaveCustomer: %w", err)
	}

	logging.FromContext(ctx).Info("customer created", "customer_id", c.ID)
	return c, nil
}

func (s *AccountService) UpdateCustomer(ctx context.Context, id int64, req CustomerRequest) (*domain.Customer, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	req, err := req.normalize()
	if err != nil {
		return nil, fmt.Errorf("UpdateCustomer: %w", err)
	}

	c := &domain.Customer{ID: id, Name: req.Name, Email: req.Email}
	if err := s.customers.Update(ctx, c); err != nil {
		return nil, fmt.Errorf("UpdateCustomer: %w", translateNotFound(err, domain.ErrCustomerNotFound))
	}

	logging.FromContext(ctx).Info("customer updated", "customer_id", c.ID)
	return c, nil
}

func (s *AccountService) DeleteCustomer(ctx context.Context, id int64) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if err := s.customers.Delete(ctx, id); err != nil {
		return fmt.Errorf("DeleteCustomer: %w", translateNotFound(err, domain.ErrCustomerNotFound))
	}

	logging.FromContext(ctx).Info("customer deleted", "customer_id", id)
	return nil
}

func (s *AccountService) ListCustomers(ctx context.Context) ([]domain.Customer, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	customers, err := s.customers.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("ListCustomers: %w", err)
	}
	return customers, nil
}

func (s *AccountService) SearchCustomers(ctx context.Context, keyword string) ([]domain.Customer, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	customers, err := s.customers.Search(ctx, likePattern(keyword))
	if err != nil {
		return nil, fmt.Errorf("SearchCustomers: %w", err)
	}
	return customers, nil
}

func (s *AccountService) GetCustomer(ctx context.Context, id int64) (*domain.Customer, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	c, err := s.requireCustomer(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("GetCustomer: %w", err)
	}
	return c, nil
}

func (s *AccountService) FindCustomerByEmail(ctx context.Context, email string) (*domain.Customer, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	c, err := s.customers.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		return nil, fmt.Errorf("FindCustomerByEmail: %w", translateNotFound(err, domain.ErrCustomerNotFound))
	}
	return c, nil
}

func (s *AccountService) ListCustomerAccounts(ctx context.Context, customerID int64) ([]domain.BankAccount, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if _, err := s.requireCustomer(ctx, customerID); err != nil {
		return nil, fmt.Errorf("ListCustomerAccounts: %w", err)
	}

	accounts, err := s.accounts.GetByCustomerID(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("ListCustomerAccounts: %w", err)
	}
	return accounts, nil
}

// likePattern turns a search keyword into an ILIKE substring pattern.
// '*' is the user-facing wildcard; '%', '_' and '\' match literally.
func likePattern(keyword string) string {
	var b strings.Builder
	b.WriteByte('%')
	for _, r := range strings.TrimSpace(keyword) {
		switch r {
		case '%', '_', '\\':
			b.WriteByte('\\')
			b.WriteRune(r)
		case '*':
			b.WriteByte('%')
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('%')
	return b.String()
}
