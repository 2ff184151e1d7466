package services

import (
	"database/sql"

	"paperback/internal/domain"
	"paperback/internal/repos"
)

type CartService struct {
	Carts *repos.CartRepo
	Books *repos.BookRepo
}

func NewCartService(carts *repos.CartRepo, books *repos.BookRepo) *CartService {
	return &CartService{Carts: carts, Books: books}
}

type CartView struct {
	Items []domain.CartItem `json:"items"`
	Total float64           `json:"total"`
}

func (s *CartService) View(userID string) (CartView, error) {
	items, err := s.Carts.ListByUser(userID)
	if err != nil {
		return CartView{}, err
	}
	total := 0.0
	for _, it := range items {
		total += it.Subtotal
	}
	return CartView{Items: items, Total: total}, nil
}

func (s *CartService) Add(userID, bookID string, qty int) error {
	if qty < 1 {
		qty = 1
	}
	if _, err := s.Books.Get(bookID); err != nil {
		if err == sql.ErrNoRows {
			return repos.ErrNotFound
		}
		return err
	}
	return s.Carts.Upsert(userID, bookID, qty)
}

func (s *CartService) UpdateQty(userID, itemID string, qty int) error {
	if qty < 1 {
		qty = 1
	}
	return s.Carts.UpdateQty(userID, itemID, qty)
}

func (s *CartService) Remove(userID, itemID string) error {
	return s.Carts.Remove(userID, itemID)
}

func (s *CartService) Clear(userID string) error {
	return s.Carts.Clear(userID)
}
