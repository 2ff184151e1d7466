package services

import (
	"paperback/internal/domain"
	"paperback/internal/repos"
)

type DashboardService struct {
	Users  *repos.UserRepo
	Books  *repos.BookRepo
	Orders *repos.OrderRepo
}

func NewDashboardService(users *repos.UserRepo, books *repos.BookRepo, orders *repos.OrderRepo) *DashboardService {
	return &DashboardService{Users: users, Books: books, Orders: orders}
}

type AdminStats struct {
	Users        int            `json:"users"`
	Books        int            `json:"books"`
	Orders       int            `json:"orders"`
	Revenue      float64        `json:"revenue"`
	ByStatus     map[string]int `json:"orders_by_status"`
	RecentOrders []domain.Order `json:"recent_orders"`
}

func (s *DashboardService) Admin() (AdminStats, error) {
	var (
		stats AdminStats
		err   error
	)
	if stats.Users, err = s.Users.Count(); err != nil {
		return AdminStats{}, err
	}
	if stats.Books, err = s.Books.CountAll(); err != nil {
		return AdminStats{}, err
	}
	if stats.Orders, err = s.Orders.Count(); err != nil {
		return AdminStats{}, err
	}
	if stats.Revenue, err = s.Orders.Revenue(); err != nil {
		return AdminStats{}, err
	}
	if stats.ByStatus, err = s.Orders.CountByStatus(""); err != nil {
		return AdminStats{}, err
	}
	if stats.RecentOrders, err = s.Orders.List("", 10); err != nil {
		return AdminStats{}, err
	}
	return stats, nil
}

type UserStats struct {
	ByStatus     map[string]int `json:"orders_by_status"`
	RecentOrders []domain.Order `json:"recent_orders"`
}

func (s *DashboardService) User(userID string) (UserStats, error) {
	byStatus, err := s.Orders.CountByStatus(userID)
	if err != nil {
		return UserStats{}, err
	}
	recent, err := s.Orders.ListByUser(userID)
	if err != nil {
		return UserStats{}, err
	}
	if len(recent) > 5 {
		recent = recent[:5]
	}
	return UserStats{ByStatus: byStatus, RecentOrders: recent}, nil
}
