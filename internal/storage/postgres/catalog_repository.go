package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Kalind02/food-ordering-api/internal/domain"
)

type CatalogRepository struct {
	pool *pgxpool.Pool
}

func NewCatalogRepository(pool *pgxpool.Pool) *CatalogRepository {
	return &CatalogRepository{pool: pool}
}

func (r *CatalogRepository) ListRestaurants(ctx context.Context) ([]domain.Restaurant, error) {
	const query = `
SELECT id, name, cuisine, image, rating
FROM restaurants
ORDER BY name ASC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list restaurants: %w", err)
	}
	defer rows.Close()

	var restaurants []domain.Restaurant
	for rows.Next() {
		var rest domain.Restaurant
		if err := rows.Scan(&rest.ID, &rest.Name, &rest.Cuisine, &rest.Image, &rest.Rating); err != nil {
			return nil, fmt.Errorf("scan restaurant: %w", err)
		}
		restaurants = append(restaurants, rest)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate restaurants: %w", rows.Err())
	}
	return restaurants, nil
}

func (r *CatalogRepository) GetRestaurant(ctx context.Context, id string) (*domain.Restaurant, error) {
	const query = `SELECT id, name, cuisine, image, rating FROM restaurants WHERE id = $1`

	var rest domain.Restaurant
	err := r.pool.QueryRow(ctx, query, id).
		Scan(&rest.ID, &rest.Name, &rest.Cuisine, &rest.Image, &rest.Rating)
	if err != nil {
		if isInvalidUUID(err) {
			return nil, domain.ErrInvalidID
		}
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get restaurant: %w", err)
	}
	return &rest, nil
}

func (r *CatalogRepository) ListMenu(ctx context.Context, restaurantID string) ([]domain.FoodItem, error) {
	const query = `
SELECT id, restaurant_id, name, price, image, description
FROM food_items
WHERE restaurant_id = $1
ORDER BY name ASC`

	rows, err := r.pool.Query(ctx, query, restaurantID)
	if err != nil {
		if isInvalidUUID(err) {
			return nil, domain.ErrInvalidID
		}
		return nil, fmt.Errorf("list menu: %w", err)
	}
	defer rows.Close()

	var items []domain.FoodItem
	for rows.Next() {
		var item domain.FoodItem
		if err := rows.Scan(&item.ID, &item.RestaurantID, &item.Name, &item.Price, &item.Image, &item.Description); err != nil {
			return nil, fmt.Errorf("scan food item: %w", err)
		}
		items = append(items, item)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate food items: %w", rows.Err())
	}
	return items, nil
}
