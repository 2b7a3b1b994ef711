package domain

// Restaurant is one listed venue.
type Restaurant struct {
	ID      string
	Name    string
	Cuisine string
	Image   string
	Rating  float64
}

// FoodItem is one menu entry belonging to a restaurant.
type FoodItem struct {
	ID           string
	RestaurantID string
	Name         string
	Price        float64
	Image        string
	Description  string
}
