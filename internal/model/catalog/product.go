package catalog

import "time"

// Product is a purchasable catalog item. Immutable from the cart's
// perspective; only the catalog store mutates it.
type Product struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Description   string    `json:"description"`
	Price         float64   `json:"price"`
	OriginalPrice float64   `json:"originalPrice,omitempty"`
	Image         string    `json:"image"`
	Category      string    `json:"category"`
	Stock         int       `json:"stock"`
	Featured      bool      `json:"featured,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}

// Seed provides the default storefront catalog used when no database is
// configured and by tests.
func Seed() []Product {
	now := time.Now().UTC()
	return []Product{
		{
			ID:          "prod-1",
			Name:        "Premium Wireless Headphones",
			Description: "High-quality wireless headphones with noise cancellation technology.",
			Price:       199.99,
			Image:       "https://images.unsplash.com/photo-1505740420928-5e560c06d30e?w=500",
			Category:    "Electronics",
			Stock:       45,
			Featured:    true,
			CreatedAt:   now,
		},
		{
			ID:            "prod-2",
			Name:          "Smart Fitness Tracker",
			Description:   "Track your fitness goals with heart rate monitoring and GPS.",
			Price:         129.99,
			OriginalPrice: 149.99,
			Image:         "https://images.unsplash.com/photo-1576243345690-4e4b79b63288?w=500",
			Category:      "Fitness",
			Stock:         78,
			CreatedAt:     now,
		},
		{
			ID:          "prod-3",
			Name:        "Designer Sunglasses",
			Description: "Fashionable sunglasses with UV protection.",
			Price:       89.99,
			Image:       "https://images.unsplash.com/photo-1572635196237-14b3f281503f?w=500",
			Category:    "Fashion",
			Stock:       120,
			CreatedAt:   now,
		},
		{
			ID:            "prod-4",
			Name:          "Coffee Maker",
			Description:   "Programmable coffee maker with built-in grinder.",
			Price:         149.99,
			OriginalPrice: 179.99,
			Image:         "https://images.unsplash.com/photo-1520608760-eff2c38b0515?w=500",
			Category:      "Home",
			Stock:         32,
			Featured:      true,
			CreatedAt:     now,
		},
		{
			ID:          "prod-5",
			Name:        "Smartphone Stand",
			Description: "Adjustable stand for smartphones and tablets.",
			Price:       24.99,
			Image:       "https://images.unsplash.com/photo-1583394838336-acd977736f90?w=500",
			Category:    "Accessories",
			Stock:       200,
			CreatedAt:   now,
		},
		{
			ID:          "prod-6",
			Name:        "Wireless Gaming Mouse",
			Description: "Precision wireless mouse for gaming enthusiasts.",
			Price:       79.99,
			Image:       "https://images.unsplash.com/photo-1527864550417-7fd91fc51a46?w=500",
			Category:    "Gaming",
			Stock:       65,
			CreatedAt:   now,
		},
		{
			ID:          "prod-7",
			Name:        "Leather Wallet",
			Description: "Genuine leather wallet with RFID protection.",
			Price:       49.99,
			Image:       "https://images.unsplash.com/photo-1627123424574-724758594e93?w=500",
			Category:    "Fashion",
			Stock:       110,
			CreatedAt:   now,
		},
		{
			ID:          "prod-8",
			Name:        "Smart Indoor Plant Pot",
			Description: "Self-watering pot with soil moisture monitoring.",
			Price:       39.99,
			Image:       "https://images.unsplash.com/photo-1485955900006-10f4d324d411?w=500",
			Category:    "Home",
			Stock:       54,
			CreatedAt:   now,
		},
	}
}
