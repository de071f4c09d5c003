package mongostore

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/fjod/go_cart/storefront/internal/devserver"
	"github.com/fjod/go_cart/storefront/internal/domain"
)

type userDocument struct {
	ID           string    `bson:"id"`
	Email        string    `bson:"email"`
	EmailKey     string    `bson:"email_key"`
	FullName     string    `bson:"full_name"`
	PasswordHash string    `bson:"password_hash"`
	CreatedAt    time.Time `bson:"created_at"`
}

func (d userDocument) record() devserver.UserRecord {
	return devserver.UserRecord{
		User: domain.User{
			ID:        d.ID,
			Email:     d.Email,
			FullName:  d.FullName,
			CreatedAt: d.CreatedAt,
		},
		PasswordHash: d.PasswordHash,
	}
}

// productDocument stores the price as Decimal128 so money stays exact.
type productDocument struct {
	ID          string               `bson:"id"`
	Name        string               `bson:"name"`
	Description string               `bson:"description"`
	Price       primitive.Decimal128 `bson:"price"`
	Category    string               `bson:"category"`
	Images      []string             `bson:"images"`
	Sizes       []string             `bson:"sizes"`
	Colors      []string             `bson:"colors"`
	Stock       int                  `bson:"stock"`
	Featured    bool                 `bson:"featured"`
	CreatedAt   time.Time            `bson:"created_at"`
}

func newProductDocument(p domain.Product) (productDocument, error) {
	price, err := toDecimal128(p.Price)
	if err != nil {
		return productDocument{}, err
	}
	return productDocument{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       price,
		Category:    string(p.Category),
		Images:      p.Images,
		Sizes:       p.Sizes,
		Colors:      p.Colors,
		Stock:       p.Stock,
		Featured:    p.Featured,
		CreatedAt:   p.CreatedAt,
	}, nil
}

func (d productDocument) product() (domain.Product, error) {
	price, err := fromDecimal128(d.Price)
	if err != nil {
		return domain.Product{}, err
	}
	return domain.Product{
		ID:          d.ID,
		Name:        d.Name,
		Description: d.Description,
		Price:       price,
		Category:    domain.ProductCategory(d.Category),
		Images:      d.Images,
		Sizes:       d.Sizes,
		Colors:      d.Colors,
		Stock:       d.Stock,
		Featured:    d.Featured,
		CreatedAt:   d.CreatedAt,
	}, nil
}

type orderDocument struct {
	ID              string               `bson:"id"`
	UserID          string               `bson:"user_id"`
	Items           []domain.CartItem    `bson:"items"`
	TotalAmount     primitive.Decimal128 `bson:"total_amount"`
	Status          string               `bson:"status"`
	ShippingAddress string               `bson:"shipping_address"`
	PaymentIntentID string               `bson:"payment_intent_id"`
	CreatedAt       time.Time            `bson:"created_at"`
}

func newOrderDocument(o domain.Order) (orderDocument, error) {
	total, err := toDecimal128(o.TotalAmount)
	if err != nil {
		return orderDocument{}, err
	}
	return orderDocument{
		ID:              o.ID,
		UserID:          o.UserID,
		Items:           o.Items,
		TotalAmount:     total,
		Status:          o.Status.String(),
		ShippingAddress: o.ShippingAddress,
		PaymentIntentID: o.PaymentIntentID,
		CreatedAt:       o.CreatedAt,
	}, nil
}

func (d orderDocument) order() (domain.Order, error) {
	total, err := fromDecimal128(d.TotalAmount)
	if err != nil {
		return domain.Order{}, err
	}
	return domain.Order{
		ID:              d.ID,
		UserID:          d.UserID,
		Items:           d.Items,
		TotalAmount:     total,
		Status:          domain.OrderStatus(d.Status),
		ShippingAddress: d.ShippingAddress,
		PaymentIntentID: d.PaymentIntentID,
		CreatedAt:       d.CreatedAt,
	}, nil
}

func toDecimal128(d decimal.Decimal) (primitive.Decimal128, error) {
	v, err := primitive.ParseDecimal128(d.String())
	if err != nil {
		return primitive.Decimal128{}, fmt.Errorf("failed to convert %s to decimal128: %w", d, err)
	}
	return v, nil
}

func fromDecimal128(v primitive.Decimal128) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(v.String())
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("failed to parse decimal128 %s: %w", v, err)
	}
	return d, nil
}
